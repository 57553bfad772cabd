package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"path/filepath"
	"strings"

	morphbench "github.com/swdee/go-morphbench"
)

// Round is one row of a mosaic run
type Round struct {
	Index  int
	Tiles  float64
	Width  int
	Height int
	// MinA and MinB are the minimum per call times in ms, NaN when the backend
	// was not measured
	MinA float64
	MinB float64
	// Speedup is MinB over MinA, NaN unless both are positive
	Speedup float64
	// CountA and CountB are the regions found by each backend, -1 when the
	// backend was not measured
	CountA int
	CountB int
}

// Rounds returns one row per sample of a mosaic result
func Rounds(res *morphbench.Result) []Round {

	out := make([]Round, 0, len(res.Samples))

	for i, s := range res.Samples {
		r := Round{
			Index:   i,
			Tiles:   s.Value,
			Width:   s.Width,
			Height:  s.Height,
			MinA:    math.NaN(),
			MinB:    math.NaN(),
			Speedup: math.NaN(),
			CountA:  -1,
			CountB:  -1,
		}

		if s.A != nil {
			r.MinA = s.A.Min
			r.CountA = s.A.Count
		}

		if s.B != nil {
			r.MinB = s.B.Min
			r.CountB = s.B.Count
		}

		if r.MinA > 0 && r.MinB > 0 {
			r.Speedup = r.MinB / r.MinA
		}

		out = append(out, r)
	}

	return out
}

// RoundsHeader returns the header row of a rounds table
func RoundsHeader(a, b string) []string {
	return []string{"round", "tiles", "width", "height", a + ".min", b + ".min", "speedup", a + ".count", b + ".count"}
}

// countCell formats a region count, empty when not measured
func countCell(n int) string {

	if n < 0 {
		return ""
	}

	return fmt.Sprintf("%d", n)
}

// WriteRounds writes the rounds of a mosaic result.  Values that were not
// measured are left empty.
func WriteRounds(w io.Writer, res *morphbench.Result) error {

	cw := csv.NewWriter(w)
	cw.Comma = Separator

	if err := cw.Write(RoundsHeader(res.BackendA, res.BackendB)); err != nil {
		return err
	}

	for _, r := range Rounds(res) {
		row := []string{
			fmt.Sprintf("%d", r.Index),
			formatFloat(r.Tiles),
			fmt.Sprintf("%d", r.Width),
			fmt.Sprintf("%d", r.Height),
			formatOptional(r.MinA),
			formatOptional(r.MinB),
			formatOptional(r.Speedup),
			countCell(r.CountA),
			countCell(r.CountB),
		}

		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// Rounds prints the rounds of a mosaic result
func (p *Printer) Rounds(res *morphbench.Result) error {

	dash := func(s string) string {
		if s == "" {
			return "-"
		}
		return s
	}

	ms := func(v float64) string {
		if math.IsNaN(v) {
			return "-"
		}
		return cell(v)
	}

	rows := make([][]string, 0, len(res.Samples))

	for _, r := range Rounds(res) {
		rows = append(rows, []string{
			fmt.Sprintf("%d", r.Index),
			fmt.Sprintf("%g", r.Tiles),
			fmt.Sprintf("%d", r.Width),
			fmt.Sprintf("%d", r.Height),
			ms(r.MinA),
			ms(r.MinB),
			ms(r.Speedup),
			dash(countCell(r.CountA)),
			dash(countCell(r.CountB)),
		})
	}

	title := fmt.Sprintf("rounds %s", res.Operation)

	return p.Table(title, RoundsHeader(res.BackendA, res.BackendB), rows)
}

// RoundsFileName returns the base name of the rounds table of a mosaic run,
// such as gray-lena-erode-mosaic-rounds.csv
func RoundsFileName(imageFile string, binary bool, op string) string {
	return strings.TrimSuffix(FileName(imageFile, binary, op, morphbench.AxisMosaic, false), ".csv") + "-rounds.csv"
}

// UsageFileName returns the name of the resource usage table recorded by a
// monitor attached to a mosaic run, such as
// usage-erode-lena-both-001-03-08192.csv
func UsageFileName(op, imageFile, which string, start, rounds, size int) string {

	name := strings.TrimSuffix(filepath.Base(imageFile), filepath.Ext(imageFile))

	return fmt.Sprintf("usage-%s-%s-%s-%03d-%02d-%05d.csv", op, name, which, start, rounds, size)
}
