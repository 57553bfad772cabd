// Package report writes sweep results as semicolon separated tables and as
// tables for the terminal
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	morphbench "github.com/swdee/go-morphbench"
)

// Separator is the field delimiter of every table written
const Separator = ';'

// statistics are the per backend columns of a times table, in order
var statistics = []string{"mean", "stdev", "min", "max"}

// formatFloat writes v with the fewest digits that read back exactly
func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// TimesHeader returns the header row of a times table
func TimesHeader(axis morphbench.Axis, a, b string) []string {

	header := []string{string(axis)}

	for _, backend := range []string{a, b} {
		for _, stat := range statistics {
			header = append(header, backend+"."+stat)
		}
	}

	return header
}

// summaryCells returns the cells of one backend, empty when missing
func summaryCells(s *morphbench.TimingSummary) []string {

	if s == nil {
		return make([]string, len(statistics))
	}

	return []string{
		formatFloat(s.Mean),
		formatFloat(s.StdDev),
		formatFloat(s.Min),
		formatFloat(s.Max),
	}
}

// WriteTimes writes one row per sweep value with the summaries of both
// backends.  Missing points keep their row with empty cells.
func WriteTimes(w io.Writer, res *morphbench.Result) error {

	cw := csv.NewWriter(w)
	cw.Comma = Separator

	if err := cw.Write(TimesHeader(res.Axis, res.BackendA, res.BackendB)); err != nil {
		return err
	}

	for _, s := range res.Samples {
		row := append([]string{formatFloat(s.Value)}, summaryCells(s.A)...)
		row = append(row, summaryCells(s.B)...)

		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// formatOptional writes v, or an empty cell when v is NaN
func formatOptional(v float64) string {

	if math.IsNaN(v) {
		return ""
	}

	return formatFloat(v)
}

// WriteSpeedup writes the speed-up series with its base ten logarithm and the
// confidence of each ratio.  A confidence that could not be computed is left
// empty.
func WriteSpeedup(w io.Writer, axis morphbench.Axis, points []morphbench.SpeedupPoint) error {

	cw := csv.NewWriter(w)
	cw.Comma = Separator

	if err := cw.Write([]string{string(axis), "ratio", "log10", "confidence"}); err != nil {
		return err
	}

	for _, p := range points {
		row := []string{formatFloat(p.Value), formatFloat(p.Ratio), formatFloat(p.Log10), formatOptional(p.Confidence)}

		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// Table is a numeric table read back from disk.  Empty cells read as NaN.
type Table struct {
	Header []string
	Rows   [][]float64
}

// Column returns the values of column i
func (t *Table) Column(i int) []float64 {

	out := make([]float64, len(t.Rows))

	for r, row := range t.Rows {
		out[r] = row[i]
	}

	return out
}

// Index returns the position of the named column or -1
func (t *Table) Index(name string) int {

	for i, h := range t.Header {
		if h == name {
			return i
		}
	}

	return -1
}

// Axis returns the sweep axis named by the first column
func (t *Table) Axis() morphbench.Axis {
	return morphbench.Axis(t.Header[0])
}

// ReadTable parses a table written by WriteTimes or WriteSpeedup
func ReadTable(r io.Reader) (*Table, error) {

	cr := csv.NewReader(r)
	cr.Comma = Separator

	records, err := cr.ReadAll()

	if err != nil {
		return nil, fmt.Errorf("error reading table: %w", err)
	}

	if len(records) == 0 || len(records[0]) < 2 {
		return nil, fmt.Errorf("table has no header")
	}

	t := &Table{Header: records[0]}

	for n, rec := range records[1:] {
		row := make([]float64, len(rec))

		for i, cell := range rec {
			if strings.TrimSpace(cell) == "" {
				row[i] = math.NaN()
				continue
			}

			row[i], err = strconv.ParseFloat(strings.TrimSpace(cell), 64)

			if err != nil {
				return nil, fmt.Errorf("row %d column %q: %w", n+1, t.Header[i], err)
			}
		}

		t.Rows = append(t.Rows, row)
	}

	return t, nil
}

// ReadTableFile reads a table from file
func ReadTableFile(file string) (*Table, error) {

	f, err := os.Open(file)

	if err != nil {
		return nil, err
	}

	defer f.Close()

	return ReadTable(f)
}

// FileName returns the base name of the table of a sweep, such as
// gray-lena-erode-szim.csv.  Speed-up tables get a -speedup suffix.
func FileName(imageFile string, binary bool, op string, axis morphbench.Axis, speedup bool) string {

	kind := "gray"

	if binary {
		kind = "bin"
	}

	name := strings.TrimSuffix(filepath.Base(imageFile), filepath.Ext(imageFile))
	out := fmt.Sprintf("%s-%s-%s-%s", kind, name, op, axis)

	if speedup {
		out += "-speedup"
	}

	return out + ".csv"
}

// Save creates dir if needed and writes file with fn
func Save(dir, file string, fn func(w io.Writer) error) (string, error) {

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("error creating output directory: %w", err)
	}

	path := filepath.Join(dir, file)
	f, err := os.Create(path)

	if err != nil {
		return "", err
	}

	if err := fn(f); err != nil {
		f.Close()
		return "", fmt.Errorf("error writing %s: %w", path, err)
	}

	return path, f.Close()
}
