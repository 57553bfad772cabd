package render

import (
	"fmt"
	"math"
	"path/filepath"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	morphbench "github.com/swdee/go-morphbench"
	"github.com/swdee/go-morphbench/report"
)

// Scale of a chart axis
type Scale string

const (
	// Auto picks Log when the data spans more than a decade, Lin otherwise
	Auto Scale = "auto"
	Lin  Scale = "lin"
	Log  Scale = "log"
)

// ParseScale accepts auto, lin, linear or log
func ParseScale(s string) (Scale, error) {

	switch strings.ToLower(s) {
	case "", "auto":
		return Auto, nil
	case "lin", "linear":
		return Lin, nil
	case "log":
		return Log, nil
	}

	return Auto, fmt.Errorf("%w: invalid axis scale %q, use auto, lin or log",
		morphbench.ErrInvalidParameter, s)
}

// Resolve turns Auto into Lin or Log for data in [min, max]
func (s Scale) Resolve(min, max float64) Scale {

	if s != Auto {
		return s
	}

	if min > 0 && max > 10*min {
		return Log
	}

	return Lin
}

// Limits rounds an axis bound outwards.  On a log scale bounds go to the
// enclosing power of ten, on a linear scale to the enclosing multiple of the
// leading decimal digit.
func Limits(v float64, s Scale, upper bool) float64 {

	if v <= 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}

	decade := math.Log10(v)

	if s == Log {
		if upper {
			return math.Pow(10, math.Ceil(decade))
		}
		return math.Pow(10, math.Floor(decade))
	}

	dx := math.Pow(10, math.Floor(decade))
	vm := math.Floor(v/dx) * dx

	if upper && vm != v {
		return vm + dx
	}

	return vm
}

// Options controls how a chart is drawn.  Nil bounds are computed from the
// data.
type Options struct {
	Title  string
	XScale Scale
	YScale Scale
	XMin   *float64
	XMax   *float64
	YMin   *float64
	YMax   *float64
	// Stat selects the statistic drawn by a times chart
	Stat string
}

// series is one named line of a chart
type series struct {
	name string
	xys  plotter.XYs
}

// points pairs x with y skipping missing values
func points(x, y []float64) plotter.XYs {

	xys := make(plotter.XYs, 0, len(x))

	for i := range x {
		if math.IsNaN(x[i]) || math.IsNaN(y[i]) {
			continue
		}

		xys = append(xys, plotter.XY{X: x[i], Y: y[i]})
	}

	return xys
}

// Times draws one line per backend of the selected statistic of a times
// table
func Times(t *report.Table, opts Options) (*plot.Plot, error) {

	stat := opts.Stat

	if stat == "" {
		stat = "mean"
	}

	x := t.Column(0)
	var lines []series

	for i, h := range t.Header[1:] {
		backend, col, ok := strings.Cut(h, ".")

		if !ok || col != stat {
			continue
		}

		lines = append(lines, series{name: backend, xys: points(x, t.Column(i+1))})
	}

	if len(lines) == 0 {
		return nil, fmt.Errorf("%w: table has no %q columns", morphbench.ErrInvalidParameter, stat)
	}

	return draw(t.Axis(), "Time (ms)", "Processing time", lines, opts)
}

// Speedup draws the ratio column of a speed-up table
func Speedup(t *report.Table, opts Options) (*plot.Plot, error) {

	col := t.Index("ratio")

	if col < 0 {
		return nil, fmt.Errorf("%w: table has no ratio column", morphbench.ErrInvalidParameter)
	}

	lines := []series{{name: "Speed Up", xys: points(t.Column(0), t.Column(col))}}

	return draw(t.Axis(), "Speed Up", "Speed Up", lines, opts)
}

// bounds returns the extent of the data of every line
func bounds(lines []series) (xmin, xmax, ymin, ymax float64) {

	xmin, ymin = math.Inf(1), math.Inf(1)
	xmax, ymax = math.Inf(-1), math.Inf(-1)

	for _, l := range lines {
		for _, p := range l.xys {
			xmin, xmax = math.Min(xmin, p.X), math.Max(xmax, p.X)
			ymin, ymax = math.Min(ymin, p.Y), math.Max(ymax, p.Y)
		}
	}

	return xmin, xmax, ymin, ymax
}

// axisRange resolves the scale and limits of one axis
func axisRange(s Scale, dataMin, dataMax float64, min, max *float64) (Scale, float64, float64) {

	s = s.Resolve(dataMin, dataMax)

	lo, hi := Limits(dataMin, s, false), Limits(dataMax, s, true)

	if min != nil {
		lo = *min
	}

	if max != nil {
		hi = *max
	}

	// a log axis can not start at zero
	if s == Log && lo <= 0 {
		s = Lin
	}

	return s, lo, hi
}

func draw(axis morphbench.Axis, yLabel, title string, lines []series, opts Options) (*plot.Plot, error) {

	xmin, xmax, ymin, ymax := bounds(lines)

	if math.IsInf(xmin, 0) {
		return nil, fmt.Errorf("%w: nothing to plot", morphbench.ErrInvalidParameter)
	}

	p := plot.New()

	if opts.Title != "" {
		title = opts.Title
	}

	p.Title.Text = title
	p.X.Label.Text = axis.Label()
	p.Y.Label.Text = yLabel

	var xs, ys Scale
	xs, p.X.Min, p.X.Max = axisRange(opts.XScale, xmin, xmax, opts.XMin, opts.XMax)
	ys, p.Y.Min, p.Y.Max = axisRange(opts.YScale, ymin, ymax, opts.YMin, opts.YMax)

	if xs == Log {
		p.X.Scale = plot.LogScale{}
		p.X.Tick.Marker = plot.LogTicks{Prec: -1}
	}

	if ys == Log {
		p.Y.Scale = plot.LogScale{}
		p.Y.Tick.Marker = plot.LogTicks{Prec: -1}
	}

	p.Add(plotter.NewGrid())

	for i, l := range lines {
		line, pts, err := plotter.NewLinePoints(l.xys)

		if err != nil {
			return nil, fmt.Errorf("error drawing %s: %w", l.name, err)
		}

		line.Color = seriesColor(i)
		pts.Color = seriesColor(i)

		p.Add(line, pts)
		p.Legend.Add(l.name, line, pts)
	}

	p.Legend.Top = true

	return p, nil
}

// Save writes the chart as a 6 inch square image, the format follows the file
// extension
func Save(p *plot.Plot, file string) error {
	return p.Save(6*vg.Inch, 6*vg.Inch, file)
}

// OutputName returns the chart file name of a table, such as
// gray-lena-erode-szim-times.png
func OutputName(table string, speedup bool) string {

	name := strings.TrimSuffix(filepath.Base(table), filepath.Ext(table))

	if speedup {
		return strings.TrimSuffix(name, "-speedup") + "-speedup.png"
	}

	return name + "-times.png"
}

// Title builds a chart title from a table file name written by the sweep
// command
func Title(table string, speedup bool) string {

	title := "Processing time"

	if speedup {
		title = "Speed Up"
	}

	name := strings.TrimSuffix(filepath.Base(table), filepath.Ext(table))
	parts := strings.Split(name, "-")

	if len(parts) < 4 {
		return title
	}

	// image names may contain dashes, the kind leads and the operation and
	// axis trail
	n := len(parts)
	if speedup && parts[n-1] == "speedup" {
		n--
	}

	if n < 4 {
		return title
	}

	image := strings.Join(parts[1:n-2], "-")

	return fmt.Sprintf("%s\nImage %s - Type %s - Function %s", title, image, parts[0], parts[n-2])
}
