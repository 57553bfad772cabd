package morphbench

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"math"
	"runtime"
	"time"

	"github.com/google/uuid"
	"github.com/swdee/go-morphbench/preprocess"
)

// Axis names the parameter varied by a sweep.  The value is used as the first
// column header and file name suffix of the output tables.
type Axis string

const (
	// AxisImageSize varies the image side in pixels
	AxisImageSize Axis = "szim"
	// AxisStructElement varies the structuring element radius
	AxisStructElement Axis = "szse"
	// AxisMosaic varies the number of tiles per side of a mosaic
	AxisMosaic Axis = "mosaic"
)

// Label returns a human readable name of the axis
func (a Axis) Label() string {
	switch a {
	case AxisImageSize:
		return "Image size"
	case AxisStructElement:
		return "Structuring Element size"
	case AxisMosaic:
		return "Mosaic tiles per side"
	default:
		return string(a)
	}
}

// Point is the input of one sweep value, shared read only by both backends
type Point struct {
	Value  float64
	Image  *image.Gray
	Params Params
}

// Sweep is an ordered sequence of values of one axis and the builder that
// turns each value into a Point
type Sweep struct {
	Axis   Axis
	Values []float64
	Build  func(v float64) (Point, error)
}

// ImageSizeSweep scales the source so its width equals each value in pixels,
// keeping the structuring element fixed at base.  The scale factor of each
// point is recorded in its Params.
func ImageSizeSweep(src *image.Gray, sides []float64, binary bool, base Params) Sweep {

	resizer := preprocess.NewResizer(src, preprocess.Bilinear, binary)
	width := float64(resizer.SrcWidth())

	return Sweep{
		Axis:   AxisImageSize,
		Values: sides,
		Build: func(v float64) (Point, error) {

			k := v / width
			img, err := resizer.Scale(k)

			if err != nil {
				return Point{}, err
			}

			p := base
			p.Scale = k

			return Point{Value: v, Image: img, Params: p}, nil
		},
	}
}

// StructElementSweep keeps the image at its source size and varies the
// structuring element radius over radii
func StructElementSweep(src *image.Gray, radii []float64, base Params) Sweep {

	return Sweep{
		Axis:   AxisStructElement,
		Values: radii,
		Build: func(v float64) (Point, error) {

			if v < 0 || v != math.Trunc(v) {
				return Point{}, fmt.Errorf("invalid structuring element radius %v", v)
			}

			p := base
			p.SE = preprocess.NewStructElement(base.SE.Shape, int(v))

			return Point{Value: v, Image: src, Params: p}, nil
		},
	}
}

// MosaicSweep tiles the source v x v times for each value.  When resize is
// greater than zero the mosaic is then scaled to a resize x resize square with
// nearest neighbour sampling, and the horizontal scale is recorded in its
// Params.
func MosaicSweep(src *image.Gray, tiles []float64, resize int, base Params) Sweep {

	return Sweep{
		Axis:   AxisMosaic,
		Values: tiles,
		Build: func(v float64) (Point, error) {

			n := int(v)

			if float64(n) != v {
				return Point{}, fmt.Errorf("invalid mosaic tiling %v", v)
			}

			img, err := preprocess.Mosaic(src, n, n)

			if err != nil {
				return Point{}, err
			}

			p := base

			if resize > 0 {
				p.Scale = float64(resize) / float64(img.Bounds().Dx())
				img, err = preprocess.NewResizer(img, preprocess.Nearest, false).Resize(resize, resize)

				if err != nil {
					return Point{}, err
				}
			}

			return Point{Value: v, Image: img, Params: p}, nil
		},
	}
}

// Options configures a Harness
type Options struct {
	// Number fixes the batch size, zero auto-ranges it per point
	Number int
	// Repeat is the number of rounds per point
	Repeat int
	// Threshold is the minimum batch duration when auto-ranging
	Threshold time.Duration
	// Budget bounds the wall clock time of one run, zero is unbounded
	Budget time.Duration
	// CollectGarbage runs the garbage collector before each measurement
	CollectGarbage bool
}

// Sample holds the summaries of both backends for one sweep value.  A missing
// point has both summaries nil, and the summary of a backend left out of a
// single backend run is always nil.
type Sample struct {
	Value float64
	A     *TimingSummary
	B     *TimingSummary
	// Width and Height are the size of the point image, zero when it could not
	// be built
	Width  int
	Height int
}

// Missing reports if the point could not be measured
func (s Sample) Missing() bool {
	return s.A == nil && s.B == nil
}

// Complete reports if both backends were measured
func (s Sample) Complete() bool {
	return s.A != nil && s.B != nil
}

// Warning records why a sweep point is missing
type Warning struct {
	Value   float64
	Backend string
	Err     error
}

// String returns the warning as a log line
func (w Warning) String() string {

	if w.Backend == "" {
		return fmt.Sprintf("point %v: %v", w.Value, w.Err)
	}

	return fmt.Sprintf("point %v backend %s: %v", w.Value, w.Backend, w.Err)
}

// Result is the outcome of one sweep.  Samples are index aligned with the
// sweep values.
type Result struct {
	ID        uuid.UUID
	Operation string
	Axis      Axis
	BackendA  string
	BackendB  string
	// Skipped names the backend left out of a single backend run
	Skipped  string
	Samples  []Sample
	Warnings []Warning
	// Partial is set when the budget ran out before every value was measured
	Partial bool
	Elapsed time.Duration
}

// Valid returns the number of measured points
func (r *Result) Valid() int {

	n := 0

	for _, s := range r.Samples {
		if !s.Missing() {
			n++
		}
	}

	return n
}

// Harness runs sweeps sequentially on the calling goroutine
type Harness struct {
	opts  Options
	timer *Timer
	log   *slog.Logger
}

// NewHarness returns a Harness.  A nil clock uses the system clock and a nil
// logger discards records.
func NewHarness(opts Options, clock Clock, logger *slog.Logger) (*Harness, error) {

	if opts.Repeat < 1 {
		return nil, fmt.Errorf("%w: repeat must be at least 1, got %d", ErrInvalidParameter, opts.Repeat)
	}

	if opts.Number < 0 {
		return nil, fmt.Errorf("%w: number must not be negative, got %d", ErrInvalidParameter, opts.Number)
	}

	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return &Harness{
		opts:  opts,
		timer: NewTimer(clock, opts.Threshold),
		log:   logger,
	}, nil
}

// Run measures both bindings of the pair at every value of the sweep.  Points
// that fail are recorded as missing in both series and the sweep continues.
// When the context is done, or the budget runs out, the remaining points are
// recorded as missing and the partial result is returned without error.
func (h *Harness) Run(ctx context.Context, pair Pair, sweep Sweep) (*Result, error) {

	if sweep.Build == nil {
		return nil, fmt.Errorf("%w: sweep %s has no point builder", ErrInvalidParameter, sweep.Axis)
	}

	if !pair.A.Enabled() && !pair.B.Enabled() {
		return nil, fmt.Errorf("%w: no backend enabled for %s", ErrInvalidParameter, pair.Operation)
	}

	if h.opts.Budget > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.opts.Budget)
		defer cancel()
	}

	res := &Result{
		ID:        uuid.New(),
		Operation: pair.Operation,
		Axis:      sweep.Axis,
		BackendA:  pair.A.Backend,
		BackendB:  pair.B.Backend,
		Samples:   make([]Sample, 0, len(sweep.Values)),
	}

	switch {
	case !pair.A.Enabled():
		res.Skipped = pair.A.Backend
	case !pair.B.Enabled():
		res.Skipped = pair.B.Backend
	}

	log := h.log.With("run", res.ID.String(), "operation", pair.Operation, "axis", string(sweep.Axis))
	log.Info("sweep started", "points", len(sweep.Values),
		"a", pair.A.Backend, "b", pair.B.Backend)

	start := time.Now()

	for _, v := range sweep.Values {

		sample := Sample{Value: v}

		if err := ctx.Err(); err != nil {
			res.Partial = true
			res.warn(log, Warning{Value: v, Err: fmt.Errorf("%w: %w", ErrBudgetExceeded, err)})
			res.Samples = append(res.Samples, sample)
			continue
		}

		pt, err := sweep.Build(v)

		if err != nil {
			res.warn(log, Warning{Value: v, Err: fmt.Errorf("%w: building input: %w", ErrOperationFailure, err)})
			res.Samples = append(res.Samples, sample)
			continue
		}

		sample.Width = pt.Image.Bounds().Dx()
		sample.Height = pt.Image.Bounds().Dy()

		sa, errA := h.measure(log, pair.A, pt)

		if errA != nil {
			res.warn(log, Warning{Value: v, Backend: pair.A.Backend, Err: errA})
		}

		sb, errB := h.measure(log, pair.B, pt)

		if errB != nil {
			res.warn(log, Warning{Value: v, Backend: pair.B.Backend, Err: errB})
		}

		if errA == nil && errB == nil {
			sample.A = sa
			sample.B = sb

			log.Debug("point measured", "value", v, "width", sample.Width, "height", sample.Height)
		}

		res.Samples = append(res.Samples, sample)
	}

	res.Elapsed = time.Since(start)

	log.Info("sweep finished", "valid", res.Valid(), "points", len(res.Samples),
		"partial", res.Partial, "elapsed", res.Elapsed.Round(time.Millisecond))

	return res, nil
}

// measure prepares the binding's kernel for the point and times it.  A
// disabled binding returns a nil summary.
func (h *Harness) measure(log *slog.Logger, b Binding, pt Point) (*TimingSummary, error) {

	if !b.Enabled() {
		return nil, nil
	}

	k, err := b.Factory(pt.Image, pt.Params)

	if err != nil {
		return nil, fmt.Errorf("%w: prepare: %w", ErrOperationFailure, err)
	}

	defer func() {
		if err := k.Close(); err != nil {
			log.Debug("kernel release failed", "value", pt.Value, "backend", b.Backend, "error", err)
		}
	}()

	if h.opts.CollectGarbage {
		runtime.GC()
	}

	n := h.opts.Number

	if n == 0 {
		n, err = h.timer.Calibrate(k)

		if err != nil {
			return nil, err
		}
	}

	rounds, err := h.timer.Repeat(k, n, h.opts.Repeat)

	if err != nil {
		return nil, err
	}

	s, err := Summarize(rounds, n)

	if err != nil {
		return nil, err
	}

	if c, ok := k.(Counter); ok {
		s.Count = c.Count()
	}

	log.Debug("backend measured", "value", pt.Value, "backend", b.Backend,
		"min_ms", s.Min, "number", s.Number, "count", s.Count)

	return &s, nil
}

// warn records a warning on the result and the log.  Calibration failures are
// logged under their own message so they can be told apart from operations
// that failed outright.
func (r *Result) warn(log *slog.Logger, w Warning) {

	r.Warnings = append(r.Warnings, w)

	switch {
	case errors.Is(w.Err, ErrCalibrationFailure):
		log.Warn("calibration failed, point skipped", "value", w.Value, "backend", w.Backend, "error", w.Err)
	case errors.Is(w.Err, ErrBudgetExceeded):
		log.Warn("budget exhausted, point skipped", "value", w.Value)
	default:
		log.Warn("operation failed, point skipped", "value", w.Value, "backend", w.Backend, "error", w.Err)
	}
}
