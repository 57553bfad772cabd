package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	morphbench "github.com/swdee/go-morphbench"
	"github.com/swdee/go-morphbench/config"
	"github.com/swdee/go-morphbench/preprocess"
	"github.com/swdee/go-morphbench/report"
)

var sweepFlags = benchFlags.merge(flagTable{
	strings: []stringFlag{
		{"image", "i", "Image file", func(c *config.Config) *string { return &c.Image }},
		{"grow", "", "Image size growth, g (geometric) or a (arithmetic)", func(c *config.Config) *string { return &c.Sweep.Growth }},
	},
	ints: []intFlag{
		{"min-size", "Smallest image width of the image size sweep", func(c *config.Config) *int { return &c.Sweep.MinImageSize }},
		{"max-size", "Largest image width of the image size sweep", func(c *config.Config) *int { return &c.Sweep.MaxImageSize }},
		{"max-se", "Largest structuring element radius of the element sweep", func(c *config.Config) *int { return &c.Sweep.MaxRadius }},
	},
	stringss: []stringsFlag{
		{"axes", "Sweeps to run, szim (image size) and szse (element size)", func(c *config.Config) *[]string { return &c.Sweep.Axes }},
	},
})

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Time an operation on both backends while sweeping image and element size",
	Args:  cobra.NoArgs,
	RunE:  runSweep,
}

func init() {
	sweepFlags.define(sweepCmd)
}

// bench is the state shared by the sweep and mosaic commands
type bench struct {
	cfg     config.Config
	pair    morphbench.Pair
	harness *morphbench.Harness
	params  morphbench.Params
	out     io.Writer
	printer *report.Printer
}

// newBench resolves the backends of reg and builds the harness.  A nil clock
// uses the system clock.
func newBench(cfg config.Config, reg *morphbench.Registry, clock morphbench.Clock) (*bench, error) {

	pair, err := reg.Pair(cfg.Operation, cfg.BackendA, cfg.BackendB)

	if err != nil {
		return nil, err
	}

	h, err := morphbench.NewHarness(cfg.HarnessOptions(), clock, logger)

	if err != nil {
		return nil, err
	}

	params, err := cfg.Params()

	if err != nil {
		return nil, err
	}

	return &bench{
		cfg:     cfg,
		pair:    pair,
		harness: h,
		params:  params,
		out:     os.Stdout,
		printer: report.NewStdoutPrinter(),
	}, nil
}

// pin locks the calling goroutine to the configured cores, the returned
// function undoes it
func (b *bench) pin() (func(), error) {

	if len(b.cfg.CPUs) == 0 {
		return func() {}, nil
	}

	restore, err := morphbench.PinToCPUs(b.cfg.CPUs)

	if err != nil {
		return nil, fmt.Errorf("error pinning to cores %v: %w", b.cfg.CPUs, err)
	}

	cores, err := morphbench.CPUAffinity()

	if err != nil {
		restore()
		return nil, err
	}

	logger.Info("pinned to cores", "cpus", b.cfg.CPUs, "affinity", cores)
	return restore, nil
}

// report prints the result tables and returns the speed-up series.  A zero
// minimum is logged and leaves the series empty, as does a single backend
// run.
func (b *bench) report(res *morphbench.Result) ([]morphbench.SpeedupPoint, error) {

	if err := b.printer.Summary(res); err != nil {
		return nil, err
	}

	for _, w := range res.Warnings {
		fmt.Fprintf(b.out, "warning: %s\n", w)
	}

	if res.Partial {
		fmt.Fprintf(b.out, "warning: time budget exhausted, %d of %d points measured\n",
			res.Valid(), len(res.Samples))
	}

	fmt.Fprintf(b.out, "Elapsed time : %s\n\n", res.Elapsed.Round(time.Millisecond))

	points, err := speedup(res)

	if err != nil || res.Skipped != "" {
		return nil, err
	}

	if err := b.printer.Speedup(res, points); err != nil {
		return nil, err
	}

	return points, nil
}

// speedup returns the speed-up series of a result, empty for a single
// backend run.  A zero minimum is logged and leaves the series empty.
func speedup(res *morphbench.Result) ([]morphbench.SpeedupPoint, error) {

	if res.Skipped != "" {
		return nil, nil
	}

	points, err := morphbench.Speedup(res)

	if errors.Is(err, morphbench.ErrZeroMinimum) {
		logger.Warn("speed up not computed", "error", err)
		return nil, nil
	}

	return points, err
}

// saveTable writes one table to the output directory
func (b *bench) saveTable(name, what string, fn func(w io.Writer) error) error {

	path, err := report.Save(b.cfg.Output(), name, fn)

	if err != nil {
		return err
	}

	logger.Info(what+" saved", "file", path)
	return nil
}

// save writes the times and speed-up tables of a result.  The speed-up table
// is written with its header only when no ratio could be computed, and not at
// all for a single backend run.
func (b *bench) save(imageFile string, binary bool, res *morphbench.Result, points []morphbench.SpeedupPoint) error {

	name := report.FileName(imageFile, binary, res.Operation, res.Axis, false)

	err := b.saveTable(name, "times", func(w io.Writer) error {
		return report.WriteTimes(w, res)
	})

	if err != nil || res.Skipped != "" {
		return err
	}

	name = report.FileName(imageFile, binary, res.Operation, res.Axis, true)

	return b.saveTable(name, "speed up", func(w io.Writer) error {
		return report.WriteSpeedup(w, res.Axis, points)
	})
}

func runSweep(cmd *cobra.Command, args []string) error {

	cfg, err := loadConfig(cmd, sweepFlags)

	if err != nil {
		return err
	}

	reg, err := newRegistry()

	if err != nil {
		return err
	}

	b, err := newBench(cfg, reg, nil)

	if err != nil {
		return err
	}

	return b.sweep(cmd.Context())
}

// sweep runs every configured axis on the configured image and saves the
// tables of each
func (b *bench) sweep(ctx context.Context) error {

	cfg := b.cfg

	growth, err := morphbench.ParseGrowth(cfg.Sweep.Growth)

	if err != nil {
		return err
	}

	img, err := preprocess.Load(cfg.Image)

	if err != nil {
		return err
	}

	binary := cfg.Binary || preprocess.IsBinary(img)
	width := img.Bounds().Dx()

	kind := "gray"
	if binary {
		kind = "binary"
	}

	fmt.Fprintf(b.out, "Date     : %s\n", time.Now().Format("02/01/2006 03:04:05 PM"))
	fmt.Fprintf(b.out, "Image    : %s\n", cfg.Image)
	fmt.Fprintf(b.out, "  width  : %5d\n", width)
	fmt.Fprintf(b.out, "  height : %5d\n", img.Bounds().Dy())
	fmt.Fprintf(b.out, "  type   : %s\n", kind)
	fmt.Fprintf(b.out, "Function : %s (%s vs %s)\n", cfg.Operation, cfg.BackendA, cfg.BackendB)
	fmt.Fprintf(b.out, "  nb     : %5d\n", cfg.Timing.Number)
	fmt.Fprintf(b.out, "  repeat : %5d\n\n", cfg.Timing.Repeat)

	restore, err := b.pin()

	if err != nil {
		return err
	}

	defer restore()

	for _, axis := range cfg.Sweep.Axes {

		var sw morphbench.Sweep

		switch morphbench.Axis(axis) {
		case morphbench.AxisImageSize:
			scales := morphbench.ImageScales(width, cfg.Sweep.MinImageSize, cfg.Sweep.MaxImageSize, growth)
			sw = morphbench.ImageSizeSweep(img, morphbench.ImageSides(width, scales), binary, b.params)

		case morphbench.AxisStructElement:
			if !morphbench.UsesStructElement(cfg.Operation) {
				logger.Info("operation does not use a structuring element, sweep skipped",
					"operation", cfg.Operation, "axis", axis)
				continue
			}
			sw = morphbench.StructElementSweep(img, morphbench.Radii(cfg.Sweep.MaxRadius), b.params)

		default:
			return fmt.Errorf("%w: unknown sweep axis %q", morphbench.ErrInvalidParameter, axis)
		}

		fmt.Fprintf(b.out, "=== %s ===\n\n", sw.Axis.Label())

		res, err := b.harness.Run(ctx, b.pair, sw)

		if err != nil {
			return err
		}

		points, err := b.report(res)

		if err != nil {
			return err
		}

		if err := b.save(cfg.Image, binary, res, points); err != nil {
			return err
		}
	}

	return nil
}
