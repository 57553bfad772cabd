package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	morphbench "github.com/swdee/go-morphbench"
	"github.com/swdee/go-morphbench/config"
	"github.com/swdee/go-morphbench/preprocess"
	"github.com/swdee/go-morphbench/report"
)

var mosaicFlags = benchFlags.merge(flagTable{
	strings: []stringFlag{
		{"which", "", "Backends to time, both, a or b", func(c *config.Config) *string { return &c.Mosaic.Which }},
	},
	ints: []intFlag{
		{"imsize", "Work image size when resizing", func(c *config.Config) *int { return &c.Mosaic.Size }},
		{"ri", "Initial tiles per side", func(c *config.Config) *int { return &c.Mosaic.Start }},
		{"nr", "Number of rounds, the tiles per side double each round", func(c *config.Config) *int { return &c.Mosaic.Rounds }},
	},
	bools: []boolFlag{
		{"resize", "Resize each mosaic to imsize x imsize", func(c *config.Config) *bool { return &c.Mosaic.Resize }},
	},
})

var mosaicCmd = &cobra.Command{
	Use:   "mosaic file...",
	Short: "Time an operation on mosaics built by tiling each image",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runMosaic,
}

func init() {
	mosaicFlags.define(mosaicCmd)
	mosaicCmd.Flags().Bool("showpid", false, "Print the process id and the monitor command line, then wait for enter")
	mosaicCmd.Flags().Bool("csv", false, "Write the times table to stdout instead of the summary tables")
}

func runMosaic(cmd *cobra.Command, args []string) error {

	cfg, err := loadConfig(cmd, mosaicFlags)

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

	if b.pair, err = b.pair.Only(cfg.Mosaic.Which); err != nil {
		return err
	}

	if showpid, _ := cmd.Flags().GetBool("showpid"); showpid {
		b.monitorHint(args[0], os.Getpid())
		fmt.Fprint(b.out, "Hit enter to continue")

		if _, err := bufio.NewReader(os.Stdin).ReadString('\n'); err != nil {
			return fmt.Errorf("error waiting for enter: %w", err)
		}
	}

	csvOut, _ := cmd.Flags().GetBool("csv")

	return b.mosaic(cmd.Context(), args, csvOut)
}

// monitorHint prints the process id and the command that records its
// resource usage next to the tables of the run
func (b *bench) monitorHint(imageFile string, pid int) {

	m := b.cfg.Mosaic
	size := 0

	if m.Resize {
		size = m.Size
	}

	usage := report.UsageFileName(b.cfg.Operation, imageFile, m.Which, m.Start, m.Rounds, size)

	fmt.Fprintf(b.out, "PID : %d\n", pid)
	fmt.Fprintf(b.out, "Monitor with : morphbench monitor --csv --pid %d > %s\n", pid, usage)
}

// mosaic runs the mosaic sweep on every file and saves its times, rounds and,
// when both backends ran, speed-up tables
func (b *bench) mosaic(ctx context.Context, files []string, csvOut bool) error {

	cfg := b.cfg

	restore, err := b.pin()

	if err != nil {
		return err
	}

	defer restore()

	resize := 0
	if cfg.Mosaic.Resize {
		resize = cfg.Mosaic.Size
	}

	tiles := morphbench.Doubling(cfg.Mosaic.Start, cfg.Mosaic.Rounds)

	for _, file := range files {

		img, err := preprocess.Load(file)

		if err != nil {
			return err
		}

		binary := cfg.Binary || preprocess.IsBinary(img)

		params := b.params
		params.Watershed = cfg.Watershed.For(file)

		logger.Info("mosaic sweep", "file", file, "width", img.Bounds().Dx(),
			"height", img.Bounds().Dy(), "tiles", tiles, "which", cfg.Mosaic.Which)

		res, err := b.harness.Run(ctx, b.pair, morphbench.MosaicSweep(img, tiles, resize, params))

		if err != nil {
			return err
		}

		var points []morphbench.SpeedupPoint

		if csvOut {
			if err := report.WriteTimes(b.out, res); err != nil {
				return err
			}

			if points, err = speedup(res); err != nil {
				return err
			}
		} else {
			fmt.Fprintf(b.out, "=== %s ===\n\n", file)

			if points, err = b.report(res); err != nil {
				return err
			}

			if err := b.printer.Rounds(res); err != nil {
				return err
			}
		}

		if err := b.save(file, binary, res, points); err != nil {
			return err
		}

		name := report.RoundsFileName(file, binary, res.Operation)

		err = b.saveTable(name, "rounds", func(w io.Writer) error {
			return report.WriteRounds(w, res)
		})

		if err != nil {
			return err
		}
	}

	return nil
}
