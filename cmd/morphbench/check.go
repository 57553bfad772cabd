package main

import (
	"fmt"
	"image"
	"io"
	"os"

	"github.com/spf13/cobra"

	morphbench "github.com/swdee/go-morphbench"
	"github.com/swdee/go-morphbench/config"
	"github.com/swdee/go-morphbench/preprocess"
	"github.com/swdee/go-morphbench/report"
)

var checkFlags = benchFlags.merge(flagTable{
	strings: []stringFlag{
		{"image", "i", "Image file", func(c *config.Config) *string { return &c.Image }},
	},
})

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Run an operation once on every backend and compare their outputs to backend a",
	Args:  cobra.NoArgs,
	RunE:  runCheck,
}

func init() {
	checkFlags.define(checkCmd)
}

// output is what one backend produced for the operation
type output struct {
	backend string
	img     *image.Gray
	count   int
	counted bool
}

func runCheck(cmd *cobra.Command, args []string) error {

	cfg, err := loadConfig(cmd, checkFlags)

	if err != nil {
		return err
	}

	reg, err := newRegistry()

	if err != nil {
		return err
	}

	img, err := preprocess.Load(cfg.Image)

	if err != nil {
		return err
	}

	return check(os.Stdout, reg, cfg, img)
}

// check runs the configured operation of every backend implementing it on img
// and prints how each output differs from that of backend a
func check(w io.Writer, reg *morphbench.Registry, cfg config.Config, img *image.Gray) error {

	params, err := cfg.Params()

	if err != nil {
		return err
	}

	backends := []string{cfg.BackendA}

	for _, b := range reg.Backends() {
		if b != cfg.BackendA && reg.Has(cfg.Operation, b) {
			backends = append(backends, b)
		}
	}

	outputs := make([]output, 0, len(backends))

	for _, backend := range backends {
		out, err := runOnce(reg, cfg.Operation, backend, img, params)

		if err != nil {
			return fmt.Errorf("backend %s: %w", backend, err)
		}

		outputs = append(outputs, out)
	}

	ref := outputs[0]
	header := []string{"backend", "regions", "pixels differing", "max difference"}
	rows := make([][]string, 0, len(outputs))

	for _, out := range outputs {
		row := []string{out.backend, "-", "-", "-"}

		if out.counted {
			row[1] = fmt.Sprintf("%d", out.count)
		}

		if out.img != nil && ref.img != nil {
			n, d, err := compare(ref.img, out.img)

			if err != nil {
				return fmt.Errorf("backend %s: %w", out.backend, err)
			}

			row[2] = fmt.Sprintf("%d", n)
			row[3] = fmt.Sprintf("%d", d)
		}

		logger.Debug("output compared", "backend", out.backend, "reference", ref.backend)
		rows = append(rows, row)
	}

	title := fmt.Sprintf("%s on %s, compared to %s", cfg.Operation, cfg.Image, ref.backend)

	return report.NewPrinter(w, false).Table(title, header, rows)
}

// runOnce prepares and runs the kernel of one backend and collects whatever
// output it exposes
func runOnce(reg *morphbench.Registry, op, backend string, img *image.Gray, p morphbench.Params) (output, error) {

	out := output{backend: backend}

	b, err := reg.Binding(op, backend)

	if err != nil {
		return out, err
	}

	k, err := b.Factory(img, p)

	if err != nil {
		return out, err
	}

	defer func() {
		if err := k.Close(); err != nil {
			logger.Debug("kernel release failed", "backend", backend, "error", err)
		}
	}()

	if err := k.Run(); err != nil {
		return out, err
	}

	if c, ok := k.(morphbench.Counter); ok {
		out.count = c.Count()
		out.counted = true
	}

	if im, ok := k.(morphbench.Imager); ok {
		if out.img, err = im.Image(); err != nil {
			return out, err
		}
	}

	return out, nil
}

// compare returns the number of pixels where a and b differ and the largest
// difference
func compare(a, b *image.Gray) (int, int, error) {

	if a.Bounds().Size() != b.Bounds().Size() {
		return 0, 0, fmt.Errorf("output size %v differs from %v", b.Bounds().Size(), a.Bounds().Size())
	}

	ac, bc := preprocess.Clone(a), preprocess.Clone(b)
	n, largest := 0, 0

	for i, v := range ac.Pix {
		d := int(v) - int(bc.Pix[i])

		if d < 0 {
			d = -d
		}

		if d > 0 {
			n++
			largest = max(largest, d)
		}
	}

	return n, largest, nil
}
