package main

import (
	"fmt"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/swdee/go-morphbench/backend/opencv"
	"github.com/swdee/go-morphbench/config"
	"github.com/swdee/go-morphbench/preprocess"
	"github.com/swdee/go-morphbench/render"
)

var imagesCmd = &cobra.Command{
	Use:   "images file...",
	Short: "Write rescaled copies of images, and optionally their watershed segmentation",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runImages,
}

func init() {
	f := imagesCmd.Flags()
	f.Int("rounds", 7, "Number of scales, starting at 0.5 and doubling")
	f.Bool("segment", false, "Also write the watershed segmentation of each image")
	f.StringP("out", "o", "", "Output directory (default is the directory of each image)")
}

func runImages(cmd *cobra.Command, args []string) error {

	f := cmd.Flags()
	rounds, _ := f.GetInt("rounds")
	segment, _ := f.GetBool("segment")
	out, _ := f.GetString("out")

	if rounds < 1 {
		return fmt.Errorf("rounds must be at least 1, got %d", rounds)
	}

	cfg, err := loadConfig(cmd, flagTable{})

	if err != nil {
		return err
	}

	g, ctx := errgroup.WithContext(cmd.Context())
	g.SetLimit(runtime.NumCPU())

	for _, file := range args {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			return writeImages(cfg, file, out, rounds, segment)
		})
	}

	return g.Wait()
}

// writeImages writes the rescaled copies of one image
func writeImages(cfg config.Config, file, dir string, rounds int, segment bool) error {

	img, err := preprocess.Load(file)

	if err != nil {
		return err
	}

	if dir == "" {
		dir = filepath.Dir(file)
	}

	base := strings.TrimSuffix(filepath.Base(file), filepath.Ext(file))
	resizer := preprocess.NewResizer(img, preprocess.Bilinear, preprocess.IsBinary(img))

	k := 0.5

	for i := 0; i < rounds; i++ {

		scaled, err := resizer.Scale(k)

		if err != nil {
			return err
		}

		name := filepath.Join(dir, fmt.Sprintf("%s-%04d.png", base, scaled.Bounds().Dx()))

		if err := preprocess.Save(name, scaled); err != nil {
			return err
		}

		logger.Info("image written", "file", name, "scale", k, "interpolation", resizer.Interpolation())
		k *= 2
	}

	if !segment {
		return nil
	}

	labels, err := opencv.Segment(img, cfg.Watershed.For(file))

	if err != nil {
		return err
	}

	name := filepath.Join(dir, base+"-segment.png")

	if err := render.PaintLabelsToFile(name, img, labels, 0.5); err != nil {
		return err
	}

	logger.Info("segmentation written", "file", name)
	return nil
}
