package main

import (
	"path/filepath"

	"github.com/spf13/cobra"
	"gonum.org/v1/plot"

	"github.com/swdee/go-morphbench/render"
	"github.com/swdee/go-morphbench/report"
)

var plotCmd = &cobra.Command{
	Use:   "plot table.csv",
	Short: "Draw a times or speed up table as a PNG chart",
	Args:  cobra.ExactArgs(1),
	RunE:  runPlot,
}

func init() {
	f := plotCmd.Flags()
	f.Bool("speedup", false, "Draw the speed up instead of the times")
	f.String("dirout", "", "Output directory (default is the directory of the table)")
	f.String("fout", "", "Output file name (default is derived from the table name)")
	f.String("title", "", "Chart title (default is derived from the table name)")
	f.String("stat", "mean", "Statistic drawn by a times chart, mean stdev min or max")
	f.String("xscale", "auto", "X axis scale, auto lin or log")
	f.String("yscale", "auto", "Y axis scale, auto lin or log")
	f.Float64("xmin", 0, "X min (default is auto)")
	f.Float64("xmax", 0, "X max (default is auto)")
	f.Float64("ymin", 0, "Y min (default is auto)")
	f.Float64("ymax", 0, "Y max (default is auto)")
}

// optionalFloat returns the flag value or nil when it was not set
func optionalFloat(cmd *cobra.Command, name string) *float64 {

	if !cmd.Flags().Changed(name) {
		return nil
	}

	v, err := cmd.Flags().GetFloat64(name)

	if err != nil {
		return nil
	}

	return &v
}

func runPlot(cmd *cobra.Command, args []string) error {

	f := cmd.Flags()
	in := args[0]

	speedup, _ := f.GetBool("speedup")
	stat, _ := f.GetString("stat")
	title, _ := f.GetString("title")
	dirOut, _ := f.GetString("dirout")
	fileOut, _ := f.GetString("fout")
	xs, _ := f.GetString("xscale")
	ys, _ := f.GetString("yscale")

	xscale, err := render.ParseScale(xs)

	if err != nil {
		return err
	}

	yscale, err := render.ParseScale(ys)

	if err != nil {
		return err
	}

	if title == "" {
		title = render.Title(in, speedup)
	}

	opts := render.Options{
		Title:  title,
		XScale: xscale,
		YScale: yscale,
		XMin:   optionalFloat(cmd, "xmin"),
		XMax:   optionalFloat(cmd, "xmax"),
		YMin:   optionalFloat(cmd, "ymin"),
		YMax:   optionalFloat(cmd, "ymax"),
		Stat:   stat,
	}

	table, err := report.ReadTableFile(in)

	if err != nil {
		return err
	}

	logger.Debug("table read", "file", in, "columns", table.Header, "rows", len(table.Rows))

	var p *plot.Plot

	if speedup {
		p, err = render.Speedup(table, opts)
	} else {
		p, err = render.Times(table, opts)
	}

	if err != nil {
		return err
	}

	logger.Debug("chart limits", "x", []float64{p.X.Min, p.X.Max}, "y", []float64{p.Y.Min, p.Y.Max})

	if dirOut == "" {
		dirOut = filepath.Dir(in)
	}

	if fileOut == "" {
		fileOut = render.OutputName(in, speedup)
	}

	out := filepath.Join(dirOut, fileOut)

	if err := render.Save(p, out); err != nil {
		return err
	}

	logger.Info("chart saved", "file", out)
	return nil
}
