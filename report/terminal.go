package report

import (
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/mattn/go-isatty"

	morphbench "github.com/swdee/go-morphbench"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1).Align(lipgloss.Right)
	missStyle   = lipgloss.NewStyle().Padding(0, 1).Align(lipgloss.Right).Foreground(lipgloss.Color("241"))
	borderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
)

// IsTerminal reports if f is an interactive terminal
func IsTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Printer writes result tables, styled when writing to a terminal
type Printer struct {
	w      io.Writer
	styled bool
}

// NewPrinter returns a Printer on w
func NewPrinter(w io.Writer, styled bool) *Printer {
	return &Printer{w: w, styled: styled}
}

// NewStdoutPrinter returns a Printer on stdout styled if stdout is a terminal
func NewStdoutPrinter() *Printer {
	return NewPrinter(os.Stdout, IsTerminal(os.Stdout))
}

// cell formats a millisecond value
func cell(v float64) string {
	return fmt.Sprintf("%.3f", v)
}

// Summary prints one table per backend with the statistics of every point
func (p *Printer) Summary(res *morphbench.Result) error {

	for _, backend := range []string{res.BackendA, res.BackendB} {

		if backend == res.Skipped {
			continue
		}

		header := []string{res.Axis.Label(), "mean (ms)", "stdev", "min", "max", "number"}
		rows := make([][]string, 0, len(res.Samples))

		for _, s := range res.Samples {
			sum := s.A
			if backend == res.BackendB {
				sum = s.B
			}

			if sum == nil {
				rows = append(rows, []string{fmt.Sprintf("%g", s.Value), "-", "-", "-", "-", "-"})
				continue
			}

			rows = append(rows, []string{
				fmt.Sprintf("%g", s.Value),
				cell(sum.Mean), cell(sum.StdDev), cell(sum.Min), cell(sum.Max),
				fmt.Sprintf("%d", sum.Number),
			})
		}

		title := fmt.Sprintf("%s %s", backend, res.Operation)

		if err := p.Table(title, header, rows); err != nil {
			return err
		}
	}

	return nil
}

// Speedup prints the speed-up series
func (p *Printer) Speedup(res *morphbench.Result, points []morphbench.SpeedupPoint) error {

	header := []string{res.Axis.Label(), "speed up", "log10", "confidence"}
	rows := make([][]string, 0, len(points))

	for _, pt := range points {
		conf := "-"
		if !math.IsNaN(pt.Confidence) {
			conf = fmt.Sprintf("%.3f", pt.Confidence)
		}

		rows = append(rows, []string{
			fmt.Sprintf("%g", pt.Value),
			fmt.Sprintf("%.3f", pt.Ratio),
			fmt.Sprintf("%.3f", pt.Log10),
			conf,
		})
	}

	title := fmt.Sprintf("speed up %s / %s %s", res.BackendB, res.BackendA, res.Operation)

	return p.Table(title, header, rows)
}

// Table prints rows under a header and a title
func (p *Printer) Table(title string, header []string, rows [][]string) error {

	if p.styled {
		t := table.New().
			Border(lipgloss.RoundedBorder()).
			BorderStyle(borderStyle).
			Headers(header...).
			Rows(rows...).
			StyleFunc(func(row, col int) lipgloss.Style {
				switch {
				case row == table.HeaderRow:
					return headerStyle
				case row >= 0 && row < len(rows) && rows[row][1] == "-":
					return missStyle
				default:
					return cellStyle
				}
			})

		_, err := fmt.Fprintf(p.w, "%s\n%s\n\n", titleStyle.Render(title), t.Render())
		return err
	}

	var b strings.Builder

	b.WriteString("* " + title + "\n")
	writePlainRow(&b, header)

	for _, row := range rows {
		writePlainRow(&b, row)
	}

	b.WriteString("\n")

	_, err := io.WriteString(p.w, b.String())
	return err
}

// writePlainRow writes fixed width right aligned columns, the first column
// being wider for the axis label
func writePlainRow(b *strings.Builder, cells []string) {

	for i, c := range cells {
		if i == 0 {
			fmt.Fprintf(b, "%-26s", c)
			continue
		}

		fmt.Fprintf(b, " %12s", c)
	}

	b.WriteString("\n")
}
