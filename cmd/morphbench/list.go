package main

import (
	"github.com/spf13/cobra"

	"github.com/swdee/go-morphbench/report"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the operations each backend implements",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {

		reg, err := newRegistry()

		if err != nil {
			return err
		}

		backends := reg.Backends()
		header := append([]string{"operation"}, backends...)
		rows := make([][]string, 0, len(reg.Operations()))

		for _, op := range reg.Operations() {
			row := []string{op}

			for _, b := range backends {
				if reg.Has(op, b) {
					row = append(row, "yes")
				} else {
					row = append(row, "-")
				}
			}

			rows = append(rows, row)
		}

		return report.NewStdoutPrinter().Table("Operations", header, rows)
	},
}
