package main

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/beltcalc/beltcalc/pkg/capacity"
)

func NewTableCommand() *cobra.Command {
	var jsonOutput, remote bool
	cmd := &cobra.Command{
		Use:     "table",
		Short:   "Print the shape factor reference table",
		GroupID: gReference,
		Long: `Print the shape factor reference table.

Rows are trough angles, columns are surcharge angles. The flat row is used for
trough angles below 5°.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			table := capacity.Coefficients()
			if remote {
				t, err := apiClient.GetTable()
				if err != nil {
					return err
				}
				table = *t
			}

			if jsonOutput {
				return writeJSON(cmd.OutOrStdout(), table)
			}

			surcharges := capacity.SurchargeBreakpoints()
			header := []string{fmt.Sprintf("%-10s", "trough")}
			for _, s := range surcharges {
				header = append(header, fmt.Sprintf("%8s", fmt.Sprintf("%d°", s)))
			}
			cmd.Println(bold("%s", strings.Join(header, "")))

			cmd.Println(formatRow(color.CyanString("%-10s", "flat"), table.Flat, surcharges))
			for _, trough := range capacity.TroughBreakpoints() {
				cmd.Println(formatRow(fmt.Sprintf("%-10s", fmt.Sprintf("%d°", trough)), table.Troughed[trough], surcharges))
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.BoolVar(&jsonOutput, "json", false, "print the table as JSON")
	f.BoolVar(&remote, "remote", false, "fetch the table from the running daemon")

	return cmd
}

func formatRow(label string, row capacity.Curve, surcharges []int) string {
	var b strings.Builder
	b.WriteString(label)
	for _, s := range surcharges {
		fmt.Fprintf(&b, "%8.4f", row[s])
	}
	return b.String()
}
