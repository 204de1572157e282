// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"context"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/xataio/jmeter-analyzer/pkg/compare"
	"github.com/xataio/jmeter-analyzer/pkg/report"
	"github.com/xataio/jmeter-analyzer/pkg/table"
)

// comparison is the JSON and YAML form of a compare run.
type comparison struct {
	Reports []string       `json:"reports"`
	Tables  []*table.Table `json:"tables"`
}

func compareCmd() *cobra.Command {
	var outputPath string
	var names, runs, kinds []string

	compareCmd := &cobra.Command{
		Use:   "compare [report...]",
		Short: "Compare two or more JMeter HTML dashboard reports",
		Long: "Compare two or more JMeter HTML dashboard reports, given as files or as runs from the history store. " +
			"Error tables are only compared between exactly two reports.",
		Example: "compare baseline.zip candidate.zip --name baseline --name candidate --format excel --output diff.xlsx",
		Args:    cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			log := newLogger()

			format, err := outputFormat()
			if err != nil {
				return err
			}
			selected, err := compare.ParseKinds(kinds)
			if err != nil {
				return err
			}
			if len(names) > 0 && len(names) != len(args) {
				return compare.InputMismatchError{Tables: len(args), Names: len(names)}
			}
			if len(args)+len(runs) < 2 {
				return errNotEnoughReports
			}

			sp, _ := pterm.DefaultSpinner.WithWriter(os.Stderr).WithText("Parsing reports...").Start()
			var reports []namedReport
			if len(args) > 0 {
				reports, err = loadReports(ctx, log, args, names)
				if err != nil {
					sp.Fail(fmt.Sprintf("Failed to parse reports: %s", err))
					return err
				}
			}

			stored, err := loadRuns(ctx, runs)
			if err != nil {
				sp.Fail(fmt.Sprintf("Failed to load runs: %s", err))
				return err
			}
			reports = append(reports, stored...)
			if len(reports) < 2 {
				sp.Fail("Not enough reports left to compare")
				return errNotEnoughReports
			}
			sp.Success(fmt.Sprintf("Comparing %d reports", len(reports)))

			sets := make([]*report.TableSet, len(reports))
			reportNames := make([]string, len(reports))
			for i, r := range reports {
				sets[i] = r.Set
				reportNames[i] = r.Name
			}

			if len(reports) != 2 && cmd.Flags().Changed("tables") && slices.Contains(selected, compare.KindErrors) {
				log.Info("errors are only compared between two reports", "reports", len(reports))
			}

			tables, err := compare.Tables(sets, reportNames, selected...)
			if err != nil {
				log.Info("comparison incomplete", "error", err.Error())
			}

			return writeOutput(outputPath, format, output{
				Title:  strings.Join(reportNames, " vs "),
				Names:  reportNames,
				Value:  comparison{Reports: reportNames, Tables: tables},
				Tables: tables,
			})
		},
	}

	compareCmd.Flags().StringVarP(&outputPath, "output", "o", "", "Write the output to a file instead of stdout")
	compareCmd.Flags().StringSliceVarP(&names, "name", "n", nil, "Name of each report, in argument order (defaults to the file names)")
	compareCmd.Flags().StringSliceVar(&runs, "history", nil, "Stored runs to add to the comparison")
	compareCmd.Flags().StringSliceVarP(&kinds, "tables", "t", nil, "Tables to compare: endpoints, aggregate, errors (default all)")

	return compareCmd
}

// loadRuns reads the named runs from the history store.
func loadRuns(ctx context.Context, names []string) ([]namedReport, error) {
	if len(names) == 0 {
		return nil, nil
	}

	store, err := openStore(ctx)
	if err != nil {
		return nil, err
	}
	defer store.Close()

	out := make([]namedReport, 0, len(names))
	for _, name := range names {
		run, err := store.Get(ctx, name)
		if err != nil {
			return nil, err
		}
		out = append(out, namedReport{Name: run.Name, Set: run.Tables})
	}
	return out, nil
}
