// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"
	"os"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/xataio/jmeter-analyzer/pkg/report"
)

func analyzeCmd() *cobra.Command {
	var outputPath string
	var save bool
	var runName string

	analyzeCmd := &cobra.Command{
		Use:       "analyze <report>",
		Short:     "Summarize a JMeter HTML dashboard report",
		Long:      "Summarize a JMeter HTML dashboard report given as a zip archive, a report directory or its statistics.json",
		Example:   "analyze ./nightly.zip --format markdown",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"report"},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			format, err := outputFormat()
			if err != nil {
				return err
			}

			sp, _ := pterm.DefaultSpinner.WithWriter(os.Stderr).WithText("Parsing report...").Start()
			reports, err := loadReports(ctx, newLogger(), args, nil)
			if err != nil {
				sp.Fail(fmt.Sprintf("Failed to parse report: %s", err))
				return err
			}
			r := reports[0]
			sp.Success(fmt.Sprintf("Parsed %q: %d endpoints", r.Name, len(r.Set.Endpoints)))

			if save {
				if runName == "" {
					runName = r.Name
				}
				if err := saveRun(cmd, runName, r.Set); err != nil {
					return err
				}
			}

			return writeOutput(outputPath, format, output{
				Title:  r.Name,
				Value:  r.Set,
				Tables: r.Set.Tables(),
			})
		},
	}

	analyzeCmd.Flags().StringVarP(&outputPath, "output", "o", "", "Write the output to a file instead of stdout")
	analyzeCmd.Flags().BoolVar(&save, "save", false, "Store the parsed report in the history store")
	analyzeCmd.Flags().StringVar(&runName, "name", "", "Name of the stored run (defaults to the report file name)")

	return analyzeCmd
}

func saveRun(cmd *cobra.Command, name string, set *report.TableSet) error {
	ctx := cmd.Context()

	store, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	run, err := store.Save(ctx, name, set)
	if err != nil {
		pterm.Error.WithWriter(os.Stderr).Printfln("Failed to save run %q: %s", name, err)
		return err
	}
	pterm.Success.WithWriter(os.Stderr).Printfln("Saved run %q (%s)", run.Name, run.ID)
	return nil
}
