// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/xataio/jmeter-analyzer/cmd/flags"
	"github.com/xataio/jmeter-analyzer/pkg/archive"
	"github.com/xataio/jmeter-analyzer/pkg/report"
)

func validateCmd() *cobra.Command {
	validateCmd := &cobra.Command{
		Use:       "validate <report>",
		Short:     "Check a report's statistics.json against the statistics schema",
		Example:   "validate ./nightly.zip",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"report"},
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := archive.Open(args[0], flags.WorkDir())
			if err != nil {
				return err
			}
			defer r.Close()

			path, err := report.LocateStatistics(r.Root)
			if err != nil {
				return err
			}

			f, err := os.Open(path)
			if err != nil {
				return fmt.Errorf("opening statistics: %w", err)
			}
			defer f.Close()

			err = report.Validate(f)
			var violation report.SchemaViolationError
			switch {
			case errors.As(err, &violation):
				pterm.Error.WithWriter(os.Stderr).Printfln("%s does not match the statistics schema:\n%s", args[0], violation.Err)
				return err
			case err != nil:
				return err
			}

			pterm.Success.Printfln("%s is valid", args[0])
			return nil
		},
	}

	return validateCmd
}
