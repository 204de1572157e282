// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/xataio/jmeter-analyzer/pkg/jsextract"
	"github.com/xataio/jmeter-analyzer/pkg/render"
)

func extractCmd() *cobra.Command {
	var variable bool

	extractCmd := &cobra.Command{
		Use:       "extract <script> <table-id>",
		Short:     "Print a table embedded in a dashboard script as JSON",
		Example:   "extract content/js/dashboard.js top5ErrorsBySamplerTable",
		Hidden:    true,
		Args:      cobra.ExactArgs(2),
		ValidArgs: []string{"script", "table-id"},
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("reading script: %w", err)
			}

			extract := jsextract.ExtractTable
			if variable {
				extract = jsextract.ExtractVariable
			}

			data, err := extract(string(src), args[1])
			if err != nil {
				return err
			}
			if data == nil {
				return fmt.Errorf("%q not found in %s", args[1], args[0])
			}

			return render.NewWriter(os.Stdout, render.JSONFormat).Write(data)
		},
	}

	extractCmd.Flags().BoolVar(&variable, "variable", false, "Look up a `var <name> = {...}` assignment instead of a table id")

	return extractCmd
}
