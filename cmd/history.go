// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/xataio/jmeter-analyzer/pkg/table"
)

func historyCmd() *cobra.Command {
	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "Manage the runs kept in the history store",
		Args:  cobra.NoArgs,
	}

	historyCmd.AddCommand(historyListCmd())
	historyCmd.AddCommand(historyShowCmd())
	historyCmd.AddCommand(historyDeleteCmd())

	return historyCmd
}

func historyListCmd() *cobra.Command {
	historyListCmd := &cobra.Command{
		Use:   "list",
		Short: "List stored runs, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			format, err := outputFormat()
			if err != nil {
				return err
			}

			store, err := openStore(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			runs, err := store.List(ctx)
			if err != nil {
				return err
			}

			t := table.New("Runs", "Name", "Created", "Source", "ID")
			for _, r := range runs {
				t.Append(
					table.String(r.Name),
					table.String(r.CreatedAt.Local().Format(time.DateTime)),
					table.String(r.Source),
					table.String(r.ID),
				)
			}

			return writeOutput("", format, output{Value: runs, Tables: []*table.Table{t}})
		},
	}

	return historyListCmd
}

func historyShowCmd() *cobra.Command {
	var outputPath string

	historyShowCmd := &cobra.Command{
		Use:       "show <name>",
		Short:     "Show the tables of a stored run",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"name"},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			format, err := outputFormat()
			if err != nil {
				return err
			}

			store, err := openStore(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			run, err := store.Get(ctx, args[0])
			if err != nil {
				return err
			}

			return writeOutput(outputPath, format, output{
				Title:  run.Name,
				Value:  run,
				Tables: run.Tables.Tables(),
			})
		},
	}

	historyShowCmd.Flags().StringVarP(&outputPath, "output", "o", "", "Write the output to a file instead of stdout")

	return historyShowCmd
}

func historyDeleteCmd() *cobra.Command {
	historyDeleteCmd := &cobra.Command{
		Use:       "delete <name>",
		Short:     "Delete a stored run",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"name"},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			store, err := openStore(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			if err := store.Delete(ctx, args[0]); err != nil {
				return fmt.Errorf("deleting run: %w", err)
			}

			pterm.Success.WithWriter(os.Stderr).Printfln("Deleted run %q", args[0])
			return nil
		},
	}

	return historyDeleteCmd
}
