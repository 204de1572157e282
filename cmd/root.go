// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/xataio/jmeter-analyzer/cmd/flags"
	"github.com/xataio/jmeter-analyzer/pkg/history"
	"github.com/xataio/jmeter-analyzer/pkg/report"
)

// Version is the jmeter-analyzer version
var Version = "development"

func init() {
	viper.SetEnvPrefix("JMETER_ANALYZER")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}

func Prepare() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "jmeter-analyzer",
		Short:        "Summarize and compare JMeter HTML dashboard reports",
		SilenceUsage: true,
		Version:      Version,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return readConfig()
		},
	}

	rootCmd.PersistentFlags().String("config", "", "YAML configuration file")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Show debug logs")
	rootCmd.PersistentFlags().String("work-dir", "", "Directory where zipped reports are extracted (defaults to the system temp directory)")
	rootCmd.PersistentFlags().String("store", flags.DefaultStoreURL(), "History store: a SQLite file or a postgres:// URL")
	rootCmd.PersistentFlags().String("store-schema", "jmeter_analyzer", "Postgres schema holding the history tables")
	rootCmd.PersistentFlags().StringP("format", "f", "terminal", "Output format: terminal, markdown, excel, json, yaml or html")
	rootCmd.PersistentFlags().Bool("skip-validation", false, "Do not check statistics.json against the statistics schema")

	viper.BindPFlag("CONFIG", rootCmd.PersistentFlags().Lookup("config"))
	viper.BindPFlag("VERBOSE", rootCmd.PersistentFlags().Lookup("verbose"))
	viper.BindPFlag("WORK_DIR", rootCmd.PersistentFlags().Lookup("work-dir"))
	viper.BindPFlag("STORE", rootCmd.PersistentFlags().Lookup("store"))
	viper.BindPFlag("STORE_SCHEMA", rootCmd.PersistentFlags().Lookup("store-schema"))
	viper.BindPFlag("FORMAT", rootCmd.PersistentFlags().Lookup("format"))
	viper.BindPFlag("SKIP_VALIDATION", rootCmd.PersistentFlags().Lookup("skip-validation"))

	rootCmd.AddCommand(analyzeCmd())
	rootCmd.AddCommand(compareCmd())
	rootCmd.AddCommand(validateCmd())
	rootCmd.AddCommand(extractCmd())
	rootCmd.AddCommand(historyCmd())

	return rootCmd
}

// Execute executes the root command.
func Execute() error {
	cmd := Prepare()
	return cmd.Execute()
}

func readConfig() error {
	path := viper.GetString("CONFIG")
	if path == "" {
		return nil
	}

	viper.SetConfigFile(path)
	if err := viper.ReadInConfig(); err != nil {
		return fmt.Errorf("reading config %s: %w", path, err)
	}
	return nil
}

func newLogger() report.Logger {
	return report.NewLogger(flags.Verbose())
}

func openStore(ctx context.Context) (*history.Store, error) {
	return history.Open(ctx, flags.StoreURL(), Version, history.WithSchema(flags.StoreSchema()))
}
