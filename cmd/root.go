package cmd

import (
	"github.com/simonvc/finreports/internal/config"
	"github.com/spf13/cobra"
)

var (
	flagServer string
	flagDB     string
	flagDriver string

	cfg config.AppConfig
)

var rootCmd = &cobra.Command{
	Use:   "finreports",
	Short: "Balance Sheet and Profit & Loss reporting over a double-entry ledger",
	Long:  "Financial statements computed from a dated double-entry ledger and a hierarchical IFRS chart of accounts, served over HTTP and backed by SQLite or Postgres.",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		cfg = config.Load()
		if cmd.Flags().Changed("db") {
			cfg.DBPath = flagDB
		}
		if cmd.Flags().Changed("driver") {
			cfg.DBDriver = flagDriver
		}
		config.SetLogLevel(cfg.LogLevel)
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagServer, "server", "http://localhost:8888", "Server address")
	rootCmd.PersistentFlags().StringVar(&flagDB, "db", "ledger.db", "SQLite database path")
	rootCmd.PersistentFlags().StringVar(&flagDriver, "driver", "sqlite", "Store driver (sqlite or postgres)")
}

func Execute() error {
	return rootCmd.Execute()
}
