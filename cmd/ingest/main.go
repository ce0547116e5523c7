// Package main provides the agro-ingest command line entry point.
package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/FACorreiaa/agro-ingest/pkg/config"
	"github.com/FACorreiaa/agro-ingest/pkg/logging"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// cli carries the dependencies built before any subcommand runs.
type cli struct {
	deps *Dependencies
}

func newRootCmd() *cobra.Command {
	c := &cli{}

	rootCmd := &cobra.Command{
		Use:   "agro-ingest",
		Short: "Ingest agricultural calendars and advisories",
		Long: `agro-ingest classifies and parses crop, production and poultry calendars,
agromet advisories and multi-sheet commodity advisories from CSV and Excel
files into typed JSON records.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			logger := logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

			deps, err := InitDependencies(cfg, logger)
			if err != nil {
				return err
			}
			c.deps = deps
			return nil
		},
	}

	rootCmd.AddCommand(
		c.parseCmd(),
		c.classifyCmd(),
		c.analyzeCmd(),
		c.uploadCmd(),
		c.watchCmd(),
	)
	return rootCmd
}
