// Package cli provides the ncdb command line.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/ncdb-labs/ncdb-chat/internal/config"
	"github.com/ncdb-labs/ncdb-chat/internal/logger"
)

// version is set at build time.
var version = "dev"

var (
	cfgFile string
	verbose bool

	// cfg is loaded before any subcommand runs.
	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "ncdb",
	Short: "Question answering over the New Cadillac Database V16 corpus",
	Long: `ncdb answers questions about Cadillac V16 cars from a local corpus.

Build the knowledge base with "ncdb ingest", start the query service with
"ncdb serve", then ask questions with "ncdb ask".`,
	SilenceUsage:      true,
	PersistentPreRunE: loadConfig,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ncdb.toml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

// Execute runs the root command with the given build version.
func Execute(v string) error {
	if v != "" {
		version = v
	}
	defer logger.Sync() //nolint:errcheck
	return rootCmd.Execute()
}

func loadConfig(_ *cobra.Command, _ []string) error {
	loaded, err := config.Load(cfgFile)
	if err != nil {
		return err
	}
	cfg = loaded

	logger.SetVerbose(verbose)
	if cfg.Log.File != "" {
		logger.SetFile(logger.FileOptions{
			Path:       cfg.Log.File,
			MaxSizeMB:  cfg.Log.MaxSizeMB,
			MaxBackups: cfg.Log.MaxBackups,
			MaxAgeDays: cfg.Log.MaxAgeDays,
		})
	}
	return nil
}
