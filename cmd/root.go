package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/c0de128/mealmate-backup/internal/logger"
)

var (
	// configFile is the path to the YAML configuration.
	configFile string

	// rootCmd is the base command for mealbak.
	rootCmd = &cobra.Command{
		Use:   "mealbak",
		Short: "Backup and restore tooling for the mealmate database",
		Long: `mealbak manages the mealmate backup lifecycle: full snapshots
through pg_dump, optional compression and encryption, checksums,
retention, restore, and a periodic scheduler.`,
	}
)

// Execute runs the root command.
func Execute() {
	defer logger.Cleanup()
	if _, err := logger.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: logger init: %v\n", err)
		os.Exit(1)
	}
	if err := rootCmd.Execute(); err != nil {
		logger.Global().Error("command failed", "error", err.Error())
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().
		StringVarP(&configFile, "config", "c", "./configs/config.yaml", "path to YAML config file")
	rootCmd.AddCommand(backupCmd)
	rootCmd.AddCommand(restoreCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(serveCmd)
}
