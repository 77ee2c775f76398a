package cmd

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/c0de128/mealmate-backup/internal/logger"
	"github.com/c0de128/mealmate-backup/internal/operations"
	"github.com/c0de128/mealmate-backup/internal/scheduler"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the periodic backup scheduler until interrupted",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		manager, err := operations.NewManagerFromFile(ctx, configFile)
		if err != nil {
			return err
		}
		cfg := manager.Config()
		if !cfg.Backup.Enabled {
			return fmt.Errorf("backups are disabled in %s", configFile)
		}

		sched := scheduler.New(manager, cfg.Backup.Interval, logger.Global())
		sched.Start()
		defer sched.Stop()

		<-ctx.Done()
		logger.Global().Info("shutting down")
		return nil
	},
}
