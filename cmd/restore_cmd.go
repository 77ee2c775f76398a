package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/c0de128/mealmate-backup/internal/operations"
)

var restoreTarget string

var restoreCmd = &cobra.Command{
	Use:   "restore <artifact>",
	Short: "Restore a backup artifact into the database",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		manager, err := operations.NewManagerFromFile(ctx, configFile)
		if err != nil {
			return err
		}

		if err := manager.RestoreBackup(ctx, args[0], restoreTarget); err != nil {
			return err
		}
		fmt.Printf("restored %s\n", args[0])
		return nil
	},
}

func init() {
	restoreCmd.Flags().
		StringVarP(&restoreTarget, "target", "t", "", "target database (defaults to the configured one)")
}
