package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/c0de128/mealmate-backup/internal/operations"
)

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Run one backup pipeline now",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		manager, err := operations.NewManagerFromFile(ctx, configFile)
		if err != nil {
			return err
		}

		rec, err := manager.CreateBackup(ctx)
		if err != nil {
			if rec != nil {
				fmt.Printf("backup %s failed: %s\n", rec.ID, rec.Error)
			}
			return err
		}

		fmt.Printf("backup %s completed: %s (%d bytes, checksum %s)\n",
			rec.ID, rec.Filename, rec.SizeBytes, rec.Checksum)
		if rec.RemoteUpload != nil {
			if rec.RemoteUpload.Uploaded {
				fmt.Printf("uploaded to %s\n", rec.RemoteUpload.Key)
			} else {
				fmt.Printf("remote upload failed: %s\n", rec.RemoteUpload.Error)
			}
		}
		return nil
	},
}
