package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/c0de128/mealmate-backup/internal/history"
	"github.com/c0de128/mealmate-backup/internal/operations"
)

var (
	historyStatus string
	historyOffset int
	historyLimit  int
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List past backup attempts from the ledger",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		manager, err := operations.NewManagerFromFile(ctx, configFile)
		if err != nil {
			return err
		}

		records := manager.GetHistory(history.Filter{
			Status: history.Status(historyStatus),
			Offset: historyOffset,
			Limit:  historyLimit,
		})
		if len(records) == 0 {
			fmt.Println("no backups recorded")
			return nil
		}

		for _, rec := range records {
			line := fmt.Sprintf("%s  %s  %-7s  %10d bytes  %s",
				rec.Timestamp.Format("2006-01-02 15:04:05"),
				rec.ID, rec.Status, rec.SizeBytes, rec.Filename)
			if rec.Error != "" {
				line += "  error: " + rec.Error
			}
			fmt.Println(line)
		}
		return nil
	},
}

func init() {
	historyCmd.Flags().StringVar(&historyStatus, "status", "", "filter by status (success|failed)")
	historyCmd.Flags().IntVar(&historyOffset, "offset", 0, "skip the first N records")
	historyCmd.Flags().IntVar(&historyLimit, "limit", 0, "show at most N records (0 = all)")
}
