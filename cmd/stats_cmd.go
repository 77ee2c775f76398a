package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/c0de128/mealmate-backup/internal/operations"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show aggregate backup statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		manager, err := operations.NewManagerFromFile(ctx, configFile)
		if err != nil {
			return err
		}

		st := manager.GetStats()
		fmt.Printf("total attempts:   %d\n", st.Total)
		fmt.Printf("succeeded:        %d\n", st.Succeeded)
		fmt.Printf("failed:           %d\n", st.Failed)
		fmt.Printf("total size:       %d bytes\n", st.TotalSizeBytes)
		fmt.Printf("mean duration:    %d ms\n", st.MeanDurationMS)
		if !st.OldestTimestamp.IsZero() {
			fmt.Printf("oldest backup:    %s\n", st.OldestTimestamp.Format("2006-01-02 15:04:05"))
			fmt.Printf("newest backup:    %s\n", st.NewestTimestamp.Format("2006-01-02 15:04:05"))
		}
		return nil
	},
}
