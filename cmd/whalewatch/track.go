package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/Vitor-VarelAI/Polymarket/internal/track"
)

func trackCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "track",
		Short: "Record outcomes of resolved markets and print win-rate stats",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := buildApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			result, err := a.tracker.Run(ctx, time.Now())
			if err != nil {
				return err
			}
			fmt.Printf("tracked: %d checked, %d recorded, %d pending, %d missing\n",
				result.Checked, result.Recorded, result.Pending, result.Missing)
			for _, e := range result.Errors {
				fmt.Printf("  error: %v\n", e)
			}

			stats, err := a.tracker.Stats(ctx)
			if err != nil {
				return fmt.Errorf("load stats: %w", err)
			}
			fmt.Println(track.FormatStats(stats))
			return nil
		},
	}
}
