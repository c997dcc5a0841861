package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/Vitor-VarelAI/Polymarket/internal/detect"
)

// sentRetentionDays is how long alerts_sent rows are kept. Well past
// the rate-limit window; the surplus preserves the performance
// tracker's join target.
const sentRetentionDays = 90

func pruneCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "prune",
		Short: "Purge expired wallet-history, day-count and sent-alert rows",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := buildApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			now := time.Now().UTC()

			historyCutoff := now.AddDate(0, 0, -detect.HistoryRetentionDays).UnixMilli()
			histories, err := a.history.Prune(ctx, historyCutoff)
			if err != nil {
				return fmt.Errorf("prune wallet history: %w", err)
			}

			dayCutoff := now.AddDate(0, 0, -detect.DayCountRetentionDays).Format("2006-01-02")
			days, err := a.dayCounts.Prune(ctx, dayCutoff)
			if err != nil {
				return fmt.Errorf("prune day counts: %w", err)
			}

			sentCutoff := now.AddDate(0, 0, -sentRetentionDays).UnixMilli()
			sent, err := a.sent.Prune(ctx, sentCutoff)
			if err != nil {
				return fmt.Errorf("prune sent alerts: %w", err)
			}

			fmt.Printf("pruned: %d wallet histories, %d day counts, %d sent alerts\n",
				histories, days, sent)
			return nil
		},
	}
}
