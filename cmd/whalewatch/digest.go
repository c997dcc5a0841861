package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/Vitor-VarelAI/Polymarket/internal/digest"
)

func digestCmd() *cobra.Command {
	var edition string
	cmd := &cobra.Command{
		Use:   "digest",
		Short: "Build and send one value-bets digest immediately",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := buildApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			if _, err := a.scanner.Scan(ctx, time.Now().UnixMilli()); err != nil {
				return fmt.Errorf("scan markets: %w", err)
			}
			if err := a.sendDigest(ctx, edition); err != nil {
				return err
			}
			fmt.Printf("next scheduled digest: %s\n", digest.NextTime(time.Now()))
			return nil
		},
	}
	cmd.Flags().StringVar(&edition, "edition", digest.EditionMorning, "digest edition label: Morning|Afternoon|Evening")
	return cmd
}
