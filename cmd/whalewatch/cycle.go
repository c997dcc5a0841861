package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func cycleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cycle",
		Short: "Execute exactly one detection cycle and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := buildApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			result, err := a.runner.Run(ctx)
			if err != nil {
				return err
			}

			fmt.Printf("cycle %s: %d markets, %d trades, %d events (%d excluded), %d eligible, %d sent, %d blocked\n",
				result.CycleID, result.Markets, result.Trades, result.Events,
				result.Excluded, result.Eligible, result.Sent, result.Blocked)
			for _, e := range result.Errors {
				fmt.Printf("  error: %s\n", e)
			}
			return nil
		},
	}
}
