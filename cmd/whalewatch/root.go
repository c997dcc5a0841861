package main

import (
	"context"

	"github.com/spf13/cobra"
)

// Execute builds the command tree and runs it.
func Execute(ctx context.Context) error {
	root := &cobra.Command{
		Use:   "whalewatch",
		Short: "Polymarket whale-signal curation pipeline",
		Long: "whalewatch detects large directional positions on Polymarket,\n" +
			"validates them against independent research and delivers a small\n" +
			"number of curated, rate-limited alerts.",
		SilenceUsage: true,
	}
	root.AddCommand(runCmd())
	root.AddCommand(cycleCmd())
	root.AddCommand(digestCmd())
	root.AddCommand(trackCmd())
	root.AddCommand(pruneCmd())
	return root.ExecuteContext(ctx)
}
