package cli

import (
	"fmt"

	"github.com/raphaelgruber/parley/internal/metrics"
	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show runtime statistics",
	Long: `Show runtime statistics: completion timings, token usage, and
persistence activity for this process.`,
	RunE: runStats,
}

func runStats(cmd *cobra.Command, args []string) error {
	snap := collector.Snapshot()

	fmt.Printf("Uptime: %.1fs\n\n", snap.UptimeSeconds)
	printOp("Completions", snap.Completion)
	printOp("Store loads", snap.StoreLoad)
	printOp("Store saves", snap.StoreSave)
	return nil
}

func printOp(name string, op *metrics.OperationSnapshot) {
	if op == nil {
		fmt.Printf("%s: none\n", name)
		return
	}
	fmt.Printf("%s: %d ok, %d failed", name, op.Count, op.Failures)
	if op.Count > 0 {
		fmt.Printf(", avg %.0fms (min %dms, max %dms)", op.AvgTimeMs, op.MinTimeMs, op.MaxTimeMs)
	}
	fmt.Println()
	if op.TotalInputTokens != nil && op.TotalOutputTokens != nil {
		fmt.Printf("  tokens: %d in, %d out\n", *op.TotalInputTokens, *op.TotalOutputTokens)
	}
}
