package cmd

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show aggregate journal statistics",
	Args:  cobra.NoArgs,
	RunE:  runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, args []string) error {
	e, err := newEnv()
	if err != nil {
		return err
	}

	ownerID, err := e.owner()
	if err != nil {
		return err
	}

	stats, err := e.store.Aggregate(cmd.Context(), ownerID)
	if err != nil {
		return err
	}

	fmt.Printf("Total trades:   %d (%d open, %d closed)\n", stats.TotalTrades, stats.OpenTrades, stats.ClosedTrades)
	fmt.Printf("Win rate:       %.2f%%\n", stats.WinRate*100)
	fmt.Printf("Total net P&L:  %.2f\n", stats.TotalNetPNL)
	fmt.Printf("Best trade:     %.2f\n", stats.BestTrade)
	fmt.Printf("Worst trade:    %.2f\n", stats.WorstTrade)
	fmt.Printf("Average trade:  %.2f\n", stats.AverageTrade)
	if stats.ProfitFactor > 0 {
		fmt.Printf("Profit factor:  %.2f\n", stats.ProfitFactor)
	}

	if len(stats.AverageBySetup) > 0 {
		fmt.Println("\nAverage net P&L by setup:")
		setups := make([]string, 0, len(stats.AverageBySetup))
		for setup := range stats.AverageBySetup {
			setups = append(setups, setup)
		}
		sort.Strings(setups)
		for _, setup := range setups {
			fmt.Printf("  %-20s %.2f\n", setup, stats.AverageBySetup[setup])
		}
	}
	return nil
}
