package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"trade-journal-go/internal/config"
	"trade-journal-go/internal/economics"
)

var sizeCmd = &cobra.Command{
	Use:   "size",
	Short: "Compute a risk-based position size",
	Long: `Compute how many units to trade so that a stop-loss hit loses the
given percentage of capital, plus the reward:risk ratio when a target
is provided.

Example:
  journal size --capital 100000 --risk 1 --entry 100 --stop 80 --target 150`,
	Args: cobra.NoArgs,
	RunE: runSize,
}

var (
	sizeCapital   float64
	sizeRisk      float64
	sizeEntry     float64
	sizeStop      float64
	sizeTarget    float64
	sizeDirection string
)

func init() {
	rootCmd.AddCommand(sizeCmd)

	sizeCmd.Flags().Float64Var(&sizeCapital, "capital", 0, "trading capital (default from config)")
	sizeCmd.Flags().Float64Var(&sizeRisk, "risk", 0, "risk per trade in percent (default from config)")
	sizeCmd.Flags().Float64Var(&sizeEntry, "entry", 0, "entry price")
	sizeCmd.Flags().Float64Var(&sizeStop, "stop", 0, "stop-loss price")
	sizeCmd.Flags().Float64Var(&sizeTarget, "target", 0, "target price (optional)")
	sizeCmd.Flags().StringVar(&sizeDirection, "direction", "LONG", "LONG or SHORT")
}

func runSize(cmd *cobra.Command, args []string) error {
	if sizeCapital == 0 || sizeRisk == 0 {
		cfg, err := config.LoadConfig(cfgPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if sizeCapital == 0 {
			sizeCapital = cfg.Journal.DefaultCapital
		}
		if sizeRisk == 0 {
			sizeRisk = cfg.Journal.DefaultRiskPercent
		}
	}

	dir := economics.Direction(sizeDirection)

	qty, err := economics.PositionSize(sizeCapital, sizeRisk, sizeEntry, sizeStop, dir)
	if err != nil {
		return err
	}

	fmt.Printf("Position size:  %d units\n", qty)
	fmt.Printf("Risk amount:    %.2f\n", sizeCapital*sizeRisk/100)

	if sizeTarget > 0 {
		rr, err := economics.RewardToRisk(sizeEntry, sizeTarget, sizeStop, dir)
		if err != nil {
			return err
		}
		fmt.Printf("Reward:risk:    %.2f\n", rr)
	}
	return nil
}
