package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"trade-journal-go/internal/economics"
	"trade-journal-go/internal/journal"
)

var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Log a new trade",
	Long: `Log a new trade for the given owner. Either give --qty directly or
let the journal derive it from --capital and --risk.

Example:
  journal add -u trader1 --symbol RELIANCE --entry 100 --stop 80 --capital 100000 --risk 1`,
	Args: cobra.NoArgs,
	RunE: runAdd,
}

var (
	addSymbol     string
	addDirection  string
	addInstrument string
	addEntry      float64
	addStop       float64
	addTarget     float64
	addQty        int64
	addCapital    float64
	addRisk       float64
	addSetup      string
	addCondition  string
	addPsychology string
	addNotes      string
)

func init() {
	rootCmd.AddCommand(addCmd)

	addCmd.Flags().StringVar(&addSymbol, "symbol", "", "instrument symbol")
	addCmd.Flags().StringVar(&addDirection, "direction", "LONG", "LONG or SHORT")
	addCmd.Flags().StringVar(&addInstrument, "instrument", "EQUITY", "EQUITY or OPTION")
	addCmd.Flags().Float64Var(&addEntry, "entry", 0, "entry price")
	addCmd.Flags().Float64Var(&addStop, "stop", 0, "stop-loss price")
	addCmd.Flags().Float64Var(&addTarget, "target", 0, "target price")
	addCmd.Flags().Int64Var(&addQty, "qty", 0, "quantity (0 derives it from capital and risk)")
	addCmd.Flags().Float64Var(&addCapital, "capital", 0, "trading capital for sizing")
	addCmd.Flags().Float64Var(&addRisk, "risk", 0, "risk per trade in percent for sizing")
	addCmd.Flags().StringVar(&addSetup, "setup", "", "setup type annotation")
	addCmd.Flags().StringVar(&addCondition, "condition", "", "market condition annotation")
	addCmd.Flags().StringVar(&addPsychology, "psychology", "", "emotional state annotation")
	addCmd.Flags().StringVar(&addNotes, "notes", "", "free-form notes")
}

func runAdd(cmd *cobra.Command, args []string) error {
	e, err := newEnv()
	if err != nil {
		return err
	}

	ownerID, err := e.owner()
	if err != nil {
		return err
	}

	if addQty == 0 {
		if addCapital == 0 {
			addCapital = e.cfg.Journal.DefaultCapital
		}
		if addRisk == 0 {
			addRisk = e.cfg.Journal.DefaultRiskPercent
		}
	}

	trade, err := e.store.Create(cmd.Context(), ownerID, journal.TradeInput{
		Symbol:          addSymbol,
		Direction:       economics.Direction(addDirection),
		Instrument:      economics.Instrument(addInstrument),
		EntryPrice:      addEntry,
		StopLoss:        addStop,
		TargetPrice:     addTarget,
		Quantity:        addQty,
		Capital:         addCapital,
		RiskPercent:     addRisk,
		SetupType:       addSetup,
		MarketCondition: addCondition,
		PsychologyState: addPsychology,
		Notes:           addNotes,
	})
	if err != nil {
		return err
	}

	fmt.Printf("Logged trade %d: %s %s x%d @ %.2f (stop %.2f)\n",
		trade.ID, trade.Direction, trade.Symbol, trade.Quantity, trade.EntryPrice, trade.StopLoss)
	return nil
}
