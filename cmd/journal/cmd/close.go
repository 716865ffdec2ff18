package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

var closeCmd = &cobra.Command{
	Use:   "close <trade-id> <exit-price>",
	Short: "Close an open trade at an exit price",
	Args:  cobra.ExactArgs(2),
	RunE:  runClose,
}

func init() {
	rootCmd.AddCommand(closeCmd)
}

func runClose(cmd *cobra.Command, args []string) error {
	id, err := strconv.ParseUint(args[0], 10, 32)
	if err != nil {
		return fmt.Errorf("trade id: %w", err)
	}
	exitPrice, err := strconv.ParseFloat(args[1], 64)
	if err != nil {
		return fmt.Errorf("exit price: %w", err)
	}

	e, err := newEnv()
	if err != nil {
		return err
	}

	ownerID, err := e.owner()
	if err != nil {
		return err
	}

	trade, err := e.store.Close(cmd.Context(), ownerID, uint(id), exitPrice)
	if err != nil {
		return err
	}

	fmt.Printf("Closed trade %d: gross %.2f, charges %.2f, net %.2f\n",
		trade.ID, trade.GrossPNL, trade.Charges.Total, trade.NetPNL)
	return nil
}
