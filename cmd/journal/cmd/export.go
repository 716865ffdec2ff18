package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"trade-journal-go/internal/export"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export filtered trades to a CSV file",
	Args:  cobra.NoArgs,
	RunE:  runExport,
}

var exportOut string

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "trades.csv", "output file path")
	exportCmd.Flags().StringVar(&listFrom, "from", "", "start date YYYY-MM-DD (inclusive)")
	exportCmd.Flags().StringVar(&listTo, "to", "", "end date YYYY-MM-DD (inclusive)")
	exportCmd.Flags().StringVar(&listSymbol, "symbol", "", "case-insensitive symbol substring")
	exportCmd.Flags().StringVar(&listStatus, "status", "", "OPEN or CLOSED")
}

func runExport(cmd *cobra.Command, args []string) error {
	filter, err := buildFilter()
	if err != nil {
		return err
	}

	e, err := newEnv()
	if err != nil {
		return err
	}

	ownerID, err := e.owner()
	if err != nil {
		return err
	}

	trades, err := e.store.Query(cmd.Context(), ownerID, filter)
	if err != nil {
		return err
	}

	if err := export.WriteCSVFile(exportOut, trades); err != nil {
		return err
	}

	fmt.Printf("Wrote %d trades to %s\n", len(trades), exportOut)
	return nil
}
