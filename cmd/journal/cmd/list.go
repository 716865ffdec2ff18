package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"trade-journal-go/internal/journal"
	"trade-journal-go/internal/models"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List trades, optionally filtered",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

var (
	listFrom   string
	listTo     string
	listSymbol string
	listStatus string
)

func init() {
	rootCmd.AddCommand(listCmd)

	listCmd.Flags().StringVar(&listFrom, "from", "", "start date YYYY-MM-DD (inclusive)")
	listCmd.Flags().StringVar(&listTo, "to", "", "end date YYYY-MM-DD (inclusive)")
	listCmd.Flags().StringVar(&listSymbol, "symbol", "", "case-insensitive symbol substring")
	listCmd.Flags().StringVar(&listStatus, "status", "", "OPEN or CLOSED")
}

func buildFilter() (journal.QueryFilter, error) {
	var filter journal.QueryFilter

	if listFrom != "" {
		from, err := time.Parse("2006-01-02", listFrom)
		if err != nil {
			return filter, fmt.Errorf("--from: %w", err)
		}
		filter.From = &from
	}
	if listTo != "" {
		to, err := time.Parse("2006-01-02", listTo)
		if err != nil {
			return filter, fmt.Errorf("--to: %w", err)
		}
		end := to.Add(24*time.Hour - time.Nanosecond)
		filter.To = &end
	}
	filter.Symbol = listSymbol
	filter.Status = models.Status(listStatus)

	return filter, nil
}

func runList(cmd *cobra.Command, args []string) error {
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

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tOPENED\tSYMBOL\tDIR\tQTY\tENTRY\tEXIT\tSTATUS\tNET P&L")
	for _, t := range trades {
		exit := "-"
		if t.ExitPrice != nil {
			exit = fmt.Sprintf("%.2f", *t.ExitPrice)
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%d\t%.2f\t%s\t%s\t%.2f\n",
			t.ID, t.OpenedAt.Format("2006-01-02"), t.Symbol, t.Direction,
			t.Quantity, t.EntryPrice, exit, t.Status, t.NetPNL)
	}
	return w.Flush()
}
