package export

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"
	"time"

	"trade-journal-go/internal/models"
)

var csvHeader = []string{
	"id", "opened_at", "symbol", "direction", "instrument",
	"entry_price", "exit_price", "stop_loss", "target_price", "quantity",
	"status", "brokerage", "transaction_tax", "exchange_fee",
	"government_tax", "stamp_duty", "total_charges", "gross_pnl", "net_pnl",
	"setup_type", "market_condition", "psychology_state", "notes",
}

// WriteCSV serializes a read-only trade sequence to w, one row per trade,
// preserving the order of the input.
func WriteCSV(w io.Writer, trades []models.Trade) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(csvHeader); err != nil {
		return err
	}

	for _, t := range trades {
		exit := ""
		if t.ExitPrice != nil {
			exit = price(*t.ExitPrice)
		}

		row := []string{
			strconv.FormatUint(uint64(t.ID), 10),
			t.OpenedAt.Format(time.RFC3339),
			t.Symbol,
			string(t.Direction),
			string(t.Instrument),
			price(t.EntryPrice),
			exit,
			price(t.StopLoss),
			price(t.TargetPrice),
			strconv.FormatInt(t.Quantity, 10),
			string(t.Status),
			money(t.Charges.Brokerage),
			money(t.Charges.TransactionTax),
			money(t.Charges.ExchangeFee),
			money(t.Charges.GovernmentTax),
			money(t.Charges.StampDuty),
			money(t.Charges.Total),
			money(t.GrossPNL),
			money(t.NetPNL),
			t.SetupType,
			t.MarketCondition,
			t.PsychologyState,
			t.Notes,
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteCSVFile writes the trades to a new file at path.
func WriteCSVFile(path string, trades []models.Trade) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return WriteCSV(f, trades)
}

func price(x float64) string {
	return strconv.FormatFloat(x, 'f', -1, 64)
}

func money(x float64) string {
	return strconv.FormatFloat(x, 'f', 2, 64)
}
