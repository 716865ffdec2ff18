package export

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trade-journal-go/internal/economics"
	"trade-journal-go/internal/models"
)

func TestWriteCSV(t *testing.T) {
	exit := 110.0
	opened := time.Date(2025, time.March, 1, 10, 0, 0, 0, time.UTC)

	trades := []models.Trade{
		{
			OwnerID:    1,
			OpenedAt:   opened,
			Symbol:     "RELIANCE",
			Direction:  economics.DirectionLong,
			Instrument: economics.InstrumentEquity,
			EntryPrice: 100,
			ExitPrice:  &exit,
			StopLoss:   80,
			Quantity:   50,
			Status:     models.StatusClosed,
			Charges:    economics.Charges(50, 100, 110, economics.InstrumentEquity, economics.DefaultSchedule()),
			GrossPNL:   500,
			NetPNL:     494.68,
			SetupType:  "Breakout",
		},
		{
			OwnerID:    1,
			OpenedAt:   opened.AddDate(0, 0, 1),
			Symbol:     "TCS",
			Direction:  economics.DirectionShort,
			Instrument: economics.InstrumentOption,
			EntryPrice: 200,
			StopLoss:   210,
			Quantity:   10,
			Status:     models.StatusOpen,
		},
	}
	trades[0].ID = 42

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, trades))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3) // header + 2 trades

	assert.Equal(t, "id", rows[0][0])
	assert.Equal(t, "net_pnl", rows[0][18])

	assert.Equal(t, "42", rows[1][0])
	assert.Equal(t, "2025-03-01T10:00:00Z", rows[1][1])
	assert.Equal(t, "RELIANCE", rows[1][2])
	assert.Equal(t, "110", rows[1][6])
	assert.Equal(t, "CLOSED", rows[1][10])
	assert.Equal(t, "5.32", rows[1][16])
	assert.Equal(t, "494.68", rows[1][18])

	// Open trades have no exit price and zeroed economics.
	assert.Equal(t, "", rows[2][6])
	assert.Equal(t, "0.00", rows[2][16])
	assert.Equal(t, "OPEN", rows[2][10])
}
