package economics

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPositionSize(t *testing.T) {
	testCases := []struct {
		name        string
		capital     float64
		riskPercent float64
		entry       float64
		stop        float64
		dir         Direction
		expectedQty int64
		expectedErr error
	}{
		{
			name:        "Long with 1 percent risk",
			capital:     100000,
			riskPercent: 1,
			entry:       100,
			stop:        80,
			dir:         DirectionLong,
			expectedQty: 50, // 1000 / 20
		},
		{
			name:        "Short with stop above entry",
			capital:     100000,
			riskPercent: 2,
			entry:       200,
			stop:        210,
			dir:         DirectionShort,
			expectedQty: 200, // 2000 / 10
		},
		{
			name:        "Fractional result rounds to nearest unit",
			capital:     50000,
			riskPercent: 1,
			entry:       103,
			stop:        100,
			dir:         DirectionLong,
			expectedQty: 167, // 500 / 3 = 166.67
		},
		{
			name:        "Entry equals stop",
			capital:     100000,
			riskPercent: 1,
			entry:       100,
			stop:        100,
			dir:         DirectionLong,
			expectedErr: ErrZeroRisk,
		},
		{
			name:        "Long stop above entry is rejected",
			capital:     100000,
			riskPercent: 1,
			entry:       100,
			stop:        120,
			dir:         DirectionLong,
			expectedErr: ErrStopWrongSide,
		},
		{
			name:        "Short stop below entry is rejected",
			capital:     100000,
			riskPercent: 1,
			entry:       100,
			stop:        90,
			dir:         DirectionShort,
			expectedErr: ErrStopWrongSide,
		},
		{
			name:        "Unknown direction",
			capital:     100000,
			riskPercent: 1,
			entry:       100,
			stop:        90,
			dir:         Direction("SIDEWAYS"),
			expectedErr: ErrUnknownDirection,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			qty, err := PositionSize(tc.capital, tc.riskPercent, tc.entry, tc.stop, tc.dir)

			if tc.expectedErr != nil {
				assert.ErrorIs(t, err, tc.expectedErr)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tc.expectedQty, qty)
		})
	}
}

func TestRewardToRisk(t *testing.T) {
	t.Run("Long", func(t *testing.T) {
		ratio, err := RewardToRisk(100, 150, 80, DirectionLong)
		assert.NoError(t, err)
		assert.InDelta(t, 2.5, ratio, 1e-9)
	})

	t.Run("Short", func(t *testing.T) {
		ratio, err := RewardToRisk(200, 170, 210, DirectionShort)
		assert.NoError(t, err)
		assert.InDelta(t, 3.0, ratio, 1e-9)
	})

	t.Run("Zero stop distance returns zero and an error", func(t *testing.T) {
		ratio, err := RewardToRisk(100, 150, 100, DirectionLong)
		assert.ErrorIs(t, err, ErrZeroRisk)
		assert.Zero(t, ratio)
	})

	t.Run("Stop on the wrong side", func(t *testing.T) {
		_, err := RewardToRisk(100, 150, 110, DirectionLong)
		assert.ErrorIs(t, err, ErrStopWrongSide)
	})
}

func TestCharges_Equity(t *testing.T) {
	// turnover = 50 * (100 + 110) = 10500
	b := Charges(50, 100, 110, InstrumentEquity, DefaultSchedule())

	assert.InDelta(t, 3.15, b.Brokerage, 1e-9)      // 10500 * 0.0003
	assert.InDelta(t, 1.05, b.TransactionTax, 1e-9) // 10500 * 0.0001
	assert.InDelta(t, 0.34, b.ExchangeFee, 1e-9)    // 10500 * 0.0000325 = 0.341..
	assert.InDelta(t, 0.63, b.GovernmentTax, 1e-9)  // (3.15 + 0.34) * 0.18
	assert.InDelta(t, 0.15, b.StampDuty, 1e-9)      // 50 * 100 * 0.00003
	assert.InDelta(t, 5.32, b.Total, 1e-9)
}

func TestCharges_Option(t *testing.T) {
	// Options pay transaction tax on the sell-side premium only.
	b := Charges(50, 100, 110, InstrumentOption, DefaultSchedule())

	assert.InDelta(t, 2.75, b.TransactionTax, 1e-9) // 50 * 110 * 0.0005
	assert.InDelta(t, b.Brokerage+b.TransactionTax+b.ExchangeFee+b.GovernmentTax+b.StampDuty, b.Total, 1e-9)
}

func TestCharges_BrokerageCap(t *testing.T) {
	// turnover = 1000 * (800 + 810) = 1,610,000 -> 483 uncapped
	b := Charges(1000, 800, 810, InstrumentEquity, DefaultSchedule())
	assert.InDelta(t, 40, b.Brokerage, 1e-9)
}

// The total must reconcile with the stored components for arbitrary
// positive inputs, not just the handful of hand-checked cases.
func TestCharges_TotalReconciles(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	sched := DefaultSchedule()

	for i := 0; i < 500; i++ {
		qty := rng.Int63n(10000) + 1
		entry := rng.Float64() * 5000
		exit := rng.Float64() * 5000
		instr := InstrumentEquity
		if i%2 == 0 {
			instr = InstrumentOption
		}

		b := Charges(qty, entry, exit, instr, sched)
		sum := b.Brokerage + b.TransactionTax + b.ExchangeFee + b.GovernmentTax + b.StampDuty
		require.InDelta(t, sum, b.Total, 1e-9,
			"qty=%d entry=%f exit=%f instr=%s", qty, entry, exit, instr)
	}
}

func TestGrossPNL(t *testing.T) {
	t.Run("Long profits when price rises", func(t *testing.T) {
		assert.InDelta(t, 500, GrossPNL(50, 100, 110, DirectionLong), 1e-9)
	})

	t.Run("Short profits when price falls", func(t *testing.T) {
		assert.InDelta(t, 200, GrossPNL(10, 200, 180, DirectionShort), 1e-9)
	})

	t.Run("Long loses when price falls", func(t *testing.T) {
		assert.InDelta(t, -200, GrossPNL(10, 200, 180, DirectionLong), 1e-9)
	})
}

func TestNetPNL(t *testing.T) {
	b := Charges(50, 100, 110, InstrumentEquity, DefaultSchedule())
	gross := GrossPNL(50, 100, 110, DirectionLong)

	assert.InDelta(t, 500-b.Total, NetPNL(gross, b.Total), 1e-9)
	assert.InDelta(t, 494.68, NetPNL(gross, b.Total), 1e-9)
}
