package economics

import (
	"errors"
	"math"

	"github.com/shopspring/decimal"
)

// Direction fixes the sign convention used by sizing and P&L computation.
type Direction string

const (
	DirectionLong  Direction = "LONG"
	DirectionShort Direction = "SHORT"
)

// Instrument selects which transaction-tax rate of the schedule applies.
type Instrument string

const (
	InstrumentEquity Instrument = "EQUITY"
	InstrumentOption Instrument = "OPTION"
)

var (
	// ErrZeroRisk is returned when the entry price equals the stop loss,
	// which would make the risk per unit zero.
	ErrZeroRisk = errors.New("entry price equals stop loss, risk per unit is zero")

	// ErrStopWrongSide is returned when the stop loss sits on the profit
	// side of the entry price for the given direction.
	ErrStopWrongSide = errors.New("stop loss is on the wrong side of the entry price")

	// ErrUnknownDirection is returned for a direction outside LONG/SHORT.
	ErrUnknownDirection = errors.New("unknown trade direction")
)

// ChargeSchedule holds the fee rates used by Charges. The values are
// policy data copied from a retail brokerage fee card, loaded from
// configuration rather than hard-coded per instrument.
type ChargeSchedule struct {
	BrokerageRate     float64
	BrokerageCap      float64
	EquityTxnTaxRate  float64
	OptionTxnTaxRate  float64
	ExchangeFeeRate   float64
	GovernmentTaxRate float64
	StampDutyRate     float64
}

// DefaultSchedule returns the schedule used when no configuration
// overrides are present.
func DefaultSchedule() ChargeSchedule {
	return ChargeSchedule{
		BrokerageRate:     0.0003,
		BrokerageCap:      40,
		EquityTxnTaxRate:  0.0001,
		OptionTxnTaxRate:  0.0005,
		ExchangeFeeRate:   0.0000325,
		GovernmentTaxRate: 0.18,
		StampDutyRate:     0.00003,
	}
}

// ChargeBreakdown is the per-trade transaction cost breakdown. Total is
// always the exact sum of the five components, each already rounded to
// two decimal places.
type ChargeBreakdown struct {
	Brokerage      float64 `json:"brokerage"`
	TransactionTax float64 `json:"transaction_tax"`
	ExchangeFee    float64 `json:"exchange_fee"`
	GovernmentTax  float64 `json:"government_tax"`
	StampDuty      float64 `json:"stamp_duty"`
	Total          float64 `json:"total"`
}

// riskPerUnit returns the loss per unit if the stop is hit, validating
// that the stop sits on the loss side of the entry for the direction.
func riskPerUnit(entry, stop float64, dir Direction) (float64, error) {
	var perUnit float64
	switch dir {
	case DirectionLong:
		perUnit = entry - stop
	case DirectionShort:
		perUnit = stop - entry
	default:
		return 0, ErrUnknownDirection
	}

	if perUnit == 0 {
		return 0, ErrZeroRisk
	}
	if perUnit < 0 {
		return 0, ErrStopWrongSide
	}
	return perUnit, nil
}

// PositionSize computes how many units to trade so that a stop-loss hit
// loses riskPercent of capital. The result is rounded to the nearest
// whole unit.
func PositionSize(capital, riskPercent, entry, stop float64, dir Direction) (int64, error) {
	perUnit, err := riskPerUnit(entry, stop, dir)
	if err != nil {
		return 0, err
	}

	riskAmount := capital * (riskPercent / 100)
	return int64(math.Round(riskAmount / perUnit)), nil
}

// RewardToRisk computes the ratio of the distance to target over the
// distance to stop. When the stop distance is zero it returns 0 together
// with ErrZeroRisk rather than dividing.
func RewardToRisk(entry, target, stop float64, dir Direction) (float64, error) {
	perUnit, err := riskPerUnit(entry, stop, dir)
	if err != nil {
		return 0, err
	}

	var reward float64
	if dir == DirectionLong {
		reward = target - entry
	} else {
		reward = entry - target
	}
	return reward / perUnit, nil
}

// Charges computes the full transaction-cost breakdown for a round trip.
// Each component is rounded to two decimals exactly once; the government
// levy is computed from the already-rounded brokerage and exchange fee so
// that Total reconciles with the stored components.
func Charges(quantity int64, entry, exit float64, instr Instrument, sched ChargeSchedule) ChargeBreakdown {
	qty := decimal.NewFromInt(quantity)
	entryPrice := decimal.NewFromFloat(entry)
	exitPrice := decimal.NewFromFloat(exit)

	turnover := qty.Mul(entryPrice.Add(exitPrice))

	brokerage := turnover.Mul(decimal.NewFromFloat(sched.BrokerageRate))
	cap := decimal.NewFromFloat(sched.BrokerageCap)
	if brokerage.GreaterThan(cap) {
		brokerage = cap
	}
	brokerage = brokerage.Round(2)

	var txnTax decimal.Decimal
	if instr == InstrumentOption {
		// Options are taxed on the sell-side premium only.
		txnTax = qty.Mul(exitPrice).Mul(decimal.NewFromFloat(sched.OptionTxnTaxRate))
	} else {
		txnTax = turnover.Mul(decimal.NewFromFloat(sched.EquityTxnTaxRate))
	}
	txnTax = txnTax.Round(2)

	exchangeFee := turnover.Mul(decimal.NewFromFloat(sched.ExchangeFeeRate)).Round(2)
	govtTax := brokerage.Add(exchangeFee).Mul(decimal.NewFromFloat(sched.GovernmentTaxRate)).Round(2)
	stampDuty := qty.Mul(entryPrice).Mul(decimal.NewFromFloat(sched.StampDutyRate)).Round(2)

	total := brokerage.Add(txnTax).Add(exchangeFee).Add(govtTax).Add(stampDuty)

	return ChargeBreakdown{
		Brokerage:      brokerage.InexactFloat64(),
		TransactionTax: txnTax.InexactFloat64(),
		ExchangeFee:    exchangeFee.InexactFloat64(),
		GovernmentTax:  govtTax.InexactFloat64(),
		StampDuty:      stampDuty.InexactFloat64(),
		Total:          total.InexactFloat64(),
	}
}

// GrossPNL computes the price-movement profit or loss for a closed trade.
// A short profits when the price falls.
func GrossPNL(quantity int64, entry, exit float64, dir Direction) float64 {
	qty := decimal.NewFromInt(quantity)
	move := decimal.NewFromFloat(exit).Sub(decimal.NewFromFloat(entry))
	if dir == DirectionShort {
		move = move.Neg()
	}
	return qty.Mul(move).Round(2).InexactFloat64()
}

// NetPNL is the gross P&L minus total transaction charges.
func NetPNL(gross, chargeTotal float64) float64 {
	return decimal.NewFromFloat(gross).Sub(decimal.NewFromFloat(chargeTotal)).Round(2).InexactFloat64()
}
