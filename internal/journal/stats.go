package journal

import (
	"context"
	"time"
)

// Stats summarizes an owner's journal. All P&L figures cover closed
// trades only; open trades count toward TotalTrades but carry no
// realized economics yet.
type Stats struct {
	TotalTrades   int     `json:"total_trades"`
	OpenTrades    int     `json:"open_trades"`
	ClosedTrades  int     `json:"closed_trades"`
	WinningTrades int     `json:"winning_trades"`
	WinRate       float64 `json:"win_rate"`
	TotalNetPNL   float64 `json:"total_net_pnl"`
	BestTrade     float64 `json:"best_trade"`
	WorstTrade    float64 `json:"worst_trade"`
	AverageTrade  float64 `json:"average_trade"`
	ProfitFactor  float64 `json:"profit_factor"`

	// AverageBySetup maps setup type to mean net P&L over closed trades.
	AverageBySetup map[string]float64 `json:"average_by_setup"`

	// EquityCurve is the running cumulative net P&L in OpenedAt order.
	EquityCurve []EquityPoint `json:"equity_curve"`
}

// EquityPoint is one step of the cumulative net P&L curve.
type EquityPoint struct {
	Time  time.Time `json:"time"`
	Value float64   `json:"value"`
}

// Aggregate computes journal statistics for one owner. With zero closed
// trades every ratio is reported as 0 rather than dividing by zero.
func (s *Store) Aggregate(ctx context.Context, ownerID uint) (Stats, error) {
	trades, err := s.Query(ctx, ownerID, QueryFilter{})
	if err != nil {
		return Stats{}, err
	}

	stats := Stats{AverageBySetup: make(map[string]float64)}
	setupTotals := make(map[string]float64)
	setupCounts := make(map[string]int)

	var grossProfit, grossLoss, running float64
	for _, trade := range trades {
		stats.TotalTrades++
		if !trade.IsClosed() {
			stats.OpenTrades++
			continue
		}

		stats.ClosedTrades++
		pnl := trade.NetPNL
		stats.TotalNetPNL += pnl
		running += pnl
		stats.EquityCurve = append(stats.EquityCurve, EquityPoint{Time: trade.OpenedAt, Value: running})

		if pnl > 0 {
			stats.WinningTrades++
			grossProfit += pnl
		} else {
			grossLoss += -pnl
		}

		if stats.ClosedTrades == 1 || pnl > stats.BestTrade {
			stats.BestTrade = pnl
		}
		if stats.ClosedTrades == 1 || pnl < stats.WorstTrade {
			stats.WorstTrade = pnl
		}

		if trade.SetupType != "" {
			setupTotals[trade.SetupType] += pnl
			setupCounts[trade.SetupType]++
		}
	}

	if stats.ClosedTrades > 0 {
		stats.WinRate = float64(stats.WinningTrades) / float64(stats.ClosedTrades)
		stats.AverageTrade = stats.TotalNetPNL / float64(stats.ClosedTrades)
	}
	if grossLoss > 0 {
		stats.ProfitFactor = grossProfit / grossLoss
	}
	for setup, total := range setupTotals {
		stats.AverageBySetup[setup] = total / float64(setupCounts[setup])
	}

	return stats, nil
}
