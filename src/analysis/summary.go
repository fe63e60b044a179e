package analysis

import (
	"time"

	"github.com/username/tradecoach/backend/src/models"
	"github.com/username/tradecoach/backend/src/utils"
)

// SummaryStats are the top-line numbers for one account's trade history.
type SummaryStats struct {
	TotalTrades          int       `json:"total_trades"`
	TotalBuys            int       `json:"total_buys"`
	TotalSells           int       `json:"total_sells"`
	TotalRoundTrips      int       `json:"total_round_trips"`
	TotalProfitNOK       float64   `json:"total_profit_nok"`
	WinRate              float64   `json:"win_rate"` // 0-100
	AvgHoldDays          float64   `json:"avg_hold_days"`
	MedianHoldDays       float64   `json:"median_hold_days"`
	BestTradeNOK         float64   `json:"best_trade_nok"`
	BestTradeInstrument  string    `json:"best_trade_instrument"`
	WorstTradeNOK        float64   `json:"worst_trade_nok"`
	WorstTradeInstrument string    `json:"worst_trade_instrument"`
	UniqueInstruments    int       `json:"unique_instruments"`
	TradingPeriodDays    int       `json:"trading_period_days"`
	FirstTradeDate       time.Time `json:"first_trade_date"`
	LastTradeDate        time.Time `json:"last_trade_date"`
	OpenPositions        int       `json:"open_positions"`
}

// ComputeSummary rolls trades, round trips and open positions into SummaryStats.
// All ratios default to 0 on empty input.
func ComputeSummary(trades []models.Trade, roundTrips []models.RoundTrip, openPositions []models.OpenPosition) SummaryStats {
	s := SummaryStats{
		TotalTrades:     len(trades),
		TotalRoundTrips: len(roundTrips),
		OpenPositions:   len(openPositions),
	}

	isins := make(map[string]bool)
	for _, t := range trades {
		isins[t.ISIN] = true
		if t.Side == models.SideBuy {
			s.TotalBuys++
		} else {
			s.TotalSells++
		}
		if s.FirstTradeDate.IsZero() || t.TradeDate.Before(s.FirstTradeDate) {
			s.FirstTradeDate = t.TradeDate
		}
		if t.TradeDate.After(s.LastTradeDate) {
			s.LastTradeDate = t.TradeDate
		}
	}
	s.UniqueInstruments = len(isins)
	if !s.FirstTradeDate.IsZero() {
		s.TradingPeriodDays = utils.DaysBetween(s.FirstTradeDate, s.LastTradeDate)
	}

	if len(roundTrips) == 0 {
		return s
	}

	holdDays := make([]float64, 0, len(roundTrips))
	winners := 0
	best, worst := roundTrips[0], roundTrips[0]
	for _, rt := range roundTrips {
		s.TotalProfitNOK += rt.ProfitNOK
		holdDays = append(holdDays, float64(rt.HoldDays))
		if rt.ProfitNOK > 0 {
			winners++
		}
		if rt.ProfitNOK > best.ProfitNOK {
			best = rt
		}
		if rt.ProfitNOK < worst.ProfitNOK {
			worst = rt
		}
	}

	s.WinRate = float64(winners) / float64(len(roundTrips)) * 100
	s.AvgHoldDays = mean(holdDays)
	s.MedianHoldDays = median(holdDays)
	s.BestTradeNOK = best.ProfitNOK
	s.BestTradeInstrument = best.Instrument
	s.WorstTradeNOK = worst.ProfitNOK
	s.WorstTradeInstrument = worst.Instrument

	return s
}
