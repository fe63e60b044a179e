package analysis

import (
	"sort"

	"github.com/username/tradecoach/backend/src/models"
)

// PerInstrumentAnalysis aggregates one instrument's round trips and assigns
// a behavioral pattern label.
type PerInstrumentAnalysis struct {
	Instrument       string  `json:"instrument"`
	ISIN             string  `json:"isin"`
	RoundTrips       int     `json:"round_trips"`
	Wins             int     `json:"wins"`
	Losses           int     `json:"losses"`
	WinRate          float64 `json:"win_rate"`
	TotalProfitNOK   float64 `json:"total_profit_nok"`
	AvgProfitPercent float64 `json:"avg_profit_percent"`
	AvgHoldDays      float64 `json:"avg_hold_days"`
	Pattern          string  `json:"pattern"`
}

// AnalyzePerInstrument groups round trips by ISIN and classifies each
// instrument. Results are sorted by trip count descending.
func AnalyzePerInstrument(roundTrips []models.RoundTrip) []PerInstrumentAnalysis {
	byISIN := make(map[string][]models.RoundTrip)
	for _, rt := range roundTrips {
		byISIN[rt.ISIN] = append(byISIN[rt.ISIN], rt)
	}

	results := make([]PerInstrumentAnalysis, 0, len(byISIN))
	for isin, trips := range byISIN {
		a := PerInstrumentAnalysis{
			Instrument: trips[0].Instrument,
			ISIN:       isin,
			RoundTrips: len(trips),
		}
		var profitPctSum, holdDaysSum float64
		for _, rt := range trips {
			if rt.ProfitNOK > 0 {
				a.Wins++
			} else {
				a.Losses++
			}
			a.TotalProfitNOK += rt.ProfitNOK
			profitPctSum += rt.ProfitPercent
			holdDaysSum += float64(rt.HoldDays)
		}
		a.WinRate = float64(a.Wins) / float64(len(trips)) * 100
		a.AvgProfitPercent = profitPctSum / float64(len(trips))
		a.AvgHoldDays = holdDaysSum / float64(len(trips))
		a.Pattern = detectPattern(len(trips), a.WinRate, a.AvgHoldDays, a.TotalProfitNOK)

		results = append(results, a)
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].RoundTrips != results[j].RoundTrips {
			return results[i].RoundTrips > results[j].RoundTrips
		}
		return results[i].Instrument < results[j].Instrument
	})
	return results
}

// detectPattern applies the first matching rule; rule order matters.
func detectPattern(trips int, winRate, avgHoldDays, totalProfitNOK float64) string {
	switch {
	case trips >= 3 && winRate <= 33:
		return "Consistent loser"
	case trips >= 3 && winRate >= 80:
		return "Reliable winner"
	case avgHoldDays <= 5 && trips >= 2:
		return "Quick flipper"
	case avgHoldDays >= 180:
		return "Long-term hold"
	case trips >= 4 && totalProfitNOK < 0:
		return "Overtraded loser"
	case trips == 1 && totalProfitNOK > 0:
		return "One-shot winner"
	case trips == 1 && totalProfitNOK <= 0:
		return "One-shot loser"
	case winRate >= 50 && totalProfitNOK < 0:
		return "Small wins, big losses"
	case winRate < 50 && totalProfitNOK > 0:
		return "Small losses, big wins"
	default:
		return "Mixed results"
	}
}
