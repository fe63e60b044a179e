package analysis

import (
	"sort"
	"time"

	"github.com/username/tradecoach/backend/src/models"
)

// DispositionAnalysis measures how long winners are held versus losers.
// A ratio well above 1 is the classic disposition effect.
type DispositionAnalysis struct {
	AvgHoldDaysWinners    float64         `json:"avg_hold_days_winners"`
	AvgHoldDaysLosers     float64         `json:"avg_hold_days_losers"`
	MedianHoldDaysWinners float64         `json:"median_hold_days_winners"`
	MedianHoldDaysLosers  float64         `json:"median_hold_days_losers"`
	DispositionRatio      float64         `json:"disposition_ratio"`
	Severity              string          `json:"severity"` // none, mild, moderate, severe
	WinnersCount          int             `json:"winners_count"`
	LosersCount           int             `json:"losers_count"`
	PrematureSells        []PrematureSell `json:"premature_sells"`
}

// PrematureSell is a winner sold within a week with a >5% gain.
type PrematureSell struct {
	Instrument    string    `json:"instrument"`
	SellDate      time.Time `json:"sell_date"`
	HoldDays      int       `json:"hold_days"`
	ProfitPercent float64   `json:"profit_percent"`
}

// AnalyzeDisposition partitions round trips into winners (profit > 0) and
// losers (profit ≤ 0) and compares their holding times.
func AnalyzeDisposition(roundTrips []models.RoundTrip) DispositionAnalysis {
	var winners, losers []models.RoundTrip
	for _, rt := range roundTrips {
		if rt.ProfitNOK > 0 {
			winners = append(winners, rt)
		} else {
			losers = append(losers, rt)
		}
	}

	winnerHold := holdDaysOf(winners)
	loserHold := holdDaysOf(losers)

	a := DispositionAnalysis{
		AvgHoldDaysWinners:    mean(winnerHold),
		AvgHoldDaysLosers:     mean(loserHold),
		MedianHoldDaysWinners: median(winnerHold),
		MedianHoldDaysLosers:  median(loserHold),
		WinnersCount:          len(winners),
		LosersCount:           len(losers),
	}

	if a.AvgHoldDaysWinners > 0 {
		a.DispositionRatio = a.AvgHoldDaysLosers / a.AvgHoldDaysWinners
	}

	switch {
	case a.DispositionRatio <= 1.2:
		a.Severity = "none"
	case a.DispositionRatio <= 2.0:
		a.Severity = "mild"
	case a.DispositionRatio <= 3.5:
		a.Severity = "moderate"
	default:
		a.Severity = "severe"
	}

	for _, rt := range winners {
		if rt.HoldDays <= 7 && rt.ProfitPercent > 5 {
			a.PrematureSells = append(a.PrematureSells, PrematureSell{
				Instrument:    rt.Instrument,
				SellDate:      rt.SellDate,
				HoldDays:      rt.HoldDays,
				ProfitPercent: rt.ProfitPercent,
			})
		}
	}
	sort.SliceStable(a.PrematureSells, func(i, j int) bool {
		return a.PrematureSells[i].ProfitPercent > a.PrematureSells[j].ProfitPercent
	})

	return a
}

func holdDaysOf(roundTrips []models.RoundTrip) []float64 {
	days := make([]float64, 0, len(roundTrips))
	for _, rt := range roundTrips {
		days = append(days, float64(rt.HoldDays))
	}
	return days
}
