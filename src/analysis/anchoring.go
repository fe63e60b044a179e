package analysis

import (
	"math"
	"sort"

	"github.com/username/tradecoach/backend/src/models"
)

// AnchoringReport measures how many sells cluster near break-even, the
// signature of holding just to get the money back.
type AnchoringReport struct {
	SellsNearBreakEven int                `json:"sells_near_break_even"`
	TotalSells         int                `json:"total_sells"`
	PctNearBreakEven   float64            `json:"pct_near_break_even"`
	Severity           string             `json:"severity"` // none, mild, strong
	Examples           []AnchoringExample `json:"examples"`
}

// AnchoringExample is a near-break-even sell, worst offenders being the ones
// held the longest.
type AnchoringExample struct {
	Instrument       string  `json:"instrument"`
	PctFromBreakEven float64 `json:"pct_from_break_even"`
	HoldDays         int     `json:"hold_days"`
}

// AnalyzeAnchoring counts round trips whose profit percent is within ±3% of
// zero. A random return distribution puts roughly 6 to 10 percent of sells in
// that band; noticeably more suggests anchoring to the purchase price.
func AnalyzeAnchoring(roundTrips []models.RoundTrip) AnchoringReport {
	a := AnchoringReport{TotalSells: len(roundTrips)}
	if len(roundTrips) == 0 {
		return a
	}

	var near []AnchoringExample
	for _, rt := range roundTrips {
		if math.Abs(rt.ProfitPercent) <= 3 {
			near = append(near, AnchoringExample{
				Instrument:       rt.Instrument,
				PctFromBreakEven: rt.ProfitPercent,
				HoldDays:         rt.HoldDays,
			})
		}
	}

	a.SellsNearBreakEven = len(near)
	a.PctNearBreakEven = float64(len(near)) / float64(len(roundTrips)) * 100

	switch {
	case a.PctNearBreakEven > 25:
		a.Severity = "strong"
	case a.PctNearBreakEven > 15:
		a.Severity = "mild"
	default:
		a.Severity = "none"
	}

	sort.SliceStable(near, func(i, j int) bool { return near[i].HoldDays > near[j].HoldDays })
	if len(near) > 5 {
		near = near[:5]
	}
	a.Examples = near

	return a
}
