package analysis

import (
	"sort"

	"github.com/username/tradecoach/backend/src/models"
)

// ConvictionVerdict compares outcomes of the largest bets against the
// smallest ones.
type ConvictionVerdict struct {
	BigBetsAvgReturn   float64 `json:"big_bets_avg_return"`
	SmallBetsAvgReturn float64 `json:"small_bets_avg_return"`
	BigBetsWinRate     float64 `json:"big_bets_win_rate"`
	SmallBetsWinRate   float64 `json:"small_bets_win_rate"`
	Verdict            string  `json:"verdict"` // big-bets-outperform, big-bets-underperform, similar
}

// AnalyzeConviction splits round trips by buy amount into bottom and top
// quartiles and compares returns. Returns nil below 8 round trips; the
// quartiles carry too little signal before that.
func AnalyzeConviction(roundTrips []models.RoundTrip) *ConvictionVerdict {
	if len(roundTrips) < 8 {
		return nil
	}

	sorted := make([]models.RoundTrip, len(roundTrips))
	copy(sorted, roundTrips)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].BuyAmountNOK < sorted[j].BuyAmountNOK
	})

	q := (len(sorted) + 3) / 4
	smallBets := sorted[:q]
	bigBets := sorted[len(sorted)-q:]

	v := &ConvictionVerdict{
		BigBetsAvgReturn:   avgProfitPercent(bigBets),
		SmallBetsAvgReturn: avgProfitPercent(smallBets),
		BigBetsWinRate:     winRateOf(bigBets),
		SmallBetsWinRate:   winRateOf(smallBets),
	}

	diff := v.BigBetsAvgReturn - v.SmallBetsAvgReturn
	switch {
	case diff > 5:
		v.Verdict = "big-bets-outperform"
	case diff < -5:
		v.Verdict = "big-bets-underperform"
	default:
		v.Verdict = "similar"
	}

	return v
}

func avgProfitPercent(roundTrips []models.RoundTrip) float64 {
	pcts := make([]float64, 0, len(roundTrips))
	for _, rt := range roundTrips {
		pcts = append(pcts, rt.ProfitPercent)
	}
	return mean(pcts)
}

func winRateOf(roundTrips []models.RoundTrip) float64 {
	if len(roundTrips) == 0 {
		return 0
	}
	wins := 0
	for _, rt := range roundTrips {
		if rt.ProfitNOK > 0 {
			wins++
		}
	}
	return float64(wins) / float64(len(roundTrips)) * 100
}
