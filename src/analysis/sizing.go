package analysis

import (
	"sort"

	"github.com/username/tradecoach/backend/src/models"
)

// SizingAnalysis describes the distribution of position sizes (buy-side NOK
// amounts) and how size relates to outcome.
type SizingAnalysis struct {
	AvgPositionSizeNOK      float64         `json:"avg_position_size_nok"`
	MedianPositionSizeNOK   float64         `json:"median_position_size_nok"`
	MinPositionSizeNOK      float64         `json:"min_position_size_nok"`
	MaxPositionSizeNOK      float64         `json:"max_position_size_nok"`
	SizeStdDev              float64         `json:"size_std_dev"`
	ConcentrationTop3Pct    float64         `json:"concentration_top3_percent"`
	SizeVsOutcome           []SizeVsOutcome `json:"size_vs_outcome"`
	PositionSizeConsistency string          `json:"position_size_consistency"` // consistent, moderate, inconsistent
}

// SizeVsOutcome is one size quartile's aggregate outcome.
type SizeVsOutcome struct {
	SizeQuartile     string  `json:"size_quartile"` // Small, Medium, Large, Very Large
	AvgReturnPercent float64 `json:"avg_return_percent"`
	Count            int     `json:"count"`
	WinRate          float64 `json:"win_rate"`
}

var quartileLabels = [4]string{"Small", "Medium", "Large", "Very Large"}

// AnalyzeSizing reports position-size statistics and a per-quartile outcome
// breakdown over the round trips.
func AnalyzeSizing(roundTrips []models.RoundTrip) SizingAnalysis {
	sizes := make([]float64, 0, len(roundTrips))
	for _, rt := range roundTrips {
		sizes = append(sizes, rt.BuyAmountNOK)
	}

	a := SizingAnalysis{
		AvgPositionSizeNOK:    mean(sizes),
		MedianPositionSizeNOK: median(sizes),
		SizeStdDev:            stdDev(sizes),
	}

	var totalInvested float64
	for i, s := range sizes {
		totalInvested += s
		if i == 0 || s < a.MinPositionSizeNOK {
			a.MinPositionSizeNOK = s
		}
		if s > a.MaxPositionSizeNOK {
			a.MaxPositionSizeNOK = s
		}
	}

	if totalInvested > 0 {
		descending := make([]float64, len(sizes))
		copy(descending, sizes)
		sort.Sort(sort.Reverse(sort.Float64Slice(descending)))
		var top3 float64
		for i := 0; i < len(descending) && i < 3; i++ {
			top3 += descending[i]
		}
		a.ConcentrationTop3Pct = top3 / totalInvested * 100
	}

	a.SizeVsOutcome = sizeQuartiles(roundTrips)

	cv := 0.0
	if a.AvgPositionSizeNOK > 0 {
		cv = a.SizeStdDev / a.AvgPositionSizeNOK
	}
	switch {
	case cv <= 0.3:
		a.PositionSizeConsistency = "consistent"
	case cv <= 0.7:
		a.PositionSizeConsistency = "moderate"
	default:
		a.PositionSizeConsistency = "inconsistent"
	}

	return a
}

// sizeQuartiles splits the round trips, sorted by buy amount ascending, into
// four contiguous groups of ceil(n/4); the last group may be smaller.
func sizeQuartiles(roundTrips []models.RoundTrip) []SizeVsOutcome {
	sorted := make([]models.RoundTrip, len(roundTrips))
	copy(sorted, roundTrips)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].BuyAmountNOK < sorted[j].BuyAmountNOK
	})

	quartileSize := (len(sorted) + 3) / 4
	var result []SizeVsOutcome

	for i := 0; i < 4; i++ {
		start := i * quartileSize
		end := start + quartileSize
		if end > len(sorted) {
			end = len(sorted)
		}
		if start >= end {
			continue
		}
		group := sorted[start:end]

		returns := make([]float64, 0, len(group))
		wins := 0
		for _, rt := range group {
			returns = append(returns, rt.ProfitPercent)
			if rt.ProfitNOK > 0 {
				wins++
			}
		}

		result = append(result, SizeVsOutcome{
			SizeQuartile:     quartileLabels[i],
			AvgReturnPercent: mean(returns),
			Count:            len(group),
			WinRate:          float64(wins) / float64(len(group)) * 100,
		})
	}
	return result
}
