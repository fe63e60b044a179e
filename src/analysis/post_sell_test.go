package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/username/tradecoach/backend/src/models"
)

func TestAnalyzePostSellWindows(t *testing.T) {
	// Sell on day 10 at 100; price rises 1 per day afterwards. History covers
	// the 30- and 90-day windows but not the 1-year one.
	history := testHistory("NO001", "EQNR.OL", 0, 150, func(day int) float64 {
		return 90 + float64(day)
	})
	priceMap := map[string]models.InstrumentPriceHistory{"NO001": history}
	roundTrips := []models.RoundTrip{
		testTrip("Equinor", "NO001", 0, 10, 1000, 100),
	}

	report := AnalyzePostSell(roundTrips, priceMap)

	require.Len(t, report.Items, 1)
	item := report.Items[0]
	require.Len(t, item.Windows, 3)

	w30 := item.Windows[0]
	require.NotNil(t, w30.PctChange)
	assert.Equal(t, 30, w30.Days)
	assert.InDelta(t, 30.0, *w30.PctChange, 1e-9) // 100 -> 130
	assert.InDelta(t, 1100*0.30, w30.EstimatedNOK, 1e-9)

	w90 := item.Windows[1]
	require.NotNil(t, w90.PctChange)
	assert.InDelta(t, 90.0, *w90.PctChange, 1e-9)

	// 365 days is past the end of the history.
	w365 := item.Windows[2]
	assert.Equal(t, 365, w365.Days)
	assert.Nil(t, w365.PctChange)
}

func TestAnalyzePostSellSummariesAndMissedOpportunities(t *testing.T) {
	rising := testHistory("NO001", "EQNR.OL", 0, 150, func(day int) float64 {
		return 100 + float64(day)
	})
	falling := testHistory("NO002", "DNB.OL", 0, 150, func(day int) float64 {
		return 300 - float64(day)
	})
	priceMap := map[string]models.InstrumentPriceHistory{
		"NO001": rising,
		"NO002": falling,
	}
	roundTrips := []models.RoundTrip{
		testTrip("Equinor", "NO001", 0, 10, 1000, 100),
		testTrip("DNB", "NO002", 0, 10, 1000, 50),
	}

	report := AnalyzePostSell(roundTrips, priceMap)

	require.Len(t, report.WindowSummaries, 3)
	s90 := report.WindowSummaries[1]
	assert.Equal(t, 90, s90.Days)
	assert.Equal(t, "3 months", s90.Label)
	assert.Equal(t, 2, s90.ItemCount)
	// One rose, one fell.
	assert.InDelta(t, 50.0, s90.PctWouldHaveGained, 1e-9)
	assert.Greater(t, s90.TotalMissedNOK, 0.0)
	assert.Greater(t, s90.TotalDodgedNOK, 0.0)

	// Only the rising instrument is a missed opportunity.
	require.Len(t, report.BiggestMissedOpportunities, 1)
	assert.Equal(t, "Equinor", report.BiggestMissedOpportunities[0].Instrument)
	assert.Equal(t, 90, report.BiggestMissedOpportunities[0].WindowDays)
}

func TestAnalyzePostSellSkipsInstrumentsWithoutHistory(t *testing.T) {
	roundTrips := []models.RoundTrip{
		testTrip("Equinor", "NO001", 0, 10, 1000, 100),
	}
	report := AnalyzePostSell(roundTrips, map[string]models.InstrumentPriceHistory{})
	assert.Empty(t, report.Items)
	for _, s := range report.WindowSummaries {
		assert.Zero(t, s.ItemCount)
	}
}
