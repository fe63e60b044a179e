package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/username/tradecoach/backend/src/models"
)

func TestAnalyzePerInstrumentAggregates(t *testing.T) {
	trips := []models.RoundTrip{
		testTrip("Equinor", "NO001", 0, 10, 1000, 100),
		testTrip("Equinor", "NO001", 0, 20, 1000, -50),
		testTrip("DNB", "NO002", 0, 5, 2000, 200),
	}

	results := AnalyzePerInstrument(trips)

	require.Len(t, results, 2)
	// Sorted by trip count descending.
	assert.Equal(t, "Equinor", results[0].Instrument)
	assert.Equal(t, 2, results[0].RoundTrips)
	assert.Equal(t, 1, results[0].Wins)
	assert.Equal(t, 1, results[0].Losses)
	assert.InDelta(t, 50.0, results[0].WinRate, 1e-9)
	assert.InDelta(t, 50.0, results[0].TotalProfitNOK, 1e-9)
	assert.InDelta(t, 15.0, results[0].AvgHoldDays, 1e-9)
}

func TestDetectPatternRules(t *testing.T) {
	cases := []struct {
		name        string
		trips       int
		winRate     float64
		avgHoldDays float64
		profit      float64
		expected    string
	}{
		{"consistent loser", 4, 25, 30, -500, "Consistent loser"},
		{"reliable winner", 5, 80, 30, 900, "Reliable winner"},
		{"quick flipper", 2, 50, 3, 10, "Quick flipper"},
		{"long-term hold", 1, 100, 200, 400, "Long-term hold"},
		{"overtraded loser", 4, 50, 30, -100, "Overtraded loser"},
		{"one-shot winner", 1, 100, 30, 100, "One-shot winner"},
		{"one-shot loser", 1, 0, 30, -100, "One-shot loser"},
		{"small wins big losses", 2, 50, 30, -100, "Small wins, big losses"},
		{"small losses big wins", 3, 34, 30, 100, "Small losses, big wins"},
		{"mixed results", 2, 50, 30, 100, "Mixed results"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, detectPattern(tc.trips, tc.winRate, tc.avgHoldDays, tc.profit))
		})
	}
}

func TestDetectPatternRuleOrder(t *testing.T) {
	// A 3-trip instrument at 33% win rate and negative profit matches both
	// "Consistent loser" and later rules; the first rule wins.
	assert.Equal(t, "Consistent loser", detectPattern(3, 33, 3, -100))
}
