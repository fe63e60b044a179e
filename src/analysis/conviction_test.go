package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/username/tradecoach/backend/src/models"
)

func TestAnalyzeConvictionNeedsEightTrips(t *testing.T) {
	var trips []models.RoundTrip
	for i := 0; i < 7; i++ {
		trips = append(trips, testTrip("A", "NO001", 0, 5, 1000, 10))
	}
	assert.Nil(t, AnalyzeConviction(trips))

	trips = append(trips, testTrip("A", "NO001", 0, 5, 1000, 10))
	assert.NotNil(t, AnalyzeConviction(trips))
}

func TestAnalyzeConvictionBigBetsOutperform(t *testing.T) {
	// Bottom quartile returns ~1%, top quartile ~10%.
	trips := []models.RoundTrip{
		testTrip("S1", "NO001", 0, 5, 100, 1),
		testTrip("S2", "NO002", 0, 5, 110, 1.1),
		testTrip("M1", "NO003", 0, 5, 500, 10),
		testTrip("M2", "NO004", 0, 5, 600, 12),
		testTrip("M3", "NO005", 0, 5, 700, 14),
		testTrip("M4", "NO006", 0, 5, 800, 16),
		testTrip("B1", "NO007", 0, 5, 5000, 500),
		testTrip("B2", "NO008", 0, 5, 6000, 600),
	}

	v := AnalyzeConviction(trips)
	require.NotNil(t, v)

	assert.InDelta(t, 10.0, v.BigBetsAvgReturn, 1e-9)
	assert.InDelta(t, 1.0, v.SmallBetsAvgReturn, 1e-9)
	assert.Equal(t, "big-bets-outperform", v.Verdict)
	assert.InDelta(t, 100.0, v.BigBetsWinRate, 1e-9)
}

func TestAnalyzeConvictionBigBetsUnderperform(t *testing.T) {
	trips := []models.RoundTrip{
		testTrip("S1", "NO001", 0, 5, 100, 10),
		testTrip("S2", "NO002", 0, 5, 110, 11),
		testTrip("M1", "NO003", 0, 5, 500, 10),
		testTrip("M2", "NO004", 0, 5, 600, 12),
		testTrip("M3", "NO005", 0, 5, 700, 14),
		testTrip("M4", "NO006", 0, 5, 800, 16),
		testTrip("B1", "NO007", 0, 5, 5000, -500),
		testTrip("B2", "NO008", 0, 5, 6000, -600),
	}

	v := AnalyzeConviction(trips)
	require.NotNil(t, v)
	assert.Equal(t, "big-bets-underperform", v.Verdict)
	assert.Zero(t, v.BigBetsWinRate)
}

func TestAnalyzeConvictionSimilar(t *testing.T) {
	var trips []models.RoundTrip
	for i := 0; i < 8; i++ {
		trips = append(trips, testTrip("A", "NO001", 0, 5, float64(100*(i+1)), float64(5*(i+1))))
	}

	v := AnalyzeConviction(trips)
	require.NotNil(t, v)
	// Every trip returns exactly 5%, so the quartiles cannot diverge.
	assert.Equal(t, "similar", v.Verdict)
}
