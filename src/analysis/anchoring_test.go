package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/username/tradecoach/backend/src/models"
)

func TestAnalyzeAnchoringBreakEvenBand(t *testing.T) {
	trips := []models.RoundTrip{
		// Exactly +3% is inside the band.
		testTrip("Edge", "NO001", 0, 10, 1000, 30),
		// -3% is inside too.
		testTrip("EdgeLoss", "NO002", 0, 20, 1000, -30),
		// +3.5% is outside.
		testTrip("Outside", "NO003", 0, 5, 1000, 35),
		testTrip("BigWin", "NO004", 0, 5, 1000, 200),
	}

	a := AnalyzeAnchoring(trips)

	assert.Equal(t, 2, a.SellsNearBreakEven)
	assert.Equal(t, 4, a.TotalSells)
	assert.InDelta(t, 50.0, a.PctNearBreakEven, 1e-9)
	assert.Equal(t, "strong", a.Severity)
}

func TestAnalyzeAnchoringSeverityBands(t *testing.T) {
	build := func(near, far int) []models.RoundTrip {
		var trips []models.RoundTrip
		for i := 0; i < near; i++ {
			trips = append(trips, testTrip("Near", "NO001", 0, 5, 1000, 10))
		}
		for i := 0; i < far; i++ {
			trips = append(trips, testTrip("Far", "NO002", 0, 5, 1000, 500))
		}
		return trips
	}

	t.Run("none at 10 percent", func(t *testing.T) {
		a := AnalyzeAnchoring(build(1, 9))
		assert.Equal(t, "none", a.Severity)
	})
	t.Run("mild at 20 percent", func(t *testing.T) {
		a := AnalyzeAnchoring(build(2, 8))
		assert.Equal(t, "mild", a.Severity)
	})
	t.Run("strong at 30 percent", func(t *testing.T) {
		a := AnalyzeAnchoring(build(3, 7))
		assert.Equal(t, "strong", a.Severity)
	})
}

func TestAnalyzeAnchoringExamplesLongestHeldFirst(t *testing.T) {
	var trips []models.RoundTrip
	for i := 1; i <= 7; i++ {
		trips = append(trips, testTrip("Near", "NO001", 0, i*10, 1000, 10))
	}

	a := AnalyzeAnchoring(trips)

	require.Len(t, a.Examples, 5)
	assert.Equal(t, 70, a.Examples[0].HoldDays)
	assert.Equal(t, 30, a.Examples[4].HoldDays)
}

func TestAnalyzeAnchoringEmpty(t *testing.T) {
	a := AnalyzeAnchoring(nil)
	assert.Zero(t, a.TotalSells)
	assert.Equal(t, "", a.Severity)
	assert.Empty(t, a.Examples)
}
