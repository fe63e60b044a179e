package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/username/tradecoach/backend/src/models"
)

func TestAnalyzeSizingConsistencyBands(t *testing.T) {
	t.Run("identical sizes are consistent", func(t *testing.T) {
		trips := []models.RoundTrip{
			testTrip("A", "NO001", 0, 1, 1000, 10),
			testTrip("B", "NO002", 0, 2, 1000, 10),
			testTrip("C", "NO003", 0, 3, 1000, 10),
		}
		a := AnalyzeSizing(trips)
		assert.Equal(t, "consistent", a.PositionSizeConsistency)
		assert.InDelta(t, 1000.0, a.AvgPositionSizeNOK, 1e-9)
		assert.Zero(t, a.SizeStdDev)
	})

	t.Run("wildly varying sizes are inconsistent", func(t *testing.T) {
		trips := []models.RoundTrip{
			testTrip("A", "NO001", 0, 1, 100, 10),
			testTrip("B", "NO002", 0, 2, 100, 10),
			testTrip("C", "NO003", 0, 3, 10000, 10),
		}
		a := AnalyzeSizing(trips)
		assert.Equal(t, "inconsistent", a.PositionSizeConsistency)
	})
}

func TestAnalyzeSizingMinMaxAndConcentration(t *testing.T) {
	trips := []models.RoundTrip{
		testTrip("A", "NO001", 0, 1, 100, 10),
		testTrip("B", "NO002", 0, 2, 200, 10),
		testTrip("C", "NO003", 0, 3, 300, 10),
		testTrip("D", "NO004", 0, 4, 400, 10),
	}

	a := AnalyzeSizing(trips)

	assert.InDelta(t, 100.0, a.MinPositionSizeNOK, 1e-9)
	assert.InDelta(t, 400.0, a.MaxPositionSizeNOK, 1e-9)
	// Top 3 of 4: (400+300+200)/1000.
	assert.InDelta(t, 90.0, a.ConcentrationTop3Pct, 1e-9)
}

func TestAnalyzeSizingQuartiles(t *testing.T) {
	// 8 trips: quartile size 2, ascending by buy amount.
	var trips []models.RoundTrip
	for i := 0; i < 8; i++ {
		trips = append(trips, testTrip("A", "NO001", 0, i+1, float64(100*(i+1)), 10))
	}

	a := AnalyzeSizing(trips)

	require.Len(t, a.SizeVsOutcome, 4)
	assert.Equal(t, "Small", a.SizeVsOutcome[0].SizeQuartile)
	assert.Equal(t, "Very Large", a.SizeVsOutcome[3].SizeQuartile)
	for _, q := range a.SizeVsOutcome {
		assert.Equal(t, 2, q.Count)
		assert.InDelta(t, 100.0, q.WinRate, 1e-9)
	}
}

func TestAnalyzeSizingQuartilesUnevenCount(t *testing.T) {
	// 5 trips: ceil(5/4)=2 per group, so the split is 2/2/1 and the fourth
	// group is empty.
	var trips []models.RoundTrip
	for i := 0; i < 5; i++ {
		trips = append(trips, testTrip("A", "NO001", 0, i+1, float64(100*(i+1)), 10))
	}

	a := AnalyzeSizing(trips)

	require.Len(t, a.SizeVsOutcome, 3)
	assert.Equal(t, 2, a.SizeVsOutcome[0].Count)
	assert.Equal(t, 1, a.SizeVsOutcome[2].Count)
}

func TestAnalyzeSizingEmpty(t *testing.T) {
	a := AnalyzeSizing(nil)
	assert.Zero(t, a.AvgPositionSizeNOK)
	assert.Zero(t, a.ConcentrationTop3Pct)
	assert.Empty(t, a.SizeVsOutcome)
	assert.Equal(t, "consistent", a.PositionSizeConsistency)
}
