package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/username/tradecoach/backend/src/models"
)

func TestAnalyzeAveragingDownDetectsSequence(t *testing.T) {
	trades := []models.Trade{
		testBuy("NO001", "Equinor", 0, 10, 100),
		testBuy("NO001", "Equinor", 5, 10, 90),
		testBuy("NO001", "Equinor", 10, 10, 80),
	}

	report := AnalyzeAveragingDown(trades, nil)

	require.Len(t, report.Sequences, 1)
	seq := report.Sequences[0]
	assert.Equal(t, "Equinor", seq.Instrument)
	assert.Len(t, seq.Buys, 3)
	assert.InDelta(t, -20.0, seq.PriceDrop, 1e-9)
	assert.Equal(t, "open", seq.Outcome)
	assert.Equal(t, 1, report.TotalInstances)
	assert.InDelta(t, 20.0, report.AvgPriceDropPct, 1e-9)
}

func TestAnalyzeAveragingDownThreePercentThreshold(t *testing.T) {
	t.Run("drop just under 3 percent breaks the sequence", func(t *testing.T) {
		trades := []models.Trade{
			testBuy("NO001", "Equinor", 0, 10, 100),
			testBuy("NO001", "Equinor", 5, 10, 97.0), // not < 97.0
		}
		report := AnalyzeAveragingDown(trades, nil)
		assert.Empty(t, report.Sequences)
	})

	t.Run("drop past 3 percent extends it", func(t *testing.T) {
		trades := []models.Trade{
			testBuy("NO001", "Equinor", 0, 10, 100),
			testBuy("NO001", "Equinor", 5, 10, 96.99),
		}
		report := AnalyzeAveragingDown(trades, nil)
		require.Len(t, report.Sequences, 1)
		assert.Len(t, report.Sequences[0].Buys, 2)
	})
}

func TestAnalyzeAveragingDownSellFlushesSequence(t *testing.T) {
	trades := []models.Trade{
		testBuy("NO001", "Equinor", 0, 10, 100),
		testBuy("NO001", "Equinor", 5, 10, 90),
		testSell("NO001", "Equinor", 8, 20, 85),
		// After the sell a fresh pair starts a second sequence.
		testBuy("NO001", "Equinor", 12, 10, 84),
		testBuy("NO001", "Equinor", 15, 10, 75),
	}
	roundTrips := []models.RoundTrip{
		testTrip("Equinor", "NO001", 0, 8, 1000, -150),
	}

	report := AnalyzeAveragingDown(trades, roundTrips)

	require.Len(t, report.Sequences, 2)
	assert.Equal(t, 2, report.TotalInstances)
}

func TestAnalyzeAveragingDownOutcomes(t *testing.T) {
	t.Run("fully sold at a loss", func(t *testing.T) {
		trades := []models.Trade{
			testBuy("NO001", "Equinor", 0, 10, 100),
			testBuy("NO001", "Equinor", 5, 10, 90),
			testSell("NO001", "Equinor", 20, 20, 80),
		}
		roundTrips := []models.RoundTrip{
			testTrip("Equinor", "NO001", 0, 20, 1900, -300),
		}
		report := AnalyzeAveragingDown(trades, roundTrips)
		require.Len(t, report.Sequences, 1)
		assert.Equal(t, "sold-at-loss", report.Sequences[0].Outcome)
		assert.InDelta(t, 100.0, report.PctEndedInLoss, 1e-9)
	})

	t.Run("fully sold at a profit", func(t *testing.T) {
		trades := []models.Trade{
			testBuy("NO001", "Equinor", 0, 10, 100),
			testBuy("NO001", "Equinor", 5, 10, 90),
			testSell("NO001", "Equinor", 60, 20, 120),
		}
		roundTrips := []models.RoundTrip{
			testTrip("Equinor", "NO001", 0, 60, 1900, 500),
		}
		report := AnalyzeAveragingDown(trades, roundTrips)
		require.Len(t, report.Sequences, 1)
		assert.Equal(t, "sold-at-profit", report.Sequences[0].Outcome)
		assert.Zero(t, report.PctEndedInLoss)
	})

	t.Run("open positions are excluded from the loss rate", func(t *testing.T) {
		trades := []models.Trade{
			testBuy("NO001", "Equinor", 0, 10, 100),
			testBuy("NO001", "Equinor", 5, 10, 90),
		}
		report := AnalyzeAveragingDown(trades, nil)
		require.Len(t, report.Sequences, 1)
		assert.Equal(t, "open", report.Sequences[0].Outcome)
		assert.Zero(t, report.PctEndedInLoss)
	})
}

func TestAnalyzeAveragingDownSortsByDeepestDrop(t *testing.T) {
	trades := []models.Trade{
		testBuy("NO001", "Equinor", 0, 10, 100),
		testBuy("NO001", "Equinor", 5, 10, 95),
		testBuy("NO002", "DNB", 0, 10, 200),
		testBuy("NO002", "DNB", 5, 10, 120),
	}

	report := AnalyzeAveragingDown(trades, nil)

	require.Len(t, report.Sequences, 2)
	assert.Equal(t, "DNB", report.Sequences[0].Instrument)
	assert.InDelta(t, -40.0, report.Sequences[0].PriceDrop, 1e-9)
}
