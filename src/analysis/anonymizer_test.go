package analysis

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/username/tradecoach/backend/src/models"
	"github.com/username/tradecoach/backend/src/processors"
)

func TestAnonymizeBaseFields(t *testing.T) {
	_, report := analyzeFixture()

	stats := Anonymize(report)

	assert.Equal(t, report.Summary.TotalRoundTrips, stats.TotalRoundTrips)
	assert.Equal(t, report.Summary.WinRate, stats.WinRate)
	assert.Equal(t, report.Disposition.Severity, stats.DispositionSeverity)
	assert.Equal(t, report.Sizing.PositionSizeConsistency, stats.PositionSizeConsistency)
}

func TestAnonymizeOptionalSectionsAbsent(t *testing.T) {
	_, report := analyzeFixture()
	report.AveragingDown = nil
	report.Anchoring = nil
	report.Conviction = nil

	stats := Anonymize(report)

	assert.Nil(t, stats.PctBoughtAfterRunup)
	assert.Nil(t, stats.PostSell30d)
	assert.Nil(t, stats.AveragingDownInstances)
	assert.Nil(t, stats.AnchoringSeverity)
	assert.Nil(t, stats.ConvictionVerdict)
}

func TestAnonymizeOptionalSectionsPresent(t *testing.T) {
	_, report := analyzeFixture()
	report.Conviction = &ConvictionVerdict{
		BigBetsAvgReturn:   12.34,
		SmallBetsAvgReturn: -1.29,
		Verdict:            "big-bets-outperform",
	}
	report.EntryTiming = &EntryTimingReport{PctAfterRunup: 40, PctDuringDip: 10}
	report.PostSell = &PostSellReport{
		WindowSummaries: []PostSellWindowSummary{
			{Days: 30, AvgPctChange: 4.26, PctWouldHaveGained: 61.4, ItemCount: 7},
			{Days: 90, ItemCount: 0},
		},
	}

	stats := Anonymize(report)

	require.NotNil(t, stats.ConvictionVerdict)
	assert.Equal(t, "big-bets-outperform", *stats.ConvictionVerdict)
	assert.InDelta(t, 12.3, *stats.BigBetsAvgReturn, 1e-9)
	assert.InDelta(t, -1.3, *stats.SmallBetsAvgReturn, 1e-9)

	require.NotNil(t, stats.PctBoughtAfterRunup)
	assert.InDelta(t, 40.0, *stats.PctBoughtAfterRunup, 1e-9)

	require.NotNil(t, stats.PostSell30d)
	assert.InDelta(t, 4.3, stats.PostSell30d.AvgPctChange, 1e-9)
	assert.InDelta(t, 61.0, stats.PostSell30d.PctRose, 1e-9)
	// Zero-item windows stay absent.
	assert.Nil(t, stats.PostSell90d)
}

// The coaching payload must never contain instrument identifiers, dates or
// NOK amounts.
func TestAnonymizeLeaksNothingIdentifiable(t *testing.T) {
	trades := []models.Trade{
		testBuy("NO0010096985", "Equinor ASA", 0, 10, 312.5),
		testSell("NO0010096985", "Equinor ASA", 15, 10, 340),
	}
	report := Analyze(trades, processors.NewFIFOMatcher())

	payload, err := json.Marshal(Anonymize(report))
	require.NoError(t, err)

	assert.NotContains(t, string(payload), "Equinor")
	assert.NotContains(t, string(payload), "NO0010096985")
	assert.NotContains(t, string(payload), "2024-01")
}
