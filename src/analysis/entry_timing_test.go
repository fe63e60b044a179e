package analysis

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/username/tradecoach/backend/src/models"
)

func TestAnalyzeEntryTimingAfterRunup(t *testing.T) {
	// Price doubles over the 10 days before the buy.
	history := testHistory("NO001", "EQNR.OL", 0, 40, func(day int) float64 {
		if day >= 30 {
			return 100 + float64(day-30)*10
		}
		return 100
	})
	priceMap := map[string]models.InstrumentPriceHistory{"NO001": history}
	trades := []models.Trade{testBuy("NO001", "Equinor", 40, 10, 200)}

	report := AnalyzeEntryTiming(trades, priceMap)

	require.Len(t, report.Items, 1)
	assert.Equal(t, "after-runup", report.Items[0].Pattern)
	assert.Greater(t, report.Items[0].PriceChange7d, 10.0)
	assert.InDelta(t, 100.0, report.PctAfterRunup, 1e-9)
	require.Len(t, report.TopFomoBuys, 1)
}

func TestAnalyzeEntryTimingDuringDip(t *testing.T) {
	// Price falls from 100 to 80 over the week before the buy.
	history := testHistory("NO001", "EQNR.OL", 0, 40, func(day int) float64 {
		if day >= 33 {
			return 100 - float64(day-33)*3
		}
		return 100
	})
	priceMap := map[string]models.InstrumentPriceHistory{"NO001": history}
	trades := []models.Trade{testBuy("NO001", "Equinor", 40, 10, 80)}

	report := AnalyzeEntryTiming(trades, priceMap)

	require.Len(t, report.Items, 1)
	assert.Equal(t, "during-dip", report.Items[0].Pattern)
	assert.InDelta(t, 100.0, report.PctDuringDip, 1e-9)
	assert.Empty(t, report.TopFomoBuys)
}

func TestAnalyzeEntryTimingNeutral(t *testing.T) {
	history := testHistory("NO001", "EQNR.OL", 0, 40, func(day int) float64 { return 100 })
	priceMap := map[string]models.InstrumentPriceHistory{"NO001": history}
	trades := []models.Trade{testBuy("NO001", "Equinor", 40, 10, 100)}

	report := AnalyzeEntryTiming(trades, priceMap)

	require.Len(t, report.Items, 1)
	assert.Equal(t, "neutral", report.Items[0].Pattern)
	assert.InDelta(t, 100.0, report.PctNeutral, 1e-9)
}

func TestAnalyzeEntryTimingSkipsUnmappedInstruments(t *testing.T) {
	trades := []models.Trade{
		testBuy("NO001", "Equinor", 40, 10, 100),
		testSell("NO001", "Equinor", 50, 10, 110),
	}

	report := AnalyzeEntryTiming(trades, map[string]models.InstrumentPriceHistory{})
	assert.Empty(t, report.Items)
}

func TestAnalyzeEntryTimingIgnoresSells(t *testing.T) {
	history := testHistory("NO001", "EQNR.OL", 0, 40, func(day int) float64 { return 100 })
	priceMap := map[string]models.InstrumentPriceHistory{"NO001": history}
	trades := []models.Trade{testSell("NO001", "Equinor", 40, 10, 100)}

	report := AnalyzeEntryTiming(trades, priceMap)
	assert.Empty(t, report.Items)
}

func TestFindClosestPriceUsesEarlierTradingDay(t *testing.T) {
	prices := []models.PricePoint{
		{Date: "2024-01-05", Close: 100},
		{Date: "2024-01-08", Close: 105},
	}

	// Saturday the 6th falls back to Friday the 5th.
	target := time.Date(2024, 1, 6, 0, 0, 0, 0, time.UTC)
	price, ok := findClosestPrice(prices, target)
	require.True(t, ok)
	assert.InDelta(t, 100.0, price, 1e-9)

	// Before the first close there is nothing to fall back to.
	_, ok = findClosestPrice(prices, time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC))
	assert.False(t, ok)
}
