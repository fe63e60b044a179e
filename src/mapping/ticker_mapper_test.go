package mapping

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/username/tradecoach/backend/src/models"
)

func trade(isin, instrument string) models.Trade {
	return models.Trade{
		TradeDate:  time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		Side:       models.SideBuy,
		Instrument: instrument,
		ISIN:       isin,
		Quantity:   1,
		Price:      100,
		Currency:   "NOK",
	}
}

func TestGenerateMappingsKnownISIN(t *testing.T) {
	mapper := NewTickerMapper()

	mappings := mapper.GenerateMappings([]models.Trade{
		trade("US67066G1040", "NVIDIA Corp"),
	})

	require.Len(t, mappings, 1)
	assert.Equal(t, "NVDA", mappings[0].Ticker)
	assert.Equal(t, models.MappingConfirmed, mappings[0].Status)
	assert.False(t, mappings[0].IsNorwegianFund)
}

func TestGenerateMappingsUnknownISINIsPending(t *testing.T) {
	mapper := NewTickerMapper()

	mappings := mapper.GenerateMappings([]models.Trade{
		trade("SE0000108656", "Ericsson B"),
	})

	require.Len(t, mappings, 1)
	assert.Equal(t, "", mappings[0].Ticker)
	assert.Equal(t, models.MappingPending, mappings[0].Status)
}

func TestGenerateMappingsSkipsNorwegianFunds(t *testing.T) {
	mapper := NewTickerMapper()

	mappings := mapper.GenerateMappings([]models.Trade{
		trade("NO0010140502", "KLP AksjeGlobal Indeks V"),
		trade("NO0010582984", "DNB Teknologi A"),
	})

	require.Len(t, mappings, 2)
	for _, m := range mappings {
		assert.Equal(t, models.MappingSkipped, m.Status)
		assert.True(t, m.IsNorwegianFund)
	}
}

func TestGenerateMappingsFundPatternNeedsNorwegianISIN(t *testing.T) {
	mapper := NewTickerMapper()

	// A name matching a fund pattern but with a non-NO ISIN is not a fund.
	mappings := mapper.GenerateMappings([]models.Trade{
		trade("US1234567890", "DNB Something"),
	})

	require.Len(t, mappings, 1)
	assert.False(t, mappings[0].IsNorwegianFund)
	assert.Equal(t, models.MappingPending, mappings[0].Status)
}

func TestGenerateMappingsDeduplicatesByISIN(t *testing.T) {
	mapper := NewTickerMapper()

	mappings := mapper.GenerateMappings([]models.Trade{
		trade("US67066G1040", "NVIDIA Corp"),
		trade("US67066G1040", "NVIDIA Corp"),
		trade("US67066G1040", "NVIDIA Corp"),
	})

	assert.Len(t, mappings, 1)
}

func TestGenerateMappingsOrdering(t *testing.T) {
	mapper := NewTickerMapper()

	mappings := mapper.GenerateMappings([]models.Trade{
		trade("NO0010140502", "KLP AksjeGlobal Indeks V"),
		trade("SE0000108656", "Ericsson B"),
		trade("US67066G1040", "NVIDIA Corp"),
		trade("US5949181045", "Microsoft Corp"),
	})

	require.Len(t, mappings, 4)
	// Confirmed first (alphabetical by instrument), then pending, funds last.
	assert.Equal(t, "Microsoft Corp", mappings[0].Instrument)
	assert.Equal(t, "NVIDIA Corp", mappings[1].Instrument)
	assert.Equal(t, "Ericsson B", mappings[2].Instrument)
	assert.Equal(t, "KLP AksjeGlobal Indeks V", mappings[3].Instrument)
}

func TestNewTickerMapperWithTable(t *testing.T) {
	mapper := NewTickerMapperWithTable(map[string]string{
		"SE0000108656": "ERIC-B.ST",
		// Override a default entry.
		"US67066G1040": "NVDA.X",
	})

	mappings := mapper.GenerateMappings([]models.Trade{
		trade("SE0000108656", "Ericsson B"),
		trade("US67066G1040", "NVIDIA Corp"),
		trade("US5949181045", "Microsoft Corp"),
	})

	byISIN := make(map[string]models.TickerMapping)
	for _, m := range mappings {
		byISIN[m.ISIN] = m
	}
	assert.Equal(t, "ERIC-B.ST", byISIN["SE0000108656"].Ticker)
	assert.Equal(t, "NVDA.X", byISIN["US67066G1040"].Ticker)
	// Defaults still apply underneath the overrides.
	assert.Equal(t, "MSFT", byISIN["US5949181045"].Ticker)
}
