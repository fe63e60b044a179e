package mapping

import (
	"regexp"
	"sort"

	"github.com/username/tradecoach/backend/src/models"
)

// Known Nordnet instruments mapped to Yahoo Finance tickers.
var defaultTickers = map[string]string{
	// US stocks
	"US02079K3059": "GOOGL",
	"US02079K1079": "GOOG",
	"US0231351067": "AMZN",
	"US03213A1043": "AMPL",
	"US0494681010": "TEAM",
	"US09352U1088": "BLND",
	"US18915M1071": "NET",
	"US1259193084": "CVU",
	"US2267181046": "CRTO",
	"US22788C1053": "CRWD",
	"US23804L1035": "DDOG",
	"US25402D1028": "DOCN",
	"US3383071012": "FIVN",
	"US37637K1088": "GTLB",
	"US4642851053": "IAU",
	"US5322578056": "LPTH",
	"US5398301094": "LMT",
	"US55380K1097": "MPTI",
	"US30303M1027": "META",
	"US5951121038": "MU",
	"US5949181045": "MSFT",
	"US60937P1066": "MDB",
	"US67066G1040": "NVDA",
	"US67623L3078": "OPAD",
	"US7731221062": "RKLB",
	"US80007P8692": "SD",
	"US81730H1095": "S",
	"US8334451098": "SNOW",
	"US8608971078": "SFIX",
	"US98980G1022": "ZS",

	// Israeli stocks (US-listed)
	"IL0011762130": "MNDY",
	"IL0011796880": "VLN",

	// Canadian stocks
	"CA48113W1023": "JOY.TO",
	"CA82509L1076": "SHOP",

	// ETFs
	"US00214Q7088": "ARKF",
	"US00214Q1040": "ARKK",
	"US67110P7042": "OGIG",
	"US74347B3758": "CLIX",
	"US74347G7051": "DIG",
	"CA74642C1023": "BTCC-B.TO",
	"US88166A5083": "WEAT",
	"US19423L5654": "SARK",
	"IE00BYMLZY74": "WCOA.L",

	// US small-cap / specialty
	"US83089J1088": "SKYT",

	// Norwegian listed
	"NO0013683821": "APPEAR.OL",
}

// Norwegian mutual funds are not quoted on Yahoo Finance; skip them instead of
// leaving them pending forever.
var norwegianFundPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^KLP\b`),
	regexp.MustCompile(`(?i)^Landkreditt\b`),
	regexp.MustCompile(`(?i)^DNB\b`),
	regexp.MustCompile(`(?i)^Alfred Berg\b`),
}

// TickerMapper resolves ISINs to market data symbols. The default table and
// exclusion patterns can be overridden so the engine never depends on
// compiled-in state.
type TickerMapper struct {
	tickers      map[string]string
	fundPatterns []*regexp.Regexp
}

func NewTickerMapper() *TickerMapper {
	return &TickerMapper{tickers: defaultTickers, fundPatterns: norwegianFundPatterns}
}

// NewTickerMapperWithTable builds a mapper with a caller-supplied ISIN table,
// layered over the defaults.
func NewTickerMapperWithTable(overrides map[string]string) *TickerMapper {
	merged := make(map[string]string, len(defaultTickers)+len(overrides))
	for isin, ticker := range defaultTickers {
		merged[isin] = ticker
	}
	for isin, ticker := range overrides {
		merged[isin] = ticker
	}
	return &TickerMapper{tickers: merged, fundPatterns: norwegianFundPatterns}
}

// GenerateMappings deduplicates the trade list by ISIN and assigns each
// instrument a ticker, a pending slot, or a skip. Order: confirmed first,
// then pending, then skipped funds, alphabetical within each group.
func (m *TickerMapper) GenerateMappings(trades []models.Trade) []models.TickerMapping {
	seen := make(map[string]bool)
	var mappings []models.TickerMapping

	for _, t := range trades {
		if t.ISIN == "" || seen[t.ISIN] {
			continue
		}
		seen[t.ISIN] = true

		isFund := m.isNorwegianFund(t.Instrument, t.ISIN)
		ticker := ""
		status := models.MappingPending
		if isFund {
			status = models.MappingSkipped
		} else if mapped, ok := m.tickers[t.ISIN]; ok {
			ticker = mapped
			status = models.MappingConfirmed
		}

		mappings = append(mappings, models.TickerMapping{
			Instrument:      t.Instrument,
			ISIN:            t.ISIN,
			Ticker:          ticker,
			Status:          status,
			IsNorwegianFund: isFund,
		})
	}

	statusOrder := map[string]int{
		models.MappingConfirmed: 0,
		models.MappingPending:   1,
		models.MappingSkipped:   2,
	}
	sort.SliceStable(mappings, func(i, j int) bool {
		a, b := mappings[i], mappings[j]
		if a.IsNorwegianFund != b.IsNorwegianFund {
			return !a.IsNorwegianFund
		}
		if a.Status != b.Status {
			return statusOrder[a.Status] < statusOrder[b.Status]
		}
		return a.Instrument < b.Instrument
	})

	return mappings
}

func (m *TickerMapper) isNorwegianFund(instrument, isin string) bool {
	if len(isin) < 2 || isin[:2] != "NO" {
		return false
	}
	for _, p := range m.fundPatterns {
		if p.MatchString(instrument) {
			return true
		}
	}
	return false
}
