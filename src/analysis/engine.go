package analysis

import (
	"github.com/username/tradecoach/backend/src/models"
	"github.com/username/tradecoach/backend/src/processors"
)

// Report is the full analysis of one account's trade history. The price-backed
// sections (EntryTiming, PostSell) and the data-gated ones (Conviction,
// AveragingDown, Anchoring) are pointers so that any subset can be absent.
type Report struct {
	Summary       SummaryStats            `json:"summary"`
	Disposition   DispositionAnalysis     `json:"disposition"`
	Timing        TimingAnalysis          `json:"timing"`
	Sizing        SizingAnalysis          `json:"sizing"`
	PerInstrument []PerInstrumentAnalysis `json:"per_instrument"`
	RoundTrips    []models.RoundTrip      `json:"round_trips"`
	OpenPositions []models.OpenPosition   `json:"open_positions"`
	Warnings      []string                `json:"warnings,omitempty"`

	AveragingDown *AveragingDownReport `json:"averaging_down,omitempty"`
	Anchoring     *AnchoringReport     `json:"anchoring,omitempty"`
	Conviction    *ConvictionVerdict   `json:"conviction,omitempty"`
	EntryTiming   *EntryTimingReport   `json:"entry_timing,omitempty"`
	PostSell      *PostSellReport      `json:"post_sell,omitempty"`
}

// Analyze matches the trades and runs every analyzer that does not need
// price history. Price-backed sections are attached afterwards with
// AttachPriceAnalysis once history is available.
func Analyze(trades []models.Trade, matcher processors.TradeMatcher) Report {
	result := matcher.Match(trades)

	report := Report{
		Summary:       ComputeSummary(trades, result.RoundTrips, result.OpenPositions),
		Disposition:   AnalyzeDisposition(result.RoundTrips),
		Timing:        AnalyzeTiming(trades, result.RoundTrips),
		Sizing:        AnalyzeSizing(result.RoundTrips),
		PerInstrument: AnalyzePerInstrument(result.RoundTrips),
		RoundTrips:    result.RoundTrips,
		OpenPositions: result.OpenPositions,
		Warnings:      result.Warnings,
		Conviction:    AnalyzeConviction(result.RoundTrips),
	}

	avgDown := AnalyzeAveragingDown(trades, result.RoundTrips)
	report.AveragingDown = &avgDown
	anchoring := AnalyzeAnchoring(result.RoundTrips)
	report.Anchoring = &anchoring

	return report
}

// AttachPriceAnalysis fills in the sections that need daily closing prices.
// Instruments missing from priceMap are skipped inside each analyzer.
func (r *Report) AttachPriceAnalysis(trades []models.Trade, priceMap map[string]models.InstrumentPriceHistory) {
	if len(priceMap) == 0 {
		return
	}
	entryTiming := AnalyzeEntryTiming(trades, priceMap)
	r.EntryTiming = &entryTiming
	postSell := AnalyzePostSell(r.RoundTrips, priceMap)
	r.PostSell = &postSell
}
