package analysis

import (
	"math"

	"github.com/username/tradecoach/backend/src/utils"
)

// AnonymizedStats is the numeric projection of a Report that is safe to hand
// to the external coaching service. No instrument names, dates, ISINs or
// monetary amounts, only aggregates and ratios.
type AnonymizedStats struct {
	TotalRoundTrips   int     `json:"totalRoundTrips"`
	WinRate           float64 `json:"winRate"`
	AvgHoldDays       float64 `json:"avgHoldDays"`
	MedianHoldDays    float64 `json:"medianHoldDays"`
	TradingPeriodDays int     `json:"tradingPeriodDays"`

	AvgHoldDaysWinners  float64 `json:"avgHoldDaysWinners"`
	AvgHoldDaysLosers   float64 `json:"avgHoldDaysLosers"`
	DispositionRatio    float64 `json:"dispositionRatio"`
	DispositionSeverity string  `json:"dispositionSeverity"`
	PrematureSellCount  int     `json:"prematureSellCount"`

	TradesPerWeek     float64 `json:"tradesPerWeek"`
	RevengeTradeCount int     `json:"revengeTradeCount"`
	LongestWinStreak  int     `json:"longestWinStreak"`
	LongestLossStreak int     `json:"longestLossStreak"`

	PositionSizeConsistency  string  `json:"positionSizeConsistency"`
	ConcentrationTop3Percent float64 `json:"concentrationTop3Percent"`

	ConsistentLoserCount int `json:"consistentLoserCount"`
	ReliableWinnerCount  int `json:"reliableWinnerCount"`
	QuickFlipperCount    int `json:"quickFlipperCount"`
	OvertradedLoserCount int `json:"overtradedLoserCount"`

	PctBoughtAfterRunup *float64 `json:"pctBoughtAfterRunup,omitempty"`
	PctBoughtDuringDip  *float64 `json:"pctBoughtDuringDip,omitempty"`

	PostSell30d *PostSellSnapshot `json:"postSell30d,omitempty"`
	PostSell90d *PostSellSnapshot `json:"postSell90d,omitempty"`
	PostSell1y  *PostSellSnapshot `json:"postSell1y,omitempty"`

	AveragingDownInstances      *int `json:"averagingDownInstances,omitempty"`
	AveragingDownPctEndedInLoss *int `json:"averagingDownPctEndedInLoss,omitempty"`

	AnchoringPctNearBreakEven *int    `json:"anchoringPctNearBreakEven,omitempty"`
	AnchoringSeverity         *string `json:"anchoringSeverity,omitempty"`

	ConvictionVerdict  *string  `json:"convictionVerdict,omitempty"`
	BigBetsAvgReturn   *float64 `json:"bigBetsAvgReturn,omitempty"`
	SmallBetsAvgReturn *float64 `json:"smallBetsAvgReturn,omitempty"`
}

// PostSellSnapshot condenses one post-sell window for the coaching prompt.
type PostSellSnapshot struct {
	AvgPctChange float64 `json:"avgPctChange"`
	PctRose      float64 `json:"pctRose"`
}

// Anonymize projects the report to AnonymizedStats. Sections absent from the
// report stay absent here, so the coaching prompt only mentions what was
// actually computed.
func Anonymize(report Report) AnonymizedStats {
	patternCount := func(pattern string) int {
		n := 0
		for _, p := range report.PerInstrument {
			if p.Pattern == pattern {
				n++
			}
		}
		return n
	}

	stats := AnonymizedStats{
		TotalRoundTrips:   report.Summary.TotalRoundTrips,
		WinRate:           report.Summary.WinRate,
		AvgHoldDays:       report.Summary.AvgHoldDays,
		MedianHoldDays:    report.Summary.MedianHoldDays,
		TradingPeriodDays: report.Summary.TradingPeriodDays,

		AvgHoldDaysWinners:  report.Disposition.AvgHoldDaysWinners,
		AvgHoldDaysLosers:   report.Disposition.AvgHoldDaysLosers,
		DispositionRatio:    report.Disposition.DispositionRatio,
		DispositionSeverity: report.Disposition.Severity,
		PrematureSellCount:  len(report.Disposition.PrematureSells),

		TradesPerWeek:     report.Timing.TradesPerWeek,
		RevengeTradeCount: report.Timing.RevengeTradeCount,
		LongestWinStreak:  report.Timing.LongestWinStreak,
		LongestLossStreak: report.Timing.LongestLossStreak,

		PositionSizeConsistency:  report.Sizing.PositionSizeConsistency,
		ConcentrationTop3Percent: report.Sizing.ConcentrationTop3Pct,

		ConsistentLoserCount: patternCount("Consistent loser"),
		ReliableWinnerCount:  patternCount("Reliable winner"),
		QuickFlipperCount:    patternCount("Quick flipper"),
		OvertradedLoserCount: patternCount("Overtraded loser"),
	}

	if report.EntryTiming != nil {
		stats.PctBoughtAfterRunup = ptr(report.EntryTiming.PctAfterRunup)
		stats.PctBoughtDuringDip = ptr(report.EntryTiming.PctDuringDip)
	}

	if report.PostSell != nil {
		for _, summary := range report.PostSell.WindowSummaries {
			if summary.ItemCount == 0 {
				continue
			}
			snap := &PostSellSnapshot{
				AvgPctChange: utils.RoundFloat(summary.AvgPctChange, 1),
				PctRose:      math.Round(summary.PctWouldHaveGained),
			}
			switch summary.Days {
			case 30:
				stats.PostSell30d = snap
			case 90:
				stats.PostSell90d = snap
			case 365:
				stats.PostSell1y = snap
			}
		}
	}

	if report.AveragingDown != nil && report.AveragingDown.TotalInstances > 0 {
		stats.AveragingDownInstances = ptr(report.AveragingDown.TotalInstances)
		stats.AveragingDownPctEndedInLoss = ptr(int(math.Round(report.AveragingDown.PctEndedInLoss)))
	}

	if report.Anchoring != nil {
		stats.AnchoringPctNearBreakEven = ptr(int(math.Round(report.Anchoring.PctNearBreakEven)))
		stats.AnchoringSeverity = ptr(report.Anchoring.Severity)
	}

	if report.Conviction != nil {
		stats.ConvictionVerdict = ptr(report.Conviction.Verdict)
		stats.BigBetsAvgReturn = ptr(utils.RoundFloat(report.Conviction.BigBetsAvgReturn, 1))
		stats.SmallBetsAvgReturn = ptr(utils.RoundFloat(report.Conviction.SmallBetsAvgReturn, 1))
	}

	return stats
}

func ptr[T any](v T) *T { return &v }
