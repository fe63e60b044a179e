package analysis

import (
	"math"
	"sort"
	"time"

	"github.com/username/tradecoach/backend/src/models"
	"github.com/username/tradecoach/backend/src/utils"
)

// PostSellWindow is the price movement over one horizon after a sell.
// PctChange is nil when the window extends past the available history.
type PostSellWindow struct {
	Days         int      `json:"days"`
	PctChange    *float64 `json:"pct_change"`
	EstimatedNOK float64  `json:"estimated_nok"`
}

// PostSellItem tracks one sell and the instrument's subsequent price path.
type PostSellItem struct {
	Instrument    string           `json:"instrument"`
	ISIN          string           `json:"isin"`
	SellDate      time.Time        `json:"sell_date"`
	SellPrice     float64          `json:"sell_price"`
	SellAmountNOK float64          `json:"sell_amount_nok"`
	Windows       []PostSellWindow `json:"windows"`
}

// PostSellWindowSummary aggregates one horizon across all sells.
type PostSellWindowSummary struct {
	Days               int     `json:"days"`
	Label              string  `json:"label"`
	AvgPctChange       float64 `json:"avg_pct_change"`
	PctWouldHaveGained float64 `json:"pct_would_have_gained"`
	TotalMissedNOK     float64 `json:"total_missed_nok"`
	TotalDodgedNOK     float64 `json:"total_dodged_nok"`
	ItemCount          int     `json:"item_count"`
}

// MissedOpportunity is a sell where holding 90 more days would have paid.
type MissedOpportunity struct {
	PostSellItem
	WindowPct  float64 `json:"window_pct"`
	WindowDays int     `json:"window_days"`
}

// PostSellReport describes what happened to prices after each sell.
type PostSellReport struct {
	Items                      []PostSellItem          `json:"items"`
	WindowSummaries            []PostSellWindowSummary `json:"window_summaries"`
	BiggestMissedOpportunities []MissedOpportunity     `json:"biggest_missed_opportunities"`
}

var postSellWindows = []struct {
	days  int
	label string
}{
	{30, "30 days"},
	{90, "3 months"},
	{365, "1 year"},
}

// AnalyzePostSell measures the instrument's price 30, 90 and 365 days after
// each sell, using the first close on or after each target date. Sells
// without price history, or without a baseline close at the sell date, are
// skipped.
func AnalyzePostSell(roundTrips []models.RoundTrip, priceMap map[string]models.InstrumentPriceHistory) PostSellReport {
	var items []PostSellItem

	for _, rt := range roundTrips {
		history, ok := priceMap[rt.ISIN]
		if !ok || len(history.Prices) == 0 {
			continue
		}

		sellDatePrice, ok := findPriceOnOrAfter(history.Prices, rt.SellDate)
		if !ok || sellDatePrice <= 0 {
			continue
		}

		windows := make([]PostSellWindow, 0, len(postSellWindows))
		for _, w := range postSellWindows {
			futurePrice, ok := findPriceOnOrAfter(history.Prices, rt.SellDate.AddDate(0, 0, w.days))
			if !ok {
				windows = append(windows, PostSellWindow{Days: w.days})
				continue
			}
			pct := (futurePrice - sellDatePrice) / sellDatePrice * 100
			windows = append(windows, PostSellWindow{
				Days:         w.days,
				PctChange:    &pct,
				EstimatedNOK: rt.SellAmountNOK * (pct / 100),
			})
		}

		items = append(items, PostSellItem{
			Instrument:    rt.Instrument,
			ISIN:          rt.ISIN,
			SellDate:      rt.SellDate,
			SellPrice:     rt.SellPrice,
			SellAmountNOK: rt.SellAmountNOK,
			Windows:       windows,
		})
	}

	report := PostSellReport{Items: items}

	for _, w := range postSellWindows {
		summary := PostSellWindowSummary{Days: w.days, Label: w.label}

		var pctSum float64
		var gained int
		for _, item := range items {
			for _, win := range item.Windows {
				if win.Days != w.days || win.PctChange == nil {
					continue
				}
				summary.ItemCount++
				pctSum += *win.PctChange
				if *win.PctChange > 0 {
					gained++
				}
				if win.EstimatedNOK > 0 {
					summary.TotalMissedNOK += win.EstimatedNOK
				} else if win.EstimatedNOK < 0 {
					summary.TotalDodgedNOK += math.Abs(win.EstimatedNOK)
				}
			}
		}
		if summary.ItemCount > 0 {
			summary.AvgPctChange = pctSum / float64(summary.ItemCount)
			summary.PctWouldHaveGained = float64(gained) / float64(summary.ItemCount) * 100
		}
		report.WindowSummaries = append(report.WindowSummaries, summary)
	}

	var missed []MissedOpportunity
	for _, item := range items {
		for _, win := range item.Windows {
			if win.Days == 90 && win.PctChange != nil && *win.PctChange > 0 {
				missed = append(missed, MissedOpportunity{
					PostSellItem: item,
					WindowPct:    *win.PctChange,
					WindowDays:   90,
				})
			}
		}
	}
	sort.SliceStable(missed, func(i, j int) bool { return missed[i].WindowPct > missed[j].WindowPct })
	if len(missed) > 5 {
		missed = missed[:5]
	}
	report.BiggestMissedOpportunities = missed

	return report
}

// findPriceOnOrAfter returns the first close dated on or after the target.
func findPriceOnOrAfter(prices []models.PricePoint, target time.Time) (float64, bool) {
	targetKey := target.Format(utils.DefaultDateFormat)
	for _, p := range prices {
		if p.Date >= targetKey {
			return p.Close, true
		}
	}
	return 0, false
}
