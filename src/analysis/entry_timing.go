package analysis

import (
	"sort"
	"time"

	"github.com/username/tradecoach/backend/src/models"
	"github.com/username/tradecoach/backend/src/utils"
)

// EntryTimingItem classifies a single buy relative to the instrument's
// recent price movement.
type EntryTimingItem struct {
	Instrument     string    `json:"instrument"`
	ISIN           string    `json:"isin"`
	BuyDate        time.Time `json:"buy_date"`
	BuyPrice       float64   `json:"buy_price"`
	PriceChange7d  float64   `json:"price_change_7d"`
	PriceChange30d float64   `json:"price_change_30d"`
	Pattern        string    `json:"pattern"` // after-runup, during-dip, neutral
}

// EntryTimingReport summarizes whether buys chase run-ups or catch dips.
type EntryTimingReport struct {
	Items         []EntryTimingItem `json:"items"`
	PctAfterRunup float64           `json:"pct_after_runup"`
	PctDuringDip  float64           `json:"pct_during_dip"`
	PctNeutral    float64           `json:"pct_neutral"`
	TopFomoBuys   []EntryTimingItem `json:"top_fomo_buys"`
}

// AnalyzeEntryTiming compares each buy price against the closing price 7 and
// 30 days earlier. Instruments without price history are skipped.
func AnalyzeEntryTiming(trades []models.Trade, priceMap map[string]models.InstrumentPriceHistory) EntryTimingReport {
	var items []EntryTimingItem

	for _, t := range trades {
		if t.Side != models.SideBuy {
			continue
		}
		history, ok := priceMap[t.ISIN]
		if !ok || len(history.Prices) == 0 {
			continue
		}

		buyDayPrice, ok := findClosestPrice(history.Prices, t.TradeDate)
		if !ok {
			continue
		}
		price7dAgo, ok7 := findClosestPrice(history.Prices, t.TradeDate.AddDate(0, 0, -7))
		price30dAgo, ok30 := findClosestPrice(history.Prices, t.TradeDate.AddDate(0, 0, -30))

		var change7d, change30d float64
		if ok7 && price7dAgo != 0 {
			change7d = (buyDayPrice - price7dAgo) / price7dAgo * 100
		}
		if ok30 && price30dAgo != 0 {
			change30d = (buyDayPrice - price30dAgo) / price30dAgo * 100
		}

		pattern := "neutral"
		if change7d > 10 || change30d > 20 {
			pattern = "after-runup"
		} else if change7d < -10 || change30d < -15 {
			pattern = "during-dip"
		}

		items = append(items, EntryTimingItem{
			Instrument:     t.Instrument,
			ISIN:           t.ISIN,
			BuyDate:        t.TradeDate,
			BuyPrice:       t.Price,
			PriceChange7d:  change7d,
			PriceChange30d: change30d,
			Pattern:        pattern,
		})
	}

	report := EntryTimingReport{Items: items}

	total := len(items)
	if total == 0 {
		total = 1
	}
	var runups []EntryTimingItem
	var dips, neutral int
	for _, item := range items {
		switch item.Pattern {
		case "after-runup":
			runups = append(runups, item)
		case "during-dip":
			dips++
		default:
			neutral++
		}
	}
	report.PctAfterRunup = float64(len(runups)) / float64(total) * 100
	report.PctDuringDip = float64(dips) / float64(total) * 100
	report.PctNeutral = float64(neutral) / float64(total) * 100

	sort.SliceStable(runups, func(i, j int) bool {
		return runups[i].PriceChange7d > runups[j].PriceChange7d
	})
	if len(runups) > 5 {
		runups = runups[:5]
	}
	report.TopFomoBuys = runups

	return report
}

// findClosestPrice returns the close on the target date, or the nearest
// earlier trading day. Price points are sorted ascending by date.
func findClosestPrice(prices []models.PricePoint, target time.Time) (float64, bool) {
	targetKey := target.Format(utils.DefaultDateFormat)
	for i := len(prices) - 1; i >= 0; i-- {
		if prices[i].Date <= targetKey {
			return prices[i].Close, true
		}
	}
	return 0, false
}
