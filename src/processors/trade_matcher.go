package processors

import (
	"fmt"
	"math"
	"sort"

	"github.com/username/tradecoach/backend/src/logger"
	"github.com/username/tradecoach/backend/src/models"
	"github.com/username/tradecoach/backend/src/utils"
)

// buyLot is a buy trade with its remaining unmatched quantity. It lives only
// inside one per-instrument matching pass.
type buyLot struct {
	trade     *models.Trade
	remaining float64
}

type FIFOMatcher struct{}

func NewFIFOMatcher() *FIFOMatcher {
	return &FIFOMatcher{}
}

// Match converts a flat trade list (any order) into round trips and open
// positions using FIFO lots per instrument. Total matched quantity plus open
// quantity always equals total bought quantity per instrument.
func (m *FIFOMatcher) Match(trades []models.Trade) MatchResult {
	byISIN := groupTradesByISIN(trades)

	var result MatchResult

	for isin, isinTrades := range byISIN {
		sorted := sortForMatching(isinTrades)

		var queue []*buyLot

		for i := range sorted {
			trade := &sorted[i]
			if trade.Side == models.SideBuy {
				queue = append(queue, &buyLot{trade: trade, remaining: trade.Quantity})
				continue
			}

			sellRemaining := trade.Quantity
			for sellRemaining > 0 && len(queue) > 0 {
				lot := queue[0]
				matched := utils.MinFloat(sellRemaining, lot.remaining)

				result.RoundTrips = append(result.RoundTrips, buildRoundTrip(lot, trade, matched, isin))

				lot.remaining -= matched
				sellRemaining -= matched
				if lot.remaining <= 0 {
					queue = queue[1:]
				}
			}

			if sellRemaining > 0 {
				warning := fmt.Sprintf("%s: %.4g shares sold without matching buys", trade.Instrument, sellRemaining)
				logger.L.Warn("Sell exceeds available buy lots", "isin", isin, "instrument", trade.Instrument, "unmatchedQuantity", sellRemaining)
				result.Warnings = append(result.Warnings, warning)
			}
		}

		if pos, ok := buildOpenPosition(queue, isin); ok {
			result.OpenPositions = append(result.OpenPositions, pos)
		}
	}

	sort.SliceStable(result.RoundTrips, func(i, j int) bool {
		if !result.RoundTrips[i].SellDate.Equal(result.RoundTrips[j].SellDate) {
			return result.RoundTrips[i].SellDate.Before(result.RoundTrips[j].SellDate)
		}
		return result.RoundTrips[i].ISIN < result.RoundTrips[j].ISIN
	})
	sort.SliceStable(result.OpenPositions, func(i, j int) bool {
		return result.OpenPositions[i].ISIN < result.OpenPositions[j].ISIN
	})
	sort.Strings(result.Warnings)

	return result
}

// buildRoundTrip computes the matched chunk's amounts and profit in NOK.
//
// NOK trades take a quantity-proportional share of each leg's recorded NOK
// amount, which avoids compounding rounding from re-deriving quantity×price.
// Foreign-currency trades compute both legs in trade currency and convert
// with a single rate (sell's, else buy's, else 1) so that no phantom FX
// gain/loss appears from using two different rates on one matched lot.
func buildRoundTrip(lot *buyLot, sell *models.Trade, matched float64, isin string) models.RoundTrip {
	buy := lot.trade
	buyFraction := matched / buy.Quantity
	sellFraction := matched / sell.Quantity

	var buyAmountNOK, sellAmountNOK, profitNOK float64

	if sell.Currency != "NOK" {
		rate := sell.ExchangeRate
		if rate <= 0 {
			rate = buy.ExchangeRate
		}
		if rate <= 0 {
			rate = 1
		}

		buyGross := buy.Price * matched
		sellGross := sell.Price * matched
		buyAmountNOK = buyGross * rate
		sellAmountNOK = sellGross * rate

		buyFees := feeInNOK(buy.TotalFees*buyFraction, buy.FeeCurrency, rate)
		sellFees := feeInNOK(sell.TotalFees*sellFraction, sell.FeeCurrency, rate)
		profitNOK = (sellGross-buyGross)*rate - buyFees - sellFees
	} else {
		// Fees are already netted into the recorded NOK amounts.
		buyAmountNOK = math.Abs(buy.AmountNOK) * buyFraction
		sellAmountNOK = math.Abs(sell.AmountNOK) * sellFraction
		profitNOK = sellAmountNOK - buyAmountNOK
	}

	profitPercent := 0.0
	if buyAmountNOK > 0 {
		profitPercent = (profitNOK / buyAmountNOK) * 100
	}

	return models.RoundTrip{
		Instrument:    sell.Instrument,
		ISIN:          isin,
		BuyDate:       buy.TradeDate,
		SellDate:      sell.TradeDate,
		Quantity:      matched,
		BuyPrice:      buy.Price,
		SellPrice:     sell.Price,
		BuyAmountNOK:  buyAmountNOK,
		SellAmountNOK: sellAmountNOK,
		ProfitNOK:     profitNOK,
		ProfitPercent: profitPercent,
		HoldDays:      utils.DaysBetween(buy.TradeDate, sell.TradeDate),
		Currency:      sell.Currency,
	}
}

// buildOpenPosition folds the leftover lots of one instrument into a single
// position with a quantity-weighted average buy price.
func buildOpenPosition(queue []*buyLot, isin string) (models.OpenPosition, bool) {
	var remaining []*buyLot
	for _, lot := range queue {
		if lot.remaining > 0 {
			remaining = append(remaining, lot)
		}
	}
	if len(remaining) == 0 {
		return models.OpenPosition{}, false
	}

	var totalQuantity, totalCostNOK, weightedPriceSum float64
	for _, lot := range remaining {
		totalQuantity += lot.remaining
		fraction := lot.remaining / lot.trade.Quantity
		totalCostNOK += math.Abs(lot.trade.AmountNOK) * fraction
		weightedPriceSum += lot.trade.Price * lot.remaining
	}

	first := remaining[0].trade
	last := remaining[len(remaining)-1].trade

	return models.OpenPosition{
		Instrument:   first.Instrument,
		ISIN:         isin,
		Quantity:     totalQuantity,
		AvgBuyPrice:  weightedPriceSum / totalQuantity,
		TotalCostNOK: totalCostNOK,
		Currency:     first.Currency,
		FirstBuyDate: first.TradeDate,
		LastBuyDate:  last.TradeDate,
	}, true
}

// feeInNOK converts a fee amount to NOK given the fee's currency and a rate.
func feeInNOK(fee float64, feeCurrency string, exchangeRate float64) float64 {
	if feeCurrency == "NOK" || exchangeRate <= 0 {
		return fee
	}
	return fee * exchangeRate
}

func groupTradesByISIN(trades []models.Trade) map[string][]models.Trade {
	grouped := make(map[string][]models.Trade)
	for _, t := range trades {
		if t.ISIN == "" {
			continue
		}
		grouped[t.ISIN] = append(grouped[t.ISIN], t)
	}
	return grouped
}

// sortForMatching orders one instrument's trades by date ascending, with buys
// before sells on the same day so an opening trade precedes its close.
func sortForMatching(trades []models.Trade) []models.Trade {
	sorted := make([]models.Trade, len(trades))
	copy(sorted, trades)
	sort.SliceStable(sorted, func(i, j int) bool {
		if !sorted[i].TradeDate.Equal(sorted[j].TradeDate) {
			return sorted[i].TradeDate.Before(sorted[j].TradeDate)
		}
		return sorted[i].Side == models.SideBuy && sorted[j].Side == models.SideSell
	})
	return sorted
}
