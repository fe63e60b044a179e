package analysis

import (
	"os"
	"testing"
	"time"

	"github.com/username/tradecoach/backend/src/logger"
	"github.com/username/tradecoach/backend/src/models"
)

func TestMain(m *testing.M) {
	logger.InitLogger("error")
	os.Exit(m.Run())
}

func testDay(offset int) time.Time {
	return time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, offset)
}

// testTrip builds a round trip with a consistent profit percent.
func testTrip(instrument, isin string, buyDay, sellDay int, buyAmountNOK, profitNOK float64) models.RoundTrip {
	pct := 0.0
	if buyAmountNOK > 0 {
		pct = profitNOK / buyAmountNOK * 100
	}
	return models.RoundTrip{
		Instrument:    instrument,
		ISIN:          isin,
		BuyDate:       testDay(buyDay),
		SellDate:      testDay(sellDay),
		Quantity:      1,
		BuyAmountNOK:  buyAmountNOK,
		SellAmountNOK: buyAmountNOK + profitNOK,
		ProfitNOK:     profitNOK,
		ProfitPercent: pct,
		HoldDays:      sellDay - buyDay,
		Currency:      "NOK",
	}
}

func testBuy(isin, instrument string, dayOffset int, quantity, price float64) models.Trade {
	return models.Trade{
		TradeDate:  testDay(dayOffset),
		Side:       models.SideBuy,
		Instrument: instrument,
		ISIN:       isin,
		Quantity:   quantity,
		Price:      price,
		AmountNOK:  -(quantity * price),
		Currency:   "NOK",
	}
}

func testSell(isin, instrument string, dayOffset int, quantity, price float64) models.Trade {
	return models.Trade{
		TradeDate:  testDay(dayOffset),
		Side:       models.SideSell,
		Instrument: instrument,
		ISIN:       isin,
		Quantity:   quantity,
		Price:      price,
		AmountNOK:  quantity * price,
		Currency:   "NOK",
	}
}

// testHistory builds a daily price history spanning [fromDay, toDay] with a
// price function of the day offset.
func testHistory(isin, ticker string, fromDay, toDay int, priceAt func(day int) float64) models.InstrumentPriceHistory {
	h := models.InstrumentPriceHistory{Ticker: ticker, ISIN: isin}
	for d := fromDay; d <= toDay; d++ {
		h.Prices = append(h.Prices, models.PricePoint{
			Date:  testDay(d).Format("2006-01-02"),
			Close: priceAt(d),
		})
	}
	return h
}
