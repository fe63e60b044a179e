package analysis

import (
	"math"
	"sort"
	"time"

	"github.com/username/tradecoach/backend/src/models"
)

// SequenceBuy is one purchase inside an averaging-down sequence.
type SequenceBuy struct {
	Date     time.Time `json:"date"`
	Price    float64   `json:"price"`
	Quantity float64   `json:"quantity"`
}

// AveragingDownSequence is a run of two or more buys of the same instrument
// at successively lower prices.
type AveragingDownSequence struct {
	Instrument string        `json:"instrument"`
	ISIN       string        `json:"isin"`
	Buys       []SequenceBuy `json:"buys"`
	PriceDrop  float64       `json:"price_drop"` // % from first to last buy, negative
	Outcome    string        `json:"outcome"`    // sold-at-loss, sold-at-profit, open
	ProfitNOK  float64       `json:"profit_nok"` // instrument's aggregate realized profit
}

// AveragingDownReport summarizes all detected sequences.
type AveragingDownReport struct {
	Sequences       []AveragingDownSequence `json:"sequences"`
	TotalInstances  int                     `json:"total_instances"`
	PctEndedInLoss  float64                 `json:"pct_ended_in_loss"`
	AvgPriceDropPct float64                 `json:"avg_price_drop_pct"`
}

// Each follow-up buy must be more than 3% below the previous buy in the
// sequence to count as averaging down.
const averagingDownFactor = 0.97

// AnalyzeAveragingDown walks each instrument's trades chronologically and
// collects declining-price buy sequences. A buy at a price not below 97% of
// the previous buy, or any sell, closes the current sequence.
func AnalyzeAveragingDown(trades []models.Trade, roundTrips []models.RoundTrip) AveragingDownReport {
	byISIN := make(map[string][]models.Trade)
	for _, t := range trades {
		byISIN[t.ISIN] = append(byISIN[t.ISIN], t)
	}

	profitByISIN := make(map[string]float64)
	for _, rt := range roundTrips {
		profitByISIN[rt.ISIN] += rt.ProfitNOK
	}

	openISINs := make(map[string]bool)
	for isin, isinTrades := range byISIN {
		var bought, sold float64
		for _, t := range isinTrades {
			if t.Side == models.SideBuy {
				bought += t.Quantity
			} else {
				sold += t.Quantity
			}
		}
		if bought > sold {
			openISINs[isin] = true
		}
	}

	var sequences []AveragingDownSequence

	for isin, isinTrades := range byISIN {
		sorted := make([]models.Trade, len(isinTrades))
		copy(sorted, isinTrades)
		sort.SliceStable(sorted, func(i, j int) bool {
			return sorted[i].TradeDate.Before(sorted[j].TradeDate)
		})

		instrument := sorted[0].Instrument
		var current []SequenceBuy

		for _, t := range sorted {
			if t.Side == models.SideSell {
				if seq, ok := closeSequence(current, isin, instrument, profitByISIN, openISINs); ok {
					sequences = append(sequences, seq)
				}
				current = nil
				continue
			}

			buy := SequenceBuy{Date: t.TradeDate, Price: t.Price, Quantity: t.Quantity}
			if len(current) == 0 {
				current = []SequenceBuy{buy}
				continue
			}
			lastPrice := current[len(current)-1].Price
			if t.Price < lastPrice*averagingDownFactor {
				current = append(current, buy)
			} else {
				if seq, ok := closeSequence(current, isin, instrument, profitByISIN, openISINs); ok {
					sequences = append(sequences, seq)
				}
				current = []SequenceBuy{buy}
			}
		}

		if seq, ok := closeSequence(current, isin, instrument, profitByISIN, openISINs); ok {
			sequences = append(sequences, seq)
		}
	}

	// Most dramatic drop first (most negative).
	sort.SliceStable(sequences, func(i, j int) bool {
		if sequences[i].PriceDrop != sequences[j].PriceDrop {
			return sequences[i].PriceDrop < sequences[j].PriceDrop
		}
		return sequences[i].ISIN < sequences[j].ISIN
	})

	report := AveragingDownReport{
		Sequences:      sequences,
		TotalInstances: len(sequences),
	}

	var closed, losses int
	var dropSum float64
	for _, s := range sequences {
		dropSum += math.Abs(s.PriceDrop)
		if s.Outcome != "open" {
			closed++
			if s.Outcome == "sold-at-loss" {
				losses++
			}
		}
	}
	if closed > 0 {
		report.PctEndedInLoss = float64(losses) / float64(closed) * 100
	}
	if len(sequences) > 0 {
		report.AvgPriceDropPct = dropSum / float64(len(sequences))
	}

	return report
}

// closeSequence turns the current buy run into a sequence record if it has at
// least two buys. Pure: all inputs explicit, no captured loop state.
func closeSequence(
	buys []SequenceBuy,
	isin, instrument string,
	profitByISIN map[string]float64,
	openISINs map[string]bool,
) (AveragingDownSequence, bool) {
	if len(buys) < 2 {
		return AveragingDownSequence{}, false
	}

	first, last := buys[0], buys[len(buys)-1]
	profit := profitByISIN[isin]

	outcome := "sold-at-profit"
	if openISINs[isin] {
		outcome = "open"
	} else if profit < 0 {
		outcome = "sold-at-loss"
	}

	seq := AveragingDownSequence{
		Instrument: instrument,
		ISIN:       isin,
		Buys:       append([]SequenceBuy(nil), buys...),
		PriceDrop:  (last.Price - first.Price) / first.Price * 100,
		Outcome:    outcome,
		ProfitNOK:  profit,
	}
	return seq, true
}
