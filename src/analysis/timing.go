package analysis

import (
	"sort"
	"time"

	"github.com/username/tradecoach/backend/src/models"
	"github.com/username/tradecoach/backend/src/utils"
)

// TimingAnalysis covers trading cadence, calendar distribution, revenge
// trades and win/loss streaks.
type TimingAnalysis struct {
	TradesPerWeek         float64        `json:"trades_per_week"`
	TradesPerMonth        []MonthCount   `json:"trades_per_month"`
	BusiestMonth          string         `json:"busiest_month"`
	BusiestMonthCount     int            `json:"busiest_month_count"`
	RevengeTrades         []RevengeTrade `json:"revenge_trades"`
	RevengeTradeCount     int            `json:"revenge_trade_count"`
	DayOfWeekDistribution []DayCount     `json:"day_of_week_distribution"`
	WinStreaks            []Streak       `json:"win_streaks"`
	LossStreaks           []Streak       `json:"loss_streaks"`
	LongestWinStreak      int            `json:"longest_win_streak"`
	LongestLossStreak     int            `json:"longest_loss_streak"`
}

type MonthCount struct {
	Month string `json:"month"` // e.g. "Jan 2024"
	Count int    `json:"count"`
}

type DayCount struct {
	Day   string `json:"day"`
	Count int    `json:"count"`
}

// RevengeTrade is a re-entry into the same instrument within a week of a
// losing sell.
type RevengeTrade struct {
	LossTrade   models.RoundTrip `json:"loss_trade"`
	FollowUpBuy models.Trade     `json:"follow_up_buy"`
	DaysBetween int              `json:"days_between"`
}

// Streak is a run of two or more consecutive same-sign round trips,
// ordered by sell date.
type Streak struct {
	Length         int       `json:"length"`
	StartDate      time.Time `json:"start_date"`
	EndDate        time.Time `json:"end_date"`
	TotalProfitNOK float64   `json:"total_profit_nok"`
}

const monthKeyFormat = "Jan 2006"

// AnalyzeTiming computes cadence and pattern metrics from the trade stream
// and the matched round trips.
func AnalyzeTiming(trades []models.Trade, roundTrips []models.RoundTrip) TimingAnalysis {
	a := TimingAnalysis{}

	if len(trades) > 0 {
		first, last := trades[0].TradeDate, trades[0].TradeDate
		for _, t := range trades {
			if t.TradeDate.Before(first) {
				first = t.TradeDate
			}
			if t.TradeDate.After(last) {
				last = t.TradeDate
			}
		}
		weeks := last.Sub(first).Hours() / (24 * 7)
		if weeks < 1 {
			weeks = 1
		}
		a.TradesPerWeek = float64(len(trades)) / weeks
	}

	a.TradesPerMonth = monthlyDistribution(trades)
	for _, mc := range a.TradesPerMonth {
		if mc.Count > a.BusiestMonthCount {
			a.BusiestMonth = mc.Month
			a.BusiestMonthCount = mc.Count
		}
	}

	a.DayOfWeekDistribution = weekdayDistribution(trades)
	a.RevengeTrades = findRevengeTrades(trades, roundTrips)
	a.RevengeTradeCount = len(a.RevengeTrades)

	a.WinStreaks, a.LossStreaks = findStreaks(roundTrips)
	for _, s := range a.WinStreaks {
		if s.Length > a.LongestWinStreak {
			a.LongestWinStreak = s.Length
		}
	}
	for _, s := range a.LossStreaks {
		if s.Length > a.LongestLossStreak {
			a.LongestLossStreak = s.Length
		}
	}

	return a
}

func monthlyDistribution(trades []models.Trade) []MonthCount {
	counts := make(map[time.Time]int)
	for _, t := range trades {
		key := time.Date(t.TradeDate.Year(), t.TradeDate.Month(), 1, 0, 0, 0, 0, time.UTC)
		counts[key]++
	}
	months := make([]time.Time, 0, len(counts))
	for m := range counts {
		months = append(months, m)
	}
	sort.Slice(months, func(i, j int) bool { return months[i].Before(months[j]) })

	result := make([]MonthCount, 0, len(months))
	for _, m := range months {
		result = append(result, MonthCount{Month: m.Format(monthKeyFormat), Count: counts[m]})
	}
	return result
}

// weekdayDistribution is restricted to Monday–Friday; exchange trades dated
// on weekends are rare artifacts and excluded.
func weekdayDistribution(trades []models.Trade) []DayCount {
	counts := make(map[time.Weekday]int)
	for _, t := range trades {
		counts[t.TradeDate.Weekday()]++
	}
	weekdays := []time.Weekday{time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday}
	result := make([]DayCount, 0, len(weekdays))
	for _, d := range weekdays {
		result = append(result, DayCount{Day: d.String(), Count: counts[d]})
	}
	return result
}

// findRevengeTrades scans buys within [0,7] days after each losing sell of
// the same instrument, recording only the first follow-up buy per loss.
func findRevengeTrades(trades []models.Trade, roundTrips []models.RoundTrip) []RevengeTrade {
	var losingSells []models.RoundTrip
	for _, rt := range roundTrips {
		if rt.ProfitNOK < 0 {
			losingSells = append(losingSells, rt)
		}
	}
	sort.SliceStable(losingSells, func(i, j int) bool {
		return losingSells[i].SellDate.Before(losingSells[j].SellDate)
	})

	var buys []models.Trade
	for _, t := range trades {
		if t.Side == models.SideBuy {
			buys = append(buys, t)
		}
	}
	sort.SliceStable(buys, func(i, j int) bool {
		return buys[i].TradeDate.Before(buys[j].TradeDate)
	})

	var revenge []RevengeTrade
	for _, loss := range losingSells {
		for _, buy := range buys {
			gap := utils.DaysBetween(loss.SellDate, buy.TradeDate)
			if gap >= 0 && gap <= 7 && buy.ISIN == loss.ISIN {
				revenge = append(revenge, RevengeTrade{LossTrade: loss, FollowUpBuy: buy, DaysBetween: gap})
				break
			}
		}
	}
	return revenge
}

// findStreaks walks round trips in sell-date order and collects consecutive
// same-sign runs of length ≥2.
func findStreaks(roundTrips []models.RoundTrip) (winStreaks, lossStreaks []Streak) {
	sorted := make([]models.RoundTrip, len(roundTrips))
	copy(sorted, roundTrips)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].SellDate.Before(sorted[j].SellDate)
	})

	var current []models.RoundTrip
	currentIsWin := false

	flush := func() {
		if len(current) < 2 {
			current = nil
			return
		}
		streak := Streak{
			Length:    len(current),
			StartDate: current[0].SellDate,
			EndDate:   current[len(current)-1].SellDate,
		}
		for _, rt := range current {
			streak.TotalProfitNOK += rt.ProfitNOK
		}
		if currentIsWin {
			winStreaks = append(winStreaks, streak)
		} else {
			lossStreaks = append(lossStreaks, streak)
		}
		current = nil
	}

	for _, rt := range sorted {
		isWin := rt.ProfitNOK > 0
		if len(current) > 0 && isWin != currentIsWin {
			flush()
		}
		currentIsWin = isWin
		current = append(current, rt)
	}
	flush()

	sort.SliceStable(winStreaks, func(i, j int) bool { return winStreaks[i].Length > winStreaks[j].Length })
	sort.SliceStable(lossStreaks, func(i, j int) bool { return lossStreaks[i].Length > lossStreaks[j].Length })
	return winStreaks, lossStreaks
}
