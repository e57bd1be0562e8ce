package stats

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/username/tradejournal/backend/src/model"
)

// Side is the direction of a trade.
type Side string

const (
	SideBuy  Side = "BUY"
	SideSell Side = "SELL"
)

// ComputeProfitLoss returns the signed profit or loss for one closed trade.
// quantity is an unsigned magnitude; direction comes exclusively from side.
// The caller validates side before this is invoked. A non-finite result is
// an error, never silently coerced.
func ComputeProfitLoss(entryPrice, exitPrice float64, quantity int, side Side) (float64, error) {
	var pnl float64
	if side == SideBuy {
		pnl = (exitPrice - entryPrice) * float64(quantity)
	} else {
		pnl = (entryPrice - exitPrice) * float64(quantity)
	}
	if math.IsNaN(pnl) || math.IsInf(pnl, 0) {
		return 0, fmt.Errorf("profit/loss computation produced a non-finite value (entry=%v exit=%v qty=%d)", entryPrice, exitPrice, quantity)
	}
	return pnl, nil
}

// Stats is one aggregation bucket. Buckets are derived on every request and
// never persisted or cached.
type Stats struct {
	PnL     float64 `json:"pnl"`
	Count   int     `json:"count"`
	Wins    int     `json:"wins"`
	Losses  int     `json:"losses"`
	WinRate float64 `json:"winRate"`
}

type DailyStat struct {
	Date string `json:"date"`
	Stats
}

type WeeklyStat struct {
	Date    string `json:"date"`
	DayName string `json:"dayName"`
	Stats
}

type MonthlyStat struct {
	Date string `json:"date"`
	Day  int    `json:"day"`
	Stats
}

type YearlyStat struct {
	Month     int    `json:"month"`
	MonthName string `json:"monthName"`
	Stats
}

type YearStatistics struct {
	Year         int           `json:"year"`
	Summary      Stats         `json:"summary"`
	DailyStats   []DailyStat   `json:"dailyStats"`
	WeeklyStats  []WeeklyStat  `json:"weeklyStats"`
	MonthlyStats []MonthlyStat `json:"monthlyStats"`
	YearlyStats  []YearlyStat  `json:"yearlyStats"`
}

// CalculateStats aggregates a set of trades into one bucket. A zero-P/L
// trade counts toward Count but is neither a win nor a loss; the win rate
// denominator is Count, not Wins+Losses.
func CalculateStats(trades []model.Trade) Stats {
	if len(trades) == 0 {
		return Stats{}
	}
	var s Stats
	for _, t := range trades {
		s.PnL += t.ProfitLoss
		s.Count++
		if t.ProfitLoss > 0 {
			s.Wins++
		} else if t.ProfitLoss < 0 {
			s.Losses++
		}
	}
	s.WinRate = math.Round(float64(s.Wins)/float64(s.Count)*100*10) / 10
	return s
}

// BuildYearStatistics produces the calendar heat-map and stats-tab data for
// one user's trade collection.
//
// Daily, yearly and the summary cover trades dated inside the requested
// year. Weekly is always the current real-world Monday-to-Friday and
// monthly the current real-world month, both anchored on now rather than
// on year; the current week may therefore include trades outside the
// requested year when it spans a year boundary. Day boundaries follow loc.
func BuildYearStatistics(trades []model.Trade, year int, now time.Time, loc *time.Location) YearStatistics {
	if loc == nil {
		loc = time.Local
	}
	now = now.In(loc)

	var yearTrades []model.Trade
	for _, t := range trades {
		if t.Date.In(loc).Year() == year {
			yearTrades = append(yearTrades, t)
		}
	}

	return YearStatistics{
		Year:         year,
		Summary:      CalculateStats(yearTrades),
		DailyStats:   buildDailyStats(yearTrades, loc),
		WeeklyStats:  buildWeeklyStats(trades, now, loc),
		MonthlyStats: buildMonthlyStats(trades, now, loc),
		YearlyStats:  buildYearlyStats(yearTrades, loc),
	}
}

const dateLayout = "2006-01-02"

// tradesOnDate selects trades falling on one calendar day.
func tradesOnDate(trades []model.Trade, dateStr string, loc *time.Location) []model.Trade {
	var matched []model.Trade
	for _, t := range trades {
		if t.Date.In(loc).Format(dateLayout) == dateStr {
			matched = append(matched, t)
		}
	}
	return matched
}

func buildDailyStats(yearTrades []model.Trade, loc *time.Location) []DailyStat {
	byDate := make(map[string][]model.Trade)
	for _, t := range yearTrades {
		key := t.Date.In(loc).Format(dateLayout)
		byDate[key] = append(byDate[key], t)
	}

	dates := make([]string, 0, len(byDate))
	for d := range byDate {
		dates = append(dates, d)
	}
	sort.Strings(dates)

	daily := make([]DailyStat, 0, len(dates))
	for _, d := range dates {
		daily = append(daily, DailyStat{Date: d, Stats: CalculateStats(byDate[d])})
	}
	return daily
}

// buildWeeklyStats returns exactly five entries, Monday through Friday of
// the week containing now. Matching is by calendar day over the full trade
// collection, so a week spanning a year boundary shows trades from both years.
func buildWeeklyStats(trades []model.Trade, now time.Time, loc *time.Location) []WeeklyStat {
	daysSinceMonday := (int(now.Weekday()) + 6) % 7
	monday := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc).AddDate(0, 0, -daysSinceMonday)

	weekly := make([]WeeklyStat, 0, 5)
	for i := 0; i < 5; i++ {
		day := monday.AddDate(0, 0, i)
		dateStr := day.Format(dateLayout)
		weekly = append(weekly, WeeklyStat{
			Date:    dateStr,
			DayName: day.Format("Mon"),
			Stats:   CalculateStats(tradesOnDate(trades, dateStr, loc)),
		})
	}
	return weekly
}

// buildMonthlyStats returns one entry per day of the month containing now,
// whether or not the day has trades.
func buildMonthlyStats(trades []model.Trade, now time.Time, loc *time.Location) []MonthlyStat {
	firstOfMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, loc)
	daysInMonth := firstOfMonth.AddDate(0, 1, -1).Day()

	monthly := make([]MonthlyStat, 0, daysInMonth)
	for day := 1; day <= daysInMonth; day++ {
		date := time.Date(now.Year(), now.Month(), day, 0, 0, 0, 0, loc)
		dateStr := date.Format(dateLayout)
		monthly = append(monthly, MonthlyStat{
			Date:  dateStr,
			Day:   day,
			Stats: CalculateStats(tradesOnDate(trades, dateStr, loc)),
		})
	}
	return monthly
}

// buildYearlyStats returns twelve entries, January through December of the
// filtered year.
func buildYearlyStats(yearTrades []model.Trade, loc *time.Location) []YearlyStat {
	byMonth := make(map[time.Month][]model.Trade)
	for _, t := range yearTrades {
		m := t.Date.In(loc).Month()
		byMonth[m] = append(byMonth[m], t)
	}

	yearly := make([]YearlyStat, 0, 12)
	for m := time.January; m <= time.December; m++ {
		yearly = append(yearly, YearlyStat{
			Month:     int(m),
			MonthName: m.String()[:3],
			Stats:     CalculateStats(byMonth[m]),
		})
	}
	return yearly
}
