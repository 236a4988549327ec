// Package analytics derives reporting views from a snapshot of a user's
// ledger and budget configuration. Every function here is pure: callers pass
// the transactions, the limits and the reference instant, and all calendar
// comparisons happen in the location of that instant.
package analytics

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"expense_ledger/internal/model"

	"github.com/shopspring/decimal"
)

// WindowKind is the reporting scope of a series.
type WindowKind int

const (
	Monthly WindowKind = iota // current month, bucketed by day
	Yearly                    // current year, bucketed by month
)

func (k WindowKind) String() string {
	switch k {
	case Monthly:
		return "monthly"
	case Yearly:
		return "yearly"
	}
	return fmt.Sprintf("WindowKind(%d)", int(k))
}

// ParseWindowKind accepts "monthly" or "yearly"; empty input means monthly.
func ParseWindowKind(s string) (WindowKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "monthly", "month":
		return Monthly, nil
	case "yearly", "year":
		return Yearly, nil
	}
	return 0, fmt.Errorf("unknown window %q", s)
}

// NoDataLabel labels the sentinel bucket of an empty series.
const NoDataLabel = "No Data"

// Bucket is one point of a window series.
type Bucket struct {
	Label        string          `json:"label"`
	Key          int             `json:"key"` // day of month, or month number
	TotalExpense decimal.Decimal `json:"total_expense"`
	Limit        decimal.Decimal `json:"limit"`
	Saving       decimal.Decimal `json:"saving"`
}

// InWindow reports whether t falls inside the window that contains now.
func InWindow(t time.Time, kind WindowKind, now time.Time) bool {
	t = t.In(now.Location())
	if t.Year() != now.Year() {
		return false
	}
	if kind == Monthly {
		return t.Month() == now.Month()
	}
	return true
}

// FilterWindow keeps the transactions that fall in the window containing now.
func FilterWindow(txs []model.Transaction, kind WindowKind, now time.Time) []model.Transaction {
	out := make([]model.Transaction, 0, len(txs))
	for _, t := range txs {
		if InWindow(t.Date, kind, now) {
			out = append(out, t)
		}
	}
	return out
}

// WindowSeries buckets the window's transactions by day (Monthly) or month
// (Yearly) in chronological order. Each bucket is measured against the daily
// budget in the monthly view and against the monthly budget in the yearly
// view. Buckets without spending are absent; a window without spending
// yields a single all-zero NoDataLabel bucket.
func WindowSeries(txs []model.Transaction, kind WindowKind, dailyBudget, monthlyBudget decimal.Decimal, now time.Time) []Bucket {
	limit := dailyBudget
	if kind == Yearly {
		limit = monthlyBudget
	}

	byKey := make(map[int]*Bucket)
	for _, t := range FilterWindow(txs, kind, now) {
		d := t.Date.In(now.Location())
		key, label := d.Day(), strconv.Itoa(d.Day())
		if kind == Yearly {
			key, label = int(d.Month()), d.Month().String()[:3]
		}
		b, ok := byKey[key]
		if !ok {
			b = &Bucket{Label: label, Key: key, TotalExpense: decimal.Zero}
			byKey[key] = b
		}
		b.TotalExpense = b.TotalExpense.Add(t.Amount)
	}

	if len(byKey) == 0 {
		return []Bucket{{Label: NoDataLabel, TotalExpense: decimal.Zero, Limit: decimal.Zero, Saving: decimal.Zero}}
	}

	series := make([]Bucket, 0, len(byKey))
	for _, b := range byKey {
		b.Limit = limit
		b.Saving = clampZero(limit.Sub(b.TotalExpense))
		series = append(series, *b)
	}
	sort.Slice(series, func(i, j int) bool { return series[i].Key < series[j].Key })
	return series
}

// TodayLabel labels the sentinel point of an empty dashboard series.
const TodayLabel = "Today"

// DailyPoint is one point of the dashboard activity chart.
type DailyPoint struct {
	Label   string          `json:"label"`
	Day     int             `json:"day"`
	Expense decimal.Decimal `json:"expense"`
}

// DashboardDailySeries buckets every transaction by its day of month in loc
// only, so the 5th of different months share one bucket. Points are
// ascending by day. An empty ledger yields a single zero TodayLabel point.
func DashboardDailySeries(txs []model.Transaction, loc *time.Location) []DailyPoint {
	byDay := make(map[int]decimal.Decimal)
	for _, t := range txs {
		day := t.Date.In(loc).Day()
		byDay[day] = byDay[day].Add(t.Amount)
	}
	if len(byDay) == 0 {
		return []DailyPoint{{Label: TodayLabel, Expense: decimal.Zero}}
	}

	points := make([]DailyPoint, 0, len(byDay))
	for day, total := range byDay {
		points = append(points, DailyPoint{Label: strconv.Itoa(day), Day: day, Expense: total})
	}
	sort.Slice(points, func(i, j int) bool { return points[i].Day < points[j].Day })
	return points
}

// DistinctDays counts the calendar days (in loc) that have at least one transaction.
func DistinctDays(txs []model.Transaction, loc *time.Location) int {
	seen := make(map[string]struct{})
	for _, t := range txs {
		seen[t.Date.In(loc).Format(time.DateOnly)] = struct{}{}
	}
	return len(seen)
}

func clampZero(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}
