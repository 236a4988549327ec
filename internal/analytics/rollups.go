package analytics

import (
	"sort"
	"time"

	"expense_ledger/internal/model"

	"github.com/shopspring/decimal"
)

// Status is the over/under-limit flag of a budget.
type Status string

const (
	StatusSafe Status = "safe"
	StatusOver Status = "over"
)

// CategoryTotal is the amount spent in one category.
type CategoryTotal struct {
	Category string          `json:"category"`
	Amount   decimal.Decimal `json:"amount"`
}

// CategoryTotals sums amounts per category, largest first. Categories with
// equal totals keep the order in which they were first seen.
func CategoryTotals(txs []model.Transaction) []CategoryTotal {
	index := make(map[string]int)
	totals := make([]CategoryTotal, 0)
	for _, t := range txs {
		i, ok := index[t.Category]
		if !ok {
			i = len(totals)
			index[t.Category] = i
			totals = append(totals, CategoryTotal{Category: t.Category, Amount: decimal.Zero})
		}
		totals[i].Amount = totals[i].Amount.Add(t.Amount)
	}
	sort.SliceStable(totals, func(i, j int) bool {
		return totals[i].Amount.GreaterThan(totals[j].Amount)
	})
	return totals
}

// Rollups are the headline figures of the dashboard.
type Rollups struct {
	DailySpent          decimal.Decimal `json:"daily_spent"`
	MonthlySpent        decimal.Decimal `json:"monthly_spent"`
	DailySaving         decimal.Decimal `json:"daily_saving"`
	MonthlySaving       decimal.Decimal `json:"monthly_saving"`
	DailyStatus         Status          `json:"daily_status"`
	MonthlyStatus       Status          `json:"monthly_status"`
	DailyUsagePercent   float64         `json:"daily_usage_percent"`
	MonthlyUsagePercent float64         `json:"monthly_usage_percent"`
}

// ScalarRollups computes today's and this month's spending against the
// budgets. "Today" is the calendar date of now, not the last 24 hours.
func ScalarRollups(txs []model.Transaction, dailyBudget, monthlyBudget decimal.Decimal, now time.Time) Rollups {
	daily, monthly := decimal.Zero, decimal.Zero
	for _, t := range txs {
		d := t.Date.In(now.Location())
		if d.Year() != now.Year() || d.Month() != now.Month() {
			continue
		}
		monthly = monthly.Add(t.Amount)
		if d.Day() == now.Day() {
			daily = daily.Add(t.Amount)
		}
	}

	return Rollups{
		DailySpent:          daily,
		MonthlySpent:        monthly,
		DailySaving:         clampZero(dailyBudget.Sub(daily)),
		MonthlySaving:       clampZero(monthlyBudget.Sub(monthly)),
		DailyStatus:         statusOf(daily, dailyBudget),
		MonthlyStatus:       statusOf(monthly, monthlyBudget),
		DailyUsagePercent:   UsagePercent(daily, dailyBudget),
		MonthlyUsagePercent: UsagePercent(monthly, monthlyBudget),
	}
}

func statusOf(spent, budget decimal.Decimal) Status {
	if spent.GreaterThan(budget) {
		return StatusOver
	}
	return StatusSafe
}

var hundred = decimal.NewFromInt(100)

// UsagePercent is spent as a percentage of budget, capped at 100. A zero or
// negative budget counts as fully used.
func UsagePercent(spent, budget decimal.Decimal) float64 {
	if !budget.IsPositive() {
		return 100
	}
	pct := spent.Div(budget).Mul(hundred)
	if pct.GreaterThan(hundred) {
		pct = hundred
	}
	if pct.IsNegative() {
		pct = decimal.Zero
	}
	f, _ := pct.Round(2).Float64()
	return f
}

// NoCategoryLabel names the top category of an empty window.
const NoCategoryLabel = "None"

// WindowSummary is the headline of the analytics view for one window.
type WindowSummary struct {
	Window            string          `json:"window"`
	TotalSpent        decimal.Decimal `json:"total_spent"`
	TopCategory       string          `json:"top_category"`
	TopCategoryAmount decimal.Decimal `json:"top_category_amount"`
	Budget            decimal.Decimal `json:"budget"`
	EstimatedSavings  decimal.Decimal `json:"estimated_savings"`
}

// Summarize totals the window containing now. The window budget is the
// monthly budget for Monthly and twelve times it for Yearly; savings never
// go below zero.
func Summarize(txs []model.Transaction, kind WindowKind, monthlyBudget decimal.Decimal, now time.Time) WindowSummary {
	inWindow := FilterWindow(txs, kind, now)

	total := decimal.Zero
	for _, t := range inWindow {
		total = total.Add(t.Amount)
	}

	budget := monthlyBudget
	if kind == Yearly {
		budget = monthlyBudget.Mul(decimal.NewFromInt(12))
	}

	summary := WindowSummary{
		Window:            kind.String(),
		TotalSpent:        total,
		TopCategory:       NoCategoryLabel,
		TopCategoryAmount: decimal.Zero,
		Budget:            budget,
		EstimatedSavings:  clampZero(budget.Sub(total)),
	}
	if cats := CategoryTotals(inWindow); len(cats) > 0 {
		summary.TopCategory = cats[0].Category
		summary.TopCategoryAmount = cats[0].Amount
	}
	return summary
}
