package analytics

import (
	"testing"
	"time"

	"expense_ledger/internal/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCategoryTotals_SortedDescendingStable(t *testing.T) {
	txs := []model.Transaction{
		tx("Travel", 50, refNow),
		tx("Food", 30, refNow),
		tx("Bills", 50, refNow),
		tx("Food", 40, refNow),
		tx("Rent", 10, refNow),
	}

	totals := CategoryTotals(txs)

	require.Len(t, totals, 4)
	assert.Equal(t, "Food", totals[0].Category)
	assert.True(t, totals[0].Amount.Equal(decimal.NewFromInt(70)))
	// Travel and Bills tie at 50; Travel was seen first.
	assert.Equal(t, "Travel", totals[1].Category)
	assert.Equal(t, "Bills", totals[2].Category)
	assert.Equal(t, "Rent", totals[3].Category)
}

func TestCategoryTotals_Empty(t *testing.T) {
	assert.Empty(t, CategoryTotals(nil))
}

func TestScalarRollups(t *testing.T) {
	txs := []model.Transaction{
		tx("Food", 300, time.Date(2025, time.June, 15, 8, 0, 0, 0, time.UTC)),
		tx("Food", 400, time.Date(2025, time.June, 15, 22, 0, 0, 0, time.UTC)),
		tx("Rent", 5000, day(2025, time.June, 1)),
		tx("Food", 100, time.Date(2025, time.June, 14, 23, 59, 0, 0, time.UTC)), // yesterday, not last-24h
		tx("Food", 800, day(2024, time.June, 15)),                               // same month, other year
	}

	r := ScalarRollups(txs, decimal.NewFromInt(500), decimal.NewFromInt(10000), refNow)

	assert.True(t, r.DailySpent.Equal(decimal.NewFromInt(700)))
	assert.True(t, r.MonthlySpent.Equal(decimal.NewFromInt(5800)))
	assert.True(t, r.DailySaving.IsZero(), "daily saving never goes negative")
	assert.True(t, r.MonthlySaving.Equal(decimal.NewFromInt(4200)))
	assert.Equal(t, StatusOver, r.DailyStatus)
	assert.Equal(t, StatusSafe, r.MonthlyStatus)
	assert.Equal(t, 100.0, r.DailyUsagePercent)
	assert.Equal(t, 58.0, r.MonthlyUsagePercent)
}

func TestScalarRollups_DailyNeverExceedsMonthly(t *testing.T) {
	cases := [][]model.Transaction{
		nil,
		{tx("Food", 1, refNow)},
		{tx("Food", 5, refNow), tx("Food", 9, day(2025, time.June, 2)), tx("Food", 9, day(2025, time.July, 15))},
	}
	for _, txs := range cases {
		r := ScalarRollups(txs, decimal.NewFromInt(10), decimal.NewFromInt(100), refNow)
		assert.True(t, r.DailySpent.LessThanOrEqual(r.MonthlySpent))
	}
}

func TestScalarRollups_AtLimitIsSafe(t *testing.T) {
	r := ScalarRollups([]model.Transaction{tx("Food", 500, refNow)}, decimal.NewFromInt(500), decimal.NewFromInt(10000), refNow)

	assert.Equal(t, StatusSafe, r.DailyStatus)
	assert.True(t, r.DailySaving.IsZero())
}

func TestUsagePercent(t *testing.T) {
	tests := []struct {
		name   string
		spent  int64
		budget int64
		want   float64
	}{
		{"half", 250, 500, 50},
		{"over budget clamps", 700, 500, 100},
		{"zero budget", 10, 0, 100},
		{"zero budget zero spent", 0, 0, 100},
		{"nothing spent", 0, 500, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, UsagePercent(decimal.NewFromInt(tt.spent), decimal.NewFromInt(tt.budget)))
		})
	}
}

func TestSummarize(t *testing.T) {
	txs := []model.Transaction{
		tx("Food", 300, day(2025, time.June, 2)),
		tx("Rent", 4000, day(2025, time.June, 3)),
		tx("Food", 200, day(2025, time.March, 3)),
	}

	monthly := Summarize(txs, Monthly, decimal.NewFromInt(10000), refNow)
	assert.True(t, monthly.TotalSpent.Equal(decimal.NewFromInt(4300)))
	assert.Equal(t, "Rent", monthly.TopCategory)
	assert.True(t, monthly.EstimatedSavings.Equal(decimal.NewFromInt(5700)))

	yearly := Summarize(txs, Yearly, decimal.NewFromInt(10000), refNow)
	assert.True(t, yearly.TotalSpent.Equal(decimal.NewFromInt(4500)))
	assert.True(t, yearly.Budget.Equal(decimal.NewFromInt(120000)))
	assert.True(t, yearly.EstimatedSavings.Equal(decimal.NewFromInt(115500)))
}

func TestSummarize_Empty(t *testing.T) {
	s := Summarize(nil, Monthly, decimal.NewFromInt(100), refNow)

	assert.Equal(t, NoCategoryLabel, s.TopCategory)
	assert.True(t, s.TopCategoryAmount.IsZero())
	assert.True(t, s.EstimatedSavings.Equal(decimal.NewFromInt(100)))
}

func TestSummarize_SavingsClamped(t *testing.T) {
	s := Summarize([]model.Transaction{tx("Food", 150, refNow)}, Monthly, decimal.NewFromInt(100), refNow)

	assert.True(t, s.EstimatedSavings.IsZero())
}
