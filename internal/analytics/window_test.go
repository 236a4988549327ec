package analytics

import (
	"testing"
	"time"

	"expense_ledger/internal/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var refNow = time.Date(2025, time.June, 15, 12, 0, 0, 0, time.UTC)

func tx(category string, amount int64, date time.Time) model.Transaction {
	return model.Transaction{
		Title:    category + " expense",
		Amount:   decimal.NewFromInt(amount),
		Category: category,
		Date:     date,
	}
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 10, 0, 0, 0, time.UTC)
}

func TestParseWindowKind(t *testing.T) {
	k, err := ParseWindowKind("")
	require.NoError(t, err)
	assert.Equal(t, Monthly, k)

	k, err = ParseWindowKind("Yearly")
	require.NoError(t, err)
	assert.Equal(t, Yearly, k)

	_, err = ParseWindowKind("weekly")
	assert.Error(t, err)
}

func TestWindowSeries_MonthlySortsByDay(t *testing.T) {
	txs := []model.Transaction{
		tx("Food", 10, day(2025, time.June, 5)),
		tx("Food", 20, day(2025, time.June, 1)),
		tx("Rent", 30, day(2025, time.June, 20)),
	}

	series := WindowSeries(txs, Monthly, decimal.NewFromInt(500), decimal.NewFromInt(10000), refNow)

	require.Len(t, series, 3)
	assert.Equal(t, []string{"1", "5", "20"}, []string{series[0].Label, series[1].Label, series[2].Label})
	assert.True(t, series[0].TotalExpense.Equal(decimal.NewFromInt(20)))
	assert.True(t, series[1].TotalExpense.Equal(decimal.NewFromInt(10)))
	assert.True(t, series[2].TotalExpense.Equal(decimal.NewFromInt(30)))
	for _, b := range series {
		assert.True(t, b.Limit.Equal(decimal.NewFromInt(500)), "monthly view uses the daily budget")
	}
	assert.True(t, series[0].Saving.Equal(decimal.NewFromInt(480)))
}

func TestWindowSeries_MonthlyExcludesOtherMonthsAndYears(t *testing.T) {
	txs := []model.Transaction{
		tx("Food", 10, day(2025, time.June, 3)),
		tx("Food", 99, day(2025, time.May, 3)),
		tx("Food", 77, day(2024, time.June, 3)),
		tx("Food", 5, day(2025, time.June, 3)),
	}

	series := WindowSeries(txs, Monthly, decimal.NewFromInt(500), decimal.NewFromInt(10000), refNow)

	require.Len(t, series, 1)
	assert.Equal(t, 3, series[0].Key)
	assert.True(t, series[0].TotalExpense.Equal(decimal.NewFromInt(15)))
}

func TestWindowSeries_YearlyUsesMonthlyBudgetAndChronologicalOrder(t *testing.T) {
	txs := []model.Transaction{
		tx("Food", 100, day(2025, time.December, 1)), // after "now" but same year
		tx("Food", 200, day(2025, time.April, 9)),
		tx("Food", 300, day(2025, time.August, 2)),
		tx("Food", 50, day(2025, time.April, 20)),
		tx("Food", 999, day(2024, time.April, 20)),
	}

	series := WindowSeries(txs, Yearly, decimal.NewFromInt(500), decimal.NewFromInt(220), refNow)

	require.Len(t, series, 3)
	assert.Equal(t, []int{4, 8, 12}, []int{series[0].Key, series[1].Key, series[2].Key})
	assert.Equal(t, "Apr", series[0].Label)
	assert.True(t, series[0].TotalExpense.Equal(decimal.NewFromInt(250)))
	assert.True(t, series[0].Limit.Equal(decimal.NewFromInt(220)))
	assert.True(t, series[0].Saving.IsZero(), "saving is clamped at zero")
	assert.True(t, series[2].Saving.Equal(decimal.NewFromInt(120)))
}

func TestWindowSeries_YearlyNotAlphabetical(t *testing.T) {
	txs := []model.Transaction{
		tx("Food", 1, day(2025, time.March, 1)),
		tx("Food", 1, day(2025, time.February, 1)),
		tx("Food", 1, day(2025, time.January, 1)),
	}

	series := WindowSeries(txs, Yearly, decimal.NewFromInt(1), decimal.NewFromInt(1), refNow)

	assert.Equal(t, []string{"Jan", "Feb", "Mar"}, []string{series[0].Label, series[1].Label, series[2].Label})
}

func TestWindowSeries_EmptyReturnsSentinel(t *testing.T) {
	for _, kind := range []WindowKind{Monthly, Yearly} {
		series := WindowSeries(nil, kind, decimal.NewFromInt(500), decimal.NewFromInt(10000), refNow)

		require.Len(t, series, 1)
		assert.Equal(t, NoDataLabel, series[0].Label)
		assert.True(t, series[0].TotalExpense.IsZero())
		assert.True(t, series[0].Limit.IsZero())
		assert.True(t, series[0].Saving.IsZero())
	}
}

func TestWindowSeries_UsesLocationOfNow(t *testing.T) {
	loc := time.FixedZone("IST", 5*3600+1800)
	now := time.Date(2025, time.July, 1, 9, 0, 0, 0, loc)
	// 30 June 20:00 UTC is already 1 July in IST.
	txs := []model.Transaction{tx("Food", 40, time.Date(2025, time.June, 30, 20, 0, 0, 0, time.UTC))}

	series := WindowSeries(txs, Monthly, decimal.NewFromInt(500), decimal.NewFromInt(10000), now)

	require.Len(t, series, 1)
	assert.Equal(t, "1", series[0].Label)
}

func TestDashboardDailySeries_CollidesAcrossMonths(t *testing.T) {
	txs := []model.Transaction{
		tx("Food", 10, day(2025, time.June, 5)),
		tx("Food", 15, day(2025, time.March, 5)),
		tx("Food", 7, day(2024, time.January, 2)),
	}

	points := DashboardDailySeries(txs, time.UTC)

	require.Len(t, points, 2)
	assert.Equal(t, 2, points[0].Day)
	assert.Equal(t, 5, points[1].Day)
	assert.True(t, points[1].Expense.Equal(decimal.NewFromInt(25)))
}

func TestDashboardDailySeries_Empty(t *testing.T) {
	points := DashboardDailySeries(nil, time.UTC)

	require.Len(t, points, 1)
	assert.Equal(t, TodayLabel, points[0].Label)
	assert.True(t, points[0].Expense.IsZero())
}

func TestDashboardDailySeries_UsesLocation(t *testing.T) {
	ist := time.FixedZone("IST", 5*3600+1800)
	txs := []model.Transaction{tx("Food", 10, time.Date(2025, time.June, 5, 20, 0, 0, 0, time.UTC))}

	points := DashboardDailySeries(txs, ist)

	require.Len(t, points, 1)
	assert.Equal(t, 6, points[0].Day)
	assert.Equal(t, "6", points[0].Label)
}

func TestDistinctDays(t *testing.T) {
	txs := []model.Transaction{
		tx("Food", 1, day(2025, time.June, 1)),
		tx("Food", 1, time.Date(2025, time.June, 1, 23, 0, 0, 0, time.UTC)),
		tx("Food", 1, day(2025, time.June, 2)),
		tx("Food", 1, day(2025, time.May, 2)),
	}

	assert.Equal(t, 3, DistinctDays(txs, time.UTC))
}
