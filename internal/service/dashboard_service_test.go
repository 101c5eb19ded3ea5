package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/finance-tracker/internal/domain"
)

// Wednesday, 18 June 2025. Its Monday-start week runs 16-22 June.
var dashNow = time.Date(2025, 6, 18, 15, 30, 0, 0, time.UTC)

func newDashboardFixture(t *testing.T) (*DashboardService, *memTransactions) {
	t.Helper()

	categories := newMemCategories()
	transactions := newMemTransactions(categories)
	svc := NewDashboardService(transactions, func() time.Time { return dashNow })
	return svc, transactions
}

func seedTx(t *testing.T, transactions *memTransactions, userID string, date time.Time, amount float64) {
	t.Helper()
	require.NoError(t, transactions.Create(context.Background(), &domain.Transaction{
		UserID:     userID,
		CategoryID: "c-1",
		Name:       "spend",
		Amount:     amount,
		Date:       date,
		Time:       "12:00:00",
	}))
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestDailySummary(t *testing.T) {
	svc, transactions := newDashboardFixture(t)

	seedTx(t, transactions, "u-1", day(2025, 6, 18), 10)
	seedTx(t, transactions, "u-1", day(2025, 6, 17), 99)

	summary, err := svc.Daily(context.Background(), "u-1")
	require.NoError(t, err)
	assert.Equal(t, 10.0, summary.Total)
	assert.True(t, summary.From.Equal(day(2025, 6, 18)))
	assert.True(t, summary.To.Equal(day(2025, 6, 18)))
}

func TestWeeklySummaryMondayStart(t *testing.T) {
	svc, transactions := newDashboardFixture(t)

	seedTx(t, transactions, "u-1", day(2025, 6, 16), 5)  // Monday, in
	seedTx(t, transactions, "u-1", day(2025, 6, 22), 7)  // Sunday, in
	seedTx(t, transactions, "u-1", day(2025, 6, 15), 50) // previous Sunday, out

	summary, err := svc.Weekly(context.Background(), "u-1")
	require.NoError(t, err)
	assert.Equal(t, 12.0, summary.Total)
	assert.True(t, summary.From.Equal(day(2025, 6, 16)))
	assert.True(t, summary.To.Equal(day(2025, 6, 22)))
}

func TestMonthlySummaryBounds(t *testing.T) {
	svc, transactions := newDashboardFixture(t)

	seedTx(t, transactions, "u-1", day(2025, 6, 1), 1)
	seedTx(t, transactions, "u-1", day(2025, 6, 30), 2)
	seedTx(t, transactions, "u-1", day(2025, 5, 31), 40)
	seedTx(t, transactions, "u-1", day(2025, 7, 1), 80)

	summary, err := svc.Monthly(context.Background(), "u-1")
	require.NoError(t, err)
	assert.Equal(t, 3.0, summary.Total)
	assert.True(t, summary.From.Equal(day(2025, 6, 1)))
	assert.True(t, summary.To.Equal(day(2025, 6, 30)))
}

func TestYearlySummaryBounds(t *testing.T) {
	svc, transactions := newDashboardFixture(t)

	seedTx(t, transactions, "u-1", day(2025, 1, 1), 3)
	seedTx(t, transactions, "u-1", day(2025, 12, 31), 4)
	seedTx(t, transactions, "u-1", day(2024, 12, 31), 100)

	summary, err := svc.Yearly(context.Background(), "u-1")
	require.NoError(t, err)
	assert.Equal(t, 7.0, summary.Total)
	assert.True(t, summary.From.Equal(day(2025, 1, 1)))
	assert.True(t, summary.To.Equal(day(2025, 12, 31)))
}

func TestSummariesIgnoreOtherUsers(t *testing.T) {
	svc, transactions := newDashboardFixture(t)

	seedTx(t, transactions, "u-1", day(2025, 6, 18), 10)
	seedTx(t, transactions, "u-2", day(2025, 6, 18), 500)

	summary, err := svc.Daily(context.Background(), "u-1")
	require.NoError(t, err)
	assert.Equal(t, 10.0, summary.Total)
}

func TestChartDaily(t *testing.T) {
	svc, transactions := newDashboardFixture(t)

	seedTx(t, transactions, "u-1", day(2025, 6, 16), 5) // Monday
	seedTx(t, transactions, "u-1", day(2025, 6, 18), 8) // Wednesday

	series, err := svc.ChartDaily(context.Background(), "u-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}, series.Labels)
	assert.Equal(t, []float64{5, 0, 8, 0, 0, 0, 0}, series.Data)
}

func TestChartWeeklySpansMonth(t *testing.T) {
	svc, transactions := newDashboardFixture(t)

	// June 2025 starts on a Sunday, so the first week reaches back into May
	// and the last one is clamped at 30 June.
	seedTx(t, transactions, "u-1", day(2025, 6, 1), 5)
	seedTx(t, transactions, "u-1", day(2025, 6, 30), 9)

	series, err := svc.ChartWeekly(context.Background(), "u-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"Week 1", "Week 2", "Week 3", "Week 4", "Week 5", "Week 6"}, series.Labels)
	assert.Equal(t, []float64{5, 0, 0, 0, 0, 9}, series.Data)

	last := transactions.sumCalls[len(transactions.sumCalls)-1]
	assert.True(t, last[0].Equal(day(2025, 6, 30)))
	assert.True(t, last[1].Equal(day(2025, 6, 30)))
}

func TestChartMonthly(t *testing.T) {
	svc, transactions := newDashboardFixture(t)

	seedTx(t, transactions, "u-1", day(2025, 1, 15), 3)
	seedTx(t, transactions, "u-1", day(2025, 6, 15), 6)

	series, err := svc.ChartMonthly(context.Background(), "u-1")
	require.NoError(t, err)
	require.Len(t, series.Labels, 12)
	require.Len(t, series.Data, 12)
	assert.Equal(t, 3.0, series.Data[0])
	assert.Equal(t, 6.0, series.Data[5])
}

func TestChartYearlyOldestFirst(t *testing.T) {
	svc, transactions := newDashboardFixture(t)

	seedTx(t, transactions, "u-1", day(2021, 3, 1), 1)
	seedTx(t, transactions, "u-1", day(2025, 3, 1), 2)

	series, err := svc.ChartYearly(context.Background(), "u-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"2021", "2022", "2023", "2024", "2025"}, series.Labels)
	assert.Equal(t, []float64{1, 0, 0, 0, 2}, series.Data)
}

func TestCategoryAnalyticsTopFive(t *testing.T) {
	categories := newMemCategories()
	transactions := newMemTransactions(categories)
	svc := NewDashboardService(transactions, func() time.Time { return dashNow })
	ctx := context.Background()

	for i := 0; i < 7; i++ {
		category := &domain.Category{UserID: "u-1", Name: "cat", Slug: "cat", IsActive: true}
		require.NoError(t, categories.Create(ctx, category))
		require.NoError(t, transactions.Create(ctx, &domain.Transaction{
			UserID:     "u-1",
			CategoryID: category.ID,
			Name:       "spend",
			Amount:     float64((i + 1) * 10),
			Date:       day(2025, 6, 1),
			Time:       "12:00:00",
		}))
	}

	spends, err := svc.CategoryAnalytics(ctx, "u-1")
	require.NoError(t, err)
	require.Len(t, spends, 5)
	assert.Equal(t, 70.0, spends[0].TotalAmount)
	assert.Equal(t, 30.0, spends[4].TotalAmount)
}
