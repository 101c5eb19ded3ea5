package service

import (
	"context"
	"fmt"
	"time"

	"github.com/spec-kit/finance-tracker/internal/domain"
	"github.com/spec-kit/finance-tracker/internal/repository"
)

// DashboardService computes spending aggregates for the dashboard. Weeks run
// Monday through Sunday.
type DashboardService struct {
	transactions repository.TransactionRepository
	now          func() time.Time
}

// NewDashboardService constructs the service. A nil clock defaults to time.Now.
func NewDashboardService(transactions repository.TransactionRepository, clock func() time.Time) *DashboardService {
	if clock == nil {
		clock = time.Now
	}
	return &DashboardService{transactions: transactions, now: clock}
}

// PeriodSummary is a total over a date range.
type PeriodSummary struct {
	Total float64   `json:"total"`
	From  time.Time `json:"-"`
	To    time.Time `json:"-"`
}

// ChartSeries pairs labels with their totals.
type ChartSeries struct {
	Labels []string  `json:"labels"`
	Data   []float64 `json:"data"`
}

// Daily totals today's spending.
func (s *DashboardService) Daily(ctx context.Context, userID string) (*PeriodSummary, error) {
	day := dateOf(s.now())
	return s.summary(ctx, userID, day, day)
}

// Weekly totals the current Monday-to-Sunday week.
func (s *DashboardService) Weekly(ctx context.Context, userID string) (*PeriodSummary, error) {
	start := startOfWeek(s.now())
	return s.summary(ctx, userID, start, start.AddDate(0, 0, 6))
}

// Monthly totals the current calendar month.
func (s *DashboardService) Monthly(ctx context.Context, userID string) (*PeriodSummary, error) {
	now := s.now()
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	return s.summary(ctx, userID, start, start.AddDate(0, 1, -1))
}

// Yearly totals the current calendar year.
func (s *DashboardService) Yearly(ctx context.Context, userID string) (*PeriodSummary, error) {
	now := s.now()
	start := time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, now.Location())
	return s.summary(ctx, userID, start, time.Date(now.Year(), time.December, 31, 0, 0, 0, 0, now.Location()))
}

// ChartDaily returns one total per weekday of the current week.
func (s *DashboardService) ChartDaily(ctx context.Context, userID string) (*ChartSeries, error) {
	start := startOfWeek(s.now())
	series := &ChartSeries{
		Labels: []string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"},
		Data:   make([]float64, 0, 7),
	}
	for i := 0; i < 7; i++ {
		day := start.AddDate(0, 0, i)
		total, err := s.transactions.SumBetween(ctx, userID, day, day)
		if err != nil {
			return nil, err
		}
		series.Data = append(series.Data, total)
	}
	return series, nil
}

// ChartWeekly returns per-week totals covering the current month.
func (s *DashboardService) ChartWeekly(ctx context.Context, userID string) (*ChartSeries, error) {
	now := s.now()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	monthEnd := monthStart.AddDate(0, 1, -1)

	series := &ChartSeries{Labels: make([]string, 0), Data: make([]float64, 0)}
	weekStart := startOfWeek(monthStart)
	for weekNumber := 1; !weekStart.After(monthEnd); weekNumber++ {
		weekEnd := weekStart.AddDate(0, 0, 6)
		if weekEnd.After(monthEnd) {
			weekEnd = monthEnd
		}

		total, err := s.transactions.SumBetween(ctx, userID, weekStart, weekEnd)
		if err != nil {
			return nil, err
		}
		series.Data = append(series.Data, total)
		series.Labels = append(series.Labels, fmt.Sprintf("Week %d", weekNumber))

		weekStart = weekStart.AddDate(0, 0, 7)
	}
	return series, nil
}

// ChartMonthly returns one total per month of the current year.
func (s *DashboardService) ChartMonthly(ctx context.Context, userID string) (*ChartSeries, error) {
	now := s.now()
	series := &ChartSeries{
		Labels: []string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"},
		Data:   make([]float64, 0, 12),
	}
	for i := 0; i < 12; i++ {
		monthStart := time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, now.Location()).AddDate(0, i, 0)
		monthEnd := monthStart.AddDate(0, 1, -1)
		total, err := s.transactions.SumBetween(ctx, userID, monthStart, monthEnd)
		if err != nil {
			return nil, err
		}
		series.Data = append(series.Data, total)
	}
	return series, nil
}

// ChartYearly returns totals for the last five years, oldest first.
func (s *DashboardService) ChartYearly(ctx context.Context, userID string) (*ChartSeries, error) {
	now := s.now()
	series := &ChartSeries{Labels: make([]string, 0, 5), Data: make([]float64, 0, 5)}
	for i := 4; i >= 0; i-- {
		year := now.Year() - i
		yearStart := time.Date(year, time.January, 1, 0, 0, 0, 0, now.Location())
		yearEnd := time.Date(year, time.December, 31, 0, 0, 0, 0, now.Location())
		total, err := s.transactions.SumBetween(ctx, userID, yearStart, yearEnd)
		if err != nil {
			return nil, err
		}
		series.Data = append(series.Data, total)
		series.Labels = append(series.Labels, fmt.Sprintf("%d", year))
	}
	return series, nil
}

// CategoryAnalytics returns the five biggest categories by total spend.
func (s *DashboardService) CategoryAnalytics(ctx context.Context, userID string) ([]domain.CategorySpend, error) {
	return s.transactions.CategoryTotals(ctx, userID, 5)
}

func (s *DashboardService) summary(ctx context.Context, userID string, from, to time.Time) (*PeriodSummary, error) {
	total, err := s.transactions.SumBetween(ctx, userID, from, to)
	if err != nil {
		return nil, err
	}
	return &PeriodSummary{Total: total, From: from, To: to}, nil
}

func dateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// startOfWeek returns the Monday of t's week.
func startOfWeek(t time.Time) time.Time {
	day := dateOf(t)
	offset := int(day.Weekday()) - int(time.Monday)
	if offset < 0 {
		offset += 7
	}
	return day.AddDate(0, 0, -offset)
}
