package handlers

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/finance-tracker/internal/auth"
	"github.com/spec-kit/finance-tracker/internal/service"
	apperrors "github.com/spec-kit/finance-tracker/pkg/util/errorutil"
)

// DashboardHandler exposes spending aggregates.
type DashboardHandler struct {
	dashboard *service.DashboardService
}

// NewDashboardHandler constructs handler.
func NewDashboardHandler(dashboard *service.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboard: dashboard}
}

const dateLayout = "2006-01-02"

// Daily handles GET /dashboard/summary/daily.
func (h *DashboardHandler) Daily(c *fiber.Ctx) error {
	principal, _ := auth.PrincipalFromContext(c)

	summary, err := h.dashboard.Daily(c.UserContext(), principal.User.ID)
	if err != nil {
		return apperrors.MapError(err)
	}
	return c.JSON(fiber.Map{
		"total": summary.Total,
		"date":  summary.From.Format(dateLayout),
	})
}

// Weekly handles GET /dashboard/summary/weekly.
func (h *DashboardHandler) Weekly(c *fiber.Ctx) error {
	principal, _ := auth.PrincipalFromContext(c)

	summary, err := h.dashboard.Weekly(c.UserContext(), principal.User.ID)
	if err != nil {
		return apperrors.MapError(err)
	}
	return c.JSON(fiber.Map{
		"total":      summary.Total,
		"start_date": summary.From.Format(dateLayout),
		"end_date":   summary.To.Format(dateLayout),
	})
}

// Monthly handles GET /dashboard/summary/monthly.
func (h *DashboardHandler) Monthly(c *fiber.Ctx) error {
	principal, _ := auth.PrincipalFromContext(c)

	summary, err := h.dashboard.Monthly(c.UserContext(), principal.User.ID)
	if err != nil {
		return apperrors.MapError(err)
	}
	return c.JSON(fiber.Map{
		"total":      summary.Total,
		"month":      summary.From.Format("2006-01"),
		"start_date": summary.From.Format(dateLayout),
		"end_date":   summary.To.Format(dateLayout),
	})
}

// Yearly handles GET /dashboard/summary/yearly.
func (h *DashboardHandler) Yearly(c *fiber.Ctx) error {
	principal, _ := auth.PrincipalFromContext(c)

	summary, err := h.dashboard.Yearly(c.UserContext(), principal.User.ID)
	if err != nil {
		return apperrors.MapError(err)
	}
	return c.JSON(fiber.Map{
		"total":      summary.Total,
		"year":       summary.From.Format("2006"),
		"start_date": summary.From.Format(dateLayout),
		"end_date":   summary.To.Format(dateLayout),
	})
}

// ChartDaily handles GET /dashboard/chart/daily.
func (h *DashboardHandler) ChartDaily(c *fiber.Ctx) error {
	return h.chart(c, h.dashboard.ChartDaily)
}

// ChartWeekly handles GET /dashboard/chart/weekly.
func (h *DashboardHandler) ChartWeekly(c *fiber.Ctx) error {
	return h.chart(c, h.dashboard.ChartWeekly)
}

// ChartMonthly handles GET /dashboard/chart/monthly.
func (h *DashboardHandler) ChartMonthly(c *fiber.Ctx) error {
	return h.chart(c, h.dashboard.ChartMonthly)
}

// ChartYearly handles GET /dashboard/chart/yearly.
func (h *DashboardHandler) ChartYearly(c *fiber.Ctx) error {
	return h.chart(c, h.dashboard.ChartYearly)
}

// CategoryAnalytics handles GET /dashboard/categories.
func (h *DashboardHandler) CategoryAnalytics(c *fiber.Ctx) error {
	principal, _ := auth.PrincipalFromContext(c)

	totals, err := h.dashboard.CategoryAnalytics(c.UserContext(), principal.User.ID)
	if err != nil {
		return apperrors.MapError(err)
	}

	categories := make([]fiber.Map, 0, len(totals))
	for _, spend := range totals {
		categories = append(categories, fiber.Map{
			"name_category":     spend.CategoryName,
			"total_amount":      spend.TotalAmount,
			"transaction_count": spend.Count,
		})
	}
	return c.JSON(fiber.Map{"categories": categories})
}

func (h *DashboardHandler) chart(c *fiber.Ctx, fn func(ctx context.Context, userID string) (*service.ChartSeries, error)) error {
	principal, _ := auth.PrincipalFromContext(c)

	series, err := fn(c.UserContext(), principal.User.ID)
	if err != nil {
		return apperrors.MapError(err)
	}
	return c.JSON(series)
}
