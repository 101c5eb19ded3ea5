package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/finance-tracker/internal/api/http/handlers"
	"github.com/spec-kit/finance-tracker/internal/auth"
	"github.com/spec-kit/finance-tracker/internal/session"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Categories     *handlers.CategoriesHandler
	Transactions   *handlers.TransactionsHandler
	Dashboard      *handlers.DashboardHandler
	Patients       *handlers.PatientsHandler
	Sessions       *session.Manager
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	authGroup := app.Group("/auth", cfg.Sessions.Middleware())
	authGroup.Post("/register", cfg.Auth.Register)
	authGroup.Post("/register/verify", cfg.Auth.VerifyRegistration)
	authGroup.Post("/register/resend", cfg.Auth.ResendRegistrationOTP)

	authGroup.Post("/login", cfg.Auth.Login)
	authGroup.Post("/login/verify", cfg.Auth.VerifyLogin)
	authGroup.Post("/login/resend", cfg.Auth.ResendLoginOTP)

	authGroup.Post("/password/forgot", cfg.Auth.ForgotPassword)
	authGroup.Post("/password/verify", cfg.Auth.VerifyPasswordResetOTP)
	authGroup.Post("/password/resend", cfg.Auth.ResendPasswordResetOTP)
	authGroup.Post("/password/reset", cfg.Auth.ResetPassword)

	authGroup.Post("/logout", cfg.Auth.Logout)

	protected := app.Group("", cfg.AuthMiddleware.Handle, auth.RequireVerified())

	categories := protected.Group("/categories")
	categories.Get("/", cfg.Categories.List)
	categories.Post("/", cfg.Categories.Create)
	categories.Get("/:id", cfg.Categories.Get)
	categories.Put("/:id", cfg.Categories.Update)
	categories.Delete("/:id", cfg.Categories.Delete)

	transactions := protected.Group("/transactions")
	transactions.Get("/", cfg.Transactions.List)
	transactions.Post("/", cfg.Transactions.Create)
	transactions.Get("/:id", cfg.Transactions.Get)
	transactions.Put("/:id", cfg.Transactions.Update)
	transactions.Delete("/:id", cfg.Transactions.Delete)

	dashboard := protected.Group("/dashboard")
	dashboard.Get("/summary/daily", cfg.Dashboard.Daily)
	dashboard.Get("/summary/weekly", cfg.Dashboard.Weekly)
	dashboard.Get("/summary/monthly", cfg.Dashboard.Monthly)
	dashboard.Get("/summary/yearly", cfg.Dashboard.Yearly)
	dashboard.Get("/chart/daily", cfg.Dashboard.ChartDaily)
	dashboard.Get("/chart/weekly", cfg.Dashboard.ChartWeekly)
	dashboard.Get("/chart/monthly", cfg.Dashboard.ChartMonthly)
	dashboard.Get("/chart/yearly", cfg.Dashboard.ChartYearly)
	dashboard.Get("/categories", cfg.Dashboard.CategoryAnalytics)

	patients := protected.Group("/patients")
	patients.Get("/", cfg.Patients.List)
	patients.Post("/", cfg.Patients.Create)
}
