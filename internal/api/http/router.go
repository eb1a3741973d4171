package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/securohelp/case-service/internal/api/http/handlers"
	"github.com/securohelp/case-service/internal/auth"
	"github.com/securohelp/case-service/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Cases          *handlers.CasesHandler
	CaseStatuses   *handlers.CaseStatusesHandler
	Clients        *handlers.ClientsHandler
	Reference      *handlers.ReferenceHandler
	Dashboard      *handlers.DashboardHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/health/counters", cfg.Health.Counters)

	api := app.Group("/api", cfg.AuthMiddleware.Handle)

	api.Get("/case-statuses", cfg.CaseStatuses.ListStatuses)
	api.Get("/case-statuses/:code", cfg.CaseStatuses.GetStatus)

	cases := api.Group("/cases")
	cases.Post("/", cfg.Cases.CreateCase)
	cases.Get("/", cfg.Cases.ListCases)
	cases.Get("/:id", cfg.Cases.GetCase)
	cases.Put("/:id", cfg.Cases.UpdateCase)
	cases.Delete("/:id", cfg.Cases.DeleteCase)
	cases.Get("/:id/history", cfg.Cases.ListHistory)

	clients := api.Group("/clients")
	clients.Post("/", cfg.Clients.CreateClient)
	clients.Get("/", cfg.Clients.ListClients)
	clients.Get("/:id", cfg.Clients.GetClient)
	clients.Put("/:id", cfg.Clients.UpdateClient)
	clients.Delete("/:id", cfg.Clients.DeleteClient)

	api.Get("/users", cfg.Reference.ListUsers)
	api.Get("/insurance-companies", cfg.Reference.ListInsuranceCompanies)
	api.Post("/insurance-companies", auth.RequireRole(domain.UserRoleAdmin), cfg.Reference.CreateInsuranceCompany)

	dashboard := api.Group("/dashboard")
	dashboard.Get("/stats", cfg.Dashboard.Stats)
	dashboard.Get("/recent-cases", cfg.Dashboard.RecentCases)
}
