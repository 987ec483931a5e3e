package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sojus/helpdesk/internal/api/http/handlers"
	"github.com/sojus/helpdesk/internal/auth"
	"github.com/sojus/helpdesk/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Tickets        *handlers.TicketsHandler
	Audit          *handlers.AuditHandler
	AuthMiddleware *auth.AuthMiddleware
	// MetricsGatherer enables the metrics endpoint when set.
	MetricsGatherer prometheus.Gatherer
	MetricsPath     string
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	if cfg.MetricsGatherer != nil {
		path := cfg.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		app.Get(path, adaptor.HTTPHandler(promhttp.HandlerFor(cfg.MetricsGatherer, promhttp.HandlerOpts{})))
	}

	api := app.Group("/api", cfg.AuthMiddleware.Handle, auth.RequireAnyRole())

	tickets := api.Group("/tickets")
	tickets.Get("/", cfg.Tickets.ListTickets)
	tickets.Get("/my", cfg.Tickets.ListMyTickets)
	tickets.Get("/:id", cfg.Tickets.GetTicket)
	tickets.Post("/", auth.RequireRole(domain.RoleAdministrator, domain.RoleOperator), cfg.Tickets.CreateTicket)
	tickets.Patch("/:id/status", auth.RequireRole(domain.RoleAdministrator, domain.RoleTechnician), cfg.Tickets.ChangeStatus)
	tickets.Delete("/:id", auth.RequireRole(domain.RoleAdministrator), cfg.Tickets.DeleteTicket)

	audit := api.Group("/audit", auth.RequireRole(domain.RoleAdministrator))
	audit.Get("/", cfg.Audit.Recent)
	audit.Get("/:entity/:id", cfg.Audit.ForEntity)
}
