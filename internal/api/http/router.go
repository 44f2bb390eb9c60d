package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"github.com/spec-kit/support-desk/internal/api/http/handlers"
	"github.com/spec-kit/support-desk/internal/auth"
	"github.com/spec-kit/support-desk/internal/observability"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Users          *handlers.UsersHandler
	Tickets        *handlers.TicketsHandler
	AuthMiddleware *auth.AuthMiddleware
	Metrics        *observability.Metrics
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	if cfg.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(cfg.Metrics.Handler()))
	}

	authGroup := app.Group("/auth")
	authGroup.Post("/login", cfg.Auth.Login)
	authGroup.Post("/register", cfg.Auth.Register)
	authGroup.Post("/password/change", cfg.AuthMiddleware.Handle, auth.RequireAnyRole(), cfg.Auth.ChangePassword)

	users := app.Group("/users", cfg.AuthMiddleware.Handle)
	users.Get("/", auth.RequireAction(auth.ActionListUsers), cfg.Users.ListUsers)
	users.Get("/soportes", auth.RequireAction(auth.ActionListSupportAgents), cfg.Users.ListSupportAgents)
	users.Get("/:id", auth.RequireAction(auth.ActionViewUser), cfg.Users.GetUser)
	users.Post("/", auth.RequireAction(auth.ActionCreateUser), cfg.Users.CreateUser)
	users.Put("/:id", auth.RequireAction(auth.ActionUpdateUser), cfg.Users.UpdateUser)
	users.Delete("/:id", auth.RequireAction(auth.ActionDeleteUser), cfg.Users.DeleteUser)

	// Rules that depend on the ticket are decided in the service, after the
	// existence check. Create has no ticket to look up and is gated here.
	tickets := app.Group("/tickets", cfg.AuthMiddleware.Handle, auth.RequireAnyRole())
	tickets.Get("/", cfg.Tickets.ListTickets)
	tickets.Post("/", auth.RequireAction(auth.ActionCreateTicket), cfg.Tickets.CreateTicket)
	tickets.Get("/:id", cfg.Tickets.GetTicket)
	tickets.Put("/:id/asignar", cfg.Tickets.AssignTicket)
	tickets.Put("/:id/estado", cfg.Tickets.ChangeStatus)
	tickets.Delete("/:id", cfg.Tickets.DeleteTicket)
}
