package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/expense-share/internal/api/http/handlers"
	"github.com/spec-kit/expense-share/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health   *handlers.HealthHandler
	Auth     *handlers.AuthHandler
	Groups   *handlers.GroupsHandler
	Expenses *handlers.ExpensesHandler
	Resolver *auth.Resolver
}

// RegisterRoutes wires HTTP routes. The identity resolver runs on every
// /api route, including login; the authorization gate only guards the
// protected subtree.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	api := app.Group("/api", cfg.Resolver.Handle)

	authGroup := api.Group("/auth")
	authGroup.Post("/login", cfg.Auth.Login)
	authGroup.Post("/register", cfg.Auth.Register)

	protected := api.Group("", auth.RequireAuthenticated())

	groups := protected.Group("/groups")
	groups.Post("", cfg.Groups.Create)
	groups.Get("", cfg.Groups.List)
	groups.Get("/:id", cfg.Groups.Get)
	groups.Put("/:id", cfg.Groups.Update)
	groups.Delete("/:id", cfg.Groups.Delete)

	expenses := protected.Group("/expenses")
	expenses.Post("", cfg.Expenses.Create)
	expenses.Get("", cfg.Expenses.List)
	expenses.Get("/group/:groupId", cfg.Expenses.ListByGroup)
	expenses.Get("/:id", cfg.Expenses.Get)
	expenses.Put("/:id", cfg.Expenses.Update)
	expenses.Delete("/:id", cfg.Expenses.Delete)
}
