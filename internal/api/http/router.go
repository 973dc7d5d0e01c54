package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/campus-market/internal/api/http/handlers"
	"github.com/spec-kit/campus-market/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health            *handlers.HealthHandler
	Accounts          *handlers.AccountsHandler
	Listings          *handlers.ListingsHandler
	Session           *handlers.SessionHandler
	SessionMiddleware *auth.SessionMiddleware
}

// RegisterRoutes wires HTTP routes. Mutations on accounts and posts carry
// no ownership enforcement here; the identifier in the path is trusted the
// way the reference system trusts its callers.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	app.Post("/account", cfg.Accounts.Register)
	app.Post("/account/login", cfg.Accounts.Login)
	app.Post("/account/verify", cfg.Accounts.Verify)
	app.Post("/account/logout", cfg.Accounts.Logout)
	app.Patch("/account/:id", cfg.Accounts.Update)
	app.Delete("/account/:id", cfg.Accounts.Delete)

	app.Get("/posts", cfg.Listings.List)
	app.Post("/posts", cfg.Listings.Create)
	app.Patch("/posts/:id", cfg.Listings.Update)
	app.Delete("/posts/:id", cfg.Listings.Delete)

	app.Get("/session", cfg.SessionMiddleware.Handle, cfg.Session.Get)
}
