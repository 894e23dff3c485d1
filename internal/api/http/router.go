package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/sweetshop/internal/api/http/handlers"
	"github.com/spec-kit/sweetshop/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Users          *handlers.UsersHandler
	Sweets         *handlers.SweetsHandler
	WS             *handlers.WSHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/metrics", cfg.Health.Metrics)

	if cfg.WS != nil {
		app.Get("/ws", cfg.WS.Upgrade, cfg.WS.Listen())
	}

	api := app.Group("/api")
	authenticated := []fiber.Handler{cfg.AuthMiddleware.Handle, auth.RequireAuthenticated()}
	admin := []fiber.Handler{cfg.AuthMiddleware.Handle, auth.RequireAdmin()}

	authGroup := api.Group("/auth")
	authGroup.Post("/register", cfg.Users.Register)
	authGroup.Post("/login", cfg.Users.Login)
	authGroup.Post("/logout", append(authenticated, cfg.Users.Logout)...)
	authGroup.Get("/me", append(authenticated, cfg.Users.Me)...)

	users := api.Group("/users")
	users.Get("/me", append(authenticated, cfg.Users.Me)...)
	users.Post("", append(admin, cfg.Users.CreateUser)...)

	sweets := api.Group("/sweets")
	sweets.Get("", append(authenticated, cfg.Sweets.List)...)
	sweets.Get("/search", append(authenticated, cfg.Sweets.Search)...)
	sweets.Get("/:id", append(authenticated, cfg.Sweets.Get)...)
	sweets.Post("/:id/purchase", append(authenticated, cfg.Sweets.Purchase)...)

	sweets.Post("", append(admin, cfg.Sweets.Create)...)
	sweets.Put("/:id", append(admin, cfg.Sweets.Update)...)
	sweets.Patch("/:id", append(admin, cfg.Sweets.Update)...)
	sweets.Delete("/:id", append(admin, cfg.Sweets.Delete)...)
	sweets.Post("/:id/restock", append(admin, cfg.Sweets.Restock)...)
}
