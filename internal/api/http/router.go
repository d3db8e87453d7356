package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/lifebridge/internal/api/http/handlers"
	"github.com/spec-kit/lifebridge/internal/auth"
	"github.com/spec-kit/lifebridge/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Profile        *handlers.ProfileHandler
	Requests       *handlers.RequestsHandler
	Pickups        *handlers.PickupsHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	api := app.Group("/api")

	authGroup := api.Group("/auth")
	authGroup.Post("/register", cfg.Auth.Register)
	authGroup.Post("/login", cfg.Auth.Login)
	authGroup.Get("/me", cfg.AuthMiddleware.Handle, cfg.Auth.Me)

	profile := api.Group("/profile", cfg.AuthMiddleware.Handle)
	profile.Get("/", cfg.Profile.Get)
	profile.Put("/", cfg.Profile.Update)
	profile.Get("/requests", cfg.Profile.MyRequests)

	requests := api.Group("/requests", cfg.AuthMiddleware.Handle)
	requests.Post("/", auth.RequireRole(domain.RoleRecipient), cfg.Requests.Create)
	requests.Get("/", cfg.Requests.List)
	requests.Get("/:id", cfg.Requests.Get)
	requests.Post("/:id/donate", auth.RequireRole(domain.RoleDonor), cfg.Requests.Donate)
	requests.Post("/:id/cancel", cfg.Requests.Cancel)
	requests.Post("/:id/fulfill", cfg.Requests.Fulfill)
	requests.Get("/:id/notifications", cfg.Requests.Notifications)

	pickups := api.Group("/pickups", cfg.AuthMiddleware.Handle)
	pickups.Post("/", auth.RequireRole(domain.RoleDonor), cfg.Pickups.Schedule)
	pickups.Get("/user", cfg.Pickups.History)
}
