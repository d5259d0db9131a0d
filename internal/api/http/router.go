package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/complaint-service/internal/api/http/handlers"
	"github.com/spec-kit/complaint-service/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Complaints     *handlers.ComplaintsHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/metrics", cfg.Health.Metrics)

	authGroup := app.Group("/auth")
	authGroup.Post("/register", cfg.Auth.Register)
	authGroup.Post("/login", cfg.Auth.Login)
	authGroup.Post("/logout", cfg.Auth.Logout)

	complaints := app.Group("/complaints", cfg.AuthMiddleware.Handle)
	complaints.Get("/", cfg.Complaints.List)
	complaints.Post("/", cfg.Complaints.Create)
	complaints.Get("/stats", cfg.Complaints.Stats)
	complaints.Get("/:id", cfg.Complaints.Get)
	complaints.Put("/:id", cfg.Complaints.UpdateStatus)
	complaints.Patch("/:id", cfg.Complaints.UpdateNotes)
	complaints.Delete("/:id", cfg.Complaints.Delete)
	complaints.Get("/:id/history", cfg.Complaints.History)
}
