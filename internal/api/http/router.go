package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/solicitud-service/internal/api/http/handlers"
	"github.com/spec-kit/solicitud-service/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health      *handlers.HealthHandler
	Auth        *handlers.AuthHandler
	Profile     *handlers.ProfileHandler
	Solicitudes *handlers.SolicitudesHandler
	SessionGate *auth.SessionGate
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/api/health", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	api := app.Group("/api")

	authGroup := api.Group("/auth")
	authGroup.Post("/register", cfg.Auth.Register)
	authGroup.Post("/login", cfg.Auth.Login)

	protected := api.Group("", cfg.SessionGate.Handle)
	protected.Get("/profile", cfg.Profile.Get)
	protected.Put("/profile", cfg.Profile.Update)

	solicitudes := protected.Group("/solicitudes")
	solicitudes.Post("", cfg.Solicitudes.Create)
	solicitudes.Get("/pendientes", cfg.Solicitudes.ListPending)
	solicitudes.Post("/:id/aceptar", cfg.Solicitudes.Claim)
	solicitudes.Get("/aceptadas", cfg.Solicitudes.ListClaimed)
}
