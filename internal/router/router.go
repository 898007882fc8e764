package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/essay-auditor-api/internal/config"
	"github.com/noah-isme/essay-auditor-api/internal/handler"
	"github.com/noah-isme/essay-auditor-api/internal/middleware"
	"github.com/noah-isme/essay-auditor-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	AuthHandler      *handler.AuthHandler
	AuditHandler     *handler.AuditHandler
	DashboardHandler *handler.DashboardHandler
	HealthProbes     map[string]handler.HealthProbe
	// Revocations lets the JWT middlewares reject signed-out tokens. Optional.
	Revocations middleware.RevocationChecker
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	app.Get("/metrics", observability.MetricsHandler())

	// Common v1 group for health & headers
	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg, deps.HealthProbes))

	jwtProtected := middleware.JWTProtected(cfg.JWTSecret, deps.Revocations)
	jwtOptional := middleware.JWTOptional(cfg.JWTSecret, deps.Revocations)

	if deps.AuthHandler != nil {
		deps.AuthHandler.Register(app.Group("/api/v2/auth"), jwtProtected)
	}

	// The audit service performs its own authentication check, so the
	// route binds the user when possible and never rejects up front.
	if deps.AuditHandler != nil {
		auditorGroup := app.Group("/api/v2/auditor")
		deps.AuditHandler.Register(auditorGroup,
			jwtOptional,
			middleware.RateLimit("audit", cfg.AuditRateLimit, cfg.AuditRateWindow),
		)
	}

	if deps.DashboardHandler != nil {
		deps.DashboardHandler.Register(app.Group("/api/v2"), jwtProtected)
	}
}
