package router

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/edu-admin-api/internal/config"
	"github.com/noah-isme/edu-admin-api/internal/handler"
	"github.com/noah-isme/edu-admin-api/internal/middleware"
	"github.com/noah-isme/edu-admin-api/internal/models"
	"github.com/noah-isme/edu-admin-api/internal/observability"
	"github.com/noah-isme/edu-admin-api/internal/service"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	AuthHandler        *handler.AuthHandler
	InstitutionHandler *handler.InstitutionHandler
	ProfileHandler     *handler.ProfileHandler
	CustomRoleHandler  *handler.CustomRoleHandler
	TeacherHandler     *handler.TeacherHandler
	StudentHandler     *handler.StudentHandler
	ClassHandler       *handler.ClassHandler
	AssignmentHandler  *handler.AssignmentHandler
	AuditHandler       *handler.AuditHandler
	DashboardHandler   *handler.DashboardHandler
	Sessions           service.AuthService
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	app.Get("/metrics", observability.MetricsHandler())

	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))

	auth := api.Group("/auth")
	deps.AuthHandler.RegisterPublic(auth.Group("", middleware.RateLimit("login", 10, time.Minute)))

	// Everything past this point needs a valid token and a resolved actor.
	protected := api.Group("", middleware.JWTProtected(cfg.JWTSecret), middleware.ResolveActor(deps.Sessions))

	deps.AuthHandler.RegisterProtected(protected.Group("/auth"))
	deps.InstitutionHandler.Register(protected.Group("/institutions"))
	deps.ProfileHandler.Register(protected.Group("/profiles"))
	deps.TeacherHandler.Register(protected.Group("/teachers"))
	deps.StudentHandler.Register(protected.Group("/students"))
	deps.ClassHandler.Register(protected.Group("/classes"))
	deps.AssignmentHandler.Register(protected.Group("/assignments"))
	deps.DashboardHandler.Register(protected.Group("/dashboard"))

	// Coarse role gates; fine-grained decisions stay in the service layer.
	deps.CustomRoleHandler.Register(protected.Group("/custom-roles",
		middleware.RequireRole(models.RoleManagement)))
	deps.AuditHandler.Register(protected.Group("/audit-logs",
		middleware.RequireRole(models.RoleManagement, models.RoleInstitutionAdmin, models.RoleCustom)))
}
