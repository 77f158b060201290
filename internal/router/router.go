package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/techversity/crm-api/internal/config"
	"github.com/techversity/crm-api/internal/handler"
	"github.com/techversity/crm-api/internal/middleware"
	"github.com/techversity/crm-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	EnquiryHandler   *handler.EnquiryHandler
	CourseHandler    *handler.CourseHandler
	UserHandler      *handler.UserHandler
	DashboardHandler *handler.DashboardHandler
	JWTMiddleware    fiber.Handler
}

// Register wires the HTTP routes into the fiber application. Authentication
// runs per route rather than per group: the /api prefix mixes public auth
// endpoints with protected staff endpoints.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	api := app.Group("/api", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))
	app.Get("/metrics", observability.MetricsHandler())

	auth := deps.JWTMiddleware
	if auth == nil {
		auth = func(c *fiber.Ctx) error { return c.Next() }
	}
	adminOnly := middleware.RequireRole("admin")

	if deps.UserHandler != nil {
		users := api.Group("/user")
		deps.UserHandler.RegisterPublic(users)
		deps.UserHandler.RegisterProtected(users, auth)
	}

	if deps.CourseHandler != nil {
		deps.CourseHandler.Register(api.Group("/course"), auth)
	}

	if deps.EnquiryHandler != nil {
		deps.EnquiryHandler.Register(api, auth, adminOnly)
	}

	if deps.DashboardHandler != nil {
		dashboard := api.Group("/dashboard", auth)
		deps.DashboardHandler.Register(dashboard)
	}
}
