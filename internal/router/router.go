package router

import (
	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/swipehire/interview-api/internal/config"
	"github.com/swipehire/interview-api/internal/handler"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	InterviewHandler *handler.InterviewHandler
	ReviewerHandler  *handler.ReviewerHandler
	JWTMiddleware    fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	// Candidate-facing session endpoints are unauthenticated.
	if deps.InterviewHandler != nil {
		interview := api.Group("/interview")
		deps.InterviewHandler.Register(interview)
	}

	// The reviewer dashboard sits behind JWT, or a no-op when none is given.
	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}

	if deps.ReviewerHandler != nil {
		reviewer := api.Group("/reviewer", jwtMiddleware)
		deps.ReviewerHandler.Register(reviewer)
	}
}
