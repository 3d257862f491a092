package handler

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/swipehire/interview-api/internal/config"
	"github.com/swipehire/interview-api/internal/utils"
)

var startedAt = time.Now().UTC()

// HealthResponse is the payload returned by the health endpoint.
type HealthResponse struct {
	Status      string    `json:"status"`
	Timestamp   time.Time `json:"timestamp"`
	Uptime      string    `json:"uptime"`
	Service     string    `json:"service"`
	Environment string    `json:"environment"`
}

// HealthCheck reports liveness. Session state is either in memory or behind
// the record store, so there is no deeper readiness probe to run here.
func HealthCheck(cfg config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		payload := HealthResponse{
			Status:      "ok",
			Timestamp:   time.Now().UTC(),
			Uptime:      time.Since(startedAt).Round(time.Second).String(),
			Service:     cfg.AppName,
			Environment: cfg.AppEnv,
		}

		return utils.SendSuccess(c, "service healthy", payload)
	}
}
