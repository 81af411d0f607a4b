package http

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
)

var startedAt = time.Now()

// HealthHandler returns a basic liveness check.
func HealthHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":         "healthy",
			"uptime_seconds": int(time.Since(startedAt).Seconds()),
		})
	}
}

// ReadyHandler reports whether the API can actually serve: database reachable,
// broker connected, cache answering. Cache and broker degrade the response but
// the database is required.
func ReadyHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.Context(), 3*time.Second)
		defer cancel()

		checks := make(map[string]string)
		ready := true

		switch {
		case deps.DB == nil:
			checks["database"] = "not configured"
			ready = false
		default:
			if err := deps.DB.Pool.Ping(ctx); err != nil {
				checks["database"] = "error: " + err.Error()
				ready = false
			} else {
				checks["database"] = "ok"
			}
		}

		switch {
		case deps.NATS == nil:
			checks["nats"] = "not configured"
		case deps.NATS.IsConnected():
			checks["nats"] = "ok"
		default:
			checks["nats"] = "disconnected"
			ready = false
		}

		if deps.Cache != nil {
			_, err := deps.Cache.Get(ctx, "__ready__")
			// a missing key is the expected outcome here
			if err != nil && err.Error() != "valkey nil message" {
				checks["cache"] = "error: " + err.Error()
				ready = false
			} else {
				checks["cache"] = "ok"
			}
		} else {
			checks["cache"] = "not configured"
		}

		code := fiber.StatusOK
		status := "ready"
		if !ready {
			code = fiber.StatusServiceUnavailable
			status = "not ready"
		}

		return c.Status(code).JSON(fiber.Map{
			"status": status,
			"checks": checks,
		})
	}
}
