package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

// CachingMiddleware sets Cache-Control headers on GET responses based on endpoint.
// Adds sensible defaults if not already set by the handler.
func CachingMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		err := c.Next()

		// Only set on GET requests
		if c.Method() != "GET" {
			return err
		}

		// Don't override if already set
		if existing := c.Get("Cache-Control"); existing != "" {
			return err
		}

		path := c.Path()
		var ttl string

		switch {
		case path == "/v1/health" || path == "/v1/ready":
			ttl = "public, max-age=10" // Very short for system checks

		case strings.HasPrefix(path, "/v1/universities"):
			ttl = "public, max-age=3600" // 1 hour, the catalog is nearly static

		case path == "/metrics":
			ttl = "no-cache" // Metrics are real-time

		case path == "/graphql":
			ttl = "private, max-age=0" // GraphQL varies wildly

		case strings.HasPrefix(path, "/v1/listings/nearby"):
			ttl = "public, max-age=60" // 1 min for location queries

		case strings.HasPrefix(path, "/v1/listings"):
			ttl = "public, max-age=300" // 5 min for search results

		case strings.HasPrefix(path, "/v1/reservations"),
			strings.HasPrefix(path, "/v1/notifications"),
			strings.HasPrefix(path, "/v1/admin"),
			strings.HasPrefix(path, "/v1/auth"):
			ttl = "private, no-store" // Per-user data must never be shared

		case strings.HasPrefix(path, "/v1/"):
			ttl = "public, max-age=300"
		}

		if ttl != "" {
			c.Set("Cache-Control", ttl)
		}

		return err
	}
}
