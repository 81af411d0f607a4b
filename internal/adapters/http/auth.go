package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/krili-app/krili/internal/core/domain"
)

// RequireAuth validates the bearer token and stores the subject and role in
// locals for downstream handlers.
func RequireAuth(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get(fiber.HeaderAuthorization)
		if header == "" {
			return errUnauthorized(c, "missing Authorization header")
		}
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok {
			return errUnauthorized(c, "Authorization header must be a bearer token")
		}

		claims, err := deps.Auth.VerifyToken(token)
		if err != nil {
			return errUnauthorized(c, "invalid or expired token")
		}

		c.Locals("user_id", claims.Subject)
		c.Locals("role", claims.Role)
		return c.Next()
	}
}

// RequireRole restricts a route to the given roles. Must run after RequireAuth.
func RequireRole(roles ...domain.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		role, _ := c.Locals("role").(string)
		for _, r := range roles {
			if role == string(r) {
				return c.Next()
			}
		}
		return errForbidden(c, "insufficient role")
	}
}

// userID returns the authenticated subject, set by RequireAuth.
func userID(c *fiber.Ctx) string {
	id, _ := c.Locals("user_id").(string)
	return id
}

// isAdmin reports whether the authenticated user is an admin.
func isAdmin(c *fiber.Ctx) bool {
	role, _ := c.Locals("role").(string)
	return role == string(domain.RoleAdmin)
}
