package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/krili-app/krili/internal/core/domain"
)

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// RegisterHandler creates an account.
func RegisterHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req registerRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		if req.Role == "" {
			req.Role = string(domain.RoleStudent)
		}

		user, err := deps.Auth.Register(c.Context(), req.Name, req.Email, req.Password, domain.Role(req.Role))
		if err != nil {
			return serviceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(user)
	}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginHandler verifies credentials and issues a token.
func LoginHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req loginRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}

		user, token, err := deps.Auth.Login(c.Context(), req.Email, req.Password)
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(fiber.Map{"user": user, "token": token})
	}
}

// MeHandler returns the authenticated account.
func MeHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := deps.Auth.GetUser(c.Context(), userID(c))
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(user)
	}
}
