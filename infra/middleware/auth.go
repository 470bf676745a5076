// Package middleware provides the fiber middleware stack.
package middleware

import (
	"strings"

	"drafly_server/pkg/logger"
	"drafly_server/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// SessionValidator checks a session token and returns the identity it was
// issued for.
type SessionValidator interface {
	Validate(tokenString string) (string, error)
}

// SessionAuth validates the bearer session token and places the identity
// in locals for the handlers.
func SessionAuth(sessions SessionValidator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if c.Method() == fiber.MethodOptions {
			return c.Next()
		}

		var tokenString string
		authHeader := c.Get("Authorization")
		if authHeader != "" {
			parts := strings.Split(authHeader, " ")
			if len(parts) == 2 && parts[0] == "Bearer" {
				tokenString = parts[1]
			}
		}
		if tokenString == "" {
			tokenString = c.Query("token")
		}
		if tokenString == "" {
			return response.Error(c, fiber.StatusUnauthorized, "UNAUTHORIZED", "missing authorization")
		}

		identity, err := sessions.Validate(tokenString)
		if err != nil {
			logger.WithError(err).Warn("session validation failed")
			return response.Error(c, fiber.StatusUnauthorized, "INVALID_TOKEN", "invalid token")
		}

		c.Locals("user_email", identity)
		return c.Next()
	}
}
