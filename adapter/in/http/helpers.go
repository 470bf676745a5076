// Package http contains the fiber request handlers.
package http

import (
	"errors"

	"drafly_server/pkg/apperr"
	"drafly_server/pkg/response"

	"github.com/gofiber/fiber/v2"
)

var ErrUnauthorized = errors.New("unauthorized")

// GetIdentity extracts the authenticated identity placed in locals by the
// session middleware.
func GetIdentity(c *fiber.Ctx) (string, error) {
	identity, ok := c.Locals("user_email").(string)
	if !ok || identity == "" {
		return "", ErrUnauthorized
	}
	return identity, nil
}

// handleError renders any error through the envelope, promoting unknown
// errors to an opaque internal error.
func handleError(c *fiber.Ctx, err error) error {
	return response.FromAppError(c, apperr.AsAppError(err))
}

// paramID parses a positive int64 path parameter.
func paramID(c *fiber.Ctx, name string) (int64, error) {
	id, err := c.ParamsInt(name)
	if err != nil || id <= 0 {
		return 0, apperr.BadRequest("invalid " + name)
	}
	return int64(id), nil
}
