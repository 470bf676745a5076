package http

import (
	"context"
	"time"

	"drafly_server/core/port/in"
	"drafly_server/pkg/apperr"
	"drafly_server/pkg/logger"
	"drafly_server/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// OAuthStateStore holds one-shot CSRF states across the authorization
// round trip. A nil store disables state validation.
type OAuthStateStore interface {
	StoreState(ctx context.Context, state string, ttl time.Duration) error
	ValidateState(ctx context.Context, state string) error
}

// oauthStateTTL bounds how long a consent round trip may take.
const oauthStateTTL = 10 * time.Minute

type AuthHandler struct {
	tokens in.TokenService
	states OAuthStateStore
}

func NewAuthHandler(tokens in.TokenService, states OAuthStateStore) *AuthHandler {
	return &AuthHandler{
		tokens: tokens,
		states: states,
	}
}

func (h *AuthHandler) Register(app fiber.Router) {
	auth := app.Group("/auth/google")
	auth.Get("/start", h.Start)
	auth.Get("/callback", h.Callback)
}

// Start mints a state nonce and returns the provider consent URL.
func (h *AuthHandler) Start(c *fiber.Ctx) error {
	state := uuid.NewString()

	if h.states != nil {
		if err := h.states.StoreState(c.Context(), state, oauthStateTTL); err != nil {
			logger.WithError(err).Error("failed to store oauth state")
			return handleError(c, apperr.InternalWithError(err))
		}
	}

	return response.OK(c, fiber.Map{
		"auth_url": h.tokens.BuildAuthorizationURL(state),
		"state":    state,
	})
}

// Callback completes the authorization round trip: validates the state,
// exchanges the code, and returns the identity with a session token.
func (h *AuthHandler) Callback(c *fiber.Ctx) error {
	if errParam := c.Query("error"); errParam != "" {
		logger.WithField("provider_error", errParam).Warn("authorization denied by provider")
		return handleError(c, apperr.BadRequest("authorization denied: "+errParam))
	}

	code := c.Query("code")
	if code == "" {
		return handleError(c, apperr.BadRequest("missing code"))
	}

	if h.states != nil {
		state := c.Query("state")
		if state == "" {
			return handleError(c, apperr.BadRequest("missing state"))
		}
		if err := h.states.ValidateState(c.Context(), state); err != nil {
			logger.WithError(err).Warn("oauth state validation failed")
			return handleError(c, apperr.Unauthorized("invalid state"))
		}
	}

	result, err := h.tokens.HandleCallback(c.Context(), code)
	if err != nil {
		logger.WithError(err).Error("authorization callback failed")
		return handleError(c, err)
	}

	logger.WithField("identity", result.Identity).Info("authorization completed")
	return response.OK(c, result)
}
