// Package in defines inbound ports consumed by the HTTP adapters.
package in

import (
	"context"

	"drafly_server/core/domain"
)

// AuthResult is what a completed authorization callback yields.
type AuthResult struct {
	Identity     string `json:"email"`
	SessionToken string `json:"jwt"`
}

// TokenService covers the OAuth token lifecycle and session issuance.
type TokenService interface {
	// BuildAuthorizationURL returns the provider consent URL carrying state
	// unmodified; the caller validates state on the way back.
	BuildAuthorizationURL(state string) string
	// ExchangeCode performs the authorization_code grant.
	ExchangeCode(ctx context.Context, code string) (*domain.TokenSet, error)
	// ExtractIdentity pulls the verified email claim out of an identity token.
	ExtractIdentity(idToken string) (string, error)
	// PersistCredential upserts the refresh credential; an empty refreshToken
	// leaves any existing credential untouched.
	PersistCredential(ctx context.Context, identity, refreshToken string) error
	// RefreshAccessToken derives a fresh ephemeral access token from the
	// stored credential. Results are never cached.
	RefreshAccessToken(ctx context.Context, identity string) (string, error)
	// HandleCallback runs the whole callback flow: exchange, identity
	// extraction, credential persistence, session issuance.
	HandleCallback(ctx context.Context, code string) (*AuthResult, error)
}
