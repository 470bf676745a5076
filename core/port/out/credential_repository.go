// Package out defines outbound ports implemented by adapters.
package out

import "context"

// CredentialRepository persists one refresh credential per identity.
type CredentialRepository interface {
	// Upsert stores or replaces the refresh credential for identity.
	Upsert(ctx context.Context, identity, refreshToken string) error
	// GetRefreshToken returns the stored credential, or ErrNotFound from the
	// adapter when the identity has never authorized.
	GetRefreshToken(ctx context.Context, identity string) (string, error)
}
