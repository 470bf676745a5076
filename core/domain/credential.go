// Package domain holds the core entities of the assistant.
package domain

import "time"

// Credential is the long-lived refresh credential stored per identity.
// The access token derived from it is ephemeral and never persisted.
type Credential struct {
	Identity     string    `json:"identity"`
	RefreshToken string    `json:"-"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// TokenSet is the typed result of an authorization-code exchange.
// RefreshToken is empty when the provider omits it on consent-less re-logins.
type TokenSet struct {
	AccessToken  string
	RefreshToken string
	IDToken      string
	ExpiresIn    int64
}
