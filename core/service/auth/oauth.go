// Package auth implements the OAuth token lifecycle and session issuance.
package auth

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"drafly_server/config"
	"drafly_server/core/domain"
	"drafly_server/core/port/in"
	"drafly_server/core/port/out"
	"drafly_server/pkg/apperr"
	"drafly_server/pkg/logger"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// googleScopes covers identity plus mailbox read/send/modify.
var googleScopes = []string{
	"openid",
	"email",
	"profile",
	"https://www.googleapis.com/auth/gmail.readonly",
	"https://www.googleapis.com/auth/gmail.send",
	"https://www.googleapis.com/auth/gmail.modify",
}

// TokenService owns the authorization-code and refresh-token grants.
// Access tokens are re-derived on every call and never cached; the only
// persisted artifact is the refresh credential.
type TokenService struct {
	creds   out.CredentialRepository
	config  *oauth2.Config
	session *SessionIssuer
}

// NewTokenService builds the service from process configuration. The
// endpoint URLs default to Google's and are overridable for tests.
func NewTokenService(cfg *config.Config, creds out.CredentialRepository, session *SessionIssuer) *TokenService {
	endpoint := google.Endpoint
	if cfg.GoogleAuthURL != "" {
		endpoint.AuthURL = cfg.GoogleAuthURL
	}
	if cfg.GoogleTokenURL != "" {
		endpoint.TokenURL = cfg.GoogleTokenURL
	}

	return &TokenService{
		creds: creds,
		config: &oauth2.Config{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			RedirectURL:  cfg.GoogleRedirectURL,
			Scopes:       googleScopes,
			Endpoint:     endpoint,
		},
		session: session,
	}
}

// OAuthConfig exposes the underlying oauth2 config for adapters that build
// their own token sources.
func (s *TokenService) OAuthConfig() *oauth2.Config {
	return s.config
}

// BuildAuthorizationURL returns the consent URL. access_type=offline and
// prompt=consent force the provider to issue a refresh token; state rides
// along unmodified for the caller to validate on the way back.
func (s *TokenService) BuildAuthorizationURL(state string) string {
	return s.config.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce)
}

// ExchangeCode performs the authorization_code grant. The provider's raw
// error body is preserved inside the returned error for diagnosis.
func (s *TokenService) ExchangeCode(ctx context.Context, code string) (*domain.TokenSet, error) {
	token, err := s.config.Exchange(ctx, code)
	if err != nil {
		return nil, apperr.ExchangeFailed(providerBody(err))
	}

	idToken, _ := token.Extra("id_token").(string)
	if idToken == "" {
		return nil, apperr.MissingIdentityToken()
	}

	set := &domain.TokenSet{
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		IDToken:      idToken,
	}
	if !token.Expiry.IsZero() {
		set.ExpiresIn = int64(time.Until(token.Expiry).Seconds())
	}
	return set, nil
}

// ExtractIdentity decodes the identity token's claim segment and returns the
// email claim. Both padded and unpadded base64url payloads are accepted;
// issuers disagree on padding.
func (s *TokenService) ExtractIdentity(idToken string) (string, error) {
	parts := strings.Split(idToken, ".")
	if len(parts) < 2 {
		return "", apperr.InvalidToken("identity token is not a JWT")
	}

	payload, err := decodeSegment(parts[1])
	if err != nil {
		return "", apperr.InvalidToken(fmt.Sprintf("identity token payload: %v", err))
	}

	var claims struct {
		Email string `json:"email"`
	}
	if err := json.Unmarshal(payload, &claims); err != nil {
		return "", apperr.InvalidToken(fmt.Sprintf("identity token claims: %v", err))
	}
	if claims.Email == "" {
		return "", apperr.IdentityClaimMissing()
	}
	return claims.Email, nil
}

// decodeSegment is padding-tolerant base64url decoding.
func decodeSegment(seg string) ([]byte, error) {
	return base64.RawURLEncoding.DecodeString(strings.TrimRight(seg, "="))
}

// PersistCredential upserts the refresh credential. Providers omit the
// refresh token on consent-less re-logins; an empty token must never
// overwrite a stored credential.
func (s *TokenService) PersistCredential(ctx context.Context, identity, refreshToken string) error {
	if refreshToken == "" {
		logger.WithField("identity", identity).Debug("no refresh token in exchange, keeping stored credential")
		return nil
	}
	if err := s.creds.Upsert(ctx, identity, refreshToken); err != nil {
		return apperr.StorageError("persist credential", err)
	}
	return nil
}

// RefreshAccessToken runs the refresh_token grant against the stored
// credential. NoStoredCredential means the user must redo authorization.
func (s *TokenService) RefreshAccessToken(ctx context.Context, identity string) (string, error) {
	refreshToken, err := s.creds.GetRefreshToken(ctx, identity)
	if err != nil {
		if errors.Is(err, out.ErrNotFound) {
			return "", apperr.NoStoredCredential(identity)
		}
		return "", apperr.StorageError("lookup credential", err)
	}

	// A token source seeded with only the refresh token always performs the
	// refresh grant; a fresh source per call keeps access tokens uncached.
	src := s.config.TokenSource(ctx, &oauth2.Token{RefreshToken: refreshToken})
	token, err := src.Token()
	if err != nil {
		return "", apperr.RefreshFailed(providerBody(err))
	}
	if token.AccessToken == "" {
		return "", apperr.RefreshFailed(errors.New("no access token in refresh response"))
	}
	return token.AccessToken, nil
}

// HandleCallback runs the full authorization callback: exchange the code,
// read the identity, persist the credential, mint a session token.
func (s *TokenService) HandleCallback(ctx context.Context, code string) (*in.AuthResult, error) {
	tokens, err := s.ExchangeCode(ctx, code)
	if err != nil {
		return nil, err
	}

	identity, err := s.ExtractIdentity(tokens.IDToken)
	if err != nil {
		return nil, err
	}

	if err := s.PersistCredential(ctx, identity, tokens.RefreshToken); err != nil {
		return nil, err
	}

	sessionToken, err := s.session.Issue(identity)
	if err != nil {
		return nil, apperr.InternalWithError(err)
	}

	logger.WithField("identity", identity).Info("authorization completed")
	return &in.AuthResult{Identity: identity, SessionToken: sessionToken}, nil
}

// Ensure TokenService implements in.TokenService
var _ in.TokenService = (*TokenService)(nil)

// providerBody unwraps an oauth2 retrieve error so the provider's response
// body reaches the logs.
func providerBody(err error) error {
	var rerr *oauth2.RetrieveError
	if errors.As(err, &rerr) && len(rerr.Body) > 0 {
		return fmt.Errorf("provider response: %s", string(rerr.Body))
	}
	return err
}
