package auth

import (
	"context"
	"encoding/base64"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"drafly_server/config"
	"drafly_server/core/port/out"
	"drafly_server/pkg/apperr"

	"github.com/goccy/go-json"
)

type fakeCredRepo struct {
	tokens  map[string]string
	upserts int
}

func newFakeCredRepo() *fakeCredRepo {
	return &fakeCredRepo{tokens: make(map[string]string)}
}

func (f *fakeCredRepo) Upsert(_ context.Context, identity, refreshToken string) error {
	f.tokens[identity] = refreshToken
	f.upserts++
	return nil
}

func (f *fakeCredRepo) GetRefreshToken(_ context.Context, identity string) (string, error) {
	rt, ok := f.tokens[identity]
	if !ok {
		return "", out.ErrNotFound
	}
	return rt, nil
}

var _ out.CredentialRepository = (*fakeCredRepo)(nil)

// makeIDToken builds an unsigned JWT carrying the given claims payload.
func makeIDToken(t *testing.T, claims map[string]any, padded bool) string {
	t.Helper()
	payload, err := json.Marshal(claims)
	if err != nil {
		t.Fatalf("marshal claims: %v", err)
	}
	header := base64.RawURLEncoding.EncodeToString([]byte(`{"alg":"RS256","typ":"JWT"}`))
	var body string
	if padded {
		body = base64.URLEncoding.EncodeToString(payload)
	} else {
		body = base64.RawURLEncoding.EncodeToString(payload)
	}
	return header + "." + body + ".sig"
}

func newTestService(t *testing.T, tokenURL string, creds out.CredentialRepository) *TokenService {
	t.Helper()
	cfg := &config.Config{
		GoogleClientID:     "client-id",
		GoogleClientSecret: "client-secret",
		GoogleRedirectURL:  "http://localhost:8000/auth/google/callback",
		GoogleAuthURL:      "http://localhost/consent",
		GoogleTokenURL:     tokenURL,
		JWTSecret:          "test-secret",
	}
	return NewTokenService(cfg, creds, NewSessionIssuer("test-secret", time.Hour))
}

func TestExchangeCode(t *testing.T) {
	idToken := makeIDToken(t, map[string]any{"email": "user@example.com"}, false)

	var gotCode string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Fatalf("parse form: %v", err)
		}
		gotCode = r.FormValue("code")
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"access_token":  "at-1",
			"refresh_token": "rt-1",
			"id_token":      idToken,
			"token_type":    "Bearer",
			"expires_in":    3600,
		})
	}))
	defer srv.Close()

	svc := newTestService(t, srv.URL, newFakeCredRepo())

	set, err := svc.ExchangeCode(context.Background(), "abc123")
	if err != nil {
		t.Fatalf("ExchangeCode: %v", err)
	}
	if gotCode != "abc123" {
		t.Errorf("provider received code %q, want abc123", gotCode)
	}
	if set.AccessToken != "at-1" || set.RefreshToken != "rt-1" {
		t.Errorf("token set = %+v", set)
	}
	if set.IDToken != idToken {
		t.Errorf("id token not carried through")
	}
	if set.ExpiresIn <= 0 {
		t.Errorf("ExpiresIn = %d, want positive", set.ExpiresIn)
	}
}

func TestExchangeCodeMissingIDToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"access_token": "at-1",
			"token_type":   "Bearer",
		})
	}))
	defer srv.Close()

	svc := newTestService(t, srv.URL, newFakeCredRepo())

	_, err := svc.ExchangeCode(context.Background(), "abc123")
	if !apperr.IsCode(err, apperr.CodeMissingIDToken) {
		t.Fatalf("err = %v, want %s", err, apperr.CodeMissingIDToken)
	}
}

func TestExchangeCodeProviderError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":"invalid_grant"}`))
	}))
	defer srv.Close()

	svc := newTestService(t, srv.URL, newFakeCredRepo())

	_, err := svc.ExchangeCode(context.Background(), "bad-code")
	if !apperr.IsCode(err, apperr.CodeExchangeFailed) {
		t.Fatalf("err = %v, want %s", err, apperr.CodeExchangeFailed)
	}
}

func TestExtractIdentity(t *testing.T) {
	svc := newTestService(t, "http://unused", newFakeCredRepo())

	tests := []struct {
		name      string
		idToken   string
		want      string
		wantCode  string
	}{
		{
			name:    "unpadded payload",
			idToken: makeIDToken(t, map[string]any{"email": "a@b.com"}, false),
			want:    "a@b.com",
		},
		{
			name:    "padded payload",
			idToken: makeIDToken(t, map[string]any{"email": "a@b.com", "sub": "123"}, true),
			want:    "a@b.com",
		},
		{
			name:     "missing email claim",
			idToken:  makeIDToken(t, map[string]any{"sub": "123"}, false),
			wantCode: apperr.CodeIdentityClaim,
		},
		{
			name:     "not a jwt",
			idToken:  "garbage",
			wantCode: apperr.CodeInvalidToken,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := svc.ExtractIdentity(tt.idToken)
			if tt.wantCode != "" {
				if !apperr.IsCode(err, tt.wantCode) {
					t.Fatalf("err = %v, want code %s", err, tt.wantCode)
				}
				return
			}
			if err != nil {
				t.Fatalf("ExtractIdentity: %v", err)
			}
			if got != tt.want {
				t.Errorf("identity = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPersistCredentialEmptyTokenIsNoOp(t *testing.T) {
	creds := newFakeCredRepo()
	creds.tokens["user@example.com"] = "existing-rt"
	svc := newTestService(t, "http://unused", creds)

	if err := svc.PersistCredential(context.Background(), "user@example.com", ""); err != nil {
		t.Fatalf("PersistCredential: %v", err)
	}
	if creds.upserts != 0 {
		t.Errorf("upserts = %d, want 0", creds.upserts)
	}
	if creds.tokens["user@example.com"] != "existing-rt" {
		t.Errorf("stored credential was overwritten")
	}
}

func TestRefreshAccessToken(t *testing.T) {
	var gotRefreshToken, gotGrantType string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Fatalf("parse form: %v", err)
		}
		gotRefreshToken = r.FormValue("refresh_token")
		gotGrantType = r.FormValue("grant_type")
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"access_token": "fresh-at",
			"token_type":   "Bearer",
			"expires_in":   3600,
		})
	}))
	defer srv.Close()

	creds := newFakeCredRepo()
	creds.tokens["user@example.com"] = "stored-rt"
	svc := newTestService(t, srv.URL, creds)

	at, err := svc.RefreshAccessToken(context.Background(), "user@example.com")
	if err != nil {
		t.Fatalf("RefreshAccessToken: %v", err)
	}
	if at != "fresh-at" {
		t.Errorf("access token = %q, want fresh-at", at)
	}
	if gotRefreshToken != "stored-rt" {
		t.Errorf("provider received refresh_token %q, want stored-rt", gotRefreshToken)
	}
	if gotGrantType != "refresh_token" {
		t.Errorf("grant_type = %q, want refresh_token", gotGrantType)
	}
}

func TestRefreshAccessTokenNoCredential(t *testing.T) {
	svc := newTestService(t, "http://unused", newFakeCredRepo())

	_, err := svc.RefreshAccessToken(context.Background(), "nobody@example.com")
	if !apperr.IsCode(err, apperr.CodeNoStoredCredential) {
		t.Fatalf("err = %v, want %s", err, apperr.CodeNoStoredCredential)
	}
	if apperr.GetHTTPStatus(err) != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", apperr.GetHTTPStatus(err))
	}
}

func TestRefreshAccessTokenProviderFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":"invalid_grant"}`))
	}))
	defer srv.Close()

	creds := newFakeCredRepo()
	creds.tokens["user@example.com"] = "revoked-rt"
	svc := newTestService(t, srv.URL, creds)

	_, err := svc.RefreshAccessToken(context.Background(), "user@example.com")
	if !apperr.IsCode(err, apperr.CodeRefreshFailed) {
		t.Fatalf("err = %v, want %s", err, apperr.CodeRefreshFailed)
	}
}

func TestHandleCallback(t *testing.T) {
	idToken := makeIDToken(t, map[string]any{"email": "user@example.com"}, false)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"access_token":  "at-1",
			"refresh_token": "rt-1",
			"id_token":      idToken,
			"token_type":    "Bearer",
			"expires_in":    3600,
		})
	}))
	defer srv.Close()

	creds := newFakeCredRepo()
	svc := newTestService(t, srv.URL, creds)

	result, err := svc.HandleCallback(context.Background(), "abc123")
	if err != nil {
		t.Fatalf("HandleCallback: %v", err)
	}
	if result.Identity != "user@example.com" {
		t.Errorf("identity = %q", result.Identity)
	}
	if result.SessionToken == "" {
		t.Errorf("no session token issued")
	}
	if creds.tokens["user@example.com"] != "rt-1" {
		t.Errorf("refresh credential not persisted")
	}

	// The minted session must validate back to the same identity.
	identity, err := NewSessionIssuer("test-secret", time.Hour).Validate(result.SessionToken)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if identity != "user@example.com" {
		t.Errorf("session identity = %q", identity)
	}
}

func TestProviderBodyPassthrough(t *testing.T) {
	plain := errors.New("plain failure")
	if got := providerBody(plain); got != plain {
		t.Errorf("providerBody rewrote a non-retrieve error")
	}
}
