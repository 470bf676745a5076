package auth

import (
	"testing"
	"time"
)

func TestSessionRoundTrip(t *testing.T) {
	issuer := NewSessionIssuer("secret-1", time.Hour)

	token, err := issuer.Issue("user@example.com")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	identity, err := issuer.Validate(token)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if identity != "user@example.com" {
		t.Errorf("identity = %q", identity)
	}
}

func TestSessionWrongSecret(t *testing.T) {
	token, err := NewSessionIssuer("secret-1", time.Hour).Issue("user@example.com")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	if _, err := NewSessionIssuer("secret-2", time.Hour).Validate(token); err == nil {
		t.Fatal("token signed with a different secret validated")
	}
}

func TestSessionExpired(t *testing.T) {
	issuer := NewSessionIssuer("secret-1", -time.Minute)

	token, err := issuer.Issue("user@example.com")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	if _, err := issuer.Validate(token); err == nil {
		t.Fatal("expired token validated")
	}
}

func TestSessionGarbage(t *testing.T) {
	issuer := NewSessionIssuer("secret-1", time.Hour)
	if _, err := issuer.Validate("not-a-token"); err == nil {
		t.Fatal("garbage token validated")
	}
}

func TestIssueWithoutSecret(t *testing.T) {
	if _, err := NewSessionIssuer("", time.Hour).Issue("user@example.com"); err == nil {
		t.Fatal("issued a token without a secret")
	}
}
