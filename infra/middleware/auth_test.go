package middleware

import (
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
)

type fakeValidator struct {
	identity string
	err      error

	gotToken string
}

func (f *fakeValidator) Validate(tokenString string) (string, error) {
	f.gotToken = tokenString
	if f.err != nil {
		return "", f.err
	}
	return f.identity, nil
}

func newAuthApp(v SessionValidator) *fiber.App {
	app := fiber.New()
	app.Use(SessionAuth(v))
	app.Get("/whoami", func(c *fiber.Ctx) error {
		identity, _ := c.Locals("user_email").(string)
		return c.SendString(identity)
	})
	return app
}

func TestSessionAuthBearerHeader(t *testing.T) {
	validator := &fakeValidator{identity: "me@example.com"}
	app := newAuthApp(validator)

	req := httptest.NewRequest("GET", "/whoami", nil)
	req.Header.Set("Authorization", "Bearer tok-123")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("Test: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if validator.gotToken != "tok-123" {
		t.Errorf("token = %q", validator.gotToken)
	}
}

func TestSessionAuthQueryToken(t *testing.T) {
	validator := &fakeValidator{identity: "me@example.com"}
	app := newAuthApp(validator)

	resp, err := app.Test(httptest.NewRequest("GET", "/whoami?token=tok-456", nil))
	if err != nil {
		t.Fatalf("Test: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if validator.gotToken != "tok-456" {
		t.Errorf("token = %q", validator.gotToken)
	}
}

func TestSessionAuthMissingToken(t *testing.T) {
	app := newAuthApp(&fakeValidator{identity: "me@example.com"})

	resp, err := app.Test(httptest.NewRequest("GET", "/whoami", nil))
	if err != nil {
		t.Fatalf("Test: %v", err)
	}
	if resp.StatusCode != fiber.StatusUnauthorized {
		t.Errorf("status = %d, want 401", resp.StatusCode)
	}
}

func TestSessionAuthInvalidToken(t *testing.T) {
	app := newAuthApp(&fakeValidator{err: errors.New("expired")})

	req := httptest.NewRequest("GET", "/whoami", nil)
	req.Header.Set("Authorization", "Bearer bad")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("Test: %v", err)
	}
	if resp.StatusCode != fiber.StatusUnauthorized {
		t.Errorf("status = %d, want 401", resp.StatusCode)
	}
}

func TestSessionAuthMalformedHeader(t *testing.T) {
	validator := &fakeValidator{identity: "me@example.com"}
	app := newAuthApp(validator)

	req := httptest.NewRequest("GET", "/whoami", nil)
	req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("Test: %v", err)
	}
	if resp.StatusCode != fiber.StatusUnauthorized {
		t.Errorf("status = %d, want 401", resp.StatusCode)
	}
}

func TestSessionAuthPreflightSkipped(t *testing.T) {
	app := fiber.New()
	app.Use(SessionAuth(&fakeValidator{err: errors.New("never called")}))
	app.Options("/whoami", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusNoContent)
	})

	resp, err := app.Test(httptest.NewRequest("OPTIONS", "/whoami", nil))
	if err != nil {
		t.Fatalf("Test: %v", err)
	}
	if resp.StatusCode != fiber.StatusNoContent {
		t.Errorf("status = %d, want 204", resp.StatusCode)
	}
}
