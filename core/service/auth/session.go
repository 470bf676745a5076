package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SessionIssuer mints and validates the application's own session tokens.
// Claims are {sub: identity, exp}; signing is HS256 with a process-wide
// secret. This is the only place the secret is used for signing.
type SessionIssuer struct {
	secret []byte
	ttl    time.Duration
}

func NewSessionIssuer(secret string, ttl time.Duration) *SessionIssuer {
	return &SessionIssuer{secret: []byte(secret), ttl: ttl}
}

// Issue mints a session token for the verified identity.
func (i *SessionIssuer) Issue(identity string) (string, error) {
	if len(i.secret) == 0 {
		return "", errors.New("session secret not configured")
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": identity,
		"exp": time.Now().Add(i.ttl).Unix(),
		"iat": time.Now().Unix(),
	})
	return token.SignedString(i.secret)
}

// Validate parses a session token and returns the identity it carries.
func (i *SessionIssuer) Validate(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unsupported signing method: %v", token.Header["alg"])
		}
		return i.secret, nil
	})
	if err != nil {
		return "", err
	}
	if !token.Valid {
		return "", errors.New("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", errors.New("invalid claims")
	}
	identity, ok := claims["sub"].(string)
	if !ok || identity == "" {
		return "", errors.New("missing subject claim")
	}
	return identity, nil
}
