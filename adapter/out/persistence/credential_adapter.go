package persistence

import (
	"context"
	"database/sql"
	"errors"

	"drafly_server/core/port/out"
	"drafly_server/pkg/crypto"

	"github.com/jmoiron/sqlx"
)

// CredentialAdapter implements out.CredentialRepository using PostgreSQL.
// One row per identity; a re-consent overwrites the stored refresh token.
// A non-nil encryptor seals tokens at rest; nil stores them as-is.
type CredentialAdapter struct {
	db        *sqlx.DB
	encryptor *crypto.Encryptor
}

func NewCredentialAdapter(db *sqlx.DB, encryptor *crypto.Encryptor) *CredentialAdapter {
	return &CredentialAdapter{db: db, encryptor: encryptor}
}

// Upsert stores or replaces the refresh credential for identity.
func (a *CredentialAdapter) Upsert(ctx context.Context, identity, refreshToken string) error {
	if a.encryptor != nil {
		sealed, err := a.encryptor.EncryptString(refreshToken)
		if err != nil {
			return err
		}
		refreshToken = sealed
	}

	query := `
		INSERT INTO user_credentials (email, refresh_token, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (email)
		DO UPDATE SET refresh_token = EXCLUDED.refresh_token, updated_at = now()`

	_, err := a.db.ExecContext(ctx, query, identity, refreshToken)
	return err
}

// GetRefreshToken returns the stored credential for identity.
// A row that predates encryption is returned as stored.
func (a *CredentialAdapter) GetRefreshToken(ctx context.Context, identity string) (string, error) {
	var refreshToken string
	query := `SELECT refresh_token FROM user_credentials WHERE email = $1 LIMIT 1`

	if err := a.db.GetContext(ctx, &refreshToken, query, identity); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", out.ErrNotFound
		}
		return "", err
	}

	if a.encryptor != nil {
		if plain, err := a.encryptor.DecryptString(refreshToken); err == nil {
			return plain, nil
		}
	}
	return refreshToken, nil
}

// Ensure CredentialAdapter implements out.CredentialRepository
var _ out.CredentialRepository = (*CredentialAdapter)(nil)
