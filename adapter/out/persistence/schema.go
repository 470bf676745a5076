// Package persistence provides database adapters.
package persistence

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

const schema = `
CREATE TABLE IF NOT EXISTS user_credentials (
	id            BIGSERIAL PRIMARY KEY,
	email         TEXT NOT NULL UNIQUE,
	refresh_token TEXT NOT NULL,
	updated_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS emails (
	id            BIGSERIAL PRIMARY KEY,
	gmail_id      TEXT NOT NULL UNIQUE,
	thread_id     TEXT NOT NULL DEFAULT '',
	user_email    TEXT NOT NULL,
	sender        TEXT NOT NULL DEFAULT '',
	to_recipients TEXT NOT NULL DEFAULT '',
	subject       TEXT NOT NULL DEFAULT '',
	snippet       TEXT NOT NULL DEFAULT '',
	body_text     TEXT NOT NULL DEFAULT '',
	body_html     TEXT NOT NULL DEFAULT '',
	labels        TEXT[] NOT NULL DEFAULT '{}',
	fetched_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_emails_user_fetched ON emails (user_email, fetched_at DESC);

CREATE TABLE IF NOT EXISTS drafts (
	id            BIGSERIAL PRIMARY KEY,
	email_id      BIGINT NOT NULL REFERENCES emails(id),
	user_email    TEXT NOT NULL,
	content       TEXT NOT NULL,
	tone          TEXT NOT NULL DEFAULT 'friendly',
	status        TEXT NOT NULL DEFAULT 'draft',
	sent_gmail_id TEXT NOT NULL DEFAULT '',
	created_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_drafts_user_created ON drafts (user_email, created_at DESC);
`

// EnsureSchema creates the tables if they do not exist yet.
func EnsureSchema(ctx context.Context, db *sqlx.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}
