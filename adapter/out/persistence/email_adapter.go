package persistence

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"drafly_server/core/domain"
	"drafly_server/core/port/out"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// emailRow mirrors the emails table.
type emailRow struct {
	ID           int64          `db:"id"`
	GmailID      string         `db:"gmail_id"`
	ThreadID     string         `db:"thread_id"`
	UserEmail    string         `db:"user_email"`
	Sender       string         `db:"sender"`
	ToRecipients string         `db:"to_recipients"`
	Subject      string         `db:"subject"`
	Snippet      string         `db:"snippet"`
	BodyText     string         `db:"body_text"`
	BodyHTML     string         `db:"body_html"`
	Labels       pq.StringArray `db:"labels"`
	FetchedAt    time.Time      `db:"fetched_at"`
}

func (r *emailRow) toDomain() *domain.Email {
	return &domain.Email{
		ID:           r.ID,
		GmailID:      r.GmailID,
		ThreadID:     r.ThreadID,
		OwnerEmail:   r.UserEmail,
		Sender:       r.Sender,
		ToRecipients: r.ToRecipients,
		Subject:      r.Subject,
		Snippet:      r.Snippet,
		BodyText:     r.BodyText,
		BodyHTML:     r.BodyHTML,
		Labels:       []string(r.Labels),
		FetchedAt:    r.FetchedAt,
	}
}

// EmailAdapter implements out.EmailRepository using PostgreSQL.
type EmailAdapter struct {
	db *sqlx.DB
}

func NewEmailAdapter(db *sqlx.DB) *EmailAdapter {
	return &EmailAdapter{db: db}
}

// Upsert writes the message keyed by gmail_id. A re-fetch of the same
// message overwrites the mutable fields in a single statement, so a
// concurrent fetch of the same id cannot leave a torn row.
func (a *EmailAdapter) Upsert(ctx context.Context, email *domain.Email) error {
	query := `
		INSERT INTO emails (gmail_id, thread_id, user_email, sender, to_recipients,
		                    subject, snippet, body_text, body_html, labels, fetched_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (gmail_id) DO UPDATE SET
			thread_id = EXCLUDED.thread_id,
			sender = EXCLUDED.sender,
			to_recipients = EXCLUDED.to_recipients,
			subject = EXCLUDED.subject,
			snippet = EXCLUDED.snippet,
			body_text = EXCLUDED.body_text,
			body_html = EXCLUDED.body_html,
			labels = EXCLUDED.labels,
			fetched_at = EXCLUDED.fetched_at
		RETURNING id`

	return a.db.QueryRowContext(ctx, query,
		email.GmailID,
		email.ThreadID,
		email.OwnerEmail,
		email.Sender,
		email.ToRecipients,
		email.Subject,
		email.Snippet,
		email.BodyText,
		email.BodyHTML,
		pq.StringArray(email.Labels),
		email.FetchedAt,
	).Scan(&email.ID)
}

// GetByID returns one owned message by row id.
func (a *EmailAdapter) GetByID(ctx context.Context, id int64, ownerEmail string) (*domain.Email, error) {
	var row emailRow
	query := `
		SELECT id, gmail_id, thread_id, user_email, sender, to_recipients,
		       subject, snippet, body_text, body_html, labels, fetched_at
		FROM emails
		WHERE id = $1 AND user_email = $2`

	if err := a.db.GetContext(ctx, &row, query, id, ownerEmail); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, out.ErrNotFound
		}
		return nil, err
	}
	return row.toDomain(), nil
}

// ListRecent returns owned messages ordered by fetch recency.
func (a *EmailAdapter) ListRecent(ctx context.Context, ownerEmail string, limit int) ([]*domain.Email, error) {
	var rows []emailRow
	query := `
		SELECT id, gmail_id, thread_id, user_email, sender, to_recipients,
		       subject, snippet, body_text, body_html, labels, fetched_at
		FROM emails
		WHERE user_email = $1
		ORDER BY fetched_at DESC
		LIMIT $2`

	if err := a.db.SelectContext(ctx, &rows, query, ownerEmail, limit); err != nil {
		return nil, err
	}

	emails := make([]*domain.Email, len(rows))
	for i := range rows {
		emails[i] = rows[i].toDomain()
	}
	return emails, nil
}

// Ensure EmailAdapter implements out.EmailRepository
var _ out.EmailRepository = (*EmailAdapter)(nil)
