package persistence

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"drafly_server/core/domain"
	"drafly_server/core/port/out"

	"github.com/jmoiron/sqlx"
)

// draftRow mirrors the drafts table.
type draftRow struct {
	ID          int64     `db:"id"`
	EmailID     int64     `db:"email_id"`
	UserEmail   string    `db:"user_email"`
	Content     string    `db:"content"`
	Tone        string    `db:"tone"`
	Status      string    `db:"status"`
	SentGmailID string    `db:"sent_gmail_id"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

func (r *draftRow) toDomain() *domain.Draft {
	return &domain.Draft{
		ID:          r.ID,
		EmailID:     r.EmailID,
		OwnerEmail:  r.UserEmail,
		Content:     r.Content,
		Tone:        r.Tone,
		Status:      domain.DraftStatus(r.Status),
		SentGmailID: r.SentGmailID,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

// DraftAdapter implements out.DraftRepository using PostgreSQL.
type DraftAdapter struct {
	db *sqlx.DB
}

func NewDraftAdapter(db *sqlx.DB) *DraftAdapter {
	return &DraftAdapter{db: db}
}

// Create inserts the draft and fills in its id and timestamps.
func (a *DraftAdapter) Create(ctx context.Context, draft *domain.Draft) error {
	query := `
		INSERT INTO drafts (email_id, user_email, content, tone, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at`

	return a.db.QueryRowContext(ctx, query,
		draft.EmailID,
		draft.OwnerEmail,
		draft.Content,
		draft.Tone,
		string(draft.Status),
	).Scan(&draft.ID, &draft.CreatedAt, &draft.UpdatedAt)
}

// GetByID returns one owned draft by row id.
func (a *DraftAdapter) GetByID(ctx context.Context, id int64, ownerEmail string) (*domain.Draft, error) {
	var row draftRow
	query := `
		SELECT id, email_id, user_email, content, tone, status, sent_gmail_id, created_at, updated_at
		FROM drafts
		WHERE id = $1 AND user_email = $2`

	if err := a.db.GetContext(ctx, &row, query, id, ownerEmail); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, out.ErrNotFound
		}
		return nil, err
	}
	return row.toDomain(), nil
}

// ListByOwner returns all drafts for an identity, newest first.
func (a *DraftAdapter) ListByOwner(ctx context.Context, ownerEmail string) ([]*domain.Draft, error) {
	var rows []draftRow
	query := `
		SELECT id, email_id, user_email, content, tone, status, sent_gmail_id, created_at, updated_at
		FROM drafts
		WHERE user_email = $1
		ORDER BY created_at DESC`

	if err := a.db.SelectContext(ctx, &rows, query, ownerEmail); err != nil {
		return nil, err
	}

	drafts := make([]*domain.Draft, len(rows))
	for i := range rows {
		drafts[i] = rows[i].toDomain()
	}
	return drafts, nil
}

// UpdateContent replaces the draft body and bumps updated_at.
func (a *DraftAdapter) UpdateContent(ctx context.Context, id int64, ownerEmail, content string) error {
	query := `
		UPDATE drafts
		SET content = $3, updated_at = now()
		WHERE id = $1 AND user_email = $2`

	res, err := a.db.ExecContext(ctx, query, id, ownerEmail, content)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// UpdateStatus moves the draft to status. The sent_gmail_id column is only
// written when sentGmailID is non-empty, so approve transitions never clear
// an earlier provider id.
func (a *DraftAdapter) UpdateStatus(ctx context.Context, id int64, ownerEmail string, status domain.DraftStatus, sentGmailID string) error {
	query := `
		UPDATE drafts
		SET status = $3,
		    sent_gmail_id = COALESCE(NULLIF($4, ''), sent_gmail_id),
		    updated_at = now()
		WHERE id = $1 AND user_email = $2`

	res, err := a.db.ExecContext(ctx, query, id, ownerEmail, string(status), sentGmailID)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return out.ErrNotFound
	}
	return nil
}

// Ensure DraftAdapter implements out.DraftRepository
var _ out.DraftRepository = (*DraftAdapter)(nil)
