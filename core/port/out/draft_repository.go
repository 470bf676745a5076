package out

import (
	"context"

	"drafly_server/core/domain"
)

// DraftRepository persists reply drafts. Drafts are never hard-deleted.
type DraftRepository interface {
	Create(ctx context.Context, draft *domain.Draft) error
	GetByID(ctx context.Context, id int64, ownerEmail string) (*domain.Draft, error)
	ListByOwner(ctx context.Context, ownerEmail string) ([]*domain.Draft, error)
	// UpdateContent replaces the draft body and bumps updated_at.
	UpdateContent(ctx context.Context, id int64, ownerEmail, content string) error
	// UpdateStatus moves the draft to status; sentGmailID is recorded when
	// non-empty (the sent transition).
	UpdateStatus(ctx context.Context, id int64, ownerEmail string, status domain.DraftStatus, sentGmailID string) error
}
