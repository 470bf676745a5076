package out

import (
	"context"

	"drafly_server/core/domain"
)

// EmailRepository persists ingested messages.
type EmailRepository interface {
	// Upsert writes the message keyed by its provider id, overwriting the
	// mutable fields on conflict. The row id is filled in on return.
	Upsert(ctx context.Context, email *domain.Email) error
	// GetByID returns one owned message by row id.
	GetByID(ctx context.Context, id int64, ownerEmail string) (*domain.Email, error)
	// ListRecent returns owned messages ordered by fetch recency.
	ListRecent(ctx context.Context, ownerEmail string, limit int) ([]*domain.Email, error)
}
