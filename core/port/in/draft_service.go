package in

import (
	"context"

	"drafly_server/core/domain"
)

// ReplyDispatcher sends an approved reply through the mail provider.
// It is precondition-agnostic; the draft state machine gates access to it.
type ReplyDispatcher interface {
	SendReply(ctx context.Context, identity, to, subject, threadID, body string) (string, error)
}

// DraftService drives the draft lifecycle: draft -> approved -> sent.
type DraftService interface {
	Generate(ctx context.Context, identity string, emailID int64, tone string) (*domain.Draft, error)
	Get(ctx context.Context, identity string, id int64) (*domain.Draft, error)
	List(ctx context.Context, identity string) ([]*domain.Draft, error)
	Edit(ctx context.Context, identity string, id int64, content string) error
	Approve(ctx context.Context, identity string, id int64) error
	// Send dispatches an approved draft and records the provider message id.
	// A dispatch failure leaves the draft approved so the send can be retried.
	Send(ctx context.Context, identity string, id int64) (string, error)
}
