// Package draft drives the reply-draft lifecycle: draft -> approved -> sent.
package draft

import (
	"context"

	"drafly_server/core/domain"
	"drafly_server/core/port/in"
	"drafly_server/core/port/out"
	"drafly_server/pkg/apperr"
	"drafly_server/pkg/logger"
)

const defaultTone = "friendly"

// Service implements in.DraftService.
type Service struct {
	drafts     out.DraftRepository
	emails     out.EmailRepository
	generator  out.ReplyGenerator
	dispatcher in.ReplyDispatcher
}

func NewService(drafts out.DraftRepository, emails out.EmailRepository, generator out.ReplyGenerator, dispatcher in.ReplyDispatcher) *Service {
	return &Service{
		drafts:     drafts,
		emails:     emails,
		generator:  generator,
		dispatcher: dispatcher,
	}
}

// Generate creates a draft reply for an owned email. A failed or empty
// generation yields the placeholder content instead of aborting; the draft
// row is created either way.
func (s *Service) Generate(ctx context.Context, identity string, emailID int64, tone string) (*domain.Draft, error) {
	if tone == "" {
		tone = defaultTone
	}

	email, err := s.emails.GetByID(ctx, emailID, identity)
	if err != nil {
		if err == out.ErrNotFound {
			return nil, apperr.NotFound("email")
		}
		return nil, apperr.StorageError("lookup email", err)
	}

	content, err := s.generator.GenerateReply(ctx, email.BodyText, email.Sender, email.Subject, tone)
	if err != nil || content == "" {
		if err != nil {
			logger.WithError(err).WithField("identity", identity).Warn("reply generation failed, storing placeholder")
		}
		content = domain.PlaceholderContent
	}

	draft := &domain.Draft{
		EmailID:    emailID,
		OwnerEmail: identity,
		Content:    content,
		Tone:       tone,
		Status:     domain.DraftStatusDraft,
	}
	if err := s.drafts.Create(ctx, draft); err != nil {
		return nil, apperr.StorageError("create draft", err)
	}
	return draft, nil
}

func (s *Service) Get(ctx context.Context, identity string, id int64) (*domain.Draft, error) {
	draft, err := s.drafts.GetByID(ctx, id, identity)
	if err != nil {
		if err == out.ErrNotFound {
			return nil, apperr.NotFound("draft")
		}
		return nil, apperr.StorageError("lookup draft", err)
	}
	return draft, nil
}

func (s *Service) List(ctx context.Context, identity string) ([]*domain.Draft, error) {
	drafts, err := s.drafts.ListByOwner(ctx, identity)
	if err != nil {
		return nil, apperr.StorageError("list drafts", err)
	}
	return drafts, nil
}

// Edit replaces the draft content. Editing is permitted in any state; an
// edited sent draft keeps its sent record untouched.
func (s *Service) Edit(ctx context.Context, identity string, id int64, content string) error {
	if _, err := s.Get(ctx, identity, id); err != nil {
		return err
	}
	if err := s.drafts.UpdateContent(ctx, id, identity, content); err != nil {
		return apperr.StorageError("update draft", err)
	}
	return nil
}

// Approve moves a draft to approved. Re-approval is a no-op; approving a
// sent draft is rejected.
func (s *Service) Approve(ctx context.Context, identity string, id int64) error {
	draft, err := s.Get(ctx, identity, id)
	if err != nil {
		return err
	}
	if !draft.Status.CanApprove() {
		return apperr.Conflict("draft has already been sent")
	}
	if draft.Status == domain.DraftStatusApproved {
		return nil
	}
	if err := s.drafts.UpdateStatus(ctx, id, identity, domain.DraftStatusApproved, ""); err != nil {
		return apperr.StorageError("approve draft", err)
	}
	return nil
}

// Send dispatches an approved draft as a reply to its parent email. The
// approved precondition is checked before any network call; a dispatch
// failure leaves the draft approved so the send can be retried.
func (s *Service) Send(ctx context.Context, identity string, id int64) (string, error) {
	draft, err := s.Get(ctx, identity, id)
	if err != nil {
		return "", err
	}
	if !draft.Status.CanSend() {
		return "", apperr.Conflict("draft must be approved before sending")
	}

	email, err := s.emails.GetByID(ctx, draft.EmailID, identity)
	if err != nil {
		if err == out.ErrNotFound {
			return "", apperr.NotFound("email")
		}
		return "", apperr.StorageError("lookup email", err)
	}

	sentID, err := s.dispatcher.SendReply(ctx, identity, email.Sender, email.Subject, email.ThreadID, draft.Content)
	if err != nil {
		return "", err
	}

	if err := s.drafts.UpdateStatus(ctx, id, identity, domain.DraftStatusSent, sentID); err != nil {
		// The reply left the building; report the storage failure anyway so
		// the caller sees the inconsistent record.
		return "", apperr.StorageError("record sent draft", err)
	}
	return sentID, nil
}

// Ensure Service implements in.DraftService
var _ in.DraftService = (*Service)(nil)
