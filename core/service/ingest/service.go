// Package ingest pulls mailbox messages into durable storage.
package ingest

import (
	"context"
	"time"

	"drafly_server/core/domain"
	"drafly_server/core/port/in"
	"drafly_server/core/port/out"
	"drafly_server/pkg/apperr"
	"drafly_server/pkg/logger"
)

// AccessTokenSource derives an ephemeral access token for an identity.
type AccessTokenSource interface {
	RefreshAccessToken(ctx context.Context, identity string) (string, error)
}

// Service implements in.IngestService.
type Service struct {
	tokens   AccessTokenSource
	provider out.MailProvider
	emails   out.EmailRepository
	limit    int
}

func NewService(tokens AccessTokenSource, provider out.MailProvider, emails out.EmailRepository, unreadLimit int) *Service {
	if unreadLimit <= 0 {
		unreadLimit = 20
	}
	return &Service{
		tokens:   tokens,
		provider: provider,
		emails:   emails,
		limit:    unreadLimit,
	}
}

// FetchAndStore ingests one message. The access token is re-derived for the
// call, the message fetched in full, parsed, and upserted keyed by its
// provider id. Any failure aborts before the write; there are no partial rows.
func (s *Service) FetchAndStore(ctx context.Context, identity, messageID string) error {
	accessToken, err := s.tokens.RefreshAccessToken(ctx, identity)
	if err != nil {
		return err
	}

	msg, err := s.provider.GetMessage(ctx, accessToken, messageID)
	if err != nil {
		return err
	}

	bodyText := msg.BodyText
	if bodyText == "" && msg.BodyHTML != "" {
		// Derived text, not authoritative HTML: sanitized then flattened.
		bodyText = htmlToText(msg.BodyHTML)
	}

	email := &domain.Email{
		GmailID:      msg.ID,
		ThreadID:     msg.ThreadID,
		OwnerEmail:   identity,
		Sender:       msg.Sender,
		ToRecipients: msg.To,
		Subject:      msg.Subject,
		Snippet:      msg.Snippet,
		BodyText:     bodyText,
		BodyHTML:     msg.BodyHTML,
		Labels:       msg.Labels,
		FetchedAt:    time.Now().UTC(),
	}

	if err := s.emails.Upsert(ctx, email); err != nil {
		return apperr.StorageError("upsert email", err)
	}
	return nil
}

// ListUnreadAndFetch ingests the current unread inbox page. Failures are
// isolated per message id; one bad message never blocks the rest.
func (s *Service) ListUnreadAndFetch(ctx context.Context, identity string) (*in.FetchReport, error) {
	accessToken, err := s.tokens.RefreshAccessToken(ctx, identity)
	if err != nil {
		return nil, err
	}

	ids, err := s.provider.ListUnreadIDs(ctx, accessToken, int64(s.limit))
	if err != nil {
		return nil, err
	}

	report := &in.FetchReport{Listed: len(ids)}
	for _, id := range ids {
		if err := s.FetchAndStore(ctx, identity, id); err != nil {
			logger.WithError(err).WithField("identity", identity).
				Error("fetch and store failed for %s", id)
			report.Failed = append(report.Failed, id)
			continue
		}
		report.Stored++
	}
	return report, nil
}

// Ensure Service implements in.IngestService
var _ in.IngestService = (*Service)(nil)
