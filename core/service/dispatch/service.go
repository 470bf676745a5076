// Package dispatch turns approved drafts into outbound provider messages.
package dispatch

import (
	"context"
	"encoding/base64"
	"strings"

	"drafly_server/core/port/in"
	"drafly_server/core/port/out"
	"drafly_server/core/service/ingest"
	"drafly_server/pkg/logger"
)

// Service implements in.ReplyDispatcher. It is precondition-agnostic: the
// draft state machine decides what may be sent, this just sends it.
type Service struct {
	tokens   ingest.AccessTokenSource
	provider out.MailProvider
}

func NewService(tokens ingest.AccessTokenSource, provider out.MailProvider) *Service {
	return &Service{tokens: tokens, provider: provider}
}

// SendReply builds a threaded RFC-5322 reply, encodes it the way the
// provider expects, and submits it. Returns the provider-assigned message id.
func (s *Service) SendReply(ctx context.Context, identity, to, subject, threadID, body string) (string, error) {
	accessToken, err := s.tokens.RefreshAccessToken(ctx, identity)
	if err != nil {
		return "", err
	}

	mime := buildReplyMessage(identity, to, subject, threadID, body)
	raw := base64.RawURLEncoding.EncodeToString([]byte(mime))

	sentID, err := s.provider.SendRaw(ctx, accessToken, raw, threadID)
	if err != nil {
		return "", err
	}

	logger.WithField("identity", identity).Info("reply sent, provider id %s", sentID)
	return sentID, nil
}

// buildReplyMessage constructs a minimal text/plain reply threaded onto the
// original conversation.
func buildReplyMessage(from, to, subject, threadID, body string) string {
	var sb strings.Builder
	sb.WriteString("From: " + from + "\r\n")
	sb.WriteString("To: " + to + "\r\n")
	sb.WriteString("Subject: " + replySubject(subject) + "\r\n")
	sb.WriteString("In-Reply-To: " + threadID + "\r\n")
	sb.WriteString("References: " + threadID + "\r\n")
	sb.WriteString("Content-Type: text/plain; charset=\"UTF-8\"\r\n")
	sb.WriteString("\r\n")
	sb.WriteString(body)
	return sb.String()
}

// replySubject prefixes Re: exactly once, so repeated sends never stack
// Re: Re: Re: onto the subject.
func replySubject(subject string) string {
	trimmed := strings.TrimSpace(subject)
	if strings.HasPrefix(strings.ToLower(trimmed), "re:") {
		return trimmed
	}
	return "Re: " + trimmed
}

// Ensure Service implements in.ReplyDispatcher
var _ in.ReplyDispatcher = (*Service)(nil)
