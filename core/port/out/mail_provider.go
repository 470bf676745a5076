package out

import "context"

// ProviderMessage is the parsed full-format message returned by the mail
// provider. BodyText and BodyHTML hold whatever leaf parts the payload
// carried; deriving text from HTML is the ingestion service's concern.
type ProviderMessage struct {
	ID       string
	ThreadID string
	Sender   string
	To       string
	Subject  string
	Snippet  string
	BodyText string
	BodyHTML string
	Labels   []string
}

// MailProvider is the outbound port to the mail provider's REST API.
// Every call takes an ephemeral access token obtained just before the call.
type MailProvider interface {
	// GetMessage fetches and parses one message in full format.
	GetMessage(ctx context.Context, accessToken, messageID string) (*ProviderMessage, error)
	// ListUnreadIDs returns up to max ids matching the unread-inbox query.
	ListUnreadIDs(ctx context.Context, accessToken string, max int64) ([]string, error)
	// SendRaw submits an already-encoded RFC-5322 message threaded onto
	// threadID and returns the provider-assigned message id.
	SendRaw(ctx context.Context, accessToken, raw, threadID string) (string, error)
}
