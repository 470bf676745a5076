// Package gmail implements out.MailProvider against the Gmail REST API.
package gmail

import (
	"context"
	"fmt"
	"time"

	"drafly_server/core/port/out"
	"drafly_server/pkg/apperr"
	"drafly_server/pkg/logger"

	"github.com/sony/gobreaker"
	"golang.org/x/oauth2"
	gmailapi "google.golang.org/api/gmail/v1"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

const unreadQuery = "is:unread in:inbox"

// Adapter calls the Gmail API with a per-call access token. A circuit
// breaker fails fast while Gmail is returning server-side errors.
type Adapter struct {
	cb *gobreaker.CircuitBreaker
	// extra client options, used by tests to point at a local server
	opts []option.ClientOption
}

func NewAdapter(opts ...option.ClientOption) *Adapter {
	cbSettings := gobreaker.Settings{
		Name:        "gmail-api",
		MaxRequests: 3,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.ConsecutiveFailures > 5 ||
				(counts.Requests >= 10 && failureRatio >= 0.6)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.WithFields(map[string]interface{}{
				"breaker": name,
				"from":    from.String(),
				"to":      to.String(),
			}).Warn("circuit breaker state changed")
		},
	}

	return &Adapter{
		cb:   gobreaker.NewCircuitBreaker(cbSettings),
		opts: opts,
	}
}

func (a *Adapter) getService(ctx context.Context, accessToken string) (*gmailapi.Service, error) {
	src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: accessToken})
	opts := append([]option.ClientOption{option.WithTokenSource(src)}, a.opts...)
	return gmailapi.NewService(ctx, opts...)
}

// GetMessage fetches one message in full format and flattens its payload.
func (a *Adapter) GetMessage(ctx context.Context, accessToken, messageID string) (*out.ProviderMessage, error) {
	svc, err := a.getService(ctx, accessToken)
	if err != nil {
		return nil, apperr.FetchFailed(messageID, err)
	}

	var msg *gmailapi.Message
	cbErr := a.execute(func() error {
		var apiErr error
		msg, apiErr = svc.Users.Messages.Get("me", messageID).Format("full").Context(ctx).Do()
		return apiErr
	})
	if cbErr != nil {
		return nil, apperr.FetchFailed(messageID, providerError(cbErr))
	}

	return parseMessage(msg), nil
}

// ListUnreadIDs returns up to max message ids matching the unread-inbox query.
func (a *Adapter) ListUnreadIDs(ctx context.Context, accessToken string, max int64) ([]string, error) {
	svc, err := a.getService(ctx, accessToken)
	if err != nil {
		return nil, apperr.FetchFailed("unread-list", err)
	}

	var resp *gmailapi.ListMessagesResponse
	cbErr := a.execute(func() error {
		var apiErr error
		resp, apiErr = svc.Users.Messages.List("me").Q(unreadQuery).MaxResults(max).Context(ctx).Do()
		return apiErr
	})
	if cbErr != nil {
		return nil, apperr.FetchFailed("unread-list", providerError(cbErr))
	}

	ids := make([]string, 0, len(resp.Messages))
	for _, m := range resp.Messages {
		ids = append(ids, m.Id)
	}
	return ids, nil
}

// SendRaw submits an already-encoded RFC-5322 message onto threadID and
// returns the id Gmail assigned to it.
func (a *Adapter) SendRaw(ctx context.Context, accessToken, raw, threadID string) (string, error) {
	svc, err := a.getService(ctx, accessToken)
	if err != nil {
		return "", apperr.SendFailed(err)
	}

	gmsg := &gmailapi.Message{
		Raw:      raw,
		ThreadId: threadID,
	}

	var sent *gmailapi.Message
	cbErr := a.execute(func() error {
		var apiErr error
		sent, apiErr = svc.Users.Messages.Send("me", gmsg).Context(ctx).Do()
		return apiErr
	})
	if cbErr != nil {
		return "", apperr.SendFailed(providerError(cbErr))
	}
	if sent == nil || sent.Id == "" {
		return "", apperr.SendFailed(fmt.Errorf("provider returned no message id"))
	}
	return sent.Id, nil
}

// execute runs an API call through the circuit breaker. Client errors
// (4xx) never trip the breaker; only server-side failures count.
func (a *Adapter) execute(fn func() error) error {
	_, err := a.cb.Execute(func() (interface{}, error) {
		if err := fn(); err != nil {
			if apiErr, ok := err.(*googleapi.Error); ok {
				switch apiErr.Code {
				case 500, 502, 503, 429:
					return nil, err
				case 400, 401, 403, 404:
					return nil, &nonCircuitError{err: err}
				}
			}
			return nil, err
		}
		return nil, nil
	})

	if nce, ok := err.(*nonCircuitError); ok {
		return nce.err
	}
	return err
}

// nonCircuitError wraps errors that should not trip the circuit breaker.
type nonCircuitError struct {
	err error
}

func (e *nonCircuitError) Error() string {
	return e.err.Error()
}

// providerError keeps the provider's raw response body on API errors so
// the surfaced message matches what Gmail actually said.
func providerError(err error) error {
	if apiErr, ok := err.(*googleapi.Error); ok && apiErr.Body != "" {
		return fmt.Errorf("gmail api status %d: %s", apiErr.Code, apiErr.Body)
	}
	return err
}

// Ensure Adapter implements out.MailProvider
var _ out.MailProvider = (*Adapter)(nil)
