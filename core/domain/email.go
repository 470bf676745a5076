package domain

import "time"

// Email is one ingested mailbox message, keyed by the provider's message id.
// Re-fetching the same GmailID overwrites the mutable fields in place.
type Email struct {
	ID           int64     `json:"id"`
	GmailID      string    `json:"gmail_id"`
	ThreadID     string    `json:"thread_id"`
	OwnerEmail   string    `json:"user_email"`
	Sender       string    `json:"sender"`
	ToRecipients string    `json:"to_recipients"`
	Subject      string    `json:"subject"`
	Snippet      string    `json:"snippet"`
	BodyText     string    `json:"body_text"`
	BodyHTML     string    `json:"body_html"`
	Labels       []string  `json:"labels"`
	FetchedAt    time.Time `json:"fetched_at"`
}

// HasBody reports whether any body content was extracted.
func (e *Email) HasBody() bool {
	return e.BodyText != "" || e.BodyHTML != ""
}
