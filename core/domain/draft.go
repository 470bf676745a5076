package domain

import "time"

// DraftStatus is the lifecycle state of a generated reply.
type DraftStatus string

const (
	DraftStatusDraft    DraftStatus = "draft"
	DraftStatusApproved DraftStatus = "approved"
	DraftStatusSent     DraftStatus = "sent"
)

// Valid reports whether s is a known status.
func (s DraftStatus) Valid() bool {
	switch s {
	case DraftStatusDraft, DraftStatusApproved, DraftStatusSent:
		return true
	}
	return false
}

// CanApprove reports whether a draft in state s may transition to approved.
// Re-approving an approved draft is harmless.
func (s DraftStatus) CanApprove() bool {
	return s == DraftStatusDraft || s == DraftStatusApproved
}

// CanSend reports whether a draft in state s may be dispatched.
func (s DraftStatus) CanSend() bool {
	return s == DraftStatusApproved
}

// PlaceholderContent is stored when generation fails or returns nothing;
// a failed generation never blocks draft creation.
const PlaceholderContent = "Unable to generate draft."

// Draft is a candidate reply to an ingested email.
type Draft struct {
	ID          int64       `json:"id"`
	EmailID     int64       `json:"email_id"`
	OwnerEmail  string      `json:"user_email"`
	Content     string      `json:"content"`
	Tone        string      `json:"tone"`
	Status      DraftStatus `json:"status"`
	SentGmailID string      `json:"sent_gmail_id,omitempty"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}
