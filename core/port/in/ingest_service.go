package in

import "context"

// FetchReport summarizes one batch ingestion run. Per-message failures are
// isolated: a bad message never aborts the rest of the page.
type FetchReport struct {
	Listed int      `json:"listed"`
	Stored int      `json:"stored"`
	Failed []string `json:"failed,omitempty"`
}

// IngestService pulls messages from the mail provider into storage.
type IngestService interface {
	// FetchAndStore ingests one message by provider id. Any failure aborts
	// without a partial write.
	FetchAndStore(ctx context.Context, identity, messageID string) error
	// ListUnreadAndFetch ingests the current unread inbox page.
	ListUnreadAndFetch(ctx context.Context, identity string) (*FetchReport, error)
}
