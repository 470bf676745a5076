package out

import "context"

// ReplyGenerator produces a reply body for an email. It is a pure prompt-in,
// text-out collaborator; callers substitute a placeholder when it fails.
type ReplyGenerator interface {
	GenerateReply(ctx context.Context, body, sender, subject, tone string) (string, error)
}
