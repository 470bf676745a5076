package http

import (
	"time"

	"drafly_server/core/domain"
	"drafly_server/core/port/in"
	"drafly_server/core/port/out"
	"drafly_server/pkg/apperr"
	"drafly_server/pkg/logger"
	"drafly_server/pkg/response"

	"github.com/gofiber/fiber/v2"
)

const maxEmailListLimit = 100

// emailSummary is the list item shape; bodies are elided to a flag.
type emailSummary struct {
	ID        int64     `json:"id"`
	GmailID   string    `json:"gmail_id"`
	ThreadID  string    `json:"thread_id"`
	Sender    string    `json:"sender"`
	Subject   string    `json:"subject"`
	Snippet   string    `json:"snippet"`
	Labels    []string  `json:"labels"`
	HasBody   bool      `json:"has_body"`
	FetchedAt time.Time `json:"fetched_at"`
}

func toSummary(e *domain.Email) emailSummary {
	return emailSummary{
		ID:        e.ID,
		GmailID:   e.GmailID,
		ThreadID:  e.ThreadID,
		Sender:    e.Sender,
		Subject:   e.Subject,
		Snippet:   e.Snippet,
		Labels:    e.Labels,
		HasBody:   e.HasBody(),
		FetchedAt: e.FetchedAt,
	}
}

type EmailHandler struct {
	emails out.EmailRepository
	ingest in.IngestService
}

func NewEmailHandler(emails out.EmailRepository, ingest in.IngestService) *EmailHandler {
	return &EmailHandler{
		emails: emails,
		ingest: ingest,
	}
}

func (h *EmailHandler) Register(app fiber.Router) {
	app.Get("/emails", h.List)
	app.Get("/emails/:id", h.Get)

	internal := app.Group("/internal")
	internal.Post("/fetch-unread", h.FetchUnread)
	internal.Post("/fetch/:gmail_id", h.FetchOne)
}

// List returns the caller's stored messages, newest first.
func (h *EmailHandler) List(c *fiber.Ctx) error {
	identity, err := GetIdentity(c)
	if err != nil {
		return handleError(c, apperr.Unauthorized("unauthorized"))
	}

	limit := c.QueryInt("limit", maxEmailListLimit)
	if limit <= 0 || limit > maxEmailListLimit {
		limit = maxEmailListLimit
	}

	emails, err := h.emails.ListRecent(c.Context(), identity, limit)
	if err != nil {
		return handleError(c, apperr.StorageError("list emails", err))
	}

	summaries := make([]emailSummary, len(emails))
	for i, e := range emails {
		summaries[i] = toSummary(e)
	}
	return response.OKWithMeta(c, summaries, &response.Meta{Total: len(summaries)})
}

// Get returns one owned message in full, bodies included.
func (h *EmailHandler) Get(c *fiber.Ctx) error {
	identity, err := GetIdentity(c)
	if err != nil {
		return handleError(c, apperr.Unauthorized("unauthorized"))
	}

	id, err := paramID(c, "id")
	if err != nil {
		return handleError(c, err)
	}

	email, err := h.emails.GetByID(c.Context(), id, identity)
	if err != nil {
		if err == out.ErrNotFound {
			return handleError(c, apperr.NotFound("email"))
		}
		return handleError(c, apperr.StorageError("lookup email", err))
	}
	return response.OK(c, email)
}

// FetchUnread ingests the caller's current unread inbox page.
func (h *EmailHandler) FetchUnread(c *fiber.Ctx) error {
	identity, err := GetIdentity(c)
	if err != nil {
		return handleError(c, apperr.Unauthorized("unauthorized"))
	}

	report, err := h.ingest.ListUnreadAndFetch(c.Context(), identity)
	if err != nil {
		logger.WithError(err).WithField("identity", identity).Error("unread fetch failed")
		return handleError(c, err)
	}
	return response.OK(c, report)
}

// FetchOne ingests a single message by its provider id.
func (h *EmailHandler) FetchOne(c *fiber.Ctx) error {
	identity, err := GetIdentity(c)
	if err != nil {
		return handleError(c, apperr.Unauthorized("unauthorized"))
	}

	gmailID := c.Params("gmail_id")
	if gmailID == "" {
		return handleError(c, apperr.BadRequest("missing gmail_id"))
	}

	if err := h.ingest.FetchAndStore(c.Context(), identity, gmailID); err != nil {
		logger.WithError(err).WithField("identity", identity).Error("message fetch failed")
		return handleError(c, err)
	}
	return response.OK(c, fiber.Map{"gmail_id": gmailID, "stored": true})
}
