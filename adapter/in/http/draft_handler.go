package http

import (
	"drafly_server/core/port/in"
	"drafly_server/pkg/apperr"
	"drafly_server/pkg/logger"
	"drafly_server/pkg/response"

	"github.com/gofiber/fiber/v2"
)

type generateDraftRequest struct {
	EmailID int64  `json:"email_id"`
	Tone    string `json:"tone"`
}

type editDraftRequest struct {
	Content string `json:"content"`
}

type DraftHandler struct {
	drafts in.DraftService
}

func NewDraftHandler(drafts in.DraftService) *DraftHandler {
	return &DraftHandler{drafts: drafts}
}

func (h *DraftHandler) Register(app fiber.Router) {
	drafts := app.Group("/drafts")
	drafts.Post("/generate", h.Generate)
	drafts.Get("/", h.List)
	drafts.Get("/:id", h.Get)
	drafts.Patch("/:id", h.Edit)
	drafts.Post("/:id/approve", h.Approve)
	drafts.Post("/:id/send", h.Send)
}

// Generate creates a draft reply for a stored email.
func (h *DraftHandler) Generate(c *fiber.Ctx) error {
	identity, err := GetIdentity(c)
	if err != nil {
		return handleError(c, apperr.Unauthorized("unauthorized"))
	}

	var req generateDraftRequest
	if err := c.BodyParser(&req); err != nil {
		return handleError(c, apperr.BadRequest("invalid request body"))
	}
	if req.EmailID <= 0 {
		return handleError(c, apperr.BadRequest("email_id is required"))
	}

	draft, err := h.drafts.Generate(c.Context(), identity, req.EmailID, req.Tone)
	if err != nil {
		logger.WithError(err).WithField("identity", identity).Error("draft generation failed")
		return handleError(c, err)
	}
	return response.Created(c, draft)
}

func (h *DraftHandler) List(c *fiber.Ctx) error {
	identity, err := GetIdentity(c)
	if err != nil {
		return handleError(c, apperr.Unauthorized("unauthorized"))
	}

	drafts, err := h.drafts.List(c.Context(), identity)
	if err != nil {
		return handleError(c, err)
	}
	return response.OKWithMeta(c, drafts, &response.Meta{Total: len(drafts)})
}

func (h *DraftHandler) Get(c *fiber.Ctx) error {
	identity, err := GetIdentity(c)
	if err != nil {
		return handleError(c, apperr.Unauthorized("unauthorized"))
	}

	id, err := paramID(c, "id")
	if err != nil {
		return handleError(c, err)
	}

	draft, err := h.drafts.Get(c.Context(), identity, id)
	if err != nil {
		return handleError(c, err)
	}
	return response.OK(c, draft)
}

// Edit replaces the draft content.
func (h *DraftHandler) Edit(c *fiber.Ctx) error {
	identity, err := GetIdentity(c)
	if err != nil {
		return handleError(c, apperr.Unauthorized("unauthorized"))
	}

	id, err := paramID(c, "id")
	if err != nil {
		return handleError(c, err)
	}

	var req editDraftRequest
	if err := c.BodyParser(&req); err != nil {
		return handleError(c, apperr.BadRequest("invalid request body"))
	}
	if req.Content == "" {
		return handleError(c, apperr.BadRequest("content is required"))
	}

	if err := h.drafts.Edit(c.Context(), identity, id, req.Content); err != nil {
		return handleError(c, err)
	}
	return response.OK(c, fiber.Map{"id": id, "updated": true})
}

// Approve moves a draft to the approved state.
func (h *DraftHandler) Approve(c *fiber.Ctx) error {
	identity, err := GetIdentity(c)
	if err != nil {
		return handleError(c, apperr.Unauthorized("unauthorized"))
	}

	id, err := paramID(c, "id")
	if err != nil {
		return handleError(c, err)
	}

	if err := h.drafts.Approve(c.Context(), identity, id); err != nil {
		return handleError(c, err)
	}
	return response.OK(c, fiber.Map{"id": id, "status": "approved"})
}

// Send dispatches an approved draft as a reply.
func (h *DraftHandler) Send(c *fiber.Ctx) error {
	identity, err := GetIdentity(c)
	if err != nil {
		return handleError(c, apperr.Unauthorized("unauthorized"))
	}

	id, err := paramID(c, "id")
	if err != nil {
		return handleError(c, err)
	}

	sentID, err := h.drafts.Send(c.Context(), identity, id)
	if err != nil {
		logger.WithError(err).WithField("identity", identity).Error("draft send failed")
		return handleError(c, err)
	}
	return response.OK(c, fiber.Map{"id": id, "status": "sent", "sent_gmail_id": sentID})
}
