package handlers

import (
	stderrors "errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/leadforge/leadforge/pkg/ai/llm"
	"github.com/leadforge/leadforge/pkg/api/errors"
	"github.com/leadforge/leadforge/pkg/outreach"
)

// OutreachHandler handles single-lead and bulk outreach endpoints
type OutreachHandler struct {
	service   *outreach.Service
	validator *validator.Validate
}

// NewOutreachHandler creates a new outreach handler
func NewOutreachHandler(service *outreach.Service) *OutreachHandler {
	return &OutreachHandler{
		service:   service,
		validator: validator.New(),
	}
}

// Pitch handles generating and sending a cold pitch to one lead. A
// generation failure is surfaced as a gateway error so the operator can
// retry; it never falls back to canned content.
func (h *OutreachHandler) Pitch(c echo.Context) error {
	id, ok := paramID(c, "id")
	if !ok {
		return errors.BadRequestError(c, "Lead ID must be a positive integer")
	}

	message, err := h.service.SendPitch(c.Request().Context(), id)
	if err != nil {
		return h.sendError(c, err)
	}

	return c.JSON(http.StatusOK, message)
}

// FollowUp handles generating and sending a follow-up to one lead
func (h *OutreachHandler) FollowUp(c echo.Context) error {
	id, ok := paramID(c, "id")
	if !ok {
		return errors.BadRequestError(c, "Lead ID must be a positive integer")
	}

	message, err := h.service.SendFollowUp(c.Request().Context(), id)
	if err != nil {
		return h.sendError(c, err)
	}

	return c.JSON(http.StatusOK, message)
}

// BulkEmail handles sending a generated pitch to each listed lead. The
// response is always 200 with an embedded tally; per-lead failures are
// collected, not fatal.
func (h *OutreachHandler) BulkEmail(c echo.Context) error {
	var req leadIDsRequest
	if err := c.Bind(&req); err != nil {
		return errors.ValidationError(c, err)
	}
	if err := h.validator.Struct(req); err != nil {
		return errors.ValidationError(c, err)
	}

	result, err := h.service.BulkEmail(c.Request().Context(), req.LeadIDs)
	if err != nil {
		return errors.InternalError(c, err)
	}

	return c.JSON(http.StatusOK, result)
}

func (h *OutreachHandler) sendError(c echo.Context, err error) error {
	switch {
	case stderrors.Is(err, outreach.ErrLeadNotFound):
		return errors.NotFoundError(c, "lead")
	case stderrors.Is(err, outreach.ErrNoEmail):
		return errors.BadRequestError(c, "Lead has no email address")
	case stderrors.Is(err, llm.ErrGeneration):
		return errors.GenerationError(c, err)
	default:
		return errors.InternalError(c, err)
	}
}
