package handlers

import (
	stderrors "errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/leadforge/leadforge/pkg/api/errors"
	"github.com/leadforge/leadforge/pkg/campaigns"
)

// CampaignHandler handles campaign endpoints
type CampaignHandler struct {
	service   *campaigns.Service
	validator *validator.Validate
}

// NewCampaignHandler creates a new campaign handler
func NewCampaignHandler(service *campaigns.Service) *CampaignHandler {
	return &CampaignHandler{
		service:   service,
		validator: validator.New(),
	}
}

// Create handles creating a new campaign
func (h *CampaignHandler) Create(c echo.Context) error {
	var req campaigns.CreateCampaignRequest
	if err := c.Bind(&req); err != nil {
		return errors.ValidationError(c, err)
	}

	if err := h.validator.Struct(req); err != nil {
		return errors.ValidationError(c, err)
	}

	campaign, err := h.service.Create(c.Request().Context(), req)
	if err != nil {
		return errors.DatabaseError(c, err)
	}

	return c.JSON(http.StatusCreated, campaign)
}

// List handles listing all campaigns with their rollups
func (h *CampaignHandler) List(c echo.Context) error {
	list, err := h.service.List(c.Request().Context())
	if err != nil {
		return errors.DatabaseError(c, err)
	}

	return c.JSON(http.StatusOK, list)
}

// Get handles retrieving a single campaign
func (h *CampaignHandler) Get(c echo.Context) error {
	id, ok := paramID(c, "id")
	if !ok {
		return errors.BadRequestError(c, "Campaign ID must be a positive integer")
	}

	campaign, err := h.service.Get(c.Request().Context(), id)
	if err != nil {
		if stderrors.Is(err, campaigns.ErrCampaignNotFound) {
			return errors.NotFoundError(c, "campaign")
		}
		return errors.DatabaseError(c, err)
	}

	return c.JSON(http.StatusOK, campaign)
}

// Send handles sending a campaign to all pending recipients
func (h *CampaignHandler) Send(c echo.Context) error {
	id, ok := paramID(c, "id")
	if !ok {
		return errors.BadRequestError(c, "Campaign ID must be a positive integer")
	}

	result, err := h.service.Send(c.Request().Context(), id)
	if err != nil {
		if stderrors.Is(err, campaigns.ErrCampaignNotFound) {
			return errors.NotFoundError(c, "campaign")
		}
		return errors.InternalError(c, err)
	}

	// Per-recipient failures live in the tally; the send itself succeeded.
	return c.JSON(http.StatusOK, result)
}

// Preview handles generating draft emails for pending recipients without
// sending anything
func (h *CampaignHandler) Preview(c echo.Context) error {
	id, ok := paramID(c, "id")
	if !ok {
		return errors.BadRequestError(c, "Campaign ID must be a positive integer")
	}

	previews, err := h.service.Preview(c.Request().Context(), id)
	if err != nil {
		if stderrors.Is(err, campaigns.ErrCampaignNotFound) {
			return errors.NotFoundError(c, "campaign")
		}
		return errors.InternalError(c, err)
	}

	if len(previews) == 0 {
		return c.JSON(http.StatusOK, map[string]interface{}{
			"previews": []campaigns.EmailPreview{},
			"message":  "No pending leads to preview",
		})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"previews": previews,
	})
}

// SendPreviews handles sending operator-reviewed previews verbatim
func (h *CampaignHandler) SendPreviews(c echo.Context) error {
	id, ok := paramID(c, "id")
	if !ok {
		return errors.BadRequestError(c, "Campaign ID must be a positive integer")
	}

	var req struct {
		Previews []campaigns.EmailPreview `json:"previews"`
	}
	if err := c.Bind(&req); err != nil {
		return errors.ValidationError(c, err)
	}
	if len(req.Previews) == 0 {
		return errors.BadRequestError(c, "Previews are required")
	}

	result, err := h.service.SendPreviews(c.Request().Context(), id, req.Previews)
	if err != nil {
		if stderrors.Is(err, campaigns.ErrCampaignNotFound) {
			return errors.NotFoundError(c, "campaign")
		}
		return errors.InternalError(c, err)
	}

	return c.JSON(http.StatusOK, result)
}

// AddLeads handles attaching leads to a campaign
func (h *CampaignHandler) AddLeads(c echo.Context) error {
	id, ok := paramID(c, "id")
	if !ok {
		return errors.BadRequestError(c, "Campaign ID must be a positive integer")
	}

	var req leadIDsRequest
	if err := c.Bind(&req); err != nil {
		return errors.ValidationError(c, err)
	}
	if err := h.validator.Struct(req); err != nil {
		return errors.ValidationError(c, err)
	}

	added, err := h.service.AddLeads(c.Request().Context(), id, req.LeadIDs)
	if err != nil {
		if stderrors.Is(err, campaigns.ErrCampaignNotFound) {
			return errors.NotFoundError(c, "campaign")
		}
		return errors.DatabaseError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"success": true,
		"added":   added,
	})
}

// RemoveLead handles detaching a lead from a campaign
func (h *CampaignHandler) RemoveLead(c echo.Context) error {
	id, ok := paramID(c, "id")
	if !ok {
		return errors.BadRequestError(c, "Campaign ID must be a positive integer")
	}
	leadID, ok := paramID(c, "leadId")
	if !ok {
		return errors.BadRequestError(c, "Lead ID must be a positive integer")
	}

	if err := h.service.RemoveLead(c.Request().Context(), id, leadID); err != nil {
		return errors.DatabaseError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"success": true,
	})
}
