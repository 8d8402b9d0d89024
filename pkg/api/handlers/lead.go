package handlers

import (
	stderrors "errors"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/leadforge/leadforge/pkg/api/errors"
	"github.com/leadforge/leadforge/pkg/leads"
	"github.com/leadforge/leadforge/pkg/scoring"
)

// LeadHandler handles lead CRUD and search endpoints
type LeadHandler struct {
	service   *leads.Service
	scoring   *scoring.Service
	validator *validator.Validate
}

// NewLeadHandler creates a new lead handler
func NewLeadHandler(service *leads.Service, scoringSvc *scoring.Service) *LeadHandler {
	return &LeadHandler{
		service:   service,
		scoring:   scoringSvc,
		validator: validator.New(),
	}
}

// Search handles listing leads with filters and pagination
func (h *LeadHandler) Search(c echo.Context) error {
	var req leads.SearchRequest
	if err := c.Bind(&req); err != nil {
		return errors.ValidationError(c, err)
	}

	resp, err := h.service.Search(c.Request().Context(), req)
	if err != nil {
		return errors.DatabaseError(c, err)
	}

	return c.JSON(http.StatusOK, resp)
}

// Get handles retrieving a single lead with its message history
func (h *LeadHandler) Get(c echo.Context) error {
	id, ok := paramID(c, "id")
	if !ok {
		return errors.BadRequestError(c, "Lead ID must be a positive integer")
	}

	lead, err := h.service.GetByID(c.Request().Context(), id)
	if err != nil {
		if stderrors.Is(err, leads.ErrLeadNotFound) {
			return errors.NotFoundError(c, "lead")
		}
		return errors.DatabaseError(c, err)
	}

	return c.JSON(http.StatusOK, lead)
}

// Create handles creating a new lead
func (h *LeadHandler) Create(c echo.Context) error {
	var req leads.CreateLeadRequest
	if err := c.Bind(&req); err != nil {
		return errors.ValidationError(c, err)
	}
	if err := h.validator.Struct(req); err != nil {
		return errors.ValidationError(c, err)
	}

	lead, err := h.service.Create(c.Request().Context(), req)
	if err != nil {
		return errors.DatabaseError(c, err)
	}

	return c.JSON(http.StatusCreated, lead)
}

// Update handles partial updates to a lead
func (h *LeadHandler) Update(c echo.Context) error {
	id, ok := paramID(c, "id")
	if !ok {
		return errors.BadRequestError(c, "Lead ID must be a positive integer")
	}

	var req leads.UpdateLeadRequest
	if err := c.Bind(&req); err != nil {
		return errors.ValidationError(c, err)
	}
	if err := h.validator.Struct(req); err != nil {
		return errors.ValidationError(c, err)
	}

	lead, err := h.service.Update(c.Request().Context(), id, req)
	if err != nil {
		if stderrors.Is(err, leads.ErrLeadNotFound) {
			return errors.NotFoundError(c, "lead")
		}
		if strings.Contains(err.Error(), "invalid status") {
			return errors.BadRequestError(c, err.Error())
		}
		return errors.DatabaseError(c, err)
	}

	return c.JSON(http.StatusOK, lead)
}

// Delete handles removing a lead and its dependent rows
func (h *LeadHandler) Delete(c echo.Context) error {
	id, ok := paramID(c, "id")
	if !ok {
		return errors.BadRequestError(c, "Lead ID must be a positive integer")
	}

	if err := h.service.Delete(c.Request().Context(), id); err != nil {
		if stderrors.Is(err, leads.ErrLeadNotFound) {
			return errors.NotFoundError(c, "lead")
		}
		return errors.DatabaseError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"success": true,
	})
}

// RecordReply handles logging an inbound reply from a lead
func (h *LeadHandler) RecordReply(c echo.Context) error {
	id, ok := paramID(c, "id")
	if !ok {
		return errors.BadRequestError(c, "Lead ID must be a positive integer")
	}

	var req struct {
		Content string `json:"content" validate:"required"`
	}
	if err := c.Bind(&req); err != nil {
		return errors.ValidationError(c, err)
	}
	if err := h.validator.Struct(req); err != nil {
		return errors.ValidationError(c, err)
	}

	message, err := h.service.RecordReply(c.Request().Context(), id, req.Content)
	if err != nil {
		if stderrors.Is(err, leads.ErrLeadNotFound) {
			return errors.NotFoundError(c, "lead")
		}
		return errors.DatabaseError(c, err)
	}

	return c.JSON(http.StatusCreated, message)
}

// Rescore handles recomputing a single lead's score
func (h *LeadHandler) Rescore(c echo.Context) error {
	id, ok := paramID(c, "id")
	if !ok {
		return errors.BadRequestError(c, "Lead ID must be a positive integer")
	}

	resp, err := h.scoring.UpdateLeadScore(c.Request().Context(), id)
	if err != nil {
		if stderrors.Is(err, scoring.ErrLeadNotFound) {
			return errors.NotFoundError(c, "lead")
		}
		return errors.DatabaseError(c, err)
	}

	return c.JSON(http.StatusOK, resp)
}
