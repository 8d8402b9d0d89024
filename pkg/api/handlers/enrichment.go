package handlers

import (
	"context"
	stderrors "errors"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/leadforge/leadforge/pkg/api/errors"
	"github.com/leadforge/leadforge/pkg/enrichment"
)

// EnrichmentHandler handles lead enrichment endpoints
type EnrichmentHandler struct {
	service   *enrichment.Service
	validator *validator.Validate
}

// NewEnrichmentHandler creates a new enrichment handler
func NewEnrichmentHandler(service *enrichment.Service) *EnrichmentHandler {
	return &EnrichmentHandler{
		service:   service,
		validator: validator.New(),
	}
}

// Enrich handles enriching a single lead from its website
func (h *EnrichmentHandler) Enrich(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 60*time.Second)
	defer cancel()

	id, ok := paramID(c, "id")
	if !ok {
		return errors.BadRequestError(c, "Lead ID must be a positive integer")
	}

	lead, err := h.service.EnrichLead(ctx, id)
	if err != nil {
		switch {
		case stderrors.Is(err, enrichment.ErrLeadNotFound):
			return errors.NotFoundError(c, "lead")
		case stderrors.Is(err, enrichment.ErrNoWebsite):
			return errors.BadRequestError(c, "Lead has no website to enrich from")
		default:
			return errors.InternalError(c, err)
		}
	}

	return c.JSON(http.StatusOK, lead)
}

// BulkEnrich handles enriching multiple leads. Always 200 with a
// per-lead error map; one bad website never fails the batch.
func (h *EnrichmentHandler) BulkEnrich(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Minute)
	defer cancel()

	var req leadIDsRequest
	if err := c.Bind(&req); err != nil {
		return errors.ValidationError(c, err)
	}
	if err := h.validator.Struct(req); err != nil {
		return errors.ValidationError(c, err)
	}

	result, err := h.service.BulkEnrich(ctx, req.LeadIDs)
	if err != nil {
		return errors.InternalError(c, err)
	}

	return c.JSON(http.StatusOK, result)
}

// Stats handles reporting enrichment coverage
func (h *EnrichmentHandler) Stats(c echo.Context) error {
	stats, err := h.service.GetStats(c.Request().Context())
	if err != nil {
		return errors.DatabaseError(c, err)
	}

	return c.JSON(http.StatusOK, stats)
}
