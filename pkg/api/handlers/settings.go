package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/leadforge/leadforge/pkg/api/errors"
	"github.com/leadforge/leadforge/pkg/settings"
)

// SettingsHandler handles the operator settings endpoints
type SettingsHandler struct {
	service *settings.Service
}

// NewSettingsHandler creates a new settings handler
func NewSettingsHandler(service *settings.Service) *SettingsHandler {
	return &SettingsHandler{service: service}
}

// Get handles returning all settings as a key/value map
func (h *SettingsHandler) Get(c echo.Context) error {
	all, err := h.service.GetAll(c.Request().Context())
	if err != nil {
		return errors.DatabaseError(c, err)
	}

	return c.JSON(http.StatusOK, all)
}

// Update handles the bulk settings upsert. Keys not present in the body
// are left untouched.
func (h *SettingsHandler) Update(c echo.Context) error {
	var req map[string]string
	if err := c.Bind(&req); err != nil {
		return errors.ValidationError(c, err)
	}
	if len(req) == 0 {
		return errors.BadRequestError(c, "At least one setting is required")
	}

	if err := h.service.BulkUpsert(c.Request().Context(), req); err != nil {
		return errors.DatabaseError(c, err)
	}

	all, err := h.service.GetAll(c.Request().Context())
	if err != nil {
		return errors.DatabaseError(c, err)
	}

	return c.JSON(http.StatusOK, all)
}
