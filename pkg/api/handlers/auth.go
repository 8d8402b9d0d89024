package handlers

import (
	stderrors "errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/leadforge/leadforge/pkg/api/errors"
	"github.com/leadforge/leadforge/pkg/auth"
	"github.com/leadforge/leadforge/pkg/metrics"
)

// AuthHandler handles the operator login endpoint
type AuthHandler struct {
	service   *auth.Service
	metrics   *metrics.Metrics
	validator *validator.Validate
}

// NewAuthHandler creates a new auth handler. metrics may be nil.
func NewAuthHandler(service *auth.Service, m *metrics.Metrics) *AuthHandler {
	return &AuthHandler{
		service:   service,
		metrics:   m,
		validator: validator.New(),
	}
}

// LoginRequest is the operator login payload.
type LoginRequest struct {
	Password string `json:"password" validate:"required"`
}

// Login handles exchanging the operator password for a bearer token
func (h *AuthHandler) Login(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return errors.ValidationError(c, err)
	}
	if err := h.validator.Struct(req); err != nil {
		return errors.ValidationError(c, err)
	}

	token, err := h.service.Login(req.Password)
	if err != nil {
		if h.metrics != nil {
			h.metrics.RecordLoginAttempt(false)
		}
		if stderrors.Is(err, auth.ErrInvalidCredentials) {
			return errors.UnauthorizedError(c)
		}
		return errors.InternalError(c, err)
	}

	if h.metrics != nil {
		h.metrics.RecordLoginAttempt(true)
	}

	return c.JSON(http.StatusOK, map[string]string{
		"token": token,
	})
}
