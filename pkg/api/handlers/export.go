package handlers

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/leadforge/leadforge/pkg/api/errors"
	"github.com/leadforge/leadforge/pkg/export"
	"github.com/leadforge/leadforge/pkg/metrics"
)

// ExportHandler handles lead export downloads
type ExportHandler struct {
	service *export.Service
	metrics *metrics.Metrics
}

// NewExportHandler creates a new export handler. metrics may be nil.
func NewExportHandler(service *export.Service, m *metrics.Metrics) *ExportHandler {
	return &ExportHandler{service: service, metrics: m}
}

// Leads handles streaming a filtered lead export in the requested format
func (h *ExportHandler) Leads(c echo.Context) error {
	format := export.FormatCSV
	switch c.QueryParam("format") {
	case "", "csv":
	case "xlsx", "excel":
		format = export.FormatExcel
	default:
		return errors.BadRequestError(c, "Format must be csv or xlsx")
	}

	var filter export.Filter
	if err := c.Bind(&filter); err != nil {
		return errors.ValidationError(c, err)
	}

	var buf bytes.Buffer
	if _, err := h.service.Export(c.Request().Context(), format, filter, &buf); err != nil {
		return errors.InternalError(c, err)
	}

	contentType := "text/csv"
	if format == export.FormatExcel {
		contentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}

	if h.metrics != nil {
		h.metrics.RecordExportCreated()
	}

	c.Response().Header().Set(echo.HeaderContentDisposition,
		fmt.Sprintf(`attachment; filename=%q`, export.Filename(format)))
	return c.Blob(http.StatusOK, contentType, buf.Bytes())
}
