package handlers

import (
	"strconv"

	"github.com/labstack/echo/v4"
)

// leadIDsRequest is the shared body for bulk lead operations.
type leadIDsRequest struct {
	LeadIDs []uint `json:"leadIds" validate:"required,min=1,max=500"`
}

// paramID parses a numeric path parameter. Returns 0 and false when the
// parameter is not a positive integer.
func paramID(c echo.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}
