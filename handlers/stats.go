package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// GetStats returns the latest network-wide aggregates.
func (h *Handler) GetStats(c echo.Context) error {
	stats, stale, found := h.Cache.GetNetworkStats(false)
	if !found {
		stats, stale, found = h.Cache.GetNetworkStats(true)
	}
	if !found {
		return c.JSON(http.StatusServiceUnavailable, ErrorResponse{
			Error: "Network statistics temporarily unavailable",
		})
	}

	if stale {
		c.Response().Header().Set("X-Data-Stale", "true")
		c.Response().Header().Set("Cache-Control", "max-age=30")
	} else {
		c.Response().Header().Set("Cache-Control", "max-age=60")
	}

	return c.JSON(http.StatusOK, stats)
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error string `json:"error"`
}
