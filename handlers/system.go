package handlers

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

var startTime = time.Now()

// GetHealth returns OK
func (h *Handler) GetHealth(c echo.Context) error {
	return c.String(http.StatusOK, "OK")
}

// GetStatus returns backend status
func (h *Handler) GetStatus(c echo.Context) error {
	nodes, _, _ := h.Cache.GetNodes(true)

	status := map[string]interface{}{
		"status":     "running",
		"uptime":     time.Since(startTime).String(),
		"knownNodes": len(nodes),
		"cacheMode":  string(h.Cache.GetCacheMode()),
		"timestamp":  time.Now(),
	}
	return c.JSON(http.StatusOK, status)
}
