package handlers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"pnodewatch/services"
)

// HistoryHandlers manages historical data endpoints
type HistoryHandlers struct {
	historyService *services.HistoryService
}

func NewHistoryHandlers(historyService *services.HistoryService) *HistoryHandlers {
	return &HistoryHandlers{
		historyService: historyService,
	}
}

// GetNetworkHistory returns network snapshots for the last N hours.
func (hh *HistoryHandlers) GetNetworkHistory(c echo.Context) error {
	hours := parseHours(c.QueryParam("hours"))
	snapshots := hh.historyService.GetNetworkHistory(hours)
	return c.JSON(http.StatusOK, snapshots)
}

// GetNodeTrend returns trend points for one node.
func (hh *HistoryHandlers) GetNodeTrend(c echo.Context) error {
	nodeID := c.Param("id")
	hours := parseHours(c.QueryParam("hours"))

	points := hh.historyService.GetNodeTrend(nodeID, hours)
	if len(points) == 0 {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "no history for this node"})
	}

	return c.JSON(http.StatusOK, points)
}

// GetLatencyDistribution returns latency histogram data.
func (hh *HistoryHandlers) GetLatencyDistribution(c echo.Context) error {
	distribution := hh.historyService.GetLatencyDistribution()
	return c.JSON(http.StatusOK, distribution)
}

func parseHours(raw string) int {
	hours := 24
	if raw != "" {
		if h, err := strconv.Atoi(raw); err == nil && h > 0 {
			hours = h
		}
	}
	return hours
}
