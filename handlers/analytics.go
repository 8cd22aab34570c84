package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"pnodewatch/analytics"
	"pnodewatch/models"
	"pnodewatch/services"
)

// AnalyticsHandlers serves the per-node scoring output of the latest
// evaluation cycle.
type AnalyticsHandlers struct {
	cache *services.CacheService
}

func NewAnalyticsHandlers(cache *services.CacheService) *AnalyticsHandlers {
	return &AnalyticsHandlers{cache: cache}
}

// GetHealthScores returns all health scores keyed by node ID.
func (ah *AnalyticsHandlers) GetHealthScores(c echo.Context) error {
	scores, found := ah.cache.GetHealthScores(true)
	if !found {
		return c.JSON(http.StatusServiceUnavailable, ErrorResponse{
			Error: "Health scores temporarily unavailable",
		})
	}
	return c.JSON(http.StatusOK, scores)
}

// GetNodeHealth returns one node's health score.
func (ah *AnalyticsHandlers) GetNodeHealth(c echo.Context) error {
	id := c.Param("id")

	scores, found := ah.cache.GetHealthScores(true)
	if !found {
		return c.JSON(http.StatusServiceUnavailable, ErrorResponse{
			Error: "Health scores temporarily unavailable",
		})
	}

	score, ok := scores[id]
	if !ok {
		return c.JSON(http.StatusNotFound, ErrorResponse{Error: "Node not found"})
	}
	return c.JSON(http.StatusOK, score)
}

// GetAnomalies returns the latest cycle's anomalies keyed by node ID.
// Nodes with no anomalies are absent.
func (ah *AnalyticsHandlers) GetAnomalies(c echo.Context) error {
	anomalies, found := ah.cache.GetAnomalies(true)
	if !found {
		return c.JSON(http.StatusServiceUnavailable, ErrorResponse{
			Error: "Anomaly data temporarily unavailable",
		})
	}
	return c.JSON(http.StatusOK, anomalies)
}

// GetNodeAnomalies returns one node's anomalies, empty list when clean.
func (ah *AnalyticsHandlers) GetNodeAnomalies(c echo.Context) error {
	id := c.Param("id")

	anomalies, found := ah.cache.GetAnomalies(true)
	if !found {
		return c.JSON(http.StatusServiceUnavailable, ErrorResponse{
			Error: "Anomaly data temporarily unavailable",
		})
	}

	list := anomalies[id]
	if list == nil {
		list = []models.Anomaly{}
	}
	return c.JSON(http.StatusOK, list)
}

// GetRiskScores returns all risk scores keyed by node ID.
func (ah *AnalyticsHandlers) GetRiskScores(c echo.Context) error {
	risks, found := ah.cache.GetRiskScores(true)
	if !found {
		return c.JSON(http.StatusServiceUnavailable, ErrorResponse{
			Error: "Risk scores temporarily unavailable",
		})
	}
	return c.JSON(http.StatusOK, risks)
}

// GetNodeRisk returns one node's risk score with its label.
func (ah *AnalyticsHandlers) GetNodeRisk(c echo.Context) error {
	id := c.Param("id")

	risks, found := ah.cache.GetRiskScores(true)
	if !found {
		return c.JSON(http.StatusServiceUnavailable, ErrorResponse{
			Error: "Risk scores temporarily unavailable",
		})
	}

	score, ok := risks[id]
	if !ok {
		return c.JSON(http.StatusNotFound, ErrorResponse{Error: "Node not found"})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"node_id": id,
		"score":   score,
		"level":   analytics.RiskLabel(score),
	})
}
