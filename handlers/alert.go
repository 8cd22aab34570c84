package handlers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"pnodewatch/services"
)

// AlertHandlers manages alert lifecycle endpoints. Alerts are created by
// the detection pipeline, not over HTTP; clients only read, acknowledge
// and resolve them.
type AlertHandlers struct {
	alertService *services.AlertService
}

func NewAlertHandlers(alertService *services.AlertService) *AlertHandlers {
	return &AlertHandlers{
		alertService: alertService,
	}
}

// ListAlerts returns all alerts, optionally filtered by ?state=.
func (ah *AlertHandlers) ListAlerts(c echo.Context) error {
	alerts := ah.alertService.ListAlerts(c.QueryParam("state"))
	return c.JSON(http.StatusOK, alerts)
}

// GetAlert returns one alert by ID.
func (ah *AlertHandlers) GetAlert(c echo.Context) error {
	id := c.Param("id")

	alert, found := ah.alertService.GetAlert(id)
	if !found {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "alert not found"})
	}

	return c.JSON(http.StatusOK, alert)
}

// AcknowledgeAlert marks an alert as acknowledged.
func (ah *AlertHandlers) AcknowledgeAlert(c echo.Context) error {
	id := c.Param("id")

	if err := ah.alertService.Acknowledge(id); err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": err.Error()})
	}

	alert, _ := ah.alertService.GetAlert(id)
	return c.JSON(http.StatusOK, alert)
}

// ResolveAlert closes an alert.
func (ah *AlertHandlers) ResolveAlert(c echo.Context) error {
	id := c.Param("id")

	if err := ah.alertService.Resolve(id); err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": err.Error()})
	}

	alert, _ := ah.alertService.GetAlert(id)
	return c.JSON(http.StatusOK, alert)
}

// GetAlertHistory returns fired-notification records, newest first.
func (ah *AlertHandlers) GetAlertHistory(c echo.Context) error {
	limit := 100
	if raw := c.QueryParam("limit"); raw != "" {
		if l, err := strconv.Atoi(raw); err == nil {
			limit = l
		}
	}

	history := ah.alertService.GetHistory(limit)
	return c.JSON(http.StatusOK, history)
}
