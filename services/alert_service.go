package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"pnodewatch/models"
)

const maxAlertHistory = 1000

// AlertService materializes detected anomalies into alerts with a
// lifecycle. At most one active alert exists per node+type; re-detections
// inside the dedup window refresh the existing alert instead of firing
// notifications again.
type AlertService struct {
	alerts      map[string]*models.Alert // keyed by node_id:type
	history     []*models.AlertHistoryEntry
	alertsMutex sync.RWMutex

	mongo      *MongoDBService
	discordBot *DiscordBotService

	webhookURL  string
	dedupWindow time.Duration
	httpClient  *http.Client
}

func NewAlertService(mongo *MongoDBService, discordBot *DiscordBotService, webhookURL string, dedupWindow time.Duration) *AlertService {
	if dedupWindow <= 0 {
		dedupWindow = 60 * time.Minute
	}
	return &AlertService{
		alerts:      make(map[string]*models.Alert),
		history:     make([]*models.AlertHistoryEntry, 0),
		mongo:       mongo,
		discordBot:  discordBot,
		webhookURL:  webhookURL,
		dedupWindow: dedupWindow,
		httpClient:  &http.Client{Timeout: 10 * time.Second},
	}
}

// ProcessAnomalies ingests one detection cycle's anomalies. New node+type
// pairs become active alerts and fire notifications; pairs seen again
// within the dedup window only get their timestamp refreshed. Resolved
// alerts whose anomaly reappears are reopened.
func (as *AlertService) ProcessAnomalies(anomalies map[string][]models.Anomaly) {
	now := time.Now()

	for nodeID, list := range anomalies {
		for _, anomaly := range list {
			key := alertKey(nodeID, anomaly.Type)

			as.alertsMutex.Lock()
			existing, exists := as.alerts[key]
			if exists && existing.State != models.AlertStateResolved && now.Sub(existing.UpdatedAt) < as.dedupWindow {
				existing.UpdatedAt = now
				existing.Message = anomaly.Message
				existing.Severity = anomaly.Severity
				as.alertsMutex.Unlock()
				continue
			}

			alert := &models.Alert{
				ID:        fmt.Sprintf("alert_%d", now.UnixNano()),
				NodeID:    nodeID,
				Type:      anomaly.Type,
				Severity:  anomaly.Severity,
				Message:   anomaly.Message,
				State:     models.AlertStateActive,
				CreatedAt: now,
				UpdatedAt: now,
				Details:   anomaly.Details,
			}
			as.alerts[key] = alert
			as.alertsMutex.Unlock()

			as.fireAlert(alert)
		}
	}
}

// GetAlert retrieves a specific alert by ID.
func (as *AlertService) GetAlert(id string) (*models.Alert, bool) {
	as.alertsMutex.RLock()
	defer as.alertsMutex.RUnlock()

	for _, a := range as.alerts {
		if a.ID == id {
			return a, true
		}
	}
	return nil, false
}

// ListAlerts returns all alerts, optionally filtered by state.
func (as *AlertService) ListAlerts(state string) []*models.Alert {
	as.alertsMutex.RLock()
	defer as.alertsMutex.RUnlock()

	alerts := make([]*models.Alert, 0, len(as.alerts))
	for _, a := range as.alerts {
		if state != "" && a.State != state {
			continue
		}
		alerts = append(alerts, a)
	}
	return alerts
}

// Acknowledge marks an active alert as acknowledged.
func (as *AlertService) Acknowledge(id string) error {
	return as.transition(id, models.AlertStateAcknowledged)
}

// Resolve closes an alert. A resolved alert's node+type slot is free to
// fire again on the next detection.
func (as *AlertService) Resolve(id string) error {
	return as.transition(id, models.AlertStateResolved)
}

func (as *AlertService) transition(id, state string) error {
	as.alertsMutex.Lock()
	defer as.alertsMutex.Unlock()

	for _, a := range as.alerts {
		if a.ID == id {
			if a.State == models.AlertStateResolved {
				return fmt.Errorf("alert already resolved")
			}
			a.State = state
			a.UpdatedAt = time.Now()
			return nil
		}
	}
	return fmt.Errorf("alert not found")
}

// GetHistory returns the most recent fired-notification records, newest first.
func (as *AlertService) GetHistory(limit int) []*models.AlertHistoryEntry {
	as.alertsMutex.RLock()
	defer as.alertsMutex.RUnlock()

	if limit <= 0 || limit > len(as.history) {
		limit = len(as.history)
	}

	start := len(as.history) - limit
	result := make([]*models.AlertHistoryEntry, limit)
	copy(result, as.history[start:])

	// Reverse to get newest first
	for i, j := 0, len(result)-1; i < j; i, j = i+1, j-1 {
		result[i], result[j] = result[j], result[i]
	}

	return result
}

func (as *AlertService) fireAlert(alert *models.Alert) {
	log.Printf("Alert triggered: %s on node %s (%s)", alert.Type, alert.NodeID, alert.Severity)

	if as.webhookURL != "" {
		success := as.sendWebhook(alert)
		as.recordHistory(alert, "webhook", success)
	}

	if as.discordBot.Enabled() {
		success := as.sendDiscordAlert(alert)
		as.recordHistory(alert, "discord", success)
	}
}

func (as *AlertService) recordHistory(alert *models.Alert, action string, success bool) {
	entry := &models.AlertHistoryEntry{
		ID:        fmt.Sprintf("hist_%d", time.Now().UnixNano()),
		AlertID:   alert.ID,
		NodeID:    alert.NodeID,
		Type:      alert.Type,
		Severity:  alert.Severity,
		Timestamp: time.Now(),
		Action:    action,
		Success:   success,
	}

	as.alertsMutex.Lock()
	as.history = append(as.history, entry)
	if len(as.history) > maxAlertHistory {
		as.history = as.history[len(as.history)-maxAlertHistory:]
	}
	as.alertsMutex.Unlock()

	if as.mongo.Enabled() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := as.mongo.InsertAlertHistory(ctx, entry); err != nil {
			log.Printf("Failed to persist alert history to MongoDB: %v", err)
		}
	}
}

func (as *AlertService) sendWebhook(alert *models.Alert) bool {
	payload := map[string]interface{}{
		"alert_id":  alert.ID,
		"node_id":   alert.NodeID,
		"type":      alert.Type,
		"severity":  alert.Severity,
		"message":   alert.Message,
		"timestamp": alert.CreatedAt,
		"details":   alert.Details,
	}

	jsonData, _ := json.Marshal(payload)

	resp, err := as.httpClient.Post(as.webhookURL, "application/json", bytes.NewBuffer(jsonData))
	if err != nil {
		log.Printf("Webhook error: %v", err)
		return false
	}
	defer resp.Body.Close()

	return resp.StatusCode >= 200 && resp.StatusCode < 300
}

func (as *AlertService) sendDiscordAlert(alert *models.Alert) bool {
	if err := as.discordBot.SendAlert(alert); err != nil {
		log.Printf("Discord alert error: %v", err)
		return false
	}
	return true
}

func alertKey(nodeID, anomalyType string) string {
	return nodeID + ":" + anomalyType
}
