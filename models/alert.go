package models

import "time"

// Alert lifecycle states. Alerts are materialized from detected
// anomalies by the alert service; the analytics core only classifies.
const (
	AlertStateActive       = "active"
	AlertStateAcknowledged = "acknowledged"
	AlertStateResolved     = "resolved"
)

// Alert is a materialized anomaly with lifecycle. One alert exists per
// node+type at a time; re-detections inside the dedup window bump
// UpdatedAt instead of creating a new alert.
type Alert struct {
	ID        string    `json:"id" bson:"_id"`
	NodeID    string    `json:"node_id" bson:"node_id"`
	Type      string    `json:"type" bson:"type"`
	Severity  string    `json:"severity" bson:"severity"`
	Message   string    `json:"message" bson:"message"`
	State     string    `json:"state" bson:"state"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`

	Details map[string]interface{} `json:"details,omitempty" bson:"details,omitempty"`
}

// AlertHistoryEntry records a fired notification for audit.
type AlertHistoryEntry struct {
	ID        string    `json:"id" bson:"_id"`
	AlertID   string    `json:"alert_id" bson:"alert_id"`
	NodeID    string    `json:"node_id" bson:"node_id"`
	Type      string    `json:"type" bson:"type"`
	Severity  string    `json:"severity" bson:"severity"`
	Timestamp time.Time `json:"timestamp" bson:"timestamp"`
	Action    string    `json:"action" bson:"action"` // "webhook", "discord"
	Success   bool      `json:"success" bson:"success"`
}
