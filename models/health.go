package models

import "time"

// Health status labels, derived from the composite score.
const (
	HealthHealthy  = "healthy"
	HealthWarning  = "warning"
	HealthCritical = "critical"
)

// Anomaly types.
const (
	AnomalyLatencySpike    = "latency_spike"
	AnomalyPeerDrop        = "peer_drop"
	AnomalyStorageAnomaly  = "storage_anomaly"
	AnomalyOffline         = "offline"
	AnomalyVersionMismatch = "version_mismatch"
)

// Anomaly severities, lowest to highest.
const (
	SeverityLow      = "low"
	SeverityMedium   = "medium"
	SeverityHigh     = "high"
	SeverityCritical = "critical"
)

// Risk bands. The risk scale is independent from the health scale: a
// HIGH score means LOW risk.
const (
	RiskLow    = "low"
	RiskMedium = "medium"
	RiskHigh   = "high"
)

// HealthScore is the composite health evaluation for one node, derived
// fresh every cycle and never persisted.
type HealthScore struct {
	NodeID  string        `json:"node_id"`
	Score   int           `json:"score"` // 0-100
	Status  string        `json:"status"`
	Factors HealthFactors `json:"factors"`
}

// HealthFactors reports each factor's own sub-score, not the blended
// running score. A factor whose input data is absent reports 100:
// missing data is neutral, not a penalty.
type HealthFactors struct {
	Uptime       int `json:"uptime"`
	Latency      int `json:"latency"`
	PeerCount    int `json:"peer_count"`
	LastSeen     int `json:"last_seen"`
	StorageUsage int `json:"storage_usage"`
}

// Anomaly is a typed, severity-ranked deviation event. Zero or more are
// produced per node per evaluation cycle.
type Anomaly struct {
	NodeID    string                 `json:"node_id"`
	Type      string                 `json:"type"`
	Severity  string                 `json:"severity"`
	Message   string                 `json:"message"`
	Timestamp time.Time              `json:"timestamp"`
	Details   map[string]interface{} `json:"details,omitempty"`
}
