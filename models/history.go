package models

import "time"

// NetworkSnapshot is a network-level trend point persisted for
// historical charts.
type NetworkSnapshot struct {
	Timestamp         time.Time `json:"timestamp" bson:"timestamp"`
	TotalNodes        int       `json:"total_nodes" bson:"total_nodes"`
	OnlineNodes       int       `json:"online_nodes" bson:"online_nodes"`
	OfflineNodes      int       `json:"offline_nodes" bson:"offline_nodes"`
	TotalStorageBytes int64     `json:"total_storage_bytes" bson:"total_storage_bytes"`
	UsedStorageBytes  int64     `json:"used_storage_bytes" bson:"used_storage_bytes"`
	AverageLatency    float64   `json:"average_latency" bson:"average_latency"`
	AveragePeerCount  float64   `json:"average_peer_count" bson:"average_peer_count"`
	AverageHealth     float64   `json:"average_health" bson:"average_health"`
	ValidatorCount    int       `json:"validator_count" bson:"validator_count"`
}

// NodeTrendPoint is a single node's state persisted for trend charts.
type NodeTrendPoint struct {
	Timestamp   time.Time `json:"timestamp" bson:"timestamp"`
	NodeID      string    `json:"node_id" bson:"node_id"`
	Status      string    `json:"status" bson:"status"`
	Latency     float64   `json:"latency" bson:"latency"`
	PeerCount   int       `json:"peer_count" bson:"peer_count"`
	StorageUsed int64     `json:"storage_used" bson:"storage_used"`
	HealthScore int       `json:"health_score" bson:"health_score"`
	RiskScore   int       `json:"risk_score" bson:"risk_score"`
}
