package models

import "time"

// NetworkStats is the aggregate over one poll cycle's node collection.
type NetworkStats struct {
	TotalNodes   int `json:"total_nodes"`
	OnlineNodes  int `json:"online_nodes"`
	OfflineNodes int `json:"offline_nodes"`
	UnknownNodes int `json:"unknown_nodes"`

	TotalStorageBytes int64 `json:"total_storage_bytes"`
	UsedStorageBytes  int64 `json:"used_storage_bytes"`

	// AveragePeerCount is computed only over nodes with at least one
	// peer; AverageLatency only over nodes that reported latency.
	// Both are rounded to 2 decimal places.
	AveragePeerCount float64 `json:"average_peer_count"`
	AverageLatency   float64 `json:"average_latency"`

	VersionDistribution map[string]int `json:"version_distribution"`
	RegionDistribution  map[string]int `json:"region_distribution"`

	ValidatorCount int `json:"validator_count"`

	LastUpdated time.Time `json:"last_updated"`
}
