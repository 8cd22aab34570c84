package models

import "time"

// Node status values as reported by the pRPC bridge.
const (
	StatusOnline  = "online"
	StatusOffline = "offline"
	StatusUnknown = "unknown"
)

// NodeRecord is a point-in-time view of one pNode, built once per poll
// cycle. Records are never mutated after enrichment; the analytics
// pipeline treats them as read-only input.
//
// Zero values mean "not reported": a latency of 0 is treated as unknown
// latency, a capacity of 0 as unknown storage, an uptime of 0 as unknown
// uptime. ID, Status, PeerCount and LastSeen are always populated.
type NodeRecord struct {
	ID     string `json:"id"`
	Pubkey string `json:"pubkey,omitempty"`
	IP     string `json:"ip,omitempty"`

	Status    string    `json:"status"`
	PeerCount int       `json:"peer_count"`
	LastSeen  time.Time `json:"last_seen"`

	Latency         float64 `json:"latency,omitempty"` // ms
	StorageUsed     int64   `json:"storage_used,omitempty"`
	StorageCapacity int64   `json:"storage_capacity,omitempty"`
	Uptime          int64   `json:"uptime,omitempty"` // seconds

	SoftwareVersion string    `json:"software_version,omitempty"`
	Location        *Location `json:"location,omitempty"`

	// Enrichment, set before the record enters the analytics pipeline.
	IsValidator     bool   `json:"is_validator,omitempty"`
	VersionStatus   string `json:"version_status,omitempty"`
	IsUpgradeNeeded bool   `json:"is_upgrade_needed,omitempty"`
}

// Location is best-effort geo data, either self-reported or inferred
// from the node's IP.
type Location struct {
	Country string  `json:"country,omitempty"`
	Region  string  `json:"region,omitempty"`
	City    string  `json:"city,omitempty"`
	Lat     float64 `json:"lat,omitempty"`
	Lon     float64 `json:"lon,omitempty"`
}

// HasLatency reports whether the node reported a latency sample this cycle.
func (n *NodeRecord) HasLatency() bool { return n.Latency > 0 }

// HasStorage reports whether both storage figures are known.
func (n *NodeRecord) HasStorage() bool { return n.StorageCapacity > 0 }

// StorageUsagePercent returns used/capacity*100, or 0 when capacity is unknown.
func (n *NodeRecord) StorageUsagePercent() float64 {
	if n.StorageCapacity <= 0 {
		return 0
	}
	return float64(n.StorageUsed) / float64(n.StorageCapacity) * 100
}

// MetricSnapshot is the minimal per-node projection kept in rolling
// history. One snapshot is created per node per poll cycle.
type MetricSnapshot struct {
	Timestamp       time.Time `json:"timestamp"`
	Status          string    `json:"status"`
	PeerCount       int       `json:"peer_count"`
	Latency         float64   `json:"latency,omitempty"`
	StorageUsed     int64     `json:"storage_used,omitempty"`
	StorageCapacity int64     `json:"storage_capacity,omitempty"`
	Uptime          int64     `json:"uptime,omitempty"`
}
