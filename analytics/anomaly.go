package analytics

import (
	"fmt"
	"time"

	"pnodewatch/models"
)

// DetectionContext carries the self-relative state a detector may
// consult. History is the node's rolling snapshot series with the
// current cycle's entry already appended as the latest element; Previous
// is a single prior record for detectors that work without history.
type DetectionContext struct {
	History  []models.MetricSnapshot
	Previous *models.NodeRecord
}

// Detector classifies a node's current state into zero or more typed
// anomalies. The two implementations are deliberately separate
// strategies with different thresholds: HistoryDetector backs the live
// dashboard, ThresholdDetector backs server-side ingestion alerting.
// They must not be merged; each path's alert thresholds are relied on
// independently.
type Detector interface {
	Name() string
	Detect(node *models.NodeRecord, ctx DetectionContext) []models.Anomaly
}

// Latency spike boundaries for the history-based detector.
const (
	latencySpikeZ     = 2.5
	latencySpikeZHigh = 3.0
	minLatencySamples = 4
)

// HistoryDetector compares a node against its own rolling history.
type HistoryDetector struct {
	now func() time.Time
}

// NewHistoryDetector returns the self-relative (z-score) detector used
// by the live analytics path.
func NewHistoryDetector() *HistoryDetector {
	return &HistoryDetector{now: time.Now}
}

func (d *HistoryDetector) Name() string { return "history" }

// Detect evaluates every rule independently; a node can emit anything
// from zero anomalies to one of each type in a single cycle.
func (d *HistoryDetector) Detect(node *models.NodeRecord, ctx DetectionContext) []models.Anomaly {
	var out []models.Anomaly
	ts := d.now()
	history := ctx.History

	if node.Status == models.StatusOffline {
		out = append(out, models.Anomaly{
			NodeID:    node.ID,
			Type:      models.AnomalyOffline,
			Severity:  models.SeverityCritical,
			Message:   "Node is offline",
			Timestamp: ts,
		})
	}

	if a := d.detectLatencySpike(node, history, ts); a != nil {
		out = append(out, *a)
	}

	// Previous = the prior cycle's entry. The latest history element is
	// the current cycle's own snapshot, appended before detection runs.
	var prev *models.MetricSnapshot
	if len(history) >= 2 {
		prev = &history[len(history)-2]
	}

	if prev != nil && float64(node.PeerCount) < float64(prev.PeerCount)*0.6 {
		out = append(out, models.Anomaly{
			NodeID:    node.ID,
			Type:      models.AnomalyPeerDrop,
			Severity:  models.SeverityMedium,
			Message:   fmt.Sprintf("Peer count dropped from %d to %d", prev.PeerCount, node.PeerCount),
			Timestamp: ts,
			Details: map[string]interface{}{
				"previous_peers": prev.PeerCount,
				"current_peers":  node.PeerCount,
			},
		})
	}

	if a := d.detectStorageAnomaly(node, prev, ts); a != nil {
		out = append(out, *a)
	}

	return out
}

func (d *HistoryDetector) detectLatencySpike(node *models.NodeRecord, history []models.MetricSnapshot, ts time.Time) *models.Anomaly {
	if !node.HasLatency() || len(history) < minLatencySamples {
		return nil
	}

	// Cycles where the node reported no latency would drag the baseline
	// toward zero, so they are excluded from the series.
	series := make([]float64, 0, len(history))
	for _, snap := range history {
		if snap.Latency > 0 {
			series = append(series, snap.Latency)
		}
	}

	z := ZScore(node.Latency, series)
	if z < latencySpikeZ {
		return nil
	}

	severity := models.SeverityMedium
	if z >= latencySpikeZHigh {
		severity = models.SeverityHigh
	}

	return &models.Anomaly{
		NodeID:    node.ID,
		Type:      models.AnomalyLatencySpike,
		Severity:  severity,
		Message:   fmt.Sprintf("Latency %.0fms is %.1f standard deviations above normal", node.Latency, z),
		Timestamp: ts,
		Details: map[string]interface{}{
			"latency": node.Latency,
			"z_score": z,
		},
	}
}

// detectStorageAnomaly fires at most one of two mutually exclusive
// conditions: near-full usage wins over fast growth.
func (d *HistoryDetector) detectStorageAnomaly(node *models.NodeRecord, prev *models.MetricSnapshot, ts time.Time) *models.Anomaly {
	if !node.HasStorage() {
		return nil
	}

	usage := node.StorageUsagePercent()
	if usage >= 90 {
		severity := models.SeverityMedium
		if usage >= 98 {
			severity = models.SeverityHigh
		}
		return &models.Anomaly{
			NodeID:    node.ID,
			Type:      models.AnomalyStorageAnomaly,
			Severity:  severity,
			Message:   fmt.Sprintf("Storage usage at %.1f%%", usage),
			Timestamp: ts,
			Details:   map[string]interface{}{"usage_percent": usage},
		}
	}

	if prev != nil && prev.StorageUsed > 0 && float64(node.StorageUsed) > float64(prev.StorageUsed)*1.2 {
		return &models.Anomaly{
			NodeID:    node.ID,
			Type:      models.AnomalyStorageAnomaly,
			Severity:  models.SeverityLow,
			Message:   "Storage usage grew unusually fast",
			Timestamp: ts,
			Details: map[string]interface{}{
				"previous_used": prev.StorageUsed,
				"current_used":  node.StorageUsed,
			},
		}
	}

	return nil
}
