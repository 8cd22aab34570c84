package analytics

import (
	"fmt"
	"time"

	"pnodewatch/models"
	"pnodewatch/utils"
)

// Absolute thresholds for the ingestion-path detector. These differ
// from the history detector's self-relative boundaries on purpose.
const (
	thresholdLatencyMedium = 1000.0 // ms
	thresholdLatencyHigh   = 2000.0
	thresholdStoragePct    = 95.0
	thresholdStaleHigh     = time.Hour
	thresholdStaleCritical = 24 * time.Hour
)

// ThresholdDetector classifies against fixed absolute thresholds using
// at most a single previous record, no rolling history. It serves the
// server-side ingestion/alerting path.
type ThresholdDetector struct {
	versions *utils.VersionConfig
	now      func() time.Time
}

// NewThresholdDetector returns the absolute-threshold detector.
// versions may be nil to disable the version check.
func NewThresholdDetector(versions *utils.VersionConfig) *ThresholdDetector {
	return &ThresholdDetector{versions: versions, now: time.Now}
}

func (d *ThresholdDetector) Name() string { return "threshold" }

func (d *ThresholdDetector) Detect(node *models.NodeRecord, ctx DetectionContext) []models.Anomaly {
	var out []models.Anomaly
	ts := d.now()

	if node.Status == models.StatusOffline {
		out = append(out, models.Anomaly{
			NodeID:    node.ID,
			Type:      models.AnomalyOffline,
			Severity:  models.SeverityCritical,
			Message:   "Node is offline",
			Timestamp: ts,
		})
	}

	if node.HasLatency() && node.Latency > thresholdLatencyMedium {
		severity := models.SeverityMedium
		if node.Latency > thresholdLatencyHigh {
			severity = models.SeverityHigh
		}
		out = append(out, models.Anomaly{
			NodeID:    node.ID,
			Type:      models.AnomalyLatencySpike,
			Severity:  severity,
			Message:   fmt.Sprintf("Latency %.0fms exceeds threshold", node.Latency),
			Timestamp: ts,
			Details:   map[string]interface{}{"latency": node.Latency},
		})
	}

	if prev := ctx.Previous; prev != nil && prev.PeerCount > 0 {
		if float64(node.PeerCount) < float64(prev.PeerCount)*0.5 {
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
	}

	if node.HasStorage() && node.StorageUsagePercent() > thresholdStoragePct {
		out = append(out, models.Anomaly{
			NodeID:    node.ID,
			Type:      models.AnomalyStorageAnomaly,
			Severity:  models.SeverityCritical,
			Message:   fmt.Sprintf("Storage usage at %.1f%%", node.StorageUsagePercent()),
			Timestamp: ts,
			Details:   map[string]interface{}{"usage_percent": node.StorageUsagePercent()},
		})
	}

	if stale := ts.Sub(node.LastSeen); stale > thresholdStaleHigh {
		severity := models.SeverityHigh
		if stale > thresholdStaleCritical {
			severity = models.SeverityCritical
		}
		out = append(out, models.Anomaly{
			NodeID:    node.ID,
			Type:      models.AnomalyOffline,
			Severity:  severity,
			Message:   fmt.Sprintf("Node not seen for %s", stale.Round(time.Minute)),
			Timestamp: ts,
			Details:   map[string]interface{}{"stale_seconds": int64(stale.Seconds())},
		})
	}

	if a := d.detectVersionMismatch(node, ts); a != nil {
		out = append(out, *a)
	}

	return out
}

func (d *ThresholdDetector) detectVersionMismatch(node *models.NodeRecord, ts time.Time) *models.Anomaly {
	if d.versions == nil || node.SoftwareVersion == "" {
		return nil
	}

	status, needsUpgrade, sev := utils.CheckVersionStatus(node.SoftwareVersion, d.versions)
	if !needsUpgrade {
		return nil
	}

	severity := models.SeverityMedium
	if sev == "critical" {
		severity = models.SeverityHigh
	} else if sev == "info" {
		severity = models.SeverityLow
	}

	return &models.Anomaly{
		NodeID:    node.ID,
		Type:      models.AnomalyVersionMismatch,
		Severity:  severity,
		Message:   fmt.Sprintf("Version %s is %s (current stable %s)", node.SoftwareVersion, status, d.versions.CurrentStable),
		Timestamp: ts,
		Details: map[string]interface{}{
			"version": node.SoftwareVersion,
			"status":  status,
		},
	}
}
