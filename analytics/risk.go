package analytics

import (
	"math"

	"pnodewatch/models"
)

// Anomaly severity weights subtracted from the risk score. Multiple
// anomalies stack.
var severityPenalty = map[string]float64{
	models.SeverityCritical: 35,
	models.SeverityHigh:     20,
	models.SeverityMedium:   12,
	models.SeverityLow:      6,
}

// DeriveRiskScore combines current-state penalties with this cycle's
// detected anomalies into a single 0-100 score. High score means low
// risk. The scale and thresholds are independent from the health score.
func DeriveRiskScore(node *models.NodeRecord, anomalies []models.Anomaly) int {
	// An offline node is maximally at risk no matter what else it
	// reports.
	if node.Status == models.StatusOffline {
		return 5
	}

	score := 100.0

	if node.Status == models.StatusUnknown {
		score -= 15
	}

	switch {
	case node.Latency > 2000:
		score -= 30
	case node.Latency > 1000:
		score -= 18
	case node.Latency > 500:
		score -= 10
	}

	switch {
	case node.PeerCount < 5:
		score -= 20
	case node.PeerCount < 10:
		score -= 10
	}

	if node.HasStorage() {
		usage := node.StorageUsagePercent()
		if usage > 95 {
			score -= 25
		} else if usage > 85 {
			score -= 12
		}
	}

	if node.Uptime > 0 && node.Uptime < 86400 {
		score -= 10
	}

	for _, a := range anomalies {
		score -= severityPenalty[a.Severity]
	}

	final := int(math.Round(score))
	if final < 0 {
		final = 0
	}
	if final > 100 {
		final = 100
	}
	return final
}

// RiskLabel maps a risk score to its band.
func RiskLabel(score int) string {
	switch {
	case score >= 70:
		return models.RiskLow
	case score >= 40:
		return models.RiskMedium
	default:
		return models.RiskHigh
	}
}
