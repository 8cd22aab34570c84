package analytics

import (
	"math"
	"time"

	"pnodewatch/models"
)

// Blend weights for the composite health score, applied in order.
const (
	weightUptime   = 0.3
	weightLatency  = 0.2
	weightPeers    = 0.2
	weightLastSeen = 0.15
	weightStorage  = 0.15
)

// CalculateHealthScore derives the composite 0-100 health score for one
// node from its current attributes alone. It is deterministic and needs
// no history.
//
// The score is a sequential blend, not a weighted sum: each step folds
// its factor into the already partially blended running score, so the
// order below is part of the contract. The uptime step multiplies the
// running score by the weight itself (score*0.3 + factor*0.3); that is
// how the shipped scorer behaves and downstream thresholds depend on it,
// so it is reproduced as-is rather than normalized to score*(1-w).
func CalculateHealthScore(node *models.NodeRecord) models.HealthScore {
	score := 100.0

	// Absent data is neutral: factors default to 100 and their blend
	// step is skipped.
	factors := models.HealthFactors{
		Uptime:       100,
		Latency:      100,
		PeerCount:    100,
		LastSeen:     100,
		StorageUsage: 100,
	}

	if node.Uptime > 0 {
		days := float64(node.Uptime) / 86400
		factor := math.Min(100, days/30*100)
		factors.Uptime = int(math.Round(factor))
		score = score*weightUptime + factor*weightUptime
	}

	if node.HasLatency() {
		factor := latencyFactor(node.Latency)
		factors.Latency = int(factor)
		score = score*(1-weightLatency) + factor*weightLatency
	}

	peerFactor := peerCountFactor(node.PeerCount)
	factors.PeerCount = int(peerFactor)
	score = score*(1-weightPeers) + peerFactor*weightPeers

	seenFactor := lastSeenFactor(time.Since(node.LastSeen))
	factors.LastSeen = int(seenFactor)
	score = score*(1-weightLastSeen) + seenFactor*weightLastSeen

	if node.HasStorage() {
		factor := storageFactor(node.StorageUsagePercent())
		factors.StorageUsage = int(factor)
		score = score*(1-weightStorage) + factor*weightStorage
	}

	// Hard ceilings by status override whatever the blend produced.
	switch node.Status {
	case models.StatusOffline:
		score = math.Min(score, 20)
	case models.StatusUnknown:
		score = math.Min(score, 50)
	}

	final := int(math.Round(score))
	if final < 0 {
		final = 0
	}
	if final > 100 {
		final = 100
	}

	return models.HealthScore{
		NodeID:  node.ID,
		Score:   final,
		Status:  healthLabel(final),
		Factors: factors,
	}
}

func latencyFactor(ms float64) float64 {
	switch {
	case ms < 100:
		return 100
	case ms < 500:
		return 80
	case ms < 1000:
		return 60
	default:
		return 40
	}
}

func peerCountFactor(peers int) float64 {
	switch {
	case peers < 5:
		return 50
	case peers < 10:
		return 70
	case peers < 20:
		return 85
	default:
		return 100
	}
}

func lastSeenFactor(since time.Duration) float64 {
	minutes := since.Minutes()
	switch {
	case minutes < 5:
		return 100
	case minutes < 15:
		return 80
	case minutes < 60:
		return 60
	default:
		return 30
	}
}

func storageFactor(usagePercent float64) float64 {
	switch {
	case usagePercent < 70:
		return 100
	case usagePercent < 85:
		return 80
	case usagePercent < 95:
		return 60
	default:
		return 30
	}
}

func healthLabel(score int) string {
	switch {
	case score >= 80:
		return models.HealthHealthy
	case score >= 50:
		return models.HealthWarning
	default:
		return models.HealthCritical
	}
}
