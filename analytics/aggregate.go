package analytics

import (
	"fmt"
	"math"
	"regexp"
	"time"

	"pnodewatch/models"
	"pnodewatch/utils"
)

var majorMinorRe = regexp.MustCompile(`^(\d+)\.(\d+)`)

// CalculateNetworkStats reduces a node collection into network-wide
// statistics. Pure reduction over the current cycle, no history; an
// empty input yields the zero aggregate.
func CalculateNetworkStats(nodes []*models.NodeRecord) models.NetworkStats {
	stats := models.NetworkStats{
		TotalNodes:          len(nodes),
		VersionDistribution: make(map[string]int),
		RegionDistribution:  make(map[string]int),
		LastUpdated:         time.Now(),
	}

	var peerSum float64
	var peerCount int
	var latencySum float64
	var latencyCount int

	for _, node := range nodes {
		switch node.Status {
		case models.StatusOnline:
			stats.OnlineNodes++
		case models.StatusOffline:
			stats.OfflineNodes++
		case models.StatusUnknown:
			stats.UnknownNodes++
		}

		stats.TotalStorageBytes += node.StorageCapacity
		stats.UsedStorageBytes += node.StorageUsed

		// Zero-peer nodes are excluded from the denominator so that
		// freshly joined or isolated nodes don't drag the connectivity
		// average toward zero.
		if node.PeerCount > 0 {
			peerSum += float64(node.PeerCount)
			peerCount++
		}
		if node.HasLatency() {
			latencySum += node.Latency
			latencyCount++
		}

		stats.VersionDistribution[versionBucket(node.SoftwareVersion)]++
		stats.RegionDistribution[regionOf(node)]++

		if node.IsValidator {
			stats.ValidatorCount++
		}
	}

	if peerCount > 0 {
		stats.AveragePeerCount = round2(peerSum / float64(peerCount))
	}
	if latencyCount > 0 {
		stats.AverageLatency = round2(latencySum / float64(latencyCount))
	}

	return stats
}

// versionBucket groups versions by major.minor, discarding the patch
// level. Strings that don't look like a version keep their literal
// value; missing versions bucket under "unknown".
func versionBucket(version string) string {
	if version == "" {
		return "unknown"
	}
	m := majorMinorRe.FindStringSubmatch(version)
	if m == nil {
		return version
	}
	return fmt.Sprintf("%s.%s.x", m[1], m[2])
}

// regionOf prefers self-reported location, then the IP-octet heuristic,
// then "unknown".
func regionOf(node *models.NodeRecord) string {
	if node.Location != nil {
		if node.Location.Country != "" {
			return node.Location.Country
		}
		if node.Location.Region != "" {
			return node.Location.Region
		}
	}
	if node.IP != "" {
		if region := utils.RegionFromIP(node.IP); region != "" {
			return region
		}
	}
	return "unknown"
}

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}
