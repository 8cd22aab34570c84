package services

import (
	"context"
	"log"
	"sync"
	"time"

	"pnodewatch/models"
)

// snapshots kept in memory per series, one hour at 5-minute intervals
const recentSnapshotWindow = 12

// HistoryService collects periodic network and per-node trend snapshots.
// Recent data stays in memory; MongoDB, when enabled, holds the long tail.
type HistoryService struct {
	cache    *CacheService
	mongo    *MongoDBService
	interval time.Duration
	stopChan chan struct{}
	mutex    sync.RWMutex

	recentNetworkSnapshots []models.NetworkSnapshot
	recentNodeTrends       map[string][]models.NodeTrendPoint
}

func NewHistoryService(cache *CacheService, mongo *MongoDBService, interval time.Duration) *HistoryService {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return &HistoryService{
		cache:                  cache,
		mongo:                  mongo,
		interval:               interval,
		stopChan:               make(chan struct{}),
		recentNetworkSnapshots: make([]models.NetworkSnapshot, 0),
		recentNodeTrends:       make(map[string][]models.NodeTrendPoint),
	}
}

func (hs *HistoryService) Start() {
	log.Println("Starting History Service...")

	ticker := time.NewTicker(hs.interval)

	go func() {
		// Immediate first collection
		hs.collectSnapshot()

		for {
			select {
			case <-ticker.C:
				hs.collectSnapshot()
			case <-hs.stopChan:
				ticker.Stop()
				return
			}
		}
	}()
}

func (hs *HistoryService) Stop() {
	close(hs.stopChan)
}

func (hs *HistoryService) collectSnapshot() {
	ctx := context.Background()

	stats, _, found := hs.cache.GetNetworkStats(true)
	if !found {
		return
	}

	nodes, _, _ := hs.cache.GetNodes(true)
	healthScores, _ := hs.cache.GetHealthScores(true)
	riskScores, _ := hs.cache.GetRiskScores(true)

	var healthSum float64
	for _, score := range healthScores {
		healthSum += float64(score.Score)
	}
	var avgHealth float64
	if len(healthScores) > 0 {
		avgHealth = healthSum / float64(len(healthScores))
	}

	netSnap := models.NetworkSnapshot{
		Timestamp:         time.Now(),
		TotalNodes:        stats.TotalNodes,
		OnlineNodes:       stats.OnlineNodes,
		OfflineNodes:      stats.OfflineNodes,
		TotalStorageBytes: stats.TotalStorageBytes,
		UsedStorageBytes:  stats.UsedStorageBytes,
		AverageLatency:    stats.AverageLatency,
		AveragePeerCount:  stats.AveragePeerCount,
		AverageHealth:     avgHealth,
		ValidatorCount:    stats.ValidatorCount,
	}

	if hs.mongo.Enabled() {
		if err := hs.mongo.InsertNetworkSnapshot(ctx, &netSnap); err != nil {
			log.Printf("Error saving network snapshot to MongoDB: %v", err)
		}
	}

	hs.mutex.Lock()
	hs.recentNetworkSnapshots = append(hs.recentNetworkSnapshots, netSnap)
	if len(hs.recentNetworkSnapshots) > recentSnapshotWindow {
		hs.recentNetworkSnapshots = hs.recentNetworkSnapshots[len(hs.recentNetworkSnapshots)-recentSnapshotWindow:]
	}
	hs.mutex.Unlock()

	for _, node := range nodes {
		point := models.NodeTrendPoint{
			Timestamp:   time.Now(),
			NodeID:      node.ID,
			Status:      node.Status,
			Latency:     node.Latency,
			PeerCount:   node.PeerCount,
			StorageUsed: node.StorageUsed,
			HealthScore: healthScores[node.ID].Score,
			RiskScore:   riskScores[node.ID],
		}

		if hs.mongo.Enabled() {
			if err := hs.mongo.InsertNodeTrendPoint(ctx, &point); err != nil {
				log.Printf("Error saving trend point for %s to MongoDB: %v", node.ID, err)
			}

			if err := hs.mongo.RegisterNode(ctx, node.ID, node.LastSeen); err != nil {
				log.Printf("Error registering node %s: %v", node.ID, err)
			}
		}

		hs.mutex.Lock()
		hs.recentNodeTrends[node.ID] = append(hs.recentNodeTrends[node.ID], point)
		if len(hs.recentNodeTrends[node.ID]) > recentSnapshotWindow {
			hs.recentNodeTrends[node.ID] = hs.recentNodeTrends[node.ID][len(hs.recentNodeTrends[node.ID])-recentSnapshotWindow:]
		}
		hs.mutex.Unlock()
	}

	log.Printf("Collected snapshot: %d nodes, %d online", stats.TotalNodes, stats.OnlineNodes)
}

// GetNetworkHistory returns network snapshots for the last N hours.
// MongoDB serves anything beyond the in-memory hour when available.
func (hs *HistoryService) GetNetworkHistory(hours int) []models.NetworkSnapshot {
	if hours <= 0 {
		hours = 24
	}

	if hs.mongo.Enabled() && hours > 1 {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		startTime := time.Now().Add(-time.Duration(hours) * time.Hour)

		snapshots, err := hs.mongo.GetNetworkSnapshotsRange(ctx, startTime, time.Now())
		if err != nil {
			log.Printf("Error fetching network history from MongoDB: %v", err)
			return hs.getInMemoryNetworkHistory(hours)
		}

		return snapshots
	}

	return hs.getInMemoryNetworkHistory(hours)
}

func (hs *HistoryService) getInMemoryNetworkHistory(hours int) []models.NetworkSnapshot {
	hs.mutex.RLock()
	defer hs.mutex.RUnlock()

	count := hours * recentSnapshotWindow
	if count > len(hs.recentNetworkSnapshots) {
		count = len(hs.recentNetworkSnapshots)
	}

	start := len(hs.recentNetworkSnapshots) - count
	result := make([]models.NetworkSnapshot, count)
	copy(result, hs.recentNetworkSnapshots[start:])
	return result
}

// GetNodeTrend returns trend points for a specific node.
func (hs *HistoryService) GetNodeTrend(nodeID string, hours int) []models.NodeTrendPoint {
	if hours <= 0 {
		hours = 24
	}

	if hs.mongo.Enabled() && hours > 1 {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		startTime := time.Now().Add(-time.Duration(hours) * time.Hour)

		points, err := hs.mongo.GetNodeTrendRange(ctx, nodeID, startTime, time.Now())
		if err != nil {
			log.Printf("Error fetching node trend from MongoDB: %v", err)
			return hs.getInMemoryNodeTrend(nodeID, hours)
		}

		return points
	}

	return hs.getInMemoryNodeTrend(nodeID, hours)
}

func (hs *HistoryService) getInMemoryNodeTrend(nodeID string, hours int) []models.NodeTrendPoint {
	hs.mutex.RLock()
	defer hs.mutex.RUnlock()

	points, exists := hs.recentNodeTrends[nodeID]
	if !exists {
		return []models.NodeTrendPoint{}
	}

	count := hours * recentSnapshotWindow
	if count > len(points) {
		count = len(points)
	}

	start := len(points) - count
	result := make([]models.NodeTrendPoint, count)
	copy(result, points[start:])
	return result
}

// GetLatencyDistribution buckets current node latencies for a histogram.
func (hs *HistoryService) GetLatencyDistribution() map[string]int {
	nodes, _, found := hs.cache.GetNodes(true)
	if !found {
		return map[string]int{}
	}

	distribution := map[string]int{
		"0-50ms":      0,
		"50-100ms":    0,
		"100-250ms":   0,
		"250-500ms":   0,
		"500-1000ms":  0,
		"1000-2000ms": 0,
		"2000ms+":     0,
	}

	for _, node := range nodes {
		if !node.HasLatency() {
			continue
		}
		switch {
		case node.Latency <= 50:
			distribution["0-50ms"]++
		case node.Latency <= 100:
			distribution["50-100ms"]++
		case node.Latency <= 250:
			distribution["100-250ms"]++
		case node.Latency <= 500:
			distribution["250-500ms"]++
		case node.Latency <= 1000:
			distribution["500-1000ms"]++
		case node.Latency <= 2000:
			distribution["1000-2000ms"]++
		default:
			distribution["2000ms+"]++
		}
	}

	return distribution
}
