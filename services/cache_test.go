package services

import (
	"testing"
	"time"

	"pnodewatch/analytics"
	"pnodewatch/config"
	"pnodewatch/models"
)

func newInMemoryCache(ttlSeconds int) *CacheService {
	cfg := &config.Config{
		Cache: config.CacheConfig{TTL: ttlSeconds},
		Redis: config.RedisConfig{Enabled: false},
	}
	return NewCacheService(cfg)
}

func sampleCycle() ([]*models.NodeRecord, analytics.CycleResult) {
	nodes := []*models.NodeRecord{
		{ID: "a", Status: models.StatusOnline, PeerCount: 10, LastSeen: time.Now()},
		{ID: "b", Status: models.StatusOffline, PeerCount: 0, LastSeen: time.Now()},
	}
	result := analytics.CycleResult{
		Health: map[string]models.HealthScore{
			"a": {NodeID: "a", Score: 95, Status: models.HealthHealthy},
			"b": {NodeID: "b", Score: 20, Status: models.HealthCritical},
		},
		Anomalies: map[string][]models.Anomaly{
			"b": {{NodeID: "b", Type: models.AnomalyOffline, Severity: models.SeverityCritical}},
		},
		Risk:  map[string]int{"a": 90, "b": 5},
		Stats: models.NetworkStats{TotalNodes: 2, OnlineNodes: 1, OfflineNodes: 1},
	}
	return nodes, result
}

func TestCacheDisabledRedisFallsBackToInMemory(t *testing.T) {
	cs := newInMemoryCache(30)
	if cs.GetCacheMode() != CacheModeInMemory {
		t.Errorf("mode: got %s, want in-memory", cs.GetCacheMode())
	}
}

func TestCachePublishCycleRoundTrip(t *testing.T) {
	cs := newInMemoryCache(30)
	nodes, result := sampleCycle()

	cs.PublishCycle(nodes, result)

	stats, stale, found := cs.GetNetworkStats(false)
	if !found || stale {
		t.Fatalf("stats: found=%v stale=%v", found, stale)
	}
	if stats.TotalNodes != 2 || stats.OnlineNodes != 1 {
		t.Errorf("stats: %+v", stats)
	}

	got, _, found := cs.GetNodes(false)
	if !found || len(got) != 2 {
		t.Fatalf("nodes: found=%v len=%d", found, len(got))
	}

	node, _, found := cs.GetNode("a", false)
	if !found || node.ID != "a" {
		t.Fatalf("node: found=%v %+v", found, node)
	}

	health, found := cs.GetHealthScores(false)
	if !found || health["a"].Score != 95 {
		t.Errorf("health: %+v", health)
	}

	anomalies, found := cs.GetAnomalies(false)
	if !found || len(anomalies["b"]) != 1 {
		t.Errorf("anomalies: %+v", anomalies)
	}

	risk, found := cs.GetRiskScores(false)
	if !found || risk["b"] != 5 {
		t.Errorf("risk: %+v", risk)
	}
}

func TestCacheStaleData(t *testing.T) {
	// Zero TTL: entries are stale the moment they land.
	cs := newInMemoryCache(0)
	nodes, result := sampleCycle()
	cs.PublishCycle(nodes, result)

	if _, _, found := cs.GetNetworkStats(false); found {
		t.Error("fresh-only read should miss expired data")
	}

	stats, stale, found := cs.GetNetworkStats(true)
	if !found || !stale {
		t.Fatalf("stale read: found=%v stale=%v", found, stale)
	}
	if stats.TotalNodes != 2 {
		t.Errorf("stale stats content: %+v", stats)
	}
}

func TestCacheMissingKey(t *testing.T) {
	cs := newInMemoryCache(30)

	if _, _, found := cs.GetNode("nope", true); found {
		t.Error("unknown node should miss")
	}
	if _, found := cs.GetHealthScores(true); found {
		t.Error("empty cache should miss")
	}
}

func TestCacheClear(t *testing.T) {
	cs := newInMemoryCache(30)
	nodes, result := sampleCycle()
	cs.PublishCycle(nodes, result)

	if err := cs.ClearCache(); err != nil {
		t.Fatalf("clear: %v", err)
	}

	if _, _, found := cs.GetNetworkStats(true); found {
		t.Error("cache should be empty after clear")
	}

	stats := cs.GetCacheStats()
	if stats["in_memory_keys"] != 0 {
		t.Errorf("in_memory_keys: got %v, want 0", stats["in_memory_keys"])
	}
}
