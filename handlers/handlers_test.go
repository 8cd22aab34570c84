package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"pnodewatch/analytics"
	"pnodewatch/config"
	"pnodewatch/models"
	"pnodewatch/services"
)

func seededCache(t *testing.T) *services.CacheService {
	t.Helper()

	cfg := &config.Config{
		Cache: config.CacheConfig{TTL: 30},
		Redis: config.RedisConfig{Enabled: false},
	}
	cache := services.NewCacheService(cfg)

	nodes := []*models.NodeRecord{
		{ID: "pk-1", Pubkey: "pk-1", Status: models.StatusOnline, PeerCount: 12, Latency: 80, LastSeen: time.Now()},
		{ID: "pk-2", Pubkey: "pk-2", Status: models.StatusOffline, PeerCount: 0, LastSeen: time.Now().Add(-time.Hour)},
	}
	result := analytics.CycleResult{
		Health: map[string]models.HealthScore{
			"pk-1": {NodeID: "pk-1", Score: 95, Status: models.HealthHealthy},
			"pk-2": {NodeID: "pk-2", Score: 20, Status: models.HealthCritical},
		},
		Anomalies: map[string][]models.Anomaly{
			"pk-2": {{NodeID: "pk-2", Type: models.AnomalyOffline, Severity: models.SeverityCritical, Message: "Node is offline"}},
		},
		Risk: map[string]int{"pk-1": 90, "pk-2": 5},
		Stats: models.NetworkStats{
			TotalNodes:  2,
			OnlineNodes: 1, OfflineNodes: 1,
			VersionDistribution: map[string]int{"unknown": 2},
			RegionDistribution:  map[string]int{"unknown": 2},
			LastUpdated:         time.Now(),
		},
	}
	cache.PublishCycle(nodes, result)
	return cache
}

func doRequest(t *testing.T, handler echo.HandlerFunc, path string, paramName, paramValue string) *httptest.ResponseRecorder {
	t.Helper()

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if paramName != "" {
		c.SetParamNames(paramName)
		c.SetParamValues(paramValue)
	}
	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	return rec
}

func TestGetStats(t *testing.T) {
	h := NewHandler(&config.Config{}, seededCache(t), nil)

	rec := doRequest(t, h.GetStats, "/api/stats", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d", rec.Code)
	}

	var stats models.NetworkStats
	if err := json.Unmarshal(rec.Body.Bytes(), &stats); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if stats.TotalNodes != 2 || stats.OnlineNodes != 1 {
		t.Errorf("stats: %+v", stats)
	}
}

func TestGetStatsUnavailable(t *testing.T) {
	cfg := &config.Config{Redis: config.RedisConfig{Enabled: false}}
	h := NewHandler(cfg, services.NewCacheService(cfg), nil)

	rec := doRequest(t, h.GetStats, "/api/stats", "", "")
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status: got %d, want 503", rec.Code)
	}
}

func TestGetNodes(t *testing.T) {
	h := NewHandler(&config.Config{}, seededCache(t), nil)

	rec := doRequest(t, h.GetNodes, "/api/nodes", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d", rec.Code)
	}

	var resp NodesResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Nodes) != 2 || resp.Pagination.TotalItems != 2 {
		t.Errorf("response: %+v", resp.Pagination)
	}
}

func TestGetNodesStatusFilter(t *testing.T) {
	h := NewHandler(&config.Config{}, seededCache(t), nil)

	rec := doRequest(t, h.GetNodes, "/api/nodes?status=online", "", "")

	var resp NodesResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Nodes) != 1 || resp.Nodes[0].ID != "pk-1" {
		t.Errorf("filtered nodes: %+v", resp.Nodes)
	}
}

func TestGetNode(t *testing.T) {
	h := NewHandler(&config.Config{}, seededCache(t), nil)

	rec := doRequest(t, h.GetNode, "/api/nodes/pk-1", "id", "pk-1")
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d", rec.Code)
	}

	var node models.NodeRecord
	if err := json.Unmarshal(rec.Body.Bytes(), &node); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if node.ID != "pk-1" {
		t.Errorf("node: %+v", node)
	}
}

func TestGetNodeNotFound(t *testing.T) {
	h := NewHandler(&config.Config{}, seededCache(t), nil)

	rec := doRequest(t, h.GetNode, "/api/nodes/nope", "id", "nope")
	if rec.Code != http.StatusNotFound {
		t.Errorf("status: got %d, want 404", rec.Code)
	}
}

func TestAnalyticsEndpoints(t *testing.T) {
	ah := NewAnalyticsHandlers(seededCache(t))

	rec := doRequest(t, ah.GetHealthScores, "/api/health-scores", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("health scores status: got %d", rec.Code)
	}

	var health map[string]models.HealthScore
	if err := json.Unmarshal(rec.Body.Bytes(), &health); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if health["pk-1"].Score != 95 {
		t.Errorf("health: %+v", health)
	}

	rec = doRequest(t, ah.GetNodeRisk, "/api/risk-scores/pk-2", "id", "pk-2")
	var risk map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &risk); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if risk["level"] != "high" {
		t.Errorf("risk level: %v", risk["level"])
	}

	// Clean node returns empty list, not 404
	rec = doRequest(t, ah.GetNodeAnomalies, "/api/anomalies/pk-1", "id", "pk-1")
	if rec.Code != http.StatusOK {
		t.Errorf("clean node anomalies status: got %d", rec.Code)
	}
	var list []models.Anomaly
	if err := json.Unmarshal(rec.Body.Bytes(), &list); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(list) != 0 {
		t.Errorf("clean node anomalies: %+v", list)
	}
}

func TestGetHealthEndpoint(t *testing.T) {
	h := NewHandler(&config.Config{}, seededCache(t), nil)

	rec := doRequest(t, h.GetHealth, "/health", "", "")
	if rec.Code != http.StatusOK || rec.Body.String() != "OK" {
		t.Errorf("got %d %q", rec.Code, rec.Body.String())
	}
}
