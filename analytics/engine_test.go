package analytics

import (
	"context"
	"testing"
	"time"

	"pnodewatch/models"
)

// recordingDetector captures the history length it was handed per call.
type recordingDetector struct {
	historyLens []int
}

func (r *recordingDetector) Name() string { return "recording" }

func (r *recordingDetector) Detect(node *models.NodeRecord, ctx DetectionContext) []models.Anomaly {
	r.historyLens = append(r.historyLens, len(ctx.History))
	return nil
}

func TestEngineAppendsBeforeDetection(t *testing.T) {
	ctx := context.Background()
	rec := &recordingDetector{}
	engine := NewEngine(NewHistoryStore(nil), rec)

	nodes := []*models.NodeRecord{nodeWith("a", 10)}

	engine.EvaluateCycle(ctx, nodes)
	engine.EvaluateCycle(ctx, nodes)

	// On the first cycle the detector must already see the current
	// snapshot as the latest history entry.
	if len(rec.historyLens) != 2 || rec.historyLens[0] != 1 || rec.historyLens[1] != 2 {
		t.Errorf("history lengths per cycle: got %v, want [1 2]", rec.historyLens)
	}
}

func TestEngineCycleProducesAllOutputs(t *testing.T) {
	ctx := context.Background()
	engine := NewEngine(NewHistoryStore(nil), NewHistoryDetector())

	nodes := []*models.NodeRecord{
		nodeWith("a", 10),
		nodeWith("b", 20),
	}

	result := engine.EvaluateCycle(ctx, nodes)

	if len(result.Health) != 2 || len(result.Risk) != 2 {
		t.Errorf("per-node outputs incomplete: health=%d risk=%d", len(result.Health), len(result.Risk))
	}
	if result.Stats.TotalNodes != 2 {
		t.Errorf("stats total: got %d, want 2", result.Stats.TotalNodes)
	}
	// Healthy nodes produce no anomaly entries at all
	if len(result.Anomalies) != 0 {
		t.Errorf("anomalies map should omit clean nodes: %+v", result.Anomalies)
	}
}

func TestEngineDetectsPeerDropAcrossCycles(t *testing.T) {
	ctx := context.Background()
	engine := NewEngine(NewHistoryStore(nil), NewHistoryDetector())

	engine.EvaluateCycle(ctx, []*models.NodeRecord{nodeWith("a", 20)})
	result := engine.EvaluateCycle(ctx, []*models.NodeRecord{nodeWith("a", 5)})

	anomalies := result.Anomalies["a"]
	var found bool
	for _, a := range anomalies {
		if a.Type == models.AnomalyPeerDrop {
			found = true
		}
	}
	if !found {
		t.Errorf("expected peer_drop on second cycle, got %+v", anomalies)
	}
}

func TestEngineOfflineNodeScoring(t *testing.T) {
	ctx := context.Background()
	engine := NewEngine(NewHistoryStore(nil), NewHistoryDetector())

	offline := &models.NodeRecord{
		ID:        "a",
		Status:    models.StatusOffline,
		PeerCount: 20,
		LastSeen:  time.Now().Add(-30 * time.Minute),
	}

	result := engine.EvaluateCycle(ctx, []*models.NodeRecord{offline})

	if result.Risk["a"] != 5 {
		t.Errorf("offline risk: got %d, want 5", result.Risk["a"])
	}
	if result.Health["a"].Score > 20 {
		t.Errorf("offline health: got %d, want <= 20", result.Health["a"].Score)
	}
	if len(result.Anomalies["a"]) == 0 {
		t.Error("offline node should carry an offline anomaly")
	}
}
