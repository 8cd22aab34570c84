package analytics

import (
	"context"

	"pnodewatch/models"
)

// CycleResult is everything one evaluation cycle produces for the
// presentation layer and the alerting path.
type CycleResult struct {
	Health    map[string]models.HealthScore `json:"health"`
	Anomalies map[string][]models.Anomaly   `json:"anomalies"`
	Risk      map[string]int                `json:"risk"`
	Stats     models.NetworkStats           `json:"stats"`
}

// Engine ties the analytics pipeline together around an injected
// history store and detector. All scoring functions it calls are total;
// the only I/O happens inside the history store, whose failures are
// absorbed there.
type Engine struct {
	store    *HistoryStore
	detector Detector
}

// NewEngine builds an engine. The detector is typically the
// HistoryDetector for the live path; ingestion callers run the
// ThresholdDetector separately with a DetectionContext carrying the
// previous record.
func NewEngine(store *HistoryStore, detector Detector) *Engine {
	return &Engine{store: store, detector: detector}
}

// Store exposes the injected history store.
func (e *Engine) Store() *HistoryStore { return e.store }

// EvaluateCycle runs one full evaluation over the current node list.
//
// History is appended before detection so the latest history entry a
// detector sees is the just-appended current snapshot and the previous
// entry is the prior cycle's. Reversing that order would silently
// disable every current-vs-self comparison.
func (e *Engine) EvaluateCycle(ctx context.Context, nodes []*models.NodeRecord) CycleResult {
	e.store.Append(ctx, nodes)

	result := CycleResult{
		Health:    make(map[string]models.HealthScore, len(nodes)),
		Anomalies: make(map[string][]models.Anomaly, len(nodes)),
		Risk:      make(map[string]int, len(nodes)),
	}

	for _, node := range nodes {
		history := e.store.Get(ctx, node.ID)
		anomalies := e.detector.Detect(node, DetectionContext{History: history})

		result.Health[node.ID] = CalculateHealthScore(node)
		result.Risk[node.ID] = DeriveRiskScore(node, anomalies)
		if len(anomalies) > 0 {
			result.Anomalies[node.ID] = anomalies
		}
	}

	result.Stats = CalculateNetworkStats(nodes)
	return result
}
