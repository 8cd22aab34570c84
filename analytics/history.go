package analytics

import (
	"context"
	"log"
	"sync"
	"time"

	"pnodewatch/models"
)

// MaxHistory caps the rolling per-node history. When an append pushes a
// node's series past the cap, the oldest entries are evicted so the
// newest MaxHistory remain.
const MaxHistory = 50

// HistoryPersistence is the external read/write surface for the rolling
// history store. Both directions degrade silently: a failed Save leaves
// history in memory only for that cycle, a failed Load yields an empty
// store.
type HistoryPersistence interface {
	Load(ctx context.Context) (map[string][]models.MetricSnapshot, error)
	Save(ctx context.Context, entries map[string][]models.MetricSnapshot) error
}

// HistoryStore is the bounded per-node time series of metric snapshots.
// It is the only stateful entity in the analytics core; everything else
// is a pure function of a single cycle's input.
//
// The store serializes all access internally, so overlapping poll cycles
// cannot corrupt it. Entries for nodes no longer observed are kept until
// overwritten or cleared externally.
type HistoryStore struct {
	mu      sync.Mutex
	persist HistoryPersistence
	entries map[string][]models.MetricSnapshot
	loaded  bool
	now     func() time.Time
}

// NewHistoryStore creates a store backed by persist. A nil persist is
// valid and keeps history in memory only.
func NewHistoryStore(persist HistoryPersistence) *HistoryStore {
	return &HistoryStore{
		persist: persist,
		entries: make(map[string][]models.MetricSnapshot),
		now:     time.Now,
	}
}

// Append records the current snapshot for every node in the input,
// evicts past MaxHistory, and writes the updated store through the
// persistence surface. Exactly one entry is appended per node per call.
func (hs *HistoryStore) Append(ctx context.Context, nodes []*models.NodeRecord) {
	hs.mu.Lock()
	defer hs.mu.Unlock()
	hs.ensureLoaded(ctx)

	ts := hs.now()
	for _, n := range nodes {
		snap := models.MetricSnapshot{
			Timestamp:       ts,
			Status:          n.Status,
			PeerCount:       n.PeerCount,
			Latency:         n.Latency,
			StorageUsed:     n.StorageUsed,
			StorageCapacity: n.StorageCapacity,
			Uptime:          n.Uptime,
		}
		series := append(hs.entries[n.ID], snap)
		if len(series) > MaxHistory {
			series = series[len(series)-MaxHistory:]
		}
		hs.entries[n.ID] = series
	}

	if hs.persist != nil {
		if err := hs.persist.Save(ctx, hs.entries); err != nil {
			log.Printf("Warning: history persistence write failed: %v", err)
		}
	}
}

// Get returns a copy of the node's snapshot series, oldest first. A node
// with no prior entries yields an empty slice: callers treat "no
// history" as "no anomaly signal available", never as an error.
func (hs *HistoryStore) Get(ctx context.Context, nodeID string) []models.MetricSnapshot {
	hs.mu.Lock()
	defer hs.mu.Unlock()
	hs.ensureLoaded(ctx)

	series := hs.entries[nodeID]
	out := make([]models.MetricSnapshot, len(series))
	copy(out, series)
	return out
}

// Len returns the number of entries held for a node.
func (hs *HistoryStore) Len(ctx context.Context, nodeID string) int {
	hs.mu.Lock()
	defer hs.mu.Unlock()
	hs.ensureLoaded(ctx)
	return len(hs.entries[nodeID])
}

// NodeIDs returns the ids with at least one entry, in no particular order.
func (hs *HistoryStore) NodeIDs(ctx context.Context) []string {
	hs.mu.Lock()
	defer hs.mu.Unlock()
	hs.ensureLoaded(ctx)

	ids := make([]string, 0, len(hs.entries))
	for id := range hs.entries {
		ids = append(ids, id)
	}
	return ids
}

// ensureLoaded lazily reads persisted state once. Callers must hold mu.
func (hs *HistoryStore) ensureLoaded(ctx context.Context) {
	if hs.loaded {
		return
	}
	hs.loaded = true

	if hs.persist == nil {
		return
	}
	entries, err := hs.persist.Load(ctx)
	if err != nil {
		log.Printf("Warning: history persistence read failed, starting empty: %v", err)
		return
	}
	if entries != nil {
		hs.entries = entries
	}
}
