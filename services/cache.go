package services

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"pnodewatch/analytics"
	"pnodewatch/config"
	"pnodewatch/models"
)

// CacheMode indicates which cache backend is active.
type CacheMode string

const (
	CacheModeRedis    CacheMode = "redis"
	CacheModeInMemory CacheMode = "in-memory"
)

// CacheItem for the in-memory fallback.
type CacheItem struct {
	Data      interface{}
	ExpiresAt time.Time
}

// CacheService is the read surface the HTTP handlers consume. The
// poller publishes each evaluation cycle's results here; Redis is the
// primary backend with an in-memory fallback when it is down.
type CacheService struct {
	cfg *config.Config

	redis       *redis.Client
	redisCtx    context.Context
	redisCancel context.CancelFunc
	mode        CacheMode
	modeMutex   sync.RWMutex

	inMemoryStore sync.Map

	stopChan chan struct{}
}

func NewCacheService(cfg *config.Config) *CacheService {
	ctx, cancel := context.WithCancel(context.Background())

	cs := &CacheService{
		cfg:         cfg,
		redisCtx:    ctx,
		redisCancel: cancel,
		stopChan:    make(chan struct{}),
		mode:        CacheModeInMemory,
	}

	if cfg.Redis.Enabled {
		cs.connectRedis()
	} else {
		log.Println("Redis disabled in config, using in-memory cache only")
	}

	return cs
}

func (cs *CacheService) connectRedis() {
	if cs.cfg.Redis.Address == "" {
		log.Println("Redis address not configured, using in-memory cache")
		return
	}

	options := &redis.Options{
		Addr:         cs.cfg.Redis.Address,
		Password:     cs.cfg.Redis.Password,
		DB:           cs.cfg.Redis.DB,
		DialTimeout:  10 * time.Second,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
		PoolSize:     10,
		MinIdleConns: 2,
		MaxRetries:   3,
		PoolTimeout:  10 * time.Second,
	}

	if cs.cfg.Redis.UseTLS {
		options.TLSConfig = &tls.Config{
			MinVersion:         tls.VersionTLS12,
			InsecureSkipVerify: true, // cloud providers with shared certs
		}
		log.Printf("TLS enabled for Redis connection")
	}

	cs.redis = redis.NewClient(options)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pong, err := cs.redis.Ping(ctx).Result()
	if err != nil {
		log.Printf("⚠️  Redis connection failed: %v", err)
		log.Printf("⚠️  Running in IN-MEMORY mode")
		cs.setMode(CacheModeInMemory)
		return
	}

	log.Printf("✓ Redis connected successfully (response: %s)", pong)
	cs.setMode(CacheModeRedis)
}

func (cs *CacheService) setMode(mode CacheMode) {
	cs.modeMutex.Lock()
	defer cs.modeMutex.Unlock()
	cs.mode = mode
}

func (cs *CacheService) getMode() CacheMode {
	cs.modeMutex.RLock()
	defer cs.modeMutex.RUnlock()
	return cs.mode
}

// Start launches the Redis health-check loop.
func (cs *CacheService) Start() {
	go cs.runHealthCheckLoop()
}

func (cs *CacheService) Stop() {
	close(cs.stopChan)
	cs.redisCancel()

	if cs.redis != nil {
		cs.redis.Close()
	}
}

func (cs *CacheService) runHealthCheckLoop() {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			cs.checkRedisHealth()
		case <-cs.stopChan:
			return
		}
	}
}

func (cs *CacheService) checkRedisHealth() {
	if !cs.cfg.Redis.Enabled || cs.redis == nil {
		return
	}

	mode := cs.getMode()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_, err := cs.redis.Ping(ctx).Result()

	if mode == CacheModeRedis && err != nil {
		log.Printf("⚠️  Redis health check failed: %v", err)
		log.Printf("⚠️  Switching to IN-MEMORY mode")
		cs.setMode(CacheModeInMemory)
	} else if mode == CacheModeInMemory && err == nil {
		log.Printf("✓ Redis reconnected! Switching back to REDIS mode")
		cs.setMode(CacheModeRedis)
	}
}

// PublishCycle stores one evaluation cycle's full output.
func (cs *CacheService) PublishCycle(nodes []*models.NodeRecord, result analytics.CycleResult) {
	ttl := cs.cfg.CacheTTLDuration()

	cs.Set("stats", result.Stats, ttl)
	cs.Set("nodes", nodes, ttl)
	cs.Set("health", result.Health, ttl)
	cs.Set("anomalies", result.Anomalies, ttl)
	cs.Set("risk", result.Risk, ttl)

	for _, n := range nodes {
		cs.Set("node:"+n.ID, n, 60*time.Second)
	}
}

// ============================================
// Generic Set/Get with Redis + In-Memory
// ============================================

func (cs *CacheService) Set(key string, data interface{}, ttl time.Duration) {
	mode := cs.getMode()

	if mode == CacheModeRedis {
		if err := cs.setRedis(key, data, ttl); err != nil {
			log.Printf("Redis SET failed for '%s': %v (falling back to in-memory)", key, err)
			cs.setInMemory(key, data, ttl)
		}
		return
	}
	cs.setInMemory(key, data, ttl)
}

func (cs *CacheService) Get(key string) (interface{}, bool) {
	mode := cs.getMode()

	if mode == CacheModeRedis {
		data, found, err := cs.getRedis(key)
		if err != nil {
			return cs.getInMemory(key)
		}
		return data, found
	}
	return cs.getInMemory(key)
}

// GetWithStale retrieves data along with a staleness flag. Redis
// manages TTL itself, so anything found there is considered fresh.
func (cs *CacheService) GetWithStale(key string) (interface{}, bool, bool) {
	mode := cs.getMode()

	if mode == CacheModeRedis {
		data, found, err := cs.getRedis(key)
		if err != nil {
			data, found := cs.getInMemory(key)
			return data, false, found
		}
		return data, false, found
	}
	return cs.getInMemoryWithStale(key)
}

// ============================================
// Redis operations
// ============================================

func (cs *CacheService) setRedis(key string, data interface{}, ttl time.Duration) error {
	if cs.redis == nil {
		return fmt.Errorf("redis client not initialized")
	}

	ctx, cancel := context.WithTimeout(cs.redisCtx, 2*time.Second)
	defer cancel()

	jsonData, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshal failed: %w", err)
	}
	return cs.redis.Set(ctx, key, jsonData, ttl).Err()
}

func (cs *CacheService) getRedis(key string) (interface{}, bool, error) {
	if cs.redis == nil {
		return nil, false, fmt.Errorf("redis client not initialized")
	}

	ctx, cancel := context.WithTimeout(cs.redisCtx, 2*time.Second)
	defer cancel()

	jsonData, err := cs.redis.Get(ctx, key).Result()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	// Deserialize based on key pattern
	var data interface{}
	switch {
	case key == "stats":
		var stats models.NetworkStats
		if err := json.Unmarshal([]byte(jsonData), &stats); err != nil {
			return nil, false, err
		}
		data = stats
	case key == "nodes":
		var nodes []*models.NodeRecord
		if err := json.Unmarshal([]byte(jsonData), &nodes); err != nil {
			return nil, false, err
		}
		data = nodes
	case key == "health":
		var health map[string]models.HealthScore
		if err := json.Unmarshal([]byte(jsonData), &health); err != nil {
			return nil, false, err
		}
		data = health
	case key == "anomalies":
		var anomalies map[string][]models.Anomaly
		if err := json.Unmarshal([]byte(jsonData), &anomalies); err != nil {
			return nil, false, err
		}
		data = anomalies
	case key == "risk":
		var risk map[string]int
		if err := json.Unmarshal([]byte(jsonData), &risk); err != nil {
			return nil, false, err
		}
		data = risk
	case strings.HasPrefix(key, "node:"):
		var node models.NodeRecord
		if err := json.Unmarshal([]byte(jsonData), &node); err != nil {
			return nil, false, err
		}
		data = &node
	default:
		if err := json.Unmarshal([]byte(jsonData), &data); err != nil {
			return nil, false, err
		}
	}

	return data, true, nil
}

// ============================================
// In-memory operations (fallback)
// ============================================

func (cs *CacheService) setInMemory(key string, data interface{}, ttl time.Duration) {
	cs.inMemoryStore.Store(key, &CacheItem{
		Data:      data,
		ExpiresAt: time.Now().Add(ttl),
	})
}

func (cs *CacheService) getInMemory(key string) (interface{}, bool) {
	val, ok := cs.inMemoryStore.Load(key)
	if !ok {
		return nil, false
	}

	item := val.(*CacheItem)
	if time.Now().After(item.ExpiresAt) {
		return nil, false
	}
	return item.Data, true
}

func (cs *CacheService) getInMemoryWithStale(key string) (interface{}, bool, bool) {
	val, ok := cs.inMemoryStore.Load(key)
	if !ok {
		return nil, false, false
	}

	item := val.(*CacheItem)
	return item.Data, time.Now().After(item.ExpiresAt), true
}

// ============================================
// Typed helpers
// ============================================

func (cs *CacheService) GetNetworkStats(allowStale bool) (*models.NetworkStats, bool, bool) {
	data, stale, found := cs.GetWithStale("stats")
	if !found || (!allowStale && stale) {
		return nil, false, false
	}
	if stats, ok := data.(models.NetworkStats); ok {
		return &stats, stale, true
	}
	return nil, false, false
}

func (cs *CacheService) GetNodes(allowStale bool) ([]*models.NodeRecord, bool, bool) {
	data, stale, found := cs.GetWithStale("nodes")
	if !found || (!allowStale && stale) {
		return nil, false, false
	}
	if nodes, ok := data.([]*models.NodeRecord); ok {
		return nodes, stale, true
	}
	return nil, false, false
}

func (cs *CacheService) GetNode(id string, allowStale bool) (*models.NodeRecord, bool, bool) {
	data, stale, found := cs.GetWithStale("node:" + id)
	if !found || (!allowStale && stale) {
		return nil, false, false
	}
	if node, ok := data.(*models.NodeRecord); ok {
		return node, stale, true
	}
	return nil, false, false
}

func (cs *CacheService) GetHealthScores(allowStale bool) (map[string]models.HealthScore, bool) {
	data, stale, found := cs.GetWithStale("health")
	if !found || (!allowStale && stale) {
		return nil, false
	}
	if health, ok := data.(map[string]models.HealthScore); ok {
		return health, true
	}
	return nil, false
}

func (cs *CacheService) GetAnomalies(allowStale bool) (map[string][]models.Anomaly, bool) {
	data, stale, found := cs.GetWithStale("anomalies")
	if !found || (!allowStale && stale) {
		return nil, false
	}
	if anomalies, ok := data.(map[string][]models.Anomaly); ok {
		return anomalies, true
	}
	return nil, false
}

func (cs *CacheService) GetRiskScores(allowStale bool) (map[string]int, bool) {
	data, stale, found := cs.GetWithStale("risk")
	if !found || (!allowStale && stale) {
		return nil, false
	}
	if risk, ok := data.(map[string]int); ok {
		return risk, true
	}
	return nil, false
}

// ============================================
// Utility methods
// ============================================

func (cs *CacheService) GetCacheMode() CacheMode {
	return cs.getMode()
}

func (cs *CacheService) ClearCache() error {
	mode := cs.getMode()

	if mode == CacheModeRedis && cs.redis != nil {
		ctx, cancel := context.WithTimeout(cs.redisCtx, 5*time.Second)
		defer cancel()

		iter := cs.redis.Scan(ctx, 0, "node:*", 0).Iterator()
		deleted := 0
		for iter.Next(ctx) {
			cs.redis.Del(ctx, iter.Val())
			deleted++
		}

		cs.redis.Del(ctx, "stats", "nodes", "health", "anomalies", "risk")
		log.Printf("Redis cache cleared (%d node keys deleted)", deleted)
	}

	cs.inMemoryStore = sync.Map{}
	log.Println("In-memory cache cleared")

	return nil
}

func (cs *CacheService) GetCacheStats() map[string]interface{} {
	stats := map[string]interface{}{
		"mode":    string(cs.getMode()),
		"enabled": cs.cfg.Redis.Enabled,
	}

	if cs.getMode() == CacheModeRedis && cs.redis != nil {
		ctx, cancel := context.WithTimeout(cs.redisCtx, 2*time.Second)
		defer cancel()

		if dbSize, err := cs.redis.DBSize(ctx).Result(); err == nil {
			stats["redis_keys"] = dbSize
		}
	}

	inMemCount := 0
	cs.inMemoryStore.Range(func(_, _ interface{}) bool {
		inMemCount++
		return true
	})
	stats["in_memory_keys"] = inMemCount

	return stats
}
