package services

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"pnodewatch/config"
	"pnodewatch/models"
)

// RedisHistoryStore persists the rolling metric history under a single
// fixed key as a JSON map of node id → snapshot array. It implements
// analytics.HistoryPersistence; the store swallows its errors, so this
// layer only reports them.
//
// The whole map is rewritten on every save: last write wins at store
// granularity, matching the at-most-one-writer assumption of the poll
// loop.
type RedisHistoryStore struct {
	client *redis.Client
	key    string
}

func NewRedisHistoryStore(cfg *config.Config) *RedisHistoryStore {
	options := &redis.Options{
		Addr:         cfg.Redis.Address,
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		DialTimeout:  10 * time.Second,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
		PoolSize:     5,
		MaxRetries:   3,
	}
	if cfg.Redis.UseTLS {
		options.TLSConfig = &tls.Config{
			MinVersion:         tls.VersionTLS12,
			InsecureSkipVerify: true,
		}
	}

	key := cfg.Redis.HistoryKey
	if key == "" {
		key = "pnode:metric_history"
	}

	return &RedisHistoryStore{
		client: redis.NewClient(options),
		key:    key,
	}
}

func (r *RedisHistoryStore) Load(ctx context.Context) (map[string][]models.MetricSnapshot, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	jsonData, err := r.client.Get(ctx, r.key).Result()
	if err == redis.Nil {
		return make(map[string][]models.MetricSnapshot), nil
	}
	if err != nil {
		return nil, fmt.Errorf("history load failed: %w", err)
	}

	var entries map[string][]models.MetricSnapshot
	if err := json.Unmarshal([]byte(jsonData), &entries); err != nil {
		return nil, fmt.Errorf("history payload corrupt: %w", err)
	}
	return entries, nil
}

func (r *RedisHistoryStore) Save(ctx context.Context, entries map[string][]models.MetricSnapshot) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	jsonData, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("history marshal failed: %w", err)
	}
	if err := r.client.Set(ctx, r.key, jsonData, 0).Err(); err != nil {
		return fmt.Errorf("history save failed: %w", err)
	}
	return nil
}

func (r *RedisHistoryStore) Close() error {
	return r.client.Close()
}
