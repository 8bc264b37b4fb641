// Package ratecache caches extracted rate tables so repeated lookups do not
// re-fetch the regulator's document. A Redis-backed cache is used when an
// address is configured; an in-process map otherwise.
package ratecache

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/RobertoA1/OptiCred/internal/ratetable"
	"github.com/redis/go-redis/v9"
)

// TableKey is the cache key under which the current rate table is stored.
const TableKey = "opticred:ratetable"

// Cache is a string key/value store.
type Cache interface {
	Get(key string) (string, bool)
	Set(key string, value string) error
}

// RedisCache stores entries in a Redis instance.
type RedisCache struct {
	client *redis.Client
	ctx    context.Context
	ttl    time.Duration
}

// NewRedisCache connects to the Redis instance at addr. Entries expire after
// ttl; a zero ttl keeps them until overwritten.
func NewRedisCache(addr string, ttl time.Duration) *RedisCache {
	rdb := redis.NewClient(&redis.Options{
		Addr: addr,
	})
	return &RedisCache{
		client: rdb,
		ctx:    context.Background(),
		ttl:    ttl,
	}
}

func (r *RedisCache) Get(key string) (string, bool) {
	val, err := r.client.Get(r.ctx, key).Result()
	if err != nil {
		return "", false
	}
	return val, true
}

func (r *RedisCache) Set(key string, value string) error {
	return r.client.Set(r.ctx, key, value, r.ttl).Err()
}

// MemoryCache is a process-local cache for single-node or test use.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]string
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: make(map[string]string)}
}

func (m *MemoryCache) Get(key string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	val, ok := m.entries[key]
	return val, ok
}

func (m *MemoryCache) Set(key string, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = value
	return nil
}

// StoreTable serializes a rate table into the cache.
func StoreTable(cache Cache, table *ratetable.Table) error {
	data, err := json.Marshal(table)
	if err != nil {
		return fmt.Errorf("failed to serialize rate table: %w", err)
	}
	return cache.Set(TableKey, string(data))
}

// LoadTable deserializes the cached rate table. The second return is false
// when no table is cached.
func LoadTable(cache Cache) (*ratetable.Table, bool, error) {
	data, ok := cache.Get(TableKey)
	if !ok {
		return nil, false, nil
	}
	var table ratetable.Table
	if err := json.Unmarshal([]byte(data), &table); err != nil {
		return nil, false, fmt.Errorf("failed to deserialize cached rate table: %w", err)
	}
	return &table, true, nil
}
