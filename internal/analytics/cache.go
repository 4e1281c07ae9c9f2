package analytics

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"
)

// CacheEntry 缓存项；新鲜度由 Aggregator 按自己的时钟判断
type CacheEntry struct {
	Metrics  *Metrics  `json:"metrics"`
	StoredAt time.Time `json:"storedAt"`
}

// Cache 汇总结果缓存，键为周期字符串
type Cache interface {
	Get(ctx context.Context, key string) (*CacheEntry, bool, error)
	Set(ctx context.Context, key string, entry *CacheEntry, ttl time.Duration) error
	Clear(ctx context.Context) error
}

// ── 内存缓存 ──

// MemoryCache 进程内缓存，返回的 Metrics 与写入时为同一指针
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]*CacheEntry
}

// NewMemoryCache 创建内存缓存
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: make(map[string]*CacheEntry)}
}

func (c *MemoryCache) Get(_ context.Context, key string) (*CacheEntry, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[key]
	return e, ok, nil
}

func (c *MemoryCache) Set(_ context.Context, key string, entry *CacheEntry, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = entry
	return nil
}

func (c *MemoryCache) Clear(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*CacheEntry)
	return nil
}

// ── Redis 缓存 ──

// ByteStore RedisCache 依赖的最小存储接口，由 pkg/redis.Client 实现
type ByteStore interface {
	GetBytes(ctx context.Context, key string) ([]byte, bool, error)
	SetBytes(ctx context.Context, key string, value []byte, ttl time.Duration) error
	DeletePrefix(ctx context.Context, prefix string) error
}

const redisCachePrefix = "bot_analises:metricas:"

// RedisCache 多实例共享的缓存，值为 JSON
type RedisCache struct {
	store ByteStore
}

// NewRedisCache 创建 Redis 缓存
func NewRedisCache(store ByteStore) *RedisCache {
	return &RedisCache{store: store}
}

func (c *RedisCache) Get(ctx context.Context, key string) (*CacheEntry, bool, error) {
	raw, ok, err := c.store.GetBytes(ctx, redisCachePrefix+key)
	if err != nil || !ok {
		return nil, false, err
	}
	var entry CacheEntry
	if err := json.Unmarshal(raw, &entry); err != nil {
		return nil, false, fmt.Errorf("cache corrompido para %q: %w", key, err)
	}
	return &entry, true, nil
}

func (c *RedisCache) Set(ctx context.Context, key string, entry *CacheEntry, ttl time.Duration) error {
	raw, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	return c.store.SetBytes(ctx, redisCachePrefix+key, raw, ttl)
}

func (c *RedisCache) Clear(ctx context.Context) error {
	return c.store.DeletePrefix(ctx, redisCachePrefix)
}
