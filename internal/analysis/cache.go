package analysis

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache is a read-through artifact cache in front of the store. Entries are
// invalidated on regenerate and delete.
type Cache interface {
	Get(ctx context.Context, id string) (Artifact, bool)
	Set(ctx context.Context, a Artifact)
	Delete(ctx context.Context, id string)
}

type memoryCache struct {
	mu      sync.RWMutex
	ttl     time.Duration
	entries map[string]memoryEntry
}

type memoryEntry struct {
	artifact  Artifact
	expiresAt time.Time
}

func NewMemoryCache(ttl time.Duration) Cache {
	return &memoryCache{ttl: ttl, entries: map[string]memoryEntry{}}
}

func (c *memoryCache) Get(_ context.Context, id string) (Artifact, bool) {
	c.mu.RLock()
	e, ok := c.entries[id]
	c.mu.RUnlock()
	if !ok || time.Now().After(e.expiresAt) {
		return Artifact{}, false
	}
	return e.artifact, true
}

func (c *memoryCache) Set(_ context.Context, a Artifact) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[a.ID] = memoryEntry{artifact: a, expiresAt: time.Now().Add(c.ttl)}
}

func (c *memoryCache) Delete(_ context.Context, id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, id)
}

type redisCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRedisCache caches artifacts in Redis under "artifact:<id>". Cache
// failures degrade to store reads; they are never surfaced to callers.
func NewRedisCache(rdb *redis.Client, ttl time.Duration) Cache {
	return &redisCache{rdb: rdb, ttl: ttl}
}

func (c *redisCache) key(id string) string { return "artifact:" + id }

func (c *redisCache) Get(ctx context.Context, id string) (Artifact, bool) {
	raw, err := c.rdb.Get(ctx, c.key(id)).Bytes()
	if err != nil {
		return Artifact{}, false
	}
	var a Artifact
	if err := json.Unmarshal(raw, &a); err != nil {
		return Artifact{}, false
	}
	return a, true
}

func (c *redisCache) Set(ctx context.Context, a Artifact) {
	raw, err := json.Marshal(a)
	if err != nil {
		return
	}
	_ = c.rdb.Set(ctx, c.key(a.ID), raw, c.ttl).Err()
}

func (c *redisCache) Delete(ctx context.Context, id string) {
	_ = c.rdb.Del(ctx, c.key(id)).Err()
}
