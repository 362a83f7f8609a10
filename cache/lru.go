package cache

import (
	"context"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/jonwraymond/healthops/health"
)

// DefaultLRUSize is the capacity of an LRUCache built with size <= 0.
const DefaultLRUSize = 1024

// LRUCache is a bounded Cache. Once full, the least recently used snapshot
// is evicted to make room. Each entry keeps its own expiry.
type LRUCache struct {
	entries *lru.Cache[string, cacheEntry]
	now     func() time.Time
}

// NewLRUCache returns an LRUCache holding at most size snapshots.
func NewLRUCache(size int) (*LRUCache, error) {
	if size <= 0 {
		size = DefaultLRUSize
	}
	entries, err := lru.New[string, cacheEntry](size)
	if err != nil {
		return nil, err
	}
	return &LRUCache{entries: entries, now: time.Now}, nil
}

func (c *LRUCache) Get(_ context.Context, key string) (health.Health, bool) {
	entry, ok := c.entries.Get(key)
	if !ok {
		return health.Health{}, false
	}
	if !c.now().Before(entry.expiresAt) {
		c.entries.Remove(key)
		return health.Health{}, false
	}
	return entry.health, true
}

func (c *LRUCache) Set(_ context.Context, key string, h health.Health, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	if err := ValidateKey(key); err != nil {
		return err
	}
	c.entries.Add(key, cacheEntry{health: h, expiresAt: c.now().Add(ttl)})
	return nil
}

func (c *LRUCache) Delete(_ context.Context, key string) error {
	c.entries.Remove(key)
	return nil
}

// Len counts stored snapshots, including expired ones not yet read.
func (c *LRUCache) Len() int { return c.entries.Len() }

var _ Cache = (*LRUCache)(nil)
