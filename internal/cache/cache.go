// Package cache provides the time-boxed, size-bounded store for analysis results.
package cache

import (
	"fmt"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/simplelru"
	"github.com/spiffcs/ghaudit/internal/constants"
	"github.com/spiffcs/ghaudit/internal/log"
)

// Cacher defines the interface for result cache operations.
// This interface enables substituting the cache in unit tests.
type Cacher[V any] interface {
	Get(key string) (V, bool)
	Set(key string, value V)
}

// Ensure Cache implements Cacher.
var _ Cacher[int] = (*Cache[int])(nil)

type entry[V any] struct {
	value     V
	createdAt time.Time
}

// Stats is a point-in-time view of cache usage.
type Stats struct {
	Size     int           `json:"size"`
	Capacity int           `json:"capacity"`
	TTL      time.Duration `json:"ttl"`
	Hits     uint64        `json:"hits"`
	Misses   uint64        `json:"misses"`
	Expired  uint64        `json:"expired"`
}

// Cache is a least-recently-used map whose entries expire after a TTL.
// Expiry is checked lazily on Get; there is no background sweep.
type Cache[V any] struct {
	mu  sync.Mutex
	lru *simplelru.LRU[string, entry[V]]
	ttl time.Duration
	cap int
	now func() time.Time

	hits, misses, expired uint64
}

// Option configures a Cache.
type Option func(*options)

type options struct {
	now func() time.Time
}

// WithClock overrides the time source. Used by tests.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		o.now = now
	}
}

// New creates a cache holding at most capacity entries for ttl each.
// Non-positive values select the defaults.
func New[V any](capacity int, ttl time.Duration, opts ...Option) (*Cache[V], error) {
	if capacity <= 0 {
		capacity = constants.DefaultCacheCapacity
	}
	if ttl <= 0 {
		ttl = constants.DefaultCacheTTL
	}
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}

	l, err := simplelru.NewLRU[string, entry[V]](capacity, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create result cache: %w", err)
	}

	return &Cache[V]{lru: l, ttl: ttl, cap: capacity, now: o.now}, nil
}

// Get returns the value for key and marks it most recently used. Absent
// and expired keys miss; expired entries are removed.
func (c *Cache[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero V
	e, ok := c.lru.Get(key)
	if !ok {
		c.misses++
		return zero, false
	}
	if c.now().Sub(e.createdAt) > c.ttl {
		c.lru.Remove(key)
		c.expired++
		c.misses++
		log.Debug("result cache entry expired", "key", key)
		return zero, false
	}
	c.hits++
	return e.value, true
}

// Set stores value under key with the current time, refreshing recency if
// the key exists and evicting the least recently used entry when full.
func (c *Cache[V]) Set(key string, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	// Remove first so an existing key is reinserted as a fresh entry.
	c.lru.Remove(key)
	if evicted := c.lru.Add(key, entry[V]{value: value, createdAt: c.now()}); evicted {
		log.Debug("result cache full, evicted least recently used entry", "capacity", c.cap)
	}
}

// Stats returns current usage counters.
func (c *Cache[V]) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Stats{
		Size:     c.lru.Len(),
		Capacity: c.cap,
		TTL:      c.ttl,
		Hits:     c.hits,
		Misses:   c.misses,
		Expired:  c.expired,
	}
}
