package tenant

import (
	"context"
	"sync"
	"time"
)

// Cache stores resolution results keyed by "method:value". A stored nil
// tenant is a valid negative entry recording that no tenant matched, so
// repeated lookups for nonexistent tenants skip the store.
//
// The cache is an optimization, not a source of truth: concurrent
// populations of the same key are allowed to race (last writer wins) and
// duplicate store queries on a shared miss are an accepted cost.
type Cache interface {
	// Get returns the cached tenant and whether an entry exists.
	// A (nil, true) result is a cached negative lookup.
	Get(ctx context.Context, key string) (*Tenant, bool)

	// Set stores a resolution result with a fixed TTL (no sliding expiry).
	Set(ctx context.Context, key string, tenant *Tenant, ttl time.Duration)

	// Delete removes a single entry.
	Delete(ctx context.Context, key string)

	// Purge removes all entries.
	Purge(ctx context.Context)

	// Close releases any resources held by the cache.
	Close() error
}

// DefaultCacheSize bounds the in-memory cache.
const DefaultCacheSize = 1000

type memoryEntry struct {
	tenant    *Tenant
	expiresAt time.Time
}

// memoryCache is the default in-process cache: mutex-guarded map with a
// background expiry sweep and LRU eviction when full. Reads take the same
// lock as writes because Get reorders the LRU list.
type memoryCache struct {
	mu      sync.Mutex
	items   map[string]memoryEntry
	lru     []string
	maxSize int
	stop    chan struct{}
	done    chan struct{}
	closed  bool
}

// NewMemoryCache creates an in-memory cache with the default size limit.
func NewMemoryCache() Cache {
	return NewMemoryCacheWithSize(DefaultCacheSize)
}

// NewMemoryCacheWithSize creates an in-memory cache holding at most maxSize
// entries.
func NewMemoryCacheWithSize(maxSize int) Cache {
	if maxSize <= 0 {
		maxSize = DefaultCacheSize
	}

	c := &memoryCache{
		items:   make(map[string]memoryEntry),
		lru:     make([]string, 0, maxSize),
		maxSize: maxSize,
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}

	go c.sweep()

	return c
}

func (c *memoryCache) Get(ctx context.Context, key string) (*Tenant, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.items[key]
	if !ok {
		return nil, false
	}

	if time.Now().After(entry.expiresAt) {
		delete(c.items, key)
		c.removeLRU(key)
		return nil, false
	}

	c.touchLRU(key)

	return entry.tenant, true
}

func (c *memoryCache) Set(ctx context.Context, key string, tenant *Tenant, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.items[key]; !exists && len(c.items) >= c.maxSize {
		if len(c.lru) > 0 {
			evict := c.lru[0]
			delete(c.items, evict)
			c.lru = c.lru[1:]
		}
	}

	c.items[key] = memoryEntry{
		tenant:    tenant,
		expiresAt: time.Now().Add(ttl),
	}

	c.touchLRU(key)
}

func (c *memoryCache) Delete(ctx context.Context, key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.items, key)
	c.removeLRU(key)
}

func (c *memoryCache) Purge(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = make(map[string]memoryEntry)
	c.lru = c.lru[:0]
}

// sweep periodically removes expired entries so negative results do not
// linger beyond their TTL even when never read again.
func (c *memoryCache) sweep() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	defer close(c.done)

	for {
		select {
		case <-ticker.C:
			c.removeExpired()
		case <-c.stop:
			return
		}
	}
}

func (c *memoryCache) removeExpired() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	for key, entry := range c.items {
		if now.After(entry.expiresAt) {
			delete(c.items, key)
			c.removeLRU(key)
		}
	}
}

func (c *memoryCache) touchLRU(key string) {
	c.removeLRU(key)
	c.lru = append(c.lru, key)
}

func (c *memoryCache) removeLRU(key string) {
	for i, k := range c.lru {
		if k == key {
			c.lru = append(c.lru[:i], c.lru[i+1:]...)
			return
		}
	}
}

func (c *memoryCache) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.mu.Unlock()

	close(c.stop)
	<-c.done
	return nil
}

// noopCache disables caching. Useful in tests asserting store query counts.
type noopCache struct{}

// NewNoopCache returns a cache that never stores anything.
func NewNoopCache() Cache { return noopCache{} }

func (noopCache) Get(ctx context.Context, key string) (*Tenant, bool)              { return nil, false }
func (noopCache) Set(ctx context.Context, key string, t *Tenant, ttl time.Duration) {}
func (noopCache) Delete(ctx context.Context, key string)                            {}
func (noopCache) Purge(ctx context.Context)                                         {}
func (noopCache) Close() error                                                      { return nil }
