package cache

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/merchdash/backend/internal/domain/report"
)

const defaultCleanupInterval = 30 * time.Second

// rollupEntry wraps a cached payload with its expiration time
type rollupEntry struct {
	payload   []byte
	expiresAt time.Time
}

func (e rollupEntry) expired(now time.Time) bool {
	return now.After(e.expiresAt)
}

// InMemoryRollupCache implements the rollup cache on a process-local map.
// Suitable for single-instance deployments and tests; invalidations do
// not propagate to other instances.
type InMemoryRollupCache struct {
	mu         sync.RWMutex
	entries    map[string]rollupEntry
	defaultTTL time.Duration

	stopChan  chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once

	// Stats for monitoring
	hits   int64
	misses int64
}

// InMemoryRollupCacheOption is a functional option for configuring the cache
type InMemoryRollupCacheOption func(*InMemoryRollupCache)

// WithInMemoryRollupTTL sets the TTL applied when Set is called with a
// zero TTL
func WithInMemoryRollupTTL(ttl time.Duration) InMemoryRollupCacheOption {
	return func(c *InMemoryRollupCache) {
		if ttl > 0 {
			c.defaultTTL = ttl
		}
	}
}

// NewInMemoryRollupCache creates an in-process rollup cache and starts
// its background expiry sweep.
func NewInMemoryRollupCache(opts ...InMemoryRollupCacheOption) *InMemoryRollupCache {
	cache := &InMemoryRollupCache{
		entries:    make(map[string]rollupEntry),
		defaultTTL: defaultRollupTTL,
		stopChan:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(cache)
	}

	cache.wg.Add(1)
	go cache.cleanupLoop()

	return cache
}

// Get retrieves a cached payload. Returns nil, nil on a miss.
func (c *InMemoryRollupCache) Get(_ context.Context, key string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok || entry.expired(time.Now()) {
		c.misses++
		return nil, nil
	}
	c.hits++
	return entry.payload, nil
}

// Set stores a payload. A zero TTL uses the configured default.
func (c *InMemoryRollupCache) Set(_ context.Context, key string, payload []byte, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = c.defaultTTL
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = rollupEntry{
		payload:   payload,
		expiresAt: time.Now().Add(ttl),
	}
	return nil
}

// InvalidateShop removes every cached rollup for a shop
func (c *InMemoryRollupCache) InvalidateShop(_ context.Context, shop string) error {
	prefix := report.ShopKeyPrefix(shop)

	c.mu.Lock()
	defer c.mu.Unlock()
	for key := range c.entries {
		if strings.HasPrefix(key, prefix) {
			delete(c.entries, key)
		}
	}
	return nil
}

// Close stops the expiry sweep. Safe to call multiple times.
func (c *InMemoryRollupCache) Close() error {
	c.closeOnce.Do(func() {
		close(c.stopChan)
		c.wg.Wait()
	})
	return nil
}

// Stats returns hit and miss counts since startup
func (c *InMemoryRollupCache) Stats() (hits, misses int64) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.hits, c.misses
}

func (c *InMemoryRollupCache) cleanupLoop() {
	defer c.wg.Done()

	ticker := time.NewTicker(defaultCleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.stopChan:
			return
		case <-ticker.C:
			c.cleanup()
		}
	}
}

func (c *InMemoryRollupCache) cleanup() {
	now := time.Now()

	c.mu.Lock()
	defer c.mu.Unlock()
	for key, entry := range c.entries {
		if entry.expired(now) {
			delete(c.entries, key)
		}
	}
}

// Ensure InMemoryRollupCache implements the rollup cache port
var _ report.RollupCache = (*InMemoryRollupCache)(nil)
