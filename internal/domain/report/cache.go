package report

import (
	"context"
	"strings"
	"time"
)

// RollupCache caches rendered rollup payloads so repeated dashboard loads
// do not re-run the aggregation queries. Keys are shop-scoped; ingestion
// invalidates a whole shop at once because any new fact can shift any
// rollup.
//
// Implementations: Redis for multi-instance deployments, an in-process
// map for single-instance setups and tests. A cache error is treated as
// a miss by callers, never as a request failure.
type RollupCache interface {
	// Get retrieves a cached payload. Returns nil, nil on a miss.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores a payload with the given TTL. A ttl of 0 uses the
	// implementation default.
	Set(ctx context.Context, key string, payload []byte, ttl time.Duration) error

	// InvalidateShop removes every cached payload for a shop
	InvalidateShop(ctx context.Context, shop string) error

	// Close releases any resources held by the cache
	Close() error
}

// cacheKeyPrefix namespaces rollup entries in shared cache backends
const cacheKeyPrefix = "report"

// CacheKey builds the canonical cache key for a shop-scoped rollup query.
// The shop segment comes right after the prefix so InvalidateShop can
// match on "report:{shop}:".
func CacheKey(shop, query string, parts ...string) string {
	segments := append([]string{cacheKeyPrefix, shop, query}, parts...)
	return strings.Join(segments, ":")
}

// ShopKeyPrefix returns the key prefix shared by every cached rollup of a
// shop
func ShopKeyPrefix(shop string) string {
	return cacheKeyPrefix + ":" + shop + ":"
}
