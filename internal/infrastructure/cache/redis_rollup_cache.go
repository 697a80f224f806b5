// Package cache provides the Redis and in-process backings for the rollup
// cache and the ingestion run lock.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/merchdash/backend/internal/domain/report"
)

const (
	defaultRollupTTL     = 5 * time.Minute
	defaultScanBatchSize = 100
)

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// RedisRollupCache implements the rollup cache on Redis. Suitable for
// multi-instance deployments where every instance must see the same
// cached rollups and invalidations.
type RedisRollupCache struct {
	client     *redis.Client
	defaultTTL time.Duration
	logger     *zap.Logger
}

// RedisRollupCacheOption is a functional option for configuring the cache
type RedisRollupCacheOption func(*RedisRollupCache)

// WithRollupTTL sets the TTL applied when Set is called with a zero TTL
func WithRollupTTL(ttl time.Duration) RedisRollupCacheOption {
	return func(c *RedisRollupCache) {
		if ttl > 0 {
			c.defaultTTL = ttl
		}
	}
}

// WithRollupLogger sets the logger
func WithRollupLogger(logger *zap.Logger) RedisRollupCacheOption {
	return func(c *RedisRollupCache) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewRedisRollupCache connects to Redis and verifies the connection
func NewRedisRollupCache(cfg RedisConfig, opts ...RedisRollupCacheOption) (*RedisRollupCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return newRedisRollupCache(client, opts...), nil
}

// NewRedisRollupCacheWithClient wraps an existing Redis client.
// Useful for tests and for sharing a client across components.
func NewRedisRollupCacheWithClient(client *redis.Client, opts ...RedisRollupCacheOption) *RedisRollupCache {
	return newRedisRollupCache(client, opts...)
}

func newRedisRollupCache(client *redis.Client, opts ...RedisRollupCacheOption) *RedisRollupCache {
	cache := &RedisRollupCache{
		client:     client,
		defaultTTL: defaultRollupTTL,
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(cache)
	}
	return cache
}

// Get retrieves a cached payload. Returns nil, nil on a miss.
func (c *RedisRollupCache) Get(ctx context.Context, key string) ([]byte, error) {
	payload, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read rollup cache: %w", err)
	}
	return payload, nil
}

// Set stores a payload. A zero TTL uses the configured default.
func (c *RedisRollupCache) Set(ctx context.Context, key string, payload []byte, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = c.defaultTTL
	}
	if err := c.client.Set(ctx, key, payload, ttl).Err(); err != nil {
		return fmt.Errorf("failed to write rollup cache: %w", err)
	}
	return nil
}

// InvalidateShop removes every cached rollup for a shop with a SCAN+DEL
// loop so large keyspaces never block Redis the way KEYS would.
func (c *RedisRollupCache) InvalidateShop(ctx context.Context, shop string) error {
	pattern := report.ShopKeyPrefix(shop) + "*"

	var cursor uint64
	var deleted int64
	for {
		keys, next, err := c.client.Scan(ctx, cursor, pattern, defaultScanBatchSize).Result()
		if err != nil {
			return fmt.Errorf("failed to scan rollup cache keys: %w", err)
		}
		if len(keys) > 0 {
			n, err := c.client.Del(ctx, keys...).Result()
			if err != nil {
				return fmt.Errorf("failed to delete rollup cache keys: %w", err)
			}
			deleted += n
		}
		cursor = next
		if cursor == 0 {
			break
		}
	}

	c.logger.Debug("Rollup cache invalidated",
		zap.String("shop", shop),
		zap.Int64("deleted", deleted))
	return nil
}

// Close closes the Redis client
func (c *RedisRollupCache) Close() error {
	return c.client.Close()
}

// GetClient exposes the underlying client for components sharing the
// connection
func (c *RedisRollupCache) GetClient() *redis.Client {
	return c.client
}

// Ensure RedisRollupCache implements the rollup cache port
var _ report.RollupCache = (*RedisRollupCache)(nil)
