package cache

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/merchdash/backend/internal/domain/ingest"
	"github.com/merchdash/backend/internal/domain/report"
	"github.com/merchdash/backend/internal/infrastructure/config"
)

// Factory creates the cache-backed components from configuration,
// preferring Redis and optionally falling back to in-process
// implementations when Redis is unavailable.
type Factory struct {
	redisConfig           config.RedisConfig
	logger                *zap.Logger
	allowInMemoryFallback bool
}

// FactoryOption is a functional option for configuring the factory
type FactoryOption func(*Factory)

// WithFactoryLogger sets the logger for the factory
func WithFactoryLogger(logger *zap.Logger) FactoryOption {
	return func(f *Factory) {
		if logger != nil {
			f.logger = logger
		}
	}
}

// WithInMemoryFallback controls whether to fall back to in-process
// implementations when Redis is unavailable. Default is true.
func WithInMemoryFallback(allow bool) FactoryOption {
	return func(f *Factory) {
		f.allowInMemoryFallback = allow
	}
}

// NewFactory creates a new factory
func NewFactory(cfg config.RedisConfig, opts ...FactoryOption) *Factory {
	f := &Factory{
		redisConfig:           cfg,
		logger:                zap.NewNop(),
		allowInMemoryFallback: true,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func (f *Factory) redisCfg() RedisConfig {
	return RedisConfig{
		Host:     f.redisConfig.Host,
		Port:     f.redisConfig.Port,
		Password: f.redisConfig.Password,
		DB:       f.redisConfig.DB,
	}
}

// CreateRollupCache creates the rollup cache, Redis first. The in-process
// fallback serves a single instance correctly; with several instances it
// cannot propagate invalidations, hence the warning.
func (f *Factory) CreateRollupCache(opts ...RedisRollupCacheOption) (report.RollupCache, error) {
	cache, err := NewRedisRollupCache(f.redisCfg(), opts...)
	if err == nil {
		f.logger.Info("using Redis rollup cache")
		return cache, nil
	}

	if !f.allowInMemoryFallback {
		return nil, fmt.Errorf("Redis required for rollup cache but unavailable: %w", err)
	}

	f.logger.Warn("Redis unavailable, falling back to in-memory rollup cache. "+
		"Invalidations will not reach other instances.",
		zap.Error(err),
	)
	return NewInMemoryRollupCache(), nil
}

// CreateRunLock creates the ingestion run lock, Redis first. The
// in-process fallback cannot exclude runs on other instances.
func (f *Factory) CreateRunLock() (ingest.RunLock, error) {
	lock, err := NewRedisRunLock(f.redisCfg())
	if err == nil {
		f.logger.Info("using Redis run lock")
		return lock, nil
	}

	if !f.allowInMemoryFallback {
		return nil, fmt.Errorf("Redis required for run lock but unavailable: %w", err)
	}

	f.logger.Warn("Redis unavailable, falling back to in-memory run lock. "+
		"Concurrent runs on other instances will not be excluded.",
		zap.Error(err),
	)
	return NewInMemoryRunLock(), nil
}
