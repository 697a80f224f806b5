package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/merchdash/backend/internal/domain/shop"
)

// ShopSource enumerates the shops scheduled ingestion should cover
type ShopSource interface {
	FindAllActive(ctx context.Context) ([]*shop.Shop, error)
}

// CronTrigger fires ingestion sweeps on the configured cron schedules.
// Each firing enumerates active shops and submits one job per shop to
// the scheduler's worker pool; shops whose token went stale are skipped
// there, not here.
type CronTrigger struct {
	config    SchedulerConfig
	scheduler *Scheduler
	shops     ShopSource
	logger    *zap.Logger

	cron      *cron.Cron
	mu        sync.Mutex
	isRunning bool
}

// NewCronTrigger creates a new cron trigger
func NewCronTrigger(
	config SchedulerConfig,
	scheduler *Scheduler,
	shops ShopSource,
	logger *zap.Logger,
) *CronTrigger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CronTrigger{
		config:    config,
		scheduler: scheduler,
		shops:     shops,
		logger:    logger,
		cron:      cron.New(),
	}
}

// Start validates the cron expressions, registers both sweeps and
// starts the underlying cron runner
func (c *CronTrigger) Start(ctx context.Context) error {
	c.mu.Lock()
	if c.isRunning {
		c.mu.Unlock()
		return nil
	}
	c.isRunning = true
	c.mu.Unlock()

	entries := []struct {
		spec string
		kind JobKind
	}{
		{c.config.OrdersCron, JobKindOrders},
		{c.config.SnapshotCron, JobKindSnapshot},
	}

	for _, entry := range entries {
		if entry.spec == "" {
			c.logger.Info("Cron sweep disabled", zap.String("kind", string(entry.kind)))
			continue
		}
		kind := entry.kind
		if _, err := c.cron.AddFunc(entry.spec, func() {
			c.fire(kind)
		}); err != nil {
			return fmt.Errorf("%w: %s %q: %v", ErrInvalidCronSpec, kind, entry.spec, err)
		}
		c.logger.Info("Cron sweep registered",
			zap.String("kind", string(kind)),
			zap.String("spec", entry.spec),
		)
	}

	c.cron.Start()
	return nil
}

// Stop halts the cron runner and waits for in-flight firings
func (c *CronTrigger) Stop(ctx context.Context) error {
	c.mu.Lock()
	if !c.isRunning {
		c.mu.Unlock()
		return nil
	}
	c.isRunning = false
	c.mu.Unlock()

	stopped := c.cron.Stop()
	select {
	case <-stopped.Done():
		c.logger.Info("Cron trigger stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// fire runs one sweep of the given kind across all active shops
func (c *CronTrigger) fire(kind JobKind) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	shops, err := c.shops.FindAllActive(ctx)
	if err != nil {
		c.logger.Error("Cron sweep failed to list shops",
			zap.String("kind", string(kind)),
			zap.Error(err),
		)
		return
	}
	if len(shops) == 0 {
		c.logger.Debug("Cron sweep found no active shops", zap.String("kind", string(kind)))
		return
	}

	domains := make([]string, 0, len(shops))
	for _, s := range shops {
		domains = append(domains, s.Domain)
	}

	if err := c.scheduler.ScheduleForShops(kind, domains); err != nil {
		c.logger.Warn("Cron sweep stopped early",
			zap.String("kind", string(kind)),
			zap.Int("shops", len(domains)),
			zap.Error(err),
		)
		return
	}

	c.logger.Info("Cron sweep scheduled",
		zap.String("kind", string(kind)),
		zap.Int("shops", len(domains)),
	)
}
