package ingestion

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/merchdash/backend/internal/domain/ingest"
	"github.com/merchdash/backend/internal/domain/shared"
)

// DefaultRunLockTTL bounds how long a crashed run can keep its shop
// locked before the lock lapses
const DefaultRunLockTTL = 30 * time.Minute

// Run lock kinds. Orders and snapshot runs lock independently because
// they write disjoint fact tables.
const (
	runKindOrders   = "orders"
	runKindSnapshot = "snapshot"
)

// acquireRunLock takes the per-shop run lock when one is configured and
// returns the matching release func. A lock backend failure degrades to
// running unlocked; duplicate work is absorbed by the idempotent writes.
func acquireRunLock(ctx context.Context, lock ingest.RunLock, logger *zap.Logger, kind, shop string) (func(), error) {
	if lock == nil {
		return func() {}, nil
	}

	key := kind + ":" + shop
	acquired, err := lock.Acquire(ctx, key, DefaultRunLockTTL)
	if err != nil {
		logger.Warn("Run lock unavailable, proceeding unlocked",
			zap.String("key", key), zap.Error(err))
		return func() {}, nil
	}
	if !acquired {
		return nil, shared.NewDomainError("RUN_IN_PROGRESS",
			fmt.Sprintf("Another %s run is already in progress for %s", kind, shop))
	}

	return func() {
		// Release with a fresh context so a canceled run still unlocks
		if err := lock.Release(context.Background(), key); err != nil {
			logger.Warn("Failed to release run lock",
				zap.String("key", key), zap.Error(err))
		}
	}, nil
}
