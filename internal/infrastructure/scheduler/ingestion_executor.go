package scheduler

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/merchdash/backend/internal/application/ingestion"
)

// OrdersRunner runs an incremental orders pull for one shop
type OrdersRunner interface {
	Run(ctx context.Context, req ingestion.OrdersRunRequest) (*ingestion.OrdersRunResult, error)
}

// SnapshotRunner captures an inventory snapshot for one shop
type SnapshotRunner interface {
	Run(ctx context.Context, req ingestion.SnapshotRunRequest) (*ingestion.SnapshotRunResult, error)
}

// IngestionExecutor dispatches scheduler jobs to the ingestion services.
// Scheduled runs never carry an explicit since date; orders resume from
// each shop's stored watermark exactly like a manual run without one.
type IngestionExecutor struct {
	orders    OrdersRunner
	snapshots SnapshotRunner
	logger    *zap.Logger
}

// NewIngestionExecutor creates a new ingestion executor
func NewIngestionExecutor(orders OrdersRunner, snapshots SnapshotRunner, logger *zap.Logger) *IngestionExecutor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &IngestionExecutor{
		orders:    orders,
		snapshots: snapshots,
		logger:    logger,
	}
}

// Execute runs the job's pipeline against its shop
func (e *IngestionExecutor) Execute(ctx context.Context, job *Job) error {
	switch job.Kind {
	case JobKindOrders:
		result, err := e.orders.Run(ctx, ingestion.OrdersRunRequest{Shop: job.Shop})
		if err != nil {
			return fmt.Errorf("orders run for %s: %w", job.Shop, err)
		}
		e.logger.Info("Scheduled orders run finished",
			zap.String("shop", job.Shop),
			zap.String("since", result.SinceISO),
			zap.Int("orders", result.OrdersProcessed),
			zap.Int("lines", result.LinesProcessed),
			zap.Int64("duration_ms", result.DurationMS),
		)
		return nil

	case JobKindSnapshot:
		result, err := e.snapshots.Run(ctx, ingestion.SnapshotRunRequest{Shop: job.Shop})
		if err != nil {
			return fmt.Errorf("snapshot run for %s: %w", job.Shop, err)
		}
		e.logger.Info("Scheduled snapshot run finished",
			zap.String("shop", job.Shop),
			zap.Int("variants", result.VariantsCaptured),
			zap.Int64("duration_ms", result.DurationMS),
		)
		return nil

	default:
		return fmt.Errorf("%w: %s", ErrInvalidJobKind, job.Kind)
	}
}
