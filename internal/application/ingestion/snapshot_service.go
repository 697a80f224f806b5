package ingestion

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/merchdash/backend/internal/domain/catalog"
	"github.com/merchdash/backend/internal/domain/ingest"
	"github.com/merchdash/backend/internal/domain/integration"
	"github.com/merchdash/backend/internal/domain/inventory"
	"github.com/merchdash/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// DefaultSnapshotBatchSize is the number of snapshot rows written per
// insert when no override is configured
const DefaultSnapshotBatchSize = 500

// SnapshotService captures point-in-time inventory observations for every
// tracked variant of a shop. Rows are append-only; a shop snapshotted
// twice on the same day simply has two observations and readers pick the
// latest.
type SnapshotService struct {
	platform  integration.CommercePlatform
	products  catalog.ProductRepository
	variants  catalog.VariantRepository
	snapshots inventory.SnapshotRepository
	publisher shared.EventPublisher
	runLock   ingest.RunLock
	logger    *zap.Logger
	batchSize int
}

// NewSnapshotService creates a new SnapshotService
func NewSnapshotService(
	platform integration.CommercePlatform,
	products catalog.ProductRepository,
	variants catalog.VariantRepository,
	snapshots inventory.SnapshotRepository,
	logger *zap.Logger,
) *SnapshotService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SnapshotService{
		platform:  platform,
		products:  products,
		variants:  variants,
		snapshots: snapshots,
		logger:    logger,
		batchSize: DefaultSnapshotBatchSize,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *SnapshotService) SetEventPublisher(publisher shared.EventPublisher) {
	s.publisher = publisher
}

// SetBatchSize overrides the rows-per-insert batch size
func (s *SnapshotService) SetBatchSize(size int) {
	if size > 0 {
		s.batchSize = size
	}
}

// SetRunLock sets the per-shop run lock. Without one, overlapping runs
// are not excluded.
func (s *SnapshotService) SetRunLock(lock ingest.RunLock) {
	s.runLock = lock
}

// Run pages through every variant the platform exposes for the shop and
// appends one observation per variant, all stamped with the run instant.
// Catalog mirrors are refreshed along the way so products that never
// sold still show up in aging reports.
func (s *SnapshotService) Run(ctx context.Context, req SnapshotRunRequest) (*SnapshotRunResult, error) {
	shopDomain := strings.TrimSpace(req.Shop)
	if shopDomain == "" {
		return nil, shared.NewDomainError("INVALID_SHOP", "Shop domain is required")
	}

	release, err := acquireRunLock(ctx, s.runLock, s.logger, runKindSnapshot, shopDomain)
	if err != nil {
		return nil, err
	}
	defer release()

	started := time.Now()
	takenAt := started
	s.logger.Info("Starting inventory snapshot", zap.String("shop", shopDomain))

	captured := 0
	batch := make([]*inventory.Snapshot, 0, s.batchSize)
	cursor := ""
	for {
		page, err := s.platform.VariantsWithInventory(ctx, shopDomain, cursor)
		if err != nil {
			return nil, fmt.Errorf("variant inventory pull failed for shop %s: %w", shopDomain, err)
		}
		for i := range page.Variants {
			snapshot, err := s.capture(ctx, shopDomain, takenAt, &page.Variants[i])
			if err != nil {
				return nil, err
			}
			batch = append(batch, snapshot)
			captured++
			if len(batch) >= s.batchSize {
				if err := s.snapshots.AppendBatch(ctx, batch); err != nil {
					return nil, fmt.Errorf("failed to store snapshot batch: %w", err)
				}
				batch = batch[:0]
			}
		}
		if !page.PageInfo.HasNextPage {
			break
		}
		cursor = page.PageInfo.EndCursor
	}
	if len(batch) > 0 {
		if err := s.snapshots.AppendBatch(ctx, batch); err != nil {
			return nil, fmt.Errorf("failed to store snapshot batch: %w", err)
		}
	}

	result := &SnapshotRunResult{
		Shop:             shopDomain,
		TakenAt:          takenAt,
		VariantsCaptured: captured,
		DurationMS:       time.Since(started).Milliseconds(),
	}

	if s.publisher != nil {
		event := ingest.NewSnapshotTakenEvent(shopDomain, captured)
		if err := s.publisher.Publish(ctx, event); err != nil {
			s.logger.Warn("Failed to publish snapshot taken event",
				zap.String("shop", shopDomain), zap.Error(err))
		}
	}

	s.logger.Info("Inventory snapshot finished",
		zap.String("shop", shopDomain),
		zap.Int("variants", captured),
		zap.Int64("duration_ms", result.DurationMS))
	return result, nil
}

// capture refreshes the catalog mirrors for one stock reading and builds
// its snapshot row
func (s *SnapshotService) capture(ctx context.Context, shopDomain string, takenAt time.Time, stock *integration.VariantStock) (*inventory.Snapshot, error) {
	product, err := catalog.NewProduct(shopDomain, stock.ProductID, stock.ProductTitle, stock.ProductVendor, stock.ProductCreatedAt)
	if err != nil {
		return nil, err
	}
	if err := s.products.Upsert(ctx, product); err != nil {
		return nil, fmt.Errorf("failed to upsert product %s: %w", stock.ProductID, err)
	}

	variant, err := catalog.NewVariant(shopDomain, stock.VariantID, stock.ProductID,
		stock.Title, stock.SKU, toOptionPairs(stock.Options))
	if err != nil {
		return nil, err
	}
	if err := s.variants.Upsert(ctx, variant); err != nil {
		return nil, fmt.Errorf("failed to upsert variant %s: %w", stock.VariantID, err)
	}

	return inventory.NewSnapshot(shopDomain, stock.ProductID, stock.VariantID, takenAt, stock.OnHand, stock.Price, stock.Cost)
}
