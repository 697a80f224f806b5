package report

import (
	"context"

	"github.com/merchdash/backend/internal/domain/ingest"
	"github.com/merchdash/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// CacheInvalidationHandler drops a shop's cached rollups whenever an
// ingestion run lands new facts for it. Subscribed to OrdersIngested and
// SnapshotTaken events.
type CacheInvalidationHandler struct {
	service *AggregationService
	logger  *zap.Logger
}

// NewCacheInvalidationHandler creates a new handler
func NewCacheInvalidationHandler(service *AggregationService, logger *zap.Logger) *CacheInvalidationHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CacheInvalidationHandler{service: service, logger: logger}
}

// Handle processes a domain event
func (h *CacheInvalidationHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	shop := event.Shop()
	if shop == "" {
		return nil
	}
	h.logger.Debug("Invalidating rollup cache after ingestion",
		zap.String("shop", shop),
		zap.String("event_type", event.EventType()))
	h.service.InvalidateShop(ctx, shop)
	return nil
}

// EventTypes returns the event types this handler is interested in
func (h *CacheInvalidationHandler) EventTypes() []string {
	return []string{ingest.EventTypeOrdersIngested, ingest.EventTypeSnapshotTaken}
}

// Ensure CacheInvalidationHandler implements shared.EventHandler
var _ shared.EventHandler = (*CacheInvalidationHandler)(nil)
