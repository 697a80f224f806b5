package ingestion

import (
	"context"
	"fmt"
	"strings"

	"github.com/merchdash/backend/internal/domain/ingest"
	"github.com/merchdash/backend/internal/domain/inventory"
	"github.com/merchdash/backend/internal/domain/sales"
	"github.com/merchdash/backend/internal/domain/shared"
)

// StatusService reports how much data a shop has locally and where its
// watermark stands
type StatusService struct {
	cursors   ingest.CursorRepository
	lines     sales.OrderLineRepository
	snapshots inventory.SnapshotRepository
}

// NewStatusService creates a new StatusService
func NewStatusService(
	cursors ingest.CursorRepository,
	lines sales.OrderLineRepository,
	snapshots inventory.SnapshotRepository,
) *StatusService {
	return &StatusService{cursors: cursors, lines: lines, snapshots: snapshots}
}

// Status assembles the ingestion state for one shop
func (s *StatusService) Status(ctx context.Context, shop string) (*StatusResponse, error) {
	shopDomain := strings.TrimSpace(shop)
	if shopDomain == "" {
		return nil, shared.NewDomainError("INVALID_SHOP", "Shop domain is required")
	}

	status := &StatusResponse{Shop: shopDomain}

	cursor, err := s.cursors.Find(ctx, shopDomain)
	if err != nil {
		return nil, fmt.Errorf("failed to load ingest cursor: %w", err)
	}
	if cursor != nil {
		status.SinceISO = cursor.SinceISO()
		updatedAt := cursor.UpdatedAt
		status.CursorUpdatedAt = &updatedAt
	}

	if status.OrderLines, err = s.lines.CountByShop(ctx, shopDomain); err != nil {
		return nil, fmt.Errorf("failed to count order lines: %w", err)
	}
	if status.Snapshots, err = s.snapshots.CountByShop(ctx, shopDomain); err != nil {
		return nil, fmt.Errorf("failed to count snapshots: %w", err)
	}

	latest, err := s.snapshots.LatestDate(ctx, shopDomain)
	if err != nil {
		return nil, fmt.Errorf("failed to load latest snapshot date: %w", err)
	}
	if !latest.IsZero() {
		status.LatestSnapshotDate = &latest
	}
	return status, nil
}
