package inventory

import (
	"context"
	"time"
)

// SnapshotRepository defines the interface for inventory snapshot
// persistence. The table is append-only: there is no update surface.
type SnapshotRepository interface {
	// AppendBatch inserts a batch of observations
	AppendBatch(ctx context.Context, snapshots []*Snapshot) error

	// LatestDate returns the most recent snapshot date for a shop, or the
	// zero time when no snapshot has been taken yet
	LatestDate(ctx context.Context, shop string) (time.Time, error)

	// CountByShop counts the stored observations for a shop
	CountByShop(ctx context.Context, shop string) (int64, error)
}
