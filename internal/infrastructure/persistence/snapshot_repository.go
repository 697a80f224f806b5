package persistence

import (
	"context"
	"time"

	"github.com/merchdash/backend/internal/domain/inventory"
	"gorm.io/gorm"
)

// snapshotInsertBatch is the number of observation rows written per INSERT
const snapshotInsertBatch = 500

// GormSnapshotRepository implements SnapshotRepository using GORM
type GormSnapshotRepository struct {
	db *gorm.DB
}

// NewGormSnapshotRepository creates a new GormSnapshotRepository
func NewGormSnapshotRepository(db *gorm.DB) *GormSnapshotRepository {
	return &GormSnapshotRepository{db: db}
}

// AppendBatch inserts a batch of observations. The table is append-only;
// nothing is updated or replaced.
func (r *GormSnapshotRepository) AppendBatch(ctx context.Context, snapshots []*inventory.Snapshot) error {
	if len(snapshots) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).CreateInBatches(snapshots, snapshotInsertBatch).Error
}

// LatestDate returns the most recent snapshot date for a shop, or the zero
// time when no snapshot has been taken yet
func (r *GormSnapshotRepository) LatestDate(ctx context.Context, shop string) (time.Time, error) {
	var dates []time.Time
	if err := r.db.WithContext(ctx).
		Model(&inventory.Snapshot{}).
		Where("shop = ?", shop).
		Order("snapshot_date DESC").
		Limit(1).
		Pluck("snapshot_date", &dates).Error; err != nil {
		return time.Time{}, err
	}
	if len(dates) == 0 {
		return time.Time{}, nil
	}
	return dates[0], nil
}

// CountByShop counts the stored observations for a shop
func (r *GormSnapshotRepository) CountByShop(ctx context.Context, shop string) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&inventory.Snapshot{}).
		Where("shop = ?", shop).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Ensure GormSnapshotRepository implements SnapshotRepository
var _ inventory.SnapshotRepository = (*GormSnapshotRepository)(nil)
