package persistence

import (
	"context"
	"errors"

	"github.com/merchdash/backend/internal/domain/ingest"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormCursorRepository implements CursorRepository using GORM
type GormCursorRepository struct {
	db *gorm.DB
}

// NewGormCursorRepository creates a new GormCursorRepository
func NewGormCursorRepository(db *gorm.DB) *GormCursorRepository {
	return &GormCursorRepository{db: db}
}

// Find returns the watermark for a shop, or nil when the shop has never
// completed an orders run
func (r *GormCursorRepository) Find(ctx context.Context, shop string) (*ingest.Cursor, error) {
	var cursor ingest.Cursor
	if err := r.db.WithContext(ctx).
		Where("shop = ?", shop).
		First(&cursor).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &cursor, nil
}

// Upsert inserts or replaces the single watermark row for the cursor's shop
func (r *GormCursorRepository) Upsert(ctx context.Context, cursor *ingest.Cursor) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "shop"}},
			DoUpdates: clause.AssignmentColumns([]string{"since_date", "updated_at"}),
		}).
		Create(cursor).Error
}

// Ensure GormCursorRepository implements CursorRepository
var _ ingest.CursorRepository = (*GormCursorRepository)(nil)
