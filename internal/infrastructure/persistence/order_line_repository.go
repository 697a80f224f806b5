package persistence

import (
	"context"
	"errors"

	"github.com/merchdash/backend/internal/domain/sales"
	"github.com/merchdash/backend/internal/domain/shared"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormOrderLineRepository implements OrderLineRepository using GORM
type GormOrderLineRepository struct {
	db *gorm.DB
}

// NewGormOrderLineRepository creates a new GormOrderLineRepository
func NewGormOrderLineRepository(db *gorm.DB) *GormOrderLineRepository {
	return &GormOrderLineRepository{db: db}
}

// InsertIfAbsent stores the line unless a row with the same identifier
// already exists. The existing row is never touched, which keeps replayed
// ingestion runs from rewriting history.
func (r *GormOrderLineRepository) InsertIfAbsent(ctx context.Context, line *sales.OrderLine) (bool, error) {
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoNothing: true,
		}).
		Create(line)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// FindByID finds a stored line by its platform identifier
func (r *GormOrderLineRepository) FindByID(ctx context.Context, shop, id string) (*sales.OrderLine, error) {
	var line sales.OrderLine
	if err := r.db.WithContext(ctx).
		Where("shop = ? AND id = ?", shop, id).
		First(&line).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &line, nil
}

// CountByShop counts the stored facts for a shop
func (r *GormOrderLineRepository) CountByShop(ctx context.Context, shop string) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&sales.OrderLine{}).
		Where("shop = ?", shop).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Ensure GormOrderLineRepository implements OrderLineRepository
var _ sales.OrderLineRepository = (*GormOrderLineRepository)(nil)
