package persistence

import (
	"context"
	"errors"

	"github.com/merchdash/backend/internal/domain/catalog"
	"github.com/merchdash/backend/internal/domain/shared"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormProductAttrRepository implements ProductAttrRepository using GORM
type GormProductAttrRepository struct {
	db *gorm.DB
}

// NewGormProductAttrRepository creates a new GormProductAttrRepository
func NewGormProductAttrRepository(db *gorm.DB) *GormProductAttrRepository {
	return &GormProductAttrRepository{db: db}
}

// Upsert inserts or replaces the attribute row for a product
func (r *GormProductAttrRepository) Upsert(ctx context.Context, attr *catalog.ProductAttr) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "product_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"category", "season", "gender", "lifecycle", "updated_at"}),
		}).
		Create(attr).Error
}

// FindByProductID finds the attribute row for a product, if any
func (r *GormProductAttrRepository) FindByProductID(ctx context.Context, shop, productID string) (*catalog.ProductAttr, error) {
	var attr catalog.ProductAttr
	if err := r.db.WithContext(ctx).
		Where("shop = ? AND product_id = ?", shop, productID).
		First(&attr).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &attr, nil
}

// Ensure GormProductAttrRepository implements ProductAttrRepository
var _ catalog.ProductAttrRepository = (*GormProductAttrRepository)(nil)
