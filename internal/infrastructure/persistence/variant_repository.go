package persistence

import (
	"context"
	"errors"

	"github.com/merchdash/backend/internal/domain/catalog"
	"github.com/merchdash/backend/internal/domain/shared"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormVariantRepository implements VariantRepository using GORM
type GormVariantRepository struct {
	db *gorm.DB
}

// NewGormVariantRepository creates a new GormVariantRepository
func NewGormVariantRepository(db *gorm.DB) *GormVariantRepository {
	return &GormVariantRepository{db: db}
}

// Upsert inserts the variant or refreshes its mirror fields when the
// platform identifier already exists. A read without option data must not
// regress a previously derived size or color, so those columns only move
// when the incoming value is non-null.
func (r *GormVariantRepository) Upsert(ctx context.Context, variant *catalog.Variant) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"title":      gorm.Expr("excluded.title"),
				"sku":        gorm.Expr("excluded.sku"),
				"size":       gorm.Expr("COALESCE(excluded.size, variants.size)"),
				"color":      gorm.Expr("COALESCE(excluded.color, variants.color)"),
				"updated_at": gorm.Expr("excluded.updated_at"),
			}),
		}).
		Create(variant).Error
}

// FindByID finds a variant by its platform identifier within a shop
func (r *GormVariantRepository) FindByID(ctx context.Context, shop, id string) (*catalog.Variant, error) {
	var variant catalog.Variant
	if err := r.db.WithContext(ctx).
		Where("shop = ? AND id = ?", shop, id).
		First(&variant).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &variant, nil
}

// Ensure GormVariantRepository implements VariantRepository
var _ catalog.VariantRepository = (*GormVariantRepository)(nil)
