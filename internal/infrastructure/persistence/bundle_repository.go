package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/merchdash/backend/internal/domain/bundle"
	"github.com/merchdash/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// GormBundleRepository implements bundle.Repository using GORM
type GormBundleRepository struct {
	db *gorm.DB
}

// NewGormBundleRepository creates a new GormBundleRepository
func NewGormBundleRepository(db *gorm.DB) *GormBundleRepository {
	return &GormBundleRepository{db: db}
}

// Save creates a bundle with its items in one write
func (r *GormBundleRepository) Save(ctx context.Context, b *bundle.Bundle) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Items").Create(b).Error; err != nil {
			return err
		}
		if len(b.Items) == 0 {
			return nil
		}
		for i := range b.Items {
			b.Items[i].BundleID = b.ID
		}
		return tx.Create(&b.Items).Error
	})
}

// FindByID finds a bundle with its items
func (r *GormBundleRepository) FindByID(ctx context.Context, shop string, id uuid.UUID) (*bundle.Bundle, error) {
	var b bundle.Bundle
	if err := r.db.WithContext(ctx).
		Preload("Items").
		Where("shop = ? AND id = ?", shop, id).
		First(&b).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &b, nil
}

// FindAll lists the bundles of a shop with their items
func (r *GormBundleRepository) FindAll(ctx context.Context, shop string, filter shared.Filter) ([]bundle.Bundle, int64, error) {
	var total int64
	query := r.db.WithContext(ctx).Model(&bundle.Bundle{}).Where("shop = ?", shop)

	if filter.Search != "" {
		query = query.Where("title LIKE ?", "%"+filter.Search+"%")
	}
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	orderBy := ValidateSortField(filter.OrderBy, BundleSortFields, "created_at")
	orderDir := ValidateSortOrder(filter.OrderDir)

	var bundles []bundle.Bundle
	if err := query.
		Preload("Items").
		Order(fmt.Sprintf("%s %s", orderBy, orderDir)).
		Offset(filter.Offset()).
		Limit(filter.Limit()).
		Find(&bundles).Error; err != nil {
		return nil, 0, err
	}
	return bundles, total, nil
}

// Delete removes a bundle; items are removed with it
func (r *GormBundleRepository) Delete(ctx context.Context, shop string, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var b bundle.Bundle
		if err := tx.Where("shop = ? AND id = ?", shop, id).First(&b).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return shared.ErrNotFound
			}
			return err
		}
		if err := tx.Where("bundle_id = ?", id).Delete(&bundle.Item{}).Error; err != nil {
			return err
		}
		return tx.Delete(&bundle.Bundle{}, "id = ?", id).Error
	})
}

// Ensure GormBundleRepository implements bundle.Repository
var _ bundle.Repository = (*GormBundleRepository)(nil)
