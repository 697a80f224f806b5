package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/merchdash/backend/internal/domain/listing"
	"github.com/merchdash/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// GormCombinedListingRepository implements listing.Repository using GORM
type GormCombinedListingRepository struct {
	db *gorm.DB
}

// NewGormCombinedListingRepository creates a new GormCombinedListingRepository
func NewGormCombinedListingRepository(db *gorm.DB) *GormCombinedListingRepository {
	return &GormCombinedListingRepository{db: db}
}

// Save creates a parent with its children in one transaction. Children are
// written with a single batch insert.
func (r *GormCombinedListingRepository) Save(ctx context.Context, parent *listing.CombinedParent) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Children").Create(parent).Error; err != nil {
			return err
		}
		if len(parent.Children) == 0 {
			return nil
		}
		for i := range parent.Children {
			parent.Children[i].ParentID = parent.ID
		}
		return tx.Create(&parent.Children).Error
	})
}

// FindByID finds a parent with its children
func (r *GormCombinedListingRepository) FindByID(ctx context.Context, shop string, id uuid.UUID) (*listing.CombinedParent, error) {
	var parent listing.CombinedParent
	if err := r.db.WithContext(ctx).
		Preload("Children").
		Where("shop = ? AND id = ?", shop, id).
		First(&parent).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &parent, nil
}

// FindByExternalProductID finds a parent by the platform product id
func (r *GormCombinedListingRepository) FindByExternalProductID(ctx context.Context, shop, externalProductID string) (*listing.CombinedParent, error) {
	var parent listing.CombinedParent
	if err := r.db.WithContext(ctx).
		Preload("Children").
		Where("shop = ? AND external_product_id = ?", shop, externalProductID).
		First(&parent).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &parent, nil
}

// FindAll lists the parents of a shop with their children
func (r *GormCombinedListingRepository) FindAll(ctx context.Context, shop string, filter shared.Filter) ([]listing.CombinedParent, int64, error) {
	var total int64
	query := r.db.WithContext(ctx).Model(&listing.CombinedParent{}).Where("shop = ?", shop)

	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("title LIKE ? OR external_product_id LIKE ?", pattern, pattern)
	}
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	orderBy := ValidateSortField(filter.OrderBy, CombinedListingSortFields, "created_at")
	orderDir := ValidateSortOrder(filter.OrderDir)

	var parents []listing.CombinedParent
	if err := query.
		Preload("Children").
		Order(fmt.Sprintf("%s %s", orderBy, orderDir)).
		Offset(filter.Offset()).
		Limit(filter.Limit()).
		Find(&parents).Error; err != nil {
		return nil, 0, err
	}
	return parents, total, nil
}

// Delete removes a parent; children are removed with it
func (r *GormCombinedListingRepository) Delete(ctx context.Context, shop string, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var parent listing.CombinedParent
		if err := tx.Where("shop = ? AND id = ?", shop, id).First(&parent).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return shared.ErrNotFound
			}
			return err
		}
		if err := tx.Where("parent_id = ?", id).Delete(&listing.CombinedChild{}).Error; err != nil {
			return err
		}
		return tx.Delete(&listing.CombinedParent{}, "id = ?", id).Error
	})
}

// Ensure GormCombinedListingRepository implements listing.Repository
var _ listing.Repository = (*GormCombinedListingRepository)(nil)
