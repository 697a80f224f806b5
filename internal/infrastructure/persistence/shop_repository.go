package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/merchdash/backend/internal/domain/shared"
	"github.com/merchdash/backend/internal/domain/shop"
	"gorm.io/gorm"
)

// GormShopRepository implements shop.Repository using GORM
type GormShopRepository struct {
	db *gorm.DB
}

// NewGormShopRepository creates a new GormShopRepository
func NewGormShopRepository(db *gorm.DB) *GormShopRepository {
	return &GormShopRepository{db: db}
}

// Save creates or updates a shop
func (r *GormShopRepository) Save(ctx context.Context, s *shop.Shop) error {
	return r.db.WithContext(ctx).Save(s).Error
}

// FindByID finds a shop by ID
func (r *GormShopRepository) FindByID(ctx context.Context, id uuid.UUID) (*shop.Shop, error) {
	var s shop.Shop
	if err := r.db.WithContext(ctx).First(&s, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &s, nil
}

// FindByDomain finds a shop by its myshopify domain
func (r *GormShopRepository) FindByDomain(ctx context.Context, domain string) (*shop.Shop, error) {
	var s shop.Shop
	if err := r.db.WithContext(ctx).
		Where("domain = ?", shop.NormalizeDomain(domain)).
		First(&s).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &s, nil
}

// FindAllActive returns every shop whose token is believed valid
func (r *GormShopRepository) FindAllActive(ctx context.Context) ([]*shop.Shop, error) {
	var shops []*shop.Shop
	if err := r.db.WithContext(ctx).
		Where("status = ?", shop.StatusActive).
		Order("domain ASC").
		Find(&shops).Error; err != nil {
		return nil, err
	}
	return shops, nil
}

// Delete removes a shop by ID
func (r *GormShopRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&shop.Shop{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Ensure GormShopRepository implements shop.Repository
var _ shop.Repository = (*GormShopRepository)(nil)
