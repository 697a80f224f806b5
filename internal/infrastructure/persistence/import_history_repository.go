package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/merchdash/backend/internal/domain/bulk"
	"github.com/merchdash/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// ImportHistorySortFields contains allowed sort fields for import runs
var ImportHistorySortFields = map[string]bool{
	"id":           true,
	"created_at":   true,
	"file_name":    true,
	"status":       true,
	"started_at":   true,
	"completed_at": true,
}

// GormImportHistoryRepository implements ImportHistoryRepository using GORM
type GormImportHistoryRepository struct {
	db *gorm.DB
}

// NewGormImportHistoryRepository creates a new GormImportHistoryRepository
func NewGormImportHistoryRepository(db *gorm.DB) *GormImportHistoryRepository {
	return &GormImportHistoryRepository{db: db}
}

// Save creates or updates an import run record
func (r *GormImportHistoryRepository) Save(ctx context.Context, history *bulk.ImportHistory) error {
	return r.db.WithContext(ctx).Save(history).Error
}

// FindByID finds an import run within a shop
func (r *GormImportHistoryRepository) FindByID(ctx context.Context, shop string, id uuid.UUID) (*bulk.ImportHistory, error) {
	var history bulk.ImportHistory
	if err := r.db.WithContext(ctx).
		Where("shop = ? AND id = ?", shop, id).
		First(&history).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &history, nil
}

// FindAll lists the import runs of a shop, newest first by default
func (r *GormImportHistoryRepository) FindAll(ctx context.Context, shop string, filter shared.Filter) ([]bulk.ImportHistory, int64, error) {
	query := r.db.WithContext(ctx).
		Model(&bulk.ImportHistory{}).
		Where("shop = ?", shop)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	orderBy := ValidateSortField(filter.OrderBy, ImportHistorySortFields, "created_at")
	orderDir := ValidateSortOrder(filter.OrderDir)

	var histories []bulk.ImportHistory
	if err := query.
		Order(fmt.Sprintf("%s %s", orderBy, orderDir)).
		Offset(filter.Offset()).
		Limit(filter.Limit()).
		Find(&histories).Error; err != nil {
		return nil, 0, err
	}

	return histories, total, nil
}

// Ensure GormImportHistoryRepository implements ImportHistoryRepository
var _ bulk.ImportHistoryRepository = (*GormImportHistoryRepository)(nil)
