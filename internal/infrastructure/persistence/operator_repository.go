package persistence

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/merchdash/backend/internal/domain/identity"
	"github.com/merchdash/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// GormOperatorRepository implements OperatorRepository using GORM
type GormOperatorRepository struct {
	db *gorm.DB
}

// NewGormOperatorRepository creates a new GormOperatorRepository
func NewGormOperatorRepository(db *gorm.DB) *GormOperatorRepository {
	return &GormOperatorRepository{db: db}
}

// Create creates a new operator
func (r *GormOperatorRepository) Create(ctx context.Context, operator *identity.Operator) error {
	return r.db.WithContext(ctx).Create(operator).Error
}

// Update updates an existing operator
func (r *GormOperatorRepository) Update(ctx context.Context, operator *identity.Operator) error {
	result := r.db.WithContext(ctx).Save(operator)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Delete deletes an operator by ID
func (r *GormOperatorRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&identity.Operator{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// FindByID finds an operator by ID
func (r *GormOperatorRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.Operator, error) {
	var operator identity.Operator
	if err := r.db.WithContext(ctx).First(&operator, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &operator, nil
}

// FindByEmail finds an operator by email
func (r *GormOperatorRepository) FindByEmail(ctx context.Context, email string) (*identity.Operator, error) {
	if email == "" {
		return nil, shared.ErrNotFound
	}
	var operator identity.Operator
	if err := r.db.WithContext(ctx).
		Where("LOWER(email) = ?", strings.ToLower(email)).
		First(&operator).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &operator, nil
}

// ExistsByEmail checks if an email already exists
func (r *GormOperatorRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	if email == "" {
		return false, nil
	}
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&identity.Operator{}).
		Where("LOWER(email) = ?", strings.ToLower(email)).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// FindAll returns all operators with pagination
func (r *GormOperatorRepository) FindAll(ctx context.Context, filter shared.Filter) ([]*identity.Operator, int64, error) {
	var total int64
	query := r.db.WithContext(ctx).Model(&identity.Operator{})

	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("email LIKE ? OR display_name LIKE ?", pattern, pattern)
	}
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	orderBy := ValidateSortField(filter.OrderBy, OperatorSortFields, "created_at")
	orderDir := ValidateSortOrder(filter.OrderDir)

	var operators []*identity.Operator
	if err := query.
		Order(fmt.Sprintf("%s %s", orderBy, orderDir)).
		Offset(filter.Offset()).
		Limit(filter.Limit()).
		Find(&operators).Error; err != nil {
		return nil, 0, err
	}
	return operators, total, nil
}

// Ensure GormOperatorRepository implements OperatorRepository
var _ identity.OperatorRepository = (*GormOperatorRepository)(nil)
