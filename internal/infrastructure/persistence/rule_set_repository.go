package persistence

import (
	"context"
	"errors"

	"github.com/merchdash/backend/internal/domain/ranking"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormRuleSetRepository implements RuleSetRepository using GORM
type GormRuleSetRepository struct {
	db *gorm.DB
}

// NewGormRuleSetRepository creates a new GormRuleSetRepository
func NewGormRuleSetRepository(db *gorm.DB) *GormRuleSetRepository {
	return &GormRuleSetRepository{db: db}
}

// FindByCollection returns the rule sequence for a collection, or nil when
// none has been saved
func (r *GormRuleSetRepository) FindByCollection(ctx context.Context, shop, collectionID string) (*ranking.RuleSet, error) {
	var ruleSet ranking.RuleSet
	if err := r.db.WithContext(ctx).
		Where("shop = ? AND collection_id = ?", shop, collectionID).
		First(&ruleSet).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &ruleSet, nil
}

// Upsert inserts or replaces the sequence for the rule set's
// shop/collection pair
func (r *GormRuleSetRepository) Upsert(ctx context.Context, ruleSet *ranking.RuleSet) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "shop"}, {Name: "collection_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"rules", "updated_at"}),
		}).
		Create(ruleSet).Error
}

// Ensure GormRuleSetRepository implements RuleSetRepository
var _ ranking.RuleSetRepository = (*GormRuleSetRepository)(nil)
