package ranking

import "context"

// RuleSetRepository defines the interface for rule sequence persistence
type RuleSetRepository interface {
	// FindByCollection returns the rule sequence for a collection, or nil
	// when none has been saved
	FindByCollection(ctx context.Context, shop, collectionID string) (*RuleSet, error)

	// Upsert inserts or replaces the sequence for the rule set's
	// shop/collection pair
	Upsert(ctx context.Context, ruleSet *RuleSet) error
}
