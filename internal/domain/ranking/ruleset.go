package ranking

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/merchdash/backend/internal/domain/shared"
)

// RuleSet is the persisted per-collection rule sequence. What is stored is
// the raw identifier list as entered; Rules() applies filtering and the
// default fallback at read time so a stale or hand-edited row can never
// break a ranking run.
type RuleSet struct {
	shared.ShopAggregateRoot
	CollectionID string `gorm:"type:varchar(128);not null;uniqueIndex:idx_rulesets_shop_collection,priority:2"`
	RulesJSON    string `gorm:"column:rules;type:jsonb;not null;default:'[]'"`
}

// TableName returns the table name for GORM
func (RuleSet) TableName() string {
	return "ranking_rule_sets"
}

// NewRuleSet creates a rule sequence for a collection
func NewRuleSet(shop, collectionID string, names []string) (*RuleSet, error) {
	if strings.TrimSpace(collectionID) == "" {
		return nil, shared.NewDomainError("INVALID_COLLECTION", "Collection identifier is required")
	}
	if shop == "" {
		return nil, shared.NewDomainError("INVALID_SHOP", "Shop domain is required")
	}

	rs := &RuleSet{
		ShopAggregateRoot: shared.NewShopAggregateRoot(shop),
		CollectionID:      collectionID,
	}
	if err := rs.SetNames(names); err != nil {
		return nil, err
	}
	return rs, nil
}

// SetNames replaces the stored identifier list
func (rs *RuleSet) SetNames(names []string) error {
	if names == nil {
		names = []string{}
	}
	raw, err := json.Marshal(names)
	if err != nil {
		return shared.NewDomainError("INVALID_RULES", "Rule list cannot be encoded")
	}
	rs.RulesJSON = string(raw)
	rs.UpdatedAt = time.Now()
	rs.IncrementVersion()
	return nil
}

// Names returns the stored identifier list as entered, unknown entries
// included
func (rs *RuleSet) Names() []string {
	var names []string
	if err := json.Unmarshal([]byte(rs.RulesJSON), &names); err != nil {
		return nil
	}
	return names
}

// Rules returns the effective rule sequence: stored identifiers filtered
// to the known ones, or the default sequence when nothing valid remains
func (rs *RuleSet) Rules() []Rule {
	return ParseRules(rs.Names())
}
