package ranking

// Rule identifies one ordering criterion. A ranking run applies its rule
// sequence left to right: the first rule that distinguishes two products
// decides their relative order.
type Rule string

const (
	// RuleInStock puts products with at least one sellable variant first
	RuleInStock Rule = "in_stock"
	// RuleSales90d orders by trailing-window units sold, descending
	RuleSales90d Rule = "sales_90d"
	// RuleVariantsInStock orders by the count of sellable variants, descending
	RuleVariantsInStock Rule = "variants_in_stock"
	// RuleAlpha orders by title, ascending, case-sensitive
	RuleAlpha Rule = "alpha"
	// RuleOOSLast pushes fully out-of-stock products to the end
	RuleOOSLast Rule = "oos_last"
)

// IsValid reports whether the rule identifier is known
func (r Rule) IsValid() bool {
	switch r {
	case RuleInStock, RuleSales90d, RuleVariantsInStock, RuleAlpha, RuleOOSLast:
		return true
	}
	return false
}

// String returns the rule identifier
func (r Rule) String() string {
	return string(r)
}

// DefaultRules returns the canonical rule sequence: sellable first, then
// best sellers, then variant depth, then title, with out-of-stock products
// pinned to the end.
func DefaultRules() []Rule {
	return []Rule{RuleInStock, RuleSales90d, RuleVariantsInStock, RuleAlpha, RuleOOSLast}
}

// ParseRules filters a list of rule identifiers down to the known ones,
// preserving order and dropping duplicates. An empty or fully invalid
// input falls back to the default sequence.
func ParseRules(names []string) []Rule {
	seen := make(map[Rule]bool, len(names))
	rules := make([]Rule, 0, len(names))
	for _, name := range names {
		r := Rule(name)
		if !r.IsValid() || seen[r] {
			continue
		}
		seen[r] = true
		rules = append(rules, r)
	}
	if len(rules) == 0 {
		return DefaultRules()
	}
	return rules
}
