package ranking

import (
	"sort"
	"strings"
)

// Product is the ranking view of a collection member: the product id plus
// the derived fields the rules compare on. InStock and VariantsInStock
// reflect live platform availability, Sold90 the trailing sales window.
type Product struct {
	ID              string
	Title           string
	InStock         bool
	VariantsInStock int
	Sold90          int
}

// compare returns a negative value when a ranks before b under this rule,
// a positive value when b ranks first, and zero when the rule cannot
// distinguish them.
func (r Rule) compare(a, b Product) int {
	switch r {
	case RuleInStock, RuleOOSLast:
		if a.InStock == b.InStock {
			return 0
		}
		if a.InStock {
			return -1
		}
		return 1
	case RuleSales90d:
		return b.Sold90 - a.Sold90
	case RuleVariantsInStock:
		return b.VariantsInStock - a.VariantsInStock
	case RuleAlpha:
		return strings.Compare(a.Title, b.Title)
	}
	return 0
}

// Sort orders products in place by the given rule sequence. The sort is
// stable: products the whole sequence cannot distinguish keep their input
// order, so two runs over identical input produce identical output.
func Sort(products []Product, rules []Rule) {
	if len(rules) == 0 {
		rules = DefaultRules()
	}
	sort.SliceStable(products, func(i, j int) bool {
		for _, rule := range rules {
			if c := rule.compare(products[i], products[j]); c != 0 {
				return c < 0
			}
		}
		return false
	})
}
