package bundle

import "math"

// Capacity computes the maximum number of bundles sellable given the
// available stock per component variant: the minimum over
// floor(available / qty) across components, with quantities below one
// treated as one. An empty component list yields zero.
func Capacity(components []Component, available map[string]int) int {
	if len(components) == 0 {
		return 0
	}

	capacity := math.MaxInt
	for _, c := range components {
		qty := c.Qty
		if qty < 1 {
			qty = 1
		}
		avail := available[c.VariantID]
		if avail < 0 {
			avail = 0
		}
		if n := avail / qty; n < capacity {
			capacity = n
		}
	}
	return capacity
}
