package sales

import "context"

// OrderLineRepository defines the interface for sales fact persistence.
// Facts are write-once: there is no update or delete surface.
type OrderLineRepository interface {
	// InsertIfAbsent stores the line unless a row with the same identifier
	// already exists. Returns true when a new row was written.
	InsertIfAbsent(ctx context.Context, line *OrderLine) (bool, error)

	// FindByID finds a stored line by its platform identifier
	FindByID(ctx context.Context, shop, id string) (*OrderLine, error)

	// CountByShop counts the stored facts for a shop
	CountByShop(ctx context.Context, shop string) (int64, error)
}
