package catalog

import "context"

// ProductRepository defines the interface for product mirror persistence
type ProductRepository interface {
	// Upsert inserts the product or refreshes its mirror fields when the
	// platform identifier already exists
	Upsert(ctx context.Context, product *Product) error

	// FindByID finds a product by its platform identifier within a shop
	FindByID(ctx context.Context, shop, id string) (*Product, error)

	// Exists reports whether a product with the given identifier exists
	Exists(ctx context.Context, shop, id string) (bool, error)
}

// VariantRepository defines the interface for variant mirror persistence
type VariantRepository interface {
	// Upsert inserts the variant or refreshes its mirror fields when the
	// platform identifier already exists
	Upsert(ctx context.Context, variant *Variant) error

	// FindByID finds a variant by its platform identifier within a shop
	FindByID(ctx context.Context, shop, id string) (*Variant, error)
}

// ProductAttrRepository defines the interface for merchandising attributes
type ProductAttrRepository interface {
	// Upsert inserts or replaces the attribute row for a product
	Upsert(ctx context.Context, attr *ProductAttr) error

	// FindByProductID finds the attribute row for a product, if any
	FindByProductID(ctx context.Context, shop, productID string) (*ProductAttr, error)
}
