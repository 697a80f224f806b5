package integration

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// ---------------------------------------------------------------------------
// CommercePlatform Errors
// ---------------------------------------------------------------------------

var (
	// Platform transport errors
	ErrPlatformUnavailable     = errors.New("integration: platform temporarily unavailable")
	ErrPlatformRequestFailed   = errors.New("integration: platform request failed")
	ErrPlatformInvalidResponse = errors.New("integration: invalid platform response")
	ErrPlatformRateLimited     = errors.New("integration: platform rate limited")

	// ErrReauthRequired signals that the shop's access token was rejected.
	// Callers surface it as a distinct machine-readable directive so the UI
	// can send the operator back through installation.
	ErrReauthRequired = errors.New("integration: shop access token rejected, reauthentication required")

	// Reorder job errors
	ErrJobNotFound = errors.New("integration: reorder job not found")
	ErrJobTimeout  = errors.New("integration: reorder job did not complete within the poll budget")

	// Request validation errors
	ErrInvalidShop         = errors.New("integration: shop domain is required")
	ErrInvalidOrderID      = errors.New("integration: order id is required")
	ErrInvalidCollectionID = errors.New("integration: collection id is required")
	ErrInvalidSince        = errors.New("integration: since date is required")
	ErrNoMoves             = errors.New("integration: at least one move is required")
	ErrTooManyMoves        = errors.New("integration: too many moves in one request")
	ErrInvalidMove         = errors.New("integration: move requires a product id and a non-negative position")
)

// MaxReorderMoves is the largest number of moves the platform accepts in a
// single reorder mutation.
const MaxReorderMoves = 250

// ---------------------------------------------------------------------------
// Pagination
// ---------------------------------------------------------------------------

// PageInfo carries the cursor state of a paginated platform query.
type PageInfo struct {
	// HasNextPage is true when more results remain after this page
	HasNextPage bool
	// EndCursor is the opaque cursor to resume from (valid when HasNextPage)
	EndCursor string
}

// ---------------------------------------------------------------------------
// Order Value Objects
// ---------------------------------------------------------------------------

// PlatformOrder represents one paid order pulled from the platform.
type PlatformOrder struct {
	// ID is the platform's order identifier
	ID string
	// Name is the human-readable order number (e.g. "#1042")
	Name string
	// CreatedAt is when the order was placed on the platform
	CreatedAt time.Time
	// Currency is the ISO currency code of the order
	Currency string
	// LineItems holds the first embedded page of line items
	LineItems []PlatformLineItem
	// LineItemPage reports whether LineItems is truncated and where to
	// resume via PullOrderLines
	LineItemPage PageInfo
}

// PlatformLineItem represents one sold line item, carrying enough catalog
// detail to upsert the referenced product and variant locally.
type PlatformLineItem struct {
	// ID is the platform's line item identifier
	ID string
	// Title is the product title at time of sale
	Title string
	// Quantity is the number of units sold
	Quantity int
	// NetAmount is the discounted line total in the order currency
	NetAmount decimal.Decimal
	// Product is the referenced catalog product (nil when deleted on the platform)
	Product *LineItemProduct
	// Variant is the referenced catalog variant (nil when deleted on the platform)
	Variant *LineItemVariant
}

// LineItemProduct is the catalog product referenced by a line item.
type LineItemProduct struct {
	// ID is the platform's product identifier
	ID string
	// Title is the current product title
	Title string
	// Vendor is the product vendor/brand
	Vendor string
	// CreatedAt is when the product was created on the platform
	CreatedAt time.Time
}

// LineItemVariant is the catalog variant referenced by a line item.
type LineItemVariant struct {
	// ID is the platform's variant identifier
	ID string
	// Title is the variant title (e.g. "M / Navy")
	Title string
	// SKU is the merchant-assigned stock keeping unit
	SKU string
	// Options holds the variant's selected option pairs
	Options []SelectedOption
}

// SelectedOption is a name/value option pair on a platform variant.
type SelectedOption struct {
	// Name is the option name as configured by the merchant (e.g. "Size")
	Name string
	// Value is the option value for this variant (e.g. "M")
	Value string
}

// OrderPage is one page of paid orders.
type OrderPage struct {
	// Orders contains the orders on this page
	Orders []PlatformOrder
	// PageInfo reports whether more orders remain
	PageInfo PageInfo
}

// LineItemPage is one page of line items for a single order.
type LineItemPage struct {
	// Items contains the line items on this page
	Items []PlatformLineItem
	// PageInfo reports whether more line items remain
	PageInfo PageInfo
}

// ---------------------------------------------------------------------------
// Collection Value Objects
// ---------------------------------------------------------------------------

// Collection represents a product collection on the platform.
type Collection struct {
	// ID is the platform's collection identifier
	ID string
	// Title is the collection title
	Title string
	// Handle is the collection's URL handle
	Handle string
	// ProductCount is the number of products in the collection
	ProductCount int
}

// CollectionPage is one page of collections.
type CollectionPage struct {
	// Collections contains the collections on this page
	Collections []Collection
	// PageInfo reports whether more collections remain
	PageInfo PageInfo
}

// CollectionProduct represents a product inside a collection together with
// its live availability, read at ranking time rather than from the store.
type CollectionProduct struct {
	// ID is the platform's product identifier
	ID string
	// Title is the current product title
	Title string
	// Available is true when at least one variant is available for sale
	Available bool
	// VariantsAvailable is the number of variants available for sale
	VariantsAvailable int
	// TotalVariants is the total number of variants on the product
	TotalVariants int
}

// CollectionProductPage is one page of collection products.
type CollectionProductPage struct {
	// Products contains the products on this page
	Products []CollectionProduct
	// PageInfo reports whether more products remain
	PageInfo PageInfo
}

// ---------------------------------------------------------------------------
// Inventory Value Objects
// ---------------------------------------------------------------------------

// VariantStock is a point-in-time stock reading for one variant, carrying
// the catalog detail needed to upsert the variant locally.
type VariantStock struct {
	// VariantID is the platform's variant identifier
	VariantID string
	// ProductID is the platform's identifier of the owning product
	ProductID string
	// ProductTitle is the owning product's title
	ProductTitle string
	// ProductVendor is the owning product's vendor/brand
	ProductVendor string
	// ProductCreatedAt is when the owning product was created on the platform
	ProductCreatedAt time.Time
	// Title is the variant title
	Title string
	// SKU is the merchant-assigned stock keeping unit
	SKU string
	// Options holds the variant's selected option pairs
	Options []SelectedOption
	// OnHand is the current on-hand quantity as reported by the platform
	OnHand int
	// Price is the current selling price (nil when not exposed)
	Price *decimal.Decimal
	// Cost is the current unit cost (nil when not exposed)
	Cost *decimal.Decimal
}

// VariantStockPage is one page of variant stock readings.
type VariantStockPage struct {
	// Variants contains the stock readings on this page
	Variants []VariantStock
	// PageInfo reports whether more variants remain
	PageInfo PageInfo
}

// ---------------------------------------------------------------------------
// Reorder Value Objects
// ---------------------------------------------------------------------------

// Move instructs the platform to place a product at a zero-based position
// within a collection.
type Move struct {
	// ProductID is the platform's product identifier
	ProductID string
	// NewPosition is the zero-based target position
	NewPosition int
}

// ---------------------------------------------------------------------------
// Requests
// ---------------------------------------------------------------------------

// OrderPullRequest asks for one page of paid orders created at or after Since.
type OrderPullRequest struct {
	// Shop is the shop domain making the request
	Shop string
	// Since is the inclusive lower bound on order creation date
	Since time.Time
	// Cursor resumes a prior page (empty for the first page)
	Cursor string
	// PageSize is the number of orders per page (defaulted when out of range)
	PageSize int
}

// Validate validates the order pull request and applies paging defaults.
func (r *OrderPullRequest) Validate() error {
	if r.Shop == "" {
		return ErrInvalidShop
	}
	if r.Since.IsZero() {
		return ErrInvalidSince
	}
	if r.PageSize < 1 || r.PageSize > 250 {
		r.PageSize = 50
	}
	return nil
}

// OrderLinePullRequest asks for one page of line items for a single order,
// resuming the nested pagination started by an OrderPage.
type OrderLinePullRequest struct {
	// Shop is the shop domain making the request
	Shop string
	// OrderID is the platform's order identifier
	OrderID string
	// Cursor resumes a prior page (empty for the first page)
	Cursor string
	// PageSize is the number of line items per page (defaulted when out of range)
	PageSize int
}

// Validate validates the order line pull request and applies paging defaults.
func (r *OrderLinePullRequest) Validate() error {
	if r.Shop == "" {
		return ErrInvalidShop
	}
	if r.OrderID == "" {
		return ErrInvalidOrderID
	}
	if r.PageSize < 1 || r.PageSize > 250 {
		r.PageSize = 50
	}
	return nil
}

// CollectionProductsRequest asks for one page of a collection's products
// with live availability.
type CollectionProductsRequest struct {
	// Shop is the shop domain making the request
	Shop string
	// CollectionID is the platform's collection identifier
	CollectionID string
	// Cursor resumes a prior page (empty for the first page)
	Cursor string
	// PageSize is the number of products per page (defaulted when out of range)
	PageSize int
}

// Validate validates the collection products request and applies paging defaults.
func (r *CollectionProductsRequest) Validate() error {
	if r.Shop == "" {
		return ErrInvalidShop
	}
	if r.CollectionID == "" {
		return ErrInvalidCollectionID
	}
	if r.PageSize < 1 || r.PageSize > 250 {
		r.PageSize = 50
	}
	return nil
}

// ReorderRequest submits one chunk of positional moves for a collection.
type ReorderRequest struct {
	// Shop is the shop domain making the request
	Shop string
	// CollectionID is the platform's collection identifier
	CollectionID string
	// Moves are the positional moves to apply, at most MaxReorderMoves
	Moves []Move
}

// Validate validates the reorder request.
func (r *ReorderRequest) Validate() error {
	if r.Shop == "" {
		return ErrInvalidShop
	}
	if r.CollectionID == "" {
		return ErrInvalidCollectionID
	}
	if len(r.Moves) == 0 {
		return ErrNoMoves
	}
	if len(r.Moves) > MaxReorderMoves {
		return ErrTooManyMoves
	}
	for _, m := range r.Moves {
		if m.ProductID == "" || m.NewPosition < 0 {
			return ErrInvalidMove
		}
	}
	return nil
}

// ---------------------------------------------------------------------------
// CommercePlatform Port Interface
// ---------------------------------------------------------------------------

// CommercePlatform defines the port interface for the external commerce
// platform. The interface is defined in the domain layer; the concrete
// GraphQL adapter lives in the infrastructure layer.
type CommercePlatform interface {
	// ---------------------------------------------------------------------------
	// Order Operations
	// ---------------------------------------------------------------------------

	// PullPaidOrders returns one page of paid orders created at or after
	// req.Since. Orders whose line items exceed the embedded page are
	// completed with PullOrderLines before moving on.
	PullPaidOrders(ctx context.Context, req *OrderPullRequest) (*OrderPage, error)

	// PullOrderLines returns one page of line items for a single order.
	PullOrderLines(ctx context.Context, req *OrderLinePullRequest) (*LineItemPage, error)

	// SoldUnitsSince sums units sold per product id across paid orders
	// created at or after since, paging through orders internally.
	SoldUnitsSince(ctx context.Context, shop string, since time.Time) (map[string]int, error)

	// ---------------------------------------------------------------------------
	// Collection Operations
	// ---------------------------------------------------------------------------

	// ListCollections returns one page of the shop's collections.
	ListCollections(ctx context.Context, shop, cursor string) (*CollectionPage, error)

	// CollectionProducts returns one page of a collection's products with
	// live availability.
	CollectionProducts(ctx context.Context, req *CollectionProductsRequest) (*CollectionProductPage, error)

	// ReorderCollection submits one chunk of positional moves. It returns
	// the platform's job id, or an empty string when the platform applied
	// the moves synchronously.
	ReorderCollection(ctx context.Context, req *ReorderRequest) (jobID string, err error)

	// JobCompleted reports whether an asynchronous reorder job has finished.
	JobCompleted(ctx context.Context, shop, jobID string) (bool, error)

	// ---------------------------------------------------------------------------
	// Inventory Operations
	// ---------------------------------------------------------------------------

	// VariantsWithInventory returns one page of stock readings across the
	// shop's tracked variants, used to take inventory snapshots.
	VariantsWithInventory(ctx context.Context, shop, cursor string) (*VariantStockPage, error)

	// VariantAvailability returns available-to-sell quantities keyed by
	// variant id. Implementations may fall back to an alternate query shape
	// when the platform rejects the primary one.
	VariantAvailability(ctx context.Context, shop string, variantIDs []string) (map[string]int, error)
}
