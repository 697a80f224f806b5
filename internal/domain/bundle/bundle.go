package bundle

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/merchdash/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Bundle is a multi-component bundle definition: a linked bundle product
// on the platform plus the set of component variants (with quantities)
// that one bundle consumes. Items live and die with the definition.
type Bundle struct {
	shared.ShopAggregateRoot
	Title            string           `gorm:"type:varchar(255);not null"`
	ExternalProductID string          `gorm:"type:varchar(128);index"`
	DiscountPercent  *decimal.Decimal `gorm:"type:decimal(5,2)"`
	DiscountFixed    *decimal.Decimal `gorm:"type:decimal(12,2)"`
	Items            []Item           `gorm:"foreignKey:BundleID;constraint:OnDelete:CASCADE"`
}

// TableName returns the table name for GORM
func (Bundle) TableName() string {
	return "bundles"
}

// Item is one component of a bundle: a variant and how many units of it a
// single bundle consumes. Component order is irrelevant.
type Item struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	BundleID  uuid.UUID `gorm:"type:uuid;not null;index"`
	VariantID string    `gorm:"type:varchar(128);not null"`
	Qty       int       `gorm:"not null;default:1"`
	CreatedAt time.Time
}

// TableName returns the table name for GORM
func (Item) TableName() string {
	return "bundle_items"
}

// Component is the value used for capacity computation: a variant and the
// quantity one bundle consumes.
type Component struct {
	VariantID string
	Qty       int
}

// NewBundle creates a bundle definition with its components
func NewBundle(shop, title, externalProductID string, components []Component, discountPercent, discountFixed *decimal.Decimal) (*Bundle, error) {
	if strings.TrimSpace(title) == "" {
		return nil, shared.NewDomainError("INVALID_TITLE", "Bundle title is required")
	}
	if len(components) == 0 {
		return nil, shared.NewDomainError("EMPTY_COMPONENTS", "A bundle needs at least one component")
	}
	if discountPercent != nil && discountFixed != nil {
		return nil, shared.NewDomainError("AMBIGUOUS_DISCOUNT", "Use either a percent or a fixed discount, not both")
	}
	if discountPercent != nil {
		if discountPercent.LessThanOrEqual(decimal.Zero) || discountPercent.GreaterThan(decimal.NewFromInt(100)) {
			return nil, shared.NewDomainError("INVALID_DISCOUNT", "Percent discount must be in (0, 100]")
		}
	}
	if discountFixed != nil && discountFixed.IsNegative() {
		return nil, shared.NewDomainError("INVALID_DISCOUNT", "Fixed discount cannot be negative")
	}

	b := &Bundle{
		ShopAggregateRoot: shared.NewShopAggregateRoot(shop),
		Title:             strings.TrimSpace(title),
		ExternalProductID: externalProductID,
		DiscountPercent:   discountPercent,
		DiscountFixed:     discountFixed,
	}

	for _, c := range components {
		if strings.TrimSpace(c.VariantID) == "" {
			return nil, shared.NewDomainError("INVALID_COMPONENT", "Component variant identifier is required")
		}
		if c.Qty < 1 {
			return nil, shared.NewDomainError("INVALID_COMPONENT", "Component quantity must be at least 1")
		}
		b.Items = append(b.Items, Item{
			ID:        uuid.New(),
			BundleID:  b.ID,
			VariantID: c.VariantID,
			Qty:       c.Qty,
		})
	}

	return b, nil
}

// Components returns the capacity inputs for this bundle
func (b *Bundle) Components() []Component {
	comps := make([]Component, 0, len(b.Items))
	for _, item := range b.Items {
		comps = append(comps, Component{VariantID: item.VariantID, Qty: item.Qty})
	}
	return comps
}
