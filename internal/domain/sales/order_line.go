package sales

import (
	"math"
	"strings"
	"time"

	"github.com/merchdash/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// OrderLine is an immutable sales fact. The primary key is the platform's
// line-item identifier, which is the idempotency guarantee: ingesting the
// same line twice stores exactly one row and never updates it.
type OrderLine struct {
	ID        string    `gorm:"type:varchar(128);primaryKey"`
	Shop      string    `gorm:"type:varchar(255);not null;index"`
	OrderID   string    `gorm:"type:varchar(128);not null;index"`
	CreatedAt time.Time `gorm:"index"`
	ProductID *string   `gorm:"type:varchar(128);index"`
	VariantID *string   `gorm:"type:varchar(128);index"`
	Qty       int       `gorm:"not null;default:0"`
	Currency  string    `gorm:"type:varchar(8);not null"`
	NetAmount decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
}

// TableName returns the table name for GORM
func (OrderLine) TableName() string {
	return "order_lines"
}

// NewOrderLine creates a sales fact from platform fields. Product and
// variant references are nullable because line items may point at catalog
// entries that have since been deleted.
func NewOrderLine(shop, id, orderID string, createdAt time.Time, productID, variantID *string, qty int, currency string, amount decimal.Decimal) (*OrderLine, error) {
	if strings.TrimSpace(id) == "" {
		return nil, shared.NewDomainError("INVALID_LINE_ID", "Line item identifier is required")
	}
	if strings.TrimSpace(orderID) == "" {
		return nil, shared.NewDomainError("INVALID_ORDER_ID", "Order identifier is required")
	}
	if shop == "" {
		return nil, shared.NewDomainError("INVALID_SHOP", "Shop domain is required")
	}
	if qty < 0 {
		qty = 0
	}
	if amount.IsNegative() {
		amount = decimal.Zero
	}

	return &OrderLine{
		ID:        id,
		Shop:      shop,
		OrderID:   orderID,
		CreatedAt: createdAt,
		ProductID: normalizeRef(productID),
		VariantID: normalizeRef(variantID),
		Qty:       qty,
		Currency:  currency,
		NetAmount: amount.Round(2),
	}, nil
}

// CoerceAmount turns a raw platform amount into a non-negative two-decimal
// value. Non-finite and negative inputs collapse to zero instead of
// poisoning the stored facts.
func CoerceAmount(raw float64) decimal.Decimal {
	if math.IsNaN(raw) || math.IsInf(raw, 0) || raw < 0 {
		return decimal.Zero
	}
	return decimal.NewFromFloat(raw).Round(2)
}

// CoerceAmountString parses a platform decimal string the same way,
// falling back to zero on anything unparsable.
func CoerceAmountString(raw string) decimal.Decimal {
	d, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil || d.IsNegative() {
		return decimal.Zero
	}
	return d.Round(2)
}

func normalizeRef(id *string) *string {
	if id == nil || strings.TrimSpace(*id) == "" {
		return nil
	}
	return id
}
