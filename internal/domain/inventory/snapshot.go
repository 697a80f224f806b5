package inventory

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/merchdash/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Snapshot is one append-only inventory observation: the on-hand quantity
// of a variant at a point in time, optionally with price and cost. Rows
// are never mutated after insert; the latest state of a variant is the row
// with the greatest SnapshotDate.
type Snapshot struct {
	ID           uuid.UUID        `gorm:"type:uuid;primaryKey"`
	Shop         string           `gorm:"type:varchar(255);not null;index"`
	SnapshotDate time.Time        `gorm:"not null;index:idx_snapshots_variant_date,priority:2"`
	ProductID    string           `gorm:"type:varchar(128);not null;index"`
	VariantID    string           `gorm:"type:varchar(128);not null;index:idx_snapshots_variant_date,priority:1"`
	OnHand       int              `gorm:"not null;default:0"`
	Price        *decimal.Decimal `gorm:"type:decimal(12,2)"`
	Cost         *decimal.Decimal `gorm:"type:decimal(12,2)"`
	CreatedAt    time.Time
}

// TableName returns the table name for GORM
func (Snapshot) TableName() string {
	return "inventory_snapshots"
}

// NewSnapshot creates an inventory observation for a variant at the given
// instant. Negative on-hand readings are stored as reported; the platform
// uses them for oversold stock.
func NewSnapshot(shop, productID, variantID string, takenAt time.Time, onHand int, price, cost *decimal.Decimal) (*Snapshot, error) {
	if shop == "" {
		return nil, shared.NewDomainError("INVALID_SHOP", "Shop domain is required")
	}
	if strings.TrimSpace(variantID) == "" {
		return nil, shared.NewDomainError("INVALID_VARIANT_ID", "Variant identifier is required")
	}
	if strings.TrimSpace(productID) == "" {
		return nil, shared.NewDomainError("INVALID_PRODUCT_ID", "Product identifier is required")
	}
	if takenAt.IsZero() {
		takenAt = time.Now()
	}

	return &Snapshot{
		ID:           uuid.New(),
		Shop:         shop,
		SnapshotDate: takenAt,
		ProductID:    productID,
		VariantID:    variantID,
		OnHand:       onHand,
		Price:        price,
		Cost:         cost,
	}, nil
}
