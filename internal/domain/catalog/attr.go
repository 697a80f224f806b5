package catalog

import (
	"time"

	"github.com/merchdash/backend/internal/domain/shared"
)

// ProductAttr holds merchandising attributes for a product. At most one
// row exists per product; none of the ingestion pipelines populate it, it
// is maintained through the CSV attribute import.
type ProductAttr struct {
	ProductID string  `gorm:"type:varchar(128);primaryKey"`
	Shop      string  `gorm:"type:varchar(255);not null;index"`
	Category  *string `gorm:"type:varchar(128)"`
	Season    *string `gorm:"type:varchar(64)"`
	Gender    *string `gorm:"type:varchar(32)"`
	Lifecycle *string `gorm:"type:varchar(64)"`
	UpdatedAt time.Time
}

// TableName returns the table name for GORM
func (ProductAttr) TableName() string {
	return "product_attrs"
}

// NewProductAttr creates a merchandising attribute row for a product
func NewProductAttr(shop, productID string) (*ProductAttr, error) {
	if err := validateExternalID(productID); err != nil {
		return nil, err
	}
	if shop == "" {
		return nil, shared.NewDomainError("INVALID_SHOP", "Shop domain is required")
	}
	return &ProductAttr{
		ProductID: productID,
		Shop:      shop,
		UpdatedAt: time.Now(),
	}, nil
}

// Set assigns the attribute values; empty strings clear nothing and are
// ignored so a sparse CSV row only touches the columns it names.
func (a *ProductAttr) Set(category, season, gender, lifecycle string) {
	if category != "" {
		a.Category = &category
	}
	if season != "" {
		a.Season = &season
	}
	if gender != "" {
		a.Gender = &gender
	}
	if lifecycle != "" {
		a.Lifecycle = &lifecycle
	}
	a.UpdatedAt = time.Now()
}
