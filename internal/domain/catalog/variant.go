package catalog

import (
	"time"
)

// Variant is a local mirror of a platform product variant. Size and color
// are best-effort derivations from the variant's named option pairs and
// stay nil when no recognizable option is present.
type Variant struct {
	ID        string  `gorm:"type:varchar(128);primaryKey"`
	ProductID string  `gorm:"type:varchar(128);not null;index"`
	Shop      string  `gorm:"type:varchar(255);not null;index"`
	Title     string  `gorm:"type:varchar(512)"`
	SKU       string  `gorm:"type:varchar(255);index"`
	Size      *string `gorm:"type:varchar(64)"`
	Color     *string `gorm:"type:varchar(64)"`
	UpdatedAt time.Time
}

// TableName returns the table name for GORM
func (Variant) TableName() string {
	return "variants"
}

// NewVariant creates a variant mirror from platform fields, deriving size
// and color from the option pairs
func NewVariant(shop, id, productID, title, sku string, opts []OptionPair) (*Variant, error) {
	if err := validateExternalID(id); err != nil {
		return nil, err
	}
	if err := validateExternalID(productID); err != nil {
		return nil, err
	}

	size, color := DeriveSizeColor(opts)
	return &Variant{
		ID:        id,
		ProductID: productID,
		Shop:      shop,
		Title:     title,
		SKU:       sku,
		Size:      size,
		Color:     color,
		UpdatedAt: time.Now(),
	}, nil
}

// Refresh overwrites the mutable mirror fields from a newer platform read
func (v *Variant) Refresh(title, sku string, opts []OptionPair) {
	v.Title = title
	v.SKU = sku
	size, color := DeriveSizeColor(opts)
	if size != nil {
		v.Size = size
	}
	if color != nil {
		v.Color = color
	}
	v.UpdatedAt = time.Now()
}
