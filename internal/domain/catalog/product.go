package catalog

import (
	"strings"
	"time"

	"github.com/merchdash/backend/internal/domain/shared"
)

// Product is a local mirror of a platform product. The primary key is the
// platform's own identifier (a GID string), so re-ingesting the same
// product coalesces into a single row.
type Product struct {
	ID        string    `gorm:"type:varchar(128);primaryKey"`
	Shop      string    `gorm:"type:varchar(255);not null;index"`
	Title     string    `gorm:"type:varchar(512);not null"`
	Vendor    string    `gorm:"type:varchar(255)"`
	CreatedAt time.Time // creation timestamp reported by the platform
	UpdatedAt time.Time

	Variants []Variant    `gorm:"foreignKey:ProductID;constraint:OnDelete:RESTRICT"`
	Attr     *ProductAttr `gorm:"foreignKey:ProductID"`
}

// TableName returns the table name for GORM
func (Product) TableName() string {
	return "products"
}

// NewProduct creates a product mirror from platform fields
func NewProduct(shop, id, title, vendor string, createdAt time.Time) (*Product, error) {
	if err := validateExternalID(id); err != nil {
		return nil, err
	}
	if shop == "" {
		return nil, shared.NewDomainError("INVALID_SHOP", "Shop domain is required")
	}

	return &Product{
		ID:        id,
		Shop:      shop,
		Title:     title,
		Vendor:    vendor,
		CreatedAt: createdAt,
		UpdatedAt: time.Now(),
	}, nil
}

// Refresh overwrites the mutable mirror fields from a newer platform read
func (p *Product) Refresh(title, vendor string, createdAt time.Time) {
	p.Title = title
	p.Vendor = vendor
	if !createdAt.IsZero() {
		p.CreatedAt = createdAt
	}
	p.UpdatedAt = time.Now()
}

// AgeDays returns the product age in whole days at the given instant.
// Unknown creation dates count as age zero.
func (p *Product) AgeDays(now time.Time) int {
	if p.CreatedAt.IsZero() || p.CreatedAt.After(now) {
		return 0
	}
	return int(now.Sub(p.CreatedAt).Hours() / 24)
}

func validateExternalID(id string) error {
	if strings.TrimSpace(id) == "" {
		return shared.NewDomainError("INVALID_EXTERNAL_ID", "Platform identifier is required")
	}
	if len(id) > 128 {
		return shared.NewDomainError("INVALID_EXTERNAL_ID", "Platform identifier cannot exceed 128 characters")
	}
	return nil
}
