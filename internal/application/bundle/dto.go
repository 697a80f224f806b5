package bundle

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ComponentInput is one component of a bundle request
type ComponentInput struct {
	VariantID string `json:"variant_id" binding:"required"`
	Qty       int    `json:"qty" binding:"required,min=1"`
}

// CreateRequest describes a new bundle definition
type CreateRequest struct {
	Shop              string           `json:"shop" binding:"required"`
	Title             string           `json:"title" binding:"required"`
	ExternalProductID string           `json:"external_product_id"`
	Components        []ComponentInput `json:"components" binding:"required,min=1,dive"`
	DiscountPercent   *decimal.Decimal `json:"discount_percent"`
	DiscountFixed     *decimal.Decimal `json:"discount_fixed"`
}

// ComponentView is one component in a bundle response
type ComponentView struct {
	VariantID string `json:"variant_id"`
	Qty       int    `json:"qty"`
}

// BundleResponse is the outward shape of a bundle definition
type BundleResponse struct {
	ID                uuid.UUID        `json:"id"`
	Shop              string           `json:"shop"`
	Title             string           `json:"title"`
	ExternalProductID string           `json:"external_product_id,omitempty"`
	DiscountPercent   *decimal.Decimal `json:"discount_percent,omitempty"`
	DiscountFixed     *decimal.Decimal `json:"discount_fixed,omitempty"`
	Components        []ComponentView  `json:"components"`
	CreatedAt         time.Time        `json:"created_at"`
}

// ListResponse is a paginated bundle listing
type ListResponse struct {
	Bundles    []BundleResponse `json:"bundles"`
	Total      int64            `json:"total"`
	Page       int              `json:"page"`
	PageSize   int              `json:"page_size"`
	TotalPages int              `json:"total_pages"`
}

// CapacityRequest computes capacity for ad-hoc components without a
// stored bundle
type CapacityRequest struct {
	Shop       string           `json:"shop" binding:"required"`
	Components []ComponentInput `json:"components" binding:"required,min=1,dive"`
}

// ComponentCapacity reports the availability constraint one component
// puts on the bundle
type ComponentCapacity struct {
	VariantID string `json:"variant_id"`
	Qty       int    `json:"qty"`
	Available int    `json:"available"`
	Limit     int    `json:"limit"`
}

// CapacityResponse is the sellable-capacity verdict for a component set
type CapacityResponse struct {
	Shop       string              `json:"shop"`
	BundleID   *uuid.UUID          `json:"bundle_id,omitempty"`
	Capacity   int                 `json:"capacity"`
	Components []ComponentCapacity `json:"components"`
}
