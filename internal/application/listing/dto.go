package listing

import (
	"time"

	"github.com/google/uuid"
)

// ChildInput is one child product folded into a combined listing
type ChildInput struct {
	ProductID    string `json:"product_id" binding:"required"`
	OptionValues string `json:"option_values"`
}

// CreateRequest registers a combined listing parent with its children
type CreateRequest struct {
	Shop              string       `json:"shop" binding:"required"`
	ExternalProductID string       `json:"external_product_id" binding:"required"`
	Title             string       `json:"title"`
	Children          []ChildInput `json:"children" binding:"omitempty,dive"`
}

// ChildView is one child in a combined listing response
type ChildView struct {
	ID             uuid.UUID `json:"id"`
	ChildProductID string    `json:"child_product_id"`
	OptionValues   string    `json:"option_values"`
}

// ParentResponse is the outward shape of a combined listing
type ParentResponse struct {
	ID                uuid.UUID   `json:"id"`
	Shop              string      `json:"shop"`
	ExternalProductID string      `json:"external_product_id"`
	Title             string      `json:"title,omitempty"`
	Children          []ChildView `json:"children"`
	CreatedAt         time.Time   `json:"created_at"`
}

// ListResponse is a paginated combined listing page
type ListResponse struct {
	Parents    []ParentResponse `json:"parents"`
	Total      int64            `json:"total"`
	Page       int              `json:"page"`
	PageSize   int              `json:"page_size"`
	TotalPages int              `json:"total_pages"`
}
