package listing

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/merchdash/backend/internal/domain/shared"
)

// CombinedParent is a merchandising construct grouping several independent
// catalog products under one shared parent listing on the platform. The
// external parent product id is unique per shop; children cascade with the
// parent.
type CombinedParent struct {
	shared.ShopAggregateRoot
	ExternalProductID string          `gorm:"type:varchar(128);not null;uniqueIndex:idx_combined_shop_product,priority:2"`
	Title             string          `gorm:"type:varchar(255)"`
	Children          []CombinedChild `gorm:"foreignKey:ParentID;constraint:OnDelete:CASCADE"`
}

// TableName returns the table name for GORM
func (CombinedParent) TableName() string {
	return "combined_parents"
}

// CombinedChild is one product folded into a combined listing, with an
// opaque option-value mapping describing how the child maps onto the
// parent's configurable options.
type CombinedChild struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey"`
	ParentID       uuid.UUID `gorm:"type:uuid;not null;index"`
	ChildProductID string    `gorm:"type:varchar(128);not null"`
	OptionValues   string    `gorm:"type:jsonb;not null;default:'{}'"`
	CreatedAt      time.Time
}

// TableName returns the table name for GORM
func (CombinedChild) TableName() string {
	return "combined_children"
}

// ChildInput carries one child reference for parent creation
type ChildInput struct {
	ProductID    string
	OptionValues string // JSON object, defaults to {}
}

// NewCombinedParent creates a parent listing with its children
func NewCombinedParent(shop, externalProductID, title string, children []ChildInput) (*CombinedParent, error) {
	if strings.TrimSpace(externalProductID) == "" {
		return nil, shared.NewDomainError("INVALID_PARENT_PRODUCT", "Parent product identifier is required")
	}
	if shop == "" {
		return nil, shared.NewDomainError("INVALID_SHOP", "Shop domain is required")
	}

	parent := &CombinedParent{
		ShopAggregateRoot: shared.NewShopAggregateRoot(shop),
		ExternalProductID: externalProductID,
		Title:             strings.TrimSpace(title),
	}

	for _, c := range children {
		child, err := newCombinedChild(parent.ID, c)
		if err != nil {
			return nil, err
		}
		parent.Children = append(parent.Children, *child)
	}

	return parent, nil
}

func newCombinedChild(parentID uuid.UUID, in ChildInput) (*CombinedChild, error) {
	if strings.TrimSpace(in.ProductID) == "" {
		return nil, shared.NewDomainError("INVALID_CHILD_PRODUCT", "Child product identifier is required")
	}

	values := strings.TrimSpace(in.OptionValues)
	if values == "" {
		values = "{}"
	}
	if !json.Valid([]byte(values)) {
		return nil, shared.NewDomainError("INVALID_OPTION_VALUES", "Option values must be valid JSON")
	}

	return &CombinedChild{
		ID:             uuid.New(),
		ParentID:       parentID,
		ChildProductID: in.ProductID,
		OptionValues:   values,
	}, nil
}
