package listing

import (
	"context"

	"github.com/google/uuid"
	"github.com/merchdash/backend/internal/domain/shared"
)

// Repository defines the interface for combined listing persistence
type Repository interface {
	// Save creates a parent with its children; children are written with
	// a createMany-style batch insert
	Save(ctx context.Context, parent *CombinedParent) error

	// FindByID finds a parent with its children
	FindByID(ctx context.Context, shop string, id uuid.UUID) (*CombinedParent, error)

	// FindByExternalProductID finds a parent by the platform product id
	FindByExternalProductID(ctx context.Context, shop, externalProductID string) (*CombinedParent, error)

	// FindAll lists the parents of a shop with their children
	FindAll(ctx context.Context, shop string, filter shared.Filter) ([]CombinedParent, int64, error)

	// Delete removes a parent; children cascade with it
	Delete(ctx context.Context, shop string, id uuid.UUID) error
}
