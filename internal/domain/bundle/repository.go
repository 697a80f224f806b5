package bundle

import (
	"context"

	"github.com/google/uuid"
	"github.com/merchdash/backend/internal/domain/shared"
)

// Repository defines the interface for bundle persistence
type Repository interface {
	// Save creates a bundle with its items in one write
	Save(ctx context.Context, bundle *Bundle) error

	// FindByID finds a bundle with its items
	FindByID(ctx context.Context, shop string, id uuid.UUID) (*Bundle, error)

	// FindAll lists the bundles of a shop with their items
	FindAll(ctx context.Context, shop string, filter shared.Filter) ([]Bundle, int64, error)

	// Delete removes a bundle; items cascade with it
	Delete(ctx context.Context, shop string, id uuid.UUID) error
}
