package shop

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines the interface for shop persistence
type Repository interface {
	// Save creates or updates a shop
	Save(ctx context.Context, s *Shop) error

	// FindByID finds a shop by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Shop, error)

	// FindByDomain finds a shop by its myshopify domain
	FindByDomain(ctx context.Context, domain string) (*Shop, error)

	// FindAllActive returns every shop whose token is believed valid,
	// used by the scheduler to enumerate ingestion targets
	FindAllActive(ctx context.Context) ([]*Shop, error)

	// Delete removes a shop by ID
	Delete(ctx context.Context, id uuid.UUID) error
}
