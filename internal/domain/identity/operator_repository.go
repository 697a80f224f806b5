package identity

import (
	"context"

	"github.com/google/uuid"
	"github.com/merchdash/backend/internal/domain/shared"
)

// OperatorRepository defines the interface for operator persistence
type OperatorRepository interface {
	// Create creates a new operator
	Create(ctx context.Context, op *Operator) error

	// Update updates an existing operator
	Update(ctx context.Context, op *Operator) error

	// Delete deletes an operator by ID
	Delete(ctx context.Context, id uuid.UUID) error

	// FindByID finds an operator by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Operator, error)

	// FindByEmail finds an operator by email
	FindByEmail(ctx context.Context, email string) (*Operator, error)

	// ExistsByEmail checks if an email is already registered
	ExistsByEmail(ctx context.Context, email string) (bool, error)

	// FindAll returns all operators with pagination
	FindAll(ctx context.Context, filter shared.Filter) ([]*Operator, int64, error)
}
