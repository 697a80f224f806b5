package bulk

import (
	"context"

	"github.com/google/uuid"
	"github.com/merchdash/backend/internal/domain/shared"
)

// ImportHistoryRepository defines the interface for import run persistence
type ImportHistoryRepository interface {
	// Save creates or updates an import run record
	Save(ctx context.Context, history *ImportHistory) error

	// FindByID finds an import run within a shop
	FindByID(ctx context.Context, shop string, id uuid.UUID) (*ImportHistory, error)

	// FindAll lists the import runs of a shop, newest first by default
	FindAll(ctx context.Context, shop string, filter shared.Filter) ([]ImportHistory, int64, error)
}
