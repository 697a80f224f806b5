package ingest

import "context"

// CursorRepository defines the interface for watermark persistence
type CursorRepository interface {
	// Find returns the watermark for a shop, or nil when the shop has
	// never completed an orders run
	Find(ctx context.Context, shop string) (*Cursor, error)

	// Upsert inserts or replaces the single watermark row for the
	// cursor's shop
	Upsert(ctx context.Context, cursor *Cursor) error
}
