package ingest

import (
	"time"

	"github.com/merchdash/backend/internal/domain/shared"
)

// Cursor is the per-shop ingestion watermark: the date used as the lower
// bound of the next incremental orders pull. Exactly one row exists per
// shop and the stored date never moves backwards across successful runs.
type Cursor struct {
	Shop      string    `gorm:"type:varchar(255);primaryKey"`
	SinceDate time.Time `gorm:"not null"`
	UpdatedAt time.Time
}

// TableName returns the table name for GORM
func (Cursor) TableName() string {
	return "ingest_cursors"
}

// NewCursor creates a watermark for a shop
func NewCursor(shop string, since time.Time) (*Cursor, error) {
	if shop == "" {
		return nil, shared.NewDomainError("INVALID_SHOP", "Shop domain is required")
	}
	if since.IsZero() {
		return nil, shared.NewDomainError("INVALID_SINCE", "Watermark date is required")
	}
	return &Cursor{
		Shop:      shop,
		SinceDate: truncateToDay(since),
		UpdatedAt: time.Now(),
	}, nil
}

// Advance moves the watermark forward. Dates earlier than the stored one
// are ignored so a re-run of an old window can never rewind the cursor.
func (c *Cursor) Advance(since time.Time) {
	since = truncateToDay(since)
	if since.After(c.SinceDate) {
		c.SinceDate = since
	}
	c.UpdatedAt = time.Now()
}

// SinceISO returns the watermark formatted as an ISO calendar date
func (c *Cursor) SinceISO() string {
	return c.SinceDate.Format("2006-01-02")
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
