package ingestion

import "time"

// OrdersRunRequest describes one incremental orders pull.
// Since takes precedence over Days; when neither is set the run resumes
// from the shop's stored watermark, falling back to the configured
// lookback window on the very first run.
type OrdersRunRequest struct {
	Shop  string     `json:"shop" binding:"required"`
	Since *time.Time `json:"since"`
	Days  int        `json:"days" binding:"omitempty,min=1,max=3650"`
}

// OrdersRunResult summarizes a completed orders run
type OrdersRunResult struct {
	Shop            string `json:"shop"`
	SinceISO        string `json:"since_iso"`
	OrdersProcessed int    `json:"orders_processed"`
	LinesProcessed  int    `json:"lines_processed"`
	DurationMS      int64  `json:"duration_ms"`
}

// SnapshotRunRequest describes one inventory snapshot run
type SnapshotRunRequest struct {
	Shop string `json:"shop" binding:"required"`
}

// SnapshotRunResult summarizes a completed snapshot run
type SnapshotRunResult struct {
	Shop             string    `json:"shop"`
	TakenAt          time.Time `json:"taken_at"`
	VariantsCaptured int       `json:"variants_captured"`
	DurationMS       int64     `json:"duration_ms"`
}

// StatusResponse reports a shop's ingestion state
type StatusResponse struct {
	Shop               string     `json:"shop"`
	SinceISO           string     `json:"since_iso,omitempty"`
	CursorUpdatedAt    *time.Time `json:"cursor_updated_at,omitempty"`
	OrderLines         int64      `json:"order_lines"`
	Snapshots          int64      `json:"snapshots"`
	LatestSnapshotDate *time.Time `json:"latest_snapshot_date,omitempty"`
}
