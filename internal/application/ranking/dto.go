package ranking

// RunRequest describes one ranking run for a single collection.
// TopN nil falls back to the configured default; zero is honored and
// produces an empty apply.
type RunRequest struct {
	Shop         string   `json:"shop" binding:"required"`
	CollectionID string   `json:"collection_id" binding:"required"`
	TopN         *int     `json:"top_n" binding:"omitempty,min=0"`
	DryRun       bool     `json:"dry_run"`
	Rules        []string `json:"rules"`
}

// PreviewEntry is one row of a dry run preview
type PreviewEntry struct {
	Position        int    `json:"position"`
	ProductID       string `json:"product_id"`
	Title           string `json:"title"`
	InStock         bool   `json:"in_stock"`
	VariantsInStock int    `json:"variants_in_stock"`
	Sold90          int    `json:"sold_90d"`
}

// RunResult summarizes one ranking run
type RunResult struct {
	Shop         string         `json:"shop"`
	CollectionID string         `json:"collection_id"`
	Considered   int            `json:"considered"`
	Moved        int            `json:"moved"`
	DryRun       bool           `json:"dry_run"`
	Rules        []string       `json:"rules"`
	Preview      []PreviewEntry `json:"preview,omitempty"`
	DurationMS   int64          `json:"duration_ms"`
}

// RunAllRequest describes a batch run over many collections
type RunAllRequest struct {
	Shop   string `json:"shop" binding:"required"`
	Limit  int    `json:"limit" binding:"omitempty,min=1,max=500"`
	TopN   *int   `json:"top_n" binding:"omitempty,min=0"`
	DryRun bool   `json:"dry_run"`
}

// CollectionOutcome is the per-collection entry of a batch run.
// Exactly one of Moved, SkipReason, Error is meaningful.
type CollectionOutcome struct {
	CollectionID string `json:"collection_id"`
	Title        string `json:"title"`
	Considered   int    `json:"considered"`
	Moved        int    `json:"moved"`
	SkipReason   string `json:"skip_reason,omitempty"`
	Error        string `json:"error,omitempty"`
}

// RunAllResult summarizes a batch run
type RunAllResult struct {
	Shop       string              `json:"shop"`
	Processed  int                 `json:"processed"`
	Failed     int                 `json:"failed"`
	DryRun     bool                `json:"dry_run"`
	Results    []CollectionOutcome `json:"results"`
	DurationMS int64               `json:"duration_ms"`
}

// RulesRequest replaces the persisted rule sequence of a collection
type RulesRequest struct {
	Rules []string `json:"rules" binding:"required"`
}

// RulesResponse reports the stored and effective rule sequence of a
// collection
type RulesResponse struct {
	Shop         string   `json:"shop"`
	CollectionID string   `json:"collection_id"`
	Stored       []string `json:"stored"`
	Effective    []string `json:"effective"`
}

// CollectionListItem is one collection in a listing response
type CollectionListItem struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	Handle       string `json:"handle"`
	ProductCount int    `json:"product_count"`
}

// CollectionListResponse is one page of collections
type CollectionListResponse struct {
	Collections []CollectionListItem `json:"collections"`
	HasNextPage bool                 `json:"has_next_page"`
	EndCursor   string               `json:"end_cursor,omitempty"`
}
