package ingest

import (
	"github.com/merchdash/backend/internal/domain/shared"
)

// Aggregate type constant
const AggregateTypeIngestRun = "IngestRun"

// Event type constants
const (
	EventTypeOrdersIngested = "OrdersIngested"
	EventTypeSnapshotTaken  = "SnapshotTaken"
)

// OrdersIngestedEvent is published after a fully successful orders run
type OrdersIngestedEvent struct {
	shared.BaseDomainEvent
	SinceISO        string `json:"since_iso"`
	OrdersProcessed int    `json:"orders_processed"`
	LinesProcessed  int    `json:"lines_processed"`
}

// NewOrdersIngestedEvent creates a new OrdersIngestedEvent
func NewOrdersIngestedEvent(shop, sinceISO string, orders, lines int) *OrdersIngestedEvent {
	return &OrdersIngestedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrdersIngested, AggregateTypeIngestRun, shop, shop),
		SinceISO:        sinceISO,
		OrdersProcessed: orders,
		LinesProcessed:  lines,
	}
}

// SnapshotTakenEvent is published after a successful inventory snapshot run
type SnapshotTakenEvent struct {
	shared.BaseDomainEvent
	VariantsCaptured int `json:"variants_captured"`
}

// NewSnapshotTakenEvent creates a new SnapshotTakenEvent
func NewSnapshotTakenEvent(shop string, variants int) *SnapshotTakenEvent {
	return &SnapshotTakenEvent{
		BaseDomainEvent:  shared.NewBaseDomainEvent(EventTypeSnapshotTaken, AggregateTypeIngestRun, shop, shop),
		VariantsCaptured: variants,
	}
}
