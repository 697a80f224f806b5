package report

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// VariantFact is the raw per-variant row the KPI computation starts from:
// latest on-hand joined with trailing units sold.
type VariantFact struct {
	VariantID string
	ProductID string
	Title     string
	SKU       string
	OnHand    int64
	Units     int64
}

// AgingFact is the raw per-variant row the aging rollup starts from:
// latest on-hand joined with the product creation date. CreatedAt is nil
// when the product mirror is missing or carries no creation date.
type AgingFact struct {
	VariantID string
	OnHand    int64
	CreatedAt *time.Time
}

// Repository defines the read-side rollup queries over the ingested
// facts. All queries are shop-scoped and free of side effects.
type Repository interface {
	// DailyBuckets sums units and net amount per calendar day in the range
	DailyBuckets(ctx context.Context, shop string, from, toExclusive time.Time) ([]DayBucket, error)

	// RangeTotals sums units and net amount over the whole range
	RangeTotals(ctx context.Context, shop string, from, toExclusive time.Time) (units int64, net decimal.Decimal, err error)

	// TopProductsByRevenue returns the highest-revenue products in the
	// range with their mirror titles joined in (missing titles are empty)
	TopProductsByRevenue(ctx context.Context, shop string, from, toExclusive time.Time, limit int) ([]ProductRevenue, error)

	// UnitsBySize sums units per variant size in the range; variants
	// without a derived size group under the empty label
	UnitsBySize(ctx context.Context, shop string, from, toExclusive time.Time) ([]CurveEntry, error)

	// UnitsByColor sums units per variant color in the range
	UnitsByColor(ctx context.Context, shop string, from, toExclusive time.Time) ([]CurveEntry, error)

	// VariantFacts joins the latest snapshot per variant with trailing
	// units sold in the window
	VariantFacts(ctx context.Context, shop string, from time.Time) ([]VariantFact, error)

	// AgingFacts joins the latest snapshot per variant with the product
	// creation date
	AgingFacts(ctx context.Context, shop string) ([]AgingFact, error)
}
