package report

import (
	"time"

	"github.com/merchdash/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// DateRange is a [From, To] window inclusive of the end day. From and To
// are calendar days; EndExclusive() is what queries bound against.
type DateRange struct {
	From time.Time
	To   time.Time
}

// NewDateRange validates and normalizes a reporting window
func NewDateRange(from, to time.Time) (DateRange, error) {
	if from.IsZero() || to.IsZero() {
		return DateRange{}, shared.NewDomainError("INVALID_RANGE", "Both range dates are required")
	}
	from = truncateToDay(from)
	to = truncateToDay(to)
	if to.Before(from) {
		return DateRange{}, shared.NewDomainError("INVALID_RANGE", "Range end cannot precede range start")
	}
	return DateRange{From: from, To: to}, nil
}

// EndExclusive returns the first instant after the range
func (r DateRange) EndExclusive() time.Time {
	return r.To.AddDate(0, 0, 1)
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// DayBucket is one day of the overview time series
type DayBucket struct {
	Day   time.Time       `json:"day"`
	Units int64           `json:"units"`
	Net   decimal.Decimal `json:"net"`
}

// ProductRevenue is one row of the revenue top list. Title is empty when
// the product was never mirrored locally.
type ProductRevenue struct {
	Rank      int             `json:"rank"`
	ProductID string          `json:"product_id"`
	Title     string          `json:"title"`
	Units     int64           `json:"units"`
	Net       decimal.Decimal `json:"net"`
}

// Overview is the range rollup: daily buckets, range totals, and the
// revenue top list.
type Overview struct {
	From        time.Time        `json:"from"`
	To          time.Time        `json:"to"`
	Days        []DayBucket      `json:"days"`
	TotalUnits  int64            `json:"total_units"`
	TotalNet    decimal.Decimal  `json:"total_net"`
	TopProducts []ProductRevenue `json:"top_products"`
}

// CurveEntry is one bucket of a size or color distribution. Pct is the
// share of total units, rounded to one decimal.
type CurveEntry struct {
	Label string          `json:"label"`
	Units int64           `json:"units"`
	Pct   decimal.Decimal `json:"pct"`
}

// UnknownBucket labels curve rows whose variants carry no derived
// size/color attribute.
const UnknownBucket = "Unknown"

// VariantKPI carries the per-variant supply KPIs. WeeksOfSupply is nil
// when the weekly rate is zero, meaning supply lasts forever at the
// current pace.
type VariantKPI struct {
	VariantID      string           `json:"variant_id"`
	ProductID      string           `json:"product_id"`
	Title          string           `json:"title"`
	SKU            string           `json:"sku"`
	OnHand         int64            `json:"on_hand"`
	Units          int64            `json:"units"`
	WeeklyRate     decimal.Decimal  `json:"weekly_rate"`
	WeeksOfSupply  *decimal.Decimal `json:"weeks_of_supply"`
	SellThroughPct decimal.Decimal  `json:"sell_through_pct"`
}

// KPIOverview is the KPI rollup: the at-risk variant list plus range-wide
// totals.
type KPIOverview struct {
	WindowDays     int              `json:"window_days"`
	Weeks          decimal.Decimal  `json:"weeks"`
	AtRisk         []VariantKPI     `json:"at_risk"`
	TotalOnHand    int64            `json:"total_on_hand"`
	TotalUnits     int64            `json:"total_units"`
	AvgWeeklyRate  decimal.Decimal  `json:"avg_weekly_rate"`
	WeightedWOS    *decimal.Decimal `json:"weighted_wos"`
	SellThroughPct decimal.Decimal  `json:"sell_through_pct"`
}

// AgingBand is one bucket of the aging-stock rollup
type AgingBand struct {
	Label  string `json:"label"`
	OnHand int64  `json:"on_hand"`
}

// AgingBandLabels are the fixed product-age bands, in days since the
// product's platform creation date.
func AgingBandLabels() []string {
	return []string{"0-30", "31-60", "61-90", "90+"}
}

// AgingBandFor buckets a product age in days into its band label.
// Negative ages (unknown or future creation dates) land in the first band.
func AgingBandFor(ageDays int) string {
	switch {
	case ageDays <= 30:
		return "0-30"
	case ageDays <= 60:
		return "31-60"
	case ageDays <= 90:
		return "61-90"
	default:
		return "90+"
	}
}
