package persistence

import (
	"context"
	"fmt"
	"time"

	"github.com/merchdash/backend/internal/domain/report"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormReportRepository implements report.Repository using GORM. Every query
// rolls up the ingested facts for one shop; nothing here writes.
type GormReportRepository struct {
	db *gorm.DB
}

// NewGormReportRepository creates a new GormReportRepository
func NewGormReportRepository(db *gorm.DB) *GormReportRepository {
	return &GormReportRepository{db: db}
}

// DailyBuckets sums units and net amount per calendar day in the range
func (r *GormReportRepository) DailyBuckets(ctx context.Context, shop string, from, toExclusive time.Time) ([]report.DayBucket, error) {
	type dayResult struct {
		Day   string
		Units int64
		Net   decimal.Decimal
	}

	var results []dayResult
	err := r.db.WithContext(ctx).Table("order_lines").
		Select(`
			DATE(created_at) as day,
			COALESCE(SUM(qty), 0) as units,
			COALESCE(SUM(net_amount), 0) as net
		`).
		Where("shop = ?", shop).
		Where("created_at >= ? AND created_at < ?", from, toExclusive).
		Group("DATE(created_at)").
		Order("day ASC").
		Scan(&results).Error
	if err != nil {
		return nil, err
	}

	buckets := make([]report.DayBucket, len(results))
	for i, row := range results {
		day, err := parseDay(row.Day)
		if err != nil {
			return nil, err
		}
		buckets[i] = report.DayBucket{
			Day:   day,
			Units: row.Units,
			Net:   row.Net,
		}
	}
	return buckets, nil
}

// parseDay parses a DATE() expression result, which arrives as text whose
// exact shape depends on the driver
func parseDay(s string) (time.Time, error) {
	for _, layout := range []string{"2006-01-02", "2006-01-02T15:04:05Z07:00", "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized day format: %q", s)
}

// RangeTotals sums units and net amount over the whole range
func (r *GormReportRepository) RangeTotals(ctx context.Context, shop string, from, toExclusive time.Time) (int64, decimal.Decimal, error) {
	type totalResult struct {
		Units int64
		Net   decimal.Decimal
	}

	var result totalResult
	err := r.db.WithContext(ctx).Table("order_lines").
		Select(`
			COALESCE(SUM(qty), 0) as units,
			COALESCE(SUM(net_amount), 0) as net
		`).
		Where("shop = ?", shop).
		Where("created_at >= ? AND created_at < ?", from, toExclusive).
		Scan(&result).Error
	if err != nil {
		return 0, decimal.Zero, err
	}
	return result.Units, result.Net, nil
}

// TopProductsByRevenue returns the highest-revenue products in the range
// with their mirror titles joined in. Lines whose product reference was
// deleted on the platform are excluded; a missing mirror title is empty.
func (r *GormReportRepository) TopProductsByRevenue(ctx context.Context, shop string, from, toExclusive time.Time, limit int) ([]report.ProductRevenue, error) {
	type revenueResult struct {
		ProductID string
		Title     string
		Units     int64
		Net       decimal.Decimal
	}

	if limit <= 0 {
		limit = 20
	}

	var results []revenueResult
	err := r.db.WithContext(ctx).Table("order_lines ol").
		Select(`
			ol.product_id,
			COALESCE(p.title, '') as title,
			COALESCE(SUM(ol.qty), 0) as units,
			COALESCE(SUM(ol.net_amount), 0) as net
		`).
		Joins("LEFT JOIN products p ON p.id = ol.product_id").
		Where("ol.shop = ?", shop).
		Where("ol.created_at >= ? AND ol.created_at < ?", from, toExclusive).
		Where("ol.product_id IS NOT NULL").
		Group("ol.product_id, p.title").
		Order("net DESC").
		Limit(limit).
		Scan(&results).Error
	if err != nil {
		return nil, err
	}

	top := make([]report.ProductRevenue, len(results))
	for i, row := range results {
		top[i] = report.ProductRevenue{
			Rank:      i + 1,
			ProductID: row.ProductID,
			Title:     row.Title,
			Units:     row.Units,
			Net:       row.Net,
		}
	}
	return top, nil
}

// UnitsBySize sums units per variant size in the range; variants without a
// derived size group under the empty label
func (r *GormReportRepository) UnitsBySize(ctx context.Context, shop string, from, toExclusive time.Time) ([]report.CurveEntry, error) {
	return r.unitsByAttribute(ctx, shop, from, toExclusive, "size")
}

// UnitsByColor sums units per variant color in the range
func (r *GormReportRepository) UnitsByColor(ctx context.Context, shop string, from, toExclusive time.Time) ([]report.CurveEntry, error) {
	return r.unitsByAttribute(ctx, shop, from, toExclusive, "color")
}

// unitsByAttribute rolls sold units up by one derived variant attribute.
// The attribute name is chosen from a fixed set by the callers above and
// never comes from user input.
func (r *GormReportRepository) unitsByAttribute(ctx context.Context, shop string, from, toExclusive time.Time, attribute string) ([]report.CurveEntry, error) {
	type curveResult struct {
		Label string
		Units int64
	}

	var results []curveResult
	err := r.db.WithContext(ctx).Table("order_lines ol").
		Select(`
			COALESCE(v.`+attribute+`, '') as label,
			COALESCE(SUM(ol.qty), 0) as units
		`).
		Joins("LEFT JOIN variants v ON v.id = ol.variant_id").
		Where("ol.shop = ?", shop).
		Where("ol.created_at >= ? AND ol.created_at < ?", from, toExclusive).
		Group("COALESCE(v." + attribute + ", '')").
		Order("units DESC").
		Scan(&results).Error
	if err != nil {
		return nil, err
	}

	entries := make([]report.CurveEntry, len(results))
	for i, row := range results {
		entries[i] = report.CurveEntry{
			Label: row.Label,
			Units: row.Units,
		}
	}
	return entries, nil
}

// VariantFacts joins the latest snapshot per variant with trailing units
// sold since from
func (r *GormReportRepository) VariantFacts(ctx context.Context, shop string, from time.Time) ([]report.VariantFact, error) {
	type factResult struct {
		VariantID string
		ProductID string
		Title     string
		SKU       string
		OnHand    int64
		Units     int64
	}

	var results []factResult
	err := r.db.WithContext(ctx).Table("inventory_snapshots s").
		Select(`
			s.variant_id,
			s.product_id,
			COALESCE(v.title, '') as title,
			COALESCE(v.sku, '') as sku,
			s.on_hand,
			COALESCE(sold.units, 0) as units
		`).
		Joins(`JOIN (
			SELECT variant_id, MAX(snapshot_date) AS max_date
			FROM inventory_snapshots
			WHERE shop = ?
			GROUP BY variant_id
		) latest ON latest.variant_id = s.variant_id AND latest.max_date = s.snapshot_date`, shop).
		Joins("LEFT JOIN variants v ON v.id = s.variant_id").
		Joins(`LEFT JOIN (
			SELECT variant_id, SUM(qty) AS units
			FROM order_lines
			WHERE shop = ? AND created_at >= ? AND variant_id IS NOT NULL
			GROUP BY variant_id
		) sold ON sold.variant_id = s.variant_id`, shop, from).
		Where("s.shop = ?", shop).
		Order("s.variant_id ASC").
		Scan(&results).Error
	if err != nil {
		return nil, err
	}

	facts := make([]report.VariantFact, len(results))
	for i, row := range results {
		facts[i] = report.VariantFact{
			VariantID: row.VariantID,
			ProductID: row.ProductID,
			Title:     row.Title,
			SKU:       row.SKU,
			OnHand:    row.OnHand,
			Units:     row.Units,
		}
	}
	return facts, nil
}

// AgingFacts joins the latest snapshot per variant with the product
// creation date
func (r *GormReportRepository) AgingFacts(ctx context.Context, shop string) ([]report.AgingFact, error) {
	type agingResult struct {
		VariantID string
		OnHand    int64
		CreatedAt *time.Time
	}

	var results []agingResult
	err := r.db.WithContext(ctx).Table("inventory_snapshots s").
		Select(`
			s.variant_id,
			s.on_hand,
			p.created_at as created_at
		`).
		Joins(`JOIN (
			SELECT variant_id, MAX(snapshot_date) AS max_date
			FROM inventory_snapshots
			WHERE shop = ?
			GROUP BY variant_id
		) latest ON latest.variant_id = s.variant_id AND latest.max_date = s.snapshot_date`, shop).
		Joins("LEFT JOIN products p ON p.id = s.product_id").
		Where("s.shop = ?", shop).
		Order("s.variant_id ASC").
		Scan(&results).Error
	if err != nil {
		return nil, err
	}

	facts := make([]report.AgingFact, len(results))
	for i, row := range results {
		facts[i] = report.AgingFact{
			VariantID: row.VariantID,
			OnHand:    row.OnHand,
			CreatedAt: row.CreatedAt,
		}
	}
	return facts, nil
}

// Ensure GormReportRepository implements report.Repository
var _ report.Repository = (*GormReportRepository)(nil)
