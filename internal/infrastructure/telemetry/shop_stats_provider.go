// Package telemetry provides OpenTelemetry integration for metrics collection.
package telemetry

import (
	"context"
	"time"

	"gorm.io/gorm"
)

// GormShopProvider implements ShopProvider using GORM. It queries the
// shops table directly so the collector sees new shops without a
// restart.
type GormShopProvider struct {
	db *gorm.DB
}

// NewGormShopProvider creates a new GormShopProvider.
func NewGormShopProvider(db *gorm.DB) *GormShopProvider {
	return &GormShopProvider{db: db}
}

// ActiveShopDomains returns the domains of all active shops.
func (p *GormShopProvider) ActiveShopDomains(ctx context.Context) ([]string, error) {
	var domains []string
	err := p.db.WithContext(ctx).
		Table("shops").
		Where("status = ?", "ACTIVE").
		Order("domain").
		Pluck("domain", &domains).Error

	return domains, err
}

// GormIngestionStatsProvider implements IngestionStatsProvider using
// GORM, aggregating over the inventory_snapshots and ingest_cursors
// tables.
type GormIngestionStatsProvider struct {
	db *gorm.DB
}

// NewGormIngestionStatsProvider creates a new GormIngestionStatsProvider.
func NewGormIngestionStatsProvider(db *gorm.DB) *GormIngestionStatsProvider {
	return &GormIngestionStatsProvider{db: db}
}

// UnitsOnHand returns the total on-hand units in the shop's latest
// snapshot. Snapshot runs write every variant at a single date, so
// the rows at MAX(snapshot_date) form a complete set.
func (p *GormIngestionStatsProvider) UnitsOnHand(ctx context.Context, shop string) (int64, error) {
	latest := p.db.Table("inventory_snapshots").
		Select("MAX(snapshot_date)").
		Where("shop = ?", shop)

	var units int64
	err := p.db.WithContext(ctx).
		Table("inventory_snapshots").
		Where("shop = ? AND snapshot_date = (?)", shop, latest).
		Select("COALESCE(SUM(on_hand), 0)").
		Scan(&units).Error

	return units, err
}

// Watermark returns the shop's ingestion cursor date, or the zero
// time when the shop has never been ingested.
func (p *GormIngestionStatsProvider) Watermark(ctx context.Context, shop string) (time.Time, error) {
	var dates []time.Time
	err := p.db.WithContext(ctx).
		Table("ingest_cursors").
		Where("shop = ?", shop).
		Limit(1).
		Pluck("since_date", &dates).Error
	if err != nil {
		return time.Time{}, err
	}
	if len(dates) == 0 {
		return time.Time{}, nil
	}

	return dates[0], nil
}
