// Package telemetry provides OpenTelemetry integration for metrics collection.
package telemetry

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// BusinessMetrics tracks ingestion and ranking activity across shops:
// run counts and durations, ingested volumes, and per-shop stock and
// freshness gauges.
type BusinessMetrics struct {
	meter  metric.Meter
	logger *zap.Logger

	// Counter metrics (monotonically increasing)
	ingestionRunsTotal *Counter
	ordersTotal        *Counter
	orderLinesTotal    *Counter
	snapshotRowsTotal  *Counter
	rankingRunsTotal   *Counter
	rankingMovesTotal  *Counter

	// Histogram metrics
	ingestionRunDuration *Histogram
	rankingRunDuration   *Histogram

	// Gauge metrics (point-in-time values)
	unitsOnHand      *Gauge
	watermarkAgeDays *FloatGauge

	// Periodic collector
	stopChan    chan struct{}
	stopOnce    sync.Once
	collectOnce sync.Once

	statsProvider IngestionStatsProvider
}

// IngestionStatsProvider supplies per-shop stock and cursor state for
// periodic gauge collection. The interface keeps the telemetry layer
// free of a direct dependency on the ingestion domain.
type IngestionStatsProvider interface {
	// UnitsOnHand returns the total on-hand units in the shop's most
	// recent inventory snapshot.
	UnitsOnHand(ctx context.Context, shop string) (int64, error)

	// Watermark returns the shop's ingestion cursor date. The zero
	// time means the shop has never been ingested.
	Watermark(ctx context.Context, shop string) (time.Time, error)
}

// ShopProvider supplies the shop domains to collect gauges for.
type ShopProvider interface {
	ActiveShopDomains(ctx context.Context) ([]string, error)
}

// BusinessMetricsConfig holds configuration for business metrics.
type BusinessMetricsConfig struct {
	Meter           metric.Meter
	Logger          *zap.Logger
	CollectInterval time.Duration // Default: 5 minutes
	StatsProvider   IngestionStatsProvider
}

// NewBusinessMetrics creates a new BusinessMetrics instance.
func NewBusinessMetrics(cfg BusinessMetricsConfig) (*BusinessMetrics, error) {
	if cfg.Meter == nil {
		return nil, ErrMeterNil
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	bm := &BusinessMetrics{
		meter:         cfg.Meter,
		logger:        logger,
		stopChan:      make(chan struct{}),
		statsProvider: cfg.StatsProvider,
	}

	var err error

	// Ingestion metrics
	bm.ingestionRunsTotal, err = NewCounter(
		cfg.Meter,
		"merchdash_ingestion_runs_total",
		"Total number of ingestion runs by type and outcome",
		"{runs}",
	)
	if err != nil {
		return nil, err
	}

	bm.ordersTotal, err = NewCounter(
		cfg.Meter,
		"merchdash_ingestion_orders_total",
		"Total number of orders ingested",
		"{orders}",
	)
	if err != nil {
		return nil, err
	}

	bm.orderLinesTotal, err = NewCounter(
		cfg.Meter,
		"merchdash_ingestion_order_lines_total",
		"Total number of order lines ingested",
		"{lines}",
	)
	if err != nil {
		return nil, err
	}

	bm.snapshotRowsTotal, err = NewCounter(
		cfg.Meter,
		"merchdash_ingestion_snapshot_rows_total",
		"Total number of inventory snapshot rows written",
		"{rows}",
	)
	if err != nil {
		return nil, err
	}

	bm.ingestionRunDuration, err = NewHistogram(cfg.Meter, HistogramOpts{
		Name:        "merchdash_ingestion_run_duration_seconds",
		Description: "Ingestion run duration distribution in seconds",
		Unit:        "s",
		Boundaries:  JobDurationBuckets,
	})
	if err != nil {
		return nil, err
	}

	// Ranking metrics
	bm.rankingRunsTotal, err = NewCounter(
		cfg.Meter,
		"merchdash_ranking_runs_total",
		"Total number of ranking runs by outcome",
		"{runs}",
	)
	if err != nil {
		return nil, err
	}

	bm.rankingMovesTotal, err = NewCounter(
		cfg.Meter,
		"merchdash_ranking_moves_total",
		"Total number of collection moves applied",
		"{moves}",
	)
	if err != nil {
		return nil, err
	}

	bm.rankingRunDuration, err = NewHistogram(cfg.Meter, HistogramOpts{
		Name:        "merchdash_ranking_run_duration_seconds",
		Description: "Ranking run duration distribution in seconds",
		Unit:        "s",
		Boundaries:  JobDurationBuckets,
	})
	if err != nil {
		return nil, err
	}

	// Shop state gauges
	bm.unitsOnHand, err = NewGauge(
		cfg.Meter,
		"merchdash_shop_units_on_hand",
		"Total on-hand units in the shop's latest inventory snapshot",
		"{units}",
	)
	if err != nil {
		return nil, err
	}

	bm.watermarkAgeDays, err = NewFloatGauge(
		cfg.Meter,
		"merchdash_ingest_watermark_age_days",
		"Age of the shop's ingestion cursor in days",
		"d",
	)
	if err != nil {
		return nil, err
	}

	return bm, nil
}

// =============================================================================
// Ingestion Metrics
// =============================================================================

// RunType labels the kind of ingestion run.
type RunType string

const (
	RunTypeOrders   RunType = "orders"
	RunTypeSnapshot RunType = "snapshot"
)

// RunOutcome labels how a run finished.
type RunOutcome string

const (
	RunOutcomeSucceeded RunOutcome = "succeeded"
	RunOutcomeFailed    RunOutcome = "failed"
)

// OutcomeForError maps a run error to its outcome label.
func OutcomeForError(err error) RunOutcome {
	if err != nil {
		return RunOutcomeFailed
	}
	return RunOutcomeSucceeded
}

// RecordIngestionRun records a completed ingestion run: the run
// counter with its outcome, and the duration histogram.
func (bm *BusinessMetrics) RecordIngestionRun(ctx context.Context, shop string, runType RunType, outcome RunOutcome, duration time.Duration) {
	bm.ingestionRunsTotal.Inc(ctx,
		AttrShop.String(shop),
		AttrRunType.String(string(runType)),
		AttrOutcome.String(string(outcome)),
	)
	bm.ingestionRunDuration.RecordDuration(ctx, duration,
		AttrShop.String(shop),
		AttrRunType.String(string(runType)),
	)
}

// RecordOrdersIngested records the volume pulled in an orders run.
func (bm *BusinessMetrics) RecordOrdersIngested(ctx context.Context, shop string, orders, lines int64) {
	bm.ordersTotal.Add(ctx, orders, AttrShop.String(shop))
	bm.orderLinesTotal.Add(ctx, lines, AttrShop.String(shop))
}

// RecordSnapshotRows records the number of rows written by a snapshot
// run.
func (bm *BusinessMetrics) RecordSnapshotRows(ctx context.Context, shop string, rows int64) {
	bm.snapshotRowsTotal.Add(ctx, rows, AttrShop.String(shop))
}

// =============================================================================
// Ranking Metrics
// =============================================================================

// RecordRankingRun records a completed ranking run for one collection.
func (bm *BusinessMetrics) RecordRankingRun(ctx context.Context, shop string, outcome RunOutcome, duration time.Duration) {
	bm.rankingRunsTotal.Inc(ctx,
		AttrShop.String(shop),
		AttrOutcome.String(string(outcome)),
	)
	bm.rankingRunDuration.RecordDuration(ctx, duration,
		AttrShop.String(shop),
	)
}

// RecordRankingMoves records the number of moves applied to a
// collection.
func (bm *BusinessMetrics) RecordRankingMoves(ctx context.Context, shop string, moves int64) {
	bm.rankingMovesTotal.Add(ctx, moves, AttrShop.String(shop))
}

// =============================================================================
// Shop State Gauges
// =============================================================================

// RecordUnitsOnHand records the shop's current total on-hand units.
// Updated by the periodic collector.
func (bm *BusinessMetrics) RecordUnitsOnHand(ctx context.Context, shop string, units int64) {
	bm.unitsOnHand.Record(ctx, units, AttrShop.String(shop))
}

// RecordWatermarkAge records how stale the shop's ingestion cursor
// is, in days. Updated by the periodic collector.
func (bm *BusinessMetrics) RecordWatermarkAge(ctx context.Context, shop string, days float64) {
	bm.watermarkAgeDays.Record(ctx, days, AttrShop.String(shop))
}

// =============================================================================
// Periodic Collection
// =============================================================================

// StartPeriodicCollection starts periodic collection of shop state
// gauges (default interval: 5 minutes). Non-blocking; use Stop to
// stop collection.
func (bm *BusinessMetrics) StartPeriodicCollection(ctx context.Context, shops ShopProvider, interval time.Duration) {
	bm.collectOnce.Do(func() {
		if interval <= 0 {
			interval = 5 * time.Minute
		}

		go bm.runPeriodicCollection(ctx, shops, interval)
	})
}

// runPeriodicCollection runs the periodic collection loop.
func (bm *BusinessMetrics) runPeriodicCollection(ctx context.Context, shops ShopProvider, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	// Collect immediately on start
	bm.collectShopGauges(ctx, shops)

	for {
		select {
		case <-bm.stopChan:
			bm.logger.Info("Stopping periodic business metrics collection")
			return
		case <-ctx.Done():
			bm.logger.Info("Context cancelled, stopping periodic business metrics collection")
			return
		case <-ticker.C:
			bm.collectShopGauges(ctx, shops)
		}
	}
}

// collectShopGauges collects state gauges for all active shops.
func (bm *BusinessMetrics) collectShopGauges(ctx context.Context, shops ShopProvider) {
	if bm.statsProvider == nil {
		bm.logger.Debug("No stats provider configured, skipping shop gauge collection")
		return
	}

	domains, err := shops.ActiveShopDomains(ctx)
	if err != nil {
		bm.logger.Error("Failed to list shops for metrics collection", zap.Error(err))
		return
	}

	for _, shop := range domains {
		bm.collectShopState(ctx, shop)
	}
}

// collectShopState collects gauges for a single shop. Failures are
// logged and skipped so one shop cannot block the rest.
func (bm *BusinessMetrics) collectShopState(ctx context.Context, shop string) {
	units, err := bm.statsProvider.UnitsOnHand(ctx, shop)
	if err != nil {
		bm.logger.Warn("Failed to get units on hand for shop",
			zap.String("shop", shop),
			zap.Error(err),
		)
	} else {
		bm.RecordUnitsOnHand(ctx, shop, units)
	}

	watermark, err := bm.statsProvider.Watermark(ctx, shop)
	if err != nil {
		bm.logger.Warn("Failed to get ingest watermark for shop",
			zap.String("shop", shop),
			zap.Error(err),
		)
	} else if !watermark.IsZero() {
		// Never-ingested shops have no watermark to age
		age := time.Since(watermark).Hours() / 24
		bm.RecordWatermarkAge(ctx, shop, age)
	}
}

// Stop stops the periodic collection.
func (bm *BusinessMetrics) Stop() {
	bm.stopOnce.Do(func() {
		close(bm.stopChan)
	})
}

// =============================================================================
// Error Types
// =============================================================================

// ErrMeterNil is returned when meter is nil.
var ErrMeterNil = &MetricsError{Op: "NewBusinessMetrics", Err: "meter cannot be nil"}

// MetricsError represents a metrics-related error.
type MetricsError struct {
	Op  string
	Err string
}

func (e *MetricsError) Error() string {
	return e.Op + ": " + e.Err
}
