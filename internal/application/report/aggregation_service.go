package report

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/merchdash/backend/internal/domain/report"
	"github.com/merchdash/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Defaults applied when Options leaves a knob at its zero value
const (
	DefaultCacheTTL      = 5 * time.Minute
	DefaultKPIWindowDays = 28
	MinKPIWindowDays     = 14
	DefaultTopProducts   = 20
	DefaultAtRiskLimit   = 25
)

var (
	hundred = decimal.NewFromInt(100)
	one     = decimal.NewFromInt(1)
	seven   = decimal.NewFromInt(7)
)

// Options tunes the aggregation service. Zero values fall back to the
// package defaults.
type Options struct {
	CacheTTL      time.Duration
	KPIWindowDays int
	TopProducts   int
	AtRiskLimit   int
}

func (o *Options) normalize() {
	if o.CacheTTL <= 0 {
		o.CacheTTL = DefaultCacheTTL
	}
	if o.KPIWindowDays <= 0 {
		o.KPIWindowDays = DefaultKPIWindowDays
	}
	if o.TopProducts <= 0 {
		o.TopProducts = DefaultTopProducts
	}
	if o.AtRiskLimit <= 0 {
		o.AtRiskLimit = DefaultAtRiskLimit
	}
}

// AggregationService serves the dashboard rollups. Every read is
// shop-scoped, side-effect free, and cached until the next ingestion run
// for the shop invalidates it. Cache failures degrade to a recompute,
// never to a request failure.
type AggregationService struct {
	repo   report.Repository
	cache  report.RollupCache
	logger *zap.Logger
	opts   Options

	// now is swappable so window math is deterministic in tests
	now func() time.Time
}

// NewAggregationService creates an aggregation service
func NewAggregationService(repo report.Repository, opts Options, logger *zap.Logger) *AggregationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	opts.normalize()
	return &AggregationService{
		repo:   repo,
		logger: logger,
		opts:   opts,
		now:    time.Now,
	}
}

// SetCache attaches a rollup cache. Without one every read recomputes.
func (s *AggregationService) SetCache(cache report.RollupCache) {
	s.cache = cache
}

// Overview returns daily buckets, range totals and the revenue top list
// for a range
func (s *AggregationService) Overview(ctx context.Context, shop string, rng report.DateRange) (*report.Overview, error) {
	shopDomain, err := requireShop(shop)
	if err != nil {
		return nil, err
	}

	key := report.CacheKey(shopDomain, "overview", rng.From.Format("2006-01-02"), rng.To.Format("2006-01-02"))
	var cached report.Overview
	if s.cacheGet(ctx, key, &cached) {
		return &cached, nil
	}

	days, err := s.repo.DailyBuckets(ctx, shopDomain, rng.From, rng.EndExclusive())
	if err != nil {
		return nil, fmt.Errorf("daily buckets query failed: %w", err)
	}
	units, net, err := s.repo.RangeTotals(ctx, shopDomain, rng.From, rng.EndExclusive())
	if err != nil {
		return nil, fmt.Errorf("range totals query failed: %w", err)
	}
	top, err := s.repo.TopProductsByRevenue(ctx, shopDomain, rng.From, rng.EndExclusive(), s.opts.TopProducts)
	if err != nil {
		return nil, fmt.Errorf("top products query failed: %w", err)
	}

	overview := &report.Overview{
		From:        rng.From,
		To:          rng.To,
		Days:        days,
		TotalUnits:  units,
		TotalNet:    net,
		TopProducts: top,
	}
	s.cacheSet(ctx, key, overview)
	return overview, nil
}

// SizeCurve returns the units-by-size distribution for a range
func (s *AggregationService) SizeCurve(ctx context.Context, shop string, rng report.DateRange) (*CurveResponse, error) {
	return s.curve(ctx, shop, rng, "size_curve", s.repo.UnitsBySize)
}

// ColorCurve returns the units-by-color distribution for a range
func (s *AggregationService) ColorCurve(ctx context.Context, shop string, rng report.DateRange) (*CurveResponse, error) {
	return s.curve(ctx, shop, rng, "color_curve", s.repo.UnitsByColor)
}

type curveQuery func(ctx context.Context, shop string, from, toExclusive time.Time) ([]report.CurveEntry, error)

func (s *AggregationService) curve(ctx context.Context, shop string, rng report.DateRange, name string, query curveQuery) (*CurveResponse, error) {
	shopDomain, err := requireShop(shop)
	if err != nil {
		return nil, err
	}

	key := report.CacheKey(shopDomain, name, rng.From.Format("2006-01-02"), rng.To.Format("2006-01-02"))
	var cached CurveResponse
	if s.cacheGet(ctx, key, &cached) {
		return &cached, nil
	}

	raw, err := query(ctx, shopDomain, rng.From, rng.EndExclusive())
	if err != nil {
		return nil, fmt.Errorf("%s query failed: %w", name, err)
	}

	response := &CurveResponse{
		From:    rng.From,
		To:      rng.To,
		Entries: buildCurve(raw),
	}
	for _, entry := range response.Entries {
		response.Total += entry.Units
	}
	s.cacheSet(ctx, key, response)
	return response, nil
}

// buildCurve relabels the empty attribute bucket, merges label collisions
// and fills in each bucket's share of total units
func buildCurve(raw []report.CurveEntry) []report.CurveEntry {
	entries := make([]report.CurveEntry, 0, len(raw))
	index := make(map[string]int, len(raw))
	var total int64
	for _, entry := range raw {
		label := entry.Label
		if strings.TrimSpace(label) == "" {
			label = report.UnknownBucket
		}
		total += entry.Units
		if at, ok := index[label]; ok {
			entries[at].Units += entry.Units
			continue
		}
		index[label] = len(entries)
		entries = append(entries, report.CurveEntry{Label: label, Units: entry.Units})
	}
	if total == 0 {
		return entries
	}
	for i := range entries {
		entries[i].Pct = decimal.NewFromInt(entries[i].Units).Mul(hundred).
			Div(decimal.NewFromInt(total)).Round(1)
	}
	return entries
}

// KPIs returns the supply KPI rollup over a trailing day window. Windows
// shorter than two weeks are widened to keep the weekly rate meaningful.
func (s *AggregationService) KPIs(ctx context.Context, shop string, windowDays int) (*report.KPIOverview, error) {
	shopDomain, err := requireShop(shop)
	if err != nil {
		return nil, err
	}
	if windowDays <= 0 {
		windowDays = s.opts.KPIWindowDays
	}
	if windowDays < MinKPIWindowDays {
		windowDays = MinKPIWindowDays
	}

	key := report.CacheKey(shopDomain, "kpis", strconv.Itoa(windowDays))
	var cached report.KPIOverview
	if s.cacheGet(ctx, key, &cached) {
		return &cached, nil
	}

	from := s.now().AddDate(0, 0, -windowDays)
	facts, err := s.repo.VariantFacts(ctx, shopDomain, from)
	if err != nil {
		return nil, fmt.Errorf("variant facts query failed: %w", err)
	}

	weeks := decimal.NewFromInt(int64(windowDays)).Div(seven)

	var totalOnHand, totalUnits int64
	weeklySum := decimal.Zero
	var atRisk []report.VariantKPI
	for _, fact := range facts {
		weekly := decimal.NewFromInt(fact.Units).Div(weeks)
		kpi := report.VariantKPI{
			VariantID:  fact.VariantID,
			ProductID:  fact.ProductID,
			Title:      fact.Title,
			SKU:        fact.SKU,
			OnHand:     fact.OnHand,
			Units:      fact.Units,
			WeeklyRate: weekly.Round(2),
		}
		if weekly.IsPositive() {
			wos := decimal.NewFromInt(fact.OnHand).Div(weekly).Round(1)
			kpi.WeeksOfSupply = &wos
		}
		if denom := fact.Units + fact.OnHand; denom > 0 {
			kpi.SellThroughPct = decimal.NewFromInt(fact.Units).Mul(hundred).
				Div(decimal.NewFromInt(denom)).Round(1)
		}

		totalOnHand += fact.OnHand
		totalUnits += fact.Units
		weeklySum = weeklySum.Add(weekly)

		if fact.OnHand > 0 && weekly.LessThan(one) {
			atRisk = append(atRisk, kpi)
		}
	}

	sortAtRisk(atRisk)
	if len(atRisk) > s.opts.AtRiskLimit {
		atRisk = atRisk[:s.opts.AtRiskLimit]
	}

	overview := &report.KPIOverview{
		WindowDays:  windowDays,
		Weeks:       weeks.Round(2),
		AtRisk:      atRisk,
		TotalOnHand: totalOnHand,
		TotalUnits:  totalUnits,
	}
	if len(facts) > 0 {
		overview.AvgWeeklyRate = weeklySum.Div(decimal.NewFromInt(int64(len(facts)))).Round(2)
	}
	if weeklySum.IsPositive() {
		weighted := decimal.NewFromInt(totalOnHand).Div(weeklySum).Round(1)
		overview.WeightedWOS = &weighted
	}
	if denom := totalUnits + totalOnHand; denom > 0 {
		overview.SellThroughPct = decimal.NewFromInt(totalUnits).Mul(hundred).
			Div(decimal.NewFromInt(denom)).Round(1)
	}

	s.cacheSet(ctx, key, overview)
	return overview, nil
}

// sortAtRisk orders the at-risk list worst first: infinite weeks of
// supply, then longer supply, then larger stock positions
func sortAtRisk(kpis []report.VariantKPI) {
	sort.SliceStable(kpis, func(i, j int) bool {
		a, b := kpis[i], kpis[j]
		switch {
		case a.WeeksOfSupply == nil && b.WeeksOfSupply != nil:
			return true
		case a.WeeksOfSupply != nil && b.WeeksOfSupply == nil:
			return false
		case a.WeeksOfSupply != nil && b.WeeksOfSupply != nil &&
			!a.WeeksOfSupply.Equal(*b.WeeksOfSupply):
			return a.WeeksOfSupply.GreaterThan(*b.WeeksOfSupply)
		}
		return a.OnHand > b.OnHand
	})
}

// AgingStock buckets the latest on-hand per variant by product age
func (s *AggregationService) AgingStock(ctx context.Context, shop string) (*AgingResponse, error) {
	shopDomain, err := requireShop(shop)
	if err != nil {
		return nil, err
	}

	key := report.CacheKey(shopDomain, "aging_stock")
	var cached AgingResponse
	if s.cacheGet(ctx, key, &cached) {
		return &cached, nil
	}

	facts, err := s.repo.AgingFacts(ctx, shopDomain)
	if err != nil {
		return nil, fmt.Errorf("aging facts query failed: %w", err)
	}

	now := s.now()
	byBand := make(map[string]int64, 4)
	for _, fact := range facts {
		ageDays := 0
		if fact.CreatedAt != nil {
			ageDays = int(now.Sub(*fact.CreatedAt).Hours() / 24)
		}
		byBand[report.AgingBandFor(ageDays)] += fact.OnHand
	}

	response := &AgingResponse{Shop: shopDomain}
	for _, label := range report.AgingBandLabels() {
		response.Bands = append(response.Bands, report.AgingBand{Label: label, OnHand: byBand[label]})
	}
	s.cacheSet(ctx, key, response)
	return response, nil
}

// InvalidateShop drops every cached rollup for a shop
func (s *AggregationService) InvalidateShop(ctx context.Context, shop string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateShop(ctx, shop); err != nil {
		s.logger.Warn("Failed to invalidate rollup cache",
			zap.String("shop", shop), zap.Error(err))
	}
}

func (s *AggregationService) cacheGet(ctx context.Context, key string, out any) bool {
	if s.cache == nil {
		return false
	}
	payload, err := s.cache.Get(ctx, key)
	if err != nil {
		s.logger.Warn("Rollup cache read failed", zap.String("key", key), zap.Error(err))
		return false
	}
	if payload == nil {
		return false
	}
	if err := json.Unmarshal(payload, out); err != nil {
		s.logger.Warn("Discarding undecodable rollup cache entry", zap.String("key", key), zap.Error(err))
		return false
	}
	return true
}

func (s *AggregationService) cacheSet(ctx context.Context, key string, value any) {
	if s.cache == nil {
		return
	}
	payload, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, payload, s.opts.CacheTTL); err != nil {
		s.logger.Warn("Rollup cache write failed", zap.String("key", key), zap.Error(err))
	}
}

func requireShop(shop string) (string, error) {
	shopDomain := strings.TrimSpace(shop)
	if shopDomain == "" {
		return "", shared.NewDomainError("INVALID_SHOP", "Shop domain is required")
	}
	return shopDomain, nil
}
