package report

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/merchdash/backend/internal/domain/report"
)

// fakeRepo serves canned rollup rows and counts queries so tests can tell
// cache hits from recomputes.
type fakeRepo struct {
	days   []report.DayBucket
	units  int64
	net    decimal.Decimal
	top    []report.ProductRevenue
	sizes  []report.CurveEntry
	colors []report.CurveEntry
	facts  []report.VariantFact
	aging  []report.AgingFact

	err     error
	queries int

	factsFrom time.Time
}

func (r *fakeRepo) DailyBuckets(_ context.Context, _ string, _, _ time.Time) ([]report.DayBucket, error) {
	r.queries++
	return r.days, r.err
}

func (r *fakeRepo) RangeTotals(_ context.Context, _ string, _, _ time.Time) (int64, decimal.Decimal, error) {
	r.queries++
	return r.units, r.net, r.err
}

func (r *fakeRepo) TopProductsByRevenue(_ context.Context, _ string, _, _ time.Time, _ int) ([]report.ProductRevenue, error) {
	r.queries++
	return r.top, r.err
}

func (r *fakeRepo) UnitsBySize(_ context.Context, _ string, _, _ time.Time) ([]report.CurveEntry, error) {
	r.queries++
	return r.sizes, r.err
}

func (r *fakeRepo) UnitsByColor(_ context.Context, _ string, _, _ time.Time) ([]report.CurveEntry, error) {
	r.queries++
	return r.colors, r.err
}

func (r *fakeRepo) VariantFacts(_ context.Context, _ string, from time.Time) ([]report.VariantFact, error) {
	r.queries++
	r.factsFrom = from
	return r.facts, r.err
}

func (r *fakeRepo) AgingFacts(_ context.Context, _ string) ([]report.AgingFact, error) {
	r.queries++
	return r.aging, r.err
}

// memCache is an in-process rollup cache with scriptable failures
type memCache struct {
	mu      sync.Mutex
	entries map[string][]byte
	getErr  error
	setErr  error
}

func newMemCache() *memCache {
	return &memCache{entries: make(map[string][]byte)}
}

func (c *memCache) Get(_ context.Context, key string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.getErr != nil {
		return nil, c.getErr
	}
	payload, ok := c.entries[key]
	if !ok {
		return nil, nil
	}
	return payload, nil
}

func (c *memCache) Set(_ context.Context, key string, payload []byte, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.setErr != nil {
		return c.setErr
	}
	c.entries[key] = payload
	return nil
}

func (c *memCache) InvalidateShop(_ context.Context, shop string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	prefix := report.ShopKeyPrefix(shop)
	for key := range c.entries {
		if strings.HasPrefix(key, prefix) {
			delete(c.entries, key)
		}
	}
	return nil
}

func (c *memCache) Close() error { return nil }

func (c *memCache) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func mustRange(from, to string) report.DateRange {
	f, err := time.Parse(rangeLayout, from)
	if err != nil {
		panic(err)
	}
	t, err := time.Parse(rangeLayout, to)
	if err != nil {
		panic(err)
	}
	rng, err := report.NewDateRange(f, t)
	if err != nil {
		panic(err)
	}
	return rng
}
