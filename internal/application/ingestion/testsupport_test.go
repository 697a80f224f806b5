package ingestion

import (
	"context"
	"sync"
	"time"

	"github.com/merchdash/backend/internal/domain/catalog"
	"github.com/merchdash/backend/internal/domain/ingest"
	"github.com/merchdash/backend/internal/domain/integration"
	"github.com/merchdash/backend/internal/domain/inventory"
	"github.com/merchdash/backend/internal/domain/sales"
	"github.com/merchdash/backend/internal/domain/shared"
)

// fakePlatform serves scripted pages and records the requests it saw
type fakePlatform struct {
	orderPages     []*integration.OrderPage
	orderPageErrs  []error
	linePages      map[string][]*integration.LineItemPage
	stockPages     []*integration.VariantStockPage
	stockPageErrs  []error
	orderRequests  []integration.OrderPullRequest
	lineRequests   []integration.OrderLinePullRequest
	stockCursors   []string
	orderPageIndex int
	stockPageIndex int
	lineIndex      map[string]int
}

func newFakePlatform() *fakePlatform {
	return &fakePlatform{
		linePages: make(map[string][]*integration.LineItemPage),
		lineIndex: make(map[string]int),
	}
}

func (f *fakePlatform) PullPaidOrders(_ context.Context, req *integration.OrderPullRequest) (*integration.OrderPage, error) {
	f.orderRequests = append(f.orderRequests, *req)
	i := f.orderPageIndex
	f.orderPageIndex++
	if i < len(f.orderPageErrs) && f.orderPageErrs[i] != nil {
		return nil, f.orderPageErrs[i]
	}
	if i >= len(f.orderPages) {
		return &integration.OrderPage{}, nil
	}
	return f.orderPages[i], nil
}

func (f *fakePlatform) PullOrderLines(_ context.Context, req *integration.OrderLinePullRequest) (*integration.LineItemPage, error) {
	f.lineRequests = append(f.lineRequests, *req)
	pages := f.linePages[req.OrderID]
	i := f.lineIndex[req.OrderID]
	f.lineIndex[req.OrderID]++
	if i >= len(pages) {
		return &integration.LineItemPage{}, nil
	}
	return pages[i], nil
}

func (f *fakePlatform) SoldUnitsSince(context.Context, string, time.Time) (map[string]int, error) {
	return nil, nil
}

func (f *fakePlatform) ListCollections(context.Context, string, string) (*integration.CollectionPage, error) {
	return &integration.CollectionPage{}, nil
}

func (f *fakePlatform) CollectionProducts(context.Context, *integration.CollectionProductsRequest) (*integration.CollectionProductPage, error) {
	return &integration.CollectionProductPage{}, nil
}

func (f *fakePlatform) ReorderCollection(context.Context, *integration.ReorderRequest) (string, error) {
	return "", nil
}

func (f *fakePlatform) JobCompleted(context.Context, string, string) (bool, error) {
	return true, nil
}

func (f *fakePlatform) VariantsWithInventory(_ context.Context, _ string, cursor string) (*integration.VariantStockPage, error) {
	f.stockCursors = append(f.stockCursors, cursor)
	i := f.stockPageIndex
	f.stockPageIndex++
	if i < len(f.stockPageErrs) && f.stockPageErrs[i] != nil {
		return nil, f.stockPageErrs[i]
	}
	if i >= len(f.stockPages) {
		return &integration.VariantStockPage{}, nil
	}
	return f.stockPages[i], nil
}

func (f *fakePlatform) VariantAvailability(context.Context, string, []string) (map[string]int, error) {
	return nil, nil
}

var _ integration.CommercePlatform = (*fakePlatform)(nil)

// memProducts is an in-memory catalog.ProductRepository
type memProducts struct {
	mu    sync.Mutex
	items map[string]*catalog.Product
}

func newMemProducts() *memProducts {
	return &memProducts{items: make(map[string]*catalog.Product)}
}

func (m *memProducts) Upsert(_ context.Context, product *catalog.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *product
	m.items[product.ID] = &copied
	return nil
}

func (m *memProducts) FindByID(_ context.Context, _ string, id string) (*catalog.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	product, ok := m.items[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return product, nil
}

func (m *memProducts) Exists(_ context.Context, _ string, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.items[id]
	return ok, nil
}

// memVariants is an in-memory catalog.VariantRepository
type memVariants struct {
	mu    sync.Mutex
	items map[string]*catalog.Variant
}

func newMemVariants() *memVariants {
	return &memVariants{items: make(map[string]*catalog.Variant)}
}

func (m *memVariants) Upsert(_ context.Context, variant *catalog.Variant) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *variant
	m.items[variant.ID] = &copied
	return nil
}

func (m *memVariants) FindByID(_ context.Context, _ string, id string) (*catalog.Variant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	variant, ok := m.items[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return variant, nil
}

// memLines is an in-memory sales.OrderLineRepository
type memLines struct {
	mu      sync.Mutex
	items   map[string]*sales.OrderLine
	inserts int
	failOn  string
}

func newMemLines() *memLines {
	return &memLines{items: make(map[string]*sales.OrderLine)}
}

func (m *memLines) InsertIfAbsent(_ context.Context, line *sales.OrderLine) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failOn != "" && line.ID == m.failOn {
		return false, shared.NewDomainError("STORE_DOWN", "simulated store failure")
	}
	if _, ok := m.items[line.ID]; ok {
		return false, nil
	}
	copied := *line
	m.items[line.ID] = &copied
	m.inserts++
	return true, nil
}

func (m *memLines) FindByID(_ context.Context, _ string, id string) (*sales.OrderLine, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	line, ok := m.items[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return line, nil
}

func (m *memLines) CountByShop(_ context.Context, _ string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.items)), nil
}

// memCursors is an in-memory ingest.CursorRepository
type memCursors struct {
	mu    sync.Mutex
	items map[string]*ingest.Cursor
}

func newMemCursors() *memCursors {
	return &memCursors{items: make(map[string]*ingest.Cursor)}
}

func (m *memCursors) Find(_ context.Context, shop string) (*ingest.Cursor, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cursor, ok := m.items[shop]
	if !ok {
		return nil, nil
	}
	copied := *cursor
	return &copied, nil
}

func (m *memCursors) Upsert(_ context.Context, cursor *ingest.Cursor) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *cursor
	m.items[cursor.Shop] = &copied
	return nil
}

// memSnapshots is an in-memory inventory.SnapshotRepository
type memSnapshots struct {
	mu      sync.Mutex
	items   []*inventory.Snapshot
	batches []int
}

func newMemSnapshots() *memSnapshots {
	return &memSnapshots{}
}

func (m *memSnapshots) AppendBatch(_ context.Context, snapshots []*inventory.Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items = append(m.items, snapshots...)
	m.batches = append(m.batches, len(snapshots))
	return nil
}

func (m *memSnapshots) LatestDate(_ context.Context, shop string) (time.Time, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var latest time.Time
	for _, snapshot := range m.items {
		if snapshot.Shop == shop && snapshot.SnapshotDate.After(latest) {
			latest = snapshot.SnapshotDate
		}
	}
	return latest, nil
}

func (m *memSnapshots) CountByShop(_ context.Context, shop string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var count int64
	for _, snapshot := range m.items {
		if snapshot.Shop == shop {
			count++
		}
	}
	return count, nil
}

// fakeRunLock scripts lock acquisition and records lock traffic
type fakeRunLock struct {
	mu       sync.Mutex
	denied   bool
	err      error
	acquired []string
	released []string
}

func (l *fakeRunLock) Acquire(_ context.Context, key string, _ time.Duration) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.err != nil {
		return false, l.err
	}
	if l.denied {
		return false, nil
	}
	l.acquired = append(l.acquired, key)
	return true, nil
}

func (l *fakeRunLock) Release(_ context.Context, key string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.released = append(l.released, key)
	return nil
}

func (l *fakeRunLock) Close() error { return nil }

// capturingPublisher records published domain events
type capturingPublisher struct {
	mu     sync.Mutex
	events []shared.DomainEvent
}

func (p *capturingPublisher) Publish(_ context.Context, events ...shared.DomainEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, events...)
	return nil
}

func (p *capturingPublisher) byType(eventType string) []shared.DomainEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	var matched []shared.DomainEvent
	for _, event := range p.events {
		if event.EventType() == eventType {
			matched = append(matched, event)
		}
	}
	return matched
}
