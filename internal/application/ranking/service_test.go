package ranking

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/merchdash/backend/internal/domain/integration"
	"github.com/merchdash/backend/internal/domain/ranking"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testShop = "demo.myshopify.com"

// fakePlatform scripts collection membership, sales and reorder behavior
type fakePlatform struct {
	mu sync.Mutex

	collections     []integration.Collection
	collectionPages int

	productPages map[string][]*integration.CollectionProductPage
	productIndex map[string]int
	productErrs  map[string]error

	sold    map[string]int
	soldErr error

	reorderRequests []integration.ReorderRequest
	jobIDs          []string
	reorderErrs     []error
	reorderCalls    int

	pollsUntilDone map[string]int
	jobPolls       map[string]int
	jobErr         error
}

func newFakePlatform() *fakePlatform {
	return &fakePlatform{
		productPages:   make(map[string][]*integration.CollectionProductPage),
		productIndex:   make(map[string]int),
		productErrs:    make(map[string]error),
		sold:           make(map[string]int),
		pollsUntilDone: make(map[string]int),
		jobPolls:       make(map[string]int),
	}
}

func (f *fakePlatform) PullPaidOrders(context.Context, *integration.OrderPullRequest) (*integration.OrderPage, error) {
	return &integration.OrderPage{}, nil
}

func (f *fakePlatform) PullOrderLines(context.Context, *integration.OrderLinePullRequest) (*integration.LineItemPage, error) {
	return &integration.LineItemPage{}, nil
}

func (f *fakePlatform) SoldUnitsSince(context.Context, string, time.Time) (map[string]int, error) {
	if f.soldErr != nil {
		return nil, f.soldErr
	}
	return f.sold, nil
}

func (f *fakePlatform) ListCollections(_ context.Context, _, cursor string) (*integration.CollectionPage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.collectionPages++
	// Two collections per page keeps limit handling observable
	const perPage = 2
	start := 0
	if cursor != "" {
		for i, c := range f.collections {
			if c.ID == cursor {
				start = i + 1
				break
			}
		}
	}
	end := start + perPage
	if end > len(f.collections) {
		end = len(f.collections)
	}
	page := &integration.CollectionPage{Collections: f.collections[start:end]}
	if end < len(f.collections) {
		page.PageInfo = integration.PageInfo{HasNextPage: true, EndCursor: f.collections[end-1].ID}
	}
	return page, nil
}

func (f *fakePlatform) CollectionProducts(_ context.Context, req *integration.CollectionProductsRequest) (*integration.CollectionProductPage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.productErrs[req.CollectionID]; err != nil {
		return nil, err
	}
	pages := f.productPages[req.CollectionID]
	i := f.productIndex[req.CollectionID]
	f.productIndex[req.CollectionID]++
	if i >= len(pages) {
		return &integration.CollectionProductPage{}, nil
	}
	return pages[i], nil
}

func (f *fakePlatform) ReorderCollection(_ context.Context, req *integration.ReorderRequest) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reorderRequests = append(f.reorderRequests, *req)
	i := f.reorderCalls
	f.reorderCalls++
	if i < len(f.reorderErrs) && f.reorderErrs[i] != nil {
		return "", f.reorderErrs[i]
	}
	if i < len(f.jobIDs) {
		return f.jobIDs[i], nil
	}
	return "", nil
}

func (f *fakePlatform) JobCompleted(_ context.Context, _, jobID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.jobErr != nil {
		return false, f.jobErr
	}
	f.jobPolls[jobID]++
	return f.jobPolls[jobID] >= f.pollsUntilDone[jobID], nil
}

func (f *fakePlatform) VariantsWithInventory(context.Context, string, string) (*integration.VariantStockPage, error) {
	return &integration.VariantStockPage{}, nil
}

func (f *fakePlatform) VariantAvailability(context.Context, string, []string) (map[string]int, error) {
	return nil, nil
}

var _ integration.CommercePlatform = (*fakePlatform)(nil)

// memRuleSets is an in-memory ranking.RuleSetRepository
type memRuleSets struct {
	mu    sync.Mutex
	items map[string]*ranking.RuleSet
}

func newMemRuleSets() *memRuleSets {
	return &memRuleSets{items: make(map[string]*ranking.RuleSet)}
}

func (m *memRuleSets) FindByCollection(_ context.Context, shop, collectionID string) (*ranking.RuleSet, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ruleSet, ok := m.items[shop+"/"+collectionID]
	if !ok {
		return nil, nil
	}
	copied := *ruleSet
	return &copied, nil
}

func (m *memRuleSets) Upsert(_ context.Context, ruleSet *ranking.RuleSet) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *ruleSet
	m.items[ruleSet.Shop+"/"+ruleSet.CollectionID] = &copied
	return nil
}

type fixture struct {
	platform *fakePlatform
	ruleSets *memRuleSets
	service  *Service
	slept    []time.Duration
}

func newFixture(opts Options) *fixture {
	f := &fixture{
		platform: newFakePlatform(),
		ruleSets: newMemRuleSets(),
	}
	f.service = NewService(f.platform, f.ruleSets, opts, zap.NewNop())
	f.service.sleep = func(_ context.Context, d time.Duration) error {
		f.slept = append(f.slept, d)
		return nil
	}
	return f
}

func productPage(products ...integration.CollectionProduct) *integration.CollectionProductPage {
	return &integration.CollectionProductPage{Products: products}
}

func member(id, title string, available bool, variantsAvailable int) integration.CollectionProduct {
	return integration.CollectionProduct{
		ID:                id,
		Title:             title,
		Available:         available,
		VariantsAvailable: variantsAvailable,
		TotalVariants:     variantsAvailable + 1,
	}
}

func TestRun_DefaultRuleOrder(t *testing.T) {
	f := newFixture(Options{})
	f.platform.productPages["c1"] = []*integration.CollectionProductPage{
		productPage(
			member("p-oos", "A Sold Out", false, 0),
			member("p-slow", "B Slow", true, 1),
			member("p-hot", "C Hot", true, 1),
		),
	}
	f.platform.sold = map[string]int{"p-hot": 40, "p-slow": 2, "p-oos": 99}

	result, err := f.service.Run(context.Background(), RunRequest{Shop: testShop, CollectionID: "c1"})
	require.NoError(t, err)

	assert.Equal(t, 3, result.Considered)
	assert.Equal(t, 3, result.Moved)
	require.Len(t, f.platform.reorderRequests, 1)
	moves := f.platform.reorderRequests[0].Moves
	require.Len(t, moves, 3)
	// In-stock first, then sales; the sold-out product sinks regardless
	// of its sales numbers
	assert.Equal(t, "p-hot", moves[0].ProductID)
	assert.Equal(t, "p-slow", moves[1].ProductID)
	assert.Equal(t, "p-oos", moves[2].ProductID)
	assert.Equal(t, 0, moves[0].NewPosition)
	assert.Equal(t, 2, moves[2].NewPosition)
}

func TestRun_PersistedRulesDriveOrder(t *testing.T) {
	f := newFixture(Options{})
	_, err := f.service.SaveRules(context.Background(), testShop, "c1", []string{"alpha"})
	require.NoError(t, err)

	f.platform.productPages["c1"] = []*integration.CollectionProductPage{
		productPage(
			member("p2", "Zebra", true, 1),
			member("p1", "Apple", false, 0),
		),
	}

	result, err := f.service.Run(context.Background(), RunRequest{Shop: testShop, CollectionID: "c1"})
	require.NoError(t, err)

	require.Len(t, f.platform.reorderRequests, 1)
	moves := f.platform.reorderRequests[0].Moves
	// Pure alphabetical: stock state must not matter
	assert.Equal(t, "p1", moves[0].ProductID)
	assert.Equal(t, "p2", moves[1].ProductID)
	assert.Equal(t, []string{"alpha"}, result.Rules)
}

func TestRun_StableSortKeepsInputOrderOnTies(t *testing.T) {
	f := newFixture(Options{})
	f.platform.productPages["c1"] = []*integration.CollectionProductPage{
		productPage(
			member("first", "Same", true, 1),
			member("second", "Same", true, 1),
			member("third", "Same", true, 1),
		),
	}

	result, err := f.service.Run(context.Background(), RunRequest{Shop: testShop, CollectionID: "c1", DryRun: true})
	require.NoError(t, err)

	require.Len(t, result.Preview, 3)
	assert.Equal(t, "first", result.Preview[0].ProductID)
	assert.Equal(t, "second", result.Preview[1].ProductID)
	assert.Equal(t, "third", result.Preview[2].ProductID)
}

func TestRun_DryRunAppliesNothing(t *testing.T) {
	f := newFixture(Options{PreviewSize: 2})
	f.platform.productPages["c1"] = []*integration.CollectionProductPage{
		productPage(
			member("p1", "One", true, 1),
			member("p2", "Two", true, 1),
			member("p3", "Three", true, 1),
		),
	}

	result, err := f.service.Run(context.Background(), RunRequest{Shop: testShop, CollectionID: "c1", DryRun: true})
	require.NoError(t, err)

	assert.True(t, result.DryRun)
	assert.Equal(t, 0, result.Moved)
	assert.Len(t, result.Preview, 2, "preview is bounded")
	assert.Empty(t, f.platform.reorderRequests, "dry runs must not reorder")
}

func TestRun_TopNZeroYieldsEmptyApply(t *testing.T) {
	f := newFixture(Options{})
	f.platform.productPages["c1"] = []*integration.CollectionProductPage{
		productPage(member("p1", "One", true, 1)),
	}

	zero := 0
	result, err := f.service.Run(context.Background(), RunRequest{Shop: testShop, CollectionID: "c1", TopN: &zero})
	require.NoError(t, err)

	assert.Equal(t, 1, result.Considered)
	assert.Equal(t, 0, result.Moved)
	assert.Empty(t, f.platform.reorderRequests)
}

func TestRun_ChunksLargeMoveSets(t *testing.T) {
	f := newFixture(Options{})
	products := make([]integration.CollectionProduct, 0, 260)
	for i := 0; i < 260; i++ {
		products = append(products, member(productID(i), "P", true, 1))
	}
	f.platform.productPages["c1"] = []*integration.CollectionProductPage{
		{Products: products},
	}

	result, err := f.service.Run(context.Background(), RunRequest{Shop: testShop, CollectionID: "c1"})
	require.NoError(t, err)

	assert.Equal(t, 260, result.Moved)
	require.Len(t, f.platform.reorderRequests, 2)
	assert.Len(t, f.platform.reorderRequests[0].Moves, 250)
	assert.Len(t, f.platform.reorderRequests[1].Moves, 10)
	// Positions continue across chunks
	assert.Equal(t, 250, f.platform.reorderRequests[1].Moves[0].NewPosition)
}

func TestRun_WaitsForJobBetweenChunks(t *testing.T) {
	f := newFixture(Options{JobPollInterval: time.Millisecond})
	products := make([]integration.CollectionProduct, 0, 260)
	for i := 0; i < 260; i++ {
		products = append(products, member(productID(i), "P", true, 1))
	}
	f.platform.productPages["c1"] = []*integration.CollectionProductPage{
		{Products: products},
	}
	f.platform.jobIDs = []string{"job-1", ""}
	f.platform.pollsUntilDone["job-1"] = 3

	_, err := f.service.Run(context.Background(), RunRequest{Shop: testShop, CollectionID: "c1"})
	require.NoError(t, err)

	assert.Equal(t, 3, f.platform.jobPolls["job-1"])
	assert.Len(t, f.slept, 3, "one fixed-interval wait per poll")
}

func TestRun_JobPollBudgetTurnsIntoTimeout(t *testing.T) {
	f := newFixture(Options{MaxJobPolls: 5, JobPollInterval: time.Millisecond})
	f.platform.productPages["c1"] = []*integration.CollectionProductPage{
		productPage(member("p1", "One", true, 1)),
	}
	f.platform.jobIDs = []string{"job-stuck"}
	f.platform.pollsUntilDone["job-stuck"] = 1000

	_, err := f.service.Run(context.Background(), RunRequest{Shop: testShop, CollectionID: "c1"})
	require.Error(t, err)
	assert.ErrorIs(t, err, integration.ErrJobTimeout)
	assert.Equal(t, 5, f.platform.jobPolls["job-stuck"])
}

func TestRun_PagesCollectionMembership(t *testing.T) {
	f := newFixture(Options{})
	f.platform.productPages["c1"] = []*integration.CollectionProductPage{
		{
			Products: []integration.CollectionProduct{member("p1", "One", true, 1)},
			PageInfo: integration.PageInfo{HasNextPage: true, EndCursor: "cur-1"},
		},
		{
			Products: []integration.CollectionProduct{member("p2", "Two", true, 1)},
		},
	}

	result, err := f.service.Run(context.Background(), RunRequest{Shop: testShop, CollectionID: "c1", DryRun: true})
	require.NoError(t, err)
	assert.Equal(t, 2, result.Considered)
}

func TestRun_EmptyCollection(t *testing.T) {
	f := newFixture(Options{})

	result, err := f.service.Run(context.Background(), RunRequest{Shop: testShop, CollectionID: "empty"})
	require.NoError(t, err)

	assert.Equal(t, 0, result.Considered)
	assert.Equal(t, 0, result.Moved)
	assert.Empty(t, f.platform.reorderRequests)
}

func TestRunAll_IsolatesFailures(t *testing.T) {
	f := newFixture(Options{BatchDelay: time.Millisecond})
	f.platform.collections = []integration.Collection{
		{ID: "c1", Title: "First"},
		{ID: "c2", Title: "Broken"},
		{ID: "c3", Title: "Third"},
	}
	f.platform.productPages["c1"] = []*integration.CollectionProductPage{
		productPage(member("p1", "One", true, 1)),
	}
	f.platform.productPages["c3"] = []*integration.CollectionProductPage{
		productPage(member("p3", "Three", true, 1)),
	}
	f.platform.productErrs["c2"] = errors.New("boom")

	result, err := f.service.RunAll(context.Background(), RunAllRequest{Shop: testShop})
	require.NoError(t, err, "one failed collection must not abort the batch")

	require.Len(t, result.Results, 3)
	assert.Equal(t, 3, result.Processed)
	assert.Equal(t, 1, result.Failed)

	assert.Equal(t, 1, result.Results[0].Moved)
	assert.Empty(t, result.Results[0].Error)

	assert.Contains(t, result.Results[1].Error, "boom")
	assert.Equal(t, "Broken", result.Results[1].Title)

	assert.Equal(t, 1, result.Results[2].Moved)
}

func TestRunAll_SkipsEmptyCollections(t *testing.T) {
	f := newFixture(Options{BatchDelay: time.Millisecond})
	f.platform.collections = []integration.Collection{
		{ID: "c1", Title: "Filled"},
		{ID: "c2", Title: "Empty"},
	}
	f.platform.productPages["c1"] = []*integration.CollectionProductPage{
		productPage(member("p1", "One", true, 1)),
	}

	result, err := f.service.RunAll(context.Background(), RunAllRequest{Shop: testShop})
	require.NoError(t, err)

	require.Len(t, result.Results, 2)
	assert.Equal(t, "no products in collection", result.Results[1].SkipReason)
	assert.Zero(t, result.Failed, "skips are not failures")
}

func TestRunAll_HonorsLimitAndDelay(t *testing.T) {
	f := newFixture(Options{BatchDelay: 5 * time.Millisecond})
	for i := 0; i < 6; i++ {
		f.platform.collections = append(f.platform.collections, integration.Collection{ID: productID(i), Title: "C"})
	}

	result, err := f.service.RunAll(context.Background(), RunAllRequest{Shop: testShop, Limit: 3})
	require.NoError(t, err)

	assert.Equal(t, 3, result.Processed)
	assert.Len(t, f.slept, 2, "delay between collections, not after the last")
	for _, d := range f.slept {
		assert.Equal(t, 5*time.Millisecond, d)
	}
}

func TestRules_RoundTripAndFallback(t *testing.T) {
	f := newFixture(Options{})

	// Nothing stored yet: default sequence is effective
	rules, err := f.service.GetRules(context.Background(), testShop, "c1")
	require.NoError(t, err)
	assert.Empty(t, rules.Stored)
	assert.Equal(t, []string{"in_stock", "sales_90d", "variants_in_stock", "alpha", "oos_last"}, rules.Effective)

	// Unknown identifiers are stored as entered but filtered from the
	// effective sequence
	saved, err := f.service.SaveRules(context.Background(), testShop, "c1", []string{"alpha", "bogus", "in_stock"})
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha", "bogus", "in_stock"}, saved.Stored)
	assert.Equal(t, []string{"alpha", "in_stock"}, saved.Effective)

	// All-invalid falls back to the default sequence
	saved, err = f.service.SaveRules(context.Background(), testShop, "c1", []string{"nope"})
	require.NoError(t, err)
	assert.Equal(t, []string{"in_stock", "sales_90d", "variants_in_stock", "alpha", "oos_last"}, saved.Effective)
}

func TestListCollections_PassThrough(t *testing.T) {
	f := newFixture(Options{})
	f.platform.collections = []integration.Collection{
		{ID: "c1", Title: "First", Handle: "first", ProductCount: 4},
		{ID: "c2", Title: "Second", Handle: "second", ProductCount: 9},
		{ID: "c3", Title: "Third", Handle: "third", ProductCount: 1},
	}

	page, err := f.service.ListCollections(context.Background(), testShop, "")
	require.NoError(t, err)

	require.Len(t, page.Collections, 2)
	assert.Equal(t, "First", page.Collections[0].Title)
	assert.True(t, page.HasNextPage)
	assert.Equal(t, "c2", page.EndCursor)
}

func productID(i int) string {
	return fmt.Sprintf("gid://shopify/Product/%d", i+1)
}
