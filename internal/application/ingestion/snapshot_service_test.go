package ingestion

import (
	"context"
	"testing"
	"time"

	"github.com/merchdash/backend/internal/domain/ingest"
	"github.com/merchdash/backend/internal/domain/integration"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type snapshotFixture struct {
	platform  *fakePlatform
	products  *memProducts
	variants  *memVariants
	snapshots *memSnapshots
	publisher *capturingPublisher
	service   *SnapshotService
}

func newSnapshotFixture() *snapshotFixture {
	f := &snapshotFixture{
		platform:  newFakePlatform(),
		products:  newMemProducts(),
		variants:  newMemVariants(),
		snapshots: newMemSnapshots(),
		publisher: &capturingPublisher{},
	}
	f.service = NewSnapshotService(f.platform, f.products, f.variants, f.snapshots, zap.NewNop())
	f.service.SetEventPublisher(f.publisher)
	return f
}

func stockReading(variantID, productID string, onHand int) integration.VariantStock {
	price := decimal.RequireFromString("29.90")
	return integration.VariantStock{
		VariantID:        variantID,
		ProductID:        productID,
		ProductTitle:     "Linen Shirt",
		ProductVendor:    "Acme",
		ProductCreatedAt: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		Title:            "M / Navy",
		SKU:              "LS-M-NVY",
		Options: []integration.SelectedOption{
			{Name: "Size", Value: "M"},
			{Name: "Color", Value: "Navy"},
		},
		OnHand: onHand,
		Price:  &price,
	}
}

func TestSnapshotRun_CapturesAllPages(t *testing.T) {
	f := newSnapshotFixture()
	f.platform.stockPages = []*integration.VariantStockPage{
		{
			Variants: []integration.VariantStock{
				stockReading("v1", "p1", 10),
				stockReading("v2", "p1", 4),
			},
			PageInfo: integration.PageInfo{HasNextPage: true, EndCursor: "stock-cur-1"},
		},
		{
			Variants: []integration.VariantStock{stockReading("v3", "p2", 0)},
		},
	}

	result, err := f.service.Run(context.Background(), SnapshotRunRequest{Shop: testShop})
	require.NoError(t, err)

	assert.Equal(t, 3, result.VariantsCaptured)
	assert.Equal(t, []string{"", "stock-cur-1"}, f.platform.stockCursors)

	count, err := f.snapshots.CountByShop(context.Background(), testShop)
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)

	// Mirrors refreshed even for products that never sold
	_, err = f.products.FindByID(context.Background(), testShop, "p2")
	require.NoError(t, err)
	variant, err := f.variants.FindByID(context.Background(), testShop, "v1")
	require.NoError(t, err)
	require.NotNil(t, variant.Size)
	assert.Equal(t, "M", *variant.Size)
}

func TestSnapshotRun_StampsWholeRunWithOneInstant(t *testing.T) {
	f := newSnapshotFixture()
	f.platform.stockPages = []*integration.VariantStockPage{
		{
			Variants: []integration.VariantStock{stockReading("v1", "p1", 1)},
			PageInfo: integration.PageInfo{HasNextPage: true, EndCursor: "stock-cur-1"},
		},
		{
			Variants: []integration.VariantStock{stockReading("v2", "p1", 2)},
		},
	}

	_, err := f.service.Run(context.Background(), SnapshotRunRequest{Shop: testShop})
	require.NoError(t, err)

	require.Len(t, f.snapshots.items, 2)
	assert.Equal(t, f.snapshots.items[0].SnapshotDate, f.snapshots.items[1].SnapshotDate)
}

func TestSnapshotRun_WritesInBatches(t *testing.T) {
	f := newSnapshotFixture()
	f.service.SetBatchSize(2)
	f.platform.stockPages = []*integration.VariantStockPage{
		{Variants: []integration.VariantStock{
			stockReading("v1", "p1", 1),
			stockReading("v2", "p1", 2),
			stockReading("v3", "p1", 3),
		}},
	}

	result, err := f.service.Run(context.Background(), SnapshotRunRequest{Shop: testShop})
	require.NoError(t, err)

	assert.Equal(t, 3, result.VariantsCaptured)
	assert.Equal(t, []int{2, 1}, f.snapshots.batches)
}

func TestSnapshotRun_AppendOnly(t *testing.T) {
	f := newSnapshotFixture()
	page := &integration.VariantStockPage{
		Variants: []integration.VariantStock{stockReading("v1", "p1", 5)},
	}
	f.platform.stockPages = []*integration.VariantStockPage{page, page}

	_, err := f.service.Run(context.Background(), SnapshotRunRequest{Shop: testShop})
	require.NoError(t, err)
	_, err = f.service.Run(context.Background(), SnapshotRunRequest{Shop: testShop})
	require.NoError(t, err)

	count, err := f.snapshots.CountByShop(context.Background(), testShop)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count, "observations accumulate, they are never replaced")
}

func TestSnapshotRun_PlatformErrorAborts(t *testing.T) {
	f := newSnapshotFixture()
	f.platform.stockPageErrs = []error{integration.ErrPlatformRateLimited}

	_, err := f.service.Run(context.Background(), SnapshotRunRequest{Shop: testShop})
	require.Error(t, err)
	assert.ErrorIs(t, err, integration.ErrPlatformRateLimited)
	assert.Empty(t, f.publisher.byType(ingest.EventTypeSnapshotTaken))
}

func TestSnapshotRun_PublishesSnapshotTakenEvent(t *testing.T) {
	f := newSnapshotFixture()
	f.platform.stockPages = []*integration.VariantStockPage{
		{Variants: []integration.VariantStock{stockReading("v1", "p1", 5)}},
	}

	_, err := f.service.Run(context.Background(), SnapshotRunRequest{Shop: testShop})
	require.NoError(t, err)

	events := f.publisher.byType(ingest.EventTypeSnapshotTaken)
	require.Len(t, events, 1)
	event, ok := events[0].(*ingest.SnapshotTakenEvent)
	require.True(t, ok)
	assert.Equal(t, 1, event.VariantsCaptured)
}

func TestSnapshotRun_RejectsMissingShop(t *testing.T) {
	f := newSnapshotFixture()
	_, err := f.service.Run(context.Background(), SnapshotRunRequest{})
	require.Error(t, err)
	assert.Empty(t, f.platform.stockCursors)
}

func TestSnapshotRun_ExcludesOverlappingRuns(t *testing.T) {
	f := newSnapshotFixture()
	f.service.SetRunLock(&fakeRunLock{denied: true})

	_, err := f.service.Run(context.Background(), SnapshotRunRequest{Shop: testShop})
	require.Error(t, err)
	assert.Empty(t, f.platform.stockCursors, "a blocked run must not reach the platform")
}
