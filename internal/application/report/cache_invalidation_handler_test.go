package report

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/merchdash/backend/internal/domain/ingest"
)

func TestCacheInvalidationHandler_DropsShopRollupsOnIngestion(t *testing.T) {
	f := newAggregationFixture(t, Options{})

	_, err := f.service.KPIs(context.Background(), testShop, 28)
	require.NoError(t, err)
	require.NotZero(t, f.cache.len())

	handler := NewCacheInvalidationHandler(f.service, zap.NewNop())
	event := ingest.NewOrdersIngestedEvent(testShop, "2026-03-01T00:00:00Z", 3, 9)
	require.NoError(t, handler.Handle(context.Background(), event))

	assert.Zero(t, f.cache.len())
}

func TestCacheInvalidationHandler_SubscribesToIngestionEvents(t *testing.T) {
	handler := NewCacheInvalidationHandler(nil, nil)
	assert.Equal(t,
		[]string{ingest.EventTypeOrdersIngested, ingest.EventTypeSnapshotTaken},
		handler.EventTypes())
}
