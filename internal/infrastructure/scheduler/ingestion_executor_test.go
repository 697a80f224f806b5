package scheduler

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/merchdash/backend/internal/application/ingestion"
)

type fakeOrdersRunner struct {
	lastReq ingestion.OrdersRunRequest
	result  *ingestion.OrdersRunResult
	err     error
}

func (f *fakeOrdersRunner) Run(_ context.Context, req ingestion.OrdersRunRequest) (*ingestion.OrdersRunResult, error) {
	f.lastReq = req
	return f.result, f.err
}

type fakeSnapshotRunner struct {
	lastReq ingestion.SnapshotRunRequest
	result  *ingestion.SnapshotRunResult
	err     error
}

func (f *fakeSnapshotRunner) Run(_ context.Context, req ingestion.SnapshotRunRequest) (*ingestion.SnapshotRunResult, error) {
	f.lastReq = req
	return f.result, f.err
}

func TestIngestionExecutorDispatchesOrders(t *testing.T) {
	orders := &fakeOrdersRunner{result: &ingestion.OrdersRunResult{
		Shop:            "demo.myshopify.com",
		OrdersProcessed: 4,
		LinesProcessed:  9,
	}}
	snapshots := &fakeSnapshotRunner{}
	executor := NewIngestionExecutor(orders, snapshots, newTestLogger())

	job := NewJob("demo.myshopify.com", JobKindOrders, 0)
	require.NoError(t, executor.Execute(context.Background(), job))

	// Scheduled runs resume from the stored watermark
	assert.Equal(t, "demo.myshopify.com", orders.lastReq.Shop)
	assert.Nil(t, orders.lastReq.Since)
	assert.Zero(t, orders.lastReq.Days)
}

func TestIngestionExecutorDispatchesSnapshot(t *testing.T) {
	orders := &fakeOrdersRunner{}
	snapshots := &fakeSnapshotRunner{result: &ingestion.SnapshotRunResult{
		Shop:             "demo.myshopify.com",
		VariantsCaptured: 12,
	}}
	executor := NewIngestionExecutor(orders, snapshots, newTestLogger())

	job := NewJob("demo.myshopify.com", JobKindSnapshot, 0)
	require.NoError(t, executor.Execute(context.Background(), job))

	assert.Equal(t, "demo.myshopify.com", snapshots.lastReq.Shop)
	assert.Empty(t, orders.lastReq.Shop)
}

func TestIngestionExecutorWrapsRunErrors(t *testing.T) {
	orders := &fakeOrdersRunner{err: errors.New("rate limited")}
	executor := NewIngestionExecutor(orders, &fakeSnapshotRunner{}, newTestLogger())

	err := executor.Execute(context.Background(), NewJob("demo.myshopify.com", JobKindOrders, 0))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "demo.myshopify.com")
}

func TestIngestionExecutorRejectsUnknownKind(t *testing.T) {
	executor := NewIngestionExecutor(&fakeOrdersRunner{}, &fakeSnapshotRunner{}, newTestLogger())

	err := executor.Execute(context.Background(), NewJob("demo.myshopify.com", JobKind("NOPE"), 0))
	assert.ErrorIs(t, err, ErrInvalidJobKind)
}
