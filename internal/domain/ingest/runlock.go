package ingest

import (
	"context"
	"time"
)

// RunLock serializes ingestion runs so a scheduled pull and a manual
// trigger cannot work the same shop at once, even across instances.
// Keys name the run kind and shop, e.g. "orders:demo.myshopify.com".
//
// Backed by Redis SETNX in multi-instance deployments and an in-process
// map otherwise. A lock expires after its TTL so a crashed run cannot
// wedge a shop forever.
type RunLock interface {
	// Acquire takes the lock for at most ttl. Returns false when another
	// run already holds it.
	Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error)

	// Release frees the lock
	Release(ctx context.Context, key string) error

	// Close releases any resources held by the lock backend
	Close() error
}
