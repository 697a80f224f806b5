package cache

import (
	"context"
	"sync"
	"time"

	"github.com/merchdash/backend/internal/domain/ingest"
)

// lockEntry records a held lock and when it lapses
type lockEntry struct {
	expiresAt time.Time
}

// InMemoryRunLock implements the ingestion run lock on a process-local
// map. Suitable for single-instance deployments and tests; it cannot
// exclude runs on other instances.
type InMemoryRunLock struct {
	mu        sync.Mutex
	held      map[string]lockEntry
	stopChan  chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// NewInMemoryRunLock creates an in-process run lock and starts its
// background expiry sweep.
func NewInMemoryRunLock() *InMemoryRunLock {
	lock := &InMemoryRunLock{
		held:     make(map[string]lockEntry),
		stopChan: make(chan struct{}),
	}

	lock.wg.Add(1)
	go lock.cleanupLoop()

	return lock
}

// Acquire takes the lock for at most ttl. Returns false when another run
// already holds it.
func (l *InMemoryRunLock) Acquire(_ context.Context, key string, ttl time.Duration) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if entry, exists := l.held[key]; exists && time.Now().Before(entry.expiresAt) {
		return false, nil
	}
	l.held[key] = lockEntry{expiresAt: time.Now().Add(ttl)}
	return true, nil
}

// Release frees the lock
func (l *InMemoryRunLock) Release(_ context.Context, key string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.held, key)
	return nil
}

// Close stops the expiry sweep. Safe to call multiple times.
func (l *InMemoryRunLock) Close() error {
	l.closeOnce.Do(func() {
		close(l.stopChan)
		l.wg.Wait()
	})
	return nil
}

func (l *InMemoryRunLock) cleanupLoop() {
	defer l.wg.Done()

	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-l.stopChan:
			return
		case <-ticker.C:
			l.cleanup()
		}
	}
}

func (l *InMemoryRunLock) cleanup() {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	for key, entry := range l.held {
		if now.After(entry.expiresAt) {
			delete(l.held, key)
		}
	}
}

// Ensure InMemoryRunLock implements the run lock port
var _ ingest.RunLock = (*InMemoryRunLock)(nil)
