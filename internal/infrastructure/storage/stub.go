package storage

import (
	"context"
	"errors"
	"sync"
	"time"

	reportapp "github.com/merchdash/backend/internal/application/report"
)

// StubObjectStorage is an in-memory stand-in for deployments that run
// without a configured bucket. Uploads are kept in a map and download
// URLs are fabricated, which is enough for local development.
type StubObjectStorage struct {
	// BaseURL prefixes the fabricated download URLs.
	// Defaults to "https://storage.example.com" if not set.
	BaseURL string

	mu      sync.Mutex
	objects map[string][]byte
}

// NewStubObjectStorage creates a new StubObjectStorage
func NewStubObjectStorage() *StubObjectStorage {
	return &StubObjectStorage{
		BaseURL: "https://storage.example.com",
		objects: make(map[string][]byte),
	}
}

// Ensure StubObjectStorage implements the export storage port
var _ reportapp.ObjectStorage = (*StubObjectStorage)(nil)

// PutObject keeps the document in memory
func (s *StubObjectStorage) PutObject(_ context.Context, storageKey, _ string, body []byte) error {
	if storageKey == "" {
		return errors.New("storage key is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[storageKey] = body
	return nil
}

// GenerateDownloadURL fabricates a download URL for a stored key
func (s *StubObjectStorage) GenerateDownloadURL(
	_ context.Context,
	storageKey string,
	expiresIn time.Duration,
) (string, time.Time, error) {
	if storageKey == "" {
		return "", time.Time{}, errors.New("storage key is required")
	}

	expiresAt := time.Now().Add(expiresIn)
	url := s.BaseURL + "/download/" + storageKey + "?expires=" + expiresAt.Format(time.RFC3339)
	return url, expiresAt, nil
}

// Object returns a stored document, for tests and local inspection
func (s *StubObjectStorage) Object(storageKey string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	body, ok := s.objects[storageKey]
	return body, ok
}
