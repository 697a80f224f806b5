package shopify

import (
	"context"
	"fmt"
	"sync"

	"github.com/merchdash/backend/internal/domain/integration"
	"github.com/merchdash/backend/internal/domain/shop"
)

// TokenSource resolves the Admin API access token for a shop domain.
type TokenSource interface {
	AccessToken(ctx context.Context, shopDomain string) (string, error)
}

// StaticTokenSource serves tokens from an in-memory map. Used in tests
// and single-shop setups.
type StaticTokenSource struct {
	mu     sync.RWMutex
	tokens map[string]string
}

// NewStaticTokenSource creates a static token source
func NewStaticTokenSource() *StaticTokenSource {
	return &StaticTokenSource{tokens: make(map[string]string)}
}

// SetToken registers the access token for a shop domain
func (s *StaticTokenSource) SetToken(shopDomain, token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[shopDomain] = token
}

// AccessToken returns the token registered for the shop domain
func (s *StaticTokenSource) AccessToken(_ context.Context, shopDomain string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	token, ok := s.tokens[shopDomain]
	if !ok {
		return "", fmt.Errorf("%w: no access token for shop %s", integration.ErrReauthRequired, shopDomain)
	}
	return token, nil
}

// RepositoryTokenSource resolves tokens from the shop repository.
// Shops already flagged for reauthentication fail fast without an API call.
type RepositoryTokenSource struct {
	shops shop.Repository
}

// NewRepositoryTokenSource creates a repository-backed token source
func NewRepositoryTokenSource(shops shop.Repository) *RepositoryTokenSource {
	return &RepositoryTokenSource{shops: shops}
}

// AccessToken loads the shop record and returns its stored access token
func (r *RepositoryTokenSource) AccessToken(ctx context.Context, shopDomain string) (string, error) {
	s, err := r.shops.FindByDomain(ctx, shopDomain)
	if err != nil {
		return "", fmt.Errorf("failed to load shop %s: %w", shopDomain, err)
	}
	if s.NeedsReauth() {
		return "", fmt.Errorf("%w: shop %s", integration.ErrReauthRequired, shopDomain)
	}
	return s.AccessToken, nil
}

var _ TokenSource = (*StaticTokenSource)(nil)
var _ TokenSource = (*RepositoryTokenSource)(nil)
