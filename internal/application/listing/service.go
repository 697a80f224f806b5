// Package listing manages combined listing records: parent products on
// the platform that group several independent catalog products, with the
// option-value mapping each child occupies under the parent.
package listing

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/merchdash/backend/internal/domain/listing"
	"github.com/merchdash/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// Service handles combined listing CRUD
type Service struct {
	listings listing.Repository
	logger   *zap.Logger
}

// NewService creates a listing service
func NewService(listings listing.Repository, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		listings: listings,
		logger:   logger,
	}
}

// Create registers a combined listing parent with its children in one
// write. The external product id must not already be registered for the
// shop.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*ParentResponse, error) {
	shopDomain := strings.TrimSpace(req.Shop)
	if shopDomain == "" {
		return nil, shared.NewDomainError("INVALID_SHOP", "Shop domain is required")
	}

	existing, err := s.listings.FindByExternalProductID(ctx, shopDomain, req.ExternalProductID)
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return nil, fmt.Errorf("failed to check existing listing: %w", err)
	}
	if existing != nil {
		return nil, shared.NewDomainError("LISTING_EXISTS", "A combined listing already exists for this product")
	}

	children := make([]listing.ChildInput, 0, len(req.Children))
	for _, c := range req.Children {
		children = append(children, listing.ChildInput{
			ProductID:    c.ProductID,
			OptionValues: c.OptionValues,
		})
	}

	parent, err := listing.NewCombinedParent(shopDomain, req.ExternalProductID, req.Title, children)
	if err != nil {
		return nil, err
	}

	if err := s.listings.Save(ctx, parent); err != nil {
		s.logger.Error("failed to save combined listing",
			zap.String("shop", shopDomain),
			zap.String("external_product_id", req.ExternalProductID),
			zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to save combined listing")
	}

	s.logger.Info("combined listing created",
		zap.String("shop", shopDomain),
		zap.String("parent_id", parent.ID.String()),
		zap.Int("children", len(parent.Children)))

	return toParentResponse(parent), nil
}

// Get returns one combined listing with its children
func (s *Service) Get(ctx context.Context, shop string, id uuid.UUID) (*ParentResponse, error) {
	shopDomain := strings.TrimSpace(shop)
	if shopDomain == "" {
		return nil, shared.NewDomainError("INVALID_SHOP", "Shop domain is required")
	}

	parent, err := s.listings.FindByID(ctx, shopDomain, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("LISTING_NOT_FOUND", "Combined listing not found")
		}
		return nil, fmt.Errorf("failed to load combined listing: %w", err)
	}

	return toParentResponse(parent), nil
}

// GetByExternalProductID returns the combined listing registered for a
// platform product id
func (s *Service) GetByExternalProductID(ctx context.Context, shop, externalProductID string) (*ParentResponse, error) {
	shopDomain := strings.TrimSpace(shop)
	if shopDomain == "" {
		return nil, shared.NewDomainError("INVALID_SHOP", "Shop domain is required")
	}
	if strings.TrimSpace(externalProductID) == "" {
		return nil, shared.NewDomainError("INVALID_PARENT_PRODUCT", "Parent product identifier is required")
	}

	parent, err := s.listings.FindByExternalProductID(ctx, shopDomain, externalProductID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("LISTING_NOT_FOUND", "Combined listing not found")
		}
		return nil, fmt.Errorf("failed to load combined listing: %w", err)
	}

	return toParentResponse(parent), nil
}

// List returns a page of combined listings for a shop
func (s *Service) List(ctx context.Context, shop string, filter shared.Filter) (*ListResponse, error) {
	shopDomain := strings.TrimSpace(shop)
	if shopDomain == "" {
		return nil, shared.NewDomainError("INVALID_SHOP", "Shop domain is required")
	}

	parents, total, err := s.listings.FindAll(ctx, shopDomain, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list combined listings: %w", err)
	}

	items := make([]ParentResponse, 0, len(parents))
	for i := range parents {
		items = append(items, *toParentResponse(&parents[i]))
	}

	totalPages := 0
	if filter.Limit() > 0 {
		totalPages = int((total + int64(filter.Limit()) - 1) / int64(filter.Limit()))
	}

	return &ListResponse{
		Parents:    items,
		Total:      total,
		Page:       filter.Page,
		PageSize:   filter.Limit(),
		TotalPages: totalPages,
	}, nil
}

// Delete removes a combined listing and its children
func (s *Service) Delete(ctx context.Context, shop string, id uuid.UUID) error {
	shopDomain := strings.TrimSpace(shop)
	if shopDomain == "" {
		return shared.NewDomainError("INVALID_SHOP", "Shop domain is required")
	}

	if err := s.listings.Delete(ctx, shopDomain, id); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return shared.NewDomainError("LISTING_NOT_FOUND", "Combined listing not found")
		}
		return fmt.Errorf("failed to delete combined listing: %w", err)
	}

	s.logger.Info("combined listing deleted",
		zap.String("shop", shopDomain),
		zap.String("parent_id", id.String()))
	return nil
}

func toParentResponse(p *listing.CombinedParent) *ParentResponse {
	children := make([]ChildView, 0, len(p.Children))
	for _, c := range p.Children {
		children = append(children, ChildView{
			ID:             c.ID,
			ChildProductID: c.ChildProductID,
			OptionValues:   c.OptionValues,
		})
	}
	return &ParentResponse{
		ID:                p.ID,
		Shop:              p.Shop,
		ExternalProductID: p.ExternalProductID,
		Title:             p.Title,
		Children:          children,
		CreatedAt:         p.CreatedAt,
	}
}
