// Package bundle manages multi-component bundle definitions and answers
// how many bundles the current inventory can still assemble. Definitions
// are local records; capacity is computed from live platform availability
// at call time and never persisted.
package bundle

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/merchdash/backend/internal/domain/bundle"
	"github.com/merchdash/backend/internal/domain/integration"
	"github.com/merchdash/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// Service handles bundle definition CRUD and capacity calculation
type Service struct {
	bundles  bundle.Repository
	platform integration.CommercePlatform
	logger   *zap.Logger
}

// NewService creates a bundle service
func NewService(bundles bundle.Repository, platform integration.CommercePlatform, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		bundles:  bundles,
		platform: platform,
		logger:   logger,
	}
}

// Create validates and stores a new bundle definition
func (s *Service) Create(ctx context.Context, req CreateRequest) (*BundleResponse, error) {
	shopDomain := strings.TrimSpace(req.Shop)
	if shopDomain == "" {
		return nil, shared.NewDomainError("INVALID_SHOP", "Shop domain is required")
	}

	components := make([]bundle.Component, 0, len(req.Components))
	for _, c := range req.Components {
		components = append(components, bundle.Component{VariantID: c.VariantID, Qty: c.Qty})
	}

	b, err := bundle.NewBundle(shopDomain, req.Title, req.ExternalProductID, components, req.DiscountPercent, req.DiscountFixed)
	if err != nil {
		return nil, err
	}

	if err := s.bundles.Save(ctx, b); err != nil {
		s.logger.Error("failed to save bundle",
			zap.String("shop", shopDomain),
			zap.String("title", req.Title),
			zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to save bundle")
	}

	s.logger.Info("bundle created",
		zap.String("shop", shopDomain),
		zap.String("bundle_id", b.ID.String()),
		zap.Int("components", len(b.Items)))

	return toBundleResponse(b), nil
}

// Get returns one bundle definition
func (s *Service) Get(ctx context.Context, shop string, id uuid.UUID) (*BundleResponse, error) {
	shopDomain := strings.TrimSpace(shop)
	if shopDomain == "" {
		return nil, shared.NewDomainError("INVALID_SHOP", "Shop domain is required")
	}

	b, err := s.bundles.FindByID(ctx, shopDomain, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("BUNDLE_NOT_FOUND", "Bundle not found")
		}
		return nil, fmt.Errorf("failed to load bundle: %w", err)
	}

	return toBundleResponse(b), nil
}

// List returns a page of bundle definitions for a shop
func (s *Service) List(ctx context.Context, shop string, filter shared.Filter) (*ListResponse, error) {
	shopDomain := strings.TrimSpace(shop)
	if shopDomain == "" {
		return nil, shared.NewDomainError("INVALID_SHOP", "Shop domain is required")
	}

	bundles, total, err := s.bundles.FindAll(ctx, shopDomain, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list bundles: %w", err)
	}

	items := make([]BundleResponse, 0, len(bundles))
	for i := range bundles {
		items = append(items, *toBundleResponse(&bundles[i]))
	}

	totalPages := 0
	if filter.Limit() > 0 {
		totalPages = int((total + int64(filter.Limit()) - 1) / int64(filter.Limit()))
	}

	return &ListResponse{
		Bundles:    items,
		Total:      total,
		Page:       filter.Page,
		PageSize:   filter.Limit(),
		TotalPages: totalPages,
	}, nil
}

// Delete removes a bundle definition and its components
func (s *Service) Delete(ctx context.Context, shop string, id uuid.UUID) error {
	shopDomain := strings.TrimSpace(shop)
	if shopDomain == "" {
		return shared.NewDomainError("INVALID_SHOP", "Shop domain is required")
	}

	if err := s.bundles.Delete(ctx, shopDomain, id); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return shared.NewDomainError("BUNDLE_NOT_FOUND", "Bundle not found")
		}
		return fmt.Errorf("failed to delete bundle: %w", err)
	}

	s.logger.Info("bundle deleted",
		zap.String("shop", shopDomain),
		zap.String("bundle_id", id.String()))
	return nil
}

// Capacity computes how many units of a stored bundle the shop can still
// assemble from current component availability
func (s *Service) Capacity(ctx context.Context, shop string, id uuid.UUID) (*CapacityResponse, error) {
	shopDomain := strings.TrimSpace(shop)
	if shopDomain == "" {
		return nil, shared.NewDomainError("INVALID_SHOP", "Shop domain is required")
	}

	b, err := s.bundles.FindByID(ctx, shopDomain, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("BUNDLE_NOT_FOUND", "Bundle not found")
		}
		return nil, fmt.Errorf("failed to load bundle: %w", err)
	}

	resp, err := s.computeCapacity(ctx, shopDomain, b.Components())
	if err != nil {
		return nil, err
	}
	bundleID := b.ID
	resp.BundleID = &bundleID
	return resp, nil
}

// CapacityForComponents computes capacity for an ad-hoc component set
// that has not been stored as a bundle
func (s *Service) CapacityForComponents(ctx context.Context, req CapacityRequest) (*CapacityResponse, error) {
	shopDomain := strings.TrimSpace(req.Shop)
	if shopDomain == "" {
		return nil, shared.NewDomainError("INVALID_SHOP", "Shop domain is required")
	}
	if len(req.Components) == 0 {
		return nil, shared.NewDomainError("EMPTY_COMPONENTS", "A bundle needs at least one component")
	}

	components := make([]bundle.Component, 0, len(req.Components))
	for _, c := range req.Components {
		if strings.TrimSpace(c.VariantID) == "" {
			return nil, shared.NewDomainError("INVALID_COMPONENT", "Component variant identifier is required")
		}
		if c.Qty < 1 {
			return nil, shared.NewDomainError("INVALID_COMPONENT", "Component quantity must be at least 1")
		}
		components = append(components, bundle.Component{VariantID: c.VariantID, Qty: c.Qty})
	}

	return s.computeCapacity(ctx, shopDomain, components)
}

// computeCapacity fetches live availability for the component variants
// and derives the bundle capacity plus the per-component limits behind it
func (s *Service) computeCapacity(ctx context.Context, shop string, components []bundle.Component) (*CapacityResponse, error) {
	variantIDs := make([]string, 0, len(components))
	seen := make(map[string]struct{}, len(components))
	for _, c := range components {
		if _, ok := seen[c.VariantID]; ok {
			continue
		}
		seen[c.VariantID] = struct{}{}
		variantIDs = append(variantIDs, c.VariantID)
	}

	available, err := s.platform.VariantAvailability(ctx, shop, variantIDs)
	if err != nil {
		s.logger.Error("availability query failed",
			zap.String("shop", shop),
			zap.Int("variants", len(variantIDs)),
			zap.Error(err))
		return nil, fmt.Errorf("availability query failed for shop %s: %w", shop, err)
	}

	details := make([]ComponentCapacity, 0, len(components))
	for _, c := range components {
		qty := c.Qty
		if qty < 1 {
			qty = 1
		}
		avail := available[c.VariantID]
		if avail < 0 {
			avail = 0
		}
		details = append(details, ComponentCapacity{
			VariantID: c.VariantID,
			Qty:       c.Qty,
			Available: available[c.VariantID],
			Limit:     avail / qty,
		})
	}

	return &CapacityResponse{
		Shop:       shop,
		Capacity:   bundle.Capacity(components, available),
		Components: details,
	}, nil
}

func toBundleResponse(b *bundle.Bundle) *BundleResponse {
	components := make([]ComponentView, 0, len(b.Items))
	for _, item := range b.Items {
		components = append(components, ComponentView{VariantID: item.VariantID, Qty: item.Qty})
	}
	return &BundleResponse{
		ID:                b.ID,
		Shop:              b.Shop,
		Title:             b.Title,
		ExternalProductID: b.ExternalProductID,
		DiscountPercent:   b.DiscountPercent,
		DiscountFixed:     b.DiscountFixed,
		Components:        components,
		CreatedAt:         b.CreatedAt,
	}
}
