// Package shop manages the installed-shop registry: which stores the
// dashboard may talk to and the credentials it talks with. Install is
// idempotent per domain so a reinstall simply rotates the stored token
// and clears any reauthentication flag.
package shop

import (
	"context"
	"fmt"
	"time"

	"github.com/merchdash/backend/internal/domain/shared"
	"github.com/merchdash/backend/internal/domain/shop"
	"go.uber.org/zap"
)

// InstallRequest registers a shop or rotates its token
type InstallRequest struct {
	Domain      string `json:"domain" binding:"required"`
	AccessToken string `json:"access_token" binding:"required"`
}

// ShopResponse is the outward shape of an installed shop. The access
// token never leaves the service.
type ShopResponse struct {
	ID          string `json:"id"`
	Domain      string `json:"domain"`
	Status      string `json:"status"`
	NeedsReauth bool   `json:"needs_reauth"`
	InstalledAt string `json:"installed_at"`
}

// ListResponse is the active-shop listing
type ListResponse struct {
	Shops []ShopResponse `json:"shops"`
	Total int            `json:"total"`
}

// Service exposes the installed-shop registry to handlers and the
// scheduler
type Service struct {
	shops  shop.Repository
	logger *zap.Logger
}

// NewService creates a new shop registry service
func NewService(shops shop.Repository, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{shops: shops, logger: logger}
}

// Install registers a new shop or, when the domain is already known,
// rotates its access token in place
func (s *Service) Install(ctx context.Context, req InstallRequest) (*ShopResponse, error) {
	domain := shop.NormalizeDomain(req.Domain)

	existing, err := s.shops.FindByDomain(ctx, domain)
	if err == nil && existing != nil {
		if err := existing.RotateToken(req.AccessToken); err != nil {
			return nil, err
		}
		if err := s.shops.Save(ctx, existing); err != nil {
			s.logger.Error("Failed to rotate shop token", zap.String("shop", domain), zap.Error(err))
			return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to save shop")
		}
		s.logger.Info("shop token rotated", zap.String("shop", domain))
		resp := toShopResponse(existing)
		return &resp, nil
	}

	installed, err := shop.NewShop(req.Domain, req.AccessToken)
	if err != nil {
		return nil, err
	}
	if err := s.shops.Save(ctx, installed); err != nil {
		s.logger.Error("Failed to save shop", zap.String("shop", installed.Domain), zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to save shop")
	}

	s.logger.Info("shop installed", zap.String("shop", installed.Domain))

	resp := toShopResponse(installed)
	return &resp, nil
}

// Get returns one installed shop by domain
func (s *Service) Get(ctx context.Context, domain string) (*ShopResponse, error) {
	normalized := shop.NormalizeDomain(domain)
	if normalized == "" {
		return nil, shared.NewDomainError("INVALID_SHOP", "Shop domain is required")
	}

	installed, err := s.shops.FindByDomain(ctx, normalized)
	if err != nil || installed == nil {
		return nil, shared.NewDomainError("SHOP_NOT_FOUND", "Shop is not installed: "+normalized)
	}

	resp := toShopResponse(installed)
	return &resp, nil
}

// ListActive returns every shop whose token is believed valid
func (s *Service) ListActive(ctx context.Context) (*ListResponse, error) {
	shops, err := s.shops.FindAllActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list active shops: %w", err)
	}

	out := make([]ShopResponse, 0, len(shops))
	for _, installed := range shops {
		out = append(out, toShopResponse(installed))
	}
	return &ListResponse{Shops: out, Total: len(out)}, nil
}

// Uninstall removes a shop from the registry. Ingested facts keep their
// shop column and survive for reporting.
func (s *Service) Uninstall(ctx context.Context, domain string) error {
	normalized := shop.NormalizeDomain(domain)
	if normalized == "" {
		return shared.NewDomainError("INVALID_SHOP", "Shop domain is required")
	}

	installed, err := s.shops.FindByDomain(ctx, normalized)
	if err != nil || installed == nil {
		return shared.NewDomainError("SHOP_NOT_FOUND", "Shop is not installed: "+normalized)
	}

	if err := s.shops.Delete(ctx, installed.ID); err != nil {
		s.logger.Error("Failed to delete shop", zap.String("shop", normalized), zap.Error(err))
		return shared.NewDomainError("INTERNAL_ERROR", "Failed to delete shop")
	}

	s.logger.Info("shop uninstalled", zap.String("shop", normalized))
	return nil
}

// MarkReauthRequired flags a shop whose token the platform rejected.
// The flag keeps the scheduler from hammering a dead token.
func (s *Service) MarkReauthRequired(ctx context.Context, domain string) error {
	normalized := shop.NormalizeDomain(domain)
	if normalized == "" {
		return shared.NewDomainError("INVALID_SHOP", "Shop domain is required")
	}

	installed, err := s.shops.FindByDomain(ctx, normalized)
	if err != nil || installed == nil {
		return shared.NewDomainError("SHOP_NOT_FOUND", "Shop is not installed: "+normalized)
	}
	if installed.NeedsReauth() {
		return nil
	}

	installed.MarkReauthRequired()
	if err := s.shops.Save(ctx, installed); err != nil {
		s.logger.Error("Failed to flag shop for reauth", zap.String("shop", normalized), zap.Error(err))
		return shared.NewDomainError("INTERNAL_ERROR", "Failed to save shop")
	}

	s.logger.Warn("shop flagged for reauthentication", zap.String("shop", normalized))
	return nil
}

func toShopResponse(installed *shop.Shop) ShopResponse {
	return ShopResponse{
		ID:          installed.ID.String(),
		Domain:      installed.Domain,
		Status:      installed.Status.String(),
		NeedsReauth: installed.NeedsReauth(),
		InstalledAt: installed.InstalledAt.Format(time.RFC3339),
	}
}
