package shop

import (
	"github.com/merchdash/backend/internal/domain/shared"
)

// Aggregate type constant for Shop
const AggregateTypeShop = "Shop"

// Shop domain event types
const (
	EventTypeShopInstalled      = "ShopInstalled"
	EventTypeShopTokenRotated   = "ShopTokenRotated"
	EventTypeShopReauthRequired = "ShopReauthRequired"
)

// ShopInstalledEvent is published when a shop is installed
type ShopInstalledEvent struct {
	shared.BaseDomainEvent
	Domain string `json:"domain"`
}

// NewShopInstalledEvent creates a new ShopInstalledEvent
func NewShopInstalledEvent(s *Shop) *ShopInstalledEvent {
	return &ShopInstalledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeShopInstalled, AggregateTypeShop, s.ID.String(), s.Domain),
		Domain:          s.Domain,
	}
}

// ShopTokenRotatedEvent is published when a shop's access token is replaced
type ShopTokenRotatedEvent struct {
	shared.BaseDomainEvent
	Domain string `json:"domain"`
}

// NewShopTokenRotatedEvent creates a new ShopTokenRotatedEvent
func NewShopTokenRotatedEvent(s *Shop) *ShopTokenRotatedEvent {
	return &ShopTokenRotatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeShopTokenRotated, AggregateTypeShop, s.ID.String(), s.Domain),
		Domain:          s.Domain,
	}
}

// ShopReauthRequiredEvent is published when the platform rejects a shop's token
type ShopReauthRequiredEvent struct {
	shared.BaseDomainEvent
	Domain string `json:"domain"`
}

// NewShopReauthRequiredEvent creates a new ShopReauthRequiredEvent
func NewShopReauthRequiredEvent(s *Shop) *ShopReauthRequiredEvent {
	return &ShopReauthRequiredEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeShopReauthRequired, AggregateTypeShop, s.ID.String(), s.Domain),
		Domain:          s.Domain,
	}
}
