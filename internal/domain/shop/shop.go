package shop

import (
	"regexp"
	"strings"
	"time"

	"github.com/merchdash/backend/internal/domain/shared"
)

// Status represents the installation status of a shop
type Status string

const (
	// StatusActive indicates the stored access token was accepted on last use
	StatusActive Status = "ACTIVE"
	// StatusReauthRequired indicates the platform rejected the stored token
	// and the operator must reinstall the app
	StatusReauthRequired Status = "REAUTH_REQUIRED"
)

// IsValid returns true if the status is valid
func (s Status) IsValid() bool {
	switch s {
	case StatusActive, StatusReauthRequired:
		return true
	default:
		return false
	}
}

// String returns the string representation of Status
func (s Status) String() string {
	return string(s)
}

var domainRegex = regexp.MustCompile(`^[a-z0-9][a-z0-9\-]*\.myshopify\.com$`)

// Shop represents an installed store. Its domain is the tenancy key used by
// every shop-scoped table and by the platform adapter for credentials.
type Shop struct {
	shared.BaseAggregateRoot
	Domain      string    `gorm:"uniqueIndex;not null;size:255"`
	AccessToken string    `gorm:"not null"`
	Status      Status    `gorm:"not null;default:'ACTIVE';size:32"`
	InstalledAt time.Time `gorm:"not null"`
}

// NewShop creates a newly installed shop with an access token
func NewShop(domain, accessToken string) (*Shop, error) {
	domain = NormalizeDomain(domain)
	if err := validateDomain(domain); err != nil {
		return nil, err
	}
	if accessToken == "" {
		return nil, shared.NewDomainError("INVALID_ACCESS_TOKEN", "Access token cannot be empty")
	}

	s := &Shop{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Domain:            domain,
		AccessToken:       accessToken,
		Status:            StatusActive,
		InstalledAt:       time.Now(),
	}

	s.AddDomainEvent(NewShopInstalledEvent(s))

	return s, nil
}

// RotateToken replaces the access token and clears any reauth flag
func (s *Shop) RotateToken(accessToken string) error {
	if accessToken == "" {
		return shared.NewDomainError("INVALID_ACCESS_TOKEN", "Access token cannot be empty")
	}

	s.AccessToken = accessToken
	s.Status = StatusActive
	s.UpdatedAt = time.Now()
	s.IncrementVersion()

	s.AddDomainEvent(NewShopTokenRotatedEvent(s))

	return nil
}

// MarkReauthRequired flags the shop after the platform rejected its token.
// Marking an already flagged shop is a no-op so repeated rejections do not
// pile up events.
func (s *Shop) MarkReauthRequired() {
	if s.Status == StatusReauthRequired {
		return
	}

	s.Status = StatusReauthRequired
	s.UpdatedAt = time.Now()
	s.IncrementVersion()

	s.AddDomainEvent(NewShopReauthRequiredEvent(s))
}

// NeedsReauth returns true if the shop must reinstall before platform calls
func (s *Shop) NeedsReauth() bool {
	return s.Status == StatusReauthRequired
}

// IsActive returns true if the shop's token is believed valid
func (s *Shop) IsActive() bool {
	return s.Status == StatusActive
}

// NormalizeDomain lowercases and trims a shop domain
func NormalizeDomain(domain string) string {
	return strings.ToLower(strings.TrimSpace(domain))
}

func validateDomain(domain string) error {
	if domain == "" {
		return shared.NewDomainError("INVALID_SHOP_DOMAIN", "Shop domain cannot be empty")
	}
	if len(domain) > 255 {
		return shared.NewDomainError("INVALID_SHOP_DOMAIN", "Shop domain cannot exceed 255 characters")
	}
	if !domainRegex.MatchString(domain) {
		return shared.NewDomainError("INVALID_SHOP_DOMAIN", "Shop domain must be a myshopify.com domain")
	}
	return nil
}
