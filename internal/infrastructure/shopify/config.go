package shopify

import (
	"errors"
	"fmt"
)

// Config holds configuration for the Shopify Admin GraphQL API
type Config struct {
	// APIVersion is the Admin API version segment, e.g. "2024-07"
	APIVersion string
	// BaseURL overrides the per-shop https://<shop> origin when set.
	// Leave empty in production; tests point it at a local server.
	BaseURL string
	// TimeoutSeconds is the HTTP request timeout
	TimeoutSeconds int
	// MaxResponseBytes caps how much of a response body is read
	MaxResponseBytes int64
	// PageSize is the default page size for paginated queries
	PageSize int
}

// DefaultAPIVersion is the Admin API version used when none is configured
const DefaultAPIVersion = "2024-07"

// Errors for Shopify configuration
var (
	ErrConfigMissingAPIVersion = errors.New("shopify: api version is required")
)

// NewConfig creates a new Shopify configuration with defaults
func NewConfig(apiVersion string) *Config {
	if apiVersion == "" {
		apiVersion = DefaultAPIVersion
	}
	return &Config{
		APIVersion:       apiVersion,
		TimeoutSeconds:   30,
		MaxResponseBytes: 10 << 20,
		PageSize:         50,
	}
}

// Validate validates the Shopify configuration and applies defaults
func (c *Config) Validate() error {
	if c.APIVersion == "" {
		return ErrConfigMissingAPIVersion
	}
	if c.TimeoutSeconds <= 0 {
		c.TimeoutSeconds = 30
	}
	if c.MaxResponseBytes <= 0 {
		c.MaxResponseBytes = 10 << 20
	}
	if c.PageSize < 1 || c.PageSize > 250 {
		c.PageSize = 50
	}
	return nil
}

// EndpointFor returns the GraphQL endpoint URL for a shop domain
func (c *Config) EndpointFor(shop string) string {
	if c.BaseURL != "" {
		return fmt.Sprintf("%s/admin/api/%s/graphql.json", c.BaseURL, c.APIVersion)
	}
	return fmt.Sprintf("https://%s/admin/api/%s/graphql.json", shop, c.APIVersion)
}
