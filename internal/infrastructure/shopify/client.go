package shopify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/merchdash/backend/internal/domain/integration"
)

// GraphQLRequest is the request body sent to the Admin GraphQL endpoint
type GraphQLRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

// GraphQLError is a top-level error entry in a GraphQL response
type GraphQLError struct {
	Message    string `json:"message"`
	Extensions struct {
		Code string `json:"code"`
	} `json:"extensions"`
}

// graphQLEnvelope is the outer shape of every GraphQL response
type graphQLEnvelope struct {
	Data   json.RawMessage `json:"data"`
	Errors []GraphQLError  `json:"errors"`
}

// throttledCode marks a request rejected by the API cost limiter
const throttledCode = "THROTTLED"

// reauthMarker appears in auth failures the platform reports as
// GraphQL errors instead of an HTTP 401
const reauthMarker = "invalid api key or access token"

// Client executes GraphQL documents against per-shop Admin API endpoints
type Client struct {
	config     *Config
	tokens     TokenSource
	httpClient *http.Client
}

// NewClient creates a Shopify GraphQL client
func NewClient(config *Config, tokens TokenSource) (*Client, error) {
	if config == nil {
		return nil, errors.New("shopify config is required")
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid shopify config: %w", err)
	}
	if tokens == nil {
		return nil, errors.New("shopify token source is required")
	}
	return &Client{
		config: config,
		tokens: tokens,
		httpClient: &http.Client{
			Timeout: time.Duration(config.TimeoutSeconds) * time.Second,
		},
	}, nil
}

// do posts a GraphQL document for a shop and decodes the data payload into out
func (c *Client) do(ctx context.Context, shop, query string, variables map[string]any, out any) error {
	token, err := c.tokens.AccessToken(ctx, shop)
	if err != nil {
		return err
	}

	body, err := json.Marshal(GraphQLRequest{Query: query, Variables: variables})
	if err != nil {
		return fmt.Errorf("failed to marshal graphql request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.EndpointFor(shop), bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Shopify-Access-Token", token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", integration.ErrPlatformUnavailable, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, c.config.MaxResponseBytes))
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized,
		resp.StatusCode == http.StatusPaymentRequired,
		resp.StatusCode == http.StatusForbidden:
		return fmt.Errorf("%w: HTTP %d for shop %s", integration.ErrReauthRequired, resp.StatusCode, shop)
	case resp.StatusCode == http.StatusTooManyRequests:
		return fmt.Errorf("%w: HTTP %d", integration.ErrPlatformRateLimited, resp.StatusCode)
	case resp.StatusCode >= http.StatusInternalServerError:
		return fmt.Errorf("%w: HTTP %d", integration.ErrPlatformUnavailable, resp.StatusCode)
	case resp.StatusCode >= http.StatusBadRequest:
		return fmt.Errorf("%w: HTTP %d", integration.ErrPlatformRequestFailed, resp.StatusCode)
	}

	var envelope graphQLEnvelope
	if err := json.Unmarshal(respBody, &envelope); err != nil {
		return fmt.Errorf("%w: failed to parse response: %v", integration.ErrPlatformInvalidResponse, err)
	}

	if len(envelope.Errors) > 0 {
		return c.mapGraphQLErrors(shop, envelope.Errors)
	}

	if out != nil {
		if len(envelope.Data) == 0 {
			return fmt.Errorf("%w: response has no data", integration.ErrPlatformInvalidResponse)
		}
		if err := json.Unmarshal(envelope.Data, out); err != nil {
			return fmt.Errorf("%w: failed to parse data: %v", integration.ErrPlatformInvalidResponse, err)
		}
	}
	return nil
}

// mapGraphQLErrors converts top-level GraphQL errors into domain sentinels.
// Messages are surfaced verbatim so callers can log what the platform said.
func (c *Client) mapGraphQLErrors(shop string, errs []GraphQLError) error {
	messages := make([]string, 0, len(errs))
	for _, e := range errs {
		if e.Extensions.Code == throttledCode {
			return fmt.Errorf("%w: %s", integration.ErrPlatformRateLimited, e.Message)
		}
		if strings.Contains(strings.ToLower(e.Message), reauthMarker) {
			return fmt.Errorf("%w: shop %s: %s", integration.ErrReauthRequired, shop, e.Message)
		}
		messages = append(messages, e.Message)
	}
	return fmt.Errorf("%w: %s", integration.ErrPlatformRequestFailed, strings.Join(messages, "; "))
}

// isSchemaRejection reports whether err is the platform rejecting a query
// because a field or argument does not exist in the shop's API version
func isSchemaRejection(err error) bool {
	if !errors.Is(err, integration.ErrPlatformRequestFailed) {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "doesn't exist on type") ||
		strings.Contains(msg, "undefinedField") ||
		strings.Contains(msg, "is not defined")
}
