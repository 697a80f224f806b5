package dto

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetHTTPStatus_PinnedCodes(t *testing.T) {
	tests := []struct {
		code     string
		expected int
	}{
		{ErrCodeInternal, http.StatusInternalServerError},
		{ErrCodeValidation, http.StatusBadRequest},
		{ErrCodeBadRequest, http.StatusBadRequest},
		{ErrCodeNotFound, http.StatusNotFound},
		{ErrCodeConflict, http.StatusConflict},
		{ErrCodeUnauthorized, http.StatusUnauthorized},
		{ErrCodeForbidden, http.StatusForbidden},
		{ErrCodeReauthRequired, http.StatusUnauthorized},
		{ErrCodePlatformError, http.StatusBadGateway},
		{ErrCodePlatformRateLimited, http.StatusTooManyRequests},
		{ErrCodeJobTimeout, http.StatusGatewayTimeout},
		{ErrCodeRateLimited, http.StatusTooManyRequests},
		{"INVALID_CREDENTIALS", http.StatusUnauthorized},
		{"ACCOUNT_LOCKED", http.StatusUnauthorized},
		{"FILE_TOO_LARGE", http.StatusRequestEntityTooLarge},
		{"RUN_IN_PROGRESS", http.StatusConflict},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.expected, GetHTTPStatus(tt.code))
		})
	}
}

func TestGetHTTPStatus_NamingConventions(t *testing.T) {
	tests := []struct {
		code     string
		expected int
	}{
		{"BUNDLE_NOT_FOUND", http.StatusNotFound},
		{"LISTING_NOT_FOUND", http.StatusNotFound},
		{"IMPORT_NOT_FOUND", http.StatusNotFound},
		{"SHOP_NOT_FOUND", http.StatusNotFound},
		{"LISTING_EXISTS", http.StatusConflict},
		{"EMAIL_EXISTS", http.StatusConflict},
		{"ALREADY_ACTIVE", http.StatusConflict},
		{"DUPLICATE_RULE_ID", http.StatusConflict},
		{"INVALID_SHOP", http.StatusBadRequest},
		{"INVALID_RANGE", http.StatusBadRequest},
		{"INVALID_FILE", http.StatusBadRequest},
		{"EMPTY_COMPONENTS", http.StatusBadRequest},
		{"TOKEN_EXPIRED", http.StatusUnauthorized},
		{"TOKEN_MAX_REFRESH", http.StatusUnauthorized},
		// Business-rule codes with no convention land on 422
		{"PDF_EXPORT_DISABLED", http.StatusUnprocessableEntity},
		{"AMBIGUOUS_DISCOUNT", http.StatusUnprocessableEntity},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.expected, GetHTTPStatus(tt.code))
		})
	}
}

func TestNewErrorResponseWithRequestID(t *testing.T) {
	resp := NewErrorResponseWithRequestID("INVALID_SHOP", "Shop domain is required", "req-123")

	assert.False(t, resp.Success)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "INVALID_SHOP", resp.Error.Code)
	assert.Equal(t, "req-123", resp.Error.RequestID)
	assert.Nil(t, resp.Error.Details)
}

func TestNewValidationErrorResponse(t *testing.T) {
	details := []ValidationDetail{
		{Field: "shop", Message: "This field is required"},
		{Field: "collection_id", Message: "This field is required"},
	}
	resp := NewValidationErrorResponse("Request validation failed", "req-123", details)

	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeValidation, resp.Error.Code)

	raw, err := json.Marshal(resp)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"field":"shop"`)
	assert.Contains(t, string(raw), `"request_id":"req-123"`)
}

func TestNewReauthRequiredResponse(t *testing.T) {
	resp := NewReauthRequiredResponse("demo.myshopify.com", "req-456")

	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeReauthRequired, resp.Error.Code)

	raw, err := json.Marshal(resp)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"shop":"demo.myshopify.com"`)
	assert.Contains(t, string(raw), `"reauth":true`)
}

func TestNewSuccessResponseWithMeta(t *testing.T) {
	resp := NewSuccessResponseWithMeta([]string{"a", "b"}, 41, 2, 20)

	assert.True(t, resp.Success)
	require.NotNil(t, resp.Meta)
	assert.Equal(t, int64(41), resp.Meta.Total)
	assert.Equal(t, 2, resp.Meta.Page)
	assert.Equal(t, 3, resp.Meta.TotalPages)
}
