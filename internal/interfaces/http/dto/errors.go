package dto

import (
	"net/http"
	"strings"
)

// Envelope error codes emitted directly by the HTTP layer. Application
// services surface their own domain codes (INVALID_SHOP, BUNDLE_NOT_FOUND,
// ...) which pass through to the envelope unchanged; this file only maps
// codes to HTTP statuses.

// General error codes
const (
	// ErrCodeInternal is used for internal server errors
	ErrCodeInternal = "INTERNAL_ERROR"
	// ErrCodeValidation is used when request binding or validation fails
	ErrCodeValidation = "VALIDATION_ERROR"
	// ErrCodeBadRequest is used for malformed requests
	ErrCodeBadRequest = "BAD_REQUEST"
	// ErrCodeNotFound is used when a resource is not found
	ErrCodeNotFound = "NOT_FOUND"
	// ErrCodeConflict is used for resource conflicts
	ErrCodeConflict = "CONFLICT"
)

// Authentication error codes
const (
	// ErrCodeUnauthorized is used when authentication is required but missing or invalid
	ErrCodeUnauthorized = "UNAUTHORIZED"
	// ErrCodeForbidden is used when the operator lacks permission
	ErrCodeForbidden = "FORBIDDEN"
	// ErrCodeTokenExpired is used when the auth token has expired
	ErrCodeTokenExpired = "TOKEN_EXPIRED"
	// ErrCodeTokenInvalid is used when the auth token is invalid
	ErrCodeTokenInvalid = "TOKEN_INVALID"
	// ErrCodeTokenRevoked is used when the auth token was blacklisted
	ErrCodeTokenRevoked = "TOKEN_REVOKED"
)

// Platform error codes
const (
	// ErrCodeReauthRequired signals a rejected shop access token; the
	// envelope carries ReauthDetails so the UI can redirect
	ErrCodeReauthRequired = "REAUTH_REQUIRED"
	// ErrCodePlatformError is used when an outbound platform call failed;
	// the platform's message is surfaced verbatim
	ErrCodePlatformError = "PLATFORM_ERROR"
	// ErrCodePlatformRateLimited is used when the platform throttled us
	ErrCodePlatformRateLimited = "PLATFORM_RATE_LIMITED"
	// ErrCodeJobTimeout is used when a reorder job exceeded its poll budget
	ErrCodeJobTimeout = "JOB_TIMEOUT"
)

// Rate limiting error codes
const (
	// ErrCodeRateLimited is used when our own rate limit is exceeded
	ErrCodeRateLimited = "RATE_LIMITED"
)

// errorCodeStatus pins codes the suffix rules below would misclassify
// or that deserve a specific status.
var errorCodeStatus = map[string]int{
	ErrCodeInternal:   http.StatusInternalServerError,
	ErrCodeValidation: http.StatusBadRequest,
	ErrCodeBadRequest: http.StatusBadRequest,
	ErrCodeNotFound:   http.StatusNotFound,
	ErrCodeConflict:   http.StatusConflict,

	ErrCodeUnauthorized: http.StatusUnauthorized,
	ErrCodeForbidden:    http.StatusForbidden,

	ErrCodeReauthRequired:      http.StatusUnauthorized,
	ErrCodePlatformError:       http.StatusBadGateway,
	ErrCodePlatformRateLimited: http.StatusTooManyRequests,
	ErrCodeJobTimeout:          http.StatusGatewayTimeout,
	ErrCodeRateLimited:         http.StatusTooManyRequests,

	// Login failures are 401 even though the codes look like validation
	"INVALID_CREDENTIALS": http.StatusUnauthorized,
	"ACCOUNT_LOCKED":      http.StatusUnauthorized,
	"ACCOUNT_DEACTIVATED": http.StatusUnauthorized,
	"ACCOUNT_INACTIVE":    http.StatusUnauthorized,

	// Upload and run guards
	"FILE_TOO_LARGE":  http.StatusRequestEntityTooLarge,
	"RUN_IN_PROGRESS": http.StatusConflict,

	"CONCURRENCY_CONFLICT": http.StatusConflict,
	"INVALID_STATE":        http.StatusUnprocessableEntity,
	"DB_ERROR":             http.StatusInternalServerError,
}

// GetHTTPStatus maps a domain error code to an HTTP status. Codes not
// pinned above are classified by their naming convention; anything else
// is treated as a business-rule violation (422).
func GetHTTPStatus(code string) int {
	if status, ok := errorCodeStatus[code]; ok {
		return status
	}
	switch {
	case strings.HasSuffix(code, "_NOT_FOUND"):
		return http.StatusNotFound
	case strings.HasSuffix(code, "_EXISTS"), strings.HasSuffix(code, "_CONFLICT"),
		strings.HasPrefix(code, "ALREADY_"), strings.HasPrefix(code, "DUPLICATE_"):
		return http.StatusConflict
	case strings.HasPrefix(code, "INVALID_"), strings.HasPrefix(code, "EMPTY_"),
		strings.HasPrefix(code, "MISSING_"):
		return http.StatusBadRequest
	case strings.HasPrefix(code, "TOKEN_"):
		return http.StatusUnauthorized
	default:
		return http.StatusUnprocessableEntity
	}
}
