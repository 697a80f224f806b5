package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/merchdash/backend/internal/domain/integration"
	"github.com/merchdash/backend/internal/domain/shared"
	"github.com/merchdash/backend/internal/interfaces/http/dto"
	"github.com/merchdash/backend/internal/interfaces/http/middleware"
)

// RequestIDKey is the context key for request ID
const RequestIDKey = "X-Request-ID"

// BaseHandler provides common handler utilities
type BaseHandler struct{}

// getRequestID extracts the request ID from the context
func getRequestID(c *gin.Context) string {
	if id := c.GetString(RequestIDKey); id != "" {
		return id
	}
	if id := c.GetHeader(RequestIDKey); id != "" {
		return id
	}
	return ""
}

// getOperatorID extracts the operator ID from JWT claims
func getOperatorID(c *gin.Context) (uuid.UUID, error) {
	operatorID := middleware.GetJWTOperatorID(c)
	if operatorID == "" {
		return uuid.Nil, errors.New("operator ID not found in context")
	}
	return uuid.Parse(operatorID)
}

// ShopContextKey holds the shop a handler already resolved for this
// request, so error responses can name it even when it arrived in the
// request body.
const ShopContextKey = "resolved_shop"

// shopFromContext resolves the shop a request operates on: a shop an
// earlier resolveShop call pinned wins, then an explicit `shop` query
// parameter, then the session's active shop from the JWT claims. Empty
// means the request named no shop at all.
func shopFromContext(c *gin.Context) string {
	if shop := c.GetString(ShopContextKey); shop != "" {
		return shop
	}
	if shop := strings.TrimSpace(c.Query("shop")); shop != "" {
		return shop
	}
	return middleware.GetJWTShop(c)
}

// requireShop is shopFromContext for endpoints that cannot work without
// a shop; it writes the 400 itself and reports whether to continue.
func (h *BaseHandler) requireShop(c *gin.Context) (string, bool) {
	return h.resolveShop(c, "")
}

// resolveShop resolves a shop for endpoints that also accept one in the
// request body: the explicit value wins, then query parameter, then the
// session's active shop. Writes the 400 itself when nothing names a shop.
func (h *BaseHandler) resolveShop(c *gin.Context, explicit string) (string, bool) {
	shop := strings.TrimSpace(explicit)
	if shop == "" {
		shop = shopFromContext(c)
	}
	if shop == "" {
		h.Error(c, http.StatusBadRequest, "INVALID_SHOP",
			"Shop domain is required: pass ?shop= or log in with an active shop")
		return "", false
	}
	c.Set(ShopContextKey, shop)
	return shop, true
}

// Success sends a success response
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// SuccessWithMeta sends a success response with pagination meta
func (h *BaseHandler) SuccessWithMeta(c *gin.Context, data any, total int64, page, pageSize int) {
	c.JSON(http.StatusOK, dto.NewSuccessResponseWithMeta(data, total, page, pageSize))
}

// Created sends a 201 created response
func (h *BaseHandler) Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, dto.NewSuccessResponse(data))
}

// NoContent sends a 204 no content response
func (h *BaseHandler) NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// Error sends an error response with the given status code
func (h *BaseHandler) Error(c *gin.Context, statusCode int, code, message string) {
	requestID := getRequestID(c)
	c.JSON(statusCode, dto.NewErrorResponseWithRequestID(code, message, requestID))
}

// BadRequest sends a 400 bad request response
func (h *BaseHandler) BadRequest(c *gin.Context, message string) {
	h.Error(c, http.StatusBadRequest, dto.ErrCodeBadRequest, message)
}

// NotFound sends a 404 not found response
func (h *BaseHandler) NotFound(c *gin.Context, message string) {
	h.Error(c, http.StatusNotFound, dto.ErrCodeNotFound, message)
}

// Unauthorized sends a 401 unauthorized response
func (h *BaseHandler) Unauthorized(c *gin.Context, message string) {
	h.Error(c, http.StatusUnauthorized, dto.ErrCodeUnauthorized, message)
}

// Forbidden sends a 403 forbidden response
func (h *BaseHandler) Forbidden(c *gin.Context, message string) {
	h.Error(c, http.StatusForbidden, dto.ErrCodeForbidden, message)
}

// Conflict sends a 409 conflict response
func (h *BaseHandler) Conflict(c *gin.Context, message string) {
	h.Error(c, http.StatusConflict, dto.ErrCodeConflict, message)
}

// InternalError sends a 500 internal server error response
func (h *BaseHandler) InternalError(c *gin.Context, message string) {
	h.Error(c, http.StatusInternalServerError, dto.ErrCodeInternal, message)
}

// ValidationError sends a 400 validation error response with details
func (h *BaseHandler) ValidationError(c *gin.Context, details []dto.ValidationDetail) {
	requestID := getRequestID(c)
	c.JSON(http.StatusBadRequest, dto.NewValidationErrorResponse(
		"Request validation failed",
		requestID,
		details,
	))
}

// BindError converts a gin binding failure into the validation envelope
func (h *BaseHandler) BindError(c *gin.Context, err error) {
	middleware.HandleValidationError(c, err)
}

// HandleError converts service errors to HTTP responses. Platform
// sentinels get dedicated envelopes: a rejected token becomes the
// REAUTH_REQUIRED directive for the shop this request was scoped to,
// throttling and job timeouts map to their own codes, and any other
// platform failure is surfaced verbatim as PLATFORM_ERROR. Domain error
// codes pass through with a status derived from the code.
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}

	requestID := getRequestID(c)

	switch {
	case errors.Is(err, integration.ErrReauthRequired):
		c.JSON(http.StatusUnauthorized, dto.NewReauthRequiredResponse(shopFromContext(c), requestID))
		return
	case errors.Is(err, integration.ErrPlatformRateLimited):
		c.JSON(http.StatusTooManyRequests, dto.NewErrorResponseWithRequestID(
			dto.ErrCodePlatformRateLimited,
			"The commerce platform is throttling requests. Retry shortly.",
			requestID,
		))
		return
	case errors.Is(err, integration.ErrJobTimeout):
		c.JSON(http.StatusGatewayTimeout, dto.NewErrorResponseWithRequestID(
			dto.ErrCodeJobTimeout,
			err.Error(),
			requestID,
		))
		return
	}

	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		statusCode := dto.GetHTTPStatus(domainErr.Code)
		c.JSON(statusCode, dto.NewErrorResponseWithRequestID(domainErr.Code, domainErr.Message, requestID))
		return
	}

	if errors.Is(err, integration.ErrPlatformUnavailable) ||
		errors.Is(err, integration.ErrPlatformRequestFailed) ||
		errors.Is(err, integration.ErrPlatformInvalidResponse) {
		c.JSON(http.StatusBadGateway, dto.NewErrorResponseWithRequestID(
			dto.ErrCodePlatformError,
			err.Error(),
			requestID,
		))
		return
	}

	c.JSON(http.StatusInternalServerError, dto.NewErrorResponseWithRequestID(
		dto.ErrCodeInternal,
		"An unexpected error occurred",
		requestID,
	))
}
