package handler

import (
	"context"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/merchdash/backend/internal/application/ingestion"
	"github.com/merchdash/backend/internal/domain/integration"
	"github.com/merchdash/backend/internal/domain/shared"
	"github.com/merchdash/backend/internal/interfaces/http/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockOrdersRunner is a mock implementation of OrdersRunner
type MockOrdersRunner struct {
	mock.Mock
}

func (m *MockOrdersRunner) Run(ctx context.Context, req ingestion.OrdersRunRequest) (*ingestion.OrdersRunResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ingestion.OrdersRunResult), args.Error(1)
}

// MockSnapshotRunner is a mock implementation of SnapshotRunner
type MockSnapshotRunner struct {
	mock.Mock
}

func (m *MockSnapshotRunner) Run(ctx context.Context, req ingestion.SnapshotRunRequest) (*ingestion.SnapshotRunResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ingestion.SnapshotRunResult), args.Error(1)
}

// MockIngestionStatusProvider is a mock implementation of IngestionStatusProvider
type MockIngestionStatusProvider struct {
	mock.Mock
}

func (m *MockIngestionStatusProvider) Status(ctx context.Context, shop string) (*ingestion.StatusResponse, error) {
	args := m.Called(ctx, shop)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ingestion.StatusResponse), args.Error(1)
}

func setupIngestionRouter(orders *MockOrdersRunner, snapshots *MockSnapshotRunner, status *MockIngestionStatusProvider, sessionShop string) *gin.Engine {
	gin.SetMode(gin.TestMode)

	h := NewIngestionHandler(orders, snapshots, status)

	router := gin.New()
	if sessionShop != "" {
		router.Use(func(c *gin.Context) {
			c.Set(middleware.JWTShopKey, sessionShop)
		})
	}
	api := router.Group("/api/v1")
	{
		api.POST("/ingestion/orders/run", h.RunOrders)
		api.POST("/ingestion/snapshots/run", h.RunSnapshot)
		api.GET("/ingestion/status", h.Status)
	}
	return router
}

func TestIngestionHandler_RunOrders_Success(t *testing.T) {
	orders := new(MockOrdersRunner)
	orders.On("Run", mock.Anything, ingestion.OrdersRunRequest{Shop: "demo.myshopify.com", Days: 30}).
		Return(&ingestion.OrdersRunResult{
			Shop:            "demo.myshopify.com",
			SinceISO:        "2026-07-26",
			OrdersProcessed: 42,
			LinesProcessed:  117,
			DurationMS:      850,
		}, nil)

	router := setupIngestionRouter(orders, nil, nil, "")
	w := performOperatorRequest(t, router, http.MethodPost, "/api/v1/ingestion/orders/run", gin.H{
		"shop": "demo.myshopify.com",
		"days": 30,
	})

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	data := decodeEnvelope(t, w)["data"].(map[string]any)
	assert.Equal(t, float64(42), data["orders_processed"])
	assert.Equal(t, float64(117), data["lines_processed"])
	assert.Equal(t, "2026-07-26", data["since_iso"])

	orders.AssertExpectations(t)
}

func TestIngestionHandler_RunOrders_ExplicitSince(t *testing.T) {
	since := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)

	orders := new(MockOrdersRunner)
	orders.On("Run", mock.Anything, mock.MatchedBy(func(req ingestion.OrdersRunRequest) bool {
		return req.Shop == "demo.myshopify.com" && req.Since != nil && req.Since.Equal(since)
	})).Return(&ingestion.OrdersRunResult{Shop: "demo.myshopify.com", SinceISO: "2026-08-01"}, nil)

	router := setupIngestionRouter(orders, nil, nil, "")
	w := performOperatorRequest(t, router, http.MethodPost, "/api/v1/ingestion/orders/run", gin.H{
		"shop":  "demo.myshopify.com",
		"since": since.Format(time.RFC3339),
	})

	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
	orders.AssertExpectations(t)
}

func TestIngestionHandler_RunOrders_ShopFromSession(t *testing.T) {
	orders := new(MockOrdersRunner)
	orders.On("Run", mock.Anything, ingestion.OrdersRunRequest{Shop: "session.myshopify.com"}).
		Return(&ingestion.OrdersRunResult{Shop: "session.myshopify.com"}, nil)

	router := setupIngestionRouter(orders, nil, nil, "session.myshopify.com")
	w := performOperatorRequest(t, router, http.MethodPost, "/api/v1/ingestion/orders/run", gin.H{})

	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
	orders.AssertExpectations(t)
}

func TestIngestionHandler_RunOrders_MissingShop(t *testing.T) {
	router := setupIngestionRouter(new(MockOrdersRunner), nil, nil, "")
	w := performOperatorRequest(t, router, http.MethodPost, "/api/v1/ingestion/orders/run", gin.H{})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "INVALID_SHOP")
}

func TestIngestionHandler_RunOrders_InvalidDays(t *testing.T) {
	router := setupIngestionRouter(new(MockOrdersRunner), nil, nil, "")

	for _, days := range []int{-1, 4000} {
		w := performOperatorRequest(t, router, http.MethodPost, "/api/v1/ingestion/orders/run", gin.H{
			"shop": "demo.myshopify.com",
			"days": days,
		})
		assert.Equal(t, http.StatusBadRequest, w.Code, "days=%d", days)
	}
}

func TestIngestionHandler_RunOrders_RunInProgress(t *testing.T) {
	orders := new(MockOrdersRunner)
	orders.On("Run", mock.Anything, mock.Anything).
		Return(nil, shared.NewDomainError("RUN_IN_PROGRESS", "An ingestion run is already in progress for this shop"))

	router := setupIngestionRouter(orders, nil, nil, "")
	w := performOperatorRequest(t, router, http.MethodPost, "/api/v1/ingestion/orders/run", gin.H{
		"shop": "demo.myshopify.com",
	})

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "RUN_IN_PROGRESS")
}

func TestIngestionHandler_RunOrders_ReauthRequired(t *testing.T) {
	orders := new(MockOrdersRunner)
	orders.On("Run", mock.Anything, mock.Anything).
		Return(nil, fmt.Errorf("orders pull: %w", integration.ErrReauthRequired))

	router := setupIngestionRouter(orders, nil, nil, "")
	w := performOperatorRequest(t, router, http.MethodPost, "/api/v1/ingestion/orders/run", gin.H{
		"shop": "demo.myshopify.com",
	})

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "REAUTH_REQUIRED")
	assert.Contains(t, w.Body.String(), "demo.myshopify.com")
}

func TestIngestionHandler_RunSnapshot_Success(t *testing.T) {
	takenAt := time.Date(2026, 8, 25, 2, 0, 0, 0, time.UTC)

	snapshots := new(MockSnapshotRunner)
	snapshots.On("Run", mock.Anything, ingestion.SnapshotRunRequest{Shop: "demo.myshopify.com"}).
		Return(&ingestion.SnapshotRunResult{
			Shop:             "demo.myshopify.com",
			TakenAt:          takenAt,
			VariantsCaptured: 320,
			DurationMS:       412,
		}, nil)

	router := setupIngestionRouter(nil, snapshots, nil, "")
	w := performOperatorRequest(t, router, http.MethodPost, "/api/v1/ingestion/snapshots/run", gin.H{
		"shop": "demo.myshopify.com",
	})

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	data := decodeEnvelope(t, w)["data"].(map[string]any)
	assert.Equal(t, float64(320), data["variants_captured"])

	snapshots.AssertExpectations(t)
}

func TestIngestionHandler_RunSnapshot_PlatformDown(t *testing.T) {
	snapshots := new(MockSnapshotRunner)
	snapshots.On("Run", mock.Anything, mock.Anything).
		Return(nil, fmt.Errorf("inventory pull: %w", integration.ErrPlatformUnavailable))

	router := setupIngestionRouter(nil, snapshots, nil, "")
	w := performOperatorRequest(t, router, http.MethodPost, "/api/v1/ingestion/snapshots/run", gin.H{
		"shop": "demo.myshopify.com",
	})

	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Contains(t, w.Body.String(), "PLATFORM_ERROR")
}

func TestIngestionHandler_Status_Success(t *testing.T) {
	updated := time.Date(2026, 8, 24, 23, 0, 0, 0, time.UTC)

	status := new(MockIngestionStatusProvider)
	status.On("Status", mock.Anything, "demo.myshopify.com").
		Return(&ingestion.StatusResponse{
			Shop:            "demo.myshopify.com",
			SinceISO:        "2026-08-20",
			CursorUpdatedAt: &updated,
			OrderLines:      1543,
			Snapshots:       9640,
		}, nil)

	router := setupIngestionRouter(nil, nil, status, "")
	w := performOperatorRequest(t, router, http.MethodGet, "/api/v1/ingestion/status?shop=demo.myshopify.com", nil)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	data := decodeEnvelope(t, w)["data"].(map[string]any)
	assert.Equal(t, "2026-08-20", data["since_iso"])
	assert.Equal(t, float64(1543), data["order_lines"])

	status.AssertExpectations(t)
}

func TestIngestionHandler_Status_MissingShop(t *testing.T) {
	router := setupIngestionRouter(nil, nil, new(MockIngestionStatusProvider), "")
	w := performOperatorRequest(t, router, http.MethodGet, "/api/v1/ingestion/status", nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "INVALID_SHOP")
}
