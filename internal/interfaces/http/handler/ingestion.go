package handler

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/merchdash/backend/internal/application/ingestion"
)

// OrdersRunner triggers an incremental paid-orders pull
type OrdersRunner interface {
	Run(ctx context.Context, req ingestion.OrdersRunRequest) (*ingestion.OrdersRunResult, error)
}

// SnapshotRunner captures a point-in-time inventory snapshot
type SnapshotRunner interface {
	Run(ctx context.Context, req ingestion.SnapshotRunRequest) (*ingestion.SnapshotRunResult, error)
}

// IngestionStatusProvider reports how much data a shop has locally
type IngestionStatusProvider interface {
	Status(ctx context.Context, shop string) (*ingestion.StatusResponse, error)
}

// RunOrdersRequest is the body of an orders ingestion run. Shop may be
// omitted when the session is bound to a shop.
type RunOrdersRequest struct {
	Shop  string     `json:"shop"`
	Since *time.Time `json:"since"`
	Days  int        `json:"days" binding:"omitempty,min=1,max=3650"`
}

// RunSnapshotRequest is the body of an inventory snapshot run
type RunSnapshotRequest struct {
	Shop string `json:"shop"`
}

// IngestionHandler handles data ingestion HTTP requests
type IngestionHandler struct {
	BaseHandler
	orders    OrdersRunner
	snapshots SnapshotRunner
	status    IngestionStatusProvider
}

// NewIngestionHandler creates a new ingestion handler
func NewIngestionHandler(orders OrdersRunner, snapshots SnapshotRunner, status IngestionStatusProvider) *IngestionHandler {
	return &IngestionHandler{
		orders:    orders,
		snapshots: snapshots,
		status:    status,
	}
}

// RunOrders godoc
// @ID           runOrdersIngestion
// @Summary      Pull paid orders incrementally
// @Description  Fetch paid orders and line items since the shop's watermark (or an explicit date) and upsert them locally. The run is idempotent and advances the watermark only on success.
// @Tags         ingestion
// @Accept       json
// @Produce      json
// @Param        request body RunOrdersRequest true "Run parameters"
// @Success      200 {object} APIResponse[ingestion.OrdersRunResult]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Failure      502 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /ingestion/orders/run [post]
func (h *IngestionHandler) RunOrders(c *gin.Context) {
	var req RunOrdersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}

	shop, ok := h.resolveShop(c, req.Shop)
	if !ok {
		return
	}

	result, err := h.orders.Run(c.Request.Context(), ingestion.OrdersRunRequest{
		Shop:  shop,
		Since: req.Since,
		Days:  req.Days,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// RunSnapshot godoc
// @ID           runInventorySnapshot
// @Summary      Capture an inventory snapshot
// @Description  Record today's on-hand quantity for every variant of the shop. Rerunning on the same day overwrites that day's observation.
// @Tags         ingestion
// @Accept       json
// @Produce      json
// @Param        request body RunSnapshotRequest true "Run parameters"
// @Success      200 {object} APIResponse[ingestion.SnapshotRunResult]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Failure      502 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /ingestion/snapshots/run [post]
func (h *IngestionHandler) RunSnapshot(c *gin.Context) {
	var req RunSnapshotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}

	shop, ok := h.resolveShop(c, req.Shop)
	if !ok {
		return
	}

	result, err := h.snapshots.Run(c.Request.Context(), ingestion.SnapshotRunRequest{Shop: shop})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// Status godoc
// @ID           getIngestionStatus
// @Summary      Get ingestion status for a shop
// @Description  Report the shop's watermark, order line count and snapshot coverage
// @Tags         ingestion
// @Produce      json
// @Param        shop query string false "Shop domain (defaults to the session's shop)"
// @Success      200 {object} APIResponse[ingestion.StatusResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /ingestion/status [get]
func (h *IngestionHandler) Status(c *gin.Context) {
	shop, ok := h.requireShop(c)
	if !ok {
		return
	}

	result, err := h.status.Status(c.Request.Context(), shop)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}
