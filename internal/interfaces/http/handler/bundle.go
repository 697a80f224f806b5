package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/merchdash/backend/internal/application/bundle"
	"github.com/merchdash/backend/internal/domain/shared"
	"github.com/merchdash/backend/internal/interfaces/http/dto"
	"github.com/shopspring/decimal"
)

// BundleService manages bundle definitions and their sellable capacity
type BundleService interface {
	Create(ctx context.Context, req bundle.CreateRequest) (*bundle.BundleResponse, error)
	Get(ctx context.Context, shop string, id uuid.UUID) (*bundle.BundleResponse, error)
	List(ctx context.Context, shop string, filter shared.Filter) (*bundle.ListResponse, error)
	Delete(ctx context.Context, shop string, id uuid.UUID) error
	Capacity(ctx context.Context, shop string, id uuid.UUID) (*bundle.CapacityResponse, error)
	CapacityForComponents(ctx context.Context, req bundle.CapacityRequest) (*bundle.CapacityResponse, error)
}

// CreateBundleRequest is the body of a bundle creation. Shop may be
// omitted when the session is bound to a shop.
type CreateBundleRequest struct {
	Shop              string                 `json:"shop"`
	Title             string                 `json:"title" binding:"required"`
	ExternalProductID string                 `json:"external_product_id"`
	Components        []bundle.ComponentInput `json:"components" binding:"required,min=1,dive"`
	DiscountPercent   *decimal.Decimal       `json:"discount_percent"`
	DiscountFixed     *decimal.Decimal       `json:"discount_fixed"`
}

// ComponentsCapacityRequest computes capacity for ad-hoc components
// without storing a bundle
type ComponentsCapacityRequest struct {
	Shop       string                  `json:"shop"`
	Components []bundle.ComponentInput `json:"components" binding:"required,min=1,dive"`
}

// BundleHandler handles bundle HTTP requests
type BundleHandler struct {
	BaseHandler
	bundleService BundleService
}

// NewBundleHandler creates a new bundle handler
func NewBundleHandler(bundleService BundleService) *BundleHandler {
	return &BundleHandler{
		bundleService: bundleService,
	}
}

// Create godoc
// @ID           createBundle
// @Summary      Create a bundle
// @Description  Define a fixed set of component variants sold together, with an optional discount
// @Tags         bundles
// @Accept       json
// @Produce      json
// @Param        request body CreateBundleRequest true "Bundle definition"
// @Success      201 {object} APIResponse[bundle.BundleResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /bundles [post]
func (h *BundleHandler) Create(c *gin.Context) {
	var req CreateBundleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}

	shop, ok := h.resolveShop(c, req.Shop)
	if !ok {
		return
	}

	result, err := h.bundleService.Create(c.Request.Context(), bundle.CreateRequest{
		Shop:              shop,
		Title:             req.Title,
		ExternalProductID: req.ExternalProductID,
		Components:        req.Components,
		DiscountPercent:   req.DiscountPercent,
		DiscountFixed:     req.DiscountFixed,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, result)
}

// GetByID godoc
// @ID           getBundleById
// @Summary      Get a bundle
// @Tags         bundles
// @Produce      json
// @Param        id path string true "Bundle ID" format(uuid)
// @Param        shop query string false "Shop domain (defaults to the session's shop)"
// @Success      200 {object} APIResponse[bundle.BundleResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /bundles/{id} [get]
func (h *BundleHandler) GetByID(c *gin.Context) {
	shop, ok := h.requireShop(c)
	if !ok {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid bundle ID")
		return
	}

	result, err := h.bundleService.Get(c.Request.Context(), shop, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// List godoc
// @ID           listBundles
// @Summary      List bundles
// @Tags         bundles
// @Produce      json
// @Param        shop query string false "Shop domain (defaults to the session's shop)"
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Items per page" default(20) maximum(100)
// @Success      200 {object} APIResponse[bundle.ListResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /bundles [get]
func (h *BundleHandler) List(c *gin.Context) {
	shop, ok := h.requireShop(c)
	if !ok {
		return
	}

	var query dto.ListRequest
	if err := c.ShouldBindQuery(&query); err != nil {
		h.BadRequest(c, "Invalid query parameters")
		return
	}

	result, err := h.bundleService.List(c.Request.Context(), shop, shared.Filter{
		Page:     query.Page,
		PageSize: query.PageSize,
		OrderBy:  query.OrderBy,
		OrderDir: query.OrderDir,
		Search:   query.Search,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// Delete godoc
// @ID           deleteBundle
// @Summary      Delete a bundle
// @Tags         bundles
// @Produce      json
// @Param        id path string true "Bundle ID" format(uuid)
// @Param        shop query string false "Shop domain (defaults to the session's shop)"
// @Success      204
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /bundles/{id} [delete]
func (h *BundleHandler) Delete(c *gin.Context) {
	shop, ok := h.requireShop(c)
	if !ok {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid bundle ID")
		return
	}

	if err := h.bundleService.Delete(c.Request.Context(), shop, id); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// Capacity godoc
// @ID           getBundleCapacity
// @Summary      Get a bundle's sellable capacity
// @Description  How many complete bundles current stock supports: the minimum over components of available/qty. Any component at zero makes the capacity zero.
// @Tags         bundles
// @Produce      json
// @Param        id path string true "Bundle ID" format(uuid)
// @Param        shop query string false "Shop domain (defaults to the session's shop)"
// @Success      200 {object} APIResponse[bundle.CapacityResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      502 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /bundles/{id}/capacity [get]
func (h *BundleHandler) Capacity(c *gin.Context) {
	shop, ok := h.requireShop(c)
	if !ok {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid bundle ID")
		return
	}

	result, err := h.bundleService.Capacity(c.Request.Context(), shop, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// CapacityForComponents godoc
// @ID           computeBundleCapacity
// @Summary      Compute capacity for ad-hoc components
// @Description  Evaluate the sellable capacity of a component set without storing a bundle
// @Tags         bundles
// @Accept       json
// @Produce      json
// @Param        request body ComponentsCapacityRequest true "Component set"
// @Success      200 {object} APIResponse[bundle.CapacityResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      502 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /bundles/capacity [post]
func (h *BundleHandler) CapacityForComponents(c *gin.Context) {
	var req ComponentsCapacityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}

	shop, ok := h.resolveShop(c, req.Shop)
	if !ok {
		return
	}

	result, err := h.bundleService.CapacityForComponents(c.Request.Context(), bundle.CapacityRequest{
		Shop:       shop,
		Components: req.Components,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}
