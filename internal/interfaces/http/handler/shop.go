package handler

import (
	"github.com/gin-gonic/gin"
	appshop "github.com/merchdash/backend/internal/application/shop"
)

// ShopHandler handles installed-shop registry HTTP requests
type ShopHandler struct {
	BaseHandler
	shopService *appshop.Service
}

// NewShopHandler creates a new shop handler
func NewShopHandler(shopService *appshop.Service) *ShopHandler {
	return &ShopHandler{
		shopService: shopService,
	}
}

// Install godoc
// @ID           installShop
// @Summary      Install a shop
// @Description  Register a store and its access token. Reinstalling an already
// @Description  known domain rotates the stored token and clears any
// @Description  reauthentication flag.
// @Tags         shops
// @Accept       json
// @Produce      json
// @Param        request body appshop.InstallRequest true "Shop install request"
// @Success      201 {object} APIResponse[appshop.ShopResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /shops [post]
func (h *ShopHandler) Install(c *gin.Context) {
	var req appshop.InstallRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}

	result, err := h.shopService.Install(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, result)
}

// List godoc
// @ID           listShops
// @Summary      List active shops
// @Description  Get every installed shop whose token is believed valid
// @Tags         shops
// @Produce      json
// @Success      200 {object} APIResponse[appshop.ListResponse]
// @Failure      401 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /shops [get]
func (h *ShopHandler) List(c *gin.Context) {
	result, err := h.shopService.ListActive(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// GetByDomain godoc
// @ID           getShopByDomain
// @Summary      Get a shop by domain
// @Tags         shops
// @Produce      json
// @Param        domain path string true "Shop domain" example(demo.myshopify.com)
// @Success      200 {object} APIResponse[appshop.ShopResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /shops/{domain} [get]
func (h *ShopHandler) GetByDomain(c *gin.Context) {
	result, err := h.shopService.Get(c.Request.Context(), c.Param("domain"))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// Uninstall godoc
// @ID           uninstallShop
// @Summary      Uninstall a shop
// @Description  Remove a shop from the registry. Previously ingested orders and
// @Description  snapshots are kept for reporting.
// @Tags         shops
// @Produce      json
// @Param        domain path string true "Shop domain" example(demo.myshopify.com)
// @Success      204
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /shops/{domain} [delete]
func (h *ShopHandler) Uninstall(c *gin.Context) {
	if err := h.shopService.Uninstall(c.Request.Context(), c.Param("domain")); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}
