package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/merchdash/backend/internal/application/listing"
	"github.com/merchdash/backend/internal/domain/shared"
	"github.com/merchdash/backend/internal/interfaces/http/dto"
)

// CreateListingRequest is the body of a combined listing registration.
// Shop may be omitted when the session is bound to a shop.
type CreateListingRequest struct {
	Shop              string               `json:"shop"`
	ExternalProductID string               `json:"external_product_id" binding:"required"`
	Title             string               `json:"title"`
	Children          []listing.ChildInput `json:"children" binding:"omitempty,dive"`
}

// ListingHandler handles combined listing HTTP requests
type ListingHandler struct {
	BaseHandler
	listingService *listing.Service
}

// NewListingHandler creates a new listing handler
func NewListingHandler(listingService *listing.Service) *ListingHandler {
	return &ListingHandler{
		listingService: listingService,
	}
}

// Create godoc
// @ID           createListing
// @Summary      Register a combined listing
// @Description  Record a parent product that groups several catalog products, with the option values each child occupies
// @Tags         listings
// @Accept       json
// @Produce      json
// @Param        request body CreateListingRequest true "Combined listing definition"
// @Success      201 {object} APIResponse[listing.ParentResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /listings [post]
func (h *ListingHandler) Create(c *gin.Context) {
	var req CreateListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}

	shop, ok := h.resolveShop(c, req.Shop)
	if !ok {
		return
	}

	result, err := h.listingService.Create(c.Request.Context(), listing.CreateRequest{
		Shop:              shop,
		ExternalProductID: req.ExternalProductID,
		Title:             req.Title,
		Children:          req.Children,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, result)
}

// GetByID godoc
// @ID           getListingById
// @Summary      Get a combined listing
// @Tags         listings
// @Produce      json
// @Param        id path string true "Listing ID" format(uuid)
// @Param        shop query string false "Shop domain (defaults to the session's shop)"
// @Success      200 {object} APIResponse[listing.ParentResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /listings/{id} [get]
func (h *ListingHandler) GetByID(c *gin.Context) {
	shop, ok := h.requireShop(c)
	if !ok {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid listing ID")
		return
	}

	result, err := h.listingService.Get(c.Request.Context(), shop, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// Lookup godoc
// @ID           lookupListing
// @Summary      Look up the combined listing of a platform product
// @Description  Resolve the combined listing registered for a platform product id. The id goes in the query because platform ids contain slashes.
// @Tags         listings
// @Produce      json
// @Param        product_id query string true "Platform product ID"
// @Param        shop query string false "Shop domain (defaults to the session's shop)"
// @Success      200 {object} APIResponse[listing.ParentResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /listings/lookup [get]
func (h *ListingHandler) Lookup(c *gin.Context) {
	shop, ok := h.requireShop(c)
	if !ok {
		return
	}

	result, err := h.listingService.GetByExternalProductID(c.Request.Context(), shop, c.Query("product_id"))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// List godoc
// @ID           listListings
// @Summary      List combined listings
// @Tags         listings
// @Produce      json
// @Param        shop query string false "Shop domain (defaults to the session's shop)"
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Items per page" default(20) maximum(100)
// @Success      200 {object} APIResponse[listing.ListResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /listings [get]
func (h *ListingHandler) List(c *gin.Context) {
	shop, ok := h.requireShop(c)
	if !ok {
		return
	}

	var query dto.ListRequest
	if err := c.ShouldBindQuery(&query); err != nil {
		h.BadRequest(c, "Invalid query parameters")
		return
	}

	result, err := h.listingService.List(c.Request.Context(), shop, shared.Filter{
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
// @ID           deleteListing
// @Summary      Delete a combined listing
// @Tags         listings
// @Produce      json
// @Param        id path string true "Listing ID" format(uuid)
// @Param        shop query string false "Shop domain (defaults to the session's shop)"
// @Success      204
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /listings/{id} [delete]
func (h *ListingHandler) Delete(c *gin.Context) {
	shop, ok := h.requireShop(c)
	if !ok {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid listing ID")
		return
	}

	if err := h.listingService.Delete(c.Request.Context(), shop, id); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}
