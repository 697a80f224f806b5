package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/merchdash/backend/internal/application/ranking"
)

// RankingService drives collection reordering runs and rule persistence
type RankingService interface {
	Run(ctx context.Context, req ranking.RunRequest) (*ranking.RunResult, error)
	RunAll(ctx context.Context, req ranking.RunAllRequest) (*ranking.RunAllResult, error)
	GetRules(ctx context.Context, shop, collectionID string) (*ranking.RulesResponse, error)
	SaveRules(ctx context.Context, shop, collectionID string, names []string) (*ranking.RulesResponse, error)
	ListCollections(ctx context.Context, shop, cursor string) (*ranking.CollectionListResponse, error)
}

// RunRankingRequest is the body of a single-collection ranking run.
// Shop may be omitted when the session is bound to a shop. TopN nil
// falls back to the configured default; zero is honored.
type RunRankingRequest struct {
	Shop         string   `json:"shop"`
	CollectionID string   `json:"collection_id" binding:"required"`
	TopN         *int     `json:"top_n" binding:"omitempty,min=0"`
	DryRun       bool     `json:"dry_run"`
	Rules        []string `json:"rules"`
}

// RunAllRankingRequest is the body of a batch ranking run over many
// collections
type RunAllRankingRequest struct {
	Shop   string `json:"shop"`
	Limit  int    `json:"limit" binding:"omitempty,min=1,max=500"`
	TopN   *int   `json:"top_n" binding:"omitempty,min=0"`
	DryRun bool   `json:"dry_run"`
}

// RankingHandler handles collection ranking HTTP requests
type RankingHandler struct {
	BaseHandler
	rankingService RankingService
}

// NewRankingHandler creates a new ranking handler
func NewRankingHandler(rankingService RankingService) *RankingHandler {
	return &RankingHandler{
		rankingService: rankingService,
	}
}

// Run godoc
// @ID           runRanking
// @Summary      Rank one collection
// @Description  Recompute the rule-driven order of a collection and push the moves to the platform. With dry_run the computed order is returned without touching the platform.
// @Tags         ranking
// @Accept       json
// @Produce      json
// @Param        request body RunRankingRequest true "Run parameters"
// @Success      200 {object} APIResponse[ranking.RunResult]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      502 {object} ErrorResponse
// @Failure      504 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /ranking/run [post]
func (h *RankingHandler) Run(c *gin.Context) {
	var req RunRankingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}

	shop, ok := h.resolveShop(c, req.Shop)
	if !ok {
		return
	}

	result, err := h.rankingService.Run(c.Request.Context(), ranking.RunRequest{
		Shop:         shop,
		CollectionID: req.CollectionID,
		TopN:         req.TopN,
		DryRun:       req.DryRun,
		Rules:        req.Rules,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// RunAll godoc
// @ID           runRankingAll
// @Summary      Rank every collection of a shop
// @Description  Walk the shop's collections and rank each one. A failing collection is recorded in the per-collection results and does not stop the batch.
// @Tags         ranking
// @Accept       json
// @Produce      json
// @Param        request body RunAllRankingRequest true "Batch parameters"
// @Success      200 {object} APIResponse[ranking.RunAllResult]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      502 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /ranking/run-all [post]
func (h *RankingHandler) RunAll(c *gin.Context) {
	var req RunAllRankingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}

	shop, ok := h.resolveShop(c, req.Shop)
	if !ok {
		return
	}

	result, err := h.rankingService.RunAll(c.Request.Context(), ranking.RunAllRequest{
		Shop:   shop,
		Limit:  req.Limit,
		TopN:   req.TopN,
		DryRun: req.DryRun,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// ListCollections godoc
// @ID           listRankingCollections
// @Summary      List a shop's collections
// @Description  Page through the shop's collections as the platform reports them
// @Tags         ranking
// @Produce      json
// @Param        shop query string false "Shop domain (defaults to the session's shop)"
// @Param        cursor query string false "Page cursor from a previous response"
// @Success      200 {object} APIResponse[ranking.CollectionListResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      502 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /ranking/collections [get]
func (h *RankingHandler) ListCollections(c *gin.Context) {
	shop, ok := h.requireShop(c)
	if !ok {
		return
	}

	result, err := h.rankingService.ListCollections(c.Request.Context(), shop, c.Query("cursor"))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// GetRules godoc
// @ID           getRankingRules
// @Summary      Get a collection's ranking rules
// @Description  Report the stored rule sequence and the effective one (defaults when nothing is stored)
// @Tags         ranking
// @Produce      json
// @Param        id path string true "Collection ID"
// @Param        shop query string false "Shop domain (defaults to the session's shop)"
// @Success      200 {object} APIResponse[ranking.RulesResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /ranking/collections/{id}/rules [get]
func (h *RankingHandler) GetRules(c *gin.Context) {
	shop, ok := h.requireShop(c)
	if !ok {
		return
	}

	result, err := h.rankingService.GetRules(c.Request.Context(), shop, c.Param("id"))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// SaveRules godoc
// @ID           saveRankingRules
// @Summary      Replace a collection's ranking rules
// @Description  Persist a new rule sequence for the collection. Unknown rule names are dropped; an effectively empty list falls back to the defaults.
// @Tags         ranking
// @Accept       json
// @Produce      json
// @Param        id path string true "Collection ID"
// @Param        shop query string false "Shop domain (defaults to the session's shop)"
// @Param        request body ranking.RulesRequest true "Rule names in order"
// @Success      200 {object} APIResponse[ranking.RulesResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /ranking/collections/{id}/rules [put]
func (h *RankingHandler) SaveRules(c *gin.Context) {
	shop, ok := h.requireShop(c)
	if !ok {
		return
	}

	var req ranking.RulesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}

	result, err := h.rankingService.SaveRules(c.Request.Context(), shop, c.Param("id"), req.Rules)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}
