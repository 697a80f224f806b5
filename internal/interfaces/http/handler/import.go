package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	importapp "github.com/merchdash/backend/internal/application/import"
	"github.com/merchdash/backend/internal/domain/shared"
	"github.com/merchdash/backend/internal/interfaces/http/dto"
)

// AttributeImporter runs one uploaded attributes file through
// validation and upserts
type AttributeImporter interface {
	Import(ctx context.Context, input importapp.ImportAttributesInput) (*importapp.AttrImportResult, error)
}

// ImportHistoryReader reads back past import runs
type ImportHistoryReader interface {
	Get(ctx context.Context, shop string, id uuid.UUID) (*importapp.ImportHistoryDTO, error)
	List(ctx context.Context, shop string, filter shared.Filter) (*importapp.ImportHistoryListResult, error)
}

// ImportHandler handles CSV import HTTP requests
type ImportHandler struct {
	BaseHandler
	importer AttributeImporter
	history  ImportHistoryReader
}

// NewImportHandler creates a new import handler
func NewImportHandler(importer AttributeImporter, history ImportHistoryReader) *ImportHandler {
	return &ImportHandler{
		importer: importer,
		history:  history,
	}
}

// ImportAttributes godoc
// @ID           importAttributes
// @Summary      Import merchandising attributes from CSV
// @Description  Upload a CSV keyed by product_id with optional category, season, gender and lifecycle columns. Valid rows upsert the product's attributes; bad rows are reported with their row numbers. The run is recorded in the import history either way.
// @Tags         imports
// @Accept       multipart/form-data
// @Produce      json
// @Param        file formData file true "CSV file"
// @Param        shop formData string false "Shop domain (defaults to the session's shop)"
// @Success      200 {object} APIResponse[importapp.AttrImportResult]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      413 {object} ErrorResponse
// @Failure      415 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /imports/attributes [post]
func (h *ImportHandler) ImportAttributes(c *gin.Context) {
	shop, ok := h.resolveShop(c, c.PostForm("shop"))
	if !ok {
		return
	}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		h.BadRequest(c, "file is required")
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if contentType != "" && contentType != "text/csv" && contentType != "application/octet-stream" &&
		contentType != "text/plain" && contentType != "application/vnd.ms-excel" {
		h.Error(c, http.StatusUnsupportedMediaType, dto.ErrCodeValidation, "file must be a CSV file")
		return
	}

	// Operator attribution is best effort; unauthenticated runs (tests,
	// CLI tooling) record no importer.
	operatorID, _ := getOperatorID(c)

	result, err := h.importer.Import(c.Request.Context(), importapp.ImportAttributesInput{
		Shop:       shop,
		FileName:   header.Filename,
		FileSize:   header.Size,
		OperatorID: operatorID,
		Reader:     file,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// GetImportRun godoc
// @ID           getImportRun
// @Summary      Get one import run
// @Description  Return an import run with its per-row errors
// @Tags         imports
// @Produce      json
// @Param        id path string true "Import run ID" format(uuid)
// @Param        shop query string false "Shop domain (defaults to the session's shop)"
// @Success      200 {object} APIResponse[importapp.ImportHistoryDTO]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /imports/{id} [get]
func (h *ImportHandler) GetImportRun(c *gin.Context) {
	shop, ok := h.requireShop(c)
	if !ok {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid import run ID")
		return
	}

	result, err := h.history.Get(c.Request.Context(), shop, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// ListImportRuns godoc
// @ID           listImportRuns
// @Summary      List import runs
// @Tags         imports
// @Produce      json
// @Param        shop query string false "Shop domain (defaults to the session's shop)"
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Items per page" default(20) maximum(100)
// @Success      200 {object} APIResponse[importapp.ImportHistoryListResult]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /imports [get]
func (h *ImportHandler) ListImportRuns(c *gin.Context) {
	shop, ok := h.requireShop(c)
	if !ok {
		return
	}

	var query dto.ListRequest
	if err := c.ShouldBindQuery(&query); err != nil {
		h.BadRequest(c, "Invalid query parameters")
		return
	}

	result, err := h.history.List(c.Request.Context(), shop, shared.Filter{
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
