package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	appreport "github.com/merchdash/backend/internal/application/report"
	"github.com/merchdash/backend/internal/domain/report"
)

// ReportProvider serves the cached merchandising rollups
type ReportProvider interface {
	Overview(ctx context.Context, shop string, rng report.DateRange) (*report.Overview, error)
	SizeCurve(ctx context.Context, shop string, rng report.DateRange) (*appreport.CurveResponse, error)
	ColorCurve(ctx context.Context, shop string, rng report.DateRange) (*appreport.CurveResponse, error)
	KPIs(ctx context.Context, shop string, windowDays int) (*report.KPIOverview, error)
	AgingStock(ctx context.Context, shop string) (*appreport.AgingResponse, error)
}

// ReportExporter renders a report to a file and stages it for download
type ReportExporter interface {
	Export(ctx context.Context, shop string, req *appreport.ExportRequest) (*appreport.ExportResult, error)
}

// ReportHandler handles reporting HTTP requests
type ReportHandler struct {
	BaseHandler
	reports  ReportProvider
	exporter ReportExporter
}

// NewReportHandler creates a new report handler
func NewReportHandler(reports ReportProvider, exporter ReportExporter) *ReportHandler {
	return &ReportHandler{
		reports:  reports,
		exporter: exporter,
	}
}

// Overview godoc
// @ID           getReportOverview
// @Summary      Get the sales overview
// @Description  Daily units and net revenue over the range, with totals and top products
// @Tags         reports
// @Produce      json
// @Param        shop query string false "Shop domain (defaults to the session's shop)"
// @Param        from query string true "Range start (YYYY-MM-DD)"
// @Param        to query string true "Range end (YYYY-MM-DD)"
// @Success      200 {object} APIResponse[report.Overview]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /reports/overview [get]
func (h *ReportHandler) Overview(c *gin.Context) {
	shop, ok := h.requireShop(c)
	if !ok {
		return
	}

	rng, ok := h.bindRange(c)
	if !ok {
		return
	}

	result, err := h.reports.Overview(c.Request.Context(), shop, rng)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// SizeCurve godoc
// @ID           getSizeCurve
// @Summary      Get the size distribution
// @Description  Units sold per size over the range, with each size's share of the total
// @Tags         reports
// @Produce      json
// @Param        shop query string false "Shop domain (defaults to the session's shop)"
// @Param        from query string true "Range start (YYYY-MM-DD)"
// @Param        to query string true "Range end (YYYY-MM-DD)"
// @Success      200 {object} APIResponse[appreport.CurveResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /reports/size-curve [get]
func (h *ReportHandler) SizeCurve(c *gin.Context) {
	shop, ok := h.requireShop(c)
	if !ok {
		return
	}

	rng, ok := h.bindRange(c)
	if !ok {
		return
	}

	result, err := h.reports.SizeCurve(c.Request.Context(), shop, rng)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// ColorCurve godoc
// @ID           getColorCurve
// @Summary      Get the color distribution
// @Description  Units sold per color over the range, with each color's share of the total
// @Tags         reports
// @Produce      json
// @Param        shop query string false "Shop domain (defaults to the session's shop)"
// @Param        from query string true "Range start (YYYY-MM-DD)"
// @Param        to query string true "Range end (YYYY-MM-DD)"
// @Success      200 {object} APIResponse[appreport.CurveResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /reports/color-curve [get]
func (h *ReportHandler) ColorCurve(c *gin.Context) {
	shop, ok := h.requireShop(c)
	if !ok {
		return
	}

	rng, ok := h.bindRange(c)
	if !ok {
		return
	}

	result, err := h.reports.ColorCurve(c.Request.Context(), shop, rng)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// KPIs godoc
// @ID           getReportKPIs
// @Summary      Get supply KPIs
// @Description  Weeks-of-supply, sell-through and at-risk variants over a trailing window
// @Tags         reports
// @Produce      json
// @Param        shop query string false "Shop domain (defaults to the session's shop)"
// @Param        window_days query int false "Trailing window in days" default(28) minimum(1) maximum(365)
// @Success      200 {object} APIResponse[report.KPIOverview]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /reports/kpis [get]
func (h *ReportHandler) KPIs(c *gin.Context) {
	shop, ok := h.requireShop(c)
	if !ok {
		return
	}

	var query appreport.KPIQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		h.BadRequest(c, "Invalid query parameters")
		return
	}

	result, err := h.reports.KPIs(c.Request.Context(), shop, query.WindowDays)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// AgingStock godoc
// @ID           getAgingStock
// @Summary      Get the aging-stock rollup
// @Description  On-hand units bucketed by product age since its platform creation date
// @Tags         reports
// @Produce      json
// @Param        shop query string false "Shop domain (defaults to the session's shop)"
// @Success      200 {object} APIResponse[appreport.AgingResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /reports/aging-stock [get]
func (h *ReportHandler) AgingStock(c *gin.Context) {
	shop, ok := h.requireShop(c)
	if !ok {
		return
	}

	result, err := h.reports.AgingStock(c.Request.Context(), shop)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// Export godoc
// @ID           exportReport
// @Summary      Export a report
// @Description  Render the overview or KPI report as CSV or PDF, stage it in object storage and return a time-limited download link
// @Tags         reports
// @Accept       json
// @Produce      json
// @Param        shop query string false "Shop domain (defaults to the session's shop)"
// @Param        request body appreport.ExportRequest true "Export parameters"
// @Success      200 {object} APIResponse[appreport.ExportResult]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /reports/export [post]
func (h *ReportHandler) Export(c *gin.Context) {
	shop, ok := h.requireShop(c)
	if !ok {
		return
	}

	var req appreport.ExportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}

	result, err := h.exporter.Export(c.Request.Context(), shop, &req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// bindRange parses the from/to query pair. It writes the 400 itself and
// reports whether to continue.
func (h *ReportHandler) bindRange(c *gin.Context) (report.DateRange, bool) {
	var query appreport.RangeQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		h.BadRequest(c, "Query parameters from and to are required (YYYY-MM-DD)")
		return report.DateRange{}, false
	}

	rng, err := query.Range()
	if err != nil {
		h.HandleError(c, err)
		return report.DateRange{}, false
	}
	return rng, true
}
