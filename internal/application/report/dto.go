package report

import (
	"time"

	"github.com/merchdash/backend/internal/domain/report"
	"github.com/merchdash/backend/internal/domain/shared"
)

// rangeLayout is the calendar-day format range parameters arrive in
const rangeLayout = "2006-01-02"

// RangeQuery carries the [from, to] reporting window as calendar days,
// inclusive of the end day
type RangeQuery struct {
	From string `form:"from" binding:"required"`
	To   string `form:"to" binding:"required"`
}

// Range parses and validates the query into a domain date range
func (q RangeQuery) Range() (report.DateRange, error) {
	from, err := time.Parse(rangeLayout, q.From)
	if err != nil {
		return report.DateRange{}, shared.NewDomainError("INVALID_RANGE", "from must be a YYYY-MM-DD date")
	}
	to, err := time.Parse(rangeLayout, q.To)
	if err != nil {
		return report.DateRange{}, shared.NewDomainError("INVALID_RANGE", "to must be a YYYY-MM-DD date")
	}
	return report.NewDateRange(from, to)
}

// KPIQuery carries the trailing KPI window length
type KPIQuery struct {
	WindowDays int `form:"window_days" binding:"omitempty,min=1,max=365"`
}

// CurveResponse is a size or color distribution over a range
type CurveResponse struct {
	From    time.Time           `json:"from"`
	To      time.Time           `json:"to"`
	Total   int64               `json:"total"`
	Entries []report.CurveEntry `json:"entries"`
}

// AgingResponse is the aging-stock rollup
type AgingResponse struct {
	Shop  string             `json:"shop"`
	Bands []report.AgingBand `json:"bands"`
}

// Report kinds and output formats accepted by the export endpoint
const (
	ExportReportOverview = "overview"
	ExportReportKPIs     = "kpis"

	ExportFormatCSV = "csv"
	ExportFormatPDF = "pdf"
)

// ExportRequest selects which report to render and in which format. From/To
// bound the overview report; WindowDays sizes the KPI window.
type ExportRequest struct {
	Report     string `json:"report" binding:"required,oneof=overview kpis"`
	Format     string `json:"format" binding:"required,oneof=csv pdf"`
	From       string `json:"from,omitempty"`
	To         string `json:"to,omitempty"`
	WindowDays int    `json:"window_days,omitempty" binding:"omitempty,min=1,max=365"`
}

// Range parses the export window. Only overview exports carry one.
func (r ExportRequest) Range() (report.DateRange, error) {
	return RangeQuery{From: r.From, To: r.To}.Range()
}

// ExportResult points at the rendered document in object storage. URL is
// presigned and expires at ExpiresAt.
type ExportResult struct {
	Key       string    `json:"key"`
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expires_at"`
}
