// Package export renders report payloads into downloadable documents.
// CSV comes straight from encoding/csv; PDF goes through an HTML template
// printed by a Chrome engine.
package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	reportapp "github.com/merchdash/backend/internal/application/report"
	"github.com/merchdash/backend/internal/domain/report"
)

const dayLayout = "2006-01-02"

// PDFEngine prints a complete HTML document to PDF
type PDFEngine interface {
	PrintToPDF(ctx context.Context, html string) ([]byte, error)
	Close() error
}

// Renderer implements the report export port. The PDF engine is optional;
// without one, PDF requests fail with ErrPDFRenderingDisabled.
type Renderer struct {
	templates *templateSet
	engine    PDFEngine
	logger    *zap.Logger
	now       func() time.Time
}

// RendererOption configures the renderer
type RendererOption func(*Renderer)

// WithPDFEngine attaches a PDF engine, enabling PDF exports
func WithPDFEngine(engine PDFEngine) RendererOption {
	return func(r *Renderer) {
		r.engine = engine
	}
}

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) RendererOption {
	return func(r *Renderer) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// NewRenderer creates a renderer with the embedded report templates
func NewRenderer(opts ...RendererOption) (*Renderer, error) {
	templates, err := newTemplateSet()
	if err != nil {
		return nil, err
	}

	r := &Renderer{
		templates: templates,
		logger:    zap.NewNop(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Close releases the PDF engine, if any
func (r *Renderer) Close() error {
	if r.engine != nil {
		return r.engine.Close()
	}
	return nil
}

// OverviewCSV writes the overview rollup as a sectioned CSV: range totals,
// the daily series, then the revenue top list.
func (r *Renderer) OverviewCSV(ov *report.Overview) ([]byte, error) {
	rows := [][]string{
		{"from", "to", "total_units", "total_net"},
		{ov.From.Format(dayLayout), ov.To.Format(dayLayout), formatInt64(ov.TotalUnits), ov.TotalNet.StringFixed(2)},
		{},
		{"day", "units", "net"},
	}
	for _, day := range ov.Days {
		rows = append(rows, []string{day.Day.Format(dayLayout), formatInt64(day.Units), day.Net.StringFixed(2)})
	}

	rows = append(rows, []string{}, []string{"rank", "product_id", "title", "units", "net"})
	for _, top := range ov.TopProducts {
		rows = append(rows, []string{
			strconv.Itoa(top.Rank), top.ProductID, top.Title, formatInt64(top.Units), top.Net.StringFixed(2),
		})
	}

	return writeCSV(rows)
}

// KPICSV writes the KPI rollup as a sectioned CSV: the range-wide summary,
// then the at-risk variant table. An empty weeks_of_supply cell means the
// weekly rate is zero and supply never runs out.
func (r *Renderer) KPICSV(kpis *report.KPIOverview) ([]byte, error) {
	rows := [][]string{
		{"window_days", "weeks", "total_units", "total_on_hand", "avg_weekly_rate", "weighted_wos", "sell_through_pct"},
		{
			strconv.Itoa(kpis.WindowDays),
			kpis.Weeks.StringFixed(1),
			formatInt64(kpis.TotalUnits),
			formatInt64(kpis.TotalOnHand),
			kpis.AvgWeeklyRate.StringFixed(2),
			formatOptionalDecimal(kpis.WeightedWOS),
			kpis.SellThroughPct.StringFixed(1),
		},
		{},
		{"variant_id", "product_id", "title", "sku", "on_hand", "units", "weekly_rate", "weeks_of_supply", "sell_through_pct"},
	}
	for _, v := range kpis.AtRisk {
		rows = append(rows, []string{
			v.VariantID, v.ProductID, v.Title, v.SKU,
			formatInt64(v.OnHand), formatInt64(v.Units),
			v.WeeklyRate.StringFixed(2),
			formatOptionalDecimal(v.WeeksOfSupply),
			v.SellThroughPct.StringFixed(1),
		})
	}

	return writeCSV(rows)
}

// OverviewPDF renders the overview template and prints it to PDF
func (r *Renderer) OverviewPDF(ctx context.Context, shop string, ov *report.Overview) ([]byte, error) {
	if r.engine == nil {
		return nil, reportapp.ErrPDFRenderingDisabled
	}

	html, err := r.templates.renderOverview(&overviewDocument{
		Shop:        shop,
		GeneratedAt: r.now(),
		Overview:    ov,
	})
	if err != nil {
		return nil, err
	}
	return r.engine.PrintToPDF(ctx, html)
}

// KPIPDF renders the KPI template and prints it to PDF
func (r *Renderer) KPIPDF(ctx context.Context, shop string, kpis *report.KPIOverview) ([]byte, error) {
	if r.engine == nil {
		return nil, reportapp.ErrPDFRenderingDisabled
	}

	html, err := r.templates.renderKPIs(&kpiDocument{
		Shop:        shop,
		GeneratedAt: r.now(),
		KPIs:        kpis,
	})
	if err != nil {
		return nil, err
	}
	return r.engine.PrintToPDF(ctx, html)
}

func writeCSV(rows [][]string) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.WriteAll(rows); err != nil {
		return nil, fmt.Errorf("failed to write csv: %w", err)
	}
	return buf.Bytes(), nil
}

func formatInt64(n int64) string {
	return strconv.FormatInt(n, 10)
}

// Ensure Renderer implements the export port
var _ reportapp.ExportRenderer = (*Renderer)(nil)
