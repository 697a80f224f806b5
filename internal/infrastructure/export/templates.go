package export

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/merchdash/backend/internal/domain/report"
)

//go:embed templates/*.html
var templateFS embed.FS

// overviewDocument is the data bound to the overview PDF template
type overviewDocument struct {
	Shop        string
	GeneratedAt time.Time
	Overview    *report.Overview
}

// kpiDocument is the data bound to the KPI PDF template
type kpiDocument struct {
	Shop        string
	GeneratedAt time.Time
	KPIs        *report.KPIOverview
}

type templateSet struct {
	overview *template.Template
	kpis     *template.Template
}

func newTemplateSet() (*templateSet, error) {
	funcs := newFuncMap()

	overview, err := template.New("overview.html").Funcs(funcs).ParseFS(templateFS, "templates/overview.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse overview template: %w", err)
	}
	kpis, err := template.New("kpis.html").Funcs(funcs).ParseFS(templateFS, "templates/kpis.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse kpi template: %w", err)
	}

	return &templateSet{overview: overview, kpis: kpis}, nil
}

func (s *templateSet) renderOverview(doc *overviewDocument) (string, error) {
	var buf bytes.Buffer
	if err := s.overview.Execute(&buf, doc); err != nil {
		return "", fmt.Errorf("failed to render overview template: %w", err)
	}
	return buf.String(), nil
}

func (s *templateSet) renderKPIs(doc *kpiDocument) (string, error) {
	var buf bytes.Buffer
	if err := s.kpis.Execute(&buf, doc); err != nil {
		return "", fmt.Errorf("failed to render kpi template: %w", err)
	}
	return buf.String(), nil
}

// newFuncMap builds the template formatters. Numbers go through an English
// locale printer so large unit and money figures carry group separators.
func newFuncMap() template.FuncMap {
	printer := message.NewPrinter(language.English)

	return template.FuncMap{
		"formatInt": func(n int64) string {
			return printer.Sprintf("%d", n)
		},
		"formatMoney": func(d decimal.Decimal) string {
			return printer.Sprintf("%.2f", d.InexactFloat64())
		},
		"formatDecimal": func(d decimal.Decimal) string {
			return d.StringFixed(2)
		},
		"formatPercent": func(d decimal.Decimal) string {
			return d.StringFixed(1) + "%"
		},
		"formatDate": func(t time.Time) string {
			return t.Format(dayLayout)
		},
		"formatDateTime": func(t time.Time) string {
			return t.UTC().Format("2006-01-02 15:04 MST")
		},
		"formatWOS": func(d *decimal.Decimal) string {
			if d == nil {
				return "∞"
			}
			return d.StringFixed(1)
		},
	}
}

func formatOptionalDecimal(d *decimal.Decimal) string {
	if d == nil {
		return ""
	}
	return d.StringFixed(1)
}
