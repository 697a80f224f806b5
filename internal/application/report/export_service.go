package report

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/merchdash/backend/internal/domain/report"
	"github.com/merchdash/backend/internal/domain/shared"
)

// DefaultDownloadExpiry is how long export download links stay valid when
// no expiry is configured.
const DefaultDownloadExpiry = 15 * time.Minute

// ErrPDFRenderingDisabled is returned by renderers on deployments that run
// without a PDF engine. The export service maps it to a domain error.
var ErrPDFRenderingDisabled = errors.New("pdf rendering is not enabled")

// ExportRenderer turns report payloads into downloadable documents.
// CSV output is self-describing; PDF output carries the shop in its header.
type ExportRenderer interface {
	OverviewCSV(ov *report.Overview) ([]byte, error)
	KPICSV(kpis *report.KPIOverview) ([]byte, error)
	OverviewPDF(ctx context.Context, shop string, ov *report.Overview) ([]byte, error)
	KPIPDF(ctx context.Context, shop string, kpis *report.KPIOverview) ([]byte, error)
}

// ObjectStorage persists rendered exports and hands out time-limited
// download links.
type ObjectStorage interface {
	// PutObject uploads a rendered document under the given storage key
	PutObject(ctx context.Context, storageKey, contentType string, body []byte) error

	// GenerateDownloadURL returns a presigned GET URL and its expiry instant
	GenerateDownloadURL(ctx context.Context, storageKey string, expiresIn time.Duration) (string, time.Time, error)
}

// ExportService renders a report, uploads the document to object storage,
// and returns a presigned download link.
type ExportService struct {
	reports  *AggregationService
	renderer ExportRenderer
	storage  ObjectStorage
	logger   *zap.Logger
	expiry   time.Duration
	newKey   func() string
}

// NewExportService creates an export service
func NewExportService(
	reports *AggregationService,
	renderer ExportRenderer,
	storage ObjectStorage,
	logger *zap.Logger,
) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{
		reports:  reports,
		renderer: renderer,
		storage:  storage,
		logger:   logger,
		expiry:   DefaultDownloadExpiry,
		newKey:   uuid.NewString,
	}
}

// SetDownloadExpiry overrides how long download links stay valid
func (s *ExportService) SetDownloadExpiry(d time.Duration) {
	if d > 0 {
		s.expiry = d
	}
}

// Export renders the requested report and stores it under
// exports/<shop>/<uuid>.<ext>.
func (s *ExportService) Export(ctx context.Context, shop string, req *ExportRequest) (*ExportResult, error) {
	if shop == "" {
		return nil, shared.NewDomainError("INVALID_SHOP", "Shop domain is required")
	}
	if req == nil {
		return nil, shared.NewDomainError("INVALID_EXPORT", "Export request is required")
	}

	start := time.Now()

	data, err := s.render(ctx, shop, req)
	if err != nil {
		if errors.Is(err, ErrPDFRenderingDisabled) {
			return nil, shared.NewDomainError("PDF_EXPORT_DISABLED", "PDF export is not enabled on this deployment")
		}
		return nil, err
	}

	key := fmt.Sprintf("exports/%s/%s.%s", shop, s.newKey(), req.Format)
	if err := s.storage.PutObject(ctx, key, contentTypeFor(req.Format), data); err != nil {
		return nil, fmt.Errorf("failed to store export: %w", err)
	}

	url, expiresAt, err := s.storage.GenerateDownloadURL(ctx, key, s.expiry)
	if err != nil {
		return nil, fmt.Errorf("failed to sign export download URL: %w", err)
	}

	s.logger.Info("Report exported",
		zap.String("shop", shop),
		zap.String("report", req.Report),
		zap.String("format", req.Format),
		zap.String("key", key),
		zap.Int("bytes", len(data)),
		zap.Duration("duration", time.Since(start)))

	return &ExportResult{Key: key, URL: url, ExpiresAt: expiresAt}, nil
}

func (s *ExportService) render(ctx context.Context, shop string, req *ExportRequest) ([]byte, error) {
	switch req.Report {
	case ExportReportOverview:
		rng, err := req.Range()
		if err != nil {
			return nil, err
		}
		ov, err := s.reports.Overview(ctx, shop, rng)
		if err != nil {
			return nil, err
		}
		if req.Format == ExportFormatPDF {
			return s.renderer.OverviewPDF(ctx, shop, ov)
		}
		return s.renderer.OverviewCSV(ov)

	case ExportReportKPIs:
		kpis, err := s.reports.KPIs(ctx, shop, req.WindowDays)
		if err != nil {
			return nil, err
		}
		if req.Format == ExportFormatPDF {
			return s.renderer.KPIPDF(ctx, shop, kpis)
		}
		return s.renderer.KPICSV(kpis)

	default:
		return nil, shared.NewDomainError("INVALID_EXPORT", "Unknown report kind: "+req.Report)
	}
}

func contentTypeFor(format string) string {
	if format == ExportFormatPDF {
		return "application/pdf"
	}
	return "text/csv"
}
