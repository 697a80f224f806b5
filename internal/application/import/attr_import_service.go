// Package importapp handles CSV uploads of merchandising attributes. A
// file is processed in one pass: every valid row upserts the product's
// attribute record, every bad row is reported with its row number, and
// the run lands in the import history either way.
package importapp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/merchdash/backend/internal/domain/bulk"
	"github.com/merchdash/backend/internal/domain/catalog"
	"github.com/merchdash/backend/internal/domain/shared"
	csvimport "github.com/merchdash/backend/internal/infrastructure/import"
	"go.uber.org/zap"
)

// Attribute CSV columns. Only product_id must be present in the header;
// the attribute columns are applied when the file carries them.
const (
	colProductID = "product_id"
	colCategory  = "category"
	colSeason    = "season"
	colGender    = "gender"
	colLifecycle = "lifecycle"
)

// ImportAttributesInput carries one uploaded attributes file
type ImportAttributesInput struct {
	Shop       string
	FileName   string
	FileSize   int64
	OperatorID uuid.UUID
	Reader     io.Reader
}

// AttrImportResult is the outcome of an attributes import run
type AttrImportResult struct {
	HistoryID    uuid.UUID             `json:"history_id"`
	TotalRows    int                   `json:"total_rows"`
	ImportedRows int                   `json:"imported_rows"`
	FailedRows   int                   `json:"failed_rows"`
	Errors       []bulk.RowErrorDetail `json:"errors,omitempty"`
	IsTruncated  bool                  `json:"is_truncated,omitempty"`
	TotalErrors  int                   `json:"total_errors,omitempty"`
}

// AttrImportService imports merchandising attributes from CSV files
type AttrImportService struct {
	attrs     catalog.ProductAttrRepository
	histories bulk.ImportHistoryRepository
	runner    *csvimport.Runner
	logger    *zap.Logger
}

// NewAttrImportService creates an attribute import service. A nil runner
// falls back to the package defaults.
func NewAttrImportService(
	attrs catalog.ProductAttrRepository,
	histories bulk.ImportHistoryRepository,
	runner *csvimport.Runner,
	logger *zap.Logger,
) *AttrImportService {
	if runner == nil {
		runner = csvimport.NewRunner()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AttrImportService{
		attrs:     attrs,
		histories: histories,
		runner:    runner,
		logger:    logger,
	}
}

// ValidationRules returns the per-column rules for the attributes CSV
func (s *AttrImportService) ValidationRules() []csvimport.FieldRule {
	return []csvimport.FieldRule{
		csvimport.Field(colProductID).Required().MaxLength(128).Build(),
		csvimport.Field(colCategory).MaxLength(128).Build(),
		csvimport.Field(colSeason).MaxLength(64).Build(),
		csvimport.Field(colGender).MaxLength(32).Build(),
		csvimport.Field(colLifecycle).MaxLength(64).Build(),
	}
}

// Import runs one attributes file through validation and upserts,
// recording the run in the import history
func (s *AttrImportService) Import(ctx context.Context, input ImportAttributesInput) (*AttrImportResult, error) {
	shopDomain := strings.TrimSpace(input.Shop)
	if shopDomain == "" {
		return nil, shared.NewDomainError("INVALID_SHOP", "Shop domain is required")
	}
	if input.FileSize > s.runner.MaxFileSize() {
		return nil, shared.NewDomainError("FILE_TOO_LARGE",
			fmt.Sprintf("File exceeds the maximum size of %d bytes", s.runner.MaxFileSize()))
	}

	history, err := bulk.NewImportHistory(shopDomain, input.FileName, input.FileSize, input.OperatorID)
	if err != nil {
		return nil, err
	}

	report, runErr := s.runner.Run(ctx, input.Reader, []string{colProductID}, s.ValidationRules(), func(row *csvimport.Row) error {
		return s.applyRow(ctx, shopDomain, row)
	})
	if runErr != nil {
		detail := bulk.RowErrorDetail{Row: 1, Code: csvimport.ErrCodeImportInvalidFile, Message: runErr.Error()}
		if failErr := history.Fail([]bulk.RowErrorDetail{detail}); failErr == nil {
			s.saveHistory(ctx, history)
		}
		s.logger.Warn("attribute import rejected",
			zap.String("shop", shopDomain),
			zap.String("file", input.FileName),
			zap.Error(runErr))
		return nil, shared.NewDomainError("INVALID_FILE", runErr.Error())
	}

	details := toErrorDetails(report.Errors)
	if err := history.Complete(report.TotalRows, report.ImportedRows, report.FailedRows, details); err != nil {
		return nil, err
	}
	s.saveHistory(ctx, history)

	s.logger.Info("attribute import finished",
		zap.String("shop", shopDomain),
		zap.String("file", input.FileName),
		zap.Int("total_rows", report.TotalRows),
		zap.Int("imported_rows", report.ImportedRows),
		zap.Int("failed_rows", report.FailedRows))

	return &AttrImportResult{
		HistoryID:    history.ID,
		TotalRows:    report.TotalRows,
		ImportedRows: report.ImportedRows,
		FailedRows:   report.FailedRows,
		Errors:       details,
		IsTruncated:  report.IsTruncated,
		TotalErrors:  report.TotalErrors,
	}, nil
}

// applyRow upserts the attribute record for one CSV row. Existing values
// survive columns the row leaves empty.
func (s *AttrImportService) applyRow(ctx context.Context, shop string, row *csvimport.Row) error {
	productID := row.Get(colProductID)

	attr, err := s.attrs.FindByProductID(ctx, shop, productID)
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return fmt.Errorf("failed to load existing attributes: %w", err)
	}
	if attr == nil {
		attr, err = catalog.NewProductAttr(shop, productID)
		if err != nil {
			return err
		}
	}

	attr.Set(row.Get(colCategory), row.Get(colSeason), row.Get(colGender), row.Get(colLifecycle))

	if err := s.attrs.Upsert(ctx, attr); err != nil {
		return fmt.Errorf("failed to save attributes: %w", err)
	}
	return nil
}

// saveHistory persists the run record. The import outcome stands even if
// the audit write fails, so failures only get logged.
func (s *AttrImportService) saveHistory(ctx context.Context, history *bulk.ImportHistory) {
	if s.histories == nil {
		return
	}
	if err := s.histories.Save(ctx, history); err != nil {
		s.logger.Error("failed to save import history",
			zap.String("shop", history.Shop),
			zap.String("file", history.FileName),
			zap.Error(err))
	}
}

func toErrorDetails(rowErrors []csvimport.RowError) []bulk.RowErrorDetail {
	if len(rowErrors) == 0 {
		return nil
	}
	details := make([]bulk.RowErrorDetail, len(rowErrors))
	for i, e := range rowErrors {
		details[i] = bulk.RowErrorDetail{
			Row:     e.Row,
			Column:  e.Column,
			Code:    e.Code,
			Message: e.Message,
			Value:   e.Value,
		}
	}
	return details
}
