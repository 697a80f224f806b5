package importapp

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/merchdash/backend/internal/domain/bulk"
	"github.com/merchdash/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// ImportHistoryDTO is the outward shape of one import run
type ImportHistoryDTO struct {
	ID           uuid.UUID             `json:"id"`
	FileName     string                `json:"file_name"`
	FileSize     int64                 `json:"file_size"`
	TotalRows    int                   `json:"total_rows"`
	ImportedRows int                   `json:"imported_rows"`
	FailedRows   int                   `json:"failed_rows"`
	Status       bulk.ImportStatus     `json:"status"`
	SuccessRate  float64               `json:"success_rate"`
	Errors       []bulk.RowErrorDetail `json:"errors,omitempty"`
	ImportedBy   *uuid.UUID            `json:"imported_by,omitempty"`
	StartedAt    *time.Time            `json:"started_at,omitempty"`
	CompletedAt  *time.Time            `json:"completed_at,omitempty"`
	CreatedAt    time.Time             `json:"created_at"`
}

// ImportHistoryListResult is a paginated import run listing
type ImportHistoryListResult struct {
	Items      []ImportHistoryDTO `json:"items"`
	Total      int64              `json:"total"`
	Page       int                `json:"page"`
	PageSize   int                `json:"page_size"`
	TotalPages int                `json:"total_pages"`
}

// ImportHistoryService reads back past import runs
type ImportHistoryService struct {
	histories bulk.ImportHistoryRepository
	logger    *zap.Logger
}

// NewImportHistoryService creates an import history service
func NewImportHistoryService(histories bulk.ImportHistoryRepository, logger *zap.Logger) *ImportHistoryService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ImportHistoryService{
		histories: histories,
		logger:    logger,
	}
}

// Get returns one import run with its row errors
func (s *ImportHistoryService) Get(ctx context.Context, shop string, id uuid.UUID) (*ImportHistoryDTO, error) {
	shopDomain := strings.TrimSpace(shop)
	if shopDomain == "" {
		return nil, shared.NewDomainError("INVALID_SHOP", "Shop domain is required")
	}

	history, err := s.histories.FindByID(ctx, shopDomain, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("IMPORT_NOT_FOUND", "Import run not found")
		}
		return nil, fmt.Errorf("failed to load import run: %w", err)
	}

	dto := toImportHistoryDTO(history)
	return &dto, nil
}

// List returns a page of import runs for a shop
func (s *ImportHistoryService) List(ctx context.Context, shop string, filter shared.Filter) (*ImportHistoryListResult, error) {
	shopDomain := strings.TrimSpace(shop)
	if shopDomain == "" {
		return nil, shared.NewDomainError("INVALID_SHOP", "Shop domain is required")
	}

	histories, total, err := s.histories.FindAll(ctx, shopDomain, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list import runs: %w", err)
	}

	items := make([]ImportHistoryDTO, 0, len(histories))
	for i := range histories {
		items = append(items, toImportHistoryDTO(&histories[i]))
	}

	totalPages := 0
	if filter.Limit() > 0 {
		totalPages = int((total + int64(filter.Limit()) - 1) / int64(filter.Limit()))
	}

	return &ImportHistoryListResult{
		Items:      items,
		Total:      total,
		Page:       filter.Page,
		PageSize:   filter.Limit(),
		TotalPages: totalPages,
	}, nil
}

func toImportHistoryDTO(h *bulk.ImportHistory) ImportHistoryDTO {
	return ImportHistoryDTO{
		ID:           h.ID,
		FileName:     h.FileName,
		FileSize:     h.FileSize,
		TotalRows:    h.TotalRows,
		ImportedRows: h.ImportedRows,
		FailedRows:   h.FailedRows,
		Status:       h.Status,
		SuccessRate:  h.SuccessRate(),
		Errors:       h.Errors(),
		ImportedBy:   h.ImportedBy,
		StartedAt:    h.StartedAt,
		CompletedAt:  h.CompletedAt,
		CreatedAt:    h.CreatedAt,
	}
}
