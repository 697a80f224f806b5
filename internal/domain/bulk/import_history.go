// Package bulk records the outcome of bulk CSV imports: how many rows a
// file carried, how many landed, and the row-level errors behind the rest.
package bulk

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/merchdash/backend/internal/domain/shared"
)

// ImportStatus represents the status of an import run
type ImportStatus string

const (
	ImportStatusProcessing ImportStatus = "processing"
	ImportStatusCompleted  ImportStatus = "completed"
	ImportStatusFailed     ImportStatus = "failed"
)

// IsTerminal returns true once the run can no longer change
func (s ImportStatus) IsTerminal() bool {
	return s == ImportStatusCompleted || s == ImportStatusFailed
}

// RowErrorDetail pins an import error to the CSV row that caused it
type RowErrorDetail struct {
	Row     int    `json:"row"`
	Column  string `json:"column,omitempty"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Value   string `json:"value,omitempty"`
}

// ImportHistory tracks one CSV import run for a shop
type ImportHistory struct {
	shared.ShopAggregateRoot
	FileName     string       `gorm:"type:varchar(255);not null"`
	FileSize     int64        `gorm:"not null;default:0"`
	TotalRows    int          `gorm:"not null;default:0"`
	ImportedRows int          `gorm:"not null;default:0"`
	FailedRows   int          `gorm:"not null;default:0"`
	Status       ImportStatus `gorm:"type:varchar(20);not null;default:'processing'"`
	ErrorsJSON   string       `gorm:"column:error_details;type:jsonb;not null;default:'[]'"`
	ImportedBy   *uuid.UUID   `gorm:"type:uuid;index"`
	StartedAt    *time.Time
	CompletedAt  *time.Time
}

// TableName returns the table name for GORM
func (ImportHistory) TableName() string {
	return "import_histories"
}

// NewImportHistory opens an import run record in the processing state
func NewImportHistory(shop, fileName string, fileSize int64, importedBy uuid.UUID) (*ImportHistory, error) {
	if shop == "" {
		return nil, shared.NewDomainError("INVALID_SHOP", "Shop domain is required")
	}
	if fileName == "" {
		return nil, shared.NewDomainError("INVALID_FILE_NAME", "File name cannot be empty")
	}
	if fileSize < 0 {
		return nil, shared.NewDomainError("INVALID_FILE_SIZE", "File size cannot be negative")
	}

	now := time.Now()
	h := &ImportHistory{
		ShopAggregateRoot: shared.NewShopAggregateRoot(shop),
		FileName:          fileName,
		FileSize:          fileSize,
		Status:            ImportStatusProcessing,
		ErrorsJSON:        "[]",
		StartedAt:         &now,
	}
	if importedBy != uuid.Nil {
		h.ImportedBy = &importedBy
	}
	return h, nil
}

// Complete records the run outcome. A run where every row failed is
// marked failed, any other mix completes with the errors attached.
func (h *ImportHistory) Complete(totalRows, importedRows, failedRows int, rowErrors []RowErrorDetail) error {
	if h.Status.IsTerminal() {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot complete import in state %s", h.Status))
	}

	status := ImportStatusCompleted
	if failedRows > 0 && importedRows == 0 {
		status = ImportStatusFailed
	}

	h.Status = status
	h.TotalRows = totalRows
	h.ImportedRows = importedRows
	h.FailedRows = failedRows
	if err := h.setErrors(rowErrors); err != nil {
		return err
	}
	now := time.Now()
	h.CompletedAt = &now
	h.UpdatedAt = now
	h.IncrementVersion()
	return nil
}

// Fail marks the run failed before any rows were processed, e.g. when
// the file itself cannot be parsed
func (h *ImportHistory) Fail(rowErrors []RowErrorDetail) error {
	if h.Status.IsTerminal() {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot fail import in state %s", h.Status))
	}

	h.Status = ImportStatusFailed
	h.FailedRows = len(rowErrors)
	if err := h.setErrors(rowErrors); err != nil {
		return err
	}
	now := time.Now()
	h.CompletedAt = &now
	h.UpdatedAt = now
	h.IncrementVersion()
	return nil
}

// Errors returns the recorded row errors
func (h *ImportHistory) Errors() []RowErrorDetail {
	if h.ErrorsJSON == "" || h.ErrorsJSON == "[]" {
		return nil
	}
	var details []RowErrorDetail
	if err := json.Unmarshal([]byte(h.ErrorsJSON), &details); err != nil {
		return nil
	}
	return details
}

func (h *ImportHistory) setErrors(details []RowErrorDetail) error {
	if len(details) == 0 {
		h.ErrorsJSON = "[]"
		return nil
	}
	data, err := json.Marshal(details)
	if err != nil {
		return fmt.Errorf("failed to marshal error details: %w", err)
	}
	h.ErrorsJSON = string(data)
	return nil
}

// HasErrors returns true if any row errors were recorded
func (h *ImportHistory) HasErrors() bool {
	return h.ErrorsJSON != "" && h.ErrorsJSON != "[]"
}

// SuccessRate returns the imported share as a percentage (0-100)
func (h *ImportHistory) SuccessRate() float64 {
	if h.TotalRows == 0 {
		return 0
	}
	return float64(h.ImportedRows) / float64(h.TotalRows) * 100
}

// Duration returns how long the run took, measured to now while it is
// still processing
func (h *ImportHistory) Duration() time.Duration {
	if h.StartedAt == nil {
		return 0
	}
	end := time.Now()
	if h.CompletedAt != nil {
		end = *h.CompletedAt
	}
	return end.Sub(*h.StartedAt)
}
