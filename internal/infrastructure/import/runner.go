package csvimport

import (
	"context"
	"fmt"
	"io"
	"strings"
)

// Runner walks a CSV stream in a single pass: each row is validated
// against the field rules and, when it passes, handed to the caller's
// apply function. Failures never stop the walk; they are recorded with
// their row number and the next row is processed.
type Runner struct {
	maxFileSize int64
	maxRows     int
	maxErrors   int
}

// RunnerOption is a functional option for Runner configuration
type RunnerOption func(*Runner)

// WithMaxFileSize sets the maximum accepted file size in bytes
func WithMaxFileSize(size int64) RunnerOption {
	return func(r *Runner) {
		r.maxFileSize = size
	}
}

// WithMaxRows sets the maximum number of data rows processed per file
func WithMaxRows(rows int) RunnerOption {
	return func(r *Runner) {
		r.maxRows = rows
	}
}

// WithMaxErrors sets the cap on collected row errors
func WithMaxErrors(errors int) RunnerOption {
	return func(r *Runner) {
		r.maxErrors = errors
	}
}

// NewRunner creates a runner with sane defaults: 10MB files, 50K rows,
// 100 collected errors
func NewRunner(opts ...RunnerOption) *Runner {
	r := &Runner{
		maxFileSize: 10 * 1024 * 1024,
		maxRows:     50000,
		maxErrors:   100,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// MaxFileSize returns the configured file size limit in bytes
func (r *Runner) MaxFileSize() int64 {
	return r.maxFileSize
}

// Report summarizes one import pass
type Report struct {
	TotalRows    int        `json:"total_rows"`
	ImportedRows int        `json:"imported_rows"`
	FailedRows   int        `json:"failed_rows"`
	Errors       []RowError `json:"errors,omitempty"`
	IsTruncated  bool       `json:"is_truncated,omitempty"`
	TotalErrors  int        `json:"total_errors,omitempty"`
}

// Run parses the stream, checks that the required columns exist, then
// validates and applies each row. A file-level problem (bad encoding,
// missing header, absent required columns) aborts with an error; row
// problems are collected into the report instead. Rows past the row
// limit are not processed and surface as a single too-many-rows error.
func (r *Runner) Run(
	ctx context.Context,
	reader io.Reader,
	required []string,
	rules []FieldRule,
	apply func(row *Row) error,
) (*Report, error) {
	parser, err := NewCSVParser(reader)
	if err != nil {
		return nil, err
	}
	if err := parser.ParseHeader(); err != nil {
		return nil, err
	}
	if missing := parser.MissingHeaders(required); len(missing) > 0 {
		return nil, fmt.Errorf("missing required columns: %s", strings.Join(missing, ", "))
	}

	errs := NewErrorCollection(r.maxErrors)
	validator := NewFieldValidator(rules, errs)
	report := &Report{}

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		row, readErr := parser.ReadRow()
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			errs.Add(NewRowError(parser.CurrentRow(), "", ErrCodeImportCSVParsing, readErr.Error()))
			report.TotalRows++
			report.FailedRows++
			continue
		}
		if row.IsEmpty() {
			continue
		}

		report.TotalRows++
		if report.TotalRows > r.maxRows {
			errs.Add(NewRowError(row.LineNumber, "", ErrCodeImportTooManyRows,
				fmt.Sprintf("file exceeds the maximum of %d rows", r.maxRows)))
			report.TotalRows--
			break
		}

		if !validator.ValidateRow(row) {
			report.FailedRows++
			continue
		}

		if err := apply(row); err != nil {
			errs.Add(NewRowError(row.LineNumber, "", ErrCodeImportValidation, err.Error()))
			report.FailedRows++
			continue
		}
		report.ImportedRows++
	}

	report.Errors = errs.Errors()
	report.IsTruncated = errs.IsTruncated()
	report.TotalErrors = errs.TotalCount()
	return report, nil
}
