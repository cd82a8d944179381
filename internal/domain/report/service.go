package report

import (
	"context"
	"io"
)

// ReportService defines the interface for report generation
type ReportService interface {
	// GenerateMonthlyRecap aggregates one month of attendance per user
	GenerateMonthlyRecap(ctx context.Context, req MonthlyRecapRequest) (MonthlyRecap, error)

	// ExportMonthlyRecap writes the recap as an .xlsx workbook and returns its file name
	ExportMonthlyRecap(ctx context.Context, req MonthlyRecapRequest, w io.Writer) (string, error)
}
