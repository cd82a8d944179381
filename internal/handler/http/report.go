package http

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/report"
	"github.com/cmlabs-hris/attendance-backend-go/internal/handler/http/response"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type ReportHandler interface {
	// GetMonthlyRecap handles GET /reports/attendance
	GetMonthlyRecap(w http.ResponseWriter, r *http.Request)

	// ExportMonthlyRecap handles GET /attendances/export
	ExportMonthlyRecap(w http.ResponseWriter, r *http.Request)
}

type reportHandlerImpl struct {
	reportService report.ReportService
}

func NewReportHandler(reportService report.ReportService) ReportHandler {
	return &reportHandlerImpl{
		reportService: reportService,
	}
}

func parseRecapRequest(r *http.Request) (report.MonthlyRecapRequest, bool) {
	month, err := strconv.Atoi(r.URL.Query().Get("month"))
	if err != nil {
		return report.MonthlyRecapRequest{}, false
	}
	year, err := strconv.Atoi(r.URL.Query().Get("year"))
	if err != nil {
		return report.MonthlyRecapRequest{}, false
	}
	return report.MonthlyRecapRequest{Month: month, Year: year}, true
}

// GetMonthlyRecap implements ReportHandler.
func (h *reportHandlerImpl) GetMonthlyRecap(w http.ResponseWriter, r *http.Request) {
	req, ok := parseRecapRequest(r)
	if !ok {
		response.BadRequest(w, "month and year query parameters are required", nil)
		return
	}

	recap, err := h.reportService.GenerateMonthlyRecap(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, recap)
}

// ExportMonthlyRecap implements ReportHandler. The workbook is buffered so a
// failure can still be reported as JSON.
func (h *reportHandlerImpl) ExportMonthlyRecap(w http.ResponseWriter, r *http.Request) {
	req, ok := parseRecapRequest(r)
	if !ok {
		response.BadRequest(w, "month and year query parameters are required", nil)
		return
	}

	var buf bytes.Buffer
	filename, err := h.reportService.ExportMonthlyRecap(r.Context(), req, &buf)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	if _, err := buf.WriteTo(w); err != nil {
		slog.Error("Failed to write recap export", "filename", filename, "error", err)
	}
}
