package http

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"path/filepath"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-backend-go/internal/handler/http/response"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/clock"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/geo"
	"github.com/cmlabs-hris/attendance-backend-go/internal/service/file"
	"github.com/go-chi/chi/v5"
)

const maxMultipartMemory = 10 << 20 // 10MB

type AttendanceHandler interface {
	CheckIn(w http.ResponseWriter, r *http.Request)
	CheckOut(w http.ResponseWriter, r *http.Request)
	Today(w http.ResponseWriter, r *http.Request)
	GetMyAttendance(w http.ResponseWriter, r *http.Request)
	List(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
	Photo(w http.ResponseWriter, r *http.Request)
	Approve(w http.ResponseWriter, r *http.Request)
	Reject(w http.ResponseWriter, r *http.Request)
	AutoClose(w http.ResponseWriter, r *http.Request)
}

type attendanceHandlerImpl struct {
	attendanceService attendance.AttendanceService
	closer            attendance.Closer
	photoService      file.PhotoService
	clock             clock.Clock
}

func NewAttendanceHandler(
	attendanceService attendance.AttendanceService,
	closer attendance.Closer,
	photoService file.PhotoService,
	clk clock.Clock,
) AttendanceHandler {
	return &attendanceHandlerImpl{
		attendanceService: attendanceService,
		closer:            closer,
		photoService:      photoService,
		clock:             clk,
	}
}

// parseActionRequest reads the multipart body shared by check-in and check-out:
// a JSON 'data' field and an optional 'photo' file. The caller closes the photo.
func parseActionRequest(r *http.Request) (attendance.AttendanceActionRequest, error) {
	var req attendance.AttendanceActionRequest

	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		return req, errMalformedForm
	}

	// 'data' is optional: an onsite attempt may carry no signals beyond the IP
	if dataJSON := r.FormValue("data"); dataJSON != "" {
		if err := json.Unmarshal([]byte(dataJSON), &req); err != nil {
			return req, errMalformedData
		}
	}

	photo, header, err := r.FormFile("photo")
	switch {
	case err == nil:
		req.Photo = photo
		req.PhotoHeader = header
	case errors.Is(err, http.ErrMissingFile):
	default:
		return req, errMalformedPhoto
	}

	req.ClientIP = geo.NormalizeClientIP(r.RemoteAddr)
	return req, nil
}

var (
	errMalformedForm  = errors.New("failed to parse form data")
	errMalformedData  = errors.New("invalid request format in field 'data'")
	errMalformedPhoto = errors.New("invalid file upload")
)

// CheckIn implements AttendanceHandler.
func (h *attendanceHandlerImpl) CheckIn(w http.ResponseWriter, r *http.Request) {
	action, err := parseActionRequest(r)
	if err != nil {
		slog.Warn("Rejected check-in body", "error", err)
		response.BadRequest(w, err.Error(), nil)
		return
	}
	if action.Photo != nil {
		defer action.Photo.Close()
	}

	result, err := h.attendanceService.CheckIn(r.Context(), attendance.CheckInRequest{AttendanceActionRequest: action})
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Check in successful", result)
}

// CheckOut implements AttendanceHandler.
func (h *attendanceHandlerImpl) CheckOut(w http.ResponseWriter, r *http.Request) {
	action, err := parseActionRequest(r)
	if err != nil {
		slog.Warn("Rejected check-out body", "error", err)
		response.BadRequest(w, err.Error(), nil)
		return
	}
	if action.Photo != nil {
		defer action.Photo.Close()
	}

	result, err := h.attendanceService.CheckOut(r.Context(), attendance.CheckOutRequest{AttendanceActionRequest: action})
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Check out successful", result)
}

// Today implements AttendanceHandler.
func (h *attendanceHandlerImpl) Today(w http.ResponseWriter, r *http.Request) {
	result, err := h.attendanceService.GetToday(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// GetMyAttendance implements AttendanceHandler.
func (h *attendanceHandlerImpl) GetMyAttendance(w http.ResponseWriter, r *http.Request) {
	filter := attendance.MyAttendanceFilter{
		Date:           queryString(r, "date"),
		StartDate:      queryString(r, "start_date"),
		EndDate:        queryString(r, "end_date"),
		Status:         queryString(r, "status"),
		ApprovalStatus: queryString(r, "approval_status"),
		Page:           queryInt(r, "page"),
		Limit:          queryInt(r, "limit"),
		SortBy:         r.URL.Query().Get("sort_by"),
		SortOrder:      r.URL.Query().Get("sort_order"),
	}

	results, err := h.attendanceService.GetMyAttendance(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, results)
}

// List implements AttendanceHandler.
func (h *attendanceHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	filter := attendance.AttendanceFilter{
		UserID:         queryString(r, "user_id"),
		Date:           queryString(r, "date"),
		StartDate:      queryString(r, "start_date"),
		EndDate:        queryString(r, "end_date"),
		Status:         queryString(r, "status"),
		ApprovalStatus: queryString(r, "approval_status"),
		WorkType:       queryString(r, "work_type"),
		Page:           queryInt(r, "page"),
		Limit:          queryInt(r, "limit"),
		SortBy:         r.URL.Query().Get("sort_by"),
		SortOrder:      r.URL.Query().Get("sort_order"),
	}

	results, err := h.attendanceService.ListAttendance(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, results)
}

// Get implements AttendanceHandler.
func (h *attendanceHandlerImpl) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	result, err := h.attendanceService.GetAttendance(r.Context(), id)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// Photo streams the check-in or check-out photo of a record the caller may view.
func (h *attendanceHandlerImpl) Photo(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	record, err := h.attendanceService.GetAttendance(r.Context(), id)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	var key *string
	switch chi.URLParam(r, "kind") {
	case "check-in":
		key = record.CheckInPhoto
	case "check-out":
		key = record.CheckOutPhoto
	default:
		response.NotFound(w, "Unknown photo kind")
		return
	}
	if key == nil {
		response.NotFound(w, "No photo for this record")
		return
	}

	photo, err := h.photoService.OpenPhoto(r.Context(), *key)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	defer photo.Close()

	contentType := mime.TypeByExtension(filepath.Ext(*key))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", "private, max-age=3600")
	if _, err := io.Copy(w, photo); err != nil {
		slog.Error("Failed to stream attendance photo", "attendance_id", id, "error", err)
	}
}

// Approve implements AttendanceHandler.
func (h *attendanceHandlerImpl) Approve(w http.ResponseWriter, r *http.Request) {
	req := attendance.ApproveAttendanceRequest{ID: chi.URLParam(r, "id")}

	result, err := h.attendanceService.ApproveAttendance(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Attendance approved successfully", result)
}

// Reject implements AttendanceHandler.
func (h *attendanceHandlerImpl) Reject(w http.ResponseWriter, r *http.Request) {
	var req attendance.RejectAttendanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}
	req.ID = chi.URLParam(r, "id")

	result, err := h.attendanceService.RejectAttendance(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Attendance rejected successfully", result)
}

// AutoClose runs the close-open-records batch for today right now.
func (h *attendanceHandlerImpl) AutoClose(w http.ResponseWriter, r *http.Request) {
	result, err := h.closer.CloseOpenRecords(r.Context(), h.clock.Now(), attendance.CloseReasonManual)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Open attendance records closed", result)
}
