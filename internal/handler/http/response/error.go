package response

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/location"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/logbook"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/report"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/setting"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/storage"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	// A closed time window carries its evaluation for the client
	var windowErr *attendance.WindowError
	if errors.As(err, &windowErr) {
		Unprocessable(w, "OUTSIDE_TIME_WINDOW", windowErr.Error(), windowErr.Details())
		return
	}

	switch {
	// Identity errors
	case errors.Is(err, user.ErrMissingIdentity):
		Unauthorized(w, err.Error())
	case errors.Is(err, user.ErrInsufficientPermissions):
		Forbidden(w, err.Error())
	case errors.Is(err, user.ErrUserNotFound):
		NotFound(w, "User not found")

	// Attendance domain errors
	case errors.Is(err, attendance.ErrAttendanceNotFound):
		NotFound(w, "Attendance record not found")
	case errors.Is(err, attendance.ErrUnauthorized):
		Forbidden(w, err.Error())
	case errors.Is(err, attendance.ErrAlreadyCheckedIn),
		errors.Is(err, attendance.ErrAlreadyCheckedOut),
		errors.Is(err, attendance.ErrAlreadyFinalized):
		Conflict(w, err.Error())
	case errors.Is(err, attendance.ErrNotCheckedIn),
		errors.Is(err, attendance.ErrLogbookRequired),
		errors.Is(err, attendance.ErrMissingOffsiteJustification),
		errors.Is(err, attendance.ErrMissingOffsitePhoto):
		BadRequest(w, err.Error(), nil)

	// Office location errors
	case errors.Is(err, location.ErrLocationNotFound):
		NotFound(w, "Office location not found")
	case errors.Is(err, location.ErrLocationNameExists):
		Conflict(w, err.Error())
	case errors.Is(err, location.ErrNoDetectionMethod),
		errors.Is(err, location.ErrInvalidIPRange):
		BadRequest(w, err.Error(), nil)

	// Logbook errors
	case errors.Is(err, logbook.ErrLogbookNotFound):
		NotFound(w, "Logbook entry not found")
	case errors.Is(err, logbook.ErrFutureDate):
		BadRequest(w, err.Error(), nil)

	// Settings and report errors
	case errors.Is(err, setting.ErrInvalidSettingValue):
		InternalServerError(w, "Stored settings are invalid, update them to repair")
	case errors.Is(err, setting.ErrSettingNotFound):
		NotFound(w, "Setting not found")
	case errors.Is(err, report.ErrInvalidMonth),
		errors.Is(err, report.ErrInvalidYear):
		BadRequest(w, err.Error(), nil)

	// Stored files
	case errors.Is(err, storage.ErrFileNotFound):
		NotFound(w, "File not found")
	case errors.Is(err, storage.ErrInvalidPath):
		BadRequest(w, "Invalid file path", nil)

	// Default
	default:
		slog.Error("unhandled error", "error", err)
		InternalServerError(w, "An unexpected error occurred")
	}
}
