package attendance

import (
	"errors"
	"strconv"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/timewindow"
)

// Attendance domain errors
var (
	// Check-in errors
	ErrAlreadyCheckedIn            = errors.New("you have already checked in today")
	ErrMissingOffsiteJustification = errors.New("a reason is required when attending from outside the office")
	ErrMissingOffsitePhoto         = errors.New("a photo is required when attending from outside the office")
	ErrOutsideCheckInWindow        = errors.New("check-in is not allowed at this time")

	// Check-out errors
	ErrNotCheckedIn      = errors.New("you have not checked in yet")
	ErrAlreadyCheckedOut = errors.New("you have already checked out")
	ErrLogbookRequired   = errors.New("please fill in today's logbook before checking out")
	ErrCheckOutTooEarly  = errors.New("check-out is not allowed yet")

	// General errors
	ErrAttendanceNotFound = errors.New("attendance record not found")
	ErrUnauthorized       = errors.New("unauthorized to access this attendance record")
	ErrAlreadyFinalized   = errors.New("attendance already has the requested approval status")
)

// WindowError is returned when a time window blocks an action. It wraps
// ErrOutsideCheckInWindow or ErrCheckOutTooEarly.
type WindowError struct {
	Err        error
	Evaluation timewindow.Evaluation
}

func (e *WindowError) Error() string {
	if e.Evaluation.Message != "" {
		return e.Evaluation.Message
	}
	return e.Err.Error()
}

func (e *WindowError) Unwrap() error {
	return e.Err
}

// Details renders the evaluation for API error responses.
func (e *WindowError) Details() map[string]string {
	details := map[string]string{"status": string(e.Evaluation.Status)}
	if e.Evaluation.WaitMinutes > 0 {
		details["wait_minutes"] = strconv.Itoa(e.Evaluation.WaitMinutes)
	}
	if e.Evaluation.LateMinutes > 0 {
		details["late_minutes"] = strconv.Itoa(e.Evaluation.LateMinutes)
	}
	return details
}
