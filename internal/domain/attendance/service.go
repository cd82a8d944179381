package attendance

import (
	"context"
	"io"
	"time"
)

// AttendanceService defines business logic for attendance operations
type AttendanceService interface {
	// CheckIn opens today's record for the authenticated user
	CheckIn(ctx context.Context, req CheckInRequest) (ActionResponse, error)

	// CheckOut closes today's record for the authenticated user
	CheckOut(ctx context.Context, req CheckOutRequest) (ActionResponse, error)

	// GetToday reports what the authenticated user can do today
	GetToday(ctx context.Context) (TodayStatusResponse, error)

	// GetMyAttendance retrieves attendance records for the authenticated user
	GetMyAttendance(ctx context.Context, filter MyAttendanceFilter) (ListAttendanceResponse, error)

	// ListAttendance retrieves attendance records with filters (admin/supervisor)
	ListAttendance(ctx context.Context, filter AttendanceFilter) (ListAttendanceResponse, error)

	// GetAttendance retrieves a single attendance record by ID
	GetAttendance(ctx context.Context, id string) (AttendanceResponse, error)

	// ApproveAttendance approves an attendance record
	ApproveAttendance(ctx context.Context, req ApproveAttendanceRequest) (AttendanceResponse, error)

	// RejectAttendance rejects an attendance record with reason
	RejectAttendance(ctx context.Context, req RejectAttendanceRequest) (AttendanceResponse, error)
}

// Closer force-closes records the users never checked out of.
type Closer interface {
	// CloseOpenRecords closes every open record for at's date, measuring
	// duration up to at. Per-record failures are counted, not returned.
	CloseOpenRecords(ctx context.Context, at time.Time, reason string) (CloseResult, error)
}

// PhotoUploader stores check-in/check-out photos and returns the stored path.
type PhotoUploader interface {
	UploadAttendancePhoto(ctx context.Context, userID string, date time.Time, file io.Reader, filename string, kind string) (string, error)
}
