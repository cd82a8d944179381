package attendance

import (
	"context"
	"time"
)

// AttendanceRepository defines data access methods for attendance records.
// Dates are calendar dates in the organization timezone, stored as DATE.
type AttendanceRepository interface {
	// Create inserts a new record. A second record for the same (user, date)
	// fails with ErrAlreadyCheckedIn.
	Create(ctx context.Context, attendance Attendance) (Attendance, error)

	// GetByID retrieves attendance by ID
	GetByID(ctx context.Context, id string) (Attendance, error)

	// GetByUserAndDate returns nil when the user has no record for that date
	GetByUserAndDate(ctx context.Context, userID string, date time.Time) (*Attendance, error)

	// UpdateCheckIn writes the check-in fields of a record that has none yet.
	// It fails with ErrAlreadyCheckedIn if a check-in landed in between.
	UpdateCheckIn(ctx context.Context, attendance Attendance) error

	// Update writes the approval fields
	Update(ctx context.Context, attendance Attendance) error

	// Close writes the check-out fields only while check_out_at is still NULL.
	// It fails with ErrAlreadyCheckedOut when the record was already closed.
	Close(ctx context.Context, id string, fields CloseFields) error

	// ListOpenForDate returns records with a check-in and no check-out
	ListOpenForDate(ctx context.Context, date time.Time) ([]Attendance, error)

	// List retrieves attendance records with filters and pagination
	List(ctx context.Context, filter AttendanceFilter) ([]Attendance, int64, error)

	// ListByUser retrieves attendance records for a specific user
	ListByUser(ctx context.Context, userID string, filter MyAttendanceFilter) ([]Attendance, int64, error)
}
