package report

import (
	"context"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/attendance"
)

// ReportRepository defines the interface for report data access
type ReportRepository interface {
	// ListAttendanceForPeriod returns records with start <= date <= end, joined
	// with the owner's name. A non-nil divisionID limits rows to that division.
	ListAttendanceForPeriod(ctx context.Context, start, end time.Time, divisionID *string) ([]attendance.Attendance, error)
}
