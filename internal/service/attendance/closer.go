package attendance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/clock"
)

type CloserImpl struct {
	attendance.AttendanceRepository
	location *time.Location
}

func NewCloser(attendanceRepository attendance.AttendanceRepository, clk clock.Clock) attendance.Closer {
	return &CloserImpl{AttendanceRepository: attendanceRepository, location: clk.Location()}
}

// CloseOpenRecords implements attendance.Closer. Each record is closed by its
// own conditional update, so a second run over the same day finds nothing open.
func (c *CloserImpl) CloseOpenRecords(ctx context.Context, at time.Time, reason string) (attendance.CloseResult, error) {
	at = at.In(c.location)
	date := clock.DateOf(at)

	result := attendance.CloseResult{
		Date:   date.Format("2006-01-02"),
		Reason: reason,
	}

	records, err := c.AttendanceRepository.ListOpenForDate(ctx, date)
	if err != nil {
		return result, fmt.Errorf("failed to list open attendances: %w", err)
	}

	for _, record := range records {
		err := c.closeOne(ctx, record, at, reason)
		switch {
		case err == nil:
			result.Succeeded++
		case errors.Is(err, attendance.ErrAlreadyCheckedOut):
			result.Skipped++
		default:
			slog.Error("Cron: Failed to auto-close attendance",
				"attendance_id", record.ID,
				"user_id", record.UserID,
				"error", err,
			)
			result.Failed++
		}
	}

	slog.Info("Cron: Auto-closed open attendances",
		"date", result.Date,
		"reason", reason,
		"succeeded", result.Succeeded,
		"failed", result.Failed,
		"skipped", result.Skipped,
	)

	return result, nil
}

func (c *CloserImpl) closeOne(ctx context.Context, record attendance.Attendance, at time.Time, reason string) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("panic while closing attendance: %v", rec)
		}
	}()

	if record.CheckInAt == nil {
		return attendance.ErrNotCheckedIn
	}

	return c.AttendanceRepository.Close(ctx, record.ID, attendance.CloseFields{
		CheckOutAt:          at,
		WorkDurationMinutes: attendance.WorkDurationMinutes(record.CheckInAt.In(c.location), at),
		ClosedBySystem:      true,
		CloseReason:         &reason,
	})
}
