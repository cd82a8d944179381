package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/report"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/database"
)

type reportRepositoryImpl struct {
	db *database.DB
}

func NewReportRepository(db *database.DB) report.ReportRepository {
	return &reportRepositoryImpl{db: db}
}

// ListAttendanceForPeriod implements report.ReportRepository.
func (r *reportRepositoryImpl) ListAttendanceForPeriod(ctx context.Context, start, end time.Time, divisionID *string) ([]attendance.Attendance, error) {
	q := GetQuerier(ctx, r.db)

	query := "SELECT " + attendanceColumns + attendanceFrom + `
		WHERE a.date BETWEEN $1 AND $2
		  AND ($3::uuid IS NULL OR u.division_id = $3::uuid)
		ORDER BY u.full_name, a.user_id, a.date`

	rows, err := q.Query(ctx, query, start, end, divisionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query attendance for period: %w", err)
	}

	return collectAttendances(rows)
}
