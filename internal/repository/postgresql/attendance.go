package postgresql

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

const attendanceUserDateKey = "attendances_user_id_date_key"

const attendanceColumns = `
	a.id, a.user_id, a.date,
	a.check_in_at, a.check_in_latitude, a.check_in_longitude, a.check_in_ip,
	a.check_in_work_type, a.check_in_offsite_reason, a.check_in_photo,
	a.check_in_location_id, a.check_in_method,
	a.check_out_at, a.check_out_latitude, a.check_out_longitude, a.check_out_ip,
	a.check_out_work_type, a.check_out_offsite_reason, a.check_out_photo,
	a.check_out_location_id, a.check_out_method,
	a.status, a.late_minutes, a.early_leave_minutes, a.overtime_minutes, a.work_duration_minutes,
	a.closed_by_system, a.close_reason,
	a.approval_status, a.approved_by, a.approved_at, a.rejected_by, a.rejected_at, a.rejection_reason,
	a.created_at, a.updated_at,
	u.full_name`

const attendanceFrom = `
	FROM attendances a
	LEFT JOIN users u ON u.id = a.user_id`

type attendanceRepository struct {
	db *database.DB
}

func NewAttendanceRepository(db *database.DB) attendance.AttendanceRepository {
	return &attendanceRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAttendance(row rowScanner) (attendance.Attendance, error) {
	var att attendance.Attendance
	err := row.Scan(
		&att.ID, &att.UserID, &att.Date,
		&att.CheckInAt, &att.CheckInLatitude, &att.CheckInLongitude, &att.CheckInIP,
		&att.CheckInWorkType, &att.CheckInOffsiteReason, &att.CheckInPhoto,
		&att.CheckInLocationID, &att.CheckInMethod,
		&att.CheckOutAt, &att.CheckOutLatitude, &att.CheckOutLongitude, &att.CheckOutIP,
		&att.CheckOutWorkType, &att.CheckOutOffsiteReason, &att.CheckOutPhoto,
		&att.CheckOutLocationID, &att.CheckOutMethod,
		&att.Status, &att.LateMinutes, &att.EarlyLeaveMinutes, &att.OvertimeMinutes, &att.WorkDurationMinutes,
		&att.ClosedBySystem, &att.CloseReason,
		&att.ApprovalStatus, &att.ApprovedBy, &att.ApprovedAt, &att.RejectedBy, &att.RejectedAt, &att.RejectionReason,
		&att.CreatedAt, &att.UpdatedAt,
		&att.UserName,
	)
	return att, err
}

func collectAttendances(rows pgx.Rows) ([]attendance.Attendance, error) {
	defer rows.Close()

	attendances := make([]attendance.Attendance, 0)
	for rows.Next() {
		att, err := scanAttendance(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan attendance: %w", err)
		}
		attendances = append(attendances, att)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate attendances: %w", err)
	}

	return attendances, nil
}

// Create implements attendance.AttendanceRepository.
func (a *attendanceRepository) Create(ctx context.Context, newAttendance attendance.Attendance) (attendance.Attendance, error) {
	q := GetQuerier(ctx, a.db)

	query := `
		INSERT INTO attendances (
			user_id, date,
			check_in_at, check_in_latitude, check_in_longitude, check_in_ip,
			check_in_work_type, check_in_offsite_reason, check_in_photo,
			check_in_location_id, check_in_method,
			status, late_minutes, approval_status
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14
		) RETURNING id, created_at, updated_at
	`

	err := q.QueryRow(ctx, query,
		newAttendance.UserID,
		newAttendance.Date,
		newAttendance.CheckInAt,
		newAttendance.CheckInLatitude,
		newAttendance.CheckInLongitude,
		newAttendance.CheckInIP,
		newAttendance.CheckInWorkType,
		newAttendance.CheckInOffsiteReason,
		newAttendance.CheckInPhoto,
		newAttendance.CheckInLocationID,
		newAttendance.CheckInMethod,
		newAttendance.Status,
		newAttendance.LateMinutes,
		newAttendance.ApprovalStatus,
	).Scan(&newAttendance.ID, &newAttendance.CreatedAt, &newAttendance.UpdatedAt)

	if err != nil {
		if isUniqueViolation(err, attendanceUserDateKey) {
			return attendance.Attendance{}, attendance.ErrAlreadyCheckedIn
		}
		return attendance.Attendance{}, fmt.Errorf("failed to create attendance: %w", err)
	}

	return newAttendance, nil
}

// GetByID implements attendance.AttendanceRepository.
func (a *attendanceRepository) GetByID(ctx context.Context, id string) (attendance.Attendance, error) {
	q := GetQuerier(ctx, a.db)

	query := "SELECT " + attendanceColumns + attendanceFrom + " WHERE a.id = $1"

	att, err := scanAttendance(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return attendance.Attendance{}, attendance.ErrAttendanceNotFound
		}
		return attendance.Attendance{}, fmt.Errorf("failed to get attendance by ID: %w", err)
	}

	return att, nil
}

// GetByUserAndDate implements attendance.AttendanceRepository.
func (a *attendanceRepository) GetByUserAndDate(ctx context.Context, userID string, date time.Time) (*attendance.Attendance, error) {
	q := GetQuerier(ctx, a.db)

	query := "SELECT " + attendanceColumns + attendanceFrom + " WHERE a.user_id = $1 AND a.date = $2"

	att, err := scanAttendance(q.QueryRow(ctx, query, userID, date))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil // No record for that day yet
		}
		return nil, fmt.Errorf("failed to get attendance by user and date: %w", err)
	}

	return &att, nil
}

// UpdateCheckIn implements attendance.AttendanceRepository.
func (a *attendanceRepository) UpdateCheckIn(ctx context.Context, att attendance.Attendance) error {
	q := GetQuerier(ctx, a.db)

	query := `
		UPDATE attendances SET
			check_in_at = $2, check_in_latitude = $3, check_in_longitude = $4, check_in_ip = $5,
			check_in_work_type = $6, check_in_offsite_reason = $7, check_in_photo = $8,
			check_in_location_id = $9, check_in_method = $10,
			status = $11, late_minutes = $12,
			updated_at = NOW()
		WHERE id = $1 AND check_in_at IS NULL
	`

	tag, err := q.Exec(ctx, query,
		att.ID,
		att.CheckInAt, att.CheckInLatitude, att.CheckInLongitude, att.CheckInIP,
		att.CheckInWorkType, att.CheckInOffsiteReason, att.CheckInPhoto,
		att.CheckInLocationID, att.CheckInMethod,
		att.Status, att.LateMinutes,
	)
	if err != nil {
		return fmt.Errorf("failed to update attendance check-in: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return a.conditionalMiss(ctx, att.ID, attendance.ErrAlreadyCheckedIn)
	}

	return nil
}

// Update implements attendance.AttendanceRepository.
func (a *attendanceRepository) Update(ctx context.Context, att attendance.Attendance) error {
	q := GetQuerier(ctx, a.db)

	query := `
		UPDATE attendances SET
			approval_status = $2,
			approved_by = $3, approved_at = $4,
			rejected_by = $5, rejected_at = $6, rejection_reason = $7,
			updated_at = NOW()
		WHERE id = $1
	`

	tag, err := q.Exec(ctx, query,
		att.ID,
		att.ApprovalStatus,
		att.ApprovedBy, att.ApprovedAt,
		att.RejectedBy, att.RejectedAt, att.RejectionReason,
	)
	if err != nil {
		return fmt.Errorf("failed to update attendance: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return attendance.ErrAttendanceNotFound
	}

	return nil
}

// Close implements attendance.AttendanceRepository.
func (a *attendanceRepository) Close(ctx context.Context, id string, f attendance.CloseFields) error {
	q := GetQuerier(ctx, a.db)

	query := `
		UPDATE attendances SET
			check_out_at = $2, check_out_latitude = $3, check_out_longitude = $4, check_out_ip = $5,
			check_out_work_type = $6, check_out_offsite_reason = $7, check_out_photo = $8,
			check_out_location_id = $9, check_out_method = $10,
			early_leave_minutes = $11, overtime_minutes = $12, work_duration_minutes = $13,
			closed_by_system = $14, close_reason = $15,
			updated_at = NOW()
		WHERE id = $1 AND check_in_at IS NOT NULL AND check_out_at IS NULL
	`

	tag, err := q.Exec(ctx, query,
		id,
		f.CheckOutAt, f.CheckOutLatitude, f.CheckOutLongitude, f.CheckOutIP,
		f.CheckOutWorkType, f.CheckOutOffsiteReason, f.CheckOutPhoto,
		f.CheckOutLocationID, f.CheckOutMethod,
		f.EarlyLeaveMinutes, f.OvertimeMinutes, f.WorkDurationMinutes,
		f.ClosedBySystem, f.CloseReason,
	)
	if err != nil {
		return fmt.Errorf("failed to close attendance: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return a.conditionalMiss(ctx, id, attendance.ErrAlreadyCheckedOut)
	}

	return nil
}

// conditionalMiss tells a missing row apart from a lost race.
func (a *attendanceRepository) conditionalMiss(ctx context.Context, id string, raced error) error {
	q := GetQuerier(ctx, a.db)

	var exists bool
	if err := q.QueryRow(ctx, "SELECT EXISTS (SELECT 1 FROM attendances WHERE id = $1)", id).Scan(&exists); err != nil {
		return fmt.Errorf("failed to check attendance existence: %w", err)
	}
	if !exists {
		return attendance.ErrAttendanceNotFound
	}
	return raced
}

// ListOpenForDate implements attendance.AttendanceRepository.
func (a *attendanceRepository) ListOpenForDate(ctx context.Context, date time.Time) ([]attendance.Attendance, error) {
	q := GetQuerier(ctx, a.db)

	query := "SELECT " + attendanceColumns + attendanceFrom + `
		WHERE a.date = $1
		  AND a.check_in_at IS NOT NULL
		  AND a.check_out_at IS NULL
		ORDER BY a.check_in_at, a.id`

	rows, err := q.Query(ctx, query, date)
	if err != nil {
		return nil, fmt.Errorf("failed to query open attendances: %w", err)
	}

	return collectAttendances(rows)
}

// List implements attendance.AttendanceRepository.
func (a *attendanceRepository) List(ctx context.Context, filter attendance.AttendanceFilter) ([]attendance.Attendance, int64, error) {
	q := GetQuerier(ctx, a.db)

	// Build WHERE clause
	conditions := []string{"TRUE"}
	args := []interface{}{}
	argIdx := 1

	addCondition := func(format string, value any) {
		conditions = append(conditions, fmt.Sprintf(format, argIdx))
		args = append(args, value)
		argIdx++
	}

	if filter.UserID != nil && *filter.UserID != "" {
		addCondition("a.user_id = $%d", *filter.UserID)
	}
	if filter.DivisionID != nil {
		addCondition("u.division_id = $%d", *filter.DivisionID)
	}
	if filter.Date != nil && *filter.Date != "" {
		addCondition("a.date = $%d", *filter.Date)
	}
	if filter.StartDate != nil && *filter.StartDate != "" {
		addCondition("a.date >= $%d", *filter.StartDate)
	}
	if filter.EndDate != nil && *filter.EndDate != "" {
		addCondition("a.date <= $%d", *filter.EndDate)
	}
	if filter.Status != nil && *filter.Status != "" {
		addCondition("a.status = $%d", *filter.Status)
	}
	if filter.ApprovalStatus != nil && *filter.ApprovalStatus != "" {
		addCondition("a.approval_status = $%d", *filter.ApprovalStatus)
	}
	if filter.WorkType != nil && *filter.WorkType != "" {
		addCondition("a.check_in_work_type = $%d", *filter.WorkType)
	}

	baseWhere := strings.Join(conditions, " AND ")

	// Count total (the division filter needs the users join)
	countQuery := "SELECT COUNT(*)" + attendanceFrom + " WHERE " + baseWhere
	var total int64
	if err := q.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count attendances: %w", err)
	}

	// Build ORDER BY
	orderByField := "a.date"
	switch filter.SortBy {
	case "user_name":
		orderByField = "u.full_name"
	case "check_in_at":
		orderByField = "a.check_in_at"
	case "check_out_at":
		orderByField = "a.check_out_at"
	case "status":
		orderByField = "a.status"
	}
	sortOrder := "DESC"
	if strings.ToLower(filter.SortOrder) == "asc" {
		sortOrder = "ASC"
	}

	limit := filter.Limit
	if limit == 0 {
		limit = 20
	}
	page := max(filter.Page, 1)

	selectQuery := fmt.Sprintf("SELECT %s %s WHERE %s ORDER BY %s %s, a.id LIMIT $%d OFFSET $%d",
		attendanceColumns, attendanceFrom, baseWhere, orderByField, sortOrder, argIdx, argIdx+1)
	args = append(args, limit, (page-1)*limit)

	rows, err := q.Query(ctx, selectQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query attendances: %w", err)
	}

	attendances, err := collectAttendances(rows)
	if err != nil {
		return nil, 0, err
	}

	return attendances, total, nil
}

// ListByUser implements attendance.AttendanceRepository.
func (a *attendanceRepository) ListByUser(ctx context.Context, userID string, filter attendance.MyAttendanceFilter) ([]attendance.Attendance, int64, error) {
	return a.List(ctx, filter.AsFilter(userID))
}
