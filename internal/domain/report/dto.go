package report

import (
	"fmt"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/validator"
)

// ========================================
// MONTHLY ATTENDANCE RECAP
// ========================================

type MonthlyRecapRequest struct {
	Month int `json:"month"`
	Year  int `json:"year"`
}

func (r *MonthlyRecapRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.Month < 1 || r.Month > 12 {
		errs = append(errs, validator.ValidationError{
			Field:   "month",
			Message: ErrInvalidMonth.Error(),
		})
	}

	currentYear := time.Now().Year()
	if r.Year < 2020 || r.Year > currentYear+1 {
		errs = append(errs, validator.ValidationError{
			Field:   "year",
			Message: fmt.Sprintf("year must be between 2020 and %d", currentYear+1),
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type MonthlyRecap struct {
	PeriodMonth int    `json:"period_month"`
	PeriodYear  int    `json:"period_year"`
	PeriodStart string `json:"period_start"`
	PeriodEnd   string `json:"period_end"`
	GeneratedAt string `json:"generated_at"`

	Users []UserRecap `json:"users"`
}

type UserRecap struct {
	UserID   string `json:"user_id"`
	FullName string `json:"full_name"`

	Summary   RecapSummary `json:"summary"`
	DailyLogs []DailyLog   `json:"daily_logs"`
}

type RecapSummary struct {
	TotalPresent           int     `json:"total_present"`
	TotalLateDays          int     `json:"total_late_days"`
	TotalLateMinutes       int     `json:"total_late_minutes"`
	TotalEarlyLeaveMinutes int     `json:"total_early_leave_minutes"`
	TotalOvertimeMinutes   int     `json:"total_overtime_minutes"`
	TotalWorkHours         float64 `json:"total_work_hours"`
	TotalOffsiteDays       int     `json:"total_offsite_days"`
	TotalSystemClosed      int     `json:"total_system_closed"`
}

type DailyLog struct {
	Date              string  `json:"date"`
	DayOfWeek         string  `json:"day_of_week"`
	CheckIn           *string `json:"check_in"`
	CheckOut          *string `json:"check_out"`
	WorkType          string  `json:"work_type"`
	Status            string  `json:"status"`
	LateMinutes       int     `json:"late_minutes"`
	EarlyLeaveMinutes int     `json:"early_leave_minutes"`
	OvertimeMinutes   int     `json:"overtime_minutes"`
	WorkMinutes       int     `json:"work_minutes"`
	ClosedBySystem    bool    `json:"closed_by_system"`
	ApprovalStatus    string  `json:"approval_status"`
}
