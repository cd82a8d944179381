package report

import (
	"context"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/location"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/report"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/clock"
)

type ReportServiceImpl struct {
	reportRepo report.ReportRepository
	clock      clock.Clock
}

func NewReportService(reportRepo report.ReportRepository, clk clock.Clock) report.ReportService {
	return &ReportServiceImpl{
		reportRepo: reportRepo,
		clock:      clk,
	}
}

// divisionScope limits supervisors to their own division.
func (s *ReportServiceImpl) divisionScope(ctx context.Context) (*string, error) {
	actor, err := user.IdentityFromContext(ctx)
	if err != nil {
		return nil, err
	}

	switch {
	case actor.IsAdmin():
		return nil, nil
	case actor.IsSupervisor() && actor.DivisionID != nil:
		return actor.DivisionID, nil
	default:
		return nil, user.ErrInsufficientPermissions
	}
}

// GenerateMonthlyRecap implements report.ReportService.
func (s *ReportServiceImpl) GenerateMonthlyRecap(ctx context.Context, req report.MonthlyRecapRequest) (report.MonthlyRecap, error) {
	if err := req.Validate(); err != nil {
		return report.MonthlyRecap{}, err
	}

	divisionID, err := s.divisionScope(ctx)
	if err != nil {
		return report.MonthlyRecap{}, err
	}

	// Attendance dates are stored as UTC midnights
	periodStart := time.Date(req.Year, time.Month(req.Month), 1, 0, 0, 0, 0, time.UTC)
	periodEnd := periodStart.AddDate(0, 1, -1)

	records, err := s.reportRepo.ListAttendanceForPeriod(ctx, periodStart, periodEnd, divisionID)
	if err != nil {
		return report.MonthlyRecap{}, fmt.Errorf("failed to get attendance data: %w", err)
	}

	return report.MonthlyRecap{
		PeriodMonth: req.Month,
		PeriodYear:  req.Year,
		PeriodStart: periodStart.Format("2006-01-02"),
		PeriodEnd:   periodEnd.Format("2006-01-02"),
		GeneratedAt: s.clock.Now().Format(time.RFC3339),
		Users:       s.aggregate(records),
	}, nil
}

// ExportMonthlyRecap implements report.ReportService.
func (s *ReportServiceImpl) ExportMonthlyRecap(ctx context.Context, req report.MonthlyRecapRequest, w io.Writer) (string, error) {
	recap, err := s.GenerateMonthlyRecap(ctx, req)
	if err != nil {
		return "", err
	}

	if err := writeRecapWorkbook(recap, w); err != nil {
		return "", fmt.Errorf("%w: %v", report.ErrReportGenerationFailed, err)
	}

	return fmt.Sprintf("attendance_recap_%04d-%02d.xlsx", req.Year, req.Month), nil
}

// aggregate groups records per user, ordered by name then id, days ascending.
func (s *ReportServiceImpl) aggregate(records []attendance.Attendance) []report.UserRecap {
	byUser := make(map[string]*report.UserRecap)
	order := make([]string, 0)

	sort.SliceStable(records, func(i, j int) bool { return records[i].Date.Before(records[j].Date) })

	for _, rec := range records {
		recap, ok := byUser[rec.UserID]
		if !ok {
			recap = &report.UserRecap{UserID: rec.UserID, DailyLogs: []report.DailyLog{}}
			if rec.UserName != nil {
				recap.FullName = *rec.UserName
			}
			byUser[rec.UserID] = recap
			order = append(order, rec.UserID)
		}

		log := s.dailyLog(rec)
		recap.DailyLogs = append(recap.DailyLogs, log)

		sum := &recap.Summary
		if rec.HasCheckedIn() {
			sum.TotalPresent++
		}
		if rec.Status == attendance.StatusLate {
			sum.TotalLateDays++
		}
		sum.TotalLateMinutes += rec.LateMinutes
		sum.TotalEarlyLeaveMinutes += rec.EarlyLeaveMinutes
		sum.TotalOvertimeMinutes += rec.OvertimeMinutes
		sum.TotalWorkHours += float64(log.WorkMinutes) / 60
		if log.WorkType == location.WorkTypeOffsite {
			sum.TotalOffsiteDays++
		}
		if rec.ClosedBySystem {
			sum.TotalSystemClosed++
		}
	}

	users := make([]report.UserRecap, 0, len(order))
	for _, id := range order {
		users = append(users, *byUser[id])
	}
	sort.SliceStable(users, func(i, j int) bool {
		if users[i].FullName != users[j].FullName {
			return users[i].FullName < users[j].FullName
		}
		return users[i].UserID < users[j].UserID
	})

	return users
}

func (s *ReportServiceImpl) dailyLog(rec attendance.Attendance) report.DailyLog {
	log := report.DailyLog{
		Date:              rec.Date.Format("2006-01-02"),
		DayOfWeek:         rec.Date.Weekday().String(),
		CheckIn:           s.clockTime(rec.CheckInAt),
		CheckOut:          s.clockTime(rec.CheckOutAt),
		Status:            rec.Status,
		LateMinutes:       rec.LateMinutes,
		EarlyLeaveMinutes: rec.EarlyLeaveMinutes,
		OvertimeMinutes:   rec.OvertimeMinutes,
		ClosedBySystem:    rec.ClosedBySystem,
		ApprovalStatus:    rec.ApprovalStatus,
	}
	if rec.CheckInWorkType != nil {
		log.WorkType = *rec.CheckInWorkType
	}
	if rec.WorkDurationMinutes != nil {
		log.WorkMinutes = *rec.WorkDurationMinutes
	}
	return log
}

func (s *ReportServiceImpl) clockTime(t *time.Time) *string {
	if t == nil {
		return nil
	}
	formatted := t.In(s.clock.Location()).Format("15:04")
	return &formatted
}
