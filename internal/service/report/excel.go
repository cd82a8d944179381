package report

import (
	"fmt"
	"io"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/report"
	"github.com/xuri/excelize/v2"
)

const (
	summarySheet = "Summary"
	dailySheet   = "Daily"
)

var (
	summaryHeaders = []any{"Name", "Present", "Late Days", "Late (min)", "Early Leave (min)", "Overtime (min)", "Work Hours", "Offsite Days", "System Closed"}
	dailyHeaders   = []any{"Name", "Date", "Day", "Check In", "Check Out", "Work Type", "Status", "Late (min)", "Early Leave (min)", "Overtime (min)", "Work (min)", "System Closed", "Approval"}
)

// writeRecapWorkbook renders the recap as two sheets: per-user totals and one row per day.
func writeRecapWorkbook(recap report.MonthlyRecap, w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return err
	}
	if _, err := f.NewSheet(dailySheet); err != nil {
		return err
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return err
	}

	title := fmt.Sprintf("Attendance Recap %s to %s", recap.PeriodStart, recap.PeriodEnd)
	if err := f.SetCellValue(summarySheet, "A1", title); err != nil {
		return err
	}
	if err := writeRow(f, summarySheet, 3, summaryHeaders); err != nil {
		return err
	}
	if err := f.SetCellStyle(summarySheet, "A3", "I3", headerStyle); err != nil {
		return err
	}
	if err := writeRow(f, dailySheet, 1, dailyHeaders); err != nil {
		return err
	}
	if err := f.SetCellStyle(dailySheet, "A1", "M1", headerStyle); err != nil {
		return err
	}

	summaryRow, dailyRow := 4, 2
	for _, u := range recap.Users {
		s := u.Summary
		if err := writeRow(f, summarySheet, summaryRow, []any{
			u.FullName, s.TotalPresent, s.TotalLateDays, s.TotalLateMinutes, s.TotalEarlyLeaveMinutes,
			s.TotalOvertimeMinutes, fmt.Sprintf("%.2f", s.TotalWorkHours), s.TotalOffsiteDays, s.TotalSystemClosed,
		}); err != nil {
			return err
		}
		summaryRow++

		for _, d := range u.DailyLogs {
			if err := writeRow(f, dailySheet, dailyRow, []any{
				u.FullName, d.Date, d.DayOfWeek, deref(d.CheckIn), deref(d.CheckOut), d.WorkType, d.Status,
				d.LateMinutes, d.EarlyLeaveMinutes, d.OvertimeMinutes, d.WorkMinutes, yesNo(d.ClosedBySystem), d.ApprovalStatus,
			}); err != nil {
				return err
			}
			dailyRow++
		}
	}

	if err := f.SetColWidth(summarySheet, "A", "A", 28); err != nil {
		return err
	}
	if err := f.SetColWidth(dailySheet, "A", "A", 28); err != nil {
		return err
	}

	generatedAt := fmt.Sprintf("Generated at: %s", recap.GeneratedAt)
	if err := f.SetCellValue(summarySheet, fmt.Sprintf("A%d", summaryRow+2), generatedAt); err != nil {
		return err
	}

	return f.Write(w)
}

func writeRow(f *excelize.File, sheet string, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return f.SetSheetRow(sheet, cell, &values)
}

func deref(s *string) string {
	if s == nil {
		return "-"
	}
	return *s
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
