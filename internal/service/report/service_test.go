package report

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/location"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/report"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

var wib = time.FixedZone("WIB", 7*60*60)

type fakeReportRepository struct {
	records       []attendance.Attendance
	gotStart      time.Time
	gotEnd        time.Time
	gotDivisionID *string
}

func (f *fakeReportRepository) ListAttendanceForPeriod(ctx context.Context, start, end time.Time, divisionID *string) ([]attendance.Attendance, error) {
	f.gotStart, f.gotEnd, f.gotDivisionID = start, end, divisionID
	return f.records, nil
}

func record(userID, name string, day, inH, outH int, opts func(*attendance.Attendance)) attendance.Attendance {
	in := time.Date(2025, 3, day, inH, 0, 0, 0, wib)
	out := time.Date(2025, 3, day, outH, 0, 0, 0, wib)
	duration := (outH - inH) * 60
	workType := location.WorkTypeOnsite
	a := attendance.Attendance{
		UserID:              userID,
		UserName:            &name,
		Date:                clock.DateOf(in),
		CheckInAt:           &in,
		CheckOutAt:          &out,
		CheckInWorkType:     &workType,
		Status:              attendance.StatusPresent,
		WorkDurationMinutes: &duration,
		ApprovalStatus:      attendance.ApprovalPending,
	}
	if opts != nil {
		opts(&a)
	}
	return a
}

func ctxAs(role user.Role, division string) context.Context {
	id := user.Identity{UserID: "actor", Role: role}
	if division != "" {
		id.DivisionID = &division
	}
	return user.ContextWithIdentity(context.Background(), id)
}

func TestReportService_GenerateMonthlyRecap(t *testing.T) {
	offsite := location.WorkTypeOffsite
	repo := &fakeReportRepository{records: []attendance.Attendance{
		record("u-2", "Siti", 11, 8, 17, func(a *attendance.Attendance) {
			a.Status = attendance.StatusLate
			a.LateMinutes = 20
			a.CheckInWorkType = &offsite
		}),
		record("u-1", "Andi", 10, 8, 16, nil),
		record("u-2", "Siti", 10, 8, 23, func(a *attendance.Attendance) { a.ClosedBySystem = true }),
	}}
	svc := NewReportService(repo, clock.NewFixed(time.Date(2025, 4, 1, 9, 0, 0, 0, wib)))

	recap, err := svc.GenerateMonthlyRecap(ctxAs(user.RoleAdmin, ""), report.MonthlyRecapRequest{Month: 3, Year: 2025})

	require.NoError(t, err)
	assert.Nil(t, repo.gotDivisionID)
	assert.Equal(t, "2025-03-01", recap.PeriodStart)
	assert.Equal(t, "2025-03-31", recap.PeriodEnd)
	require.Len(t, recap.Users, 2)

	andi := recap.Users[0]
	assert.Equal(t, "Andi", andi.FullName)
	assert.Equal(t, 1, andi.Summary.TotalPresent)
	assert.InDelta(t, 8.0, andi.Summary.TotalWorkHours, 0.001)

	siti := recap.Users[1]
	assert.Equal(t, 2, siti.Summary.TotalPresent)
	assert.Equal(t, 1, siti.Summary.TotalLateDays)
	assert.Equal(t, 20, siti.Summary.TotalLateMinutes)
	assert.Equal(t, 1, siti.Summary.TotalOffsiteDays)
	assert.Equal(t, 1, siti.Summary.TotalSystemClosed)
	require.Len(t, siti.DailyLogs, 2)
	assert.Equal(t, "2025-03-10", siti.DailyLogs[0].Date)
	assert.Equal(t, "Monday", siti.DailyLogs[0].DayOfWeek)
	assert.Equal(t, "08:00", *siti.DailyLogs[0].CheckIn)
	assert.Equal(t, "23:00", *siti.DailyLogs[0].CheckOut)
}

func TestReportService_Scope(t *testing.T) {
	tests := []struct {
		name         string
		ctx          context.Context
		wantDivision *string
		wantErr      error
	}{
		{"supervisor limited to division", ctxAs(user.RoleSupervisor, "div-eng"), ptr("div-eng"), nil},
		{"supervisor without division", ctxAs(user.RoleSupervisor, ""), nil, user.ErrInsufficientPermissions},
		{"employee", ctxAs(user.RoleEmployee, "div-eng"), nil, user.ErrInsufficientPermissions},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &fakeReportRepository{}
			svc := NewReportService(repo, clock.NewFixed(time.Now()))

			_, err := svc.GenerateMonthlyRecap(tt.ctx, report.MonthlyRecapRequest{Month: 3, Year: 2025})

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantDivision, repo.gotDivisionID)
		})
	}
}

func TestReportService_ValidatesPeriod(t *testing.T) {
	svc := NewReportService(&fakeReportRepository{}, clock.NewFixed(time.Now()))

	_, err := svc.GenerateMonthlyRecap(ctxAs(user.RoleAdmin, ""), report.MonthlyRecapRequest{Month: 13, Year: 2025})

	assert.Error(t, err)
}

func TestReportService_ExportMonthlyRecap(t *testing.T) {
	repo := &fakeReportRepository{records: []attendance.Attendance{
		record("u-1", "Andi", 10, 8, 16, nil),
		record("u-1", "Andi", 11, 9, 16, nil),
	}}
	svc := NewReportService(repo, clock.NewFixed(time.Date(2025, 4, 1, 9, 0, 0, 0, wib)))
	buf := new(bytes.Buffer)

	filename, err := svc.ExportMonthlyRecap(ctxAs(user.RoleAdmin, ""), report.MonthlyRecapRequest{Month: 3, Year: 2025}, buf)

	require.NoError(t, err)
	assert.Equal(t, "attendance_recap_2025-03.xlsx", filename)

	f, err := excelize.OpenReader(buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{summarySheet, dailySheet}, f.GetSheetList())

	name, err := f.GetCellValue(summarySheet, "A4")
	require.NoError(t, err)
	assert.Equal(t, "Andi", name)

	present, err := f.GetCellValue(summarySheet, "B4")
	require.NoError(t, err)
	assert.Equal(t, "2", present)

	rows, err := f.GetRows(dailySheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "2025-03-11", rows[2][1])
	assert.Equal(t, "09:00", rows[2][3])
}

func ptr(s string) *string { return &s }
