package attendance

import (
	"bytes"
	"context"
	"errors"
	"mime/multipart"
	"sync"
	"testing"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/location"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/timewindow"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/clock"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/validator"
	timewindowsvc "github.com/cmlabs-hris/attendance-backend-go/internal/service/timewindow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopFile struct {
	*bytes.Reader
}

func (nopFile) Close() error { return nil }

type testEnv struct {
	attendances *fakeAttendanceRepository
	logbooks    *fakeLogbookRepository
	users       *fakeUserRepository
	resolver    *stubResolver
	photos      *fakePhotoUploader
	clock       *clock.Fixed
	svc         attendance.AttendanceService
}

// newTestEnv uses the default time windows: check-in 06:00-10:00, working
// hours 08:00-16:00 with 15 minutes tolerance, check-out 16:00-23:00.
func newTestEnv(now int) *testEnv {
	env := &testEnv{
		attendances: newFakeAttendanceRepository(),
		logbooks:    &fakeLogbookRepository{},
		users:       &fakeUserRepository{users: map[string]user.User{}},
		resolver:    &stubResolver{resolution: onsite},
		photos:      &fakePhotoUploader{},
		clock:       clock.NewFixed(at(now/60, now%60)),
	}
	policy := timewindowsvc.NewPolicy(&fakeSettingRepository{})
	env.svc = NewAttendanceService(env.attendances, env.logbooks, env.users, env.resolver, policy, env.photos, env.clock)
	return env
}

func employeeCtx(userID string) context.Context {
	division := "div-eng"
	return user.ContextWithIdentity(context.Background(), user.Identity{UserID: userID, DivisionID: &division, Role: user.RoleEmployee})
}

func actionRequest(reason string, withPhoto bool) attendance.AttendanceActionRequest {
	req := attendance.AttendanceActionRequest{ClientIP: "10.0.0.5"}
	if reason != "" {
		req.OffsiteReason = &reason
	}
	if withPhoto {
		req.Photo = nopFile{bytes.NewReader([]byte("jpeg"))}
		req.PhotoHeader = &multipart.FileHeader{Filename: "selfie.jpg", Size: 4}
	}
	return req
}

func checkIn(reason string, withPhoto bool) attendance.CheckInRequest {
	return attendance.CheckInRequest{AttendanceActionRequest: actionRequest(reason, withPhoto)}
}

func checkOut(reason string, withPhoto bool) attendance.CheckOutRequest {
	return attendance.CheckOutRequest{AttendanceActionRequest: actionRequest(reason, withPhoto)}
}

func hm(h, m int) int { return h*60 + m }

// ===== CHECK-IN =====

func TestAttendanceService_CheckIn_OnsiteOnTime(t *testing.T) {
	// Setup
	env := newTestEnv(hm(7, 50))
	ctx := employeeCtx("u-1")

	// Act
	resp, err := env.svc.CheckIn(ctx, checkIn("working from cafe", true))

	// Assert
	require.NoError(t, err)
	assert.Equal(t, attendance.StatusPresent, resp.Attendance.Status)
	assert.Equal(t, location.WorkTypeOnsite, *resp.Attendance.CheckInWorkType)
	assert.Equal(t, string(location.MethodIPDirect), *resp.Attendance.CheckInMethod)
	assert.Equal(t, "loc-hq", *resp.Attendance.CheckInLocationID)
	assert.Equal(t, timewindow.StatusOnTime, resp.TimeEvaluation.Status)
	assert.Empty(t, resp.Messages)

	// onsite ignores justification and photo
	assert.Nil(t, resp.Attendance.CheckInOffsiteReason)
	assert.Nil(t, resp.Attendance.CheckInPhoto)
	assert.Empty(t, env.photos.uploads)
}

func TestAttendanceService_CheckIn_LateIsAdvisory(t *testing.T) {
	env := newTestEnv(hm(8, 20))

	resp, err := env.svc.CheckIn(employeeCtx("u-1"), checkIn("", false))

	require.NoError(t, err)
	assert.Equal(t, attendance.StatusLate, resp.Attendance.Status)
	assert.Equal(t, 5, resp.Attendance.LateMinutes)
	require.Len(t, resp.Messages, 1)
	assert.Contains(t, resp.Messages[0], "5 minutes")
}

func TestAttendanceService_CheckIn_AlreadyCheckedIn(t *testing.T) {
	env := newTestEnv(hm(7, 0))
	ctx := employeeCtx("u-1")

	_, err := env.svc.CheckIn(ctx, checkIn("", false))
	require.NoError(t, err)

	_, err = env.svc.CheckIn(ctx, checkIn("", false))
	assert.ErrorIs(t, err, attendance.ErrAlreadyCheckedIn)
}

func TestAttendanceService_CheckIn_OffsiteEvidence(t *testing.T) {
	tests := []struct {
		name      string
		reason    string
		withPhoto bool
		wantErr   error
	}{
		{"no reason", "", true, attendance.ErrMissingOffsiteJustification},
		{"blank reason", "   ", true, attendance.ErrMissingOffsiteJustification},
		{"no photo", "client visit", false, attendance.ErrMissingOffsitePhoto},
		{"reason and photo", "client visit", true, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(hm(7, 30))
			env.resolver.resolution = offsite

			resp, err := env.svc.CheckIn(employeeCtx("u-1"), checkIn(tt.reason, tt.withPhoto))

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Empty(t, env.photos.uploads)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, location.WorkTypeOffsite, *resp.Attendance.CheckInWorkType)
			assert.Equal(t, "client visit", *resp.Attendance.CheckInOffsiteReason)
			require.NotNil(t, resp.Attendance.CheckInPhoto)
			assert.Len(t, env.photos.uploads, 1)
			assert.Contains(t, resp.Messages, offsite.Reason)
		})
	}
}

func TestAttendanceService_CheckIn_OutsideWindow(t *testing.T) {
	tests := []struct {
		name       string
		now        int
		wantStatus timewindow.Status
		wantWait   int
	}{
		{"too early", hm(5, 59), timewindow.StatusTooEarly, 1},
		{"too late", hm(10, 1), timewindow.StatusTooLate, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(tt.now)

			_, err := env.svc.CheckIn(employeeCtx("u-1"), checkIn("", false))

			require.ErrorIs(t, err, attendance.ErrOutsideCheckInWindow)
			var windowErr *attendance.WindowError
			require.ErrorAs(t, err, &windowErr)
			assert.Equal(t, tt.wantStatus, windowErr.Evaluation.Status)
			assert.Equal(t, tt.wantWait, windowErr.Evaluation.WaitMinutes)
			assert.NotEmpty(t, windowErr.Error())
		})
	}
}

func TestAttendanceService_CheckIn_LocationGateRunsBeforeTimeGate(t *testing.T) {
	env := newTestEnv(hm(5, 0))
	env.resolver.resolution = offsite

	_, err := env.svc.CheckIn(employeeCtx("u-1"), checkIn("", false))

	assert.ErrorIs(t, err, attendance.ErrMissingOffsiteJustification)
}

func TestAttendanceService_CheckIn_ConcurrentAttemptsCreateOneRecord(t *testing.T) {
	env := newTestEnv(hm(7, 0))
	ctx := employeeCtx("u-1")

	// both requests pass the existence check before either inserts
	var barrier sync.WaitGroup
	barrier.Add(2)
	env.attendances.getBarrier = &barrier

	errs := make([]error, 2)
	var wg sync.WaitGroup
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = env.svc.CheckIn(ctx, checkIn("", false))
		}(i)
	}
	wg.Wait()

	var succeeded, conflicted int
	for _, err := range errs {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, attendance.ErrAlreadyCheckedIn):
			conflicted++
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 1, conflicted)
	assert.Len(t, env.attendances.rows, 1)
}

func TestAttendanceService_CheckIn_FillsExistingRecordWithoutCheckIn(t *testing.T) {
	env := newTestEnv(hm(7, 0))
	existing := env.attendances.seed(attendance.Attendance{UserID: "u-1", Date: clock.DateOf(at(0, 0))})

	resp, err := env.svc.CheckIn(employeeCtx("u-1"), checkIn("", false))

	require.NoError(t, err)
	assert.Equal(t, existing.ID, resp.Attendance.ID)
	assert.NotNil(t, resp.Attendance.CheckInTime)
}

// ===== CHECK-OUT =====

// checkedInEnv returns an env with u-1 checked in at checkInAt, clock moved to now.
func checkedInEnv(t *testing.T, checkInAt, now int) *testEnv {
	t.Helper()
	env := newTestEnv(checkInAt)
	_, err := env.svc.CheckIn(employeeCtx("u-1"), checkIn("", false))
	require.NoError(t, err)
	env.clock.Set(at(now/60, now%60))
	return env
}

func TestAttendanceService_CheckOut_NotCheckedIn(t *testing.T) {
	env := newTestEnv(hm(17, 0))
	env.logbooks.add("u-1", clock.DateOf(at(0, 0)))

	_, err := env.svc.CheckOut(employeeCtx("u-1"), checkOut("", false))

	assert.ErrorIs(t, err, attendance.ErrNotCheckedIn)
}

func TestAttendanceService_CheckOut_LogbookRequired(t *testing.T) {
	env := checkedInEnv(t, hm(8, 0), hm(16, 30))

	_, err := env.svc.CheckOut(employeeCtx("u-1"), checkOut("", false))

	assert.ErrorIs(t, err, attendance.ErrLogbookRequired)
}

func TestAttendanceService_CheckOut_OffsiteWithoutReason(t *testing.T) {
	env := checkedInEnv(t, hm(8, 0), hm(16, 30))
	env.logbooks.add("u-1", clock.DateOf(at(0, 0)))
	env.resolver.resolution = offsite

	_, err := env.svc.CheckOut(employeeCtx("u-1"), checkOut("", true))

	assert.ErrorIs(t, err, attendance.ErrMissingOffsiteJustification)
}

func TestAttendanceService_CheckOut_TooEarly(t *testing.T) {
	env := checkedInEnv(t, hm(8, 0), hm(15, 0))
	env.logbooks.add("u-1", clock.DateOf(at(0, 0)))

	_, err := env.svc.CheckOut(employeeCtx("u-1"), checkOut("", false))

	require.ErrorIs(t, err, attendance.ErrCheckOutTooEarly)
	var windowErr *attendance.WindowError
	require.ErrorAs(t, err, &windowErr)
	assert.Equal(t, 60, windowErr.Evaluation.WaitMinutes)
	assert.Equal(t, "60", windowErr.Details()["wait_minutes"])
}

func TestAttendanceService_CheckOut_EarlyLeaveIsAdvisory(t *testing.T) {
	env := checkedInEnv(t, hm(9, 0), hm(16, 30))
	env.logbooks.add("u-1", clock.DateOf(at(0, 0)))

	resp, err := env.svc.CheckOut(employeeCtx("u-1"), checkOut("", false))

	require.NoError(t, err)
	assert.Equal(t, timewindow.StatusEarly, resp.TimeEvaluation.Status)
	assert.Equal(t, 30, resp.Attendance.EarlyLeaveMinutes)
	require.NotNil(t, resp.Attendance.WorkDurationMinutes)
	assert.Equal(t, 450, *resp.Attendance.WorkDurationMinutes)
	assert.False(t, resp.Attendance.ClosedBySystem)
	assert.Len(t, resp.Messages, 1)
}

func TestAttendanceService_CheckOut_OffsiteUsesSeparateReason(t *testing.T) {
	env := checkedInEnv(t, hm(8, 0), hm(23, 30))
	env.logbooks.add("u-1", clock.DateOf(at(0, 0)))
	env.resolver.resolution = offsite

	resp, err := env.svc.CheckOut(employeeCtx("u-1"), checkOut("site inspection", true))

	require.NoError(t, err)
	assert.Equal(t, location.WorkTypeOnsite, *resp.Attendance.CheckInWorkType)
	assert.Equal(t, location.WorkTypeOffsite, *resp.Attendance.CheckOutWorkType)
	assert.Nil(t, resp.Attendance.CheckInOffsiteReason)
	assert.Equal(t, "site inspection", *resp.Attendance.CheckOutOffsiteReason)
	assert.Equal(t, timewindow.StatusOvertime, resp.TimeEvaluation.Status)
	assert.Equal(t, 30, resp.Attendance.OvertimeMinutes)
}

func TestAttendanceService_CheckOut_AlreadyCheckedOut(t *testing.T) {
	env := checkedInEnv(t, hm(8, 0), hm(16, 0))
	env.logbooks.add("u-1", clock.DateOf(at(0, 0)))
	ctx := employeeCtx("u-1")

	_, err := env.svc.CheckOut(ctx, checkOut("", false))
	require.NoError(t, err)

	_, err = env.svc.CheckOut(ctx, checkOut("", false))
	assert.ErrorIs(t, err, attendance.ErrAlreadyCheckedOut)

	_, err = env.svc.CheckIn(ctx, checkIn("", false))
	assert.ErrorIs(t, err, attendance.ErrAlreadyCheckedIn)
}

func TestAttendanceService_FullDay(t *testing.T) {
	env := newTestEnv(hm(8, 16))
	ctx := employeeCtx("u-1")

	in, err := env.svc.CheckIn(ctx, checkIn("", false))
	require.NoError(t, err)
	assert.Equal(t, attendance.StatusLate, in.Attendance.Status)
	assert.Equal(t, 1, in.Attendance.LateMinutes)

	env.clock.Advance(8*time.Hour + 44*time.Minute)
	_, err = env.svc.CheckOut(ctx, checkOut("", false))
	require.ErrorIs(t, err, attendance.ErrLogbookRequired)

	env.logbooks.add("u-1", clock.DateOf(at(0, 0)))
	out, err := env.svc.CheckOut(ctx, checkOut("", false))
	require.NoError(t, err)
	assert.Equal(t, timewindow.StatusOnTime, out.TimeEvaluation.Status)
	require.NotNil(t, out.Attendance.WorkDurationMinutes)
	assert.Equal(t, 524, *out.Attendance.WorkDurationMinutes)

	_, err = env.svc.CheckOut(ctx, checkOut("", false))
	assert.ErrorIs(t, err, attendance.ErrAlreadyCheckedOut)

	result, err := NewCloser(env.attendances, env.clock).CloseOpenRecords(context.Background(), at(23, 0), attendance.CloseReasonScheduled)
	require.NoError(t, err)
	assert.Zero(t, result.Succeeded)
	assert.Zero(t, result.Failed)
	assert.Zero(t, result.Skipped)
}

// ===== APPROVAL =====

func reviewerCtx(role user.Role, division string) context.Context {
	id := user.Identity{UserID: "reviewer-" + string(role), Role: role}
	if division != "" {
		id.DivisionID = &division
	}
	return user.ContextWithIdentity(context.Background(), id)
}

func approvalEnv() (*testEnv, attendance.Attendance) {
	env := newTestEnv(hm(17, 0))
	division := "div-eng"
	env.users.users["u-1"] = user.User{ID: "u-1", FullName: "Budi", DivisionID: &division, Role: user.RoleEmployee}
	checkInAt := at(8, 0)
	record := env.attendances.seed(attendance.Attendance{UserID: "u-1", Date: clock.DateOf(checkInAt), CheckInAt: &checkInAt})
	return env, record
}

func TestAttendanceService_ApproveThenReject_ClearsApproval(t *testing.T) {
	env, record := approvalEnv()
	ctx := reviewerCtx(user.RoleAdmin, "")

	_, err := env.svc.ApproveAttendance(ctx, attendance.ApproveAttendanceRequest{ID: record.ID})
	require.NoError(t, err)

	resp, err := env.svc.RejectAttendance(ctx, attendance.RejectAttendanceRequest{ID: record.ID, Reason: "photo unclear"})
	require.NoError(t, err)

	assert.Equal(t, attendance.ApprovalRejected, resp.ApprovalStatus)
	assert.Nil(t, resp.ApprovedBy)
	assert.Nil(t, resp.ApprovedAt)
	assert.Equal(t, "reviewer-admin", *resp.RejectedBy)
	assert.Equal(t, "photo unclear", *resp.RejectionReason)

	stored, _ := env.attendances.GetByID(context.Background(), record.ID)
	assert.Nil(t, stored.ApprovedBy)
}

func TestAttendanceService_RejectThenApprove_ClearsRejection(t *testing.T) {
	env, record := approvalEnv()
	ctx := reviewerCtx(user.RoleSupervisor, "div-eng")

	_, err := env.svc.RejectAttendance(ctx, attendance.RejectAttendanceRequest{ID: record.ID, Reason: "wrong site"})
	require.NoError(t, err)

	resp, err := env.svc.ApproveAttendance(ctx, attendance.ApproveAttendanceRequest{ID: record.ID})
	require.NoError(t, err)

	assert.Equal(t, attendance.ApprovalApproved, resp.ApprovalStatus)
	assert.Nil(t, resp.RejectedBy)
	assert.Nil(t, resp.RejectedAt)
	assert.Nil(t, resp.RejectionReason)
	assert.NotNil(t, resp.ApprovedAt)
}

func TestAttendanceService_Approve_AlreadyFinalized(t *testing.T) {
	env, record := approvalEnv()
	ctx := reviewerCtx(user.RoleAdmin, "")

	_, err := env.svc.ApproveAttendance(ctx, attendance.ApproveAttendanceRequest{ID: record.ID})
	require.NoError(t, err)

	_, err = env.svc.ApproveAttendance(ctx, attendance.ApproveAttendanceRequest{ID: record.ID})
	assert.ErrorIs(t, err, attendance.ErrAlreadyFinalized)
}

func TestAttendanceService_Approve_Scope(t *testing.T) {
	tests := []struct {
		name    string
		ctx     context.Context
		wantErr error
	}{
		{"admin any division", reviewerCtx(user.RoleAdmin, "div-sales"), nil},
		{"supervisor same division", reviewerCtx(user.RoleSupervisor, "div-eng"), nil},
		{"supervisor other division", reviewerCtx(user.RoleSupervisor, "div-sales"), attendance.ErrUnauthorized},
		{"supervisor without division", reviewerCtx(user.RoleSupervisor, ""), attendance.ErrUnauthorized},
		{"employee", reviewerCtx(user.RoleEmployee, "div-eng"), attendance.ErrUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env, record := approvalEnv()

			_, err := env.svc.ApproveAttendance(tt.ctx, attendance.ApproveAttendanceRequest{ID: record.ID})

			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestAttendanceService_Reject_RequiresReason(t *testing.T) {
	env, record := approvalEnv()

	_, err := env.svc.RejectAttendance(reviewerCtx(user.RoleAdmin, ""), attendance.RejectAttendanceRequest{ID: record.ID, Reason: " "})

	assert.Error(t, err)
}

// ===== QUERIES =====

func TestAttendanceService_GetToday(t *testing.T) {
	env := newTestEnv(hm(7, 0))
	ctx := employeeCtx("u-1")

	status, err := env.svc.GetToday(ctx)
	require.NoError(t, err)
	assert.True(t, status.CanCheckIn)
	assert.False(t, status.CanCheckOut)

	_, err = env.svc.CheckIn(ctx, checkIn("", false))
	require.NoError(t, err)
	env.clock.Set(at(16, 30))

	status, err = env.svc.GetToday(ctx)
	require.NoError(t, err)
	assert.True(t, status.HasCheckedIn)
	assert.False(t, status.CanCheckOut, "logbook missing")

	env.logbooks.add("u-1", clock.DateOf(at(0, 0)))
	status, err = env.svc.GetToday(ctx)
	require.NoError(t, err)
	assert.True(t, status.CanCheckOut)
}

func TestAttendanceService_GetAttendance_EmployeeCannotReadOthers(t *testing.T) {
	env, record := approvalEnv()

	_, err := env.svc.GetAttendance(employeeCtx("u-2"), record.ID)
	assert.ErrorIs(t, err, attendance.ErrUnauthorized)

	resp, err := env.svc.GetAttendance(employeeCtx("u-1"), record.ID)
	require.NoError(t, err)
	assert.Equal(t, record.ID, resp.ID)
}

func TestAttendanceService_ListAttendance_EmployeeSeesOwnOnly(t *testing.T) {
	env, _ := approvalEnv()
	other := at(8, 0)
	env.attendances.seed(attendance.Attendance{UserID: "u-2", Date: clock.DateOf(other), CheckInAt: &other})

	resp, err := env.svc.ListAttendance(employeeCtx("u-2"), attendance.AttendanceFilter{})

	require.NoError(t, err)
	require.Len(t, resp.Attendances, 1)
	assert.Equal(t, "u-2", resp.Attendances[0].UserID)
	assert.Equal(t, "1-1 of 1", resp.Showing)
}

func TestAttendanceService_ListAttendance_RejectsMalformedUserID(t *testing.T) {
	env := newTestEnv(hm(9, 0))
	userID := "not-a-uuid"

	_, err := env.svc.ListAttendance(reviewerCtx(user.RoleAdmin, ""), attendance.AttendanceFilter{UserID: &userID})

	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Equal(t, "user_id", verrs[0].Field)
}
