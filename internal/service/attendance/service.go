package attendance

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/location"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/logbook"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/timewindow"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/clock"
)

type AttendanceServiceImpl struct {
	attendance.AttendanceRepository
	logbookRepository logbook.EntryChecker
	userRepository    user.UserRepository
	resolver          location.Resolver
	policy            timewindow.Policy
	photoUploader     attendance.PhotoUploader
	clock             clock.Clock
}

func NewAttendanceService(
	attendanceRepository attendance.AttendanceRepository,
	logbookRepository logbook.EntryChecker,
	userRepository user.UserRepository,
	resolver location.Resolver,
	policy timewindow.Policy,
	photoUploader attendance.PhotoUploader,
	clk clock.Clock,
) attendance.AttendanceService {
	return &AttendanceServiceImpl{
		AttendanceRepository: attendanceRepository,
		logbookRepository:    logbookRepository,
		userRepository:       userRepository,
		resolver:             resolver,
		policy:               policy,
		photoUploader:        photoUploader,
		clock:                clk,
	}
}

// CheckIn implements attendance.AttendanceService.
// Gates run in order: existing check-in, location, offsite evidence, time window.
func (a *AttendanceServiceImpl) CheckIn(ctx context.Context, req attendance.CheckInRequest) (attendance.ActionResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.ActionResponse{}, err
	}

	actor, err := user.IdentityFromContext(ctx)
	if err != nil {
		return attendance.ActionResponse{}, err
	}

	now := a.clock.Now()
	date := clock.DateOf(now)

	existing, err := a.AttendanceRepository.GetByUserAndDate(ctx, actor.UserID, date)
	if err != nil {
		return attendance.ActionResponse{}, fmt.Errorf("failed to get today's attendance: %w", err)
	}
	if existing != nil && existing.HasCheckedIn() {
		return attendance.ActionResponse{}, attendance.ErrAlreadyCheckedIn
	}

	resolution := a.resolver.Resolve(ctx, req.ClientIP, req.Latitude, req.Longitude)
	if err := requireOffsiteEvidence(resolution, req.AttendanceActionRequest); err != nil {
		return attendance.ActionResponse{}, err
	}

	evaluation := a.policy.EvaluateCheckIn(ctx, clock.MinutesSinceMidnight(now))
	if !evaluation.Allowed {
		return attendance.ActionResponse{}, &attendance.WindowError{
			Err:        attendance.ErrOutsideCheckInWindow,
			Evaluation: evaluation,
		}
	}

	record := attendance.Attendance{
		UserID:         actor.UserID,
		Date:           date,
		Status:         attendance.StatusPresent,
		ApprovalStatus: attendance.ApprovalPending,
	}
	if existing != nil {
		record = *existing
	}

	method := string(resolution.Method)
	workType := resolution.WorkType()
	record.CheckInAt = &now
	record.CheckInLatitude = req.Latitude
	record.CheckInLongitude = req.Longitude
	record.CheckInIP = nonEmpty(req.ClientIP)
	record.CheckInWorkType = &workType
	record.CheckInLocationID = resolution.LocationID()
	record.CheckInMethod = &method
	if evaluation.Status == timewindow.StatusLate {
		record.Status = attendance.StatusLate
		record.LateMinutes = evaluation.LateMinutes
	}

	// Reason and photo only matter for offsite attendance
	if !resolution.IsOnsite {
		record.CheckInOffsiteReason = req.OffsiteReason
		photoPath, err := a.photoUploader.UploadAttendancePhoto(ctx, actor.UserID, date, req.Photo, req.PhotoHeader.Filename, "check_in")
		if err != nil {
			return attendance.ActionResponse{}, fmt.Errorf("failed to upload check-in photo: %w", err)
		}
		record.CheckInPhoto = &photoPath
	}

	if existing == nil {
		record, err = a.AttendanceRepository.Create(ctx, record)
		if err != nil {
			return attendance.ActionResponse{}, err
		}
	} else if err := a.AttendanceRepository.UpdateCheckIn(ctx, record); err != nil {
		return attendance.ActionResponse{}, err
	}

	return a.actionResponse(record, resolution, evaluation), nil
}

// CheckOut implements attendance.AttendanceService.
// Only the opening of the check-out window blocks; early leave and overtime are advisory.
func (a *AttendanceServiceImpl) CheckOut(ctx context.Context, req attendance.CheckOutRequest) (attendance.ActionResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.ActionResponse{}, err
	}

	actor, err := user.IdentityFromContext(ctx)
	if err != nil {
		return attendance.ActionResponse{}, err
	}

	now := a.clock.Now()
	date := clock.DateOf(now)

	record, err := a.AttendanceRepository.GetByUserAndDate(ctx, actor.UserID, date)
	if err != nil {
		return attendance.ActionResponse{}, fmt.Errorf("failed to get today's attendance: %w", err)
	}
	if record == nil || !record.HasCheckedIn() {
		return attendance.ActionResponse{}, attendance.ErrNotCheckedIn
	}
	if record.HasCheckedOut() {
		return attendance.ActionResponse{}, attendance.ErrAlreadyCheckedOut
	}

	hasLogbook, err := a.logbookRepository.ExistsForUserAndDate(ctx, actor.UserID, date)
	if err != nil {
		return attendance.ActionResponse{}, fmt.Errorf("failed to check logbook: %w", err)
	}
	if !hasLogbook {
		return attendance.ActionResponse{}, attendance.ErrLogbookRequired
	}

	resolution := a.resolver.Resolve(ctx, req.ClientIP, req.Latitude, req.Longitude)
	if err := requireOffsiteEvidence(resolution, req.AttendanceActionRequest); err != nil {
		return attendance.ActionResponse{}, err
	}

	checkIn := record.CheckInAt.In(a.clock.Location())
	evaluation := a.policy.EvaluateCheckOut(ctx, clock.MinutesSinceMidnight(now), clock.MinutesSinceMidnight(checkIn))
	if !evaluation.Allowed {
		return attendance.ActionResponse{}, &attendance.WindowError{
			Err:        attendance.ErrCheckOutTooEarly,
			Evaluation: evaluation,
		}
	}

	method := string(resolution.Method)
	workType := resolution.WorkType()
	fields := attendance.CloseFields{
		CheckOutAt:          now,
		CheckOutLatitude:    req.Latitude,
		CheckOutLongitude:   req.Longitude,
		CheckOutIP:          nonEmpty(req.ClientIP),
		CheckOutWorkType:    &workType,
		CheckOutLocationID:  resolution.LocationID(),
		CheckOutMethod:      &method,
		EarlyLeaveMinutes:   evaluation.EarlyMinutes,
		OvertimeMinutes:     evaluation.OvertimeMinutes,
		WorkDurationMinutes: attendance.WorkDurationMinutes(checkIn, now),
	}

	if !resolution.IsOnsite {
		fields.CheckOutOffsiteReason = req.OffsiteReason
		photoPath, err := a.photoUploader.UploadAttendancePhoto(ctx, actor.UserID, date, req.Photo, req.PhotoHeader.Filename, "check_out")
		if err != nil {
			return attendance.ActionResponse{}, fmt.Errorf("failed to upload check-out photo: %w", err)
		}
		fields.CheckOutPhoto = &photoPath
	}

	if err := a.AttendanceRepository.Close(ctx, record.ID, fields); err != nil {
		return attendance.ActionResponse{}, err
	}

	applyCloseFields(record, fields)

	return a.actionResponse(*record, resolution, evaluation), nil
}

// GetToday implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) GetToday(ctx context.Context) (attendance.TodayStatusResponse, error) {
	actor, err := user.IdentityFromContext(ctx)
	if err != nil {
		return attendance.TodayStatusResponse{}, err
	}

	now := a.clock.Now()
	date := clock.DateOf(now)
	nowMinutes := clock.MinutesSinceMidnight(now)

	record, err := a.AttendanceRepository.GetByUserAndDate(ctx, actor.UserID, date)
	if err != nil {
		return attendance.TodayStatusResponse{}, fmt.Errorf("failed to get today's attendance: %w", err)
	}

	hasLogbook, err := a.logbookRepository.ExistsForUserAndDate(ctx, actor.UserID, date)
	if err != nil {
		return attendance.TodayStatusResponse{}, fmt.Errorf("failed to check logbook: %w", err)
	}

	resp := attendance.TodayStatusResponse{
		Date:       date.Format("2006-01-02"),
		HasLogbook: hasLogbook,
	}

	if record != nil {
		mapped := a.mapAttendanceToResponse(*record)
		resp.TodayAttendance = &mapped
		resp.HasCheckedIn = record.HasCheckedIn()
		resp.HasCheckedOut = record.HasCheckedOut()
	}

	switch {
	case !resp.HasCheckedIn:
		evaluation := a.policy.EvaluateCheckIn(ctx, nowMinutes)
		resp.CanCheckIn = evaluation.Allowed
		resp.Message = evaluation.Message
		if evaluation.Allowed {
			resp.Message = "You can check in now."
		}
	case !resp.HasCheckedOut:
		checkIn := record.CheckInAt.In(a.clock.Location())
		evaluation := a.policy.EvaluateCheckOut(ctx, nowMinutes, clock.MinutesSinceMidnight(checkIn))
		resp.CanCheckOut = evaluation.Allowed && hasLogbook
		switch {
		case !evaluation.Allowed:
			resp.Message = evaluation.Message
		case !hasLogbook:
			resp.Message = attendance.ErrLogbookRequired.Error()
		default:
			resp.Message = "You can check out now."
		}
	default:
		resp.Message = "Your attendance for today is complete."
	}

	return resp, nil
}

// GetMyAttendance implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) GetMyAttendance(ctx context.Context, filter attendance.MyAttendanceFilter) (attendance.ListAttendanceResponse, error) {
	if err := filter.Validate(); err != nil {
		return attendance.ListAttendanceResponse{}, err
	}

	actor, err := user.IdentityFromContext(ctx)
	if err != nil {
		return attendance.ListAttendanceResponse{}, err
	}

	attendances, total, err := a.AttendanceRepository.ListByUser(ctx, actor.UserID, filter)
	if err != nil {
		return attendance.ListAttendanceResponse{}, fmt.Errorf("failed to get my attendance: %w", err)
	}

	return a.listResponse(attendances, total, filter.Page, filter.Limit), nil
}

// ListAttendance implements attendance.AttendanceService.
// Supervisors only ever see their own division.
func (a *AttendanceServiceImpl) ListAttendance(ctx context.Context, filter attendance.AttendanceFilter) (attendance.ListAttendanceResponse, error) {
	if err := filter.Validate(); err != nil {
		return attendance.ListAttendanceResponse{}, err
	}

	actor, err := user.IdentityFromContext(ctx)
	if err != nil {
		return attendance.ListAttendanceResponse{}, err
	}

	switch actor.Role {
	case user.RoleAdmin:
		filter.DivisionID = nil
	case user.RoleSupervisor:
		if actor.DivisionID == nil {
			return attendance.ListAttendanceResponse{}, attendance.ErrUnauthorized
		}
		filter.DivisionID = actor.DivisionID
	default:
		filter.UserID = &actor.UserID
	}

	attendances, total, err := a.AttendanceRepository.List(ctx, filter)
	if err != nil {
		return attendance.ListAttendanceResponse{}, fmt.Errorf("failed to list attendances: %w", err)
	}

	return a.listResponse(attendances, total, filter.Page, filter.Limit), nil
}

// GetAttendance implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) GetAttendance(ctx context.Context, id string) (attendance.AttendanceResponse, error) {
	actor, err := user.IdentityFromContext(ctx)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	record, err := a.AttendanceRepository.GetByID(ctx, id)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	if record.UserID != actor.UserID {
		if err := a.authorizeReviewer(ctx, actor, record); err != nil {
			return attendance.AttendanceResponse{}, err
		}
	}

	return a.mapAttendanceToResponse(record), nil
}

// ApproveAttendance implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) ApproveAttendance(ctx context.Context, req attendance.ApproveAttendanceRequest) (attendance.AttendanceResponse, error) {
	return a.review(ctx, req.ID, attendance.ApprovalApproved, nil)
}

// RejectAttendance implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) RejectAttendance(ctx context.Context, req attendance.RejectAttendanceRequest) (attendance.AttendanceResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.AttendanceResponse{}, err
	}
	return a.review(ctx, req.ID, attendance.ApprovalRejected, &req.Reason)
}

// review sets the requested approval outcome and clears the opposite one.
func (a *AttendanceServiceImpl) review(ctx context.Context, id string, status string, reason *string) (attendance.AttendanceResponse, error) {
	actor, err := user.IdentityFromContext(ctx)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	record, err := a.AttendanceRepository.GetByID(ctx, id)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	if err := a.authorizeReviewer(ctx, actor, record); err != nil {
		return attendance.AttendanceResponse{}, err
	}

	if record.ApprovalStatus == status {
		return attendance.AttendanceResponse{}, attendance.ErrAlreadyFinalized
	}

	now := a.clock.Now()
	record.ApprovalStatus = status
	switch status {
	case attendance.ApprovalApproved:
		record.ApprovedBy = &actor.UserID
		record.ApprovedAt = &now
		record.RejectedBy = nil
		record.RejectedAt = nil
		record.RejectionReason = nil
	case attendance.ApprovalRejected:
		record.RejectedBy = &actor.UserID
		record.RejectedAt = &now
		record.RejectionReason = reason
		record.ApprovedBy = nil
		record.ApprovedAt = nil
	}

	if err := a.AttendanceRepository.Update(ctx, record); err != nil {
		return attendance.AttendanceResponse{}, fmt.Errorf("failed to update attendance approval: %w", err)
	}

	return a.mapAttendanceToResponse(record), nil
}

// authorizeReviewer allows admins on any record and supervisors on records
// owned by users of their own division.
func (a *AttendanceServiceImpl) authorizeReviewer(ctx context.Context, actor user.Identity, record attendance.Attendance) error {
	switch actor.Role {
	case user.RoleAdmin:
		return nil
	case user.RoleSupervisor:
		owner, err := a.userRepository.GetByID(ctx, record.UserID)
		if err != nil {
			return fmt.Errorf("failed to get attendance owner: %w", err)
		}
		if !user.SameDivision(actor.DivisionID, owner.DivisionID) {
			return attendance.ErrUnauthorized
		}
		return nil
	default:
		return attendance.ErrUnauthorized
	}
}

func requireOffsiteEvidence(resolution location.Resolution, req attendance.AttendanceActionRequest) error {
	if resolution.IsOnsite {
		return nil
	}
	if !req.HasOffsiteReason() {
		return attendance.ErrMissingOffsiteJustification
	}
	if !req.HasPhoto() {
		return attendance.ErrMissingOffsitePhoto
	}
	return nil
}

func applyCloseFields(record *attendance.Attendance, f attendance.CloseFields) {
	at := f.CheckOutAt
	duration := f.WorkDurationMinutes
	record.CheckOutAt = &at
	record.CheckOutLatitude = f.CheckOutLatitude
	record.CheckOutLongitude = f.CheckOutLongitude
	record.CheckOutIP = f.CheckOutIP
	record.CheckOutWorkType = f.CheckOutWorkType
	record.CheckOutOffsiteReason = f.CheckOutOffsiteReason
	record.CheckOutPhoto = f.CheckOutPhoto
	record.CheckOutLocationID = f.CheckOutLocationID
	record.CheckOutMethod = f.CheckOutMethod
	record.EarlyLeaveMinutes = f.EarlyLeaveMinutes
	record.OvertimeMinutes = f.OvertimeMinutes
	record.WorkDurationMinutes = &duration
	record.ClosedBySystem = f.ClosedBySystem
	record.CloseReason = f.CloseReason
}

func (a *AttendanceServiceImpl) actionResponse(record attendance.Attendance, resolution location.Resolution, evaluation timewindow.Evaluation) attendance.ActionResponse {
	messages := make([]string, 0, 2)
	if !resolution.IsOnsite {
		messages = append(messages, resolution.Reason)
	}
	if evaluation.Advisory() {
		messages = append(messages, evaluation.Message)
	}

	return attendance.ActionResponse{
		Attendance:     a.mapAttendanceToResponse(record),
		Location:       location.NewResolutionResponse(resolution),
		TimeEvaluation: evaluation,
		Messages:       messages,
	}
}

func (a *AttendanceServiceImpl) listResponse(attendances []attendance.Attendance, total int64, page, limit int) attendance.ListAttendanceResponse {
	responses := make([]attendance.AttendanceResponse, 0, len(attendances))
	for _, att := range attendances {
		responses = append(responses, a.mapAttendanceToResponse(att))
	}

	totalPages := int(math.Ceil(float64(total) / float64(limit)))
	showing := fmt.Sprintf("%d-%d of %d", (page-1)*limit+1, min(page*limit, int(total)), total)
	if total == 0 {
		showing = "0 of 0"
	}

	return attendance.ListAttendanceResponse{
		TotalCount:  total,
		Page:        page,
		Limit:       limit,
		TotalPages:  totalPages,
		Showing:     showing,
		Attendances: responses,
	}
}

// timePtrToString formats t in the organization timezone.
func (a *AttendanceServiceImpl) timePtrToString(t *time.Time) *string {
	if t == nil {
		return nil
	}
	format := t.In(a.clock.Location()).Format(time.RFC3339)
	return &format
}

// mapAttendanceToResponse converts an Attendance entity to AttendanceResponse
func (a *AttendanceServiceImpl) mapAttendanceToResponse(att attendance.Attendance) attendance.AttendanceResponse {
	return attendance.AttendanceResponse{
		ID:       att.ID,
		UserID:   att.UserID,
		UserName: att.UserName,
		Date:     att.Date.Format("2006-01-02"),

		CheckInTime:          a.timePtrToString(att.CheckInAt),
		CheckInLatitude:      att.CheckInLatitude,
		CheckInLongitude:     att.CheckInLongitude,
		CheckInIP:            att.CheckInIP,
		CheckInWorkType:      att.CheckInWorkType,
		CheckInOffsiteReason: att.CheckInOffsiteReason,
		CheckInPhoto:         att.CheckInPhoto,
		CheckInLocationID:    att.CheckInLocationID,
		CheckInMethod:        att.CheckInMethod,

		CheckOutTime:          a.timePtrToString(att.CheckOutAt),
		CheckOutLatitude:      att.CheckOutLatitude,
		CheckOutLongitude:     att.CheckOutLongitude,
		CheckOutIP:            att.CheckOutIP,
		CheckOutWorkType:      att.CheckOutWorkType,
		CheckOutOffsiteReason: att.CheckOutOffsiteReason,
		CheckOutPhoto:         att.CheckOutPhoto,
		CheckOutLocationID:    att.CheckOutLocationID,
		CheckOutMethod:        att.CheckOutMethod,

		Status:              att.Status,
		LateMinutes:         att.LateMinutes,
		EarlyLeaveMinutes:   att.EarlyLeaveMinutes,
		OvertimeMinutes:     att.OvertimeMinutes,
		WorkDurationMinutes: att.WorkDurationMinutes,

		ClosedBySystem: att.ClosedBySystem,
		CloseReason:    att.CloseReason,

		ApprovalStatus:  att.ApprovalStatus,
		ApprovedBy:      att.ApprovedBy,
		ApprovedAt:      a.timePtrToString(att.ApprovedAt),
		RejectedBy:      att.RejectedBy,
		RejectedAt:      a.timePtrToString(att.RejectedAt),
		RejectionReason: att.RejectionReason,

		CreatedAt: att.CreatedAt.In(a.clock.Location()).Format(time.RFC3339),
		UpdatedAt: att.UpdatedAt.In(a.clock.Location()).Format(time.RFC3339),
	}
}

func nonEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
