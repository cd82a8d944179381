package attendance

import (
	"mime/multipart"
	"path/filepath"
	"strings"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/location"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/timewindow"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/validator"
)

// ========================================
// CHECK-IN / CHECK-OUT DTOs
// ========================================

const maxPhotoSize = 10 << 20 // 10MB

// AttendanceActionRequest carries the client signals of one check-in or check-out.
// ClientIP and the photo come from the transport, not from the JSON body.
type AttendanceActionRequest struct {
	Latitude      *float64              `json:"latitude,omitempty"`
	Longitude     *float64              `json:"longitude,omitempty"`
	OffsiteReason *string               `json:"offsite_reason,omitempty"`
	ClientIP      string                `json:"-"`
	Photo         multipart.File        `json:"-"`
	PhotoHeader   *multipart.FileHeader `json:"-"`
}

type CheckInRequest struct {
	AttendanceActionRequest
}

type CheckOutRequest struct {
	AttendanceActionRequest
}

func (r *AttendanceActionRequest) Validate() error {
	errs := validator.ValidateCoordinates("", r.Latitude, r.Longitude)

	if r.OffsiteReason != nil && len(*r.OffsiteReason) > 1000 {
		errs = append(errs, validator.ValidationError{
			Field:   "offsite_reason",
			Message: "offsite_reason must not exceed 1000 characters",
		})
	}

	if r.PhotoHeader != nil {
		ext := strings.ToLower(filepath.Ext(r.PhotoHeader.Filename))
		if ext != ".jpg" && ext != ".jpeg" && ext != ".png" {
			errs = append(errs, validator.ValidationError{
				Field:   "photo",
				Message: "invalid file type: only jpg, jpeg, png allowed",
			})
		} else if r.PhotoHeader.Size > maxPhotoSize {
			errs = append(errs, validator.ValidationError{
				Field:   "photo",
				Message: "photo size must not exceed 10MB",
			})
		}
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// HasPhoto reports whether the request carries a photo upload.
func (r *AttendanceActionRequest) HasPhoto() bool {
	return r.Photo != nil && r.PhotoHeader != nil
}

// HasOffsiteReason reports whether a non-blank justification was given.
func (r *AttendanceActionRequest) HasOffsiteReason() bool {
	return r.OffsiteReason != nil && !validator.IsEmpty(*r.OffsiteReason)
}

type AttendanceResponse struct {
	ID       string  `json:"id"`
	UserID   string  `json:"user_id"`
	UserName *string `json:"user_name,omitempty"`
	Date     string  `json:"date"`

	CheckInTime          *string  `json:"check_in_time,omitempty"`
	CheckInLatitude      *float64 `json:"check_in_latitude,omitempty"`
	CheckInLongitude     *float64 `json:"check_in_longitude,omitempty"`
	CheckInIP            *string  `json:"check_in_ip,omitempty"`
	CheckInWorkType      *string  `json:"check_in_work_type,omitempty"`
	CheckInOffsiteReason *string  `json:"check_in_offsite_reason,omitempty"`
	CheckInPhoto         *string  `json:"check_in_photo,omitempty"`
	CheckInLocationID    *string  `json:"check_in_location_id,omitempty"`
	CheckInMethod        *string  `json:"check_in_method,omitempty"`

	CheckOutTime          *string  `json:"check_out_time,omitempty"`
	CheckOutLatitude      *float64 `json:"check_out_latitude,omitempty"`
	CheckOutLongitude     *float64 `json:"check_out_longitude,omitempty"`
	CheckOutIP            *string  `json:"check_out_ip,omitempty"`
	CheckOutWorkType      *string  `json:"check_out_work_type,omitempty"`
	CheckOutOffsiteReason *string  `json:"check_out_offsite_reason,omitempty"`
	CheckOutPhoto         *string  `json:"check_out_photo,omitempty"`
	CheckOutLocationID    *string  `json:"check_out_location_id,omitempty"`
	CheckOutMethod        *string  `json:"check_out_method,omitempty"`

	Status              string `json:"status"`
	LateMinutes         int    `json:"late_minutes"`
	EarlyLeaveMinutes   int    `json:"early_leave_minutes"`
	OvertimeMinutes     int    `json:"overtime_minutes"`
	WorkDurationMinutes *int   `json:"work_duration_minutes,omitempty"`

	ClosedBySystem bool    `json:"closed_by_system"`
	CloseReason    *string `json:"close_reason,omitempty"`

	ApprovalStatus  string  `json:"approval_status"`
	ApprovedBy      *string `json:"approved_by,omitempty"`
	ApprovedAt      *string `json:"approved_at,omitempty"`
	RejectedBy      *string `json:"rejected_by,omitempty"`
	RejectedAt      *string `json:"rejected_at,omitempty"`
	RejectionReason *string `json:"rejection_reason,omitempty"`

	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

// ActionResponse is returned by a successful check-in or check-out.
// Messages carries advisory notices such as lateness or early leave.
type ActionResponse struct {
	Attendance     AttendanceResponse          `json:"attendance"`
	Location       location.ResolutionResponse `json:"location"`
	TimeEvaluation timewindow.Evaluation       `json:"time_evaluation"`
	Messages       []string                    `json:"messages"`
}

// ========================================
// LISTING DTOs
// ========================================

var (
	validStatuses         = []string{StatusPresent, StatusLate}
	validApprovalStatuses = []string{ApprovalPending, ApprovalApproved, ApprovalRejected}
	validWorkTypes        = []string{location.WorkTypeOnsite, location.WorkTypeOffsite}
)

type AttendanceFilter struct {
	// Search & Filter
	UserID         *string `json:"user_id,omitempty"`
	Date           *string `json:"date,omitempty"`       // YYYY-MM-DD
	StartDate      *string `json:"start_date,omitempty"` // YYYY-MM-DD
	EndDate        *string `json:"end_date,omitempty"`   // YYYY-MM-DD
	Status         *string `json:"status,omitempty"`
	ApprovalStatus *string `json:"approval_status,omitempty"`
	WorkType       *string `json:"work_type,omitempty"`

	// Set by the service for supervisors
	DivisionID *string `json:"-"`

	// Pagination
	Page  int `json:"page"`
	Limit int `json:"limit"`

	// Sorting
	SortBy    string `json:"sort_by"`    // date, check_in_at, check_out_at, status, user_name
	SortOrder string `json:"sort_order"` // asc, desc
}

func (f *AttendanceFilter) Validate() error {
	errs := validatePaging(&f.Page, &f.Limit)
	errs = append(errs, validateDates(f.Date, f.StartDate, f.EndDate)...)
	errs = append(errs, validateEnums(f.Status, f.ApprovalStatus, f.WorkType)...)
	errs = append(errs, validateSort(&f.SortBy, &f.SortOrder, []string{"date", "check_in_at", "check_out_at", "status", "user_name"})...)

	if f.UserID != nil && *f.UserID != "" && !validator.IsValidUUID(*f.UserID) {
		errs = append(errs, validator.ValidationError{
			Field:   "user_id",
			Message: "user_id must be a valid UUID",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type MyAttendanceFilter struct {
	// Search & Filter
	Date           *string `json:"date,omitempty"`       // YYYY-MM-DD
	StartDate      *string `json:"start_date,omitempty"` // YYYY-MM-DD
	EndDate        *string `json:"end_date,omitempty"`   // YYYY-MM-DD
	Status         *string `json:"status,omitempty"`
	ApprovalStatus *string `json:"approval_status,omitempty"`

	// Pagination
	Page  int `json:"page"`
	Limit int `json:"limit"`

	// Sorting
	SortBy    string `json:"sort_by"`    // date, check_in_at, check_out_at, status
	SortOrder string `json:"sort_order"` // asc, desc
}

func (f *MyAttendanceFilter) Validate() error {
	errs := validatePaging(&f.Page, &f.Limit)
	errs = append(errs, validateDates(f.Date, f.StartDate, f.EndDate)...)
	errs = append(errs, validateEnums(f.Status, f.ApprovalStatus, nil)...)
	errs = append(errs, validateSort(&f.SortBy, &f.SortOrder, []string{"date", "check_in_at", "check_out_at", "status"})...)

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// AsFilter widens the personal filter to the shared repository filter.
func (f MyAttendanceFilter) AsFilter(userID string) AttendanceFilter {
	return AttendanceFilter{
		UserID:         &userID,
		Date:           f.Date,
		StartDate:      f.StartDate,
		EndDate:        f.EndDate,
		Status:         f.Status,
		ApprovalStatus: f.ApprovalStatus,
		Page:           f.Page,
		Limit:          f.Limit,
		SortBy:         f.SortBy,
		SortOrder:      f.SortOrder,
	}
}

func validatePaging(page, limit *int) validator.ValidationErrors {
	var errs validator.ValidationErrors

	// Page validation
	if *page < 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "page",
			Message: "page must be a positive number",
		})
	}
	if *page == 0 {
		*page = 1 // Default page
	}

	// Limit validation
	if *limit < 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "limit",
			Message: "limit must be a positive number",
		})
	}
	if *limit == 0 {
		*limit = 20 // Default limit
	}
	if *limit > 100 {
		errs = append(errs, validator.ValidationError{
			Field:   "limit",
			Message: "limit must not exceed 100",
		})
	}

	return errs
}

func validateDates(date, start, end *string) validator.ValidationErrors {
	var errs validator.ValidationErrors

	fields := []struct {
		name  string
		value *string
	}{{"date", date}, {"start_date", start}, {"end_date", end}}

	for _, f := range fields {
		if f.value == nil || *f.value == "" {
			continue
		}
		if _, valid := validator.IsValidDate(*f.value); !valid {
			errs = append(errs, validator.ValidationError{
				Field:   f.name,
				Message: f.name + " must be in YYYY-MM-DD format",
			})
		}
	}

	return errs
}

func validateEnums(status, approval, workType *string) validator.ValidationErrors {
	var errs validator.ValidationErrors

	if status != nil && !validator.IsInSlice(*status, validStatuses) {
		errs = append(errs, validator.ValidationError{
			Field:   "status",
			Message: "status must be one of: " + strings.Join(validStatuses, ", "),
		})
	}
	if approval != nil && !validator.IsInSlice(*approval, validApprovalStatuses) {
		errs = append(errs, validator.ValidationError{
			Field:   "approval_status",
			Message: "approval_status must be one of: " + strings.Join(validApprovalStatuses, ", "),
		})
	}
	if workType != nil && !validator.IsInSlice(*workType, validWorkTypes) {
		errs = append(errs, validator.ValidationError{
			Field:   "work_type",
			Message: "work_type must be one of: " + strings.Join(validWorkTypes, ", "),
		})
	}

	return errs
}

func validateSort(sortBy, sortOrder *string, fields []string) validator.ValidationErrors {
	var errs validator.ValidationErrors

	if *sortBy != "" {
		if !validator.IsInSlice(*sortBy, fields) {
			errs = append(errs, validator.ValidationError{
				Field:   "sort_by",
				Message: "sort_by must be one of: " + strings.Join(fields, ", "),
			})
		}
	} else {
		*sortBy = "date" // Default sort
	}

	if *sortOrder != "" {
		*sortOrder = strings.ToLower(*sortOrder)
		if !validator.IsInSlice(*sortOrder, []string{"asc", "desc"}) {
			errs = append(errs, validator.ValidationError{
				Field:   "sort_order",
				Message: "sort_order must be one of: asc, desc",
			})
		}
	} else {
		*sortOrder = "desc" // Default descending (newest first)
	}

	return errs
}

type ListAttendanceResponse struct {
	TotalCount  int64                `json:"total_count"`
	Page        int                  `json:"page"`
	Limit       int                  `json:"limit"`
	TotalPages  int                  `json:"total_pages"`
	Showing     string               `json:"showing"`
	Attendances []AttendanceResponse `json:"attendances"`
}

// ========================================
// APPROVAL DTOs
// ========================================

// ApproveAttendanceRequest for approving attendance
type ApproveAttendanceRequest struct {
	ID string `json:"-"`
}

// RejectAttendanceRequest for rejecting attendance
type RejectAttendanceRequest struct {
	ID     string `json:"-"`
	Reason string `json:"reason"` // Required rejection reason
}

func (r *RejectAttendanceRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.Reason) {
		errs = append(errs, validator.ValidationError{
			Field:   "reason",
			Message: "rejection reason is required",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// ========================================
// STATUS / BATCH DTOs
// ========================================

type TodayStatusResponse struct {
	Date            string              `json:"date"`
	HasCheckedIn    bool                `json:"has_checked_in"`
	HasCheckedOut   bool                `json:"has_checked_out"`
	CanCheckIn      bool                `json:"can_check_in"`
	CanCheckOut     bool                `json:"can_check_out"`
	HasLogbook      bool                `json:"has_logbook"`
	TodayAttendance *AttendanceResponse `json:"today_attendance,omitempty"`
	Message         string              `json:"message"`
}

// CloseResult counts the outcome of one close-open-records batch.
// Skipped records were closed by someone else between listing and closing.
type CloseResult struct {
	Date      string `json:"date"`
	Reason    string `json:"reason"`
	Succeeded int    `json:"succeeded"`
	Failed    int    `json:"failed"`
	Skipped   int    `json:"skipped"`
}
