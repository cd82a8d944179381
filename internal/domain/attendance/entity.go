package attendance

import (
	"time"
)

// Promptness status of a record.
const (
	StatusPresent = "present"
	StatusLate    = "late"
)

// Approval status of a record.
const (
	ApprovalPending  = "pending"
	ApprovalApproved = "approved"
	ApprovalRejected = "rejected"
)

// Reasons written by the system when it closes a record.
const (
	CloseReasonScheduled = "scheduled auto checkout"
	CloseReasonEndOfDay  = "forced end-of-day closure: user forgot to check out"
	CloseReasonManual    = "closed manually by an administrator"
)

// Attendance is one user's record for one calendar date.
type Attendance struct {
	ID     string
	UserID string
	Date   time.Time

	CheckInAt            *time.Time
	CheckInLatitude      *float64
	CheckInLongitude     *float64
	CheckInIP            *string
	CheckInWorkType      *string
	CheckInOffsiteReason *string
	CheckInPhoto         *string
	CheckInLocationID    *string
	CheckInMethod        *string

	CheckOutAt            *time.Time
	CheckOutLatitude      *float64
	CheckOutLongitude     *float64
	CheckOutIP            *string
	CheckOutWorkType      *string
	CheckOutOffsiteReason *string
	CheckOutPhoto         *string
	CheckOutLocationID    *string
	CheckOutMethod        *string

	Status              string
	LateMinutes         int
	EarlyLeaveMinutes   int
	OvertimeMinutes     int
	WorkDurationMinutes *int

	ClosedBySystem bool
	CloseReason    *string

	ApprovalStatus  string
	ApprovedBy      *string
	ApprovedAt      *time.Time
	RejectedBy      *string
	RejectedAt      *time.Time
	RejectionReason *string

	CreatedAt time.Time
	UpdatedAt time.Time

	// Join
	UserName *string
}

// HasCheckedIn reports whether the check-in transition happened.
func (a Attendance) HasCheckedIn() bool {
	return a.CheckInAt != nil
}

// HasCheckedOut reports whether the record reached its terminal state.
func (a Attendance) HasCheckedOut() bool {
	return a.CheckOutAt != nil
}

// IsOpen is true for a record with a check-in but no check-out.
func (a Attendance) IsOpen() bool {
	return a.HasCheckedIn() && !a.HasCheckedOut()
}

// CloseFields are written by Close when a record moves to checked-out.
type CloseFields struct {
	CheckOutAt            time.Time
	CheckOutLatitude      *float64
	CheckOutLongitude     *float64
	CheckOutIP            *string
	CheckOutWorkType      *string
	CheckOutOffsiteReason *string
	CheckOutPhoto         *string
	CheckOutLocationID    *string
	CheckOutMethod        *string
	EarlyLeaveMinutes     int
	OvertimeMinutes       int
	WorkDurationMinutes   int
	ClosedBySystem        bool
	CloseReason           *string
}

// WorkDurationMinutes subtracts two same-day times of day. Shifts crossing
// midnight are not supported and clamp to zero.
func WorkDurationMinutes(checkIn, checkOut time.Time) int {
	in := checkIn.Hour()*60 + checkIn.Minute()
	out := checkOut.Hour()*60 + checkOut.Minute()
	if out < in {
		return 0
	}
	return out - in
}
