package setting

import (
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/validator"
)

type TimeWindowResponse struct {
	CheckInStartTime     string `json:"check_in_start_time"`
	CheckInEndTime       string `json:"check_in_end_time"`
	CheckOutStartTime    string `json:"check_out_start_time"`
	CheckOutEndTime      string `json:"check_out_end_time"`
	WorkingHoursStart    string `json:"working_hours_start"`
	WorkingHoursEnd      string `json:"working_hours_end"`
	LateToleranceMinutes int    `json:"late_tolerance_minutes"`
	AutoCheckoutEnabled  bool   `json:"auto_checkout_enabled"`
	AutoCheckoutTime     string `json:"auto_checkout_time"`
}

func NewTimeWindowResponse(c TimeWindowConfig) TimeWindowResponse {
	return TimeWindowResponse{
		CheckInStartTime:     c.CheckInStart.String(),
		CheckInEndTime:       c.CheckInEnd.String(),
		CheckOutStartTime:    c.CheckOutStart.String(),
		CheckOutEndTime:      c.CheckOutEnd.String(),
		WorkingHoursStart:    c.WorkingHoursStart.String(),
		WorkingHoursEnd:      c.WorkingHoursEnd.String(),
		LateToleranceMinutes: c.LateToleranceMinutes,
		AutoCheckoutEnabled:  c.AutoCheckoutEnabled,
		AutoCheckoutTime:     c.AutoCheckoutTime.String(),
	}
}

// UpdateTimeWindowRequest is a partial update; nil fields keep their current value.
type UpdateTimeWindowRequest struct {
	CheckInStartTime     *string `json:"check_in_start_time,omitempty"`
	CheckInEndTime       *string `json:"check_in_end_time,omitempty"`
	CheckOutStartTime    *string `json:"check_out_start_time,omitempty"`
	CheckOutEndTime      *string `json:"check_out_end_time,omitempty"`
	WorkingHoursStart    *string `json:"working_hours_start,omitempty"`
	WorkingHoursEnd      *string `json:"working_hours_end,omitempty"`
	LateToleranceMinutes *int    `json:"late_tolerance_minutes,omitempty"`
	AutoCheckoutEnabled  *bool   `json:"auto_checkout_enabled,omitempty"`
	AutoCheckoutTime     *string `json:"auto_checkout_time,omitempty"`
}

// ApplyTo merges the request into current and validates the result.
// Pair ordering is checked on the merged config, so a request touching only
// one end of a window is still checked against the stored other end.
func (r *UpdateTimeWindowRequest) ApplyTo(current TimeWindowConfig) (TimeWindowConfig, error) {
	var errs validator.ValidationErrors
	merged := current

	timeFields := []struct {
		field string
		value *string
		dst   *TimeOfDay
	}{
		{KeyCheckInStartTime, r.CheckInStartTime, &merged.CheckInStart},
		{KeyCheckInEndTime, r.CheckInEndTime, &merged.CheckInEnd},
		{KeyCheckOutStartTime, r.CheckOutStartTime, &merged.CheckOutStart},
		{KeyCheckOutEndTime, r.CheckOutEndTime, &merged.CheckOutEnd},
		{KeyWorkingHoursStart, r.WorkingHoursStart, &merged.WorkingHoursStart},
		{KeyWorkingHoursEnd, r.WorkingHoursEnd, &merged.WorkingHoursEnd},
		{KeyAutoCheckoutTime, r.AutoCheckoutTime, &merged.AutoCheckoutTime},
	}
	for _, f := range timeFields {
		if f.value == nil {
			continue
		}
		t, err := ParseTimeOfDay(*f.value)
		if err != nil {
			errs = append(errs, validator.ValidationError{
				Field:   f.field,
				Message: f.field + " must be in HH:MM or HH:MM:SS format",
			})
			continue
		}
		*f.dst = t
	}

	if r.LateToleranceMinutes != nil {
		if *r.LateToleranceMinutes < 0 {
			errs = append(errs, validator.ValidationError{
				Field:   KeyLateToleranceMinutes,
				Message: "late_tolerance_minutes must not be negative",
			})
		} else {
			merged.LateToleranceMinutes = *r.LateToleranceMinutes
		}
	}

	if r.AutoCheckoutEnabled != nil {
		merged.AutoCheckoutEnabled = *r.AutoCheckoutEnabled
	}

	if len(errs) > 0 {
		return current, errs
	}

	if err := merged.Validate(); err != nil {
		return current, err
	}

	return merged, nil
}

// Validate checks that every (start, end) pair is strictly ordered.
func (c TimeWindowConfig) Validate() error {
	var errs validator.ValidationErrors

	pairs := []struct {
		start, end TimeOfDay
		field      string
		label      string
	}{
		{c.CheckInStart, c.CheckInEnd, KeyCheckInEndTime, "check_in_start_time"},
		{c.CheckOutStart, c.CheckOutEnd, KeyCheckOutEndTime, "check_out_start_time"},
		{c.WorkingHoursStart, c.WorkingHoursEnd, KeyWorkingHoursEnd, "working_hours_start"},
	}
	for _, p := range pairs {
		if p.start.Minutes() >= p.end.Minutes() {
			errs = append(errs, validator.ValidationError{
				Field:   p.field,
				Message: p.field + " must be after " + p.label,
			})
		}
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}
