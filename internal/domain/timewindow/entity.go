package timewindow

// Status classifies a wall-clock minute against the configured windows.
type Status string

const (
	StatusTooEarly        Status = "too_early"
	StatusTooLate         Status = "too_late"
	StatusOnTime          Status = "on_time"
	StatusLate            Status = "late"
	StatusEarly           Status = "early"
	StatusOvertime        Status = "overtime"
	StatusValidationError Status = "validation_error"
)

// Evaluation is the outcome of a time window check. Only the fields relevant
// to Status are set; the rest stay zero.
type Evaluation struct {
	Allowed         bool   `json:"allowed"`
	Status          Status `json:"status"`
	LateMinutes     int    `json:"late_minutes,omitempty"`
	WaitMinutes     int    `json:"wait_minutes,omitempty"`
	EarlyMinutes    int    `json:"early_minutes,omitempty"`
	OvertimeMinutes int    `json:"overtime_minutes,omitempty"`
	Message         string `json:"message"`
}

// Advisory reports whether the evaluation allowed the action but still
// carries something the user should be told about.
func (e Evaluation) Advisory() bool {
	if !e.Allowed {
		return false
	}
	switch e.Status {
	case StatusLate, StatusEarly, StatusOvertime, StatusValidationError:
		return true
	}
	return false
}
