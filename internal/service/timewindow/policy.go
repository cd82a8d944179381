package timewindow

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/setting"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/timewindow"
)

type PolicyImpl struct {
	settingRepository setting.SettingRepository
}

func NewPolicy(settingRepository setting.SettingRepository) timewindow.Policy {
	return &PolicyImpl{settingRepository: settingRepository}
}

// Config implements timewindow.Policy.
func (p *PolicyImpl) Config(ctx context.Context) (setting.TimeWindowConfig, error) {
	rows, err := p.settingRepository.GetAll(ctx)
	if err != nil {
		return setting.TimeWindowConfig{}, fmt.Errorf("failed to load settings: %w", err)
	}
	cfg, err := setting.ParseTimeWindowConfig(rows)
	if err != nil {
		return setting.TimeWindowConfig{}, fmt.Errorf("failed to parse time window settings: %w", err)
	}
	return cfg, nil
}

// EvaluateCheckIn implements timewindow.Policy.
func (p *PolicyImpl) EvaluateCheckIn(ctx context.Context, nowMinutes int) timewindow.Evaluation {
	cfg, err := p.Config(ctx)
	if err != nil {
		return validationError("check-in", err)
	}

	start := cfg.CheckInStart.Minutes()
	end := cfg.CheckInEnd.Minutes()

	if nowMinutes < start {
		wait := start - nowMinutes
		return timewindow.Evaluation{
			Allowed:     false,
			Status:      timewindow.StatusTooEarly,
			WaitMinutes: wait,
			Message: fmt.Sprintf("Check-in opens at %s. Please wait %s.",
				cfg.CheckInStart, formatMinutes(wait)),
		}
	}

	if nowMinutes > end {
		return timewindow.Evaluation{
			Allowed: false,
			Status:  timewindow.StatusTooLate,
			Message: fmt.Sprintf("Check-in closed at %s. Please contact your supervisor.", cfg.CheckInEnd),
		}
	}

	threshold := cfg.WorkingHoursStart.Minutes() + cfg.LateToleranceMinutes
	if nowMinutes > threshold {
		late := nowMinutes - threshold
		return timewindow.Evaluation{
			Allowed:     true,
			Status:      timewindow.StatusLate,
			LateMinutes: late,
			Message:     fmt.Sprintf("You are %s late.", formatMinutes(late)),
		}
	}

	return timewindow.Evaluation{
		Allowed: true,
		Status:  timewindow.StatusOnTime,
		Message: "Checked in on time.",
	}
}

// EvaluateCheckOut implements timewindow.Policy. Only the window opening
// blocks; leaving early or staying late is reported but allowed.
func (p *PolicyImpl) EvaluateCheckOut(ctx context.Context, nowMinutes, checkInMinutes int) timewindow.Evaluation {
	cfg, err := p.Config(ctx)
	if err != nil {
		return validationError("check-out", err)
	}

	start := cfg.CheckOutStart.Minutes()
	end := cfg.CheckOutEnd.Minutes()

	if nowMinutes < start {
		wait := start - nowMinutes
		return timewindow.Evaluation{
			Allowed:     false,
			Status:      timewindow.StatusTooEarly,
			WaitMinutes: wait,
			Message: fmt.Sprintf("Check-out opens at %s. Please wait %s.",
				cfg.CheckOutStart, formatMinutes(wait)),
		}
	}

	if nowMinutes > end {
		over := nowMinutes - end
		return timewindow.Evaluation{
			Allowed:         true,
			Status:          timewindow.StatusOvertime,
			OvertimeMinutes: over,
			Message: fmt.Sprintf("Checked out %s after the check-out window closed at %s.",
				formatMinutes(over), cfg.CheckOutEnd),
		}
	}

	expectedEnd := checkInMinutes + cfg.StandardWorkMinutes()
	if nowMinutes < expectedEnd {
		early := expectedEnd - nowMinutes
		return timewindow.Evaluation{
			Allowed:      true,
			Status:       timewindow.StatusEarly,
			EarlyMinutes: early,
			Message:      fmt.Sprintf("You are leaving %s before completing your working hours.", formatMinutes(early)),
		}
	}

	return timewindow.Evaluation{
		Allowed: true,
		Status:  timewindow.StatusOnTime,
		Message: "Checked out on time.",
	}
}

// validationError lets the action through when the settings cannot be read.
func validationError(action string, err error) timewindow.Evaluation {
	slog.Warn("Time window evaluation failed, allowing action", "action", action, "error", err)
	return timewindow.Evaluation{
		Allowed: true,
		Status:  timewindow.StatusValidationError,
		Message: "Time window could not be verified. Your " + action + " was recorded without time validation.",
	}
}

func formatMinutes(m int) string {
	h, rem := m/60, m%60
	switch {
	case h == 0:
		return plural(rem, "minute")
	case rem == 0:
		return plural(h, "hour")
	default:
		return plural(h, "hour") + " " + plural(rem, "minute")
	}
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", unit)
	}
	return fmt.Sprintf("%d %ss", n, unit)
}
