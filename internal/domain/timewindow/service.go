package timewindow

import (
	"context"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/setting"
)

// Policy evaluates attendance actions against the time window settings.
// Implementations read the settings fresh on every call.
type Policy interface {
	// EvaluateCheckIn classifies a check-in at nowMinutes since midnight.
	EvaluateCheckIn(ctx context.Context, nowMinutes int) Evaluation

	// EvaluateCheckOut classifies a check-out at nowMinutes given the check-in minute.
	EvaluateCheckOut(ctx context.Context, nowMinutes, checkInMinutes int) Evaluation

	// Config returns the current typed settings.
	Config(ctx context.Context) (setting.TimeWindowConfig, error)
}
