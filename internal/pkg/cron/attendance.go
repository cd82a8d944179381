package cron

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/setting"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/timewindow"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/clock"
)

const (
	JobScheduledAutoCheckout = "scheduled_auto_checkout"
	JobEndOfDayForceClose    = "end_of_day_force_close"
)

type AttendanceJobs struct {
	closer attendance.Closer
	policy timewindow.Policy
	clock  clock.Clock
}

func NewAttendanceJobs(closer attendance.Closer, policy timewindow.Policy, clk clock.Clock) *AttendanceJobs {
	return &AttendanceJobs{
		closer: closer,
		policy: policy,
		clock:  clk,
	}
}

// RegisterJobs is a Registrar. The auto checkout time is read here, so a
// settings change needs a Handle.Restart to move the trigger.
func (j *AttendanceJobs) RegisterJobs(ctx context.Context, scheduler *Scheduler) error {
	cfg, err := j.policy.Config(ctx)
	if err != nil {
		slog.Warn("Cron: Time window settings unreadable, using defaults", "error", err)
		cfg = setting.DefaultTimeWindowConfig()
	}

	loc := j.clock.Location()
	at := cfg.AutoCheckoutTime

	scheduler.AddJob(JobScheduledAutoCheckout, DailyAt(at.Hour, at.Minute, at.Second, loc), j.ScheduledAutoCheckout)
	scheduler.AddJob(JobEndOfDayForceClose, DailyAt(23, 59, 59, loc), j.EndOfDayForceClose)
	return nil
}

// ScheduledAutoCheckout closes open records when auto checkout is enabled.
// The flag is read at fire time.
func (j *AttendanceJobs) ScheduledAutoCheckout(ctx context.Context) error {
	cfg, err := j.policy.Config(ctx)
	if err != nil {
		return fmt.Errorf("failed to read time window settings: %w", err)
	}
	if !cfg.AutoCheckoutEnabled {
		slog.Debug("Cron: Scheduled auto checkout disabled, skipping")
		return nil
	}

	slog.Info("Cron: Starting scheduled auto checkout job")
	_, err = j.closer.CloseOpenRecords(ctx, j.firedAt(ctx), attendance.CloseReasonScheduled)
	return err
}

// EndOfDayForceClose closes every record still open at the end of the day.
func (j *AttendanceJobs) EndOfDayForceClose(ctx context.Context) error {
	slog.Info("Cron: Starting end-of-day force close job")
	_, err := j.closer.CloseOpenRecords(ctx, j.firedAt(ctx), attendance.CloseReasonEndOfDay)
	return err
}

// firedAt prefers the scheduled activation time so a delayed wake-up
// still closes the intended day.
func (j *AttendanceJobs) firedAt(ctx context.Context) time.Time {
	if at, ok := ScheduledAt(ctx); ok {
		return at
	}
	return j.clock.Now()
}
