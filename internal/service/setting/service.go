package setting

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/setting"
)

// ChangeHook runs after the time window settings were stored.
type ChangeHook func(ctx context.Context) error

type SettingServiceImpl struct {
	setting.SettingRepository
	onChange []ChangeHook
}

func NewSettingService(settingRepository setting.SettingRepository, onChange ...ChangeHook) setting.SettingService {
	return &SettingServiceImpl{
		SettingRepository: settingRepository,
		onChange:          onChange,
	}
}

// GetTimeWindow implements setting.SettingService.
func (s *SettingServiceImpl) GetTimeWindow(ctx context.Context) (setting.TimeWindowResponse, error) {
	cfg, err := s.load(ctx)
	if err != nil {
		return setting.TimeWindowResponse{}, err
	}
	return setting.NewTimeWindowResponse(cfg), nil
}

// UpdateTimeWindow implements setting.SettingService.
// A corrupt stored config is replaced, using defaults as the merge base.
func (s *SettingServiceImpl) UpdateTimeWindow(ctx context.Context, req setting.UpdateTimeWindowRequest) (setting.TimeWindowResponse, error) {
	current, err := s.load(ctx)
	if err != nil {
		if !errors.Is(err, setting.ErrInvalidSettingValue) {
			return setting.TimeWindowResponse{}, err
		}
		slog.Warn("Stored time window settings are corrupt, merging onto defaults", "error", err)
		current = setting.DefaultTimeWindowConfig()
	}

	merged, err := req.ApplyTo(current)
	if err != nil {
		return setting.TimeWindowResponse{}, err
	}

	if err := s.SettingRepository.Upsert(ctx, merged.Rows()); err != nil {
		return setting.TimeWindowResponse{}, fmt.Errorf("failed to save time window settings: %w", err)
	}

	slog.Info("Time window settings updated",
		"check_in", merged.CheckInStart.String()+"-"+merged.CheckInEnd.String(),
		"check_out", merged.CheckOutStart.String()+"-"+merged.CheckOutEnd.String(),
		"auto_checkout_enabled", merged.AutoCheckoutEnabled,
		"auto_checkout_time", merged.AutoCheckoutTime.String(),
	)

	// The settings are already stored; a failing hook is logged, not returned
	for _, hook := range s.onChange {
		if err := hook(ctx); err != nil {
			slog.Error("Settings change hook failed", "error", err)
		}
	}

	return setting.NewTimeWindowResponse(merged), nil
}

func (s *SettingServiceImpl) load(ctx context.Context) (setting.TimeWindowConfig, error) {
	rows, err := s.SettingRepository.GetAll(ctx)
	if err != nil {
		return setting.TimeWindowConfig{}, fmt.Errorf("failed to load settings: %w", err)
	}
	return setting.ParseTimeWindowConfig(rows)
}
