package setting

import "context"

// SettingService exposes the typed time window settings to admins.
type SettingService interface {
	// GetTimeWindow returns the current config with defaults applied
	GetTimeWindow(ctx context.Context) (TimeWindowResponse, error)

	// UpdateTimeWindow merges the request into the current config, validates and stores it
	UpdateTimeWindow(ctx context.Context, req UpdateTimeWindowRequest) (TimeWindowResponse, error)
}
