package setting

import "context"

// SettingRepository is the raw key/value store behind the typed configs.
type SettingRepository interface {
	// GetAll returns every stored row. Absent keys are filled by defaults at parse time.
	GetAll(ctx context.Context) ([]Setting, error)

	// Upsert writes the given rows, inserting keys that do not exist yet.
	Upsert(ctx context.Context, settings []Setting) error
}
