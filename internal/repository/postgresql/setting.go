package postgresql

import (
	"context"
	"fmt"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/setting"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type settingRepository struct {
	db *database.DB
}

func NewSettingRepository(db *database.DB) setting.SettingRepository {
	return &settingRepository{db: db}
}

// GetAll implements setting.SettingRepository.
func (r *settingRepository) GetAll(ctx context.Context) ([]setting.Setting, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, "SELECT key, value, type, description, updated_at FROM settings ORDER BY key")
	if err != nil {
		return nil, fmt.Errorf("failed to query settings: %w", err)
	}
	defer rows.Close()

	settings := make([]setting.Setting, 0)
	for rows.Next() {
		var s setting.Setting
		if err := rows.Scan(&s.Key, &s.Value, &s.Type, &s.Description, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan setting: %w", err)
		}
		settings = append(settings, s)
	}

	return settings, rows.Err()
}

// Upsert implements setting.SettingRepository. All rows are written in one batch
// inside the caller's transaction, or a new one.
func (r *settingRepository) Upsert(ctx context.Context, settings []setting.Setting) error {
	query := `
		INSERT INTO settings (key, value, type, description, updated_at)
		VALUES ($1, $2, $3, $4, NOW())
		ON CONFLICT (key) DO UPDATE SET
			value = EXCLUDED.value,
			type = EXCLUDED.type,
			description = COALESCE(EXCLUDED.description, settings.description),
			updated_at = NOW()
	`

	return WithTransaction(ctx, r.db, func(ctx context.Context) error {
		batch := &pgx.Batch{}
		for _, s := range settings {
			batch.Queue(query, s.Key, s.Value, s.Type, s.Description)
		}

		results := GetQuerier(ctx, r.db).SendBatch(ctx, batch)
		for _, s := range settings {
			if _, err := results.Exec(); err != nil {
				results.Close()
				return fmt.Errorf("failed to upsert setting %s: %w", s.Key, err)
			}
		}
		return results.Close()
	})
}
