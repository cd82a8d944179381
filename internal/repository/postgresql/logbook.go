package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/logbook"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/database"
)

type logbookRepository struct {
	db *database.DB
}

func NewLogbookRepository(db *database.DB) logbook.LogbookRepository {
	return &logbookRepository{db: db}
}

// ExistsForUserAndDate implements logbook.LogbookRepository.
func (r *logbookRepository) ExistsForUserAndDate(ctx context.Context, userID string, date time.Time) (bool, error) {
	q := GetQuerier(ctx, r.db)

	var exists bool
	err := q.QueryRow(ctx, "SELECT EXISTS (SELECT 1 FROM logbook_entries WHERE user_id = $1 AND date = $2)", userID, date).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check logbook entry: %w", err)
	}

	return exists, nil
}

// Create implements logbook.LogbookRepository.
func (r *logbookRepository) Create(ctx context.Context, entry logbook.Entry) (logbook.Entry, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO logbook_entries (user_id, date, activity, description)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at
	`

	err := q.QueryRow(ctx, query, entry.UserID, entry.Date, entry.Activity, entry.Description).
		Scan(&entry.ID, &entry.CreatedAt, &entry.UpdatedAt)
	if err != nil {
		return logbook.Entry{}, fmt.Errorf("failed to create logbook entry: %w", err)
	}

	return entry, nil
}

// ListByUser implements logbook.LogbookRepository.
func (r *logbookRepository) ListByUser(ctx context.Context, userID string, filter logbook.LogbookFilter) ([]logbook.Entry, int64, error) {
	q := GetQuerier(ctx, r.db)

	where := "user_id = $1"
	args := []interface{}{userID}

	if filter.StartDate != nil && *filter.StartDate != "" {
		args = append(args, *filter.StartDate)
		where += fmt.Sprintf(" AND date >= $%d", len(args))
	}
	if filter.EndDate != nil && *filter.EndDate != "" {
		args = append(args, *filter.EndDate)
		where += fmt.Sprintf(" AND date <= $%d", len(args))
	}

	var total int64
	if err := q.QueryRow(ctx, "SELECT COUNT(*) FROM logbook_entries WHERE "+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count logbook entries: %w", err)
	}

	limit := filter.Limit
	if limit == 0 {
		limit = 20
	}
	page := max(filter.Page, 1)

	query := fmt.Sprintf(`
		SELECT id, user_id, date, activity, description, created_at, updated_at
		FROM logbook_entries
		WHERE %s
		ORDER BY date DESC, created_at DESC
		LIMIT $%d OFFSET $%d
	`, where, len(args)+1, len(args)+2)
	args = append(args, limit, (page-1)*limit)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query logbook entries: %w", err)
	}
	defer rows.Close()

	entries := make([]logbook.Entry, 0)
	for rows.Next() {
		var e logbook.Entry
		if err := rows.Scan(&e.ID, &e.UserID, &e.Date, &e.Activity, &e.Description, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, 0, fmt.Errorf("failed to scan logbook entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate logbook entries: %w", err)
	}

	return entries, total, nil
}
