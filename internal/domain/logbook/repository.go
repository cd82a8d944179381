package logbook

import (
	"context"
	"time"
)

// EntryChecker backs the check-out gate.
type EntryChecker interface {
	ExistsForUserAndDate(ctx context.Context, userID string, date time.Time) (bool, error)
}

type LogbookRepository interface {
	EntryChecker

	Create(ctx context.Context, entry Entry) (Entry, error)
	ListByUser(ctx context.Context, userID string, filter LogbookFilter) ([]Entry, int64, error)
}
