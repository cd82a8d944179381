package logbook

import "time"

// Entry is one daily activity log line. A user may write several per day.
type Entry struct {
	ID          string
	UserID      string
	Date        time.Time
	Activity    string
	Description *string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
