package logbook

import "context"

// LogbookService handles daily activity logs of the authenticated user.
type LogbookService interface {
	Create(ctx context.Context, req CreateLogbookRequest) (LogbookResponse, error)
	ListMine(ctx context.Context, filter LogbookFilter) (ListLogbookResponse, error)
}
