package logbook

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/logbook"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/clock"
)

type LogbookServiceImpl struct {
	logbook.LogbookRepository
	clock clock.Clock
}

func NewLogbookService(logbookRepository logbook.LogbookRepository, clk clock.Clock) logbook.LogbookService {
	return &LogbookServiceImpl{LogbookRepository: logbookRepository, clock: clk}
}

// Create implements logbook.LogbookService.
func (s *LogbookServiceImpl) Create(ctx context.Context, req logbook.CreateLogbookRequest) (logbook.LogbookResponse, error) {
	if err := req.Validate(); err != nil {
		return logbook.LogbookResponse{}, err
	}

	actor, err := user.IdentityFromContext(ctx)
	if err != nil {
		return logbook.LogbookResponse{}, err
	}

	today := clock.DateOf(s.clock.Now())
	date := today
	if req.Date != nil && *req.Date != "" {
		date, _ = time.Parse("2006-01-02", *req.Date)
		if date.After(today) {
			return logbook.LogbookResponse{}, logbook.ErrFutureDate
		}
	}

	entry, err := s.LogbookRepository.Create(ctx, logbook.Entry{
		UserID:      actor.UserID,
		Date:        date,
		Activity:    req.Activity,
		Description: req.Description,
	})
	if err != nil {
		return logbook.LogbookResponse{}, fmt.Errorf("failed to create logbook entry: %w", err)
	}

	return mapEntryToResponse(entry), nil
}

// ListMine implements logbook.LogbookService.
func (s *LogbookServiceImpl) ListMine(ctx context.Context, filter logbook.LogbookFilter) (logbook.ListLogbookResponse, error) {
	if err := filter.Validate(); err != nil {
		return logbook.ListLogbookResponse{}, err
	}

	actor, err := user.IdentityFromContext(ctx)
	if err != nil {
		return logbook.ListLogbookResponse{}, err
	}

	entries, total, err := s.LogbookRepository.ListByUser(ctx, actor.UserID, filter)
	if err != nil {
		return logbook.ListLogbookResponse{}, fmt.Errorf("failed to list logbook entries: %w", err)
	}

	responses := make([]logbook.LogbookResponse, 0, len(entries))
	for _, e := range entries {
		responses = append(responses, mapEntryToResponse(e))
	}

	return logbook.ListLogbookResponse{
		TotalCount: total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: int(math.Ceil(float64(total) / float64(filter.Limit))),
		Entries:    responses,
	}, nil
}

func mapEntryToResponse(e logbook.Entry) logbook.LogbookResponse {
	return logbook.LogbookResponse{
		ID:          e.ID,
		UserID:      e.UserID,
		Date:        e.Date.Format("2006-01-02"),
		Activity:    e.Activity,
		Description: e.Description,
		CreatedAt:   e.CreatedAt.Format(time.RFC3339),
	}
}
