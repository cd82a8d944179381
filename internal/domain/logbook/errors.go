package logbook

import "errors"

var (
	ErrLogbookNotFound = errors.New("logbook entry not found")
	ErrFutureDate      = errors.New("logbook date cannot be in the future")
)
