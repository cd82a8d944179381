package http

import (
	"encoding/json"
	"net/http"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/logbook"
	"github.com/cmlabs-hris/attendance-backend-go/internal/handler/http/response"
)

type LogbookHandler interface {
	Create(w http.ResponseWriter, r *http.Request)
	ListMine(w http.ResponseWriter, r *http.Request)
}

type logbookHandlerImpl struct {
	logbookService logbook.LogbookService
}

func NewLogbookHandler(logbookService logbook.LogbookService) LogbookHandler {
	return &logbookHandlerImpl{logbookService: logbookService}
}

// Create implements LogbookHandler.
func (h *logbookHandlerImpl) Create(w http.ResponseWriter, r *http.Request) {
	var req logbook.CreateLogbookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	result, err := h.logbookService.Create(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Logbook entry created", result)
}

// ListMine implements LogbookHandler.
func (h *logbookHandlerImpl) ListMine(w http.ResponseWriter, r *http.Request) {
	filter := logbook.LogbookFilter{
		StartDate: queryString(r, "start_date"),
		EndDate:   queryString(r, "end_date"),
		Page:      queryInt(r, "page"),
		Limit:     queryInt(r, "limit"),
	}

	results, err := h.logbookService.ListMine(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, results)
}
