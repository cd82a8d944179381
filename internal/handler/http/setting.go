package http

import (
	"encoding/json"
	"net/http"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/setting"
	"github.com/cmlabs-hris/attendance-backend-go/internal/handler/http/response"
)

type SettingHandler interface {
	GetTimeWindow(w http.ResponseWriter, r *http.Request)
	UpdateTimeWindow(w http.ResponseWriter, r *http.Request)
}

type settingHandlerImpl struct {
	settingService setting.SettingService
}

func NewSettingHandler(settingService setting.SettingService) SettingHandler {
	return &settingHandlerImpl{settingService: settingService}
}

// GetTimeWindow implements SettingHandler.
func (h *settingHandlerImpl) GetTimeWindow(w http.ResponseWriter, r *http.Request) {
	result, err := h.settingService.GetTimeWindow(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// UpdateTimeWindow implements SettingHandler.
func (h *settingHandlerImpl) UpdateTimeWindow(w http.ResponseWriter, r *http.Request) {
	var req setting.UpdateTimeWindowRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	result, err := h.settingService.UpdateTimeWindow(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Time window settings updated", result)
}
