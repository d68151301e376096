package handler

import (
	"net/http"

	"github.com/JaimeRLA/CorrelationGame/internal/api/middleware"
	"github.com/JaimeRLA/CorrelationGame/internal/api/request"
	"github.com/JaimeRLA/CorrelationGame/internal/api/response"
	"github.com/JaimeRLA/CorrelationGame/internal/services/daily"
	"github.com/JaimeRLA/CorrelationGame/internal/services/scoring"
)

// DailyHandler handles daily lock and completion endpoints
type DailyHandler struct {
	daily   *daily.Service
	scoring *scoring.Service
}

// NewDailyHandler creates a new daily handler
func NewDailyHandler(daily *daily.Service, scoring *scoring.Service) *DailyHandler {
	return &DailyHandler{
		daily:   daily,
		scoring: scoring,
	}
}

// Status handles GET /api/v1/daily/status
func (h *DailyHandler) Status(w http.ResponseWriter, r *http.Request) {
	session := middleware.MustGetSession(r.Context())

	status, err := h.daily.Status(r.Context(), session.Key)
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.DailyStatusFromLock(status))
}

// Complete handles POST /api/v1/daily/complete
func (h *DailyHandler) Complete(w http.ResponseWriter, r *http.Request) {
	session := middleware.MustGetSession(r.Context())

	var req request.CompleteRequest
	if err := decode(w, r, &req); err != nil {
		WriteError(w, err)
		return
	}
	if req.Points == nil {
		WriteError(w, NewInvalidRequestError("points is required"))
		return
	}

	result, err := h.scoring.CompleteDailyChain(r.Context(), session.Key, *req.Points)
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.CompletionFromResult(result))
}
