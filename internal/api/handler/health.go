package handler

import (
	"net/http"

	"github.com/JaimeRLA/CorrelationGame/internal/api/response"
)

// HealthHandler reports liveness and the configured storage backend
type HealthHandler struct {
	storageName string
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(storageName string) *HealthHandler {
	return &HealthHandler{storageName: storageName}
}

// Get handles GET /api/v1/health
func (h *HealthHandler) Get(w http.ResponseWriter, _ *http.Request) {
	response.JSON(w, http.StatusOK, response.Health{Status: "ok", Storage: h.storageName})
}
