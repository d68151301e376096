package handler

import (
	"net/http"
	"strconv"

	"github.com/JaimeRLA/CorrelationGame/internal/api/middleware"
	"github.com/JaimeRLA/CorrelationGame/internal/api/response"
	"github.com/JaimeRLA/CorrelationGame/internal/model"
	"github.com/JaimeRLA/CorrelationGame/internal/services/leaderboard"
)

// LeaderboardHandler handles leaderboard reads
type LeaderboardHandler struct {
	leaderboard  *leaderboard.Service
	defaultLimit int
}

// NewLeaderboardHandler creates a new leaderboard handler
func NewLeaderboardHandler(leaderboard *leaderboard.Service, defaultLimit int) *LeaderboardHandler {
	return &LeaderboardHandler{
		leaderboard:  leaderboard,
		defaultLimit: defaultLimit,
	}
}

// Get handles GET /api/v1/leaderboard
func (h *LeaderboardHandler) Get(w http.ResponseWriter, r *http.Request) {
	limit := h.defaultLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			WriteError(w, NewInvalidRequestError("limit must be a number"))
			return
		}
		limit = n
	}

	response.JSON(w, http.StatusOK, h.Snapshot(r, limit))
}

// Snapshot builds the leaderboard response, flagging the caller when authenticated
func (h *LeaderboardHandler) Snapshot(r *http.Request, limit int) response.Leaderboard {
	var me model.CanonicalKey
	if session := middleware.GetSession(r.Context()); session != nil {
		me = session.Key
	}
	return response.LeaderboardFromEntries(h.leaderboard.Top(r.Context(), limit), me)
}

// DefaultLimit returns the row count used when no limit is given
func (h *LeaderboardHandler) DefaultLimit() int {
	return h.defaultLimit
}
