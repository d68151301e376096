package handler

import (
	"net/http"

	"github.com/JaimeRLA/CorrelationGame/internal/api/middleware"
	"github.com/JaimeRLA/CorrelationGame/internal/api/request"
	"github.com/JaimeRLA/CorrelationGame/internal/api/response"
	"github.com/JaimeRLA/CorrelationGame/internal/services/chain"
)

// ChainHandler handles the daily chain game endpoints
type ChainHandler struct {
	chain *chain.Service
}

// NewChainHandler creates a new chain handler
func NewChainHandler(chain *chain.Service) *ChainHandler {
	return &ChainHandler{
		chain: chain,
	}
}

// Get handles GET /api/v1/chain
func (h *ChainHandler) Get(w http.ResponseWriter, r *http.Request) {
	session := middleware.MustGetSession(r.Context())

	view, err := h.chain.Today(r.Context(), session.Key)
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.ChainRunFromView(view))
}

// Guess handles POST /api/v1/chain/guess
func (h *ChainHandler) Guess(w http.ResponseWriter, r *http.Request) {
	session := middleware.MustGetSession(r.Context())

	var req request.GuessRequest
	if err := decode(w, r, &req); err != nil {
		WriteError(w, err)
		return
	}

	result, err := h.chain.Guess(r.Context(), session.Key, req.Guess)
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.GuessFromResult(result))
}

// Reveal handles POST /api/v1/chain/reveal
func (h *ChainHandler) Reveal(w http.ResponseWriter, r *http.Request) {
	session := middleware.MustGetSession(r.Context())

	result, err := h.chain.Reveal(r.Context(), session.Key)
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.GuessFromResult(result))
}
