package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/JaimeRLA/CorrelationGame/internal/api/handler"
	"github.com/JaimeRLA/CorrelationGame/internal/api/middleware"
	"github.com/JaimeRLA/CorrelationGame/internal/live"
	"github.com/JaimeRLA/CorrelationGame/internal/services/auth"
	"github.com/JaimeRLA/CorrelationGame/internal/services/chain"
	"github.com/JaimeRLA/CorrelationGame/internal/services/daily"
	"github.com/JaimeRLA/CorrelationGame/internal/services/leaderboard"
	"github.com/JaimeRLA/CorrelationGame/internal/services/scoring"
)

// DefaultLeaderboardSize is the row count served when no limit is requested
const DefaultLeaderboardSize = 10

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger             *slog.Logger
	AuthService        *auth.Service
	DailyService       *daily.Service
	ScoringService     *scoring.Service
	LeaderboardService *leaderboard.Service
	ChainService       *chain.Service
	// Hub serves live leaderboard snapshots; nil disables the stream
	Hub             *live.Hub
	LeaderboardSize int
	StorageName     string
}

// NewRouter creates a new API router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	if cfg.LeaderboardSize <= 0 {
		cfg.LeaderboardSize = DefaultLeaderboardSize
	}

	// Create handlers
	playerHandler := handler.NewPlayerHandler(cfg.AuthService)
	dailyHandler := handler.NewDailyHandler(cfg.DailyService, cfg.ScoringService)
	chainHandler := handler.NewChainHandler(cfg.ChainService)
	leaderboardHandler := handler.NewLeaderboardHandler(cfg.LeaderboardService, cfg.LeaderboardSize)
	healthHandler := handler.NewHealthHandler(cfg.StorageName)

	// Create middleware
	authMiddleware := middleware.Auth(cfg.AuthService)
	optionalAuthMiddleware := middleware.OptionalAuth(cfg.AuthService)
	loggingMiddleware := middleware.Logging(cfg.Logger)
	recoveryMiddleware := middleware.Recovery(cfg.Logger)

	// API subrouter with common middleware
	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(recoveryMiddleware)
	api.Use(loggingMiddleware)

	// Player routes (no auth required for registering/logging in)
	api.HandleFunc("/players/register", playerHandler.Register).Methods(http.MethodPost)
	api.HandleFunc("/players/login", playerHandler.Login).Methods(http.MethodPost)

	// Protected player routes
	playerProtected := api.PathPrefix("/players").Subrouter()
	playerProtected.Use(authMiddleware)
	playerProtected.HandleFunc("/me", playerHandler.GetMe).Methods(http.MethodGet)
	playerProtected.HandleFunc("/logout", playerHandler.Logout).Methods(http.MethodPost)

	// Daily routes (all require auth)
	dailyRoutes := api.PathPrefix("/daily").Subrouter()
	dailyRoutes.Use(authMiddleware)
	dailyRoutes.HandleFunc("/status", dailyHandler.Status).Methods(http.MethodGet)
	dailyRoutes.HandleFunc("/complete", dailyHandler.Complete).Methods(http.MethodPost)

	// Chain routes (all require auth)
	chainRoutes := api.PathPrefix("/chain").Subrouter()
	chainRoutes.Use(authMiddleware)
	chainRoutes.HandleFunc("", chainHandler.Get).Methods(http.MethodGet)
	chainRoutes.HandleFunc("/guess", chainHandler.Guess).Methods(http.MethodPost)
	chainRoutes.HandleFunc("/reveal", chainHandler.Reveal).Methods(http.MethodPost)

	// Leaderboard is public; a session only marks the caller's row
	board := api.PathPrefix("/leaderboard").Subrouter()
	board.Use(optionalAuthMiddleware)
	board.HandleFunc("", leaderboardHandler.Get).Methods(http.MethodGet)
	if cfg.Hub != nil {
		snapshot := func(r *http.Request) any {
			return leaderboardHandler.Snapshot(r, leaderboardHandler.DefaultLimit())
		}
		board.Handle("/live", live.NewHandler(cfg.Hub, snapshot, cfg.Logger)).Methods(http.MethodGet)
	}

	// Health check endpoint (no auth)
	api.HandleFunc("/health", healthHandler.Get).Methods(http.MethodGet)

	return r
}
