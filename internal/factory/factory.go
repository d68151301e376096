package factory

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/JaimeRLA/CorrelationGame/internal/api/response"
	"github.com/JaimeRLA/CorrelationGame/internal/dependencies/clock"
	"github.com/JaimeRLA/CorrelationGame/internal/dependencies/random"
	"github.com/JaimeRLA/CorrelationGame/internal/live"
	"github.com/JaimeRLA/CorrelationGame/internal/services/auth"
	"github.com/JaimeRLA/CorrelationGame/internal/services/chain"
	"github.com/JaimeRLA/CorrelationGame/internal/services/credentials"
	"github.com/JaimeRLA/CorrelationGame/internal/services/daily"
	"github.com/JaimeRLA/CorrelationGame/internal/services/identity"
	"github.com/JaimeRLA/CorrelationGame/internal/services/leaderboard"
	"github.com/JaimeRLA/CorrelationGame/internal/services/scoring"
	"github.com/JaimeRLA/CorrelationGame/internal/storage"
	"github.com/JaimeRLA/CorrelationGame/internal/storage/memory"
	redisstorage "github.com/JaimeRLA/CorrelationGame/internal/storage/redis"
	"github.com/JaimeRLA/CorrelationGame/internal/storage/sqlstore"
)

// Storage type constants
const (
	StorageTypeMemory = "memory"
	StorageTypeRedis  = "redis"
	StorageTypeSQL    = "sql"
)

// DefaultLeaderboardSize is the row count pushed to live leaderboard clients
const DefaultLeaderboardSize = 10

// sessionSweepInterval is how often expired revocations are pruned
const sessionSweepInterval = 10 * time.Minute

// ephemeralSecretBytes is the size of the signing secret generated when none is configured
const ephemeralSecretBytes = 32

// App contains all wired application components
type App struct {
	// Storage
	Storage     storage.Storage
	StorageName string

	// External dependencies
	Clock  clock.Clock
	Random random.Random

	// Services
	IdentityService    *identity.Service
	CredentialsService *credentials.Service
	AuthService        *auth.Service
	DailyService       *daily.Service
	ScoringService     *scoring.Service
	LeaderboardService *leaderboard.Service
	ChainService       *chain.Service
	Hub                *live.Hub

	LeaderboardSize int
	logger          *slog.Logger
}

// Config holds configuration for the application factory
type Config struct {
	// AuthConfig holds configuration for the auth service (optional)
	// An empty Secret is replaced by a random per-process secret
	AuthConfig auth.Config
	// CredentialsConfig holds account settings (optional)
	// If nil, defaults to credentials.DefaultConfig()
	CredentialsConfig *credentials.Config
	// ChainsPath is a YAML chain content file (optional)
	// If empty, the embedded chains are used
	ChainsPath string
	// LeaderboardSize is the row count of live snapshots (optional)
	LeaderboardSize int
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// StorageType selects the storage backend ("memory", "redis" or "sql")
	// If empty, defaults to "memory"
	StorageType string
	// RedisConfig holds Redis connection settings (required if StorageType is "redis")
	RedisConfig *redisstorage.Config
	// SQLConfig holds database settings (required if StorageType is "sql")
	SQLConfig *sqlstore.Config
}

// New creates a new application with all dependencies wired
func New(cfg Config) (*App, error) {
	// Use no-op logger if not provided
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	storageType := cfg.StorageType
	if storageType == "" {
		storageType = StorageTypeMemory
	}

	store, err := newStorage(storageType, cfg)
	if err != nil {
		return nil, err
	}

	content, err := chain.LoadContent(cfg.ChainsPath)
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	app, err := newWithDependencies(store, storageType, clock.New(), random.New(), content, cfg, logger)
	if err != nil {
		_ = store.Close()
		return nil, err
	}
	return app, nil
}

func newStorage(storageType string, cfg Config) (storage.Storage, error) {
	switch storageType {
	case StorageTypeMemory:
		return memory.New(), nil
	case StorageTypeRedis:
		if cfg.RedisConfig == nil {
			return nil, errors.New("RedisConfig required when StorageType is redis")
		}
		redisStore, err := redisstorage.New(*cfg.RedisConfig)
		if err != nil {
			return nil, err
		}
		return redisStore, nil
	case StorageTypeSQL:
		if cfg.SQLConfig == nil {
			return nil, errors.New("SQLConfig required when StorageType is sql")
		}
		sqlStore, err := sqlstore.New(*cfg.SQLConfig)
		if err != nil {
			return nil, err
		}
		return sqlStore, nil
	default:
		return nil, fmt.Errorf("invalid StorageType %q: must be 'memory', 'redis' or 'sql'", storageType)
	}
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(
	store storage.Storage,
	storageName string,
	clk clock.Clock,
	rnd random.Random,
	content *chain.Content,
	cfg Config,
	logger *slog.Logger,
) (*App, error) {
	authCfg := cfg.AuthConfig
	if authCfg.Secret == "" {
		secret, err := rnd.Secret(ephemeralSecretBytes)
		if err != nil {
			return nil, fmt.Errorf("generate session secret: %w", err)
		}
		authCfg.Secret = secret
		logger.Warn("no session secret configured, sessions will not survive a restart")
	}

	credCfg := credentials.DefaultConfig()
	if cfg.CredentialsConfig != nil {
		credCfg = *cfg.CredentialsConfig
	}

	size := cfg.LeaderboardSize
	if size <= 0 {
		size = DefaultLeaderboardSize
	}

	// Create services
	identityService := identity.New(store)
	credentialsService := credentials.New(store, clk, credCfg)
	authService, err := auth.New(store, credentialsService, identityService, clk,
		logger.With(slog.String("component", "auth")), authCfg)
	if err != nil {
		return nil, err
	}
	dailyService := daily.New(store, clk)
	scoringService := scoring.New(store, clk, logger.With(slog.String("component", "scoring")))
	leaderboardService := leaderboard.New(store, logger.With(slog.String("component", "leaderboard")))
	chainService := chain.New(content, dailyService, scoringService, clk, logger.With(slog.String("component", "chain")))
	hub := live.NewHub(logger)

	app := &App{
		Storage:            store,
		StorageName:        storageName,
		Clock:              clk,
		Random:             rnd,
		IdentityService:    identityService,
		CredentialsService: credentialsService,
		AuthService:        authService,
		DailyService:       dailyService,
		ScoringService:     scoringService,
		LeaderboardService: leaderboardService,
		ChainService:       chainService,
		Hub:                hub,
		LeaderboardSize:    size,
		logger:             logger,
	}

	scoringService.OnCommit(app.broadcastLeaderboard)

	return app, nil
}

// broadcastLeaderboard pushes the current top entries to live clients
func (a *App) broadcastLeaderboard(ctx context.Context, _ scoring.Result) {
	snapshot := response.LeaderboardFromEntries(a.LeaderboardService.Top(ctx, a.LeaderboardSize), "")
	if err := a.Hub.BroadcastJSON(snapshot); err != nil {
		a.logger.Warn("leaderboard broadcast failed", slog.String("error", err.Error()))
	}
}

// Run drives the background work (live hub, session sweeps) until ctx is done
func (a *App) Run(ctx context.Context) {
	go a.Hub.Run()
	defer a.Hub.Close()

	ticker := time.NewTicker(sessionSweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			a.AuthService.CleanExpiredSessions()
		}
	}
}

// Close releases the storage backend
func (a *App) Close() error {
	return a.Storage.Close()
}
