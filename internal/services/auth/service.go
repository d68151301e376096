package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/JaimeRLA/CorrelationGame/internal/canon"
	"github.com/JaimeRLA/CorrelationGame/internal/dependencies/clock"
	"github.com/JaimeRLA/CorrelationGame/internal/model"
	"github.com/JaimeRLA/CorrelationGame/internal/services/credentials"
	"github.com/JaimeRLA/CorrelationGame/internal/services/identity"
	"github.com/JaimeRLA/CorrelationGame/internal/storage"
)

// Config holds configuration for the auth service
type Config struct {
	SessionTTL        time.Duration
	Secret            string
	LoginDomain       string
	MinPasswordLength int
}

// DefaultConfig returns default auth configuration
func DefaultConfig() Config {
	return Config{
		SessionTTL:        24 * time.Hour,
		LoginDomain:       "correlationsgame.local",
		MinPasswordLength: 6,
	}
}

// Service handles registration, login and session validation
type Service struct {
	storage     storage.Storage
	credentials *credentials.Service
	identity    *identity.Service
	clock       clock.Clock
	logger      *slog.Logger
	cfg         Config
	secret      []byte

	mu      sync.RWMutex
	revoked map[string]time.Time
}

// New creates a new auth Service
func New(
	storage storage.Storage,
	credentials *credentials.Service,
	identity *identity.Service,
	clock clock.Clock,
	logger *slog.Logger,
	cfg Config,
) (*Service, error) {
	defaults := DefaultConfig()
	if cfg.SessionTTL == 0 {
		cfg.SessionTTL = defaults.SessionTTL
	}
	if cfg.LoginDomain == "" {
		cfg.LoginDomain = defaults.LoginDomain
	}
	if cfg.MinPasswordLength == 0 {
		cfg.MinPasswordLength = defaults.MinPasswordLength
	}
	if len(cfg.Secret) < 16 {
		return nil, errors.New("session secret must be at least 16 bytes")
	}

	return &Service{
		storage:     storage,
		credentials: credentials,
		identity:    identity,
		clock:       clock,
		logger:      logger,
		cfg:         cfg,
		secret:      []byte(cfg.Secret),
		revoked:     make(map[string]time.Time),
	}, nil
}

// LoginFor derives the internal credential login for a canonical key
func (s *Service) LoginFor(key model.CanonicalKey) string {
	return string(key) + "@" + s.cfg.LoginDomain
}

// Register creates an account for displayName, reserves its canonical key
// and initializes the profile. An existing account is never logged into.
func (s *Service) Register(ctx context.Context, displayName, password string) (*Session, *model.Profile, error) {
	displayName = strings.TrimSpace(displayName)
	key, err := canon.FromDisplay(displayName)
	if err != nil {
		return nil, nil, err
	}
	if utf8.RuneCountInString(password) < s.cfg.MinPasswordLength {
		return nil, nil, model.ErrWeakCredential
	}
	if len(password) > credentials.MaxPasswordBytes {
		return nil, nil, model.ErrCredentialTooLong
	}

	accountID, err := s.credentials.CreateAccount(ctx, s.LoginFor(key), password)
	if err != nil {
		return nil, nil, err
	}

	if _, err := s.identity.Reserve(ctx, key, accountID, displayName); err != nil {
		if errors.Is(err, model.ErrIdentityTaken) {
			s.logger.Warn("registration lost identity reservation",
				slog.String("key", string(key)),
				slog.String("account_id", string(accountID)),
			)
		}
		return nil, nil, err
	}

	profile, err := s.ensureProfile(ctx, key, displayName)
	if err != nil {
		return nil, nil, err
	}

	session, err := s.issue(accountID, key)
	if err != nil {
		return nil, nil, err
	}

	s.logger.Info("player registered",
		slog.String("key", string(key)),
		slog.String("account_id", string(accountID)),
	)
	return session, profile, nil
}

// Login verifies the credential for displayName and binds a session to its
// canonical key. A claim held by another account tears the login down.
func (s *Service) Login(ctx context.Context, displayName, password string) (*Session, *model.Profile, error) {
	displayName = strings.TrimSpace(displayName)
	key, err := canon.FromDisplay(displayName)
	if err != nil {
		return nil, nil, err
	}

	accountID, err := s.credentials.VerifyAccount(ctx, s.LoginFor(key), password)
	if err != nil {
		return nil, nil, err
	}

	claim, err := s.identity.Lookup(ctx, key)
	switch {
	case errors.Is(err, model.ErrClaimNotFound):
		// Partially provisioned account: back-fill the claim
		if _, err := s.identity.Reserve(ctx, key, accountID, displayName); err != nil {
			if errors.Is(err, model.ErrIdentityTaken) {
				return nil, nil, model.ErrIdentityMismatch
			}
			return nil, nil, err
		}
		s.logger.Info("identity claim back-filled", slog.String("key", string(key)))
	case err != nil:
		return nil, nil, fmt.Errorf("read identity claim: %w", err)
	case !claim.OwnedBy(accountID):
		s.logger.Warn("login rejected, identity owned by another account",
			slog.String("key", string(key)),
			slog.String("account_id", string(accountID)),
		)
		return nil, nil, model.ErrIdentityMismatch
	case claim.DisplayName != displayName:
		if _, err := s.identity.Reserve(ctx, key, accountID, displayName); err != nil {
			s.logger.Warn("claim display name sync failed",
				slog.String("key", string(key)),
				slog.String("error", err.Error()),
			)
		}
	}

	profile, err := s.ensureProfile(ctx, key, displayName)
	if err != nil {
		return nil, nil, err
	}
	profile = s.syncDisplayName(ctx, profile, displayName)

	session, err := s.issue(accountID, key)
	if err != nil {
		return nil, nil, err
	}
	return session, profile, nil
}

// Authenticate validates a session token and re-checks that the session's
// account still owns its canonical key
func (s *Service) Authenticate(ctx context.Context, token string) (*Session, error) {
	session, err := s.parse(token)
	if err != nil {
		return nil, err
	}
	if s.isRevoked(session.ID) {
		return nil, model.ErrInvalidSession
	}
	if err := s.verifyClaim(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// CurrentProfile returns the profile bound to session. The claim is
// re-read on every call and must still belong to the session's account.
func (s *Service) CurrentProfile(ctx context.Context, session *Session) (*model.Profile, error) {
	if session == nil || s.isRevoked(session.ID) || !s.clock.Now().Before(session.ExpiresAt) {
		return nil, model.ErrInvalidSession
	}
	if err := s.verifyClaim(ctx, session); err != nil {
		return nil, err
	}

	profile, err := s.storage.GetProfile(ctx, session.Key)
	if err != nil {
		if errors.Is(err, model.ErrProfileNotFound) {
			return nil, model.ErrNoActiveProfile
		}
		return nil, fmt.Errorf("read profile: %w", err)
	}
	return profile, nil
}

// SignOut revokes the session
func (s *Service) SignOut(session *Session) {
	if session == nil {
		return
	}
	s.revoke(session)
}

func (s *Service) verifyClaim(ctx context.Context, session *Session) error {
	claim, err := s.identity.Lookup(ctx, session.Key)
	if err != nil {
		if errors.Is(err, model.ErrClaimNotFound) {
			return model.ErrNoActiveProfile
		}
		return fmt.Errorf("read identity claim: %w", err)
	}
	if !claim.OwnedBy(session.AccountID) {
		return model.ErrNoActiveProfile
	}
	return nil
}

// ensureProfile creates a fresh profile when none exists and returns the stored one
func (s *Service) ensureProfile(ctx context.Context, key model.CanonicalKey, displayName string) (*model.Profile, error) {
	if _, err := s.storage.CreateProfileIfAbsent(ctx, model.NewProfile(key, displayName, s.clock.Now())); err != nil {
		return nil, fmt.Errorf("create profile: %w", err)
	}
	profile, err := s.storage.GetProfile(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("read profile: %w", err)
	}
	return profile, nil
}

// syncDisplayName is best-effort: failures are logged and the old profile returned
func (s *Service) syncDisplayName(ctx context.Context, profile *model.Profile, displayName string) *model.Profile {
	if profile.DisplayName == displayName {
		return profile
	}

	res, err := s.storage.TransactProfile(ctx, profile.Key, func(current *model.Profile) *model.Profile {
		if current == nil {
			return nil
		}
		current.DisplayName = displayName
		return current
	})
	if err != nil {
		s.logger.Warn("profile display name sync failed",
			slog.String("key", string(profile.Key)),
			slog.String("error", err.Error()),
		)
		return profile
	}
	if res.Value == nil {
		return profile
	}
	return res.Value
}
