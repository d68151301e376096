package credentials

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/JaimeRLA/CorrelationGame/internal/dependencies/clock"
	"github.com/JaimeRLA/CorrelationGame/internal/model"
	"github.com/JaimeRLA/CorrelationGame/internal/storage"
)

// Config holds configuration for the credential verifier
type Config struct {
	AllowRegistration bool
	BcryptCost        int
}

// DefaultConfig returns default credential configuration
func DefaultConfig() Config {
	return Config{
		AllowRegistration: true,
		BcryptCost:        bcrypt.DefaultCost,
	}
}

// MaxPasswordBytes is the longest password bcrypt accepts
const MaxPasswordBytes = 72

// Service creates and verifies password accounts keyed by login
type Service struct {
	storage storage.Storage
	clock   clock.Clock
	cfg     Config
}

// New creates a new credential Service
func New(storage storage.Storage, clock clock.Clock, cfg Config) *Service {
	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = bcrypt.DefaultCost
	}
	return &Service{
		storage: storage,
		clock:   clock,
		cfg:     cfg,
	}
}

// CreateAccount stores a new account for login and returns its id
func (s *Service) CreateAccount(ctx context.Context, login, password string) (model.AccountID, error) {
	if !s.cfg.AllowRegistration {
		return "", model.ErrOperationNotAllowed
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cfg.BcryptCost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", model.ErrCredentialTooLong
		}
		return "", fmt.Errorf("hash password: %w", err)
	}

	account := &model.Account{
		ID:           model.AccountID(uuid.NewString()),
		Login:        login,
		PasswordHash: string(hash),
		CreatedAt:    s.clock.Now(),
	}

	if err := s.storage.CreateAccount(ctx, account); err != nil {
		if errors.Is(err, model.ErrAccountExists) {
			return "", err
		}
		return "", fmt.Errorf("create account: %w", err)
	}
	return account.ID, nil
}

// VerifyAccount checks password against the account stored for login
func (s *Service) VerifyAccount(ctx context.Context, login, password string) (model.AccountID, error) {
	account, err := s.storage.GetAccountByLogin(ctx, login)
	if err != nil {
		if errors.Is(err, model.ErrAccountNotFound) {
			return "", model.ErrNoSuchAccount
		}
		return "", fmt.Errorf("load account: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)); err != nil {
		return "", model.ErrInvalidCredentials
	}
	return account.ID, nil
}
