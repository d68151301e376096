package daily

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/JaimeRLA/CorrelationGame/internal/dependencies/clock"
	"github.com/JaimeRLA/CorrelationGame/internal/model"
	"github.com/JaimeRLA/CorrelationGame/internal/storage"
)

// LockStatus describes whether an identity has used up today's play
type LockStatus struct {
	Locked bool
	Day    model.DayKey
	// Remaining is the time until the next UTC midnight, set only when Locked
	Remaining time.Duration
}

// Service answers daily lock queries from play markers
type Service struct {
	storage storage.Storage
	clock   clock.Clock
}

// New creates a new daily lock Service
func New(storage storage.Storage, clock clock.Clock) *Service {
	return &Service{
		storage: storage,
		clock:   clock,
	}
}

// Status reports whether key already has a play marker for the current UTC day
func (s *Service) Status(ctx context.Context, key model.CanonicalKey) (LockStatus, error) {
	now := s.clock.Now()
	status := LockStatus{Day: model.DayKeyFor(now)}

	_, err := s.storage.GetPlayMarker(ctx, key, status.Day)
	switch {
	case err == nil:
		status.Locked = true
		status.Remaining = model.UntilNextUTCMidnight(now)
	case errors.Is(err, model.ErrMarkerNotFound):
	default:
		return LockStatus{}, fmt.Errorf("read play marker: %w", err)
	}
	return status, nil
}

// Check returns a *model.AlreadyPlayedError when key is locked for today
func (s *Service) Check(ctx context.Context, key model.CanonicalKey) error {
	status, err := s.Status(ctx, key)
	if err != nil {
		return err
	}
	if status.Locked {
		return &model.AlreadyPlayedError{Day: status.Day, Remaining: status.Remaining}
	}
	return nil
}
