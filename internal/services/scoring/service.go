package scoring

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/JaimeRLA/CorrelationGame/internal/dependencies/clock"
	"github.com/JaimeRLA/CorrelationGame/internal/model"
	"github.com/JaimeRLA/CorrelationGame/internal/storage"
)

// Result is the outcome of a committed daily play
type Result struct {
	Key        model.CanonicalKey
	Day        model.DayKey
	Awarded    int64
	Multiplier float64
	Streak     int
	Score      int64
	// ProfileUpdated is false when no profile existed; the day is still consumed
	ProfileUpdated bool
}

// Listener is notified after every committed daily play
type Listener func(ctx context.Context, result Result)

// Service commits daily plays with streak-aware scoring
type Service struct {
	storage storage.Storage
	clock   clock.Clock
	logger  *slog.Logger

	mu        sync.RWMutex
	listeners []Listener
}

// New creates a new scoring Service
func New(storage storage.Storage, clock clock.Clock, logger *slog.Logger) *Service {
	return &Service{
		storage: storage,
		clock:   clock,
		logger:  logger,
	}
}

// OnCommit registers a listener for committed plays
func (s *Service) OnCommit(l Listener) {
	s.mu.Lock()
	s.listeners = append(s.listeners, l)
	s.mu.Unlock()
}

// CompleteDailyChain is the single terminal operation of a day's play. The
// play marker and the profile update are written in one atomic step, so at
// most one call per identity and UTC day succeeds. A forfeit passes delta 0.
func (s *Service) CompleteDailyChain(ctx context.Context, key model.CanonicalKey, delta int64) (*Result, error) {
	if delta < 0 || delta > MaxPoints {
		return nil, model.ErrInvalidPoints
	}

	now := s.clock.Now()
	today := model.DayKeyFor(now)
	yesterday := model.PreviousDayKey(now)

	result := &Result{Key: key, Day: today}

	tx, err := s.storage.CommitDailyPlay(ctx, key, today, now, func(current *model.Profile) *model.Profile {
		if current == nil {
			return nil
		}
		streak := NextStreak(current.Streak, current.LastPlayedDay, yesterday)
		awarded := Award(delta, streak)

		current.Score = addScore(current.Score, awarded)
		current.Streak = streak
		current.LastPlayedDay = today

		result.Awarded = awarded
		result.Multiplier = Multiplier(streak)
		result.Streak = streak
		return current
	})
	if err != nil {
		if errors.Is(err, model.ErrAlreadyPlayedToday) {
			return nil, model.NewAlreadyPlayedError(now)
		}
		return nil, fmt.Errorf("commit daily play: %w", err)
	}

	if tx.Committed {
		result.Score = tx.Value.Score
		result.ProfileUpdated = true
	} else {
		s.logger.Warn("daily play committed without a profile",
			slog.String("key", string(key)),
			slog.String("day", string(today)),
		)
		score, err := s.currentScore(ctx, key)
		if err != nil {
			return nil, err
		}
		result.Score = score
		result.Awarded = 0
		result.Multiplier = 0
		result.Streak = 0
	}

	s.logger.Info("daily play committed",
		slog.String("key", string(key)),
		slog.String("day", string(today)),
		slog.Int64("delta", delta),
		slog.Int64("awarded", result.Awarded),
		slog.Int("streak", result.Streak),
		slog.Int64("score", result.Score),
	)

	s.notify(ctx, *result)
	return result, nil
}

// currentScore re-reads the stored score, treating a missing profile as zero
func (s *Service) currentScore(ctx context.Context, key model.CanonicalKey) (int64, error) {
	profile, err := s.storage.GetProfile(ctx, key)
	if err != nil {
		if errors.Is(err, model.ErrProfileNotFound) {
			return 0, nil
		}
		return 0, fmt.Errorf("read profile: %w", err)
	}
	return profile.Score, nil
}

func (s *Service) notify(ctx context.Context, result Result) {
	s.mu.RLock()
	listeners := make([]Listener, len(s.listeners))
	copy(listeners, s.listeners)
	s.mu.RUnlock()

	for _, l := range listeners {
		l(ctx, result)
	}
}
