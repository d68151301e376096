package chain

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/JaimeRLA/CorrelationGame/internal/canon"
	"github.com/JaimeRLA/CorrelationGame/internal/dependencies/clock"
	"github.com/JaimeRLA/CorrelationGame/internal/model"
	"github.com/JaimeRLA/CorrelationGame/internal/services/daily"
	"github.com/JaimeRLA/CorrelationGame/internal/services/scoring"
)

// Points for a correct link
const (
	FirstAttemptPoints = 100
	RetryPoints        = 50
)

// run is one identity's progress through today's chain
type run struct {
	mu       sync.Mutex
	day      model.DayKey
	step     int
	attempts int
	points   int64
	finished bool
}

// RunView is the client-facing state of today's chain
type RunView struct {
	Day       model.DayKey    `json:"day"`
	ChainID   string          `json:"chain_id"`
	Step      int             `json:"step"`
	Steps     int             `json:"steps"`
	From      *model.Endpoint `json:"from,omitempty"`
	To        *model.Endpoint `json:"to,omitempty"`
	Points    int64           `json:"points"`
	Finished  bool            `json:"finished"`
	Locked    bool            `json:"locked"`
	Remaining time.Duration   `json:"-"`
}

// GuessResult is the outcome of a guess or reveal
type GuessResult struct {
	Correct  bool            `json:"correct"`
	Points   int64           `json:"points"`
	Answer   string          `json:"answer,omitempty"`
	Total    int64           `json:"total"`
	Complete bool            `json:"complete"`
	Result   *scoring.Result `json:"result,omitempty"`
}

// Service runs the daily chain game on top of the daily lock and scoring
type Service struct {
	content *Content
	daily   *daily.Service
	scoring *scoring.Service
	clock   clock.Clock
	logger  *slog.Logger

	mu   sync.Mutex
	runs map[model.CanonicalKey]*run
}

// New creates a new chain Service
func New(content *Content, daily *daily.Service, scoring *scoring.Service, clock clock.Clock, logger *slog.Logger) *Service {
	return &Service{
		content: content,
		daily:   daily,
		scoring: scoring,
		clock:   clock,
		logger:  logger,
		runs:    make(map[model.CanonicalKey]*run),
	}
}

// normalize folds a guess for comparison: trimmed, lowercased, accents removed
func normalize(s string) string {
	return canon.StripAccents(strings.ToLower(strings.TrimSpace(s)))
}

// runFor returns key's run for day, starting over when the day changed
func (s *Service) runFor(key model.CanonicalKey, day model.DayKey) *run {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.runs[key]
	if !ok || r.day != day {
		r = &run{day: day}
		s.runs[key] = r
	}
	return r
}

// Today returns key's progress through today's chain
func (s *Service) Today(ctx context.Context, key model.CanonicalKey) (*RunView, error) {
	status, err := s.daily.Status(ctx, key)
	if err != nil {
		return nil, err
	}

	c := s.content.ChainFor(s.clock.Now())
	r := s.runFor(key, status.Day)

	r.mu.Lock()
	defer r.mu.Unlock()

	view := &RunView{
		Day:       status.Day,
		ChainID:   c.ID,
		Step:      r.step,
		Steps:     c.Steps(),
		Points:    r.points,
		Finished:  r.finished || status.Locked,
		Locked:    status.Locked,
		Remaining: status.Remaining,
	}
	if !view.Finished {
		view.From = &c.Endpoints[r.step]
		view.To = &c.Endpoints[r.step+1]
	}
	return view, nil
}

// Guess checks guess against the current link. A correct final link
// commits the day's points.
func (s *Service) Guess(ctx context.Context, key model.CanonicalKey, guess string) (*GuessResult, error) {
	val := normalize(guess)
	if val == "" {
		return nil, model.ErrEmptyGuess
	}
	if err := s.daily.Check(ctx, key); err != nil {
		return nil, err
	}

	now := s.clock.Now()
	c := s.content.ChainFor(now)
	r := s.runFor(key, model.DayKeyFor(now))

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.finished {
		return nil, model.NewAlreadyPlayedError(now)
	}

	r.attempts++
	result := &GuessResult{Total: r.points}
	if !matches(c.Answers[r.step], val) {
		return result, nil
	}

	pts := int64(RetryPoints)
	if r.attempts == 1 {
		pts = FirstAttemptPoints
	}
	result.Correct = true
	result.Points = pts
	result.Total = r.points + pts

	if err := s.advance(ctx, key, c, r, result.Total, result); err != nil {
		// the link stays open and the retry keeps first-attempt points
		r.attempts--
		return nil, err
	}
	return result, nil
}

// Reveal shows the current link's answer for zero points and moves on.
// Revealing the final link still consumes the day.
func (s *Service) Reveal(ctx context.Context, key model.CanonicalKey) (*GuessResult, error) {
	if err := s.daily.Check(ctx, key); err != nil {
		return nil, err
	}

	now := s.clock.Now()
	c := s.content.ChainFor(now)
	r := s.runFor(key, model.DayKeyFor(now))

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.finished {
		return nil, model.NewAlreadyPlayedError(now)
	}

	result := &GuessResult{
		Answer: c.Answers[r.step][0],
		Total:  r.points,
	}
	return result, s.advance(ctx, key, c, r, r.points, result)
}

// advance moves r past the current link with its new running total. On the
// final link the total is committed first and r keeps its step and points if
// that fails. r.mu must be held.
func (s *Service) advance(ctx context.Context, key model.CanonicalKey, c *model.Chain, r *run, total int64, result *GuessResult) error {
	if r.step < c.Steps()-1 {
		r.points = total
		r.step++
		r.attempts = 0
		return nil
	}

	committed, err := s.scoring.CompleteDailyChain(ctx, key, total)
	if err != nil {
		if errors.Is(err, model.ErrAlreadyPlayedToday) {
			r.finished = true
		}
		return err
	}

	r.points = total
	r.finished = true
	result.Complete = true
	result.Result = committed
	s.logger.Info("chain completed",
		slog.String("key", string(key)),
		slog.String("chain_id", c.ID),
		slog.Int64("points", r.points),
	)
	return nil
}

func matches(answers []string, val string) bool {
	for _, a := range answers {
		if normalize(a) == val {
			return true
		}
	}
	return false
}
