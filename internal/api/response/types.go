package response

import (
	"time"

	"github.com/JaimeRLA/CorrelationGame/internal/model"
	"github.com/JaimeRLA/CorrelationGame/internal/services/auth"
	"github.com/JaimeRLA/CorrelationGame/internal/services/chain"
	"github.com/JaimeRLA/CorrelationGame/internal/services/daily"
	"github.com/JaimeRLA/CorrelationGame/internal/services/leaderboard"
	"github.com/JaimeRLA/CorrelationGame/internal/services/scoring"
)

// Profile represents a player profile in API responses
type Profile struct {
	Key           string    `json:"key"`
	DisplayName   string    `json:"display_name"`
	Score         int64     `json:"score"`
	Streak        int       `json:"streak"`
	LastPlayedDay string    `json:"last_played_day,omitempty"`
	Created       time.Time `json:"created"`
}

// ProfileFromModel converts a model.Profile to a response Profile
func ProfileFromModel(p *model.Profile) Profile {
	return Profile{
		Key:           string(p.Key),
		DisplayName:   p.DisplayName,
		Score:         p.Score,
		Streak:        p.Streak,
		LastPlayedDay: string(p.LastPlayedDay),
		Created:       p.Created,
	}
}

// AuthResponse is the response for authentication endpoints
type AuthResponse struct {
	Profile      Profile   `json:"profile"`
	SessionToken string    `json:"session_token"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// AuthResponseFromSession creates an AuthResponse from a session and its profile
func AuthResponseFromSession(s *auth.Session, p *model.Profile) AuthResponse {
	return AuthResponse{
		Profile:      ProfileFromModel(p),
		SessionToken: s.Token,
		ExpiresAt:    s.ExpiresAt,
	}
}

// DailyStatus represents the daily lock state
type DailyStatus struct {
	Locked      bool   `json:"locked"`
	Day         string `json:"day"`
	RemainingMs int64  `json:"remaining_ms"`
}

// DailyStatusFromLock converts a daily.LockStatus
func DailyStatusFromLock(s daily.LockStatus) DailyStatus {
	return DailyStatus{
		Locked:      s.Locked,
		Day:         string(s.Day),
		RemainingMs: s.Remaining.Milliseconds(),
	}
}

// Completion is the response for a committed daily play
type Completion struct {
	Day        string  `json:"day"`
	Awarded    int64   `json:"awarded"`
	Multiplier float64 `json:"multiplier"`
	Streak     int     `json:"streak"`
	Score      int64   `json:"score"`
}

// CompletionFromResult converts a scoring.Result
func CompletionFromResult(r *scoring.Result) Completion {
	return Completion{
		Day:        string(r.Day),
		Awarded:    r.Awarded,
		Multiplier: r.Multiplier,
		Streak:     r.Streak,
		Score:      r.Score,
	}
}

// Endpoint represents a chain endpoint
type Endpoint struct {
	Type  string `json:"type"`
	Value string `json:"value,omitempty"`
	Src   string `json:"src,omitempty"`
	Alt   string `json:"alt,omitempty"`
}

func endpointFromModel(e *model.Endpoint) *Endpoint {
	if e == nil {
		return nil
	}
	return &Endpoint{Type: string(e.Kind), Value: e.Value, Src: e.Src, Alt: e.Alt}
}

// ChainRun represents today's chain progress
type ChainRun struct {
	Day         string    `json:"day"`
	ChainID     string    `json:"chain_id"`
	Step        int       `json:"step"`
	Steps       int       `json:"steps"`
	From        *Endpoint `json:"from,omitempty"`
	To          *Endpoint `json:"to,omitempty"`
	Points      int64     `json:"points"`
	Finished    bool      `json:"finished"`
	Locked      bool      `json:"locked"`
	RemainingMs int64     `json:"remaining_ms"`
}

// ChainRunFromView converts a chain.RunView
func ChainRunFromView(v *chain.RunView) ChainRun {
	return ChainRun{
		Day:         string(v.Day),
		ChainID:     v.ChainID,
		Step:        v.Step,
		Steps:       v.Steps,
		From:        endpointFromModel(v.From),
		To:          endpointFromModel(v.To),
		Points:      v.Points,
		Finished:    v.Finished,
		Locked:      v.Locked,
		RemainingMs: v.Remaining.Milliseconds(),
	}
}

// Guess is the response for a guess or reveal
type Guess struct {
	Correct    bool        `json:"correct"`
	Points     int64       `json:"points"`
	Answer     string      `json:"answer,omitempty"`
	Total      int64       `json:"total"`
	Complete   bool        `json:"complete"`
	Completion *Completion `json:"completion,omitempty"`
}

// GuessFromResult converts a chain.GuessResult
func GuessFromResult(r *chain.GuessResult) Guess {
	g := Guess{
		Correct:  r.Correct,
		Points:   r.Points,
		Answer:   r.Answer,
		Total:    r.Total,
		Complete: r.Complete,
	}
	if r.Result != nil {
		c := CompletionFromResult(r.Result)
		g.Completion = &c
	}
	return g
}

// LeaderboardEntry represents one leaderboard row
type LeaderboardEntry struct {
	Rank        int    `json:"rank"`
	DisplayName string `json:"display_name"`
	Score       int64  `json:"score"`
	Me          bool   `json:"me,omitempty"`
}

// Leaderboard is the response for leaderboard reads and live snapshots
type Leaderboard struct {
	Entries []LeaderboardEntry `json:"entries"`
}

// LeaderboardFromEntries converts leaderboard entries, flagging the caller's row
func LeaderboardFromEntries(entries []leaderboard.Entry, me model.CanonicalKey) Leaderboard {
	out := Leaderboard{Entries: make([]LeaderboardEntry, len(entries))}
	for i, e := range entries {
		out.Entries[i] = LeaderboardEntry{
			Rank:        e.Rank,
			DisplayName: e.DisplayName,
			Score:       e.Score,
			Me:          me != "" && e.Key == me,
		}
	}
	return out
}

// Health is the response for the health endpoint
type Health struct {
	Status  string `json:"status"`
	Storage string `json:"storage"`
}
