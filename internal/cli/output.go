package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"time"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
	w      io.Writer
}

// NewOutput creates a new Output formatter writing to w
func NewOutput(format string, w io.Writer) *Output {
	return &Output{format: format, w: w}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == "json" {
		data, _ := json.Marshal(map[string]string{"message": msg})
		_, _ = fmt.Fprintln(o.w, string(data))
	} else {
		_, _ = fmt.Fprintln(o.w, msg)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(o.w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(o.w, format, args...)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case Profile:
		o.printProfile(v)
	case AuthResult:
		o.printAuthResult(v)
	case DailyStatus:
		o.printDailyStatus(v)
	case Completion:
		o.printCompletion(v)
	case ChainRun:
		o.printChainRun(v)
	case GuessResult:
		o.printGuessResult(v)
	case Leaderboard:
		o.printLeaderboard(v)
	case HealthResult:
		o.printHealthResult(v)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

// Profile response type (matches API)
type Profile struct {
	Key           string    `json:"key"`
	DisplayName   string    `json:"display_name"`
	Score         int64     `json:"score"`
	Streak        int       `json:"streak"`
	LastPlayedDay string    `json:"last_played_day,omitempty"`
	Created       time.Time `json:"created"`
}

// AuthResult combines profile and token
type AuthResult struct {
	Profile      Profile   `json:"profile"`
	SessionToken string    `json:"session_token"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// DailyStatus response type
type DailyStatus struct {
	Locked      bool   `json:"locked"`
	Day         string `json:"day"`
	RemainingMs int64  `json:"remaining_ms"`
}

// Completion response type
type Completion struct {
	Day        string  `json:"day"`
	Awarded    int64   `json:"awarded"`
	Multiplier float64 `json:"multiplier"`
	Streak     int     `json:"streak"`
	Score      int64   `json:"score"`
}

// Endpoint response type
type Endpoint struct {
	Type  string `json:"type"`
	Value string `json:"value,omitempty"`
	Src   string `json:"src,omitempty"`
	Alt   string `json:"alt,omitempty"`
}

func (e *Endpoint) String() string {
	if e == nil {
		return "?"
	}
	if e.Type == "image" {
		return fmt.Sprintf("[image: %s]", e.Alt)
	}
	return e.Value
}

// ChainRun response type
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

// GuessResult response type
type GuessResult struct {
	Correct    bool        `json:"correct"`
	Points     int64       `json:"points"`
	Answer     string      `json:"answer,omitempty"`
	Total      int64       `json:"total"`
	Complete   bool        `json:"complete"`
	Completion *Completion `json:"completion,omitempty"`
}

// LeaderboardEntry response type
type LeaderboardEntry struct {
	Rank        int    `json:"rank"`
	DisplayName string `json:"display_name"`
	Score       int64  `json:"score"`
	Me          bool   `json:"me,omitempty"`
}

// Leaderboard response type
type Leaderboard struct {
	Entries []LeaderboardEntry `json:"entries"`
}

// HealthResult response type
type HealthResult struct {
	Status  string `json:"status"`
	Storage string `json:"storage"`
}

func remaining(ms int64) string {
	return (time.Duration(ms) * time.Millisecond).Round(time.Second).String()
}

func (o *Output) printProfile(p Profile) {
	o.printf("Player: %s (%s)\n", p.DisplayName, p.Key)
	o.printf("Score: %d\n", p.Score)
	o.printf("Streak: %d\n", p.Streak)
	if p.LastPlayedDay != "" {
		o.printf("Last played: %s\n", p.LastPlayedDay)
	}
}

func (o *Output) printAuthResult(a AuthResult) {
	o.printProfile(a.Profile)
	o.printf("Token: %s\n", a.SessionToken)
}

func (o *Output) printDailyStatus(s DailyStatus) {
	if s.Locked {
		o.printf("Already played %s, next chain in %s\n", s.Day, remaining(s.RemainingMs))
		return
	}
	o.printf("Ready to play %s\n", s.Day)
}

func (o *Output) printCompletion(c Completion) {
	o.printf("Awarded: %d (x%.1f, streak %d)\n", c.Awarded, c.Multiplier, c.Streak)
	o.printf("Score: %d\n", c.Score)
}

func (o *Output) printChainRun(r ChainRun) {
	o.printf("Chain %s for %s\n", r.ChainID, r.Day)
	switch {
	case r.Locked:
		o.printf("Locked, next chain in %s\n", remaining(r.RemainingMs))
	case r.Finished:
		o.printf("Finished with %d points\n", r.Points)
	default:
		o.printf("Step %d/%d: %s -> ? -> %s\n", r.Step+1, r.Steps, r.From, r.To)
		o.printf("Points so far: %d\n", r.Points)
	}
}

func (o *Output) printGuessResult(g GuessResult) {
	switch {
	case g.Correct:
		o.printf("Correct! +%d\n", g.Points)
	case g.Answer != "":
		o.printf("Answer: %s\n", g.Answer)
	default:
		o.printf("Not quite, try again\n")
	}
	o.printf("Total: %d\n", g.Total)
	if g.Completion != nil {
		o.printCompletion(*g.Completion)
	}
}

func (o *Output) printLeaderboard(l Leaderboard) {
	if len(l.Entries) == 0 {
		o.printf("No scores yet\n")
		return
	}
	for _, e := range l.Entries {
		marker := ""
		if e.Me {
			marker = " (you)"
		}
		o.printf("%3d. %-24s %d%s\n", e.Rank, e.DisplayName, e.Score, marker)
	}
}

func (o *Output) printHealthResult(h HealthResult) {
	o.printf("Status: %s\n", h.Status)
	if h.Storage != "" {
		o.printf("Storage: %s\n", h.Storage)
	}
}
