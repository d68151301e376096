package cli

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTextOutputLeaderboardMarksCaller(t *testing.T) {
	var buf bytes.Buffer
	NewOutput("text", &buf).Print(Leaderboard{Entries: []LeaderboardEntry{
		{Rank: 1, DisplayName: "Ana García", Score: 310},
		{Rank: 2, DisplayName: "Bruno", Score: 100, Me: true},
	}})

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 2)
	assert.Contains(t, string(lines[0]), "Ana García")
	assert.NotContains(t, string(lines[0]), "(you)")
	assert.Contains(t, string(lines[1]), "(you)")
}

func TestTextOutputEmptyLeaderboard(t *testing.T) {
	var buf bytes.Buffer
	NewOutput("text", &buf).Print(Leaderboard{})
	assert.Equal(t, "No scores yet\n", buf.String())
}

func TestTextOutputDailyStatus(t *testing.T) {
	var buf bytes.Buffer
	NewOutput("text", &buf).Print(DailyStatus{Locked: true, Day: "2025-03-10", RemainingMs: 90 * 60 * 1000})
	assert.Equal(t, "Already played 2025-03-10, next chain in 1h30m0s\n", buf.String())
}

func TestTextOutputChainStep(t *testing.T) {
	var buf bytes.Buffer
	NewOutput("text", &buf).Print(ChainRun{
		Day: "2025-03-10", ChainID: "colmena", Step: 0, Steps: 3,
		From: &Endpoint{Type: "text", Value: "Abeja"},
		To:   &Endpoint{Type: "image", Src: "vela.png", Alt: "Vela"},
	})
	assert.Contains(t, buf.String(), "Step 1/3: Abeja -> ? -> [image: Vela]")
}

func TestTextOutputGuessWithCompletion(t *testing.T) {
	var buf bytes.Buffer
	NewOutput("text", &buf).Print(GuessResult{
		Correct: true, Points: 100, Total: 250, Complete: true,
		Completion: &Completion{Awarded: 275, Multiplier: 1.1, Streak: 2, Score: 385},
	})
	assert.Contains(t, buf.String(), "Correct! +100")
	assert.Contains(t, buf.String(), "Awarded: 275 (x1.1, streak 2)")
}

func TestJSONOutput(t *testing.T) {
	var buf bytes.Buffer
	NewOutput("json", &buf).Print(HealthResult{Status: "ok", Storage: "memory"})

	var got HealthResult
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "memory", got.Storage)
}
