package scoring

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/JaimeRLA/CorrelationGame/internal/model"
)

func TestNextStreak(t *testing.T) {
	const yesterday = model.DayKey("2025-03-09")

	tests := []struct {
		name       string
		prev       int
		lastPlayed model.DayKey
		expected   int
	}{
		{"played yesterday", 3, yesterday, 4},
		{"gap of two days", 5, "2025-03-08", 1},
		{"never played", 0, "", 1},
		{"long streak", 20, yesterday, 21},
		{"capped", MaxStreak, yesterday, MaxStreak},
		{"played today already", 4, "2025-03-10", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, NextStreak(tt.prev, tt.lastPlayed, yesterday))
		})
	}
}

func TestMultiplier(t *testing.T) {
	assert.Equal(t, 1.0, Multiplier(0))
	assert.Equal(t, 1.0, Multiplier(1))
	assert.Equal(t, 1.1, Multiplier(2))
	assert.Equal(t, 1.3, Multiplier(4))
	assert.Equal(t, 2.0, Multiplier(11))

	for streak := 11; streak <= MaxStreak; streak++ {
		assert.LessOrEqual(t, Multiplier(streak), 2.0)
	}
}

func TestAward(t *testing.T) {
	tests := []struct {
		delta    int64
		streak   int
		expected int64
	}{
		{100, 1, 100},
		{100, 2, 110},
		{100, 4, 130},
		{100, 21, 200},
		{0, 7, 0},
		{15, 2, 17}, // 16.5 rounds up
		{25, 3, 30},
		{7, 11, 14},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, Award(tt.delta, tt.streak), "delta=%d streak=%d", tt.delta, tt.streak)
	}
}

func TestAwardAtMaxPoints(t *testing.T) {
	for _, streak := range []int{1, 2, 11, MaxStreak} {
		awarded := Award(MaxPoints, streak)
		assert.GreaterOrEqual(t, awarded, int64(MaxPoints), "streak=%d", streak)
	}
}

func TestAddScore(t *testing.T) {
	assert.Equal(t, int64(150), addScore(100, 50))
	assert.Equal(t, int64(math.MaxInt64), addScore(math.MaxInt64-1, 5))
	assert.Equal(t, int64(math.MaxInt64), addScore(math.MaxInt64, 0))
}
