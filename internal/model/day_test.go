package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDayKeyFor(t *testing.T) {
	tests := []struct {
		name string
		at   time.Time
		want DayKey
	}{
		{"midday utc", time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC), "2024-03-10"},
		{"last millisecond", time.Date(2024, 3, 10, 23, 59, 59, 999e6, time.UTC), "2024-03-10"},
		{"non-utc input", time.Date(2024, 3, 10, 23, 30, 0, 0, time.FixedZone("CET", -2*3600)), "2024-03-11"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DayKeyFor(tt.at))
		})
	}
}

func TestPreviousDayKeyCrossesMonthAndYear(t *testing.T) {
	assert.Equal(t, DayKey("2024-02-29"), PreviousDayKey(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, DayKey("2023-12-31"), PreviousDayKey(time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)))
}

func TestUntilNextUTCMidnight(t *testing.T) {
	at := time.Date(2024, 1, 1, 22, 30, 0, 0, time.UTC)
	assert.Equal(t, 90*time.Minute, UntilNextUTCMidnight(at))

	atMidnight := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, 24*time.Hour, UntilNextUTCMidnight(atMidnight))
}

func TestDayIndexAdvancesAtMidnight(t *testing.T) {
	before := time.Date(2024, 1, 1, 23, 59, 59, 0, time.UTC)
	after := before.Add(2 * time.Second)
	assert.Equal(t, DayIndex(before)+1, DayIndex(after))
}

func TestDayKeyParse(t *testing.T) {
	parsed, err := DayKey("2024-06-15").Parse()
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC), parsed)
}

func TestAlreadyPlayedErrorUnwraps(t *testing.T) {
	err := NewAlreadyPlayedError(time.Date(2024, 1, 1, 18, 0, 0, 0, time.UTC))
	assert.ErrorIs(t, err, ErrAlreadyPlayedToday)
	assert.Equal(t, DayKey("2024-01-01"), err.Day)
	assert.Equal(t, 6*time.Hour, err.Remaining)
}
