package scoring

import (
	"math"

	"github.com/JaimeRLA/CorrelationGame/internal/model"
)

const (
	// MaxStreak caps the stored streak length
	MaxStreak = 365

	// MaxPoints is the largest delta a single play may submit; Award cannot
	// overflow below it
	MaxPoints = math.MaxInt64 / 20

	// multiplierSteps is the number of 0.1x steps above 1.0x, reached at an 11-day streak
	multiplierSteps = 10
)

// NextStreak returns the streak after a play today, given the profile's
// previous streak and last played day
func NextStreak(prevStreak int, lastPlayed, yesterday model.DayKey) int {
	if lastPlayed != "" && lastPlayed == yesterday {
		return min(prevStreak+1, MaxStreak)
	}
	return 1
}

// multiplierTenths returns the multiplier for streak expressed in tenths (10..20)
func multiplierTenths(streak int) int64 {
	return int64(10 + min(max(streak-1, 0), multiplierSteps))
}

// Multiplier returns the score multiplier for a streak: 1.0x rising by 0.1x
// per consecutive day, capped at 2.0x
func Multiplier(streak int) float64 {
	return float64(multiplierTenths(streak)) / 10
}

// Award returns delta scaled by the streak multiplier, rounded half up.
// delta must be within 0..MaxPoints.
func Award(delta int64, streak int) int64 {
	return (delta*multiplierTenths(streak) + 5) / 10
}

// addScore adds awarded to score, saturating at math.MaxInt64
func addScore(score, awarded int64) int64 {
	if awarded > math.MaxInt64-score {
		return math.MaxInt64
	}
	return score + awarded
}
