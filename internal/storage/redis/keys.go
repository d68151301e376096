package redis

import (
	"fmt"
	"strconv"

	"github.com/JaimeRLA/CorrelationGame/internal/model"
)

// Key prefix for all game-related data
const keyPrefix = "corrgame"

// accountKey returns the Redis key for an Account, keyed by login
func accountKey(login string) string {
	return fmt.Sprintf("%s:account:%s", keyPrefix, login)
}

// claimKey returns the Redis key for an IdentityClaim
func claimKey(key model.CanonicalKey) string {
	return fmt.Sprintf("%s:claim:%s", keyPrefix, key)
}

// profileKey returns the Redis key for a Profile
func profileKey(key model.CanonicalKey) string {
	return fmt.Sprintf("%s:profile:%s", keyPrefix, key)
}

// playKey returns the Redis key for a PlayMarker
func playKey(key model.CanonicalKey, day model.DayKey) string {
	return fmt.Sprintf("%s:play:%s:%s", keyPrefix, key, day)
}

// profilesIndexKey returns the Redis key for the SET of all profile keys
func profilesIndexKey() string {
	return fmt.Sprintf("%s:idx:profiles", keyPrefix)
}

// scoresIndexKey returns the Redis key for the ZSET of canonical key -> score
func scoresIndexKey() string {
	return fmt.Sprintf("%s:idx:scores", keyPrefix)
}

// formatScore renders a ZSET score for use as a ZRANGEBYSCORE bound
func formatScore(score float64) string {
	return strconv.FormatInt(int64(score), 10)
}
