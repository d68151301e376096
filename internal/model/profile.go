package model

import "time"

// Profile is the per-identity game record
type Profile struct {
	Key           CanonicalKey `json:"key"`
	DisplayName   string       `json:"display_name"`
	Score         int64        `json:"score"`
	Created       time.Time    `json:"created"`
	Streak        int          `json:"streak"`
	LastPlayedDay DayKey       `json:"last_played_day,omitempty"` // empty if never played
}

// Clone returns a copy safe to mutate
func (p *Profile) Clone() *Profile {
	if p == nil {
		return nil
	}
	c := *p
	return &c
}

// NewProfile creates a fresh profile with zero score and no streak
func NewProfile(key CanonicalKey, displayName string, created time.Time) *Profile {
	return &Profile{
		Key:         key,
		DisplayName: displayName,
		Created:     created,
	}
}

// PlayMarker records that an identity has consumed its play for a day.
// Its existence is the signal; it is never updated or deleted.
type PlayMarker struct {
	Key      CanonicalKey `json:"key"`
	Day      DayKey       `json:"day"`
	PlayedAt time.Time    `json:"played_at"`
}
