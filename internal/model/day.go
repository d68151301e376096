package model

import "time"

// DayKey is a UTC calendar date formatted as YYYY-MM-DD
type DayKey string

const dayKeyLayout = "2006-01-02"

// DayKeyFor returns the UTC day key containing t
func DayKeyFor(t time.Time) DayKey {
	return DayKey(t.UTC().Format(dayKeyLayout))
}

// PreviousDayKey returns the UTC day key immediately before the one containing t
func PreviousDayKey(t time.Time) DayKey {
	return DayKeyFor(t.UTC().AddDate(0, 0, -1))
}

// UntilNextUTCMidnight returns the time left until 00:00:00.000 UTC of the following day
func UntilNextUTCMidnight(t time.Time) time.Duration {
	u := t.UTC()
	next := time.Date(u.Year(), u.Month(), u.Day()+1, 0, 0, 0, 0, time.UTC)
	return next.Sub(u)
}

// DayIndex returns the number of whole UTC days since the Unix epoch
func DayIndex(t time.Time) int64 {
	u := t.UTC()
	midnight := time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
	return midnight.Unix() / 86400
}

// Parse returns the UTC midnight the key refers to
func (d DayKey) Parse() (time.Time, error) {
	return time.ParseInLocation(dayKeyLayout, string(d), time.UTC)
}
