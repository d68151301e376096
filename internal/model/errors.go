package model

import (
	"errors"
	"fmt"
	"time"
)

// Common errors used across the application
var (
	// Identity errors
	ErrInvalidIdentityName = errors.New("invalid identity name")
	ErrIdentityTaken       = errors.New("identity is already claimed by another account")
	ErrIdentityMismatch    = errors.New("identity belongs to a different account")
	ErrClaimNotFound       = errors.New("identity claim not found")

	// Credential errors
	ErrWeakCredential      = errors.New("password is too short")
	ErrCredentialTooLong   = errors.New("password is too long")
	ErrAccountExists       = errors.New("account already exists")
	ErrNoSuchAccount       = errors.New("no such account")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrOperationNotAllowed = errors.New("operation not allowed")
	ErrAccountNotFound     = errors.New("account not found")

	// Session errors
	ErrInvalidSession  = errors.New("invalid or expired session")
	ErrNoActiveProfile = errors.New("no active profile")

	// Profile errors
	ErrProfileNotFound = errors.New("profile not found")

	// Daily play errors
	ErrAlreadyPlayedToday = errors.New("already played today")
	ErrInvalidPoints      = errors.New("points out of range")
	ErrMarkerNotFound     = errors.New("play marker not found")

	// Chain errors
	ErrNoChainContent = errors.New("no chain content loaded")
	ErrEmptyGuess     = errors.New("guess is empty")
)

// AlreadyPlayedError is returned when the daily lock is violated.
// It carries the remaining lockout so callers can render a countdown.
type AlreadyPlayedError struct {
	Day       DayKey
	Remaining time.Duration
}

// NewAlreadyPlayedError builds the error for the day containing now
func NewAlreadyPlayedError(now time.Time) *AlreadyPlayedError {
	return &AlreadyPlayedError{
		Day:       DayKeyFor(now),
		Remaining: UntilNextUTCMidnight(now),
	}
}

func (e *AlreadyPlayedError) Error() string {
	return fmt.Sprintf("already played on %s, next play in %s", e.Day, e.Remaining.Round(time.Second))
}

func (e *AlreadyPlayedError) Unwrap() error {
	return ErrAlreadyPlayedToday
}
