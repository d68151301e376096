// Package canon maps free-text display names to canonical identity keys.
package canon

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/JaimeRLA/CorrelationGame/internal/model"
)

// MaxLength is the longest canonical key
const MaxLength = 24

var (
	validKey      = regexp.MustCompile(`^[a-z0-9_-]{3,24}$`)
	whitespaceRun = regexp.MustCompile(`[\s\p{Z}]+`)
	disallowed    = regexp.MustCompile(`[^a-z0-9_-]`)
)

// Canonicalize turns a display name into a candidate key. The steps run in
// a fixed order: trim, lowercase, strip diacritics, whitespace to hyphens,
// drop disallowed characters, truncate.
func Canonicalize(display string) string {
	s := strings.ToLower(strings.TrimSpace(display))
	s = StripAccents(s)
	s = whitespaceRun.ReplaceAllString(s, "-")
	s = disallowed.ReplaceAllString(s, "")
	if len(s) > MaxLength {
		s = s[:MaxLength]
	}
	return s
}

// FromDisplay canonicalizes and validates a display name
func FromDisplay(display string) (model.CanonicalKey, error) {
	key := Canonicalize(display)
	if !validKey.MatchString(key) {
		return "", fmt.Errorf("%w: use 3-24 letters, digits, _ or -", model.ErrInvalidIdentityName)
	}
	return model.CanonicalKey(key), nil
}

// Valid reports whether s is already a well-formed canonical key
func Valid(s string) bool {
	return validKey.MatchString(s)
}

// StripAccents decomposes s and removes combining marks
func StripAccents(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}
