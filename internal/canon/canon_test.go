package canon

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JaimeRLA/CorrelationGame/internal/model"
)

func TestEquivalentNamesShareKey(t *testing.T) {
	for _, name := range []string{"José  Pérez", "jose perez", "  JOSE-PEREZ "} {
		key, err := FromDisplay(name)
		require.NoError(t, err, name)
		assert.Equal(t, model.CanonicalKey("jose-perez"), key, name)
	}
}

func TestCanonicalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"accents stripped", "Ana García", "ana-garcia"},
		{"tabs and newlines collapse", "a\t\tb\nc", "a-b-c"},
		{"non-breaking space", "ana\u00a0maria", "ana-maria"},
		{"punctuation dropped", "o'brien!", "obrien"},
		{"underscore kept", "Big_Bird", "big_bird"},
		{"emoji dropped", "cat🐱dog", "catdog"},
		{"ñ becomes n", "Muñoz", "munoz"},
		{"truncated", strings.Repeat("x", 30), strings.Repeat("x", MaxLength)},
		{"empty", "   ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Canonicalize(tt.input))
		})
	}
}

func TestCanonicalizeIsIdempotentOnValidKeys(t *testing.T) {
	for _, name := range []string{"Ana García", "jose perez", "Big_Bird", "a-b-c", strings.Repeat("Zé", 20)} {
		first := Canonicalize(name)
		if !Valid(first) {
			continue
		}
		assert.Equal(t, first, Canonicalize(first), name)
	}
}

func TestFromDisplayRejectsInvalidNames(t *testing.T) {
	for _, name := range []string{"", "ab", "  é ", "!!!", "日本語"} {
		_, err := FromDisplay(name)
		assert.ErrorIs(t, err, model.ErrInvalidIdentityName, "name %q", name)
	}
}

func TestStripAccents(t *testing.T) {
	assert.Equal(t, "cafe creme", StripAccents("café crème"))
	assert.Equal(t, "plain", StripAccents("plain"))
}
