package random

import (
	"crypto/rand"
	"encoding/hex"
)

// Random provides random material that can be mocked for testing
type Random interface {
	// Secret returns n random bytes encoded as hex
	Secret(n int) (string, error)
}

// CryptoRandom implements Random using crypto/rand
type CryptoRandom struct{}

// New creates a new CryptoRandom
func New() *CryptoRandom {
	return &CryptoRandom{}
}

// Secret returns n bytes from crypto/rand as a hex string
func (r *CryptoRandom) Secret(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
