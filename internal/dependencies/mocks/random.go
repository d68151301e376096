package mocks

import (
	"strings"
	"sync"

	"github.com/JaimeRLA/CorrelationGame/internal/dependencies/random"
)

// MockRandom is a mock implementation of Random for testing
type MockRandom struct {
	mu      sync.Mutex
	secrets []string
}

// Ensure MockRandom implements Random
var _ random.Random = (*MockRandom)(nil)

// NewMockRandom creates a new MockRandom
func NewMockRandom() *MockRandom {
	return &MockRandom{}
}

// Secret returns the next queued secret, or a fixed filler of 2n characters if none remain
func (r *MockRandom) Secret(n int) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.secrets) == 0 {
		return strings.Repeat("0", 2*n), nil
	}
	s := r.secrets[0]
	r.secrets = r.secrets[1:]
	return s, nil
}

// QueueSecret adds values to the Secret result queue
func (r *MockRandom) QueueSecret(values ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.secrets = append(r.secrets, values...)
}
