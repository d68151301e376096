package factory

import (
	"time"

	"github.com/JaimeRLA/CorrelationGame/internal/dependencies/mocks"
	"github.com/JaimeRLA/CorrelationGame/internal/services/auth"
	"github.com/JaimeRLA/CorrelationGame/internal/services/chain"
	"github.com/JaimeRLA/CorrelationGame/internal/services/credentials"
	"github.com/JaimeRLA/CorrelationGame/internal/storage"
	"github.com/JaimeRLA/CorrelationGame/internal/storage/memory"
	"github.com/JaimeRLA/CorrelationGame/internal/testutil"
	"golang.org/x/crypto/bcrypt"
)

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Mocks for test control
	MockClock  *mocks.MockClock
	MockRandom *mocks.MockRandom
}

// NewTestApp creates an App over memory storage with mocked dependencies
func NewTestApp() *TestApp {
	return NewTestAppWithStorage(memory.New(), StorageTypeMemory)
}

// NewTestAppWithStorage creates an App over the given storage with mocked dependencies
func NewTestAppWithStorage(store storage.Storage, storageName string) *TestApp {
	mockClock := mocks.NewMockClock(time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC))
	mockRandom := mocks.NewMockRandom()

	content, err := chain.DefaultContent()
	if err != nil {
		panic(err)
	}

	authCfg := auth.DefaultConfig()
	authCfg.Secret = "test-secret-0123456789"
	credCfg := credentials.DefaultConfig()
	credCfg.BcryptCost = bcrypt.MinCost

	app, err := newWithDependencies(store, storageName, mockClock, mockRandom, content, Config{
		AuthConfig:        authCfg,
		CredentialsConfig: &credCfg,
	}, testutil.NopLogger())
	if err != nil {
		panic(err)
	}

	return &TestApp{
		App:        app,
		MockClock:  mockClock,
		MockRandom: mockRandom,
	}
}
