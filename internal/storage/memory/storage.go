package memory

import (
	"context"
	"sync"
	"time"

	"github.com/JaimeRLA/CorrelationGame/internal/model"
	"github.com/JaimeRLA/CorrelationGame/internal/storage"
)

// Storage is an in-memory implementation of the storage interface.
// A single mutex serializes every transaction, which makes each
// conditional write trivially atomic.
type Storage struct {
	mu sync.RWMutex

	accounts map[string]*model.Account
	claims   map[model.CanonicalKey]*model.IdentityClaim
	profiles map[model.CanonicalKey]*model.Profile
	markers  map[markerKey]*model.PlayMarker
}

type markerKey struct {
	key model.CanonicalKey
	day model.DayKey
}

// New creates a new in-memory storage instance
func New() *Storage {
	return &Storage{
		accounts: make(map[string]*model.Account),
		claims:   make(map[model.CanonicalKey]*model.IdentityClaim),
		profiles: make(map[model.CanonicalKey]*model.Profile),
		markers:  make(map[markerKey]*model.PlayMarker),
	}
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Close is a no-op for memory storage
func (s *Storage) Close() error {
	return nil
}

// Account operations

func (s *Storage) CreateAccount(ctx context.Context, account *model.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.accounts[account.Login]; ok {
		return model.ErrAccountExists
	}
	a := *account
	s.accounts[account.Login] = &a
	return nil
}

func (s *Storage) GetAccountByLogin(ctx context.Context, login string) (*model.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	account, ok := s.accounts[login]
	if !ok {
		return nil, model.ErrAccountNotFound
	}
	a := *account
	return &a, nil
}

// Identity claim operations

func (s *Storage) GetClaim(ctx context.Context, key model.CanonicalKey) (*model.IdentityClaim, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	claim, ok := s.claims[key]
	if !ok {
		return nil, model.ErrClaimNotFound
	}
	c := *claim
	return &c, nil
}

func (s *Storage) TransactClaim(ctx context.Context, key model.CanonicalKey, fn storage.TxFunc[model.IdentityClaim]) (storage.TxResult[model.IdentityClaim], error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var current *model.IdentityClaim
	if claim, ok := s.claims[key]; ok {
		c := *claim
		current = &c
	}

	next := fn(copyClaim(current))
	if next == nil {
		return storage.TxResult[model.IdentityClaim]{Committed: false, Value: current}, nil
	}

	stored := *next
	stored.Key = key
	s.claims[key] = &stored
	return storage.TxResult[model.IdentityClaim]{Committed: true, Value: copyClaim(&stored)}, nil
}

// Profile operations

func (s *Storage) GetProfile(ctx context.Context, key model.CanonicalKey) (*model.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	profile, ok := s.profiles[key]
	if !ok {
		return nil, model.ErrProfileNotFound
	}
	return profile.Clone(), nil
}

func (s *Storage) CreateProfileIfAbsent(ctx context.Context, profile *model.Profile) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.profiles[profile.Key]; ok {
		return false, nil
	}
	s.profiles[profile.Key] = profile.Clone()
	return true, nil
}

func (s *Storage) TransactProfile(ctx context.Context, key model.CanonicalKey, fn storage.TxFunc[model.Profile]) (storage.TxResult[model.Profile], error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.transactProfileLocked(key, fn), nil
}

func (s *Storage) transactProfileLocked(key model.CanonicalKey, fn storage.TxFunc[model.Profile]) storage.TxResult[model.Profile] {
	current := s.profiles[key].Clone()

	next := fn(current.Clone())
	if next == nil {
		return storage.TxResult[model.Profile]{Committed: false, Value: current}
	}

	stored := next.Clone()
	stored.Key = key
	s.profiles[key] = stored
	return storage.TxResult[model.Profile]{Committed: true, Value: stored.Clone()}
}

func (s *Storage) ListProfiles(ctx context.Context) ([]*model.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	profiles := make([]*model.Profile, 0, len(s.profiles))
	for _, p := range s.profiles {
		profiles = append(profiles, p.Clone())
	}
	return profiles, nil
}

// TopProfiles is not indexed in memory; callers fall back to ListProfiles
func (s *Storage) TopProfiles(ctx context.Context, limit int) ([]*model.Profile, error) {
	return nil, storage.ErrIndexUnavailable
}

// Play marker operations

func (s *Storage) GetPlayMarker(ctx context.Context, key model.CanonicalKey, day model.DayKey) (*model.PlayMarker, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	marker, ok := s.markers[markerKey{key: key, day: day}]
	if !ok {
		return nil, model.ErrMarkerNotFound
	}
	m := *marker
	return &m, nil
}

func (s *Storage) CommitDailyPlay(ctx context.Context, key model.CanonicalKey, day model.DayKey, at time.Time, fn storage.TxFunc[model.Profile]) (storage.TxResult[model.Profile], error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	mk := markerKey{key: key, day: day}
	if _, ok := s.markers[mk]; ok {
		return storage.TxResult[model.Profile]{}, model.ErrAlreadyPlayedToday
	}
	s.markers[mk] = &model.PlayMarker{Key: key, Day: day, PlayedAt: at}

	return s.transactProfileLocked(key, fn), nil
}

func copyClaim(c *model.IdentityClaim) *model.IdentityClaim {
	if c == nil {
		return nil
	}
	cp := *c
	return &cp
}
