// Package storagetest holds the behavioral suite every storage backend must pass.
package storagetest

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/JaimeRLA/CorrelationGame/internal/model"
	"github.com/JaimeRLA/CorrelationGame/internal/storage"
)

// Suite exercises a storage.Storage implementation. Backends run it with
// suite.Run and a NewStorage constructor returning a fresh, empty store.
type Suite struct {
	suite.Suite
	NewStorage func(t *testing.T) storage.Storage

	Storage storage.Storage
	Ctx     context.Context
}

var baseTime = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

func (s *Suite) SetupTest() {
	s.Storage = s.NewStorage(s.T())
	s.Ctx = context.Background()
}

func (s *Suite) TearDownTest() {
	if s.Storage != nil {
		_ = s.Storage.Close()
	}
}

func (s *Suite) createProfile(key model.CanonicalKey, score int64, created time.Time) {
	p := model.NewProfile(key, string(key), created)
	p.Score = score
	ok, err := s.Storage.CreateProfileIfAbsent(s.Ctx, p)
	s.Require().NoError(err)
	s.Require().True(ok)
}

func claimFor(owner model.AccountID, name string) storage.TxFunc[model.IdentityClaim] {
	return func(current *model.IdentityClaim) *model.IdentityClaim {
		if current != nil && current.AccountID != owner {
			return nil
		}
		return &model.IdentityClaim{AccountID: owner, DisplayName: name}
	}
}

func addPoints(delta int64) storage.TxFunc[model.Profile] {
	return func(current *model.Profile) *model.Profile {
		if current == nil {
			return nil
		}
		current.Score += delta
		return current
	}
}

// Account tests

func (s *Suite) TestCreateAndGetAccount() {
	account := &model.Account{ID: "acc-1", Login: "ana@example.test", PasswordHash: "hash", CreatedAt: baseTime}
	s.Require().NoError(s.Storage.CreateAccount(s.Ctx, account))

	got, err := s.Storage.GetAccountByLogin(s.Ctx, "ana@example.test")
	s.Require().NoError(err)
	s.Equal(model.AccountID("acc-1"), got.ID)
	s.Equal("hash", got.PasswordHash)
}

func (s *Suite) TestCreateAccountDuplicateLogin() {
	account := &model.Account{ID: "acc-1", Login: "ana@example.test", PasswordHash: "hash", CreatedAt: baseTime}
	s.Require().NoError(s.Storage.CreateAccount(s.Ctx, account))

	other := &model.Account{ID: "acc-2", Login: "ana@example.test", PasswordHash: "other", CreatedAt: baseTime}
	s.ErrorIs(s.Storage.CreateAccount(s.Ctx, other), model.ErrAccountExists)

	got, err := s.Storage.GetAccountByLogin(s.Ctx, "ana@example.test")
	s.Require().NoError(err)
	s.Equal(model.AccountID("acc-1"), got.ID)
}

func (s *Suite) TestGetAccountNotFound() {
	_, err := s.Storage.GetAccountByLogin(s.Ctx, "nobody@example.test")
	s.ErrorIs(err, model.ErrAccountNotFound)
}

// Claim tests

func (s *Suite) TestGetClaimNotFound() {
	_, err := s.Storage.GetClaim(s.Ctx, "ana")
	s.ErrorIs(err, model.ErrClaimNotFound)
}

func (s *Suite) TestTransactClaimCreatesWhenAbsent() {
	res, err := s.Storage.TransactClaim(s.Ctx, "ana", claimFor("acc-1", "Ana"))
	s.Require().NoError(err)
	s.True(res.Committed)
	s.Equal(model.CanonicalKey("ana"), res.Value.Key)

	got, err := s.Storage.GetClaim(s.Ctx, "ana")
	s.Require().NoError(err)
	s.Equal(model.AccountID("acc-1"), got.AccountID)
	s.Equal("Ana", got.DisplayName)
}

func (s *Suite) TestTransactClaimSameOwnerUpdates() {
	_, err := s.Storage.TransactClaim(s.Ctx, "ana", claimFor("acc-1", "Ana"))
	s.Require().NoError(err)

	res, err := s.Storage.TransactClaim(s.Ctx, "ana", claimFor("acc-1", "ANA"))
	s.Require().NoError(err)
	s.True(res.Committed)

	got, err := s.Storage.GetClaim(s.Ctx, "ana")
	s.Require().NoError(err)
	s.Equal("ANA", got.DisplayName)
}

func (s *Suite) TestTransactClaimAbortReturnsCurrent() {
	_, err := s.Storage.TransactClaim(s.Ctx, "ana", claimFor("acc-1", "Ana"))
	s.Require().NoError(err)

	res, err := s.Storage.TransactClaim(s.Ctx, "ana", claimFor("acc-2", "Ana"))
	s.Require().NoError(err)
	s.False(res.Committed)
	s.Require().NotNil(res.Value)
	s.Equal(model.AccountID("acc-1"), res.Value.AccountID)

	got, err := s.Storage.GetClaim(s.Ctx, "ana")
	s.Require().NoError(err)
	s.Equal(model.AccountID("acc-1"), got.AccountID)
}

func (s *Suite) TestTransactClaimConcurrentSingleWinner() {
	const contenders = 8

	var wg sync.WaitGroup
	results := make([]storage.TxResult[model.IdentityClaim], contenders)
	errs := make([]error, contenders)
	for i := 0; i < contenders; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			owner := model.AccountID(string(rune('a' + i)))
			results[i], errs[i] = s.Storage.TransactClaim(s.Ctx, "ana", claimFor(owner, "Ana"))
		}(i)
	}
	wg.Wait()

	winners := 0
	var winner model.AccountID
	for i := 0; i < contenders; i++ {
		s.Require().NoError(errs[i])
		if results[i].Committed {
			winners++
			winner = results[i].Value.AccountID
		}
	}
	s.Equal(1, winners)

	got, err := s.Storage.GetClaim(s.Ctx, "ana")
	s.Require().NoError(err)
	s.Equal(winner, got.AccountID)
}

// Profile tests

func (s *Suite) TestCreateProfileIfAbsent() {
	p := model.NewProfile("ana", "Ana", baseTime)
	created, err := s.Storage.CreateProfileIfAbsent(s.Ctx, p)
	s.Require().NoError(err)
	s.True(created)

	again := model.NewProfile("ana", "Someone Else", baseTime.Add(time.Hour))
	again.Score = 999
	created, err = s.Storage.CreateProfileIfAbsent(s.Ctx, again)
	s.Require().NoError(err)
	s.False(created)

	got, err := s.Storage.GetProfile(s.Ctx, "ana")
	s.Require().NoError(err)
	s.Equal("Ana", got.DisplayName)
	s.Equal(int64(0), got.Score)
	s.WithinDuration(baseTime, got.Created, time.Millisecond)
}

func (s *Suite) TestGetProfileNotFound() {
	_, err := s.Storage.GetProfile(s.Ctx, "ghost")
	s.ErrorIs(err, model.ErrProfileNotFound)
}

func (s *Suite) TestTransactProfileAbsentAborts() {
	res, err := s.Storage.TransactProfile(s.Ctx, "ghost", addPoints(10))
	s.Require().NoError(err)
	s.False(res.Committed)
	s.Nil(res.Value)

	_, err = s.Storage.GetProfile(s.Ctx, "ghost")
	s.ErrorIs(err, model.ErrProfileNotFound)
}

func (s *Suite) TestTransactProfileUpdates() {
	s.createProfile("ana", 10, baseTime)

	res, err := s.Storage.TransactProfile(s.Ctx, "ana", addPoints(5))
	s.Require().NoError(err)
	s.True(res.Committed)
	s.Equal(int64(15), res.Value.Score)

	got, err := s.Storage.GetProfile(s.Ctx, "ana")
	s.Require().NoError(err)
	s.Equal(int64(15), got.Score)
}

func (s *Suite) TestTransactProfileConcurrentIncrements() {
	s.createProfile("ana", 0, baseTime)

	const writers = 5
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				_, err := s.Storage.TransactProfile(s.Ctx, "ana", addPoints(1))
				if errors.Is(err, storage.ErrTxConflict) {
					continue
				}
				s.NoError(err)
				return
			}
		}()
	}
	wg.Wait()

	got, err := s.Storage.GetProfile(s.Ctx, "ana")
	s.Require().NoError(err)
	s.Equal(int64(writers), got.Score)
}

func (s *Suite) TestListProfiles() {
	s.createProfile("ana", 10, baseTime)
	s.createProfile("bob", 20, baseTime)

	profiles, err := s.Storage.ListProfiles(s.Ctx)
	s.Require().NoError(err)

	keys := make([]string, 0, len(profiles))
	for _, p := range profiles {
		keys = append(keys, string(p.Key))
	}
	sort.Strings(keys)
	s.Equal([]string{"ana", "bob"}, keys)
}

func (s *Suite) TestTopProfiles() {
	s.createProfile("ana", 10, baseTime)
	s.createProfile("bob", 30, baseTime)
	s.createProfile("cid", 20, baseTime)
	s.createProfile("dan", 5, baseTime)

	top, err := s.Storage.TopProfiles(s.Ctx, 2)
	if errors.Is(err, storage.ErrIndexUnavailable) {
		s.T().Skip("backend has no score index")
	}
	s.Require().NoError(err)

	s.Require().GreaterOrEqual(len(top), 2)
	scores := make(map[model.CanonicalKey]int64)
	for _, p := range top {
		scores[p.Key] = p.Score
	}
	s.Equal(int64(30), scores["bob"])
	s.Equal(int64(20), scores["cid"])
	s.NotContains(scores, model.CanonicalKey("dan"))
}

func (s *Suite) TestTopProfilesTracksUpdates() {
	s.createProfile("ana", 10, baseTime)
	s.createProfile("bob", 20, baseTime)

	_, err := s.Storage.TransactProfile(s.Ctx, "ana", addPoints(50))
	s.Require().NoError(err)

	top, err := s.Storage.TopProfiles(s.Ctx, 1)
	if errors.Is(err, storage.ErrIndexUnavailable) {
		s.T().Skip("backend has no score index")
	}
	s.Require().NoError(err)
	s.Require().Len(top, 1)
	s.Equal(model.CanonicalKey("ana"), top[0].Key)
	s.Equal(int64(60), top[0].Score)
}

// Daily play tests

func (s *Suite) TestCommitDailyPlay() {
	s.createProfile("ana", 0, baseTime)

	res, err := s.Storage.CommitDailyPlay(s.Ctx, "ana", "2025-03-10", baseTime, addPoints(100))
	s.Require().NoError(err)
	s.True(res.Committed)
	s.Equal(int64(100), res.Value.Score)

	marker, err := s.Storage.GetPlayMarker(s.Ctx, "ana", "2025-03-10")
	s.Require().NoError(err)
	s.Equal(model.DayKey("2025-03-10"), marker.Day)
	s.WithinDuration(baseTime, marker.PlayedAt, time.Millisecond)
}

func (s *Suite) TestCommitDailyPlayTwiceSameDay() {
	s.createProfile("ana", 0, baseTime)

	_, err := s.Storage.CommitDailyPlay(s.Ctx, "ana", "2025-03-10", baseTime, addPoints(100))
	s.Require().NoError(err)

	_, err = s.Storage.CommitDailyPlay(s.Ctx, "ana", "2025-03-10", baseTime.Add(time.Hour), addPoints(100))
	s.ErrorIs(err, model.ErrAlreadyPlayedToday)

	got, err := s.Storage.GetProfile(s.Ctx, "ana")
	s.Require().NoError(err)
	s.Equal(int64(100), got.Score)
}

func (s *Suite) TestCommitDailyPlayNextDay() {
	s.createProfile("ana", 0, baseTime)

	_, err := s.Storage.CommitDailyPlay(s.Ctx, "ana", "2025-03-10", baseTime, addPoints(100))
	s.Require().NoError(err)
	_, err = s.Storage.CommitDailyPlay(s.Ctx, "ana", "2025-03-11", baseTime.Add(24*time.Hour), addPoints(100))
	s.Require().NoError(err)

	got, err := s.Storage.GetProfile(s.Ctx, "ana")
	s.Require().NoError(err)
	s.Equal(int64(200), got.Score)
}

func (s *Suite) TestCommitDailyPlayWithoutProfileStillMarks() {
	res, err := s.Storage.CommitDailyPlay(s.Ctx, "ghost", "2025-03-10", baseTime, addPoints(100))
	s.Require().NoError(err)
	s.False(res.Committed)
	s.Nil(res.Value)

	_, err = s.Storage.GetPlayMarker(s.Ctx, "ghost", "2025-03-10")
	s.NoError(err)

	_, err = s.Storage.GetProfile(s.Ctx, "ghost")
	s.ErrorIs(err, model.ErrProfileNotFound)
}

func (s *Suite) TestCommitDailyPlayConcurrentSingleSuccess() {
	s.createProfile("ana", 0, baseTime)

	const attempts = 6
	var wg sync.WaitGroup
	errs := make([]error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = s.Storage.CommitDailyPlay(s.Ctx, "ana", "2025-03-10", baseTime, addPoints(100))
		}(i)
	}
	wg.Wait()

	successes := 0
	for _, err := range errs {
		if err == nil {
			successes++
			continue
		}
		s.ErrorIs(err, model.ErrAlreadyPlayedToday)
	}
	s.Equal(1, successes)

	got, err := s.Storage.GetProfile(s.Ctx, "ana")
	s.Require().NoError(err)
	s.Equal(int64(100), got.Score)
}

func (s *Suite) TestGetPlayMarkerNotFound() {
	_, err := s.Storage.GetPlayMarker(s.Ctx, "ana", "2025-03-10")
	s.ErrorIs(err, model.ErrMarkerNotFound)
}
