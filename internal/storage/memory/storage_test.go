package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/JaimeRLA/CorrelationGame/internal/model"
	"github.com/JaimeRLA/CorrelationGame/internal/storage"
	"github.com/JaimeRLA/CorrelationGame/internal/storage/storagetest"
)

func TestStorageSuite(t *testing.T) {
	suite.Run(t, &storagetest.Suite{
		NewStorage: func(t *testing.T) storage.Storage { return New() },
	})
}

type MemorySuite struct {
	suite.Suite
	storage *Storage
	ctx     context.Context
}

func TestMemorySuite(t *testing.T) {
	suite.Run(t, new(MemorySuite))
}

func (s *MemorySuite) SetupTest() {
	s.storage = New()
	s.ctx = context.Background()
}

func (s *MemorySuite) TestTopProfilesUnindexed() {
	_, err := s.storage.TopProfiles(s.ctx, 10)
	s.True(errors.Is(err, storage.ErrIndexUnavailable))
}

func (s *MemorySuite) TestReadsReturnCopies() {
	created, err := s.storage.CreateProfileIfAbsent(s.ctx, model.NewProfile("ana", "Ana", time.Now()))
	s.Require().NoError(err)
	s.Require().True(created)

	p, err := s.storage.GetProfile(s.ctx, "ana")
	s.Require().NoError(err)
	p.Score = 1000

	again, err := s.storage.GetProfile(s.ctx, "ana")
	s.Require().NoError(err)
	s.Equal(int64(0), again.Score)
}

func (s *MemorySuite) TestTransactProfileInputIsCopy() {
	_, err := s.storage.CreateProfileIfAbsent(s.ctx, model.NewProfile("ana", "Ana", time.Now()))
	s.Require().NoError(err)

	res, err := s.storage.TransactProfile(s.ctx, "ana", func(current *model.Profile) *model.Profile {
		current.Score = 50
		return nil
	})
	s.Require().NoError(err)
	s.False(res.Committed)
	s.Equal(int64(0), res.Value.Score)

	got, err := s.storage.GetProfile(s.ctx, "ana")
	s.Require().NoError(err)
	s.Equal(int64(0), got.Score)
}
