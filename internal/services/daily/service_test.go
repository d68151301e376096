package daily

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/JaimeRLA/CorrelationGame/internal/dependencies/mocks"
	"github.com/JaimeRLA/CorrelationGame/internal/model"
	"github.com/JaimeRLA/CorrelationGame/internal/storage/memory"
)

type ServiceSuite struct {
	suite.Suite
	storage *memory.Storage
	clock   *mocks.MockClock
	service *Service
	ctx     context.Context
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.storage = memory.New()
	s.clock = mocks.NewMockClock(time.Date(2025, 3, 10, 18, 30, 0, 0, time.UTC))
	s.service = New(s.storage, s.clock)
	s.ctx = context.Background()
}

func (s *ServiceSuite) markPlayed(day model.DayKey) {
	_, err := s.storage.CommitDailyPlay(s.ctx, "ana", day, s.clock.Now(), func(p *model.Profile) *model.Profile { return nil })
	s.Require().NoError(err)
}

func (s *ServiceSuite) TestUnlockedWithoutMarker() {
	status, err := s.service.Status(s.ctx, "ana")
	s.Require().NoError(err)
	s.False(status.Locked)
	s.Equal(model.DayKey("2025-03-10"), status.Day)
	s.Zero(status.Remaining)
	s.NoError(s.service.Check(s.ctx, "ana"))
}

func (s *ServiceSuite) TestLockedWithMarker() {
	s.markPlayed("2025-03-10")

	status, err := s.service.Status(s.ctx, "ana")
	s.Require().NoError(err)
	s.True(status.Locked)
	s.Equal(5*time.Hour+30*time.Minute, status.Remaining)

	err = s.service.Check(s.ctx, "ana")
	s.ErrorIs(err, model.ErrAlreadyPlayedToday)

	var played *model.AlreadyPlayedError
	s.Require().True(errors.As(err, &played))
	s.Equal(5*time.Hour+30*time.Minute, played.Remaining)
}

func (s *ServiceSuite) TestUnlocksAtUTCMidnight() {
	s.markPlayed("2025-03-10")

	s.clock.Set(time.Date(2025, 3, 10, 23, 59, 59, 999_000_000, time.UTC))
	status, err := s.service.Status(s.ctx, "ana")
	s.Require().NoError(err)
	s.True(status.Locked)
	s.Equal(time.Millisecond, status.Remaining)

	s.clock.Set(time.Date(2025, 3, 11, 0, 0, 0, 0, time.UTC))
	status, err = s.service.Status(s.ctx, "ana")
	s.Require().NoError(err)
	s.False(status.Locked)
	s.Equal(model.DayKey("2025-03-11"), status.Day)
}

func (s *ServiceSuite) TestOtherIdentityUnaffected() {
	s.markPlayed("2025-03-10")

	status, err := s.service.Status(s.ctx, "bob")
	s.Require().NoError(err)
	s.False(status.Locked)
}
