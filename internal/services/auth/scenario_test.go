package auth

import (
	"time"

	"github.com/JaimeRLA/CorrelationGame/internal/model"
	"github.com/JaimeRLA/CorrelationGame/internal/services/daily"
	"github.com/JaimeRLA/CorrelationGame/internal/services/scoring"
	"github.com/JaimeRLA/CorrelationGame/internal/testutil"
)

func (s *ServiceSuite) TestRegisterPlayTwoDays() {
	scorer := scoring.New(s.storage, s.clock, testutil.NopLogger())
	lock := daily.New(s.storage, s.clock)

	session, profile, err := s.service.Register(s.ctx, "Ana García", "abcdef")
	s.Require().NoError(err)
	s.Equal(int64(0), profile.Score)
	s.Equal(0, profile.Streak)

	// Day D
	result, err := scorer.CompleteDailyChain(s.ctx, session.Key, 100)
	s.Require().NoError(err)
	s.Equal(int64(100), result.Score)
	s.Equal(1, result.Streak)

	_, err = s.storage.GetPlayMarker(s.ctx, "ana-garcia", "2025-03-10")
	s.Require().NoError(err)

	status, err := lock.Status(s.ctx, session.Key)
	s.Require().NoError(err)
	s.True(status.Locked)

	_, err = scorer.CompleteDailyChain(s.ctx, session.Key, 100)
	s.ErrorIs(err, model.ErrAlreadyPlayedToday)

	// Day D+1
	s.clock.Advance(24 * time.Hour)
	session, _, err = s.service.Login(s.ctx, "Ana García", "abcdef")
	s.Require().NoError(err)

	status, err = lock.Status(s.ctx, session.Key)
	s.Require().NoError(err)
	s.False(status.Locked)

	result, err = scorer.CompleteDailyChain(s.ctx, session.Key, 100)
	s.Require().NoError(err)
	s.Equal(2, result.Streak)
	s.Equal(int64(110), result.Awarded)
	s.Equal(int64(210), result.Score)

	current, err := s.service.CurrentProfile(s.ctx, session)
	s.Require().NoError(err)
	s.Equal(int64(210), current.Score)
	s.Equal(model.DayKey("2025-03-11"), current.LastPlayedDay)
}
