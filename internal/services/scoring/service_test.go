package scoring

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/JaimeRLA/CorrelationGame/internal/dependencies/mocks"
	"github.com/JaimeRLA/CorrelationGame/internal/model"
	"github.com/JaimeRLA/CorrelationGame/internal/storage/memory"
	"github.com/JaimeRLA/CorrelationGame/internal/testutil"
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
	s.clock = mocks.NewMockClock(time.Date(2025, 3, 10, 15, 0, 0, 0, time.UTC))
	s.service = New(s.storage, s.clock, testutil.NopLogger())
	s.ctx = context.Background()
}

func (s *ServiceSuite) seedProfile(key model.CanonicalKey, score int64, streak int, last model.DayKey) {
	p := model.NewProfile(key, string(key), s.clock.Now())
	p.Score = score
	p.Streak = streak
	p.LastPlayedDay = last
	_, err := s.storage.CreateProfileIfAbsent(s.ctx, p)
	s.Require().NoError(err)
}

func (s *ServiceSuite) TestFirstPlay() {
	s.seedProfile("ana", 0, 0, "")

	result, err := s.service.CompleteDailyChain(s.ctx, "ana", 100)
	s.Require().NoError(err)
	s.Equal(int64(100), result.Awarded)
	s.Equal(1, result.Streak)
	s.Equal(int64(100), result.Score)
	s.Equal(model.DayKey("2025-03-10"), result.Day)
	s.True(result.ProfileUpdated)

	profile, err := s.storage.GetProfile(s.ctx, "ana")
	s.Require().NoError(err)
	s.Equal(model.DayKey("2025-03-10"), profile.LastPlayedDay)

	_, err = s.storage.GetPlayMarker(s.ctx, "ana", "2025-03-10")
	s.NoError(err)
}

func (s *ServiceSuite) TestStreakContinues() {
	s.seedProfile("ana", 500, 3, "2025-03-09")

	result, err := s.service.CompleteDailyChain(s.ctx, "ana", 100)
	s.Require().NoError(err)
	s.Equal(4, result.Streak)
	s.Equal(1.3, result.Multiplier)
	s.Equal(int64(130), result.Awarded)
	s.Equal(int64(630), result.Score)
}

func (s *ServiceSuite) TestStreakResetsAfterGap() {
	s.seedProfile("ana", 500, 5, "2025-03-08")

	result, err := s.service.CompleteDailyChain(s.ctx, "ana", 100)
	s.Require().NoError(err)
	s.Equal(1, result.Streak)
	s.Equal(int64(100), result.Awarded)
}

func (s *ServiceSuite) TestMultiplierCapped() {
	s.seedProfile("ana", 0, 20, "2025-03-09")

	result, err := s.service.CompleteDailyChain(s.ctx, "ana", 100)
	s.Require().NoError(err)
	s.Equal(21, result.Streak)
	s.Equal(2.0, result.Multiplier)
	s.Equal(int64(200), result.Awarded)
}

func (s *ServiceSuite) TestSecondPlaySameDayRejected() {
	s.seedProfile("ana", 0, 0, "")

	_, err := s.service.CompleteDailyChain(s.ctx, "ana", 100)
	s.Require().NoError(err)

	_, err = s.service.CompleteDailyChain(s.ctx, "ana", 0)
	s.ErrorIs(err, model.ErrAlreadyPlayedToday)

	var played *model.AlreadyPlayedError
	s.Require().True(errors.As(err, &played))
	s.Equal(9*time.Hour, played.Remaining)

	profile, err := s.storage.GetProfile(s.ctx, "ana")
	s.Require().NoError(err)
	s.Equal(int64(100), profile.Score)
}

func (s *ServiceSuite) TestForfeitConsumesDay() {
	s.seedProfile("ana", 40, 2, "2025-03-09")

	result, err := s.service.CompleteDailyChain(s.ctx, "ana", 0)
	s.Require().NoError(err)
	s.Equal(int64(0), result.Awarded)
	s.Equal(3, result.Streak)
	s.Equal(int64(40), result.Score)

	_, err = s.service.CompleteDailyChain(s.ctx, "ana", 100)
	s.ErrorIs(err, model.ErrAlreadyPlayedToday)
}

func (s *ServiceSuite) TestMissingProfileIsIgnored() {
	result, err := s.service.CompleteDailyChain(s.ctx, "ghost", 100)
	s.Require().NoError(err)
	s.False(result.ProfileUpdated)
	s.Equal(int64(0), result.Score)

	_, err = s.storage.GetProfile(s.ctx, "ghost")
	s.ErrorIs(err, model.ErrProfileNotFound)

	_, err = s.service.CompleteDailyChain(s.ctx, "ghost", 100)
	s.ErrorIs(err, model.ErrAlreadyPlayedToday)
}

func (s *ServiceSuite) TestNegativePointsRejected() {
	s.seedProfile("ana", 0, 0, "")

	_, err := s.service.CompleteDailyChain(s.ctx, "ana", -5)
	s.ErrorIs(err, model.ErrInvalidPoints)

	_, err = s.storage.GetPlayMarker(s.ctx, "ana", "2025-03-10")
	s.ErrorIs(err, model.ErrMarkerNotFound)
}

func (s *ServiceSuite) TestOversizedPointsRejected() {
	s.seedProfile("ana", 500, 3, "2025-03-09")

	for _, delta := range []int64{MaxPoints + 1, math.MaxInt64/10 + 1, math.MaxInt64 / 5, math.MaxInt64} {
		_, err := s.service.CompleteDailyChain(s.ctx, "ana", delta)
		s.ErrorIs(err, model.ErrInvalidPoints, "delta=%d", delta)
	}

	_, err := s.storage.GetPlayMarker(s.ctx, "ana", "2025-03-10")
	s.ErrorIs(err, model.ErrMarkerNotFound)

	profile, err := s.storage.GetProfile(s.ctx, "ana")
	s.Require().NoError(err)
	s.Equal(int64(500), profile.Score)
}

func (s *ServiceSuite) TestLargestPointsNeverLowerScore() {
	s.seedProfile("ana", 500, 20, "2025-03-09")

	result, err := s.service.CompleteDailyChain(s.ctx, "ana", MaxPoints)
	s.Require().NoError(err)
	s.Positive(result.Awarded)
	s.GreaterOrEqual(result.Score, int64(500))
}

func (s *ServiceSuite) TestScoreSaturates() {
	s.seedProfile("ana", math.MaxInt64-10, 1, "2025-03-09")

	result, err := s.service.CompleteDailyChain(s.ctx, "ana", 100)
	s.Require().NoError(err)
	s.Equal(int64(math.MaxInt64), result.Score)
}

func (s *ServiceSuite) TestConcurrentCompletionsCommitOnce() {
	s.seedProfile("ana", 0, 0, "")

	const tabs = 10
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
	)
	for i := 0; i < tabs; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.service.CompleteDailyChain(s.ctx, "ana", 100)
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				successes++
				return
			}
			s.ErrorIs(err, model.ErrAlreadyPlayedToday)
		}()
	}
	wg.Wait()

	s.Equal(1, successes)
	profile, err := s.storage.GetProfile(s.ctx, "ana")
	s.Require().NoError(err)
	s.Equal(int64(100), profile.Score)
	s.Equal(1, profile.Streak)
}

func (s *ServiceSuite) TestListenersNotified() {
	s.seedProfile("ana", 0, 0, "")

	var got []Result
	s.service.OnCommit(func(ctx context.Context, r Result) {
		got = append(got, r)
	})

	_, err := s.service.CompleteDailyChain(s.ctx, "ana", 100)
	s.Require().NoError(err)
	_, _ = s.service.CompleteDailyChain(s.ctx, "ana", 100)

	s.Require().Len(got, 1)
	s.Equal(int64(100), got[0].Score)
}

func (s *ServiceSuite) TestScoreNeverDecreasesAcrossDays() {
	s.seedProfile("ana", 0, 0, "")

	last := int64(0)
	for day := 0; day < 15; day++ {
		result, err := s.service.CompleteDailyChain(s.ctx, "ana", int64(day*10))
		s.Require().NoError(err)
		s.GreaterOrEqual(result.Score, last)
		s.Equal(day+1, result.Streak)
		last = result.Score
		s.clock.AdvanceDays(1)
	}
}
