package chain

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/JaimeRLA/CorrelationGame/internal/dependencies/mocks"
	"github.com/JaimeRLA/CorrelationGame/internal/model"
	"github.com/JaimeRLA/CorrelationGame/internal/services/daily"
	"github.com/JaimeRLA/CorrelationGame/internal/services/scoring"
	"github.com/JaimeRLA/CorrelationGame/internal/storage"
	"github.com/JaimeRLA/CorrelationGame/internal/storage/memory"
	"github.com/JaimeRLA/CorrelationGame/internal/testutil"
)

const testContent = `
chains:
  - id: test
    endpoints:
      - {type: text, value: Abeja}
      - {type: text, value: Vela}
      - {type: image, src: /img/tarta.png, alt: Tarta}
    answers:
      - [cera, panal]
      - [cumpleaños]
`

var errStoreDown = errors.New("store unavailable")

// flakyCommitStorage fails the first failures calls to CommitDailyPlay
type flakyCommitStorage struct {
	*memory.Storage
	failures int
}

func (f *flakyCommitStorage) CommitDailyPlay(ctx context.Context, key model.CanonicalKey, day model.DayKey, at time.Time, fn storage.TxFunc[model.Profile]) (storage.TxResult[model.Profile], error) {
	if f.failures > 0 {
		f.failures--
		return storage.TxResult[model.Profile]{}, errStoreDown
	}
	return f.Storage.CommitDailyPlay(ctx, key, day, at, fn)
}

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
	s.clock = mocks.NewMockClock(time.Date(2025, 3, 10, 20, 0, 0, 0, time.UTC))

	content, err := ParseContent([]byte(testContent))
	s.Require().NoError(err)

	lock := daily.New(s.storage, s.clock)
	scorer := scoring.New(s.storage, s.clock, testutil.NopLogger())
	s.service = New(content, lock, scorer, s.clock, testutil.NopLogger())
	s.ctx = context.Background()

	_, err = s.storage.CreateProfileIfAbsent(s.ctx, model.NewProfile("ana", "Ana", s.clock.Now()))
	s.Require().NoError(err)
}

func (s *ServiceSuite) TestTodayStartsAtFirstLink() {
	view, err := s.service.Today(s.ctx, "ana")
	s.Require().NoError(err)
	s.Equal("test", view.ChainID)
	s.Equal(0, view.Step)
	s.Equal(2, view.Steps)
	s.Equal("Abeja", view.From.Value)
	s.Equal("Vela", view.To.Value)
	s.False(view.Locked)
}

func (s *ServiceSuite) TestPerfectRun() {
	res, err := s.service.Guess(s.ctx, "ana", "  CERA ")
	s.Require().NoError(err)
	s.True(res.Correct)
	s.Equal(int64(FirstAttemptPoints), res.Points)
	s.False(res.Complete)

	view, err := s.service.Today(s.ctx, "ana")
	s.Require().NoError(err)
	s.Equal(1, view.Step)
	s.Equal(model.EndpointImage, view.To.Kind)

	res, err = s.service.Guess(s.ctx, "ana", "cumpleanos")
	s.Require().NoError(err)
	s.True(res.Complete)
	s.Equal(int64(200), res.Total)
	s.Require().NotNil(res.Result)
	s.Equal(int64(200), res.Result.Score)

	view, err = s.service.Today(s.ctx, "ana")
	s.Require().NoError(err)
	s.True(view.Locked)
	s.True(view.Finished)
	s.Nil(view.From)
	s.Equal(4*time.Hour, view.Remaining)
}

func (s *ServiceSuite) TestWrongGuessThenRetryScoresLess() {
	res, err := s.service.Guess(s.ctx, "ana", "miel")
	s.Require().NoError(err)
	s.False(res.Correct)
	s.Equal(int64(0), res.Total)

	res, err = s.service.Guess(s.ctx, "ana", "panal")
	s.Require().NoError(err)
	s.True(res.Correct)
	s.Equal(int64(RetryPoints), res.Points)
}

func (s *ServiceSuite) TestEmptyGuess() {
	_, err := s.service.Guess(s.ctx, "ana", "   ")
	s.ErrorIs(err, model.ErrEmptyGuess)
}

func (s *ServiceSuite) TestRevealGivesNoPoints() {
	res, err := s.service.Reveal(s.ctx, "ana")
	s.Require().NoError(err)
	s.Equal("cera", res.Answer)
	s.Equal(int64(0), res.Points)

	res, err = s.service.Guess(s.ctx, "ana", "cumpleaños")
	s.Require().NoError(err)
	s.True(res.Complete)
	s.Equal(int64(100), res.Result.Score)
}

func (s *ServiceSuite) TestRevealOnLastLinkConsumesDay() {
	_, err := s.service.Reveal(s.ctx, "ana")
	s.Require().NoError(err)

	res, err := s.service.Reveal(s.ctx, "ana")
	s.Require().NoError(err)
	s.True(res.Complete)
	s.Equal(int64(0), res.Result.Score)

	_, err = s.service.Guess(s.ctx, "ana", "cera")
	s.ErrorIs(err, model.ErrAlreadyPlayedToday)

	var played *model.AlreadyPlayedError
	s.Require().True(errors.As(err, &played))
	s.Equal(4*time.Hour, played.Remaining)
}

func (s *ServiceSuite) TestGuessBlockedWhenPlayedElsewhere() {
	_, err := s.storage.CommitDailyPlay(s.ctx, "ana", "2025-03-10", s.clock.Now(), func(p *model.Profile) *model.Profile { return nil })
	s.Require().NoError(err)

	_, err = s.service.Guess(s.ctx, "ana", "cera")
	s.ErrorIs(err, model.ErrAlreadyPlayedToday)
	_, err = s.service.Reveal(s.ctx, "ana")
	s.ErrorIs(err, model.ErrAlreadyPlayedToday)
}

func (s *ServiceSuite) TestRunResetsNextDay() {
	_, err := s.service.Guess(s.ctx, "ana", "cera")
	s.Require().NoError(err)

	s.clock.AdvanceDays(1)

	view, err := s.service.Today(s.ctx, "ana")
	s.Require().NoError(err)
	s.Equal(0, view.Step)
	s.Equal(int64(0), view.Points)
	s.Equal(model.DayKey("2025-03-11"), view.Day)
}

func (s *ServiceSuite) TestFailedCommitKeepsRunOpen() {
	flaky := &flakyCommitStorage{Storage: s.storage, failures: 1}
	content, err := ParseContent([]byte(testContent))
	s.Require().NoError(err)
	scorer := scoring.New(flaky, s.clock, testutil.NopLogger())
	service := New(content, daily.New(flaky, s.clock), scorer, s.clock, testutil.NopLogger())

	_, err = service.Guess(s.ctx, "ana", "cera")
	s.Require().NoError(err)

	_, err = service.Guess(s.ctx, "ana", "cumpleaños")
	s.ErrorIs(err, errStoreDown)

	view, err := service.Today(s.ctx, "ana")
	s.Require().NoError(err)
	s.Equal(1, view.Step)
	s.Equal(int64(FirstAttemptPoints), view.Points)
	s.False(view.Finished)

	res, err := service.Guess(s.ctx, "ana", "cumpleaños")
	s.Require().NoError(err)
	s.True(res.Complete)
	s.Equal(int64(FirstAttemptPoints), res.Points)
	s.Equal(int64(200), res.Total)

	profile, err := s.storage.GetProfile(s.ctx, "ana")
	s.Require().NoError(err)
	s.Equal(int64(200), profile.Score)
}
