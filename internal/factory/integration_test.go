package factory

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"

	"github.com/JaimeRLA/CorrelationGame/internal/model"
	"github.com/JaimeRLA/CorrelationGame/internal/services/chain"
	redisstorage "github.com/JaimeRLA/CorrelationGame/internal/storage/redis"
	"github.com/JaimeRLA/CorrelationGame/internal/storage/sqlstore"
)

type IntegrationSuite struct {
	suite.Suite
	newApp func(t *testing.T) *TestApp
	app    *TestApp
	ctx    context.Context
}

func TestIntegrationMemory(t *testing.T) {
	suite.Run(t, &IntegrationSuite{newApp: func(*testing.T) *TestApp { return NewTestApp() }})
}

func TestIntegrationRedis(t *testing.T) {
	suite.Run(t, &IntegrationSuite{newApp: func(t *testing.T) *TestApp {
		mr := miniredis.RunT(t)
		client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
		return NewTestAppWithStorage(redisstorage.NewWithClient(client, redisstorage.DefaultConfig()), StorageTypeRedis)
	}})
}

func TestIntegrationSQL(t *testing.T) {
	suite.Run(t, &IntegrationSuite{newApp: func(t *testing.T) *TestApp {
		cfg := sqlstore.DefaultConfig()
		cfg.DSN = t.TempDir() + "/corrgame.db"
		store, err := sqlstore.New(cfg)
		if err != nil {
			t.Fatal(err)
		}
		return NewTestAppWithStorage(store, StorageTypeSQL)
	}})
}

func (s *IntegrationSuite) SetupTest() {
	s.app = s.newApp(s.T())
	s.ctx = context.Background()
}

func (s *IntegrationSuite) TearDownTest() {
	s.NoError(s.app.Close())
}

// playToday solves today's chain, guessing right first time on every step
func (s *IntegrationSuite) playToday(key model.CanonicalKey) *chain.GuessResult {
	c, err := chain.DefaultContent()
	s.Require().NoError(err)
	today := c.ChainFor(s.app.MockClock.Now())

	var result *chain.GuessResult
	for _, answers := range today.Answers {
		result, err = s.app.ChainService.Guess(s.ctx, key, answers[0])
		s.Require().NoError(err)
		s.Require().True(result.Correct)
	}
	return result
}

// Test: register, play a full chain, get locked, play again tomorrow with a streak
func (s *IntegrationSuite) TestDailyChainAcrossTwoDays() {
	session, profile, err := s.app.AuthService.Register(s.ctx, "Ana García", "abcdef")
	s.Require().NoError(err)
	s.Equal(model.CanonicalKey("ana-garcia"), profile.Key)

	day1 := s.playToday(session.Key)
	s.True(day1.Complete)
	s.Require().NotNil(day1.Result)
	s.Equal(1, day1.Result.Streak)
	firstScore := day1.Result.Score
	s.Positive(firstScore)

	_, err = s.app.ChainService.Guess(s.ctx, session.Key, "anything")
	var played *model.AlreadyPlayedError
	s.ErrorAs(err, &played)

	status, err := s.app.DailyService.Status(s.ctx, session.Key)
	s.Require().NoError(err)
	s.True(status.Locked)

	s.app.MockClock.AdvanceDays(1)

	day2 := s.playToday(session.Key)
	s.Require().NotNil(day2.Result)
	s.Equal(2, day2.Result.Streak)
	s.Equal(1.1, day2.Result.Multiplier)
	s.Greater(day2.Result.Score, firstScore)

	top := s.app.LeaderboardService.Top(s.ctx, 10)
	s.Require().Len(top, 1)
	s.Equal("Ana García", top[0].DisplayName)
	s.Equal(day2.Result.Score, top[0].Score)
}

// Test: spellings that canonicalize to an owned key share one account
func (s *IntegrationSuite) TestCanonicalCollisionIsRejected() {
	_, _, err := s.app.AuthService.Register(s.ctx, "Ana García", "abcdef")
	s.Require().NoError(err)

	_, _, err = s.app.AuthService.Register(s.ctx, "ana  GARCIA", "zzzzzz")
	s.ErrorIs(err, model.ErrAccountExists)

	_, _, err = s.app.AuthService.Login(s.ctx, "ana garcia", "zzzzzz")
	s.ErrorIs(err, model.ErrInvalidCredentials)

	session, profile, err := s.app.AuthService.Login(s.ctx, "ANA GARCÍA", "abcdef")
	s.Require().NoError(err)
	s.Equal(model.CanonicalKey("ana-garcia"), session.Key)
	s.Equal("ANA GARCÍA", profile.DisplayName)
}

// Test: committed plays are pushed to live subscribers
func (s *IntegrationSuite) TestCommitBroadcastsLeaderboard() {
	go s.app.Hub.Run()
	defer s.app.Hub.Close()

	client := newCaptureClient(s.app)
	defer client.close()

	session, _, err := s.app.AuthService.Register(s.ctx, "Bruno", "abcdef")
	s.Require().NoError(err)
	_, err = s.app.ScoringService.CompleteDailyChain(s.ctx, session.Key, 100)
	s.Require().NoError(err)

	select {
	case msg := <-client.messages:
		var snapshot struct {
			Entries []struct {
				DisplayName string `json:"display_name"`
				Score       int64  `json:"score"`
			} `json:"entries"`
		}
		s.Require().NoError(json.Unmarshal(msg, &snapshot))
		s.Require().Len(snapshot.Entries, 1)
		s.Equal("Bruno", snapshot.Entries[0].DisplayName)
		s.Equal(int64(100), snapshot.Entries[0].Score)
	case <-time.After(2 * time.Second):
		s.Fail("no leaderboard broadcast received")
	}
}
