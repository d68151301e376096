package leaderboard

import (
	"context"
	"errors"
	"log/slog"
	"sort"

	"github.com/JaimeRLA/CorrelationGame/internal/model"
	"github.com/JaimeRLA/CorrelationGame/internal/storage"
)

// MaxEntries bounds the size of a single leaderboard read
const MaxEntries = 100

// Entry is one leaderboard row
type Entry struct {
	Rank        int                `json:"rank"`
	Key         model.CanonicalKey `json:"key"`
	DisplayName string             `json:"display_name"`
	Score       int64              `json:"score"`
}

// Service reads the best-effort leaderboard
type Service struct {
	storage storage.Storage
	logger  *slog.Logger
}

// New creates a new leaderboard Service
func New(storage storage.Storage, logger *slog.Logger) *Service {
	return &Service{
		storage: storage,
		logger:  logger,
	}
}

// Top returns the n highest scoring profiles. Reads never fail: an index
// failure falls back to a full scan and a scan failure yields no rows.
func (s *Service) Top(ctx context.Context, n int) []Entry {
	n = clamp(n)

	profiles, err := s.storage.TopProfiles(ctx, n)
	if err != nil {
		if !errors.Is(err, storage.ErrIndexUnavailable) {
			s.logger.Warn("leaderboard index query failed, scanning profiles",
				slog.String("error", err.Error()),
			)
		}
		profiles, err = s.storage.ListProfiles(ctx)
		if err != nil {
			s.logger.Warn("leaderboard scan failed",
				slog.String("error", err.Error()),
			)
			return []Entry{}
		}
	}

	return rank(profiles, n)
}

func clamp(n int) int {
	if n < 1 {
		return 1
	}
	if n > MaxEntries {
		return MaxEntries
	}
	return n
}

// rank orders by score descending, then earliest creation, then key
func rank(profiles []*model.Profile, n int) []Entry {
	sort.SliceStable(profiles, func(i, j int) bool {
		a, b := profiles[i], profiles[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if !a.Created.Equal(b.Created) {
			return a.Created.Before(b.Created)
		}
		return a.Key < b.Key
	})

	if len(profiles) > n {
		profiles = profiles[:n]
	}

	entries := make([]Entry, len(profiles))
	for i, p := range profiles {
		entries[i] = Entry{
			Rank:        i + 1,
			Key:         p.Key,
			DisplayName: p.DisplayName,
			Score:       p.Score,
		}
	}
	return entries
}
