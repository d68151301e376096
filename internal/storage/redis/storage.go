package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/JaimeRLA/CorrelationGame/internal/model"
	"github.com/JaimeRLA/CorrelationGame/internal/storage"
)

// Storage is a Redis-backed implementation of the storage interface.
// Conditional writes use WATCH/MULTI with bounded retries.
type Storage struct {
	client *redis.Client
	cfg    Config
}

// New creates a new Redis storage instance
func New(cfg Config) (*Storage, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return NewWithClient(client, cfg), nil
}

// NewWithClient creates a Redis storage with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config) *Storage {
	if cfg.MaxTxRetries <= 0 {
		cfg.MaxTxRetries = DefaultConfig().MaxTxRetries
	}
	return &Storage{
		client: client,
		cfg:    cfg,
	}
}

// Close closes the Redis connection
func (s *Storage) Close() error {
	return s.client.Close()
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

type getter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

// getJSON loads and decodes a JSON record, returning nil when the key is absent
func getJSON[T any](ctx context.Context, g getter, key string) (*T, error) {
	data, err := g.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, err
	}
	return &v, nil
}

// watch runs fn under WATCH on keys, retrying when another client wins the race
func (s *Storage) watch(ctx context.Context, fn func(tx *redis.Tx) error, keys ...string) error {
	for i := 0; i < s.cfg.MaxTxRetries; i++ {
		err := s.client.Watch(ctx, fn, keys...)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return err
	}
	return storage.ErrTxConflict
}

// Account operations

func (s *Storage) CreateAccount(ctx context.Context, account *model.Account) error {
	data, err := json.Marshal(account)
	if err != nil {
		return err
	}

	created, err := s.client.SetNX(ctx, accountKey(account.Login), data, 0).Result()
	if err != nil {
		return err
	}
	if !created {
		return model.ErrAccountExists
	}
	return nil
}

func (s *Storage) GetAccountByLogin(ctx context.Context, login string) (*model.Account, error) {
	account, err := getJSON[model.Account](ctx, s.client, accountKey(login))
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, model.ErrAccountNotFound
	}
	return account, nil
}

// Identity claim operations

func (s *Storage) GetClaim(ctx context.Context, key model.CanonicalKey) (*model.IdentityClaim, error) {
	claim, err := getJSON[model.IdentityClaim](ctx, s.client, claimKey(key))
	if err != nil {
		return nil, err
	}
	if claim == nil {
		return nil, model.ErrClaimNotFound
	}
	return claim, nil
}

func (s *Storage) TransactClaim(ctx context.Context, key model.CanonicalKey, fn storage.TxFunc[model.IdentityClaim]) (storage.TxResult[model.IdentityClaim], error) {
	cKey := claimKey(key)
	var result storage.TxResult[model.IdentityClaim]

	err := s.watch(ctx, func(tx *redis.Tx) error {
		current, err := getJSON[model.IdentityClaim](ctx, tx, cKey)
		if err != nil {
			return err
		}

		var input *model.IdentityClaim
		if current != nil {
			c := *current
			input = &c
		}

		next := fn(input)
		if next == nil {
			result = storage.TxResult[model.IdentityClaim]{Committed: false, Value: current}
			return nil
		}

		stored := *next
		stored.Key = key
		data, err := json.Marshal(&stored)
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, cKey, data, 0)
			return nil
		})
		if err != nil {
			return err
		}
		result = storage.TxResult[model.IdentityClaim]{Committed: true, Value: &stored}
		return nil
	}, cKey)
	if err != nil {
		return storage.TxResult[model.IdentityClaim]{}, err
	}
	return result, nil
}

// Profile operations

func (s *Storage) GetProfile(ctx context.Context, key model.CanonicalKey) (*model.Profile, error) {
	profile, err := getJSON[model.Profile](ctx, s.client, profileKey(key))
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, model.ErrProfileNotFound
	}
	return profile, nil
}

// queueProfileWrite adds the profile record and both indexes to a MULTI block
func queueProfileWrite(ctx context.Context, pipe redis.Pipeliner, profile *model.Profile) error {
	data, err := json.Marshal(profile)
	if err != nil {
		return err
	}
	pipe.Set(ctx, profileKey(profile.Key), data, 0)
	pipe.SAdd(ctx, profilesIndexKey(), string(profile.Key))
	pipe.ZAdd(ctx, scoresIndexKey(), redis.Z{Score: float64(profile.Score), Member: string(profile.Key)})
	return nil
}

func (s *Storage) CreateProfileIfAbsent(ctx context.Context, profile *model.Profile) (bool, error) {
	pKey := profileKey(profile.Key)
	created := false

	err := s.watch(ctx, func(tx *redis.Tx) error {
		exists, err := tx.Exists(ctx, pKey).Result()
		if err != nil {
			return err
		}
		if exists > 0 {
			created = false
			return nil
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			return queueProfileWrite(ctx, pipe, profile)
		})
		if err != nil {
			return err
		}
		created = true
		return nil
	}, pKey)
	return created, err
}

func (s *Storage) TransactProfile(ctx context.Context, key model.CanonicalKey, fn storage.TxFunc[model.Profile]) (storage.TxResult[model.Profile], error) {
	pKey := profileKey(key)
	var result storage.TxResult[model.Profile]

	err := s.watch(ctx, func(tx *redis.Tx) error {
		current, err := getJSON[model.Profile](ctx, tx, pKey)
		if err != nil {
			return err
		}

		next := fn(current.Clone())
		if next == nil {
			result = storage.TxResult[model.Profile]{Committed: false, Value: current}
			return nil
		}

		stored := next.Clone()
		stored.Key = key
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			return queueProfileWrite(ctx, pipe, stored)
		})
		if err != nil {
			return err
		}
		result = storage.TxResult[model.Profile]{Committed: true, Value: stored}
		return nil
	}, pKey)
	if err != nil {
		return storage.TxResult[model.Profile]{}, err
	}
	return result, nil
}

func (s *Storage) ListProfiles(ctx context.Context) ([]*model.Profile, error) {
	members, err := s.client.SMembers(ctx, profilesIndexKey()).Result()
	if err != nil {
		return nil, err
	}
	return s.loadProfiles(ctx, members)
}

// TopProfiles reads the score index. Every profile tied with the lowest
// returned score is included so callers can apply their own tie-break.
func (s *Storage) TopProfiles(ctx context.Context, limit int) ([]*model.Profile, error) {
	if limit <= 0 {
		return []*model.Profile{}, nil
	}

	top, err := s.client.ZRevRangeWithScores(ctx, scoresIndexKey(), 0, int64(limit-1)).Result()
	if err != nil {
		return nil, err
	}
	if len(top) == 0 {
		return []*model.Profile{}, nil
	}

	seen := make(map[string]bool, len(top))
	members := make([]string, 0, len(top))
	for _, z := range top {
		m := z.Member.(string)
		seen[m] = true
		members = append(members, m)
	}

	if len(top) == limit {
		boundary := formatScore(top[len(top)-1].Score)
		ties, err := s.client.ZRangeByScore(ctx, scoresIndexKey(), &redis.ZRangeBy{Min: boundary, Max: boundary}).Result()
		if err != nil {
			return nil, err
		}
		for _, m := range ties {
			if !seen[m] {
				seen[m] = true
				members = append(members, m)
			}
		}
	}

	return s.loadProfiles(ctx, members)
}

func (s *Storage) loadProfiles(ctx context.Context, members []string) ([]*model.Profile, error) {
	if len(members) == 0 {
		return []*model.Profile{}, nil
	}

	keys := make([]string, len(members))
	for i, m := range members {
		keys[i] = profileKey(model.CanonicalKey(m))
	}

	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	profiles := make([]*model.Profile, 0, len(values))
	for _, v := range values {
		if v == nil {
			continue // Index entry without a record
		}
		str, ok := v.(string)
		if !ok {
			continue
		}
		var p model.Profile
		if err := json.Unmarshal([]byte(str), &p); err != nil {
			return nil, err
		}
		profiles = append(profiles, &p)
	}
	return profiles, nil
}

// Play marker operations

func (s *Storage) GetPlayMarker(ctx context.Context, key model.CanonicalKey, day model.DayKey) (*model.PlayMarker, error) {
	marker, err := getJSON[model.PlayMarker](ctx, s.client, playKey(key, day))
	if err != nil {
		return nil, err
	}
	if marker == nil {
		return nil, model.ErrMarkerNotFound
	}
	return marker, nil
}

func (s *Storage) CommitDailyPlay(ctx context.Context, key model.CanonicalKey, day model.DayKey, at time.Time, fn storage.TxFunc[model.Profile]) (storage.TxResult[model.Profile], error) {
	mKey := playKey(key, day)
	pKey := profileKey(key)
	var result storage.TxResult[model.Profile]

	marker, err := json.Marshal(&model.PlayMarker{Key: key, Day: day, PlayedAt: at})
	if err != nil {
		return result, err
	}

	err = s.watch(ctx, func(tx *redis.Tx) error {
		exists, err := tx.Exists(ctx, mKey).Result()
		if err != nil {
			return err
		}
		if exists > 0 {
			return model.ErrAlreadyPlayedToday
		}

		current, err := getJSON[model.Profile](ctx, tx, pKey)
		if err != nil {
			return err
		}

		next := fn(current.Clone())
		var stored *model.Profile
		if next != nil {
			stored = next.Clone()
			stored.Key = key
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, mKey, marker, 0)
			if stored != nil {
				return queueProfileWrite(ctx, pipe, stored)
			}
			return nil
		})
		if err != nil {
			return err
		}

		if stored != nil {
			result = storage.TxResult[model.Profile]{Committed: true, Value: stored}
		} else {
			result = storage.TxResult[model.Profile]{Committed: false, Value: current}
		}
		return nil
	}, mKey, pKey)
	if err != nil {
		return storage.TxResult[model.Profile]{}, err
	}
	return result, nil
}
