// Package sqlstore is a database/sql implementation of the storage interface
// for SQLite, PostgreSQL and MySQL.
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/JaimeRLA/CorrelationGame/internal/model"
	"github.com/JaimeRLA/CorrelationGame/internal/storage"
)

// errInsertRace signals that a transaction lost an insert race and must rerun
var errInsertRace = errors.New("insert race")

// Storage is a SQL-backed implementation of the storage interface
type Storage struct {
	db      *sql.DB
	dialect Dialect
	cfg     Config
}

// New opens the database, applies dialect settings and creates the schema
func New(cfg Config) (*Storage, error) {
	dialect, err := DialectFor(cfg.Driver)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(dialect.DriverName(), cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := dialect.ConfigureConnection(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to configure connection: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	for _, stmt := range dialect.Schema() {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to create schema: %w", err)
		}
	}

	if cfg.MaxTxRetries <= 0 {
		cfg.MaxTxRetries = DefaultConfig().MaxTxRetries
	}

	return &Storage{db: db, dialect: dialect, cfg: cfg}, nil
}

// Close closes the database connection
func (s *Storage) Close() error {
	return s.db.Close()
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// q rewrites placeholders for the active dialect
func (s *Storage) q(query string) string {
	return s.dialect.RewriteQuery(query)
}

// forUpdate rewrites a SELECT and appends the dialect's row lock
func (s *Storage) forUpdate(query string) string {
	return s.q(query + s.dialect.LockClause())
}

// withTx runs fn in a transaction, rerunning it on insert races and
// transient lock failures. fn returning nil commits.
func (s *Storage) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	for attempt := 0; attempt < s.cfg.MaxTxRetries; attempt++ {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return err
		}

		if err := fn(tx); err != nil {
			_ = tx.Rollback()
			if errors.Is(err, errInsertRace) || s.dialect.IsRetryable(err) {
				continue
			}
			return err
		}

		if err := tx.Commit(); err != nil {
			if s.dialect.IsRetryable(err) {
				continue
			}
			return err
		}
		return nil
	}
	return storage.ErrTxConflict
}

func toMillis(t time.Time) int64 {
	return t.UnixMilli()
}

func fromMillis(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}

// Account operations

func (s *Storage) CreateAccount(ctx context.Context, account *model.Account) error {
	_, err := s.db.ExecContext(ctx,
		s.q(`INSERT INTO accounts (login, id, password_hash, created_at) VALUES (?, ?, ?, ?)`),
		account.Login, string(account.ID), account.PasswordHash, toMillis(account.CreatedAt))
	if err != nil {
		if s.dialect.IsUniqueViolation(err) {
			return model.ErrAccountExists
		}
		return err
	}
	return nil
}

func (s *Storage) GetAccountByLogin(ctx context.Context, login string) (*model.Account, error) {
	var (
		a       model.Account
		id      string
		created int64
	)
	err := s.db.QueryRowContext(ctx,
		s.q(`SELECT login, id, password_hash, created_at FROM accounts WHERE login = ?`), login).
		Scan(&a.Login, &id, &a.PasswordHash, &created)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrAccountNotFound
		}
		return nil, err
	}
	a.ID = model.AccountID(id)
	a.CreatedAt = fromMillis(created)
	return &a, nil
}

// Identity claim operations

type rowScanner interface {
	Scan(dest ...any) error
}

func scanClaim(row rowScanner) (*model.IdentityClaim, error) {
	var key, owner, name string
	if err := row.Scan(&key, &owner, &name); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &model.IdentityClaim{
		Key:         model.CanonicalKey(key),
		AccountID:   model.AccountID(owner),
		DisplayName: name,
	}, nil
}

const selectClaim = `SELECT canonical_key, account_id, display_name FROM identity_claims WHERE canonical_key = ?`

func (s *Storage) GetClaim(ctx context.Context, key model.CanonicalKey) (*model.IdentityClaim, error) {
	claim, err := scanClaim(s.db.QueryRowContext(ctx, s.q(selectClaim), string(key)))
	if err != nil {
		return nil, err
	}
	if claim == nil {
		return nil, model.ErrClaimNotFound
	}
	return claim, nil
}

func (s *Storage) TransactClaim(ctx context.Context, key model.CanonicalKey, fn storage.TxFunc[model.IdentityClaim]) (storage.TxResult[model.IdentityClaim], error) {
	var result storage.TxResult[model.IdentityClaim]

	err := s.withTx(ctx, func(tx *sql.Tx) error {
		current, err := scanClaim(tx.QueryRowContext(ctx, s.forUpdate(selectClaim), string(key)))
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
		if current == nil {
			_, err = tx.ExecContext(ctx,
				s.q(`INSERT INTO identity_claims (canonical_key, account_id, display_name) VALUES (?, ?, ?)`),
				string(key), string(stored.AccountID), stored.DisplayName)
		} else {
			_, err = tx.ExecContext(ctx,
				s.q(`UPDATE identity_claims SET account_id = ?, display_name = ? WHERE canonical_key = ?`),
				string(stored.AccountID), stored.DisplayName, string(key))
		}
		if err != nil {
			if s.dialect.IsUniqueViolation(err) {
				return errInsertRace
			}
			return err
		}

		result = storage.TxResult[model.IdentityClaim]{Committed: true, Value: &stored}
		return nil
	})
	if err != nil {
		return storage.TxResult[model.IdentityClaim]{}, err
	}
	return result, nil
}

// Profile operations

const profileColumns = `canonical_key, display_name, score, created_at, streak, last_played_day`

const selectProfile = `SELECT ` + profileColumns + ` FROM profiles WHERE canonical_key = ?`

func scanProfile(row rowScanner) (*model.Profile, error) {
	var (
		p       model.Profile
		key     string
		created int64
		last    string
	)
	if err := row.Scan(&key, &p.DisplayName, &p.Score, &created, &p.Streak, &last); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	p.Key = model.CanonicalKey(key)
	p.Created = fromMillis(created)
	p.LastPlayedDay = model.DayKey(last)
	return &p, nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (s *Storage) insertProfile(ctx context.Context, ex execer, p *model.Profile) error {
	_, err := ex.ExecContext(ctx,
		s.q(`INSERT INTO profiles (`+profileColumns+`) VALUES (?, ?, ?, ?, ?, ?)`),
		string(p.Key), p.DisplayName, p.Score, toMillis(p.Created), p.Streak, string(p.LastPlayedDay))
	return err
}

func (s *Storage) updateProfile(ctx context.Context, ex execer, p *model.Profile) error {
	_, err := ex.ExecContext(ctx,
		s.q(`UPDATE profiles SET display_name = ?, score = ?, created_at = ?, streak = ?, last_played_day = ? WHERE canonical_key = ?`),
		p.DisplayName, p.Score, toMillis(p.Created), p.Streak, string(p.LastPlayedDay), string(p.Key))
	return err
}

func (s *Storage) GetProfile(ctx context.Context, key model.CanonicalKey) (*model.Profile, error) {
	profile, err := scanProfile(s.db.QueryRowContext(ctx, s.q(selectProfile), string(key)))
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, model.ErrProfileNotFound
	}
	return profile, nil
}

func (s *Storage) CreateProfileIfAbsent(ctx context.Context, profile *model.Profile) (bool, error) {
	if err := s.insertProfile(ctx, s.db, profile); err != nil {
		if s.dialect.IsUniqueViolation(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// transactProfileTx runs fn over the locked profile row inside tx
func (s *Storage) transactProfileTx(ctx context.Context, tx *sql.Tx, key model.CanonicalKey, fn storage.TxFunc[model.Profile]) (storage.TxResult[model.Profile], error) {
	current, err := scanProfile(tx.QueryRowContext(ctx, s.forUpdate(selectProfile), string(key)))
	if err != nil {
		return storage.TxResult[model.Profile]{}, err
	}

	next := fn(current.Clone())
	if next == nil {
		return storage.TxResult[model.Profile]{Committed: false, Value: current}, nil
	}

	stored := next.Clone()
	stored.Key = key
	if current == nil {
		err = s.insertProfile(ctx, tx, stored)
	} else {
		err = s.updateProfile(ctx, tx, stored)
	}
	if err != nil {
		if s.dialect.IsUniqueViolation(err) {
			return storage.TxResult[model.Profile]{}, errInsertRace
		}
		return storage.TxResult[model.Profile]{}, err
	}
	return storage.TxResult[model.Profile]{Committed: true, Value: stored}, nil
}

func (s *Storage) TransactProfile(ctx context.Context, key model.CanonicalKey, fn storage.TxFunc[model.Profile]) (storage.TxResult[model.Profile], error) {
	var result storage.TxResult[model.Profile]
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		var err error
		result, err = s.transactProfileTx(ctx, tx, key, fn)
		return err
	})
	if err != nil {
		return storage.TxResult[model.Profile]{}, err
	}
	return result, nil
}

func (s *Storage) queryProfiles(ctx context.Context, query string, args ...any) ([]*model.Profile, error) {
	rows, err := s.db.QueryContext(ctx, s.q(query), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	profiles := []*model.Profile{}
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, p)
	}
	return profiles, rows.Err()
}

func (s *Storage) ListProfiles(ctx context.Context) ([]*model.Profile, error) {
	return s.queryProfiles(ctx, `SELECT `+profileColumns+` FROM profiles`)
}

// TopProfiles returns exactly the top limit rows in leaderboard order
func (s *Storage) TopProfiles(ctx context.Context, limit int) ([]*model.Profile, error) {
	if limit <= 0 {
		return []*model.Profile{}, nil
	}
	return s.queryProfiles(ctx,
		`SELECT `+profileColumns+` FROM profiles ORDER BY score DESC, created_at ASC, canonical_key ASC LIMIT ?`, limit)
}

// Play marker operations

func (s *Storage) GetPlayMarker(ctx context.Context, key model.CanonicalKey, day model.DayKey) (*model.PlayMarker, error) {
	var playedAt int64
	err := s.db.QueryRowContext(ctx,
		s.q(`SELECT played_at FROM play_markers WHERE canonical_key = ? AND day = ?`), string(key), string(day)).
		Scan(&playedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrMarkerNotFound
		}
		return nil, err
	}
	return &model.PlayMarker{Key: key, Day: day, PlayedAt: fromMillis(playedAt)}, nil
}

func (s *Storage) CommitDailyPlay(ctx context.Context, key model.CanonicalKey, day model.DayKey, at time.Time, fn storage.TxFunc[model.Profile]) (storage.TxResult[model.Profile], error) {
	var result storage.TxResult[model.Profile]
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			s.q(`INSERT INTO play_markers (canonical_key, day, played_at) VALUES (?, ?, ?)`),
			string(key), string(day), toMillis(at))
		if err != nil {
			if s.dialect.IsUniqueViolation(err) {
				return model.ErrAlreadyPlayedToday
			}
			return err
		}

		result, err = s.transactProfileTx(ctx, tx, key, fn)
		return err
	})
	if err != nil {
		return storage.TxResult[model.Profile]{}, err
	}
	return result, nil
}
