package storage

import (
	"context"
	"errors"
	"time"

	"github.com/JaimeRLA/CorrelationGame/internal/model"
)

// Storage errors that are not domain errors
var (
	// ErrIndexUnavailable is returned by TopProfiles when the backend has no score index
	ErrIndexUnavailable = errors.New("score index unavailable")
	// ErrTxConflict is returned when an optimistic transaction keeps losing races
	ErrTxConflict = errors.New("transaction conflict, retries exhausted")
)

// TxFunc computes the next value of a record from its current value (nil when
// absent). Returning nil aborts: the stored value is left unchanged and the
// transaction reports Committed=false.
type TxFunc[T any] func(current *T) *T

// TxResult is the outcome of a conditional transaction. On commit Value holds
// the written value; on abort it holds the value observed by the transaction.
type TxResult[T any] struct {
	Committed bool
	Value     *T
}

// Storage defines the keyed transactional store the game depends on
type Storage interface {
	// Account operations (credential store)
	CreateAccount(ctx context.Context, account *model.Account) error
	GetAccountByLogin(ctx context.Context, login string) (*model.Account, error)

	// Identity claim operations
	GetClaim(ctx context.Context, key model.CanonicalKey) (*model.IdentityClaim, error)
	TransactClaim(ctx context.Context, key model.CanonicalKey, fn TxFunc[model.IdentityClaim]) (TxResult[model.IdentityClaim], error)

	// Profile operations
	GetProfile(ctx context.Context, key model.CanonicalKey) (*model.Profile, error)
	CreateProfileIfAbsent(ctx context.Context, profile *model.Profile) (bool, error)
	TransactProfile(ctx context.Context, key model.CanonicalKey, fn TxFunc[model.Profile]) (TxResult[model.Profile], error)
	ListProfiles(ctx context.Context) ([]*model.Profile, error)
	TopProfiles(ctx context.Context, limit int) ([]*model.Profile, error)

	// Play marker operations
	GetPlayMarker(ctx context.Context, key model.CanonicalKey, day model.DayKey) (*model.PlayMarker, error)

	// CommitDailyPlay creates the play marker for (key, day) and runs fn over
	// the profile in one atomic step. If the marker already exists nothing is
	// written and model.ErrAlreadyPlayedToday is returned. An aborted profile
	// transaction still commits the marker.
	CommitDailyPlay(ctx context.Context, key model.CanonicalKey, day model.DayKey, at time.Time, fn TxFunc[model.Profile]) (TxResult[model.Profile], error)

	Close() error
}
