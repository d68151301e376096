package identity

import (
	"context"
	"fmt"

	"github.com/JaimeRLA/CorrelationGame/internal/model"
	"github.com/JaimeRLA/CorrelationGame/internal/storage"
)

// Service reserves canonical keys for accounts
type Service struct {
	storage storage.Storage
}

// New creates a new identity Service
func New(storage storage.Storage) *Service {
	return &Service{
		storage: storage,
	}
}

// Reserve claims key for accountID in a single conditional transaction.
// An existing claim by the same account only has its display name updated;
// a claim held by any other account aborts with model.ErrIdentityTaken.
func (s *Service) Reserve(ctx context.Context, key model.CanonicalKey, accountID model.AccountID, displayName string) (*model.IdentityClaim, error) {
	res, err := s.storage.TransactClaim(ctx, key, func(current *model.IdentityClaim) *model.IdentityClaim {
		if current != nil && !current.OwnedBy(accountID) {
			return nil
		}
		return &model.IdentityClaim{
			Key:         key,
			AccountID:   accountID,
			DisplayName: displayName,
		}
	})
	if err != nil {
		return nil, fmt.Errorf("reserve identity %s: %w", key, err)
	}
	if !res.Committed {
		return nil, model.ErrIdentityTaken
	}
	return res.Value, nil
}

// Lookup returns the committed claim for key
func (s *Service) Lookup(ctx context.Context, key model.CanonicalKey) (*model.IdentityClaim, error) {
	return s.storage.GetClaim(ctx, key)
}
