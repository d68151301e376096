package model

import "time"

// CanonicalKey is the normalized identity derived from a display name.
// Two display names with the same canonical key are the same identity.
type CanonicalKey string

// AccountID identifies an account in the credential store
type AccountID string

// Account is a credential record. Login is the email-like id derived from
// the canonical key and is never shown to players.
type Account struct {
	ID           AccountID `json:"id"`
	Login        string    `json:"login"`
	PasswordHash string    `json:"password_hash"` // bcrypt hash
	CreatedAt    time.Time `json:"created_at"`
}

// IdentityClaim binds a canonical key to the one account allowed to use it.
// The owner never changes once committed; only DisplayName is updated.
type IdentityClaim struct {
	Key         CanonicalKey `json:"key"`
	AccountID   AccountID    `json:"account_id"`
	DisplayName string       `json:"display_name"`
}

// OwnedBy reports whether the claim belongs to the given account
func (c *IdentityClaim) OwnedBy(id AccountID) bool {
	return c != nil && c.AccountID == id
}
