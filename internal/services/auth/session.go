package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/JaimeRLA/CorrelationGame/internal/model"
)

// Session binds a verified account to the canonical key it plays as.
// It travels to the client as a signed token and is re-validated against
// the identity claim on every privileged use.
type Session struct {
	ID        string
	Token     string
	AccountID model.AccountID
	Key       model.CanonicalKey
	IssuedAt  time.Time
	ExpiresAt time.Time
}

type sessionClaims struct {
	Key string `json:"key"`
	jwt.RegisteredClaims
}

const tokenIssuer = "corrgame"

// issue signs a new session token
func (s *Service) issue(accountID model.AccountID, key model.CanonicalKey) (*Session, error) {
	now := s.clock.Now().Truncate(time.Second)
	session := &Session{
		ID:        uuid.NewString(),
		AccountID: accountID,
		Key:       key,
		IssuedAt:  now,
		ExpiresAt: now.Add(s.cfg.SessionTTL),
	}

	claims := sessionClaims{
		Key: string(key),
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        session.ID,
			Issuer:    tokenIssuer,
			Subject:   string(accountID),
			IssuedAt:  jwt.NewNumericDate(session.IssuedAt),
			ExpiresAt: jwt.NewNumericDate(session.ExpiresAt),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return nil, fmt.Errorf("sign session: %w", err)
	}
	session.Token = token
	return session, nil
}

// parse verifies a token's signature and expiry and rebuilds its Session
func (s *Service) parse(token string) (*Session, error) {
	var claims sessionClaims
	_, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.clock.Now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, model.ErrInvalidSession
		}
		return nil, fmt.Errorf("%w: %v", model.ErrInvalidSession, err)
	}

	if claims.ID == "" || claims.Subject == "" || claims.Key == "" {
		return nil, model.ErrInvalidSession
	}

	session := &Session{
		ID:        claims.ID,
		Token:     token,
		AccountID: model.AccountID(claims.Subject),
		Key:       model.CanonicalKey(claims.Key),
		ExpiresAt: claims.ExpiresAt.Time,
	}
	if claims.IssuedAt != nil {
		session.IssuedAt = claims.IssuedAt.Time
	}
	return session, nil
}

// revoke records a session id as signed out until its natural expiry
func (s *Service) revoke(session *Session) {
	s.mu.Lock()
	s.revoked[session.ID] = session.ExpiresAt
	s.mu.Unlock()
}

func (s *Service) isRevoked(id string) bool {
	s.mu.RLock()
	_, ok := s.revoked[id]
	s.mu.RUnlock()
	return ok
}

// CleanExpiredSessions prunes revocations whose tokens have expired anyway (call periodically)
func (s *Service) CleanExpiredSessions() {
	now := s.clock.Now()
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, expiresAt := range s.revoked {
		if now.After(expiresAt) {
			delete(s.revoked, id)
		}
	}
}

// RevokedCount returns the number of tracked revocations
func (s *Service) RevokedCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.revoked)
}
