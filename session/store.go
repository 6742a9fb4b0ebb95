package session

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/samber/oops"
	"github.com/uglydojo/q63/internal"
	"github.com/uglydojo/q63/internal/stores"
)

const keyPrefix = "session:"

// ErrSessionNotFound is returned for malformed, unknown, and expired tokens
// alike.
var ErrSessionNotFound = errors.New("session not found")

// Store issues and validates opaque bearer sessions on top of the key-value
// store. Sessions are never renewed or revoked; they live until the store TTL
// or the embedded expiry, whichever comes first.
type Store struct {
	kv  stores.Store
	ttl time.Duration
	now func() time.Time
}

// NewStore creates a session [Store]. ttl bounds both the store key lifetime
// and the embedded expiresAt. A nil now uses time.Now.
func NewStore(kv stores.Store, ttl time.Duration, now func() time.Time) *Store {
	if now == nil {
		now = time.Now
	}
	return &Store{
		kv:  kv,
		ttl: ttl,
		now: now,
	}
}

// TTL returns the session lifetime.
func (s *Store) TTL() time.Duration {
	return s.ttl
}

// Issue creates a session for email and returns its token.
//
//	Performance: 1 store put.
func (s *Store) Issue(ctx context.Context, email string) (string, *Session, error) {
	token, err := internal.NewToken()
	if err != nil {
		return "", nil, oops.Code("TOKEN_GENERATION_FAILED").Wrap(err)
	}

	sess := &Session{
		Email:     email,
		ExpiresAt: s.now().Add(s.ttl).UTC(),
	}
	data, err := json.Marshal(sess)
	if err != nil {
		return "", nil, err
	}

	if err := s.kv.Put(ctx, keyPrefix+token, data, s.ttl); err != nil {
		return "", nil, err
	}

	return token, sess, nil
}

// Validate resolves token to its live session. Malformed tokens are rejected
// without touching the store; a session past its embedded expiry is deleted.
//
//	Performance: 0–2 store operations.
func (s *Store) Validate(ctx context.Context, token string) (*Session, error) {
	if !internal.ValidToken(token) {
		return nil, ErrSessionNotFound
	}

	key := keyPrefix + token
	data, err := s.kv.Get(ctx, key)
	if err != nil {
		if errors.Is(err, stores.ErrNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}

	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, oops.Code("STORE_CORRUPT").With("namespace", "session").Wrap(err)
	}

	if sess.Expired(s.now()) {
		if err := s.kv.Delete(ctx, key); err != nil {
			return nil, err
		}
		return nil, ErrSessionNotFound
	}

	return &sess, nil
}
