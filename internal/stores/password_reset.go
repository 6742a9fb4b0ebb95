package stores

import (
	"context"
	"encoding/json"
	"errors"
	"time"
)

const resetKeyPrefix = "reset:"

var (
	ErrResetNotFound = errors.New("reset record not found")
	ErrResetExpired  = errors.New("reset record expired")
)

// ResetRecord binds a single-use reset token to the account it was issued for.
type ResetRecord struct {
	Email     string    `json:"email"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// PasswordResetStore keeps pending reset tokens. Records carry the store TTL
// and an embedded expiry, and both are honored.
type PasswordResetStore struct {
	kv  Store
	now func() time.Time
}

func NewPasswordResetStore(kv Store, now func() time.Time) *PasswordResetStore {
	if now == nil {
		now = time.Now
	}
	return &PasswordResetStore{
		kv:  kv,
		now: now,
	}
}

func (s *PasswordResetStore) Save(ctx context.Context, token string, record *ResetRecord, ttl time.Duration) error {
	data, err := json.Marshal(record)
	if err != nil {
		return err
	}
	return s.kv.Put(ctx, resetKeyPrefix+token, data, ttl)
}

// Get returns the live record for token. A record whose embedded expiry has
// passed is deleted and reported as ErrResetExpired.
func (s *PasswordResetStore) Get(ctx context.Context, token string) (*ResetRecord, error) {
	key := resetKeyPrefix + token
	data, err := s.kv.Get(ctx, key)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrResetNotFound
		}
		return nil, err
	}

	var record ResetRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, corrupt(resetKeyPrefix, err)
	}

	if s.now().After(record.ExpiresAt) {
		if err := s.kv.Delete(ctx, key); err != nil {
			return nil, err
		}
		return nil, ErrResetExpired
	}

	return &record, nil
}

func (s *PasswordResetStore) Delete(ctx context.Context, token string) error {
	return s.kv.Delete(ctx, resetKeyPrefix+token)
}
