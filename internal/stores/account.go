package stores

import (
	"context"
	"encoding/json"
	"errors"
	"slices"

	"github.com/samber/oops"
)

const (
	accountKeyPrefix  = "user:"
	progressKeyPrefix = "progress:"
	emailListKey      = "emails:list"
)

// ErrAccountNotFound is returned when no account is stored under an email.
var ErrAccountNotFound = errors.New("account not found")

// Account is the persisted credential and profile record, keyed by the
// normalized email.
type Account struct {
	Email        string `json:"email"`
	Name         string `json:"name"`
	PasswordHash string `json:"passwordHash"`
	Salt         string `json:"salt"`
	// Iterations is the PBKDF2 cost PasswordHash was derived with. Zero on
	// records written before the field existed.
	Iterations int     `json:"iterations,omitempty"`
	StartDate  *string `json:"startDate"`
	CreatedAt  string  `json:"createdAt"`
}

// Progress maps a day number ("1".."63") to its recorded check-in.
type Progress struct {
	Days map[string]DayEntry `json:"days"`
}

type DayEntry struct {
	Practices map[string]bool `json:"practices"`
	Score     int             `json:"score"`
	Date      string          `json:"date"`
}

// AccountStore persists accounts, per-account progress, and the registered
// email list. Every write is a whole-value put on the latest snapshot read
// by the caller, so concurrent writers to one key resolve last-writer-wins.
type AccountStore struct {
	kv Store
}

func NewAccountStore(kv Store) *AccountStore {
	return &AccountStore{kv: kv}
}

func (s *AccountStore) Get(ctx context.Context, email string) (*Account, error) {
	key := accountKeyPrefix + email
	data, err := s.kv.Get(ctx, key)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}

	var account Account
	if err := json.Unmarshal(data, &account); err != nil {
		return nil, corrupt(accountKeyPrefix, err)
	}
	return &account, nil
}

func (s *AccountStore) Put(ctx context.Context, account *Account) error {
	data, err := json.Marshal(account)
	if err != nil {
		return err
	}
	return s.kv.Put(ctx, accountKeyPrefix+account.Email, data, 0)
}

// Progress returns the stored progress for email, or an empty document when
// none has been written yet.
func (s *AccountStore) Progress(ctx context.Context, email string) (*Progress, error) {
	data, err := s.kv.Get(ctx, progressKeyPrefix+email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return &Progress{Days: map[string]DayEntry{}}, nil
		}
		return nil, err
	}

	var progress Progress
	if err := json.Unmarshal(data, &progress); err != nil {
		return nil, corrupt(progressKeyPrefix, err)
	}
	if progress.Days == nil {
		progress.Days = map[string]DayEntry{}
	}
	return &progress, nil
}

func (s *AccountStore) PutProgress(ctx context.Context, email string, progress *Progress) error {
	if progress.Days == nil {
		progress.Days = map[string]DayEntry{}
	}
	data, err := json.Marshal(progress)
	if err != nil {
		return err
	}
	return s.kv.Put(ctx, progressKeyPrefix+email, data, 0)
}

// Emails returns the registered email list in insertion order.
func (s *AccountStore) Emails(ctx context.Context) ([]string, error) {
	data, err := s.kv.Get(ctx, emailListKey)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return []string{}, nil
		}
		return nil, err
	}

	var emails []string
	if err := json.Unmarshal(data, &emails); err != nil {
		return nil, corrupt(emailListKey, err)
	}
	if emails == nil {
		emails = []string{}
	}
	return emails, nil
}

// AddEmail appends email to the registered list unless already present.
func (s *AccountStore) AddEmail(ctx context.Context, email string) error {
	emails, err := s.Emails(ctx)
	if err != nil {
		return err
	}
	if slices.Contains(emails, email) {
		return nil
	}

	data, err := json.Marshal(append(emails, email))
	if err != nil {
		return err
	}
	return s.kv.Put(ctx, emailListKey, data, 0)
}

func corrupt(namespace string, err error) error {
	return oops.Code("STORE_CORRUPT").With("namespace", namespace).Wrap(err)
}
