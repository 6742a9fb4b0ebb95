package stores

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/samber/oops"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewRedisStore(rdb, ""), mr
}

func TestRedisStoreRoundTripAndTTL(t *testing.T) {
	kv, mr := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, kv.Put(ctx, "session:abc", []byte(`{"email":"a@b.co"}`), time.Minute))
	got, err := kv.Get(ctx, "session:abc")
	require.NoError(t, err)
	assert.JSONEq(t, `{"email":"a@b.co"}`, string(got))

	mr.FastForward(2 * time.Minute)
	_, err = kv.Get(ctx, "session:abc")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRedisStoreDeleteIdempotent(t *testing.T) {
	kv, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, kv.Put(ctx, "k", []byte("v"), 0))
	require.NoError(t, kv.Delete(ctx, "k"))
	require.NoError(t, kv.Delete(ctx, "k"))

	_, err := kv.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRedisStorePrefix(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	kv := NewRedisStore(rdb, "q63")

	require.NoError(t, kv.Put(context.Background(), "user:a@b.co", []byte("{}"), 0))
	assert.True(t, mr.Exists("q63:user:a@b.co"))
}

func TestRedisStoreUnavailableHidesToken(t *testing.T) {
	kv, mr := newTestStore(t)
	mr.Close()

	_, err := kv.Get(context.Background(), "session:deadbeef")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)

	oopsErr, ok := oops.AsOops(err)
	require.True(t, ok)
	assert.Equal(t, "STORE_UNAVAILABLE", oopsErr.Code())
	assert.Equal(t, "session", oopsErr.Context()["namespace"])
	assert.NotContains(t, oopsErr.Context(), "key")
}

func TestAccountStore(t *testing.T) {
	kv, _ := newTestStore(t)
	accounts := NewAccountStore(kv)
	ctx := context.Background()

	_, err := accounts.Get(ctx, "a@b.co")
	assert.ErrorIs(t, err, ErrAccountNotFound)

	account := &Account{
		Email:        "a@b.co",
		Name:         "Ann",
		PasswordHash: "00ff",
		Salt:         "aa",
		Iterations:   600000,
		CreatedAt:    "2026-01-02T03:04:05Z",
	}
	require.NoError(t, accounts.Put(ctx, account))

	got, err := accounts.Get(ctx, "a@b.co")
	require.NoError(t, err)
	assert.Equal(t, account, got)
	assert.Nil(t, got.StartDate)

	raw, err := kv.Get(ctx, "user:a@b.co")
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"startDate":null`)
}

func TestAccountStoreReadsRecordWithoutIterations(t *testing.T) {
	kv, _ := newTestStore(t)
	accounts := NewAccountStore(kv)
	ctx := context.Background()

	legacy := `{"email":"old@b.co","name":"Old","passwordHash":"ab","salt":"cd","startDate":"2025-03-01","createdAt":"2025-02-01T00:00:00.000Z"}`
	require.NoError(t, kv.Put(ctx, "user:old@b.co", []byte(legacy), 0))

	got, err := accounts.Get(ctx, "old@b.co")
	require.NoError(t, err)
	assert.Zero(t, got.Iterations)
	require.NotNil(t, got.StartDate)
	assert.Equal(t, "2025-03-01", *got.StartDate)
}

func TestAccountStoreProgressDefaultsEmpty(t *testing.T) {
	kv, _ := newTestStore(t)
	accounts := NewAccountStore(kv)
	ctx := context.Background()

	progress, err := accounts.Progress(ctx, "a@b.co")
	require.NoError(t, err)
	assert.NotNil(t, progress.Days)
	assert.Empty(t, progress.Days)

	progress.Days["3"] = DayEntry{Practices: map[string]bool{"sleep": true}, Score: 1, Date: "2026-01-01T00:00:00Z"}
	require.NoError(t, accounts.PutProgress(ctx, "a@b.co", progress))

	again, err := accounts.Progress(ctx, "a@b.co")
	require.NoError(t, err)
	assert.Equal(t, 1, again.Days["3"].Score)
}

func TestAccountStoreEmailListIsASet(t *testing.T) {
	kv, _ := newTestStore(t)
	accounts := NewAccountStore(kv)
	ctx := context.Background()

	emails, err := accounts.Emails(ctx)
	require.NoError(t, err)
	assert.Empty(t, emails)

	require.NoError(t, accounts.AddEmail(ctx, "a@b.co"))
	require.NoError(t, accounts.AddEmail(ctx, "c@d.co"))
	require.NoError(t, accounts.AddEmail(ctx, "a@b.co"))

	emails, err = accounts.Emails(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a@b.co", "c@d.co"}, emails)
}

func TestAccountStoreCorruptRecord(t *testing.T) {
	kv, _ := newTestStore(t)
	accounts := NewAccountStore(kv)
	ctx := context.Background()

	require.NoError(t, kv.Put(ctx, "user:a@b.co", []byte("{not json"), 0))
	_, err := accounts.Get(ctx, "a@b.co")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrAccountNotFound)
}

func TestPasswordResetStoreLifecycle(t *testing.T) {
	kv, mr := newTestStore(t)
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	resets := NewPasswordResetStore(kv, func() time.Time { return now })
	ctx := context.Background()

	record := &ResetRecord{Email: "a@b.co", ExpiresAt: now.Add(time.Hour)}
	require.NoError(t, resets.Save(ctx, "tok", record, time.Hour))
	assert.Equal(t, time.Hour, mr.TTL("reset:tok"))

	got, err := resets.Get(ctx, "tok")
	require.NoError(t, err)
	assert.Equal(t, "a@b.co", got.Email)

	require.NoError(t, resets.Delete(ctx, "tok"))
	_, err = resets.Get(ctx, "tok")
	assert.ErrorIs(t, err, ErrResetNotFound)
}

func TestPasswordResetStoreEmbeddedExpiryDeletes(t *testing.T) {
	kv, mr := newTestStore(t)
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	resets := NewPasswordResetStore(kv, func() time.Time { return now })
	ctx := context.Background()

	// Store TTL still alive, embedded expiry already past.
	record := &ResetRecord{Email: "a@b.co", ExpiresAt: now.Add(-time.Second)}
	require.NoError(t, resets.Save(ctx, "tok", record, time.Hour))

	_, err := resets.Get(ctx, "tok")
	assert.ErrorIs(t, err, ErrResetExpired)
	assert.False(t, mr.Exists("reset:tok"))
}
