package stores

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/samber/oops"
)

// ErrNotFound is returned by Store.Get when the key is absent or expired.
var ErrNotFound = errors.New("key not found")

// Store is the opaque key-value contract every q63 record is persisted
// through. Operations are individually atomic; there is no compare-and-set.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	// Put writes value under key. A zero ttl stores the value without expiry.
	Put(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// Delete is idempotent.
	Delete(ctx context.Context, key string) error
}

// RedisStore implements Store on a go-redis client. An optional prefix is
// prepended to every key so several deployments can share one database.
type RedisStore struct {
	redis  redis.UniversalClient
	prefix string
}

func NewRedisStore(redisClient redis.UniversalClient, prefix string) *RedisStore {
	return &RedisStore{
		redis:  redisClient,
		prefix: prefix,
	}
}

func (s *RedisStore) key(key string) string {
	if s.prefix == "" {
		return key
	}
	return s.prefix + ":" + key
}

func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := s.redis.Get(ctx, s.key(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, unavailable("get", key, err)
	}
	return data, nil
}

func (s *RedisStore) Put(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl < 0 {
		ttl = 0
	}
	if err := s.redis.Set(ctx, s.key(key), value, ttl).Err(); err != nil {
		return unavailable("put", key, err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, key string) error {
	if err := s.redis.Del(ctx, s.key(key)).Err(); err != nil {
		return unavailable("delete", key, err)
	}
	return nil
}

// Ping checks connectivity to the backing Redis server.
func (s *RedisStore) Ping(ctx context.Context) error {
	if err := s.redis.Ping(ctx).Err(); err != nil {
		return oops.Code("STORE_UNAVAILABLE").With("operation", "ping").Wrap(err)
	}
	return nil
}

// unavailable wraps a backend failure. Only the key namespace is attached:
// session and reset keys embed bearer secrets.
func unavailable(op, key string, err error) error {
	return oops.Code("STORE_UNAVAILABLE").
		With("operation", op).
		With("namespace", namespace(key)).
		Wrap(err)
}

func namespace(key string) string {
	if i := strings.IndexByte(key, ':'); i >= 0 {
		return key[:i]
	}
	return key
}
