package handoff

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultRedisPrefix namespaces handoff keys in a shared Redis database.
const DefaultRedisPrefix = "docsmith:handoff:"

// RedisConf locates the Redis server.
type RedisConf struct {
	Addr     string
	Password string
	DB       int
	Prefix   string
}

// RedisStore keeps payloads in Redis. Take uses GETDEL, so a payload is
// consumed exactly once even with several server instances.
type RedisStore struct {
	client redis.Cmdable
	closer func() error
	prefix string
}

// NewRedisStore connects to the server described by conf.
func NewRedisStore(conf RedisConf) *RedisStore {
	c := redis.NewClient(&redis.Options{
		Addr:     conf.Addr,
		Password: conf.Password,
		DB:       conf.DB,
	})
	s := NewRedisStoreFromClient(c, conf.Prefix)
	s.closer = c.Close
	return s
}

// NewRedisStoreFromClient wraps an existing client. An empty prefix uses
// DefaultRedisPrefix.
func NewRedisStoreFromClient(c redis.Cmdable, prefix string) *RedisStore {
	if prefix == "" {
		prefix = DefaultRedisPrefix
	}
	return &RedisStore{client: c, prefix: prefix}
}

func (s *RedisStore) key(k string) string { return s.prefix + k }

// Put stores value under key with ttl.
func (s *RedisStore) Put(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := s.client.Set(ctx, s.key(key), value, ttl).Err(); err != nil {
		return fmt.Errorf("handoff: redis set: %w", err)
	}
	return nil
}

// Take returns and removes the value under key.
func (s *RedisStore) Take(ctx context.Context, key string) ([]byte, error) {
	val, err := s.client.GetDel(ctx, s.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("handoff: redis getdel: %w", err)
	}
	return val, nil
}

// Ping checks the connection.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close closes a client opened by NewRedisStore.
func (s *RedisStore) Close() error {
	if s.closer == nil {
		return nil
	}
	return s.closer()
}
