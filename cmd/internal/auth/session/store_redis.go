package session

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "keeper:session:"

// RedisStore implements Store on a single Redis key per profile.
// Keys carry no TTL; validity is decided by the cookies themselves.
type RedisStore struct {
	client *redis.Client
	key    string
}

// NewRedisStore creates a Redis-backed session store for one profile.
func NewRedisStore(client *redis.Client, profile string) *RedisStore {
	profile = strings.TrimSpace(profile)
	if profile == "" {
		profile = DefaultProfile
	}
	return &RedisStore{client: client, key: redisKeyPrefix + profile}
}

// Read loads the session key. A missing key is reported as (nil, nil).
func (s *RedisStore) Read(ctx context.Context) (*Session, error) {
	data, err := s.client.Get(ctx, s.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", s.key, err)
	}
	return decodeSession(data, s.key)
}

// Write replaces the session key.
func (s *RedisStore) Write(ctx context.Context, sess *Session) error {
	data, err := encodeSession(sess)
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, s.key, data, 0).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreWrite, err)
	}
	return nil
}
