package client

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// OTPStore keeps short-lived verification codes and password-reset tokens.
// Entries expire on their own; Get on a missing/expired key returns
// ("", false, nil).
type OTPStore interface {
	Put(ctx context.Context, kind, key, value string, ttl time.Duration) error
	Get(ctx context.Context, kind, key string) (string, bool, error)
	Delete(ctx context.Context, kind, key string) error
}

type redisOTPStoreImpl struct {
	client *redis.Client
}

func NewRedisOTPStore(rdb *redis.Client) OTPStore {
	return &redisOTPStoreImpl{client: rdb}
}

func (s *redisOTPStoreImpl) key(kind, key string) string {
	return fmt.Sprintf("auth:%s:%s", kind, key)
}

func (s *redisOTPStoreImpl) Put(ctx context.Context, kind, key, value string, ttl time.Duration) error {
	return s.client.Set(ctx, s.key(kind, key), value, ttl).Err()
}

func (s *redisOTPStoreImpl) Get(ctx context.Context, kind, key string) (string, bool, error) {
	val, err := s.client.Get(ctx, s.key(kind, key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return val, true, nil
}

func (s *redisOTPStoreImpl) Delete(ctx context.Context, kind, key string) error {
	return s.client.Del(ctx, s.key(kind, key)).Err()
}
