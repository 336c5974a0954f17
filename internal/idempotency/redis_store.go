package idempotency

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ikkim/agroshop-backend/pkg/logger"
	"github.com/redis/go-redis/v9"
)

const (
	pendingMarker = "__pending__"
	// pendingTTL bounds a reservation whose request died before Complete/Abort.
	pendingTTL = 2 * time.Minute
)

// RedisStore shares reservations across server instances.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func (s *RedisStore) Begin(ctx context.Context, key string) ([]byte, error) {
	reserved, err := s.client.SetNX(ctx, key, pendingMarker, pendingTTL).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to reserve idempotency key: %w", err)
	}
	if reserved {
		return nil, nil
	}

	val, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		// expired between SETNX and GET
		return s.Begin(ctx, key)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read idempotency key: %w", err)
	}
	if string(val) == pendingMarker {
		return nil, ErrInProgress
	}

	logger.Debug("Replaying stored checkout response", map[string]interface{}{
		"key": key,
	})
	return val, nil
}

func (s *RedisStore) Complete(ctx context.Context, key string, response []byte) error {
	if err := s.client.Set(ctx, key, response, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to store idempotent response: %w", err)
	}
	return nil
}

func (s *RedisStore) Abort(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("failed to release idempotency key: %w", err)
	}
	return nil
}
