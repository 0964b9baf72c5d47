package session

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "session:"

// RedisRegistry is a Registry backed by Redis, for deployments where
// sessions must survive restarts or be shared across instances. TTL
// handling is delegated to Redis key expiry.
type RedisRegistry struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisRegistry connects to the Redis instance at url and verifies
// the connection before returning.
func NewRedisRegistry(ctx context.Context, url string, ttl time.Duration) (*RedisRegistry, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	return &RedisRegistry{client: client, ttl: ttl}, nil
}

func (r *RedisRegistry) Create(ctx context.Context, userID int) (string, error) {
	token, err := generateToken()
	if err != nil {
		return "", err
	}

	if err := r.client.Set(ctx, redisKeyPrefix+token, userID, r.ttl).Err(); err != nil {
		return "", err
	}
	return token, nil
}

func (r *RedisRegistry) Resolve(ctx context.Context, token string) (int, error) {
	raw, err := r.client.Get(ctx, redisKeyPrefix+token).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, ErrNoSession
		}
		return 0, err
	}

	userID, err := strconv.Atoi(raw)
	if err != nil {
		return 0, ErrNoSession
	}
	return userID, nil
}

func (r *RedisRegistry) Destroy(ctx context.Context, token string) error {
	return r.client.Del(ctx, redisKeyPrefix+token).Err()
}

// Close releases the underlying Redis connection.
func (r *RedisRegistry) Close() error {
	return r.client.Close()
}
