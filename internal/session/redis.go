package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/overtalkerr/overtalkerr/internal/config"
)

const redisKeyPrefix = "overtalkerr:session:"

// RedisStore keeps session blobs in Redis with native expiry, for
// deployments running more than one instance behind a load balancer.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
	logger zerolog.Logger
}

// NewRedisStore connects to Redis and verifies the connection.
func NewRedisStore(ctx context.Context, cfg config.SessionConfig, logger zerolog.Logger) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &RedisStore{
		client: client,
		ttl:    time.Duration(cfg.TTLHours) * time.Hour,
		logger: logger.With().Str("component", "session").Logger(),
	}, nil
}

func redisKey(userID, conversationID string) string {
	return redisKeyPrefix + userID + ":" + conversationID
}

func (s *RedisStore) Load(ctx context.Context, userID, conversationID string) (*State, error) {
	blob, err := s.client.Get(ctx, redisKey(userID, conversationID)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var state State
	if err := json.Unmarshal([]byte(blob), &state); err != nil {
		s.logger.Warn().Err(err).Str("userId", userID).Msg("discarding malformed session state")
		return nil, nil
	}
	return &state, nil
}

func (s *RedisStore) Save(ctx context.Context, userID, conversationID string, state *State) error {
	blob, err := json.Marshal(state)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, redisKey(userID, conversationID), blob, s.ttl).Err()
}

// DeleteExpired is a no-op: Redis expires keys natively via the TTL set
// on every Save.
func (s *RedisStore) DeleteExpired(ctx context.Context, olderThan time.Duration) (int64, error) {
	return 0, nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
