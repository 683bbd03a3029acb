package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultRedisPrefix 键前缀。
const DefaultRedisPrefix = "stockboard:"

// RedisStore 以 JSON 信封保存值与回源时间，过期交给 Redis。
type RedisStore struct {
	Client redis.UniversalClient
	Prefix string
}

type envelope struct {
	FetchedAt time.Time       `json:"fetched_at"`
	Value     json.RawMessage `json:"value"`
}

func NewRedisStore(client redis.UniversalClient) *RedisStore {
	return &RedisStore{Client: client, Prefix: DefaultRedisPrefix}
}

func (s *RedisStore) Get(ctx context.Context, key string) (Entry, bool, error) {
	b, err := s.Client.Get(ctx, s.Prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, fmt.Errorf("redis get: %w", err)
	}
	var env envelope
	if err := json.Unmarshal(b, &env); err != nil {
		return Entry{}, false, fmt.Errorf("redis decode: %w", err)
	}
	return Entry{Value: env.Value, FetchedAt: env.FetchedAt}, true, nil
}

func (s *RedisStore) Set(ctx context.Context, key string, e Entry, ttl time.Duration) error {
	b, err := json.Marshal(envelope{FetchedAt: e.FetchedAt, Value: e.Value})
	if err != nil {
		return fmt.Errorf("redis encode: %w", err)
	}
	if err := s.Client.Set(ctx, s.Prefix+key, b, ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}
