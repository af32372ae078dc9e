// Package kv wraps the redis client with the small JSON key-value surface the
// synchronizer needs: namespaced get/set and a prefix sweep for logout.
package kv

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// ErrBackendUnavailable wraps any transport-level storage failure.
var ErrBackendUnavailable = errors.New("kv backend unavailable")

// ErrNotFound reports that a key holds no value.
var ErrNotFound = errors.New("kv key not found")

// Store is a thin JSON codec over a redis client. It carries no key prefix of
// its own; callers own their namespaces.
type Store struct {
	redis redis.UniversalClient
}

func New(redisClient redis.UniversalClient) *Store {
	return &Store{redis: redisClient}
}

// GetJSON reads key and unmarshals it into out. Missing keys return
// [ErrNotFound]; undecodable payloads return the unmarshal error.
func (s *Store) GetJSON(ctx context.Context, key string, out any) error {
	data, err := s.redis.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return ErrNotFound
		}
		return fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}
	return json.Unmarshal(data, out)
}

// SetJSON marshals v and writes it at key with no expiry.
func (s *Store) SetJSON(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	if err := s.redis.Set(ctx, key, data, 0).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}
	return nil
}

// DeletePrefix removes every key under prefix and returns the number of keys
// deleted. Match is by prefix, not exact key, because the identity backend
// rotates its own key names under its namespace.
func (s *Store) DeletePrefix(ctx context.Context, prefix string) (int, error) {
	if prefix == "" {
		return 0, errors.New("kv: empty sweep prefix")
	}

	deleted := 0
	var cursor uint64
	for {
		keys, next, err := s.redis.Scan(ctx, cursor, prefix+"*", 100).Result()
		if err != nil {
			return deleted, fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
		}
		if len(keys) > 0 {
			n, err := s.redis.Del(ctx, keys...).Result()
			deleted += int(n)
			if err != nil {
				return deleted, fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
			}
		}
		cursor = next
		if cursor == 0 {
			return deleted, nil
		}
	}
}
