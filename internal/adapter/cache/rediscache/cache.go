// Package rediscache implements the domain cache port on Redis.
//
// Entries are JSON-encoded and keyed by (namespace, subject). Failures of
// the backing store are returned to callers, who treat them as misses and
// log them; a broken cache never fails the underlying operation.
package rediscache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "cache"

// Store is a namespaced TTL cache over a Redis client. Safe for
// concurrent use; Redis gives per-key atomic get/set/delete.
type Store struct {
	rdb *redis.Client
}

// New constructs a Store on the given client.
func New(rdb *redis.Client) *Store { return &Store{rdb: rdb} }

// NewClient builds the go-redis client the Store expects.
func NewClient(addr, password string, db int) *redis.Client {
	return redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})
}

func cacheKey(namespace, key string) string {
	return fmt.Sprintf("%s:%s:%s", keyPrefix, namespace, key)
}

// Get loads and unmarshals the entry into dest, reporting whether a fresh
// entry was found. A corrupt entry counts as a miss and is dropped.
func (s *Store) Get(ctx context.Context, namespace, key string, dest any) (bool, error) {
	raw, err := s.rdb.Get(ctx, cacheKey(namespace, key)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return false, nil
		}
		return false, fmt.Errorf("op=cache.get: %w", err)
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		slog.Warn("corrupt cache entry dropped",
			slog.String("namespace", namespace), slog.String("key", key), slog.Any("error", err))
		_ = s.rdb.Del(ctx, cacheKey(namespace, key)).Err()
		return false, nil
	}
	return true, nil
}

// Set stores the JSON-encoded value with the given TTL.
func (s *Store) Set(ctx context.Context, namespace, key string, value any, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("op=cache.set: %w", err)
	}
	if err := s.rdb.Set(ctx, cacheKey(namespace, key), raw, ttl).Err(); err != nil {
		return fmt.Errorf("op=cache.set: %w", err)
	}
	return nil
}

// Invalidate drops a single entry. Deleting a missing key is a no-op.
func (s *Store) Invalidate(ctx context.Context, namespace, key string) error {
	if err := s.rdb.Del(ctx, cacheKey(namespace, key)).Err(); err != nil {
		return fmt.Errorf("op=cache.invalidate: %w", err)
	}
	return nil
}

// InvalidateAll drops every entry in the namespace via SCAN+DEL so the
// server is never blocked by a KEYS call.
func (s *Store) InvalidateAll(ctx context.Context, namespace string) error {
	pattern := fmt.Sprintf("%s:%s:*", keyPrefix, namespace)
	iter := s.rdb.Scan(ctx, 0, pattern, 100).Iterator()
	keys := make([]string, 0, 100)
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
		if len(keys) == 100 {
			if err := s.rdb.Del(ctx, keys...).Err(); err != nil {
				return fmt.Errorf("op=cache.invalidate_all: %w", err)
			}
			keys = keys[:0]
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("op=cache.invalidate_all: %w", err)
	}
	if len(keys) > 0 {
		if err := s.rdb.Del(ctx, keys...).Err(); err != nil {
			return fmt.Errorf("op=cache.invalidate_all: %w", err)
		}
	}
	return nil
}
