// Package dedup tracks harvested job keys across runs in Redis, so a
// scheduled re-run can skip postings it already persisted. In-run dedup is
// handled by the crawl controller's own state and never depends on this.
package dedup

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// SeenStore marks and checks job keys with a TTL.
type SeenStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewSeenStore creates a store under the given key prefix.
func NewSeenStore(client *redis.Client, prefix string, ttl time.Duration) *SeenStore {
	if prefix == "" {
		prefix = "jobs:seen"
	}
	if ttl <= 0 {
		ttl = 30 * 24 * time.Hour
	}
	return &SeenStore{client: client, prefix: prefix, ttl: ttl}
}

// Seen reports whether the key was marked in a previous run.
func (s *SeenStore) Seen(ctx context.Context, key string) (bool, error) {
	exists, err := s.client.Exists(ctx, s.makeKey(key)).Result()
	if err != nil {
		return false, fmt.Errorf("redis exists: %w", err)
	}
	return exists > 0, nil
}

// MarkSeen records the key with the store's TTL.
func (s *SeenStore) MarkSeen(ctx context.Context, key string) error {
	if err := s.client.Set(ctx, s.makeKey(key), time.Now().Unix(), s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

func (s *SeenStore) makeKey(key string) string {
	return fmt.Sprintf("%s:%s", s.prefix, key)
}
