// Package cache holds the Redis-backed set of feed links the ingestion
// worker has already handled.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"amazetimes/internal/usecase/ingest"
)

// DefaultPrefix namespaces seen-set keys.
const DefaultPrefix = "amazetimes:seen:"

// NewRedisClient parses a redis:// URL and checks the connection.
func NewRedisClient(ctx context.Context, rawURL string) (*redis.Client, error) {
	opt, err := redis.ParseURL(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	return client, nil
}

// SeenSet implements ingest.SeenSet. Entries expire after ttl so links
// dropped from feeds do not accumulate.
type SeenSet struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
}

var _ ingest.SeenSet = (*SeenSet)(nil)

// NewSeenSet uses DefaultPrefix when prefix is empty. A ttl of zero keeps
// entries forever.
func NewSeenSet(client redis.UniversalClient, prefix string, ttl time.Duration) *SeenSet {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &SeenSet{client: client, prefix: prefix, ttl: ttl}
}

func (s *SeenSet) key(url string) string {
	sum := sha256.Sum256([]byte(url))
	return s.prefix + hex.EncodeToString(sum[:])
}

func (s *SeenSet) IsProcessed(ctx context.Context, url string) (bool, error) {
	n, err := s.client.Exists(ctx, s.key(url)).Result()
	if err != nil {
		return false, fmt.Errorf("redis exists: %w", err)
	}
	return n > 0, nil
}

func (s *SeenSet) MarkProcessed(ctx context.Context, url string) error {
	if err := s.client.Set(ctx, s.key(url), "1", s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// Clear removes every entry under the prefix and returns how many were removed.
func (s *SeenSet) Clear(ctx context.Context) (int, error) {
	iter := s.client.Scan(ctx, 0, s.prefix+"*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return 0, fmt.Errorf("redis scan: %w", err)
	}
	if len(keys) == 0 {
		return 0, nil
	}
	if err := s.client.Del(ctx, keys...).Err(); err != nil {
		return 0, fmt.Errorf("redis del: %w", err)
	}
	return len(keys), nil
}
