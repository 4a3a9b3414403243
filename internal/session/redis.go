package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ashford-hq/hr-assistant/internal/domain"
)

const (
	draftKeyPrefix = "draft:"
	defaultTTL     = 24 * time.Hour
)

// RedisStore implements Store on Redis so drafts survive a process
// restart. Drafts are JSON values with a TTL that is refreshed on every
// read and write.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore creates a Redis-backed draft store.
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &RedisStore{
		client: client,
		ttl:    ttl,
	}
}

func (s *RedisStore) key(userID string) string {
	return draftKeyPrefix + userID
}

// Get retrieves the active draft for a user, or nil if none.
func (s *RedisStore) Get(ctx context.Context, userID string) (*domain.AddressDraft, error) {
	val, err := s.client.Get(ctx, s.key(userID)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get draft: %w", err)
	}

	var draft domain.AddressDraft
	if err := json.Unmarshal([]byte(val), &draft); err != nil {
		return nil, fmt.Errorf("decode draft: %w", err)
	}

	// Refresh TTL on read; a failed refresh is not worth failing the turn.
	_ = s.client.Expire(ctx, s.key(userID), s.ttl).Err()

	return &draft, nil
}

// Put creates or replaces the active draft for a user.
func (s *RedisStore) Put(ctx context.Context, userID string, draft *domain.AddressDraft) error {
	val, err := json.Marshal(draft)
	if err != nil {
		return fmt.Errorf("encode draft: %w", err)
	}
	if err := s.client.Set(ctx, s.key(userID), val, s.ttl).Err(); err != nil {
		return fmt.Errorf("put draft: %w", err)
	}
	return nil
}

// Delete removes the active draft for a user.
func (s *RedisStore) Delete(ctx context.Context, userID string) error {
	if err := s.client.Del(ctx, s.key(userID)).Err(); err != nil {
		return fmt.Errorf("delete draft: %w", err)
	}
	return nil
}

// Close closes the underlying Redis client.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
