package selection

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Store persists one ordered id set per key.
type Store interface {
	Get(ctx context.Context, key string) ([]string, error)
	Set(ctx context.Context, key string, ids []string) error
	Clear(ctx context.Context, key string) error
}

// MemoryStore keeps selections in process memory. Selections are lost on
// restart and are not shared between replicas.
type MemoryStore struct {
	mu   sync.RWMutex
	sets map[string][]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sets: make(map[string][]string)}
}

func (s *MemoryStore) Get(_ context.Context, key string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.sets[key]...), nil
}

func (s *MemoryStore) Set(_ context.Context, key string, ids []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sets[key] = append([]string(nil), ids...)
	return nil
}

func (s *MemoryStore) Clear(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sets, key)
	return nil
}

// RedisStore keeps each selection as a Redis list that expires after ttl of
// inactivity.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func (s *RedisStore) Get(ctx context.Context, key string) ([]string, error) {
	ids, err := s.client.LRange(ctx, key, 0, -1).Result()
	if err != nil && err != redis.Nil {
		return nil, fmt.Errorf("read selection %s: %w", key, err)
	}
	return ids, nil
}

func (s *RedisStore) Set(ctx context.Context, key string, ids []string) error {
	values := make([]any, len(ids))
	for i, id := range ids {
		values[i] = id
	}
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, key)
		if len(values) > 0 {
			pipe.RPush(ctx, key, values...)
			if s.ttl > 0 {
				pipe.Expire(ctx, key, s.ttl)
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("write selection %s: %w", key, err)
	}
	return nil
}

func (s *RedisStore) Clear(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("clear selection %s: %w", key, err)
	}
	return nil
}
