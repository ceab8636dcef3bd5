package kvstore

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const opTimeout = 3 * time.Second

// RedisKV implements KV over a hosted Redis instance.
type RedisKV struct {
	client *redis.Client
}

// NewRedisKV builds a Redis-backed KV adapter.
func NewRedisKV(addr, password string) *RedisKV {
	return &RedisKV{
		client: redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: password,
		}),
	}
}

// Get returns the value at key. Absent keys yield ok=false with a nil error.
func (s *RedisKV) Get(key string) (string, bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()
	val, err := s.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return val, true, nil
}

// Set writes value at key, replacing any previous value.
func (s *RedisKV) Set(key, value string) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()
	return s.client.Set(ctx, key, value, 0).Err()
}

// Delete removes key. Deleting an absent key is a no-op.
func (s *RedisKV) Delete(key string) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()
	if err := s.client.Del(ctx, key).Err(); err != nil && err != redis.Nil {
		return err
	}
	return nil
}

// AddToSet adds member to the set at key.
func (s *RedisKV) AddToSet(key, member string) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()
	return s.client.SAdd(ctx, key, member).Err()
}

// RemoveFromSet removes member from the set at key.
func (s *RedisKV) RemoveFromSet(key, member string) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()
	if err := s.client.SRem(ctx, key, member).Err(); err != nil && err != redis.Nil {
		return err
	}
	return nil
}

// SetMembers lists the members of the set at key. An absent set is an empty
// list, not an error.
func (s *RedisKV) SetMembers(key string) ([]string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()
	members, err := s.client.SMembers(ctx, key).Result()
	if err != nil && err != redis.Nil {
		return nil, err
	}
	return members, nil
}
