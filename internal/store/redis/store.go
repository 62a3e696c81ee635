// Package redis implements store.ObjectStore on top of Redis strings.
package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/allocsoc/awesome-crawler/internal/store"
)

// Store keeps objects as Redis strings under KeyPrefixObject.
type Store struct {
	client *redis.Client
	ttl    time.Duration // 0 keeps objects forever
}

// NewStore creates a new Redis object store
func NewStore(client *redis.Client, ttl time.Duration) *Store {
	return &Store{
		client: client,
		ttl:    ttl,
	}
}

// PutObject stores body under key
func (s *Store) PutObject(ctx context.Context, key string, body []byte) error {
	if err := s.client.Set(ctx, ObjectKey(key), body, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save object %s: %w", key, err)
	}
	return nil
}

// GetObject retrieves the object stored under key
func (s *Store) GetObject(ctx context.Context, key string) ([]byte, error) {
	data, err := s.client.Get(ctx, ObjectKey(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get object %s: %w", key, err)
	}
	return data, nil
}

// DeleteObject removes the object stored under key
func (s *Store) DeleteObject(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, ObjectKey(key)).Err(); err != nil {
		return fmt.Errorf("failed to delete object %s: %w", key, err)
	}
	return nil
}

// Keys lists the object keys currently stored
func (s *Store) Keys(ctx context.Context) ([]string, error) {
	var keys []string
	iter := s.client.Scan(ctx, 0, KeyPrefixObject+"*", 0).Iterator()
	for iter.Next(ctx) {
		key, err := ExtractObjectKey(iter.Val())
		if err != nil {
			continue
		}
		keys = append(keys, key)
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan objects: %w", err)
	}
	return keys, nil
}
