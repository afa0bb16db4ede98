package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps snapshots in Redis so that several shells (or machines)
// of the same user see one navigation state. No merge logic: last write wins.
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore connects and pings the server.
func NewRedisStore(ctx context.Context, addr string, db int, prefix string) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   db,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", addr, err)
	}

	return &RedisStore{client: client, prefix: prefix}, nil
}

func (s *RedisStore) Load(ctx context.Context, namespace string) ([]byte, error) {
	if err := ValidateNamespace(namespace); err != nil {
		return nil, err
	}

	data, err := s.client.Get(ctx, s.key(namespace)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", namespace, err)
	}
	return data, nil
}

func (s *RedisStore) Save(ctx context.Context, namespace string, data []byte) error {
	if err := ValidateNamespace(namespace); err != nil {
		return err
	}
	if err := s.client.Set(ctx, s.key(namespace), data, 0).Err(); err != nil {
		return fmt.Errorf("failed to save %s: %w", namespace, err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, namespace string) error {
	if err := s.client.Del(ctx, s.key(namespace)).Err(); err != nil {
		return fmt.Errorf("failed to delete %s: %w", namespace, err)
	}
	return nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}

func (s *RedisStore) key(namespace string) string {
	return s.prefix + namespace
}
