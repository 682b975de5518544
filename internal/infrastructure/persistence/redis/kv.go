// Package redis provides a Redis-backed KVStore for deployments where
// local files are not durable (containers, multiple devices sharing one
// history). Values are whole serialized collections, same as every
// other backend.
package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/daidai-0318/nanimeshi-web/internal/ports/outbound"
)

// Config holds the Redis connection settings.
type Config struct {
	Host     string
	Port     int
	Password string
	Database int
}

// KVStore implements outbound.KVStore on a Redis instance.
type KVStore struct {
	client *redis.Client
	prefix string
	logger *zap.Logger
}

// NewKVStore connects to Redis and verifies the connection.
func NewKVStore(ctx context.Context, cfg Config, logger *zap.Logger) (*KVStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.Database,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &KVStore{
		client: client,
		prefix: "nanimeshi:",
		logger: logger.Named("redis-kv"),
	}, nil
}

var _ outbound.KVStore = (*KVStore)(nil)

// Get retrieves a stored value.
func (s *KVStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, err := s.client.Get(ctx, s.prefix+key).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		s.logger.Error("redis get failed", zap.String("key", key), zap.Error(err))
		return nil, false, fmt.Errorf("failed to read %s: %w", key, err)
	}
	return data, true, nil
}

// Set stores a value with no expiry; collections live until deleted.
func (s *KVStore) Set(ctx context.Context, key string, value []byte) error {
	if err := s.client.Set(ctx, s.prefix+key, value, 0).Err(); err != nil {
		s.logger.Error("redis set failed", zap.String("key", key), zap.Error(err))
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}

// Delete removes a key.
func (s *KVStore) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.prefix+key).Err(); err != nil {
		s.logger.Error("redis delete failed", zap.String("key", key), zap.Error(err))
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	return nil
}

// Close releases the underlying connection pool.
func (s *KVStore) Close() error {
	return s.client.Close()
}
