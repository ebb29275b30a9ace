package redis

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
)

// InitRedis initializes the Redis connection and checks it answers
func InitRedis(ctx context.Context, Addr string, DB int) (*RedisClient, error) {
	rc, err := NewRedisClient(Addr, DB)
	if err != nil {
		return nil, fmt.Errorf("error parsing Redis URL: %w", err)
	}

	// Test connection
	if err := rc.Client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logrus.Info("Successfully connected to Redis")
	return rc, nil
}

// CloseRedis gracefully closes the Redis connection
func CloseRedis(rc *RedisClient) error {
	if err := rc.Client.Close(); err != nil {
		return fmt.Errorf("error closing Redis connection: %w", err)
	}
	return nil
}
