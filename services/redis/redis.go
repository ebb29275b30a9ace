package redis

import (
	"context"
	"fmt"
)

// CleanupKeys removes the specified keys from Redis
func (rc *RedisClient) CleanupKeys(ctx context.Context, keys ...string) error {
	for _, key := range keys {
		if err := rc.Client.Del(ctx, key).Err(); err != nil {
			return fmt.Errorf("failed to cleanup Redis key %s: %w", key, err)
		}
	}
	return nil
}
