package redis

import (
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// RedisClient handles Redis operations
type RedisClient struct {
	Client *redis.Client
}

// NewRedisClient creates a new Redis client instance. Anything other than a
// bare local address is parsed as a redis:// URL.
func NewRedisClient(Addr string, DB int) (*RedisClient, error) {
	var client *redis.Client
	if Addr != "localhost:6379" {
		logrus.Info("Connecting to remote Redis...")
		opt, err := redis.ParseURL(Addr)
		if err != nil {
			return nil, err
		}
		client = redis.NewClient(opt)
	} else {
		client = redis.NewClient(&redis.Options{
			Addr: Addr,
			DB:   DB,
		})
	}
	return &RedisClient{Client: client}, nil
}

// FromClient wraps an already configured client
func FromClient(client *redis.Client) *RedisClient {
	return &RedisClient{Client: client}
}
