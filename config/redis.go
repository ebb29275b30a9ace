package config

import (
	"PlayFinder/services/redis"
	"context"
	"time"

	"github.com/sirupsen/logrus"
)

// Connect to Redis
func Connect_redis(s Settings) (*redis.RedisClient, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	redisClient, err := redis.InitRedis(ctx, s.RedisURL, 0)
	if err != nil {
		logrus.WithError(err).Error("Error connecting to Redis")
		return nil, err
	}
	logrus.Info("Redis connection established")
	return redisClient, nil
}
