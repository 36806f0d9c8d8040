package redis

import (
	"context"
	"os"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

var (
	Client *redis.Client
	Ctx    = context.Background()
)

// InitRedis connects to Redis when REDIS_ADDR is set. Redis is optional:
// without it the storefront cache is skipped and the token blacklist falls
// back to the in-memory store.
func InitRedis() {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		logrus.Info("REDIS_ADDR not set, running without redis")
		return
	}

	client := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   0,
	})

	if _, err := client.Ping(Ctx).Result(); err != nil {
		logrus.WithError(err).Warn("failed to connect to redis, running without it")
		return
	}

	Client = client
	logrus.Info("connected to redis")
}

// Available reports whether a live redis connection exists.
func Available() bool {
	return Client != nil
}
