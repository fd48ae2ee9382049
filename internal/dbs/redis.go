package dbs

import (
	"context"
	"fmt"

	config "codearena/configs"

	"github.com/redis/go-redis/v9"
)

// InitRedis connects to Redis and verifies the connection. The client is
// injected into the cache, handlers and worker pool at startup.
func InitRedis(ctx context.Context, cfg *config.Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr: cfg.RedisAddr,
		DB:   cfg.RedisDB,
	})

	if _, err := client.Ping(ctx).Result(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return client, nil
}
