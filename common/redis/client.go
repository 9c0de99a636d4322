package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"tilp-connect/common/config"

	"github.com/go-redis/redis/v8"
)

// Client is the go-redis client type.
type Client = redis.Client

// ErrUnavailable is returned when Redis does not answer the startup ping.
var ErrUnavailable = errors.New("redis unavailable")

const pingTimeout = 3 * time.Second

// NewRedisClient builds the client and pings it once. The client is closed
// again when the ping fails.
func NewRedisClient(cfg *config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping %s: %w: %w", cfg.Addr, ErrUnavailable, err)
	}
	return client, nil
}

// Close closes client if it is non-nil.
func Close(client *redis.Client) error {
	if client != nil {
		return client.Close()
	}
	return nil
}
