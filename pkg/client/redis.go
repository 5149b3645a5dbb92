package client

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/azmiruddin-143/Local-Guide-Server/pkg/logger"
)

type RedisClient struct {
	Client *redis.Client
}

// SetRedis connects eagerly so a misconfigured cache fails at startup, not
// on the first dashboard request.
func (c *Client) SetRedis(log *logger.Logger, addr, password string, db int) {
	rc := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rc.Ping(ctx).Err(); err != nil {
		log.Fatal("Failed to ping Redis", "error", err, "addr", addr)
	}

	log.Info("Connected to Redis", "addr", addr)
	c.Redis = &RedisClient{Client: rc}
}

func (r *RedisClient) Close() error {
	return r.Client.Close()
}
