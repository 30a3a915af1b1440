package cache

import (
	"context"
	"time"

	"ekyc.io/infrastructure/logger"
	"github.com/redis/go-redis/v9"
)

var (
	Client *redis.Client
)

func ConnectRedis(addr string, password string) {
	if addr == "" {
		logger.Warning("redis address missing, verification results will not be cached")
		return
	}
	opt := &redis.Options{
		Addr:     addr,
		Password: password,
		DB:       0,
		PoolSize: 10,
	}
	c := redis.NewClient(opt)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := c.Ping(ctx).Err(); err != nil {
		logger.Warning("redis is unreachable", logger.LoggerOptions{Key: "error", Data: err})
		c.Close()
		return
	}
	Client = c
	logger.Info("connected to redis successfully")
}

func Close() {
	if Client != nil {
		Client.Close()
	}
}
