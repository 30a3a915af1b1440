package cache

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	redisClient "ekyc.io/infrastructure/database/connection/cache"
	"ekyc.io/infrastructure/logger"
)

type RedisRepository struct {
	Client *redis.Client
}

// Cache is the shared repository over the connected client.
var Cache = &RedisRepository{}

// preRequest picks up the shared client once it is connected. It reports
// false when no redis is configured.
func (redisRepo *RedisRepository) preRequest() bool {
	if redisRepo.Client == nil {
		if redisClient.Client == nil {
			return false
		}
		redisRepo.Client = redisClient.Client
		logger.Info("redis repository initialisation complete")
	}
	return true
}

func (redisRepo *RedisRepository) Available() bool {
	return redisRepo.preRequest()
}

func (redisRepo *RedisRepository) CreateEntry(ctx context.Context, key string, payload interface{}, ttl time.Duration) bool {
	if !redisRepo.preRequest() {
		return false
	}
	_, err := redisRepo.Client.Set(ctx, key, payload, ttl).Result()
	if err != nil {
		logger.Error("redis error occured while running CreateEntry", logger.LoggerOptions{
			Key:  "error",
			Data: err,
		}, logger.LoggerOptions{
			Key:  "key",
			Data: key,
		})
		return false
	}
	return true
}

func (redisRepo *RedisRepository) FindOneByteArray(ctx context.Context, key string) *[]byte {
	if !redisRepo.preRequest() {
		return nil
	}
	result, err := redisRepo.Client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil
		}
		logger.Error("redis error occured while running FindOneByteArray", logger.LoggerOptions{
			Key:  "error",
			Data: err,
		}, logger.LoggerOptions{
			Key:  "key",
			Data: key,
		})
		return nil
	}
	return &result
}

func (redisRepo *RedisRepository) DeleteOne(ctx context.Context, key string) bool {
	if !redisRepo.preRequest() {
		return false
	}
	result, err := redisRepo.Client.Del(ctx, key).Result()
	if err != nil {
		logger.Error("redis error occured while running DeleteOne", logger.LoggerOptions{
			Key:  "error",
			Data: err,
		}, logger.LoggerOptions{
			Key:  "key",
			Data: key,
		})
		return false
	}
	return result == 1
}

// IncrementField adds amount to a counter and returns the new value, 0 on error.
func (redisRepo *RedisRepository) IncrementField(ctx context.Context, key string, amount int64) int64 {
	if !redisRepo.preRequest() {
		return 0
	}
	result, err := redisRepo.Client.IncrBy(ctx, key, amount).Result()
	if err != nil {
		logger.Error("redis error occured while running IncrementField", logger.LoggerOptions{
			Key:  "error",
			Data: err,
		}, logger.LoggerOptions{
			Key:  "key",
			Data: key,
		})
		return 0
	}
	return result
}

// FindCounters reads several counters at once; missing keys read as 0.
func (redisRepo *RedisRepository) FindCounters(ctx context.Context, keys ...string) map[string]int64 {
	out := map[string]int64{}
	if len(keys) == 0 || !redisRepo.preRequest() {
		return out
	}
	values, err := redisRepo.Client.MGet(ctx, keys...).Result()
	if err != nil {
		logger.Error("redis error occured while running FindCounters", logger.LoggerOptions{
			Key:  "error",
			Data: err,
		})
		return out
	}
	for i, v := range values {
		out[keys[i]] = 0
		if s, ok := v.(string); ok {
			if n, err := strconv.ParseInt(s, 10, 64); err == nil {
				out[keys[i]] = n
			}
		}
	}
	return out
}
