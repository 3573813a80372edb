package queue

import (
	"context"
	"fmt"

	"dsa_arena/internal/platform/config"
	"dsa_arena/internal/platform/logger"

	"github.com/redis/go-redis/v9"
)

var RDB *redis.Client

func ConnectRedis(ctx context.Context, log *logger.Logger) error {
	RDB = redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisDB,
	})

	if _, err := RDB.Ping(ctx).Result(); err != nil {
		return fmt.Errorf("could not connect to Redis: %w", err)
	}
	log.Info("connected to Redis", "addr", config.AppConfig.RedisAddr)
	return nil
}

func CloseRedis(log *logger.Logger) {
	if RDB != nil {
		if err := RDB.Close(); err != nil {
			log.Warn("redis close failed", "error", err)
			return
		}
		log.Info("redis connection closed")
	}
}
