package database

import (
	"context"
	"go-finance-ledger/internal/config"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// ConnectRedis returns nil when redis is unreachable; callers treat a nil
// client as "no cache".
func ConnectRedis(cfg *config.RedisConfig, log *logrus.Logger) *redis.Client {
	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Host + ":" + cfg.Port,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     10,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := rdb.Ping(ctx).Result(); err != nil {
		log.Errorf("Failed to connect to Redis: %v", err)
		_ = rdb.Close()
		return nil
	}

	log.Info("Successfully connected to Redis")
	return rdb
}
