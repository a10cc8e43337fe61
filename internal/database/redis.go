package database

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/betcleverde/betclever-landing-hub/internal/config"
)

// ConnectRedis brings up the client backing refresh-token storage and the
// send rate limiter.
func ConnectRedis(cfg config.RedisConfig, log *zap.SugaredLogger) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Errorw("redis ping", "addr", cfg.Addr, "err", err)
		return nil, err
	}

	log.Infow("redis connected", "addr", cfg.Addr)
	return rdb, nil
}
