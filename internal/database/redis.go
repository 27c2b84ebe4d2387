package database

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// ConnectRedis returns a client for addr, or nil when addr is empty or the
// server does not answer. Callers treat nil as "feature disabled".
func ConnectRedis(ctx context.Context, addr string, log *zap.Logger) *redis.Client {
	if addr == "" {
		log.Info("redis not configured; login rate limiting disabled")
		return nil
	}
	client := redis.NewClient(&redis.Options{Addr: addr})

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		log.Warn("redis unreachable; login rate limiting disabled", zap.String("addr", addr), zap.Error(err))
		_ = client.Close()
		return nil
	}
	log.Info("redis connected", zap.String("addr", addr))
	return client
}
