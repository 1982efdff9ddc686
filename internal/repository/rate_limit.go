//go:generate go run go.uber.org/mock/mockgen -source=rate_limit.go -destination=mocks/mock_rate_limit.go -package=mocks

package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"chat_backend/pkg/logger"
)

type RateLimitRepository interface {
	// Increment увеличивает счетчик окна и возвращает новое значение и остаток окна
	Increment(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error)
}

type rateLimitRepository struct {
	redis *redis.Client
	log   logger.Logger
}

func NewRateLimitRepository(redis *redis.Client, log logger.Logger) RateLimitRepository {
	return &rateLimitRepository{redis: redis, log: log}
}

func (r *rateLimitRepository) Increment(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	pipe := r.redis.TxPipeline()
	incr := pipe.Incr(ctx, key)
	// NX: окно начинается с первого запроса и не продлевается последующими
	pipe.ExpireNX(ctx, key, window)
	ttl := pipe.PTTL(ctx, key)

	if _, err := pipe.Exec(ctx); err != nil {
		r.log.Error("Failed to increment rate limit", "error", err, "key", key)
		return 0, 0, fmt.Errorf("increment rate limit: %w", err)
	}

	remaining := ttl.Val()
	if remaining < 0 {
		remaining = window
	}
	return incr.Val(), remaining, nil
}
