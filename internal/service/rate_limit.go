//go:generate go run go.uber.org/mock/mockgen -source=rate_limit.go -destination=mocks/mock_rate_limit.go -package=mocks

package service

import (
	"context"
	"time"

	"chat_backend/internal/config"
	"chat_backend/internal/domain"
	"chat_backend/internal/repository"
	"chat_backend/pkg/logger"
)

// RateLimitDecision - результат проверки лимита фиксированного окна
type RateLimitDecision struct {
	Allowed    bool
	Limit      int
	Remaining  int
	RetryAfter time.Duration
}

type RateLimitService interface {
	Allow(ctx context.Context, scope, subject string) (*RateLimitDecision, error)
}

type rateLimitService struct {
	rateLimitRepo repository.RateLimitRepository
	cfg           config.RateLimitConfig
	log           logger.Logger
}

func NewRateLimitService(rateLimitRepo repository.RateLimitRepository, cfg config.RateLimitConfig, log logger.Logger) RateLimitService {
	return &rateLimitService{
		rateLimitRepo: rateLimitRepo,
		cfg:           cfg,
		log:           log,
	}
}

func (s *rateLimitService) Allow(ctx context.Context, scope, subject string) (*RateLimitDecision, error) {
	count, ttl, err := s.rateLimitRepo.Increment(ctx, domain.RateLimitKey(scope, subject), s.cfg.Window)
	if err != nil {
		return nil, err
	}

	decision := &RateLimitDecision{
		Allowed: count <= int64(s.cfg.Requests),
		Limit:   s.cfg.Requests,
	}
	if decision.Allowed {
		decision.Remaining = s.cfg.Requests - int(count)
	} else {
		decision.RetryAfter = ttl
	}

	return decision, nil
}
