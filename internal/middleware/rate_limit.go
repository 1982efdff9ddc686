package middleware

import (
	"math"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"chat_backend/internal/domain"
	"chat_backend/internal/service"
	"chat_backend/pkg/errors"
	"chat_backend/pkg/logger"
)

type RateLimitMiddleware struct {
	rateLimitService service.RateLimitService
	log              logger.Logger
}

func NewRateLimitMiddleware(rateLimitService service.RateLimitService, log logger.Logger) *RateLimitMiddleware {
	return &RateLimitMiddleware{
		rateLimitService: rateLimitService,
		log:              log,
	}
}

// Limit - фиксированное окно в Redis: по пользователю после аутентификации, иначе по IP.
// Недоступность Redis не блокирует запросы.
func (m *RateLimitMiddleware) Limit() gin.HandlerFunc {
	return func(c *gin.Context) {
		scope, subject := domain.RateLimitScopeIP, c.ClientIP()
		if userID, ok := UserID(c); ok {
			scope, subject = domain.RateLimitScopeUser, strconv.FormatInt(userID, 10)
		}

		decision, err := m.rateLimitService.Allow(c.Request.Context(), scope, subject)
		if err != nil {
			m.log.Warn("Rate limit check failed, allowing request", "error", err, "scope", scope)
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(decision.Limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(decision.Remaining))

		if !decision.Allowed {
			c.Header("Retry-After", strconv.Itoa(int(math.Ceil(decision.RetryAfter.Seconds()))))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, errors.Failure("Rate limit exceeded"))
			return
		}

		c.Next()
	}
}
