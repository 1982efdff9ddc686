package domain

import "fmt"

const (
	RateLimitScopeUser = "user"
	RateLimitScopeIP   = "ip"
)

// RateLimitKey - ключ счетчика в Redis
func RateLimitKey(scope, subject string) string {
	return fmt.Sprintf("ratelimit:%s:%s", scope, subject)
}
