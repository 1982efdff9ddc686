package repository

import (
	"github.com/redis/go-redis/v9"

	"chat_backend/pkg/logger"
)

type Repositories struct {
	User         UserRepository
	Contact      ContactRepository
	Conversation ConversationRepository
	Message      MessageRepository
	Audit        AuditRepository
	RateLimit    RateLimitRepository
}

func NewRepositories(db DB, redis *redis.Client, log logger.Logger) *Repositories {
	repos := &Repositories{
		User:         NewUserRepository(db, log),
		Contact:      NewContactRepository(db, log),
		Conversation: NewConversationRepository(db, log),
		Message:      NewMessageRepository(db, log),
		Audit:        NewAuditRepository(db, log),
		RateLimit:    NewRateLimitRepository(redis, log),
	}

	log.Info("Repositories initialized")

	return repos
}
