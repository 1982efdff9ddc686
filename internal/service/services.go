package service

import (
	"chat_backend/internal/config"
	"chat_backend/internal/repository"
	"chat_backend/pkg/logger"
)

type Services struct {
	Auth         AuthService
	Conversation ConversationService
	Message      MessageService
	Contact      ContactService
	RateLimit    RateLimitService
	Audit        AuditService
}

func NewServices(repos *repository.Repositories, cfg *config.Config, log logger.Logger) *Services {
	audit := NewAuditService(repos.Audit, log)

	services := &Services{
		Auth:         NewAuthService(repos.User, cfg.JWT, log),
		Conversation: NewConversationService(repos.Conversation, repos.User, audit, log),
		Message:      NewMessageService(repos.Message, audit, cfg.Messages, log),
		Contact:      NewContactService(repos.Contact, repos.User, audit, log),
		RateLimit:    NewRateLimitService(repos.RateLimit, cfg.RateLimit, log),
		Audit:        audit,
	}

	log.Info("Services initialized")

	return services
}
