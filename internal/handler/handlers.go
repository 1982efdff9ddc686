package handler

import (
	"chat_backend/internal/config"
	"chat_backend/internal/realtime"
	"chat_backend/internal/service"
	"chat_backend/pkg/logger"
)

type Handlers struct {
	Health       *HealthHandler
	Conversation *ConversationHandler
	Message      *MessageHandler
	Contact      *ContactHandler
	WebSocket    *WebSocketHandler
}

func NewHandlers(services *service.Services, relay *realtime.Relay, cfg *config.Config, log logger.Logger, checks ...HealthCheck) *Handlers {
	return &Handlers{
		Health:       NewHealthHandler(checks...),
		Conversation: NewConversationHandler(services.Conversation, log),
		Message:      NewMessageHandler(services.Conversation, services.Message, relay, log),
		Contact:      NewContactHandler(services.Contact, log),
		WebSocket:    NewWebSocketHandler(relay, cfg, log),
	}
}
