package service

import (
	"context"
	"time"

	"chat_backend/internal/domain"
	"chat_backend/internal/repository"
	"chat_backend/pkg/logger"
)

type AuditService interface {
	LogEvent(ctx context.Context, actorUserID int64, conversationID *int64, eventType string, payload map[string]interface{}) error
}

type auditService struct {
	auditRepo repository.AuditRepository
	log       logger.Logger
}

func NewAuditService(auditRepo repository.AuditRepository, log logger.Logger) AuditService {
	return &auditService{
		auditRepo: auditRepo,
		log:       log,
	}
}

func (s *auditService) LogEvent(ctx context.Context, actorUserID int64, conversationID *int64, eventType string, payload map[string]interface{}) error {
	if payload == nil {
		payload = make(map[string]interface{})
	}

	auditLog := &domain.AuditLog{
		EventTime:      time.Now(),
		ActorUserID:    actorUserID,
		ConversationID: conversationID,
		EventType:      eventType,
		Payload:        payload,
	}

	return s.auditRepo.CreateLog(ctx, auditLog)
}

// logAudit пишет событие аудита; сбой аудита не отменяет уже выполненную операцию
func logAudit(ctx context.Context, audit AuditService, log logger.Logger, actorUserID int64, conversationID *int64, eventType string, payload map[string]interface{}) {
	if err := audit.LogEvent(ctx, actorUserID, conversationID, eventType, payload); err != nil {
		log.Warn("Failed to write audit log", "error", err, "event_type", eventType, "actor_user_id", actorUserID)
	}
}
