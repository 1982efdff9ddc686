//go:generate go run go.uber.org/mock/mockgen -source=message.go -destination=mocks/mock_message.go -package=mocks

package service

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"chat_backend/internal/config"
	"chat_backend/internal/domain"
	"chat_backend/internal/repository"
	apperrors "chat_backend/pkg/errors"
	"chat_backend/pkg/logger"
	"chat_backend/pkg/metrics"
)

// MessageService не проверяет доступ: вызывающий обязан пройти Authorize раньше
type MessageService interface {
	Append(ctx context.Context, conversationID, senderID int64, content string) (*domain.Message, error)
	Get(ctx context.Context, messageID int64) (*domain.Message, error)
	ListByConversation(ctx context.Context, conversationID int64) ([]*domain.Message, error)
	SoftDelete(ctx context.Context, conversationID, messageID, actorID int64) error
	SoftDeleteAll(ctx context.Context, conversationID, actorID int64) (int64, error)
}

type messageService struct {
	messageRepo repository.MessageRepository
	audit       AuditService
	cfg         config.MessagesConfig
	log         logger.Logger
}

func NewMessageService(messageRepo repository.MessageRepository, audit AuditService, cfg config.MessagesConfig, log logger.Logger) MessageService {
	return &messageService{
		messageRepo: messageRepo,
		audit:       audit,
		cfg:         cfg,
		log:         log,
	}
}

func (s *messageService) Append(ctx context.Context, conversationID, senderID int64, content string) (*domain.Message, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, apperrors.ErrEmptyContent
	}
	if s.cfg.MaxLength > 0 && utf8.RuneCountInString(content) > s.cfg.MaxLength {
		return nil, apperrors.ErrContentTooLong
	}

	message := &domain.Message{
		ConversationID: conversationID,
		SenderID:       senderID,
		Content:        content,
	}
	if err := s.messageRepo.Create(ctx, message); err != nil {
		return nil, err
	}

	metrics.MessagesAppended.Inc()
	return message, nil
}

func (s *messageService) Get(ctx context.Context, messageID int64) (*domain.Message, error) {
	msg, err := s.messageRepo.GetByID(ctx, messageID)
	if err != nil {
		return nil, err
	}
	if !msg.State.IsActive() {
		return nil, apperrors.ErrMessageNotFound
	}
	return msg, nil
}

func (s *messageService) ListByConversation(ctx context.Context, conversationID int64) ([]*domain.Message, error) {
	return s.messageRepo.ListByConversation(ctx, conversationID)
}

// SoftDelete идемпотентен. Сообщение из другого диалога или отсутствующее - Forbidden, чтобы не раскрывать id.
// Удалять может любой участник, как и очищать весь диалог.
func (s *messageService) SoftDelete(ctx context.Context, conversationID, messageID, actorID int64) error {
	msg, err := s.messageRepo.GetByID(ctx, messageID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return apperrors.ErrMessageMismatch
		}
		return err
	}
	if msg.ConversationID != conversationID {
		return apperrors.ErrMessageMismatch
	}

	changed, err := s.messageRepo.SoftDelete(ctx, messageID)
	if err != nil {
		return err
	}
	if changed {
		logAudit(ctx, s.audit, s.log, actorID, &conversationID, domain.EventTypeMessageDeleted,
			map[string]interface{}{"message_id": messageID})
	}
	return nil
}

func (s *messageService) SoftDeleteAll(ctx context.Context, conversationID, actorID int64) (int64, error) {
	n, err := s.messageRepo.SoftDeleteAll(ctx, conversationID)
	if err != nil {
		return 0, err
	}

	s.log.Info("Conversation messages cleared", "conversation_id", conversationID, "user_id", actorID, "count", n)
	logAudit(ctx, s.audit, s.log, actorID, &conversationID, domain.EventTypeMessagesCleared,
		map[string]interface{}{"count": n})
	return n, nil
}
