//go:generate go run go.uber.org/mock/mockgen -source=conversation.go -destination=mocks/mock_conversation.go -package=mocks

package service

import (
	"context"
	"errors"
	"fmt"

	"chat_backend/internal/domain"
	"chat_backend/internal/repository"
	apperrors "chat_backend/pkg/errors"
	"chat_backend/pkg/logger"
	"chat_backend/pkg/metrics"
)

type ConversationService interface {
	// Resolve находит или создает единственный активный диалог пары.
	// created = true, если диалог создан этим вызовом.
	Resolve(ctx context.Context, requesterID, otherID int64) (*domain.Conversation, bool, error)
	Authorize(ctx context.Context, conversationID, userID int64) (bool, error)
	RequireParticipant(ctx context.Context, conversationID, userID int64) (*domain.Conversation, error)
	Get(ctx context.Context, conversationID, userID int64) (*domain.Conversation, error)
	List(ctx context.Context, userID int64) ([]*domain.ConversationSummary, error)
	Delete(ctx context.Context, conversationID, userID int64) error
}

type conversationService struct {
	convRepo repository.ConversationRepository
	userRepo repository.UserRepository
	audit    AuditService
	log      logger.Logger
}

func NewConversationService(convRepo repository.ConversationRepository, userRepo repository.UserRepository, audit AuditService, log logger.Logger) ConversationService {
	return &conversationService{
		convRepo: convRepo,
		userRepo: userRepo,
		audit:    audit,
		log:      log,
	}
}

func (s *conversationService) Resolve(ctx context.Context, requesterID, otherID int64) (*domain.Conversation, bool, error) {
	if requesterID <= 0 || otherID <= 0 {
		return nil, false, fmt.Errorf("%w: participant id must be positive", apperrors.ErrValidation)
	}
	if requesterID == otherID {
		return nil, false, apperrors.ErrSelfConversation
	}

	exists, err := s.userRepo.Exists(ctx, otherID)
	if err != nil {
		return nil, false, err
	}
	if !exists {
		return nil, false, apperrors.ErrUserNotFound
	}

	var (
		conv    *domain.Conversation
		created bool
	)
	err = s.convRepo.WithTx(ctx, func(tx repository.ConversationRepository) error {
		conv, created = nil, false

		existing, err := tx.FindActiveByPair(ctx, requesterID, otherID, true)
		if err == nil {
			if existing.HiddenFor(requesterID) {
				if err := tx.RestoreForParticipant(ctx, existing.ID, requesterID); err != nil {
					return err
				}
				existing.RestoreFor(requesterID)
			}
			conv = existing
			return nil
		}
		if !errors.Is(err, apperrors.ErrConversationNotFound) {
			return err
		}

		conv, err = tx.Create(ctx, requesterID, otherID)
		if err != nil {
			return err
		}
		created = true
		return nil
	})

	// Параллельный первый контакт: другая транзакция успела создать диалог
	if errors.Is(err, apperrors.ErrConflict) {
		s.log.Debug("Conversation created concurrently, re-fetching",
			"requester_id", requesterID, "other_id", otherID)
		conv, err = s.convRepo.FindActiveByPair(ctx, requesterID, otherID, false)
		created = false
	}
	if err != nil {
		return nil, false, err
	}

	if created {
		metrics.ConversationsCreated.Inc()
		s.log.Info("Conversation created", "conversation_id", conv.ID,
			"participant_one", conv.ParticipantOne, "participant_two", conv.ParticipantTwo)
		logAudit(ctx, s.audit, s.log, requesterID, &conv.ID, domain.EventTypeConversationCreated,
			map[string]interface{}{"participant_id": otherID})
	}

	return conv, created, nil
}

func (s *conversationService) Authorize(ctx context.Context, conversationID, userID int64) (bool, error) {
	if conversationID <= 0 || userID <= 0 {
		return false, nil
	}
	return s.convRepo.IsParticipant(ctx, conversationID, userID)
}

// RequireParticipant не различает "нет диалога" и "чужой диалог", чтобы не раскрывать существование
func (s *conversationService) RequireParticipant(ctx context.Context, conversationID, userID int64) (*domain.Conversation, error) {
	conv, err := s.convRepo.GetByID(ctx, conversationID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.ErrNotParticipant
		}
		return nil, err
	}
	if !conv.HasParticipant(userID) {
		return nil, apperrors.ErrNotParticipant
	}
	return conv, nil
}

func (s *conversationService) Get(ctx context.Context, conversationID, userID int64) (*domain.Conversation, error) {
	conv, err := s.convRepo.GetByID(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	if !conv.HasParticipant(userID) {
		return nil, apperrors.ErrNotParticipant
	}
	if conv.HiddenFor(userID) {
		return nil, apperrors.ErrConversationNotFound
	}
	return conv, nil
}

func (s *conversationService) List(ctx context.Context, userID int64) ([]*domain.ConversationSummary, error) {
	return s.convRepo.ListForUser(ctx, userID)
}

// Delete скрывает диалог только у userID; второй участник продолжает его видеть
func (s *conversationService) Delete(ctx context.Context, conversationID, userID int64) error {
	conv, err := s.convRepo.HideForParticipant(ctx, conversationID, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return apperrors.ErrNotParticipant
		}
		return err
	}

	scope := "participant"
	if !conv.State.IsActive() {
		scope = "global"
	}
	s.log.Info("Conversation deleted", "conversation_id", conversationID, "user_id", userID, "scope", scope)
	logAudit(ctx, s.audit, s.log, userID, &conv.ID, domain.EventTypeConversationDeleted,
		map[string]interface{}{"scope": scope})

	return nil
}
