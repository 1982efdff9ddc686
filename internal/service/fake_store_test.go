package service

import (
	"context"
	"sync"
	"time"

	"chat_backend/internal/domain"
	"chat_backend/internal/repository"
	apperrors "chat_backend/pkg/errors"
)

// memoryStore - in-memory реализация репозиториев диалогов и сообщений для тестов сценариев
type memoryStore struct {
	mu            sync.Mutex
	nextConvID    int64
	nextMessageID int64
	conversations map[int64]*domain.Conversation
	messages      []*domain.Message
}

func newMemoryStore(firstConvID int64) *memoryStore {
	return &memoryStore{
		nextConvID:    firstConvID,
		nextMessageID: 1,
		conversations: make(map[int64]*domain.Conversation),
	}
}

func (s *memoryStore) WithTx(ctx context.Context, fn func(repo repository.ConversationRepository) error) error {
	return fn(s)
}

func (s *memoryStore) FindActiveByPair(ctx context.Context, userA, userB int64, forUpdate bool) (*domain.Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, c := range s.conversations {
		if c.DeletedAt == nil && c.HasParticipant(userA) && c.HasParticipant(userB) {
			cp := *c
			return &cp, nil
		}
	}
	return nil, apperrors.ErrConversationNotFound
}

func (s *memoryStore) Create(ctx context.Context, participantOne, participantTwo int64) (*domain.Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, c := range s.conversations {
		if c.DeletedAt == nil && c.HasParticipant(participantOne) && c.HasParticipant(participantTwo) {
			return nil, apperrors.ErrDuplicate
		}
	}

	now := time.Now()
	c := &domain.Conversation{
		ID:             s.nextConvID,
		ParticipantOne: participantOne,
		ParticipantTwo: participantTwo,
		State:          domain.LifecycleActive,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	s.nextConvID++
	s.conversations[c.ID] = c

	cp := *c
	return &cp, nil
}

func (s *memoryStore) GetByID(ctx context.Context, id int64) (*domain.Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.conversations[id]
	if !ok || c.DeletedAt != nil {
		return nil, apperrors.ErrConversationNotFound
	}
	cp := *c
	return &cp, nil
}

func (s *memoryStore) IsParticipant(ctx context.Context, conversationID, userID int64) (bool, error) {
	c, err := s.GetByID(ctx, conversationID)
	if err != nil {
		return false, nil
	}
	return c.HasParticipant(userID), nil
}

func (s *memoryStore) ListForUser(ctx context.Context, userID int64) ([]*domain.ConversationSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*domain.ConversationSummary, 0)
	for _, c := range s.conversations {
		if c.DeletedAt != nil || !c.HasParticipant(userID) || c.HiddenFor(userID) {
			continue
		}
		out = append(out, &domain.ConversationSummary{
			ConversationID:   c.ID,
			OtherParticipant: domain.UserSummary{ID: c.OtherParticipant(userID)},
			CreatedAt:        c.CreatedAt,
		})
	}
	return out, nil
}

func (s *memoryStore) HideForParticipant(ctx context.Context, conversationID, userID int64) (*domain.Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.conversations[conversationID]
	if !ok || c.DeletedAt != nil || !c.HasParticipant(userID) {
		return nil, apperrors.ErrConversationNotFound
	}

	now := time.Now()
	if userID == c.ParticipantOne && c.ParticipantOneDeletedAt == nil {
		c.ParticipantOneDeletedAt = &now
	}
	if userID == c.ParticipantTwo && c.ParticipantTwoDeletedAt == nil {
		c.ParticipantTwoDeletedAt = &now
	}
	if c.ParticipantOneDeletedAt != nil && c.ParticipantTwoDeletedAt != nil {
		c.DeletedAt = &now
	}
	c.State = domain.LifecycleOf(c.DeletedAt)

	cp := *c
	return &cp, nil
}

func (s *memoryStore) RestoreForParticipant(ctx context.Context, conversationID, userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if c, ok := s.conversations[conversationID]; ok && c.DeletedAt == nil {
		c.RestoreFor(userID)
	}
	return nil
}

// messagesRepo возвращает MessageRepository поверх того же хранилища
func (s *memoryStore) messagesRepo() repository.MessageRepository {
	return &memoryMessages{store: s}
}

type memoryMessages struct {
	store *memoryStore
}

func (m *memoryMessages) Create(ctx context.Context, message *domain.Message) error {
	s := m.store
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.conversations[message.ConversationID]
	if !ok || c.DeletedAt != nil {
		return apperrors.ErrValidation
	}
	c.ParticipantOneDeletedAt = nil
	c.ParticipantTwoDeletedAt = nil

	message.ID = s.nextMessageID
	message.CreatedAt = time.Now()
	message.State = domain.LifecycleActive
	s.nextMessageID++

	cp := *message
	s.messages = append(s.messages, &cp)
	return nil
}

func (m *memoryMessages) GetByID(ctx context.Context, id int64) (*domain.Message, error) {
	s := m.store
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, msg := range s.messages {
		if msg.ID == id {
			cp := *msg
			cp.State = domain.LifecycleOf(cp.DeletedAt)
			return &cp, nil
		}
	}
	return nil, apperrors.ErrMessageNotFound
}

func (m *memoryMessages) ListByConversation(ctx context.Context, conversationID int64) ([]*domain.Message, error) {
	s := m.store
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*domain.Message, 0)
	for _, msg := range s.messages {
		if msg.ConversationID == conversationID && msg.DeletedAt == nil {
			cp := *msg
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *memoryMessages) SoftDelete(ctx context.Context, id int64) (bool, error) {
	s := m.store
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, msg := range s.messages {
		if msg.ID == id && msg.DeletedAt == nil {
			now := time.Now()
			msg.DeletedAt = &now
			return true, nil
		}
	}
	return false, nil
}

func (m *memoryMessages) SoftDeleteAll(ctx context.Context, conversationID int64) (int64, error) {
	s := m.store
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64
	now := time.Now()
	for _, msg := range s.messages {
		if msg.ConversationID == conversationID && msg.DeletedAt == nil {
			msg.DeletedAt = &now
			n++
		}
	}
	return n, nil
}
