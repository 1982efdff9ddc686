package realtime

import (
	"context"

	"chat_backend/internal/domain"
	"chat_backend/internal/events"
	"chat_backend/internal/service"
	apperrors "chat_backend/pkg/errors"
	"chat_backend/pkg/logger"
	"chat_backend/pkg/metrics"
)

// Relay связывает Access Guard, хранилище сообщений и комнаты hub
type Relay struct {
	hub           *Hub
	conversations service.ConversationService
	messages      service.MessageService
	publisher     events.Publisher
	seq           *sequencer
	log           logger.Logger
}

func NewRelay(hub *Hub, conversations service.ConversationService, messages service.MessageService, publisher events.Publisher, log logger.Logger) *Relay {
	if publisher == nil {
		publisher = events.NewNopPublisher()
	}
	return &Relay{
		hub:           hub,
		conversations: conversations,
		messages:      messages,
		publisher:     publisher,
		seq:           newSequencer(),
		log:           log,
	}
}

func (r *Relay) Hub() *Hub {
	return r.hub
}

// Join подписывает клиента на комнату только если он участник диалога
func (r *Relay) Join(ctx context.Context, c *Client, conversationID int64) error {
	ok, err := r.conversations.Authorize(ctx, conversationID, c.UserID())
	if err != nil {
		return err
	}
	if !ok {
		return apperrors.ErrNotParticipant
	}
	if !r.hub.Join(conversationID, c) {
		return apperrors.ErrUnauthorized
	}

	r.log.Debug("Client joined conversation",
		"connection_id", c.ID(), "user_id", c.UserID(), "conversation_id", conversationID)
	return nil
}

// Submit сохраняет сообщение и рассылает его в комнату. Отправки в один диалог
// сериализуются, поэтому подписчики видят сообщения в порядке коммита.
func (r *Relay) Submit(ctx context.Context, conversationID, senderID int64, content string) (*domain.Message, error) {
	ok, err := r.conversations.Authorize(ctx, conversationID, senderID)
	if err != nil {
		r.countFailure(err)
		return nil, err
	}
	if !ok {
		r.countFailure(apperrors.ErrNotParticipant)
		return nil, apperrors.ErrNotParticipant
	}

	unlock := r.seq.Lock(conversationID)
	defer unlock()

	msg, err := r.messages.Append(ctx, conversationID, senderID, content)
	if err != nil {
		r.countFailure(err)
		r.log.Warn("Failed to persist message",
			"error", err, "conversation_id", conversationID, "sender_id", senderID)
		return nil, err
	}

	delivered := r.hub.Broadcast(conversationID, encode(NewMessageEvent{Type: EventNewMessage, Message: msg}))

	if err := r.publisher.PublishMessage(ctx, msg); err != nil {
		r.log.Warn("Failed to publish message event", "error", err, "message_id", msg.ID)
	}

	r.log.Debug("Message relayed",
		"message_id", msg.ID, "conversation_id", conversationID, "delivered", delivered)
	return msg, nil
}

func (r *Relay) countFailure(err error) {
	metrics.SubmitFailures.WithLabelValues(ErrorCode(err)).Inc()
}

// Shutdown отключает всех клиентов. Publisher закрывает тот, кто его создал.
func (r *Relay) Shutdown() {
	r.hub.Close()
}
