// Package events публикует доставленные сообщения в NATS для внешних потребителей
// (уведомления, поиск). Лента best-effort: ошибка публикации не влияет на доставку.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"chat_backend/internal/config"
	"chat_backend/internal/domain"
	"chat_backend/pkg/logger"
)

const EventTypeMessageCreated = "message.created"

// MessageEvent - тело события в ленте
type MessageEvent struct {
	Type        string          `json:"type"`
	Message     *domain.Message `json:"message"`
	PublishedAt time.Time       `json:"publishedAt"`
}

type Publisher interface {
	PublishMessage(ctx context.Context, msg *domain.Message) error
	IsConnected() bool
	Close()
}

// MessageSubject возвращает subject вида <prefix>.<conversation_id>.messages
func MessageSubject(prefix string, conversationID int64) string {
	return fmt.Sprintf("%s.%d.messages", prefix, conversationID)
}

type natsPublisher struct {
	conn   *nats.Conn
	prefix string
	log    logger.Logger
}

// Connect подключается к NATS. Пустой URL отключает ленту: возвращается no-op publisher.
func Connect(cfg config.NATSConfig, log logger.Logger) (Publisher, error) {
	if cfg.URL == "" {
		log.Info("NATS_URL is empty, message event feed disabled")
		return NewNopPublisher(), nil
	}

	opts := []nats.Option{
		nats.Name("chat-backend"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2 * time.Second),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			log.Warn("NATS disconnected", "error", err)
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info("NATS reconnected", "url", nc.ConnectedUrl())
		}),
		nats.ErrorHandler(func(nc *nats.Conn, sub *nats.Subscription, err error) {
			log.Error("NATS error", "error", err)
		}),
	}
	if cfg.Token != "" {
		opts = append(opts, nats.Token(cfg.Token))
	}

	nc, err := nats.Connect(cfg.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	log.Info("Connected to NATS", "url", nc.ConnectedUrl())

	return &natsPublisher{conn: nc, prefix: cfg.SubjectPrefix, log: log}, nil
}

func (p *natsPublisher) PublishMessage(ctx context.Context, msg *domain.Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := EncodeMessageEvent(msg)
	if err != nil {
		return err
	}

	subject := MessageSubject(p.prefix, msg.ConversationID)
	if err := p.conn.Publish(subject, data); err != nil {
		return fmt.Errorf("publish %s: %w", subject, err)
	}
	return nil
}

func (p *natsPublisher) IsConnected() bool {
	return p.conn != nil && p.conn.IsConnected()
}

func (p *natsPublisher) Close() {
	if p.conn == nil {
		return
	}
	if err := p.conn.Drain(); err != nil {
		p.log.Warn("Failed to drain NATS connection", "error", err)
		p.conn.Close()
	}
}

func EncodeMessageEvent(msg *domain.Message) ([]byte, error) {
	data, err := json.Marshal(MessageEvent{
		Type:        EventTypeMessageCreated,
		Message:     msg,
		PublishedAt: time.Now().UTC(),
	})
	if err != nil {
		return nil, fmt.Errorf("encode message event: %w", err)
	}
	return data, nil
}

type nopPublisher struct{}

func NewNopPublisher() Publisher {
	return nopPublisher{}
}

func (nopPublisher) PublishMessage(context.Context, *domain.Message) error { return nil }
func (nopPublisher) IsConnected() bool                                    { return true }
func (nopPublisher) Close()                                               {}
