package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"chat_backend/internal/config"
	apperrors "chat_backend/pkg/errors"
	"chat_backend/pkg/logger"
)

// Таймаут одной операции клиента (join, отправка)
const opTimeout = 10 * time.Second

// Conn - часть *websocket.Conn, которой пользуется клиент
type Conn interface {
	ReadMessage() (messageType int, p []byte, err error)
	WriteMessage(messageType int, data []byte) error
	SetReadLimit(limit int64)
	SetReadDeadline(t time.Time) error
	SetWriteDeadline(t time.Time) error
	SetPongHandler(h func(appData string) error)
	Close() error
}

// Client - одно websocket-подключение аутентифицированного пользователя.
// Connected -> Joined(n комнат) -> Disconnected (терминальное состояние).
type Client struct {
	id     string
	userID int64
	conn   Conn
	hub    *Hub
	relay  *Relay
	cfg    config.RealtimeConfig
	log    logger.Logger

	send      chan []byte
	done      chan struct{}
	closeOnce sync.Once
}

func NewClient(conn Conn, userID int64, relay *Relay, cfg config.RealtimeConfig, log logger.Logger) *Client {
	id := uuid.NewString()
	return &Client{
		id:     id,
		userID: userID,
		conn:   conn,
		hub:    relay.hub,
		relay:  relay,
		cfg:    cfg,
		log:    log.With("connection_id", id, "user_id", userID),
		send:   make(chan []byte, cfg.SendBufferSize),
		done:   make(chan struct{}),
	}
}

func (c *Client) ID() string { return c.id }

func (c *Client) UserID() int64 { return c.userID }

// Serve обслуживает подключение до его закрытия
func (c *Client) Serve(ctx context.Context) {
	if !c.hub.Register(c) {
		_ = c.conn.Close()
		return
	}
	c.log.Info("Realtime client connected")

	go c.writePump()
	c.readPump(ctx)

	c.log.Info("Realtime client disconnected")
}

// Close переводит клиента в Disconnected: выходит из всех комнат и останавливает writePump.
// Повторные вызовы ничего не делают.
func (c *Client) Close() {
	c.closeOnce.Do(func() {
		close(c.done)
		c.hub.Leave(c)
	})
}

func (c *Client) closed() bool {
	select {
	case <-c.done:
		return true
	default:
		return false
	}
}

// enqueue никогда не блокируется: false, если буфер полон или клиент закрыт
func (c *Client) enqueue(payload []byte) bool {
	if c.closed() {
		return false
	}
	select {
	case c.send <- payload:
		return true
	default:
		return false
	}
}

func (c *Client) reply(v interface{}) {
	if c.closed() {
		return
	}
	if !c.enqueue(encode(v)) {
		c.log.Warn("Failed to queue reply, closing client")
		c.Close()
	}
}

func (c *Client) readPump(ctx context.Context) {
	defer func() {
		c.Close()
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(c.cfg.MaxFrameBytes)
	_ = c.conn.SetReadDeadline(time.Now().Add(c.cfg.PongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(c.cfg.PongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.log.Warn("Unexpected websocket close", "error", err)
			}
			return
		}
		if c.closed() {
			return
		}
		c.handle(ctx, data)
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(c.cfg.PingPeriod())
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
		c.Close()
	}()

	for {
		select {
		case msg := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(c.cfg.WriteWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				c.log.Debug("Failed to write message", "error", err)
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(c.cfg.WriteWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-c.done:
			_ = c.conn.SetWriteDeadline(time.Now().Add(c.cfg.WriteWait))
			_ = c.conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}

func (c *Client) handle(ctx context.Context, data []byte) {
	var ev ClientEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		c.reply(newErrorEvent(fmt.Errorf("%w: malformed frame", apperrors.ErrValidation), 0, ""))
		return
	}

	opCtx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	switch ev.Type {
	case EventJoinConversation:
		if err := c.relay.Join(opCtx, c, ev.ConversationID); err != nil {
			c.reply(newErrorEvent(err, ev.ConversationID, ""))
			return
		}
		c.reply(RoomEvent{Type: EventJoined, ConversationID: ev.ConversationID})

	case EventLeaveConversation:
		c.hub.LeaveRoom(ev.ConversationID, c)
		c.reply(RoomEvent{Type: EventLeft, ConversationID: ev.ConversationID})

	case EventSendMessage:
		// senderId в кадре необязателен, но если указан - должен совпадать с владельцем подключения
		if ev.SenderID != 0 && ev.SenderID != c.userID {
			c.reply(newErrorEvent(
				fmt.Errorf("%w: senderId does not match the authenticated user", apperrors.ErrForbidden),
				ev.ConversationID, ev.ClientMessageID))
			return
		}
		msg, err := c.relay.Submit(opCtx, ev.ConversationID, c.userID, ev.Content)
		if err != nil {
			c.reply(newErrorEvent(err, ev.ConversationID, ev.ClientMessageID))
			return
		}
		c.reply(MessageAckEvent{Type: EventMessageAck, ClientMessageID: ev.ClientMessageID, Message: msg})

	default:
		c.reply(newErrorEvent(
			fmt.Errorf("%w: unknown event type %q", apperrors.ErrValidation, ev.Type), ev.ConversationID, ""))
	}
}
