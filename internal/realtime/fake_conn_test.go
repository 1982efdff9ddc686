package realtime

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/mock/gomock"

	"chat_backend/internal/config"
	"chat_backend/internal/domain"
	"chat_backend/internal/service/mocks"
	"chat_backend/pkg/logger"
)

var errConnClosed = errors.New("connection closed")

// fakeConn - websocket-подключение в памяти
type fakeConn struct {
	in     chan []byte
	out    chan []byte
	closed chan struct{}
	once   sync.Once
}

func newFakeConn() *fakeConn {
	return &fakeConn{
		in:     make(chan []byte, 16),
		out:    make(chan []byte, 256),
		closed: make(chan struct{}),
	}
}

func (f *fakeConn) ReadMessage() (int, []byte, error) {
	select {
	case data := <-f.in:
		return websocket.TextMessage, data, nil
	case <-f.closed:
		return 0, nil, errConnClosed
	}
}

func (f *fakeConn) WriteMessage(messageType int, data []byte) error {
	select {
	case <-f.closed:
		return errConnClosed
	default:
	}
	if messageType == websocket.TextMessage {
		f.out <- data
	}
	return nil
}

func (f *fakeConn) SetReadLimit(int64)                 {}
func (f *fakeConn) SetReadDeadline(time.Time) error    { return nil }
func (f *fakeConn) SetWriteDeadline(time.Time) error   { return nil }
func (f *fakeConn) SetPongHandler(func(string) error) {}

func (f *fakeConn) Close() error {
	f.once.Do(func() { close(f.closed) })
	return nil
}

// recordingPublisher запоминает опубликованные сообщения
type recordingPublisher struct {
	mu       sync.Mutex
	messages []*domain.Message
	closes   int
}

func (p *recordingPublisher) PublishMessage(_ context.Context, msg *domain.Message) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.messages = append(p.messages, msg)
	return nil
}

func (p *recordingPublisher) IsConnected() bool { return true }
func (p *recordingPublisher) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closes++
}

func (p *recordingPublisher) closeCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closes
}

func (p *recordingPublisher) published() []*domain.Message {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]*domain.Message(nil), p.messages...)
}

func testRealtimeConfig(buffer int) config.RealtimeConfig {
	return config.RealtimeConfig{
		SendBufferSize: buffer,
		MaxFrameBytes:  16 * 1024,
		WriteWait:      time.Second,
		PongWait:       time.Minute,
	}
}

type relayDeps struct {
	convs     *mocks.MockConversationService
	messages  *mocks.MockMessageService
	publisher *recordingPublisher
	hub       *Hub
	relay     *Relay
}

func newRelayDeps(t *testing.T) *relayDeps {
	ctrl := gomock.NewController(t)
	log := logger.NewNop()
	d := &relayDeps{
		convs:     mocks.NewMockConversationService(ctrl),
		messages:  mocks.NewMockMessageService(ctrl),
		publisher: &recordingPublisher{},
		hub:       NewHub(log),
	}
	d.relay = NewRelay(d.hub, d.convs, d.messages, d.publisher, log)
	return d
}

// newTestClient создает зарегистрированного клиента без запущенных pump-горутин
func (d *relayDeps) newTestClient(t *testing.T, userID int64, buffer int) *Client {
	t.Helper()
	c := NewClient(newFakeConn(), userID, d.relay, testRealtimeConfig(buffer), logger.NewNop())
	if !d.hub.Register(c) {
		t.Fatal("hub refused registration")
	}
	return c
}

// drain возвращает все события из очереди клиента
func drain(c *Client) [][]byte {
	var out [][]byte
	for {
		select {
		case b := <-c.send:
			out = append(out, b)
		default:
			return out
		}
	}
}
