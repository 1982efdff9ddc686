package realtime

import (
	"sync"

	"chat_backend/pkg/logger"
	"chat_backend/pkg/metrics"
)

// Hub владеет реестром комнат: conversation id -> подписанные клиенты.
// Карта наружу не отдается, только Join/LeaveRoom/Leave/Broadcast.
type Hub struct {
	mu      sync.RWMutex
	rooms   map[int64]map[*Client]struct{}
	clients map[*Client]map[int64]struct{}
	closed  bool
	log     logger.Logger
}

func NewHub(log logger.Logger) *Hub {
	return &Hub{
		rooms:   make(map[int64]map[*Client]struct{}),
		clients: make(map[*Client]map[int64]struct{}),
		log:     log,
	}
}

// Register учитывает подключение до первого join. После Close новые подключения не принимаются.
func (h *Hub) Register(c *Client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return false
	}
	if _, ok := h.clients[c]; !ok {
		h.clients[c] = make(map[int64]struct{})
		metrics.RealtimeConnections.Inc()
	}
	return true
}

// Join идемпотентен: повторный join не дублирует доставку
func (h *Hub) Join(conversationID int64, c *Client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	joined, ok := h.clients[c]
	if !ok {
		// клиент уже отключен
		return false
	}

	room := h.rooms[conversationID]
	if room == nil {
		room = make(map[*Client]struct{})
		h.rooms[conversationID] = room
	}
	room[c] = struct{}{}
	joined[conversationID] = struct{}{}

	metrics.RealtimeRooms.Set(float64(len(h.rooms)))
	return true
}

func (h *Hub) LeaveRoom(conversationID int64, c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.removeLocked(conversationID, c)
	if joined, ok := h.clients[c]; ok {
		delete(joined, conversationID)
	}
	metrics.RealtimeRooms.Set(float64(len(h.rooms)))
}

// Leave убирает клиента из всех комнат. Не блокируется на отправке.
func (h *Hub) Leave(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	joined, ok := h.clients[c]
	if !ok {
		return
	}
	for conversationID := range joined {
		h.removeLocked(conversationID, c)
	}
	delete(h.clients, c)

	metrics.RealtimeConnections.Dec()
	metrics.RealtimeRooms.Set(float64(len(h.rooms)))
}

func (h *Hub) removeLocked(conversationID int64, c *Client) {
	room := h.rooms[conversationID]
	if room == nil {
		return
	}
	delete(room, c)
	if len(room) == 0 {
		delete(h.rooms, conversationID)
	}
}

// Broadcast ставит payload в очередь каждому участнику комнаты ровно один раз.
// Клиент с переполненным буфером теряет сообщение и отключается.
func (h *Hub) Broadcast(conversationID int64, payload []byte) int {
	h.mu.RLock()
	targets := make([]*Client, 0, len(h.rooms[conversationID]))
	for c := range h.rooms[conversationID] {
		targets = append(targets, c)
	}
	h.mu.RUnlock()

	delivered := 0
	for _, c := range targets {
		if c.enqueue(payload) {
			delivered++
			metrics.Broadcasts.WithLabelValues("delivered").Inc()
			continue
		}
		metrics.Broadcasts.WithLabelValues("dropped").Inc()
		h.log.Warn("Dropping slow realtime client",
			"connection_id", c.ID(), "user_id", c.UserID(), "conversation_id", conversationID)
		c.Close()
	}
	return delivered
}

func (h *Hub) RoomSize(conversationID int64) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[conversationID])
}

func (h *Hub) Rooms(c *Client) []int64 {
	h.mu.RLock()
	defer h.mu.RUnlock()

	out := make([]int64, 0, len(h.clients[c]))
	for id := range h.clients[c] {
		out = append(out, id)
	}
	return out
}

func (h *Hub) ConnectionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close отключает всех клиентов (graceful shutdown)
func (h *Hub) Close() {
	h.mu.Lock()
	h.closed = true
	all := make([]*Client, 0, len(h.clients))
	for c := range h.clients {
		all = append(all, c)
	}
	h.mu.Unlock()

	for _, c := range all {
		c.Close()
	}
	h.log.Info("Realtime hub closed", "connections", len(all))
}
