package handler

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"chat_backend/internal/config"
	"chat_backend/internal/realtime"
	"chat_backend/pkg/logger"
)

type WebSocketHandler struct {
	relay    *realtime.Relay
	cfg      config.RealtimeConfig
	upgrader websocket.Upgrader
	log      logger.Logger
}

func NewWebSocketHandler(relay *realtime.Relay, cfg *config.Config, log logger.Logger) *WebSocketHandler {
	return &WebSocketHandler{
		relay: relay,
		cfg:   cfg.Realtime,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(cfg.Server.AllowedOrigins),
		},
		log: log,
	}
}

// originChecker пропускает запросы без Origin (не браузерные клиенты) и origin из списка.
// "*" разрешает любой origin.
func originChecker(allowed []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		for _, a := range allowed {
			if a == "*" || strings.EqualFold(a, origin) {
				return true
			}
		}
		// Совпадение хоста - тот же origin
		u, err := url.Parse(origin)
		return err == nil && strings.EqualFold(u.Host, r.Host)
	}
}

// Handle поднимает websocket-соединение для аутентифицированного пользователя.
// Токен проверяется в AuthMiddleware.RequireAuthWS до апгрейда.
func (h *WebSocketHandler) Handle(c *gin.Context) {
	userID, err := currentUser(c)
	if err != nil {
		fail(c, err)
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade уже записал ответ с ошибкой
		h.log.Warn("Failed to upgrade connection", "error", err, "user_id", userID)
		return
	}

	client := realtime.NewClient(conn, userID, h.relay, h.cfg, h.log)
	// Соединение живет дольше обработчика запроса
	client.Serve(context.WithoutCancel(c.Request.Context()))
}
