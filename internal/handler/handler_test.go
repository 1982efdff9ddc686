package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"chat_backend/internal/domain"
	"chat_backend/internal/middleware"
	"chat_backend/internal/service/mocks"
	apperrors "chat_backend/pkg/errors"
	"chat_backend/pkg/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type submitFunc func(ctx context.Context, conversationID, senderID int64, content string) (*domain.Message, error)

func (f submitFunc) Submit(ctx context.Context, conversationID, senderID int64, content string) (*domain.Message, error) {
	return f(ctx, conversationID, senderID, content)
}

type testDeps struct {
	conversations *mocks.MockConversationService
	messages      *mocks.MockMessageService
	contacts      *mocks.MockContactService
	submit        submitFunc
	router        *gin.Engine
}

// newTestRouter собирает маршруты как в cmd/server, но вместо JWT подставляет userID из заголовка
func newTestRouter(t *testing.T) *testDeps {
	ctrl := gomock.NewController(t)
	d := &testDeps{
		conversations: mocks.NewMockConversationService(ctrl),
		messages:      mocks.NewMockMessageService(ctrl),
		contacts:      mocks.NewMockContactService(ctrl),
	}
	d.submit = func(context.Context, int64, int64, string) (*domain.Message, error) {
		return nil, errors.New("unexpected submit")
	}

	log := logger.NewNop()
	conv := NewConversationHandler(d.conversations, log)
	msg := NewMessageHandler(d.conversations, d.messages, submitFunc(func(ctx context.Context, c, s int64, content string) (*domain.Message, error) {
		return d.submit(ctx, c, s, content)
	}), log)
	contact := NewContactHandler(d.contacts, log)

	r := gin.New()
	r.Use(middleware.ErrorHandler(log))
	api := r.Group("/api/v1", func(c *gin.Context) {
		if c.GetHeader("X-Test-User") == "100" {
			c.Set(middleware.UserIDKey, int64(100))
		}
		c.Next()
	})
	api.GET("/conversations", conv.List)
	api.POST("/conversations", conv.Create)
	api.GET("/conversations/:id", conv.Get)
	api.DELETE("/conversations/:id", conv.Delete)
	api.GET("/conversations/:id/messages", msg.List)
	api.POST("/conversations/:id/messages", msg.Send)
	api.DELETE("/conversations/:id/messages", msg.Clear)
	api.DELETE("/conversations/:id/messages/:messageId", msg.Delete)
	api.GET("/contacts", contact.List)
	api.POST("/contacts", contact.Add)
	api.DELETE("/contacts/:contactId", contact.Remove)
	d.router = r
	return d
}

func (d *testDeps) do(method, path, body string) *httptest.ResponseRecorder {
	r := httptest.NewRequest(method, path, bytes.NewReader([]byte(body)))
	r.Header.Set("Content-Type", "application/json")
	r.Header.Set("X-Test-User", "100")
	w := httptest.NewRecorder()
	d.router.ServeHTTP(w, r)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, data interface{}) apperrors.APIResponse {
	t.Helper()
	var raw struct {
		Message string          `json:"message"`
		Data    json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &raw))
	if data != nil {
		require.NoError(t, json.Unmarshal(raw.Data, data))
	}
	return apperrors.APIResponse{Message: raw.Message}
}

func TestConversationHandler(t *testing.T) {
	now := time.Now().UTC()
	conv := &domain.Conversation{ID: 1, ParticipantOne: 100, ParticipantTwo: 101, State: domain.LifecycleActive, CreatedAt: now, UpdatedAt: now}

	t.Run("should create a conversation with 201", func(t *testing.T) {
		req := require.New(t)
		d := newTestRouter(t)
		d.conversations.EXPECT().Resolve(gomock.Any(), int64(100), int64(101)).Return(conv, true, nil)

		w := d.do(http.MethodPost, "/api/v1/conversations", `{"participantId":101}`)

		req.Equal(http.StatusCreated, w.Code)
		var got domain.Conversation
		decode(t, w, &got)
		req.Equal(int64(1), got.ID)
	})

	t.Run("should encode conversations in camelCase", func(t *testing.T) {
		req := require.New(t)
		d := newTestRouter(t)
		d.conversations.EXPECT().Resolve(gomock.Any(), int64(100), int64(101)).Return(conv, true, nil)

		w := d.do(http.MethodPost, "/api/v1/conversations", `{"participantId":101}`)

		body := w.Body.String()
		req.Contains(body, `"participantOne":100`)
		req.Contains(body, `"createdAt"`)
		req.NotContains(body, "participant_one")
		req.NotContains(body, "created_at")
	})

	t.Run("should return 200 for an existing conversation", func(t *testing.T) {
		req := require.New(t)
		d := newTestRouter(t)
		d.conversations.EXPECT().Resolve(gomock.Any(), int64(100), int64(101)).Return(conv, false, nil)

		w := d.do(http.MethodPost, "/api/v1/conversations", `{"participantId":101}`)

		req.Equal(http.StatusOK, w.Code)
	})

	t.Run("should reject a missing participant id", func(t *testing.T) {
		req := require.New(t)
		d := newTestRouter(t)

		w := d.do(http.MethodPost, "/api/v1/conversations", `{}`)

		req.Equal(http.StatusBadRequest, w.Code)
	})

	t.Run("should map service errors to statuses", func(t *testing.T) {
		req := require.New(t)
		d := newTestRouter(t)
		d.conversations.EXPECT().Resolve(gomock.Any(), int64(100), int64(100)).Return(nil, false, apperrors.ErrSelfConversation)
		d.conversations.EXPECT().Resolve(gomock.Any(), int64(100), int64(999)).Return(nil, false, apperrors.ErrUserNotFound)

		req.Equal(http.StatusBadRequest, d.do(http.MethodPost, "/api/v1/conversations", `{"participantId":100}`).Code)
		req.Equal(http.StatusNotFound, d.do(http.MethodPost, "/api/v1/conversations", `{"participantId":999}`).Code)
	})

	t.Run("should list conversations of the caller", func(t *testing.T) {
		req := require.New(t)
		d := newTestRouter(t)
		last := "hi"
		d.conversations.EXPECT().List(gomock.Any(), int64(100)).Return([]*domain.ConversationSummary{
			{ConversationID: 1, OtherParticipant: domain.UserSummary{ID: 101, Username: "bob"}, LastMessage: &last, CreatedAt: now},
		}, nil)

		w := d.do(http.MethodGet, "/api/v1/conversations", "")

		req.Equal(http.StatusOK, w.Code)
		var got []domain.ConversationSummary
		decode(t, w, &got)
		req.Len(got, 1)
		req.Equal("hi", *got[0].LastMessage)
	})

	t.Run("should reject a non numeric id", func(t *testing.T) {
		req := require.New(t)
		d := newTestRouter(t)

		req.Equal(http.StatusBadRequest, d.do(http.MethodGet, "/api/v1/conversations/abc", "").Code)
		req.Equal(http.StatusBadRequest, d.do(http.MethodDelete, "/api/v1/conversations/-1", "").Code)
	})

	t.Run("should forbid foreign conversations", func(t *testing.T) {
		req := require.New(t)
		d := newTestRouter(t)
		d.conversations.EXPECT().Get(gomock.Any(), int64(7), int64(100)).Return(nil, apperrors.ErrNotParticipant)
		d.conversations.EXPECT().Delete(gomock.Any(), int64(7), int64(100)).Return(apperrors.ErrNotParticipant)

		req.Equal(http.StatusForbidden, d.do(http.MethodGet, "/api/v1/conversations/7", "").Code)
		req.Equal(http.StatusForbidden, d.do(http.MethodDelete, "/api/v1/conversations/7", "").Code)
	})

	t.Run("should delete a conversation for the caller", func(t *testing.T) {
		req := require.New(t)
		d := newTestRouter(t)
		d.conversations.EXPECT().Delete(gomock.Any(), int64(1), int64(100)).Return(nil)

		w := d.do(http.MethodDelete, "/api/v1/conversations/1", "")

		req.Equal(http.StatusOK, w.Code)
	})

	t.Run("should require an authenticated user", func(t *testing.T) {
		req := require.New(t)
		d := newTestRouter(t)
		r := httptest.NewRequest(http.MethodGet, "/api/v1/conversations", nil)
		w := httptest.NewRecorder()

		d.router.ServeHTTP(w, r)

		req.Equal(http.StatusUnauthorized, w.Code)
	})
}

func TestMessageHandler(t *testing.T) {
	now := time.Now().UTC()
	conv := &domain.Conversation{ID: 1, ParticipantOne: 100, ParticipantTwo: 101, State: domain.LifecycleActive}

	t.Run("should list messages for a participant", func(t *testing.T) {
		req := require.New(t)
		d := newTestRouter(t)
		gomock.InOrder(
			d.conversations.EXPECT().RequireParticipant(gomock.Any(), int64(1), int64(100)).Return(conv, nil),
			d.messages.EXPECT().ListByConversation(gomock.Any(), int64(1)).Return([]*domain.Message{
				{ID: 1, ConversationID: 1, SenderID: 100, Content: "a", CreatedAt: now},
				{ID: 2, ConversationID: 1, SenderID: 101, Content: "b", CreatedAt: now},
			}, nil),
		)

		w := d.do(http.MethodGet, "/api/v1/conversations/1/messages", "")

		req.Equal(http.StatusOK, w.Code)
		var got []domain.Message
		decode(t, w, &got)
		req.Len(got, 2)
		req.Equal("a", got[0].Content)
	})

	t.Run("should not list messages for a stranger", func(t *testing.T) {
		req := require.New(t)
		d := newTestRouter(t)
		d.conversations.EXPECT().RequireParticipant(gomock.Any(), int64(1), int64(100)).Return(nil, apperrors.ErrNotParticipant)

		w := d.do(http.MethodGet, "/api/v1/conversations/1/messages", "")

		req.Equal(http.StatusForbidden, w.Code)
	})

	t.Run("should send a message through the relay", func(t *testing.T) {
		req := require.New(t)
		d := newTestRouter(t)
		d.submit = func(_ context.Context, c, s int64, content string) (*domain.Message, error) {
			req.Equal(int64(1), c)
			req.Equal(int64(100), s)
			return &domain.Message{ID: 9, ConversationID: c, SenderID: s, Content: content, CreatedAt: now}, nil
		}

		w := d.do(http.MethodPost, "/api/v1/conversations/1/messages", `{"content":"hello"}`)

		req.Equal(http.StatusCreated, w.Code)
		var got domain.Message
		decode(t, w, &got)
		req.Equal(int64(9), got.ID)
		req.Equal("hello", got.Content)
	})

	t.Run("should encode messages in camelCase", func(t *testing.T) {
		req := require.New(t)
		d := newTestRouter(t)
		d.submit = func(_ context.Context, c, s int64, content string) (*domain.Message, error) {
			return &domain.Message{ID: 9, ConversationID: c, SenderID: s, Content: content, CreatedAt: now}, nil
		}

		w := d.do(http.MethodPost, "/api/v1/conversations/1/messages", `{"content":"hello"}`)

		body := w.Body.String()
		req.Contains(body, `"conversationId":1`)
		req.Contains(body, `"senderId":100`)
		req.NotContains(body, "sender_id")
	})

	t.Run("should reject empty content before the relay", func(t *testing.T) {
		req := require.New(t)
		d := newTestRouter(t)

		w := d.do(http.MethodPost, "/api/v1/conversations/1/messages", `{"content":""}`)

		req.Equal(http.StatusBadRequest, w.Code)
	})

	t.Run("should pass relay errors through", func(t *testing.T) {
		req := require.New(t)
		d := newTestRouter(t)
		d.submit = func(context.Context, int64, int64, string) (*domain.Message, error) {
			return nil, apperrors.ErrContentTooLong
		}

		w := d.do(http.MethodPost, "/api/v1/conversations/1/messages", `{"content":"x"}`)

		req.Equal(http.StatusBadRequest, w.Code)
	})

	t.Run("should delete a single message", func(t *testing.T) {
		req := require.New(t)
		d := newTestRouter(t)
		d.conversations.EXPECT().RequireParticipant(gomock.Any(), int64(1), int64(100)).Return(conv, nil)
		d.messages.EXPECT().SoftDelete(gomock.Any(), int64(1), int64(5), int64(100)).Return(nil)

		w := d.do(http.MethodDelete, "/api/v1/conversations/1/messages/5", "")

		req.Equal(http.StatusOK, w.Code)
	})

	t.Run("should forbid deleting a message from another conversation", func(t *testing.T) {
		req := require.New(t)
		d := newTestRouter(t)
		d.conversations.EXPECT().RequireParticipant(gomock.Any(), int64(1), int64(100)).Return(conv, nil)
		d.messages.EXPECT().SoftDelete(gomock.Any(), int64(1), int64(5), int64(100)).Return(apperrors.ErrMessageMismatch)

		w := d.do(http.MethodDelete, "/api/v1/conversations/1/messages/5", "")

		req.Equal(http.StatusForbidden, w.Code)
	})

	t.Run("should clear all messages", func(t *testing.T) {
		req := require.New(t)
		d := newTestRouter(t)
		d.conversations.EXPECT().RequireParticipant(gomock.Any(), int64(1), int64(100)).Return(conv, nil)
		d.messages.EXPECT().SoftDeleteAll(gomock.Any(), int64(1), int64(100)).Return(int64(3), nil)

		w := d.do(http.MethodDelete, "/api/v1/conversations/1/messages", "")

		req.Equal(http.StatusOK, w.Code)
		var got struct {
			Deleted int64 `json:"deleted"`
		}
		decode(t, w, &got)
		req.Equal(int64(3), got.Deleted)
	})
}

func TestContactHandler(t *testing.T) {
	t.Run("should add a contact", func(t *testing.T) {
		req := require.New(t)
		d := newTestRouter(t)
		d.contacts.EXPECT().Add(gomock.Any(), int64(100), int64(101)).
			Return(&domain.Contact{ID: 1, UserID: 100, ContactID: 101, Username: "bob"}, nil)

		w := d.do(http.MethodPost, "/api/v1/contacts", `{"contactId":101}`)

		req.Equal(http.StatusCreated, w.Code)
		var got domain.Contact
		decode(t, w, &got)
		req.Equal("bob", got.Username)
	})

	t.Run("should reject adding yourself", func(t *testing.T) {
		req := require.New(t)
		d := newTestRouter(t)
		d.contacts.EXPECT().Add(gomock.Any(), int64(100), int64(100)).Return(nil, apperrors.ErrSelfContact)

		w := d.do(http.MethodPost, "/api/v1/contacts", `{"contactId":100}`)

		req.Equal(http.StatusBadRequest, w.Code)
	})

	t.Run("should list contacts", func(t *testing.T) {
		req := require.New(t)
		d := newTestRouter(t)
		d.contacts.EXPECT().List(gomock.Any(), int64(100)).Return([]*domain.Contact{{ID: 1, ContactID: 101}}, nil)

		w := d.do(http.MethodGet, "/api/v1/contacts", "")

		req.Equal(http.StatusOK, w.Code)
	})

	t.Run("should return 404 for an unknown contact", func(t *testing.T) {
		req := require.New(t)
		d := newTestRouter(t)
		d.contacts.EXPECT().Remove(gomock.Any(), int64(100), int64(101)).Return(apperrors.ErrContactNotFound)

		w := d.do(http.MethodDelete, "/api/v1/contacts/101", "")

		req.Equal(http.StatusNotFound, w.Code)
	})

	t.Run("should hide internal errors", func(t *testing.T) {
		req := require.New(t)
		d := newTestRouter(t)
		d.contacts.EXPECT().List(gomock.Any(), int64(100)).Return(nil, errors.New("connection refused"))

		w := d.do(http.MethodGet, "/api/v1/contacts", "")

		req.Equal(http.StatusInternalServerError, w.Code)
		resp := decode(t, w, nil)
		req.NotContains(resp.Message, "connection refused")
	})
}

func TestHealthHandler(t *testing.T) {
	router := func(h *HealthHandler) *gin.Engine {
		r := gin.New()
		r.GET("/health", h.Check)
		r.GET("/ready", h.Ready)
		return r
	}

	t.Run("should be ready when all checks pass", func(t *testing.T) {
		req := require.New(t)
		h := NewHealthHandler(HealthCheck{Name: "database", Check: func(context.Context) error { return nil }})
		w := httptest.NewRecorder()

		router(h).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ready", nil))

		req.Equal(http.StatusOK, w.Code)
		req.Contains(w.Body.String(), `"database":"ok"`)
	})

	t.Run("should report a failing dependency", func(t *testing.T) {
		req := require.New(t)
		h := NewHealthHandler(
			HealthCheck{Name: "database", Check: func(context.Context) error { return nil }},
			HealthCheck{Name: "redis", Check: func(context.Context) error { return errors.New("dial tcp: refused") }},
		)
		w := httptest.NewRecorder()

		router(h).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ready", nil))

		req.Equal(http.StatusServiceUnavailable, w.Code)
		req.Contains(w.Body.String(), "refused")
	})

	t.Run("should answer liveness without checks", func(t *testing.T) {
		req := require.New(t)
		h := NewHealthHandler(HealthCheck{Name: "redis", Check: func(context.Context) error { return errors.New("down") }})
		w := httptest.NewRecorder()

		router(h).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

		req.Equal(http.StatusOK, w.Code)
	})
}

func TestOriginChecker(t *testing.T) {
	newReq := func(origin string) *http.Request {
		r := httptest.NewRequest(http.MethodGet, "http://chat.example/ws", nil)
		if origin != "" {
			r.Header.Set("Origin", origin)
		}
		return r
	}

	t.Run("should allow any origin with a wildcard", func(t *testing.T) {
		require.True(t, originChecker([]string{"*"})(newReq("https://evil.example")))
	})

	t.Run("should allow listed and same host origins only", func(t *testing.T) {
		req := require.New(t)
		check := originChecker([]string{"https://app.example"})

		req.True(check(newReq("https://app.example")))
		req.True(check(newReq("http://chat.example")))
		req.True(check(newReq("")))
		req.False(check(newReq("https://evil.example")))
	})
}
