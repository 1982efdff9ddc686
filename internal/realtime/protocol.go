package realtime

import (
	"encoding/json"
	"net/http"

	"chat_backend/internal/domain"
	apperrors "chat_backend/pkg/errors"
)

// Типы событий JSON-протокола
const (
	EventJoinConversation  = "joinConversation"
	EventLeaveConversation = "leaveConversation"
	EventSendMessage       = "sendMessage"

	EventJoined     = "joined"
	EventLeft       = "left"
	EventNewMessage = "newMessage"
	EventMessageAck = "messageAck"
	EventError      = "error"
)

// Коды ошибок в событии error
const (
	CodeBadRequest   = "bad_request"
	CodeUnauthorized = "unauthorized"
	CodeForbidden    = "forbidden"
	CodeNotFound     = "not_found"
	CodeConflict     = "conflict"
	CodeInternal     = "internal"
)

// ClientEvent - входящий кадр от клиента
type ClientEvent struct {
	Type            string `json:"type"`
	ConversationID  int64  `json:"conversationId"`
	SenderID        int64  `json:"senderId,omitempty"`
	Content         string `json:"content,omitempty"`
	ClientMessageID string `json:"clientMessageId,omitempty"`
}

type RoomEvent struct {
	Type           string `json:"type"`
	ConversationID int64  `json:"conversationId"`
}

type NewMessageEvent struct {
	Type    string          `json:"type"`
	Message *domain.Message `json:"message"`
}

type MessageAckEvent struct {
	Type            string          `json:"type"`
	ClientMessageID string          `json:"clientMessageId,omitempty"`
	Message         *domain.Message `json:"message"`
}

type ErrorEvent struct {
	Type            string `json:"type"`
	Code            string `json:"code"`
	Message         string `json:"message"`
	ConversationID  int64  `json:"conversationId,omitempty"`
	ClientMessageID string `json:"clientMessageId,omitempty"`
}

func newErrorEvent(err error, conversationID int64, clientMessageID string) ErrorEvent {
	return ErrorEvent{
		Type:            EventError,
		Code:            ErrorCode(err),
		Message:         apperrors.PublicMessage(err),
		ConversationID:  conversationID,
		ClientMessageID: clientMessageID,
	}
}

// ErrorCode сводит таксономию ошибок к коду протокола
func ErrorCode(err error) string {
	switch apperrors.HTTPStatusFromError(err) {
	case http.StatusBadRequest:
		return CodeBadRequest
	case http.StatusUnauthorized:
		return CodeUnauthorized
	case http.StatusForbidden:
		return CodeForbidden
	case http.StatusNotFound:
		return CodeNotFound
	case http.StatusConflict:
		return CodeConflict
	default:
		return CodeInternal
	}
}

func encode(v interface{}) []byte {
	data, err := json.Marshal(v)
	if err != nil {
		// события состоят из примитивов и domain.Message, ошибка здесь - баг
		panic(err)
	}
	return data
}
