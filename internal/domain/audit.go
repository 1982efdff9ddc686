package domain

import (
	"time"
)

// AuditLog фиксирует логические удаления: история сохраняется, но кто и когда удалил - тоже
type AuditLog struct {
	ID             int64                  `json:"id"`
	EventTime      time.Time              `json:"event_time"`
	ActorUserID    int64                  `json:"actor_user_id"`
	ConversationID *int64                 `json:"conversation_id,omitempty"`
	EventType      string                 `json:"event_type"`
	Payload        map[string]interface{} `json:"payload"`
}

const (
	EventTypeConversationCreated = "CONVERSATION_CREATED"
	EventTypeConversationDeleted = "CONVERSATION_DELETED"
	EventTypeMessageDeleted      = "MESSAGE_DELETED"
	EventTypeMessagesCleared     = "MESSAGES_CLEARED"
	EventTypeContactRemoved      = "CONTACT_REMOVED"
)
