package domain

import (
	"time"
)

// Message принадлежит ровно одному диалогу; содержимое не меняется после отправки
type Message struct {
	ID             int64      `json:"id"`
	ConversationID int64      `json:"conversationId"`
	SenderID       int64      `json:"senderId"`
	Content        string     `json:"content"`
	State          Lifecycle  `json:"-"`
	CreatedAt      time.Time  `json:"createdAt"`
	DeletedAt      *time.Time `json:"-"`
}
