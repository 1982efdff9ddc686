package domain

import (
	"time"
)

type Conversation struct {
	ID                      int64      `json:"id"`
	ParticipantOne          int64      `json:"participantOne"`
	ParticipantTwo          int64      `json:"participantTwo"`
	State                   Lifecycle  `json:"state"`
	CreatedAt               time.Time  `json:"createdAt"`
	UpdatedAt               time.Time  `json:"updatedAt"`
	ParticipantOneDeletedAt *time.Time `json:"-"`
	ParticipantTwoDeletedAt *time.Time `json:"-"`
	DeletedAt               *time.Time `json:"-"`
}

func (c *Conversation) HasParticipant(userID int64) bool {
	return c.ParticipantOne == userID || c.ParticipantTwo == userID
}

// OtherParticipant возвращает собеседника userID (0, если userID не участник)
func (c *Conversation) OtherParticipant(userID int64) int64 {
	switch userID {
	case c.ParticipantOne:
		return c.ParticipantTwo
	case c.ParticipantTwo:
		return c.ParticipantOne
	default:
		return 0
	}
}

// HiddenFor - участник удалил диалог из своего списка
func (c *Conversation) HiddenFor(userID int64) bool {
	switch userID {
	case c.ParticipantOne:
		return c.ParticipantOneDeletedAt != nil
	case c.ParticipantTwo:
		return c.ParticipantTwoDeletedAt != nil
	default:
		return false
	}
}

// RestoreFor возвращает диалог в список userID
func (c *Conversation) RestoreFor(userID int64) {
	switch userID {
	case c.ParticipantOne:
		c.ParticipantOneDeletedAt = nil
	case c.ParticipantTwo:
		c.ParticipantTwoDeletedAt = nil
	}
}

// ConversationSummary - строка списка диалогов пользователя
type ConversationSummary struct {
	ConversationID   int64       `json:"conversationId"`
	OtherParticipant UserSummary `json:"otherParticipant"`
	LastMessage      *string     `json:"lastMessage,omitempty"`
	LastMessageTime  *time.Time  `json:"lastMessageTime,omitempty"`
	CreatedAt        time.Time   `json:"createdAt"`
}
