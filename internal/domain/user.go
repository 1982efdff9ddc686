package domain

import (
	"time"
)

// User нужен ядру только как цель внешнего ключа и источник username
type User struct {
	ID           int64      `json:"id"`
	Username     string     `json:"username"`
	Email        string     `json:"email"`
	PhotoProfile *string    `json:"photoProfile,omitempty"`
	State        Lifecycle  `json:"-"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
	DeletedAt    *time.Time `json:"-"`
}

// UserSummary - собеседник в списках диалогов и контактов
type UserSummary struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}
