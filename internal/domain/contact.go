package domain

import (
	"time"
)

// Contact - направленное ребро user_id -> contact_id
type Contact struct {
	ID        int64      `json:"id"`
	UserID    int64      `json:"userId"`
	ContactID int64      `json:"contactId"`
	Username  string     `json:"username"`
	Email     string     `json:"email"`
	State     Lifecycle  `json:"-"`
	CreatedAt time.Time  `json:"createdAt"`
	DeletedAt *time.Time `json:"-"`
}
