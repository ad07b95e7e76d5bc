package models

import "time"

type ChatRole string

const (
	RoleUser      ChatRole = "user"
	RoleAssistant ChatRole = "assistant"
)

// MaxChatMessages caps the persisted advisory conversation.
const MaxChatMessages = 10

type ChatMessage struct {
	ID        string    `gorm:"primaryKey;size:64" json:"id"`
	Role      ChatRole  `gorm:"size:16" json:"role"`
	Content   string    `gorm:"type:text" json:"content"`
	CreatedAt time.Time `json:"created_at"`
	// Seq orders messages by insertion; eviction removes the lowest.
	Seq int64 `gorm:"index" json:"-"`
}
