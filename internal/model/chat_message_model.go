package model

import (
	"time"

	"github.com/google/uuid"
)

type ChatMessage struct {
	Id            uuid.UUID  `gorm:"type:uuid;primaryKey"`
	ChatSessionId uuid.UUID  `gorm:"type:uuid;not null;index"`
	AuthorId      uuid.UUID  `gorm:"type:uuid;not null;index"`
	Role          string     `gorm:"type:varchar(20);not null"`
	Content       string     `gorm:"type:text;not null"`
	ModelUsed     *string    `gorm:"type:varchar(100)"`
	CreatedAt     time.Time  `gorm:"not null;index"`
	EditedAt      *time.Time
	IsDeleted     bool `gorm:"not null;default:false;index"`
}

func (ChatMessage) TableName() string {
	return "chat_messages"
}
