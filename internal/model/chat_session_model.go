package model

import (
	"time"

	"github.com/google/uuid"
)

type ChatSession struct {
	Id           uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserId       uuid.UUID `gorm:"type:uuid;not null;index"` // User ownership for data isolation
	Title        string    `gorm:"type:text;not null;default:''"`
	Purpose      string    `gorm:"type:varchar(128);not null;default:''"`
	SystemPrompt *string   `gorm:"type:text"`
	CreatedAt    time.Time `gorm:"not null"`
	UpdatedAt    time.Time `gorm:"not null;index"`
}

func (ChatSession) TableName() string {
	return "chat_sessions"
}
