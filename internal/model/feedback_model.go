package model

import (
	"time"

	"github.com/google/uuid"
)

type ImprovementFeedback struct {
	Id             uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserId         uuid.UUID `gorm:"type:uuid;not null;index"`
	ImprovementId  string    `gorm:"type:varchar(36);not null;index"`
	OriginalPrompt string    `gorm:"type:text;not null"`
	ImprovedPrompt string    `gorm:"type:text;not null"`
	IsPositive     bool      `gorm:"not null"`
	Style          string    `gorm:"type:varchar(20)"` // balanced, concise, detailed
	Domain         string    `gorm:"type:varchar(20)"` // business, technical
	Strength       float64   `gorm:"not null;default:0.5"`
	CreatedAt      time.Time `gorm:"autoCreateTime"`
}

func (ImprovementFeedback) TableName() string {
	return "improvement_feedback"
}
