package model

import (
	"time"

	"github.com/google/uuid"
)

type Attachment struct {
	Id               uuid.UUID `gorm:"type:uuid;primaryKey"`
	ChatMessageId    uuid.UUID `gorm:"type:uuid;not null;index"`
	AuthorId         uuid.UUID `gorm:"type:uuid;not null;index"`
	OriginalFilename string    `gorm:"type:varchar(255);not null"`
	StoragePath      string    `gorm:"type:text;not null"`
	SizeBytes        int64     `gorm:"not null;default:0"`
	MimeType         string    `gorm:"type:varchar(100);not null;default:'application/octet-stream'"`
	UploadedAt       time.Time `gorm:"not null"`
}

func (Attachment) TableName() string {
	return "attachments"
}
