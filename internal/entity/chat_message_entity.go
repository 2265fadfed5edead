package entity

import (
	"time"

	"github.com/google/uuid"
)

type ChatMessage struct {
	Id            uuid.UUID
	ChatSessionId uuid.UUID
	AuthorId      uuid.UUID
	Role          string
	Content       string
	ModelUsed     *string
	CreatedAt     time.Time
	EditedAt      *time.Time
	IsDeleted     bool
	Attachments   []*Attachment
}
