package entity

import (
	"time"

	"github.com/google/uuid"
)

type Attachment struct {
	Id               uuid.UUID
	ChatMessageId    uuid.UUID
	AuthorId         uuid.UUID
	OriginalFilename string
	StoragePath      string
	SizeBytes        int64
	MimeType         string
	UploadedAt       time.Time
}
