package specification

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ByChatSessionID struct {
	ChatSessionID uuid.UUID
}

func (s ByChatSessionID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("chat_session_id = ?", s.ChatSessionID)
}

type ByChatMessageID struct {
	ChatMessageID uuid.UUID
}

func (s ByChatMessageID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("chat_message_id = ?", s.ChatMessageID)
}

type ByChatMessageIDs struct {
	ChatMessageIDs []uuid.UUID
}

func (s ByChatMessageIDs) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("chat_message_id IN ?", s.ChatMessageIDs)
}

type ByAuthorID struct {
	AuthorID uuid.UUID
}

func (s ByAuthorID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("author_id = ?", s.AuthorID)
}

type ByRole struct {
	Role string
}

func (s ByRole) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("role = ?", s.Role)
}

// NotDeleted excludes soft-deleted messages. Messages carry an explicit
// is_deleted flag instead of gorm.DeletedAt so deleted rows stay readable
// through debug queries.
type NotDeleted struct{}

func (s NotDeleted) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("is_deleted = ?", false)
}

// ContentContains applies a case-insensitive substring match on content.
type ContentContains struct {
	Query string
}

func (s ContentContains) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("content ILIKE ?", "%"+s.Query+"%")
}
