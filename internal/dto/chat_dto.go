package dto

import (
	"time"

	"github.com/google/uuid"
)

// TurnMessageDTO is one message of the incoming turn history.
type TurnMessageDTO struct {
	Role    string `json:"role" validate:"required,oneof=user assistant system"`
	Content string `json:"content" validate:"required"`
}

type SendChatRequest struct {
	Messages      []TurnMessageDTO `json:"messages" validate:"required,min=1,dive"`
	Purpose       string           `json:"purpose,omitempty"`
	ChatSessionId *uuid.UUID       `json:"chat_session_id,omitempty"`
	CustomModelId *uuid.UUID       `json:"custom_model_id,omitempty"`
	AttachmentIds []string         `json:"attachment_ids,omitempty" validate:"max=10"`
}

type SendChatResponse struct {
	ChatSessionId uuid.UUID `json:"chat_session_id"`
	Reply         string    `json:"reply"`
	ModelUsed     string    `json:"model_used"`
}

// StreamChatRequest carries the same turn shape as SendChatRequest but
// arrives query-encoded on the websocket upgrade.
type StreamChatRequest struct {
	Message       string     `json:"message" validate:"required"`
	Purpose       string     `json:"purpose,omitempty"`
	ChatSessionId *uuid.UUID `json:"chat_session_id,omitempty"`
	CustomModelId *uuid.UUID `json:"custom_model_id,omitempty"`
	AttachmentIds []string   `json:"attachment_ids,omitempty"`
}

// StreamEvent is one server-to-client event of the streaming protocol.
type StreamEvent struct {
	Chunk     string `json:"chunk,omitempty"`
	Error     string `json:"error,omitempty"`
	Done      bool   `json:"done,omitempty"`
	SessionId string `json:"session_id,omitempty"`
}

type AttachmentDTO struct {
	Id               uuid.UUID `json:"id"`
	OriginalFilename string    `json:"original_filename"`
	SizeBytes        int64     `json:"size_bytes"`
	MimeType         string    `json:"mime_type"`
}

type GetChatHistoryResponse struct {
	Id          uuid.UUID       `json:"id"`
	Role        string          `json:"role"`
	Content     string          `json:"content"`
	ModelUsed   *string         `json:"model_used,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	EditedAt    *time.Time      `json:"edited_at,omitempty"`
	Attachments []AttachmentDTO `json:"attachments,omitempty"`
}

type GetAllSessionsResponse struct {
	Id        uuid.UUID `json:"id"`
	Title     string    `json:"title"`
	Purpose   string    `json:"purpose,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type RenameSessionRequest struct {
	Title string `json:"title" validate:"required"`
}

// SetSystemPromptRequest distinguishes "no change" (nil) from clearing
// the prompt (empty string).
type SetSystemPromptRequest struct {
	SystemPrompt *string `json:"system_prompt"`
}

// UpdateSessionRequest is the PATCH body for partial session updates.
// Nil fields are left untouched.
type UpdateSessionRequest struct {
	Title        *string `json:"title,omitempty"`
	SystemPrompt *string `json:"system_prompt,omitempty"`
}

type EditMessageRequest struct {
	Content string `json:"content" validate:"required"`
}

type SearchMessagesResponse struct {
	Id            uuid.UUID `json:"id"`
	ChatSessionId uuid.UUID `json:"chat_session_id"`
	Role          string    `json:"role"`
	Content       string    `json:"content"`
	CreatedAt     time.Time `json:"created_at"`
}
