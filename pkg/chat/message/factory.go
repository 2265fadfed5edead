package message

import (
	"strings"
	"time"

	"ai-chat-be/internal/entity"

	"github.com/google/uuid"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"

	// ErrorPrefix tags assistant messages that record an upstream
	// failure, so clients can tell them apart from genuine model output.
	ErrorPrefix = "[error] "

	// EmptyReplyFallback replaces an empty reply from a successful call.
	// A successful turn never persists an empty content string.
	EmptyReplyFallback = "The model returned an empty response."
)

// NewUserMessage builds the user-role message of a turn.
func NewUserMessage(sessionId, authorId uuid.UUID, content string, now time.Time) *entity.ChatMessage {
	return &entity.ChatMessage{
		Id:            uuid.New(),
		ChatSessionId: sessionId,
		AuthorId:      authorId,
		Role:          RoleUser,
		Content:       content,
		CreatedAt:     now,
	}
}

// NewAssistantMessage builds the assistant-role message of a successful
// turn, normalizing an empty reply to the fixed fallback string.
func NewAssistantMessage(sessionId, authorId uuid.UUID, content, modelUsed string, now time.Time) *entity.ChatMessage {
	if strings.TrimSpace(content) == "" {
		content = EmptyReplyFallback
	}
	return &entity.ChatMessage{
		Id:            uuid.New(),
		ChatSessionId: sessionId,
		AuthorId:      authorId,
		Role:          RoleAssistant,
		Content:       content,
		ModelUsed:     &modelUsed,
		CreatedAt:     now,
	}
}

// NewErrorMessage builds the error-tagged assistant message persisted when
// the upstream call fails, keeping the conversation record consistent.
func NewErrorMessage(sessionId, authorId uuid.UUID, cause error, modelUsed string, now time.Time) *entity.ChatMessage {
	msg := &entity.ChatMessage{
		Id:            uuid.New(),
		ChatSessionId: sessionId,
		AuthorId:      authorId,
		Role:          RoleAssistant,
		Content:       ErrorPrefix + cause.Error(),
		CreatedAt:     now,
	}
	if modelUsed != "" {
		msg.ModelUsed = &modelUsed
	}
	return msg
}

// IsErrorTagged reports whether a message content records a failed turn.
func IsErrorTagged(content string) bool {
	return strings.HasPrefix(content, ErrorPrefix)
}
