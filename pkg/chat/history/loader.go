package history

import (
	"context"

	"ai-chat-be/internal/entity"
	"ai-chat-be/internal/pkg/apperror"
	"ai-chat-be/internal/repository/specification"
	"ai-chat-be/internal/repository/unitofwork"
	"ai-chat-be/pkg/llm"

	"github.com/google/uuid"
)

// Loader reads the visible history of a session: non-deleted messages in
// ascending creation order, each enriched with its attachments.
type Loader struct{}

func NewLoader() *Loader {
	return &Loader{}
}

func (l *Loader) Load(ctx context.Context, uow unitofwork.UnitOfWork, sessionId uuid.UUID) ([]*entity.ChatMessage, error) {
	messages, err := uow.ChatMessageRepository().FindAll(ctx,
		specification.ByChatSessionID{ChatSessionID: sessionId},
		specification.NotDeleted{},
		specification.OrderBy{Field: "created_at"},
	)
	if err != nil {
		return nil, apperror.Persistence("failed to load chat history", err)
	}
	if len(messages) == 0 {
		return []*entity.ChatMessage{}, nil
	}

	messageIds := make([]uuid.UUID, len(messages))
	for i, msg := range messages {
		messageIds[i] = msg.Id
	}

	attachments, err := uow.AttachmentRepository().FindAllByMessageIds(ctx, messageIds)
	if err != nil {
		return nil, apperror.Persistence("failed to load attachments", err)
	}

	byMessage := make(map[uuid.UUID][]*entity.Attachment)
	for _, att := range attachments {
		byMessage[att.ChatMessageId] = append(byMessage[att.ChatMessageId], att)
	}
	for _, msg := range messages {
		msg.Attachments = byMessage[msg.Id]
	}

	return messages, nil
}

// ToLLMMessages converts stored history into the provider-agnostic shape.
func ToLLMMessages(messages []*entity.ChatMessage) []llm.Message {
	out := make([]llm.Message, len(messages))
	for i, msg := range messages {
		out[i] = llm.Message{
			Role:    msg.Role,
			Content: msg.Content,
		}
	}
	return out
}
