package unitofwork

import (
	"context"

	"ai-chat-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	UserRepository() contract.UserRepository
	ChatSessionRepository() contract.ChatSessionRepository
	ChatMessageRepository() contract.ChatMessageRepository
	AttachmentRepository() contract.AttachmentRepository
	CustomModelRepository() contract.CustomModelRepository
	ReferenceEmbeddingRepository() contract.ReferenceEmbeddingRepository
	FeedbackRepository() contract.FeedbackRepository
}
