package contract

import (
	"context"

	"ai-chat-be/internal/entity"
	"ai-chat-be/internal/repository/specification"
)

type FeedbackRepository interface {
	Create(ctx context.Context, feedback *entity.ImprovementFeedback) error
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ImprovementFeedback, error)
}
