package contract

import (
	"context"

	"ai-chat-be/internal/entity"
	"ai-chat-be/internal/repository/specification"

	"github.com/google/uuid"
)

type CustomModelRepository interface {
	Create(ctx context.Context, customModel *entity.CustomModel) error
	Update(ctx context.Context, customModel *entity.CustomModel) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.CustomModel, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.CustomModel, error)
}
