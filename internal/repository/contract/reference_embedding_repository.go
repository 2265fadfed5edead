package contract

import (
	"context"

	"ai-chat-be/internal/entity"

	"github.com/google/uuid"
)

type ReferenceEmbeddingRepository interface {
	CreateBulk(ctx context.Context, embeddings []*entity.ReferenceEmbedding) error
	DeleteByCustomModelId(ctx context.Context, customModelId uuid.UUID) error
	// FindNearest returns the top-k chunks of a custom model ordered by
	// cosine distance to the query vector.
	FindNearest(ctx context.Context, customModelId uuid.UUID, query []float32, limit int) ([]*entity.ReferenceEmbedding, error)
}
