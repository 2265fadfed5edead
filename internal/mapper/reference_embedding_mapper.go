package mapper

import (
	"ai-chat-be/internal/entity"
	"ai-chat-be/internal/model"

	"github.com/pgvector/pgvector-go"
)

type ReferenceEmbeddingMapper struct{}

func NewReferenceEmbeddingMapper() *ReferenceEmbeddingMapper {
	return &ReferenceEmbeddingMapper{}
}

func (m *ReferenceEmbeddingMapper) ToEntity(e *model.ReferenceEmbedding) *entity.ReferenceEmbedding {
	if e == nil {
		return nil
	}

	return &entity.ReferenceEmbedding{
		Id:            e.Id,
		CustomModelId: e.CustomModelId,
		ChunkIndex:    e.ChunkIndex,
		Content:       e.Content,
		Embedding:     e.EmbeddingValue.Slice(),
		CreatedAt:     e.CreatedAt,
	}
}

func (m *ReferenceEmbeddingMapper) ToModel(e *entity.ReferenceEmbedding) *model.ReferenceEmbedding {
	if e == nil {
		return nil
	}

	return &model.ReferenceEmbedding{
		Id:             e.Id,
		CustomModelId:  e.CustomModelId,
		ChunkIndex:     e.ChunkIndex,
		Content:        e.Content,
		EmbeddingValue: pgvector.NewVector(e.Embedding),
		CreatedAt:      e.CreatedAt,
	}
}
