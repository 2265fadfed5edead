package implementation

import (
	"context"

	"ai-chat-be/internal/entity"
	"ai-chat-be/internal/mapper"
	"ai-chat-be/internal/model"
	"ai-chat-be/internal/repository/contract"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ReferenceEmbeddingRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.ReferenceEmbeddingMapper
}

func NewReferenceEmbeddingRepository(db *gorm.DB) contract.ReferenceEmbeddingRepository {
	return &ReferenceEmbeddingRepositoryImpl{
		db:     db,
		mapper: mapper.NewReferenceEmbeddingMapper(),
	}
}

func (r *ReferenceEmbeddingRepositoryImpl) CreateBulk(ctx context.Context, embeddings []*entity.ReferenceEmbedding) error {
	if len(embeddings) == 0 {
		return nil
	}
	models := make([]*model.ReferenceEmbedding, len(embeddings))
	for i, e := range embeddings {
		models[i] = r.mapper.ToModel(e)
	}
	return r.db.WithContext(ctx).Create(models).Error
}

func (r *ReferenceEmbeddingRepositoryImpl) DeleteByCustomModelId(ctx context.Context, customModelId uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("custom_model_id = ?", customModelId).
		Delete(&model.ReferenceEmbedding{}).Error
}

func (r *ReferenceEmbeddingRepositoryImpl) FindNearest(ctx context.Context, customModelId uuid.UUID, query []float32, limit int) ([]*entity.ReferenceEmbedding, error) {
	var models []*model.ReferenceEmbedding
	if err := r.db.WithContext(ctx).
		Where("custom_model_id = ?", customModelId).
		Clauses(clause.OrderBy{Expression: clause.Expr{
			SQL:  "embedding_value <=> ?",
			Vars: []interface{}{pgvector.NewVector(query)},
		}}).
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, err
	}
	entities := make([]*entity.ReferenceEmbedding, len(models))
	for i, m := range models {
		entities[i] = r.mapper.ToEntity(m)
	}
	return entities, nil
}
