package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
)

type ReferenceEmbedding struct {
	Id             uuid.UUID       `gorm:"type:uuid;primaryKey"`
	CustomModelId  uuid.UUID       `gorm:"type:uuid;not null;index"`
	ChunkIndex     int             `gorm:"default:0"` // 0-based index for ordering
	Content        string          `gorm:"type:text"`
	EmbeddingValue pgvector.Vector `gorm:"type:vector(768)"` // width matches EMBEDDING_DIMENSIONS; openai output is shortened to fit, nomic is natively 768
	CreatedAt      time.Time       `gorm:"autoCreateTime"`
	DeletedAt      gorm.DeletedAt  `gorm:"index"`
}

func (ReferenceEmbedding) TableName() string {
	return "reference_embeddings"
}
