package entity

import (
	"time"

	"github.com/google/uuid"
)

// ReferenceEmbedding is one embedded chunk of a custom model's reference
// document, used for local vector retrieval at prompt-build time.
type ReferenceEmbedding struct {
	Id            uuid.UUID
	CustomModelId uuid.UUID
	ChunkIndex    int
	Content       string
	Embedding     []float32
	CreatedAt     time.Time
}
