package entity

import (
	"time"

	"github.com/google/uuid"
)

// Custom model types. Instruction models are plain system-prompt presets,
// assistant models are backed by an upstream thread/run system with
// vector search, fine-tuned models point at a dedicated base model.
const (
	ModelTypeInstruction = "instruction"
	ModelTypeAssistant   = "assistant"
	ModelTypeFineTuned   = "fine_tuned"
)

// CustomModelConfig holds the serialized behavior settings of a custom model.
type CustomModelConfig struct {
	Instructions  string   `json:"instructions,omitempty"`
	Temperature   *float64 `json:"temperature,omitempty"`
	MaxTokens     *int     `json:"max_tokens,omitempty"`
	ReferenceText string   `json:"reference_text,omitempty"`
	AssistantId   string   `json:"assistant_id,omitempty"`
	ThreadId      string   `json:"thread_id,omitempty"`
	VectorStoreId string   `json:"vector_store_id,omitempty"`
	BaseModel     string   `json:"base_model,omitempty"`
}

type CustomModel struct {
	Id          uuid.UUID
	UserId      uuid.UUID
	Name        string
	Description string
	Type        string
	Config      CustomModelConfig
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
