package dto

import "github.com/google/uuid"

// PublishEmbedDocMessage asks the consumer to (re)embed a custom model's
// reference document.
type PublishEmbedDocMessage struct {
	CustomModelId uuid.UUID `json:"custom_model_id"`
}
