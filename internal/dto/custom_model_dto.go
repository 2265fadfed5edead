package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateCustomModelRequest struct {
	Name          string   `json:"name" validate:"required,max=120"`
	Description   string   `json:"description,omitempty" validate:"max=500"`
	Type          string   `json:"type" validate:"required,oneof=instruction assistant fine_tuned"`
	Instructions  string   `json:"instructions,omitempty"`
	Temperature   *float64 `json:"temperature,omitempty" validate:"omitempty,gte=0,lte=2"`
	MaxTokens     *int     `json:"max_tokens,omitempty" validate:"omitempty,gt=0"`
	ReferenceText string   `json:"reference_text,omitempty"`
	BaseModel     string   `json:"base_model,omitempty"`
}

type CustomModelResponse struct {
	Id            uuid.UUID `json:"id"`
	Name          string    `json:"name"`
	Description   string    `json:"description,omitempty"`
	Type          string    `json:"type"`
	Instructions  string    `json:"instructions,omitempty"`
	Temperature   *float64  `json:"temperature,omitempty"`
	MaxTokens     *int      `json:"max_tokens,omitempty"`
	ReferenceText string    `json:"reference_text,omitempty"`
	BaseModel     string    `json:"base_model,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

type AttachModelFilesRequest struct {
	AttachmentIds []string `json:"attachment_ids" validate:"required,min=1,max=10"`
}
