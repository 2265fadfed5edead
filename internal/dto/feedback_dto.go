package dto

import (
	"time"

	"github.com/google/uuid"
)

type SubmitFeedbackRequest struct {
	ImprovementId  string  `json:"improvement_id" validate:"required"`
	OriginalPrompt string  `json:"original_prompt" validate:"required"`
	ImprovedPrompt string  `json:"improved_prompt" validate:"required"`
	IsPositive     bool    `json:"is_positive"`
	Style          string  `json:"style,omitempty"`
	Domain         string  `json:"domain,omitempty"`
	Strength       float64 `json:"strength,omitempty" validate:"gte=0,lte=1"`
}

type GetFeedbackResponse struct {
	Id             uuid.UUID `json:"id"`
	ImprovementId  string    `json:"improvement_id"`
	OriginalPrompt string    `json:"original_prompt"`
	ImprovedPrompt string    `json:"improved_prompt"`
	IsPositive     bool      `json:"is_positive"`
	Style          string    `json:"style,omitempty"`
	Domain         string    `json:"domain,omitempty"`
	Strength       float64   `json:"strength,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}
