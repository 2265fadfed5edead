package entity

import (
	"time"

	"github.com/google/uuid"
)

// ImprovementFeedback records a thumbs up/down on a prompt improvement.
type ImprovementFeedback struct {
	Id             uuid.UUID
	UserId         uuid.UUID
	ImprovementId  string
	OriginalPrompt string
	ImprovedPrompt string
	IsPositive     bool
	Style          string
	Domain         string
	Strength       float64
	CreatedAt      time.Time
}
