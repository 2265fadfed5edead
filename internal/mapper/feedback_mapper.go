package mapper

import (
	"ai-chat-be/internal/entity"
	"ai-chat-be/internal/model"
)

type FeedbackMapper struct{}

func NewFeedbackMapper() *FeedbackMapper {
	return &FeedbackMapper{}
}

func (m *FeedbackMapper) ToEntity(f *model.ImprovementFeedback) *entity.ImprovementFeedback {
	if f == nil {
		return nil
	}

	return &entity.ImprovementFeedback{
		Id:             f.Id,
		UserId:         f.UserId,
		ImprovementId:  f.ImprovementId,
		OriginalPrompt: f.OriginalPrompt,
		ImprovedPrompt: f.ImprovedPrompt,
		IsPositive:     f.IsPositive,
		Style:          f.Style,
		Domain:         f.Domain,
		Strength:       f.Strength,
		CreatedAt:      f.CreatedAt,
	}
}

func (m *FeedbackMapper) ToModel(f *entity.ImprovementFeedback) *model.ImprovementFeedback {
	if f == nil {
		return nil
	}

	return &model.ImprovementFeedback{
		Id:             f.Id,
		UserId:         f.UserId,
		ImprovementId:  f.ImprovementId,
		OriginalPrompt: f.OriginalPrompt,
		ImprovedPrompt: f.ImprovedPrompt,
		IsPositive:     f.IsPositive,
		Style:          f.Style,
		Domain:         f.Domain,
		Strength:       f.Strength,
		CreatedAt:      f.CreatedAt,
	}
}
