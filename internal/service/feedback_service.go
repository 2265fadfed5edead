package service

import (
	"context"
	"time"

	"ai-chat-be/internal/dto"
	"ai-chat-be/internal/entity"
	"ai-chat-be/internal/pkg/apperror"
	"ai-chat-be/internal/repository/specification"
	"ai-chat-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

type IFeedbackService interface {
	Submit(ctx context.Context, userId uuid.UUID, request *dto.SubmitFeedbackRequest) error
	List(ctx context.Context, userId uuid.UUID) ([]*dto.GetFeedbackResponse, error)
}

type feedbackService struct {
	uowFactory unitofwork.RepositoryFactory
}

func NewFeedbackService(uowFactory unitofwork.RepositoryFactory) IFeedbackService {
	return &feedbackService{uowFactory: uowFactory}
}

func (fs *feedbackService) Submit(ctx context.Context, userId uuid.UUID, request *dto.SubmitFeedbackRequest) error {
	feedback := &entity.ImprovementFeedback{
		Id:             uuid.New(),
		UserId:         userId,
		ImprovementId:  request.ImprovementId,
		OriginalPrompt: request.OriginalPrompt,
		ImprovedPrompt: request.ImprovedPrompt,
		IsPositive:     request.IsPositive,
		Style:          request.Style,
		Domain:         request.Domain,
		Strength:       request.Strength,
		CreatedAt:      time.Now(),
	}

	uow := fs.uowFactory.NewUnitOfWork(ctx)
	if err := uow.FeedbackRepository().Create(ctx, feedback); err != nil {
		return apperror.Persistence("failed to save feedback", err)
	}
	return nil
}

func (fs *feedbackService) List(ctx context.Context, userId uuid.UUID) ([]*dto.GetFeedbackResponse, error) {
	uow := fs.uowFactory.NewUnitOfWork(ctx)
	entries, err := uow.FeedbackRepository().FindAll(ctx,
		specification.UserOwnedBy{UserID: userId},
		specification.OrderBy{Field: "created_at", Desc: true},
	)
	if err != nil {
		return nil, apperror.Persistence("failed to list feedback", err)
	}

	response := make([]*dto.GetFeedbackResponse, 0, len(entries))
	for _, entry := range entries {
		response = append(response, &dto.GetFeedbackResponse{
			Id:             entry.Id,
			ImprovementId:  entry.ImprovementId,
			OriginalPrompt: entry.OriginalPrompt,
			ImprovedPrompt: entry.ImprovedPrompt,
			IsPositive:     entry.IsPositive,
			Style:          entry.Style,
			Domain:         entry.Domain,
			Strength:       entry.Strength,
			CreatedAt:      entry.CreatedAt,
		})
	}
	return response, nil
}
