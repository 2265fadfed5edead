package service

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"time"

	"ai-chat-be/internal/dto"
	"ai-chat-be/internal/entity"
	"ai-chat-be/internal/pkg/apperror"
	"ai-chat-be/internal/pkg/logger"
	"ai-chat-be/internal/repository/specification"
	"ai-chat-be/internal/repository/unitofwork"
	"ai-chat-be/pkg/events"
	"ai-chat-be/pkg/llm"

	"github.com/google/uuid"
)

type IModelService interface {
	Create(ctx context.Context, userId uuid.UUID, request *dto.CreateCustomModelRequest) (*dto.CustomModelResponse, error)
	GetAll(ctx context.Context, userId uuid.UUID) ([]*dto.CustomModelResponse, error)
	Get(ctx context.Context, userId uuid.UUID, id uuid.UUID) (*dto.CustomModelResponse, error)
	Delete(ctx context.Context, userId uuid.UUID, id uuid.UUID) error
	AttachFiles(ctx context.Context, userId uuid.UUID, id uuid.UUID, request *dto.AttachModelFilesRequest) error
}

type modelService struct {
	uowFactory       unitofwork.RepositoryFactory
	assistant        llm.AssistantProvider
	provider         llm.LLMProvider
	publisherService IPublisherService
	uploadDir        string
	log              logger.ILogger
}

func NewModelService(
	uowFactory unitofwork.RepositoryFactory,
	assistant llm.AssistantProvider,
	provider llm.LLMProvider,
	publisherService IPublisherService,
	uploadDir string,
	log logger.ILogger,
) IModelService {
	return &modelService{
		uowFactory:       uowFactory,
		assistant:        assistant,
		provider:         provider,
		publisherService: publisherService,
		uploadDir:        uploadDir,
		log:              log,
	}
}

// Create provisions a custom model. The assistant type also provisions
// upstream assistant and vector store handles before the row is saved.
func (ms *modelService) Create(ctx context.Context, userId uuid.UUID, request *dto.CreateCustomModelRequest) (*dto.CustomModelResponse, error) {
	now := time.Now()
	customModel := &entity.CustomModel{
		Id:          uuid.New(),
		UserId:      userId,
		Name:        strings.TrimSpace(request.Name),
		Description: request.Description,
		Type:        request.Type,
		Config: entity.CustomModelConfig{
			Instructions:  request.Instructions,
			Temperature:   request.Temperature,
			MaxTokens:     request.MaxTokens,
			ReferenceText: request.ReferenceText,
			BaseModel:     request.BaseModel,
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if customModel.Name == "" {
		return nil, apperror.InvalidArgument("model name must not be empty")
	}

	if request.Type == entity.ModelTypeAssistant {
		if ms.assistant == nil {
			return nil, apperror.InvalidArgument("assistant-backed models are not available")
		}
		baseModel := request.BaseModel
		if baseModel == "" {
			baseModel = ms.provider.DefaultModel()
		}
		assistantId, vectorStoreId, err := ms.assistant.CreateAssistant(ctx, customModel.Name, request.Instructions, baseModel)
		if err != nil {
			return nil, apperror.Upstream("failed to provision upstream assistant", err)
		}
		customModel.Config.AssistantId = assistantId
		customModel.Config.VectorStoreId = vectorStoreId
	}

	uow := ms.uowFactory.NewUnitOfWork(ctx)
	if err := uow.CustomModelRepository().Create(ctx, customModel); err != nil {
		ms.cleanupUpstream(ctx, customModel)
		return nil, apperror.Persistence("failed to save custom model", err)
	}

	if customModel.Config.ReferenceText != "" {
		ms.queueEmbedJob(ctx, customModel.Id)
	}

	ms.publisherService.PublishEvent(ctx, events.New(events.TypeModelCreated, map[string]interface{}{
		"custom_model_id": customModel.Id.String(),
		"user_id":         userId.String(),
		"type":            customModel.Type,
	}))

	return toModelResponse(customModel), nil
}

func (ms *modelService) GetAll(ctx context.Context, userId uuid.UUID) ([]*dto.CustomModelResponse, error) {
	uow := ms.uowFactory.NewUnitOfWork(ctx)
	models, err := uow.CustomModelRepository().FindAll(ctx,
		specification.UserOwnedBy{UserID: userId},
		specification.OrderBy{Field: "created_at", Desc: true},
	)
	if err != nil {
		return nil, apperror.Persistence("failed to list custom models", err)
	}

	response := make([]*dto.CustomModelResponse, 0, len(models))
	for _, m := range models {
		response = append(response, toModelResponse(m))
	}
	return response, nil
}

func (ms *modelService) Get(ctx context.Context, userId uuid.UUID, id uuid.UUID) (*dto.CustomModelResponse, error) {
	customModel, err := ms.ownedModel(ctx, userId, id)
	if err != nil {
		return nil, err
	}
	return toModelResponse(customModel), nil
}

// Delete removes the model row, its reference embeddings, and makes a
// best-effort pass at tearing down upstream resources. Upstream cleanup
// failures are logged, never fatal.
func (ms *modelService) Delete(ctx context.Context, userId uuid.UUID, id uuid.UUID) error {
	customModel, err := ms.ownedModel(ctx, userId, id)
	if err != nil {
		return err
	}

	ms.cleanupUpstream(ctx, customModel)

	uow := ms.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return apperror.Persistence("failed to open transaction", err)
	}
	defer uow.Rollback()

	if err := uow.ReferenceEmbeddingRepository().DeleteByCustomModelId(ctx, id); err != nil {
		return apperror.Persistence("failed to delete reference embeddings", err)
	}
	if err := uow.CustomModelRepository().Delete(ctx, id); err != nil {
		return apperror.Persistence("failed to delete custom model", err)
	}
	if err := uow.Commit(); err != nil {
		return apperror.Persistence("failed to commit model delete", err)
	}

	ms.publisherService.PublishEvent(ctx, events.New(events.TypeModelDeleted, map[string]interface{}{
		"custom_model_id": id.String(),
		"user_id":         userId.String(),
	}))
	return nil
}

// AttachFiles uploads previously-staged files into the model's vector
// store. Only assistant-backed models accept files.
func (ms *modelService) AttachFiles(ctx context.Context, userId uuid.UUID, id uuid.UUID, request *dto.AttachModelFilesRequest) error {
	customModel, err := ms.ownedModel(ctx, userId, id)
	if err != nil {
		return err
	}
	if customModel.Type != entity.ModelTypeAssistant {
		return apperror.InvalidArgument("files can only be attached to assistant-backed models")
	}
	if customModel.Config.VectorStoreId == "" {
		return apperror.InvalidArgument("custom model has no vector store")
	}

	entries, err := os.ReadDir(ms.uploadDir)
	if err != nil {
		return apperror.Persistence("failed to read upload directory", err)
	}

	for _, tempId := range request.AttachmentIds {
		var resolved string
		for _, entry := range entries {
			if !entry.IsDir() && strings.HasPrefix(entry.Name(), tempId) {
				resolved = entry.Name()
				break
			}
		}
		if resolved == "" {
			ms.log.Warn("ModelService", "staged file not found for temporary id, skipping", map[string]interface{}{
				"temp_id":         tempId,
				"custom_model_id": id.String(),
			})
			continue
		}

		path := filepath.Join(ms.uploadDir, resolved)
		if err := ms.assistant.AttachFile(ctx, customModel.Config.VectorStoreId, path); err != nil {
			return apperror.Upstream("failed to attach file to vector store", err)
		}
	}

	return nil
}

func (ms *modelService) ownedModel(ctx context.Context, userId, id uuid.UUID) (*entity.CustomModel, error) {
	uow := ms.uowFactory.NewUnitOfWork(ctx)
	customModel, err := uow.CustomModelRepository().FindOne(ctx,
		specification.ByID{ID: id},
		specification.UserOwnedBy{UserID: userId},
	)
	if err != nil {
		return nil, apperror.Persistence("failed to load custom model", err)
	}
	if customModel == nil {
		return nil, apperror.NotFound("custom model not found")
	}
	return customModel, nil
}

func (ms *modelService) cleanupUpstream(ctx context.Context, customModel *entity.CustomModel) {
	if ms.assistant == nil {
		return
	}
	if customModel.Config.AssistantId != "" {
		if err := ms.assistant.DeleteAssistant(ctx, customModel.Config.AssistantId); err != nil {
			ms.log.Warn("ModelService", "failed to delete upstream assistant", map[string]interface{}{
				"assistant_id": customModel.Config.AssistantId,
				"error":        err.Error(),
			})
		}
	}
	if customModel.Config.VectorStoreId != "" {
		if err := ms.assistant.DeleteVectorStore(ctx, customModel.Config.VectorStoreId); err != nil {
			ms.log.Warn("ModelService", "failed to delete upstream vector store", map[string]interface{}{
				"vector_store_id": customModel.Config.VectorStoreId,
				"error":           err.Error(),
			})
		}
	}
}

func (ms *modelService) queueEmbedJob(ctx context.Context, customModelId uuid.UUID) {
	payload, err := json.Marshal(dto.PublishEmbedDocMessage{CustomModelId: customModelId})
	if err != nil {
		ms.log.Error("ModelService", "failed to marshal embed job", map[string]interface{}{
			"custom_model_id": customModelId.String(),
		})
		return
	}
	if err := ms.publisherService.PublishEmbedJob(ctx, payload); err != nil {
		ms.log.Error("ModelService", "failed to queue embed job", map[string]interface{}{
			"custom_model_id": customModelId.String(),
			"error":           err.Error(),
		})
	}
}

func toModelResponse(m *entity.CustomModel) *dto.CustomModelResponse {
	return &dto.CustomModelResponse{
		Id:            m.Id,
		Name:          m.Name,
		Description:   m.Description,
		Type:          m.Type,
		Instructions:  m.Config.Instructions,
		Temperature:   m.Config.Temperature,
		MaxTokens:     m.Config.MaxTokens,
		ReferenceText: m.Config.ReferenceText,
		BaseModel:     m.Config.BaseModel,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}
