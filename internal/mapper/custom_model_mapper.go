package mapper

import (
	"encoding/json"

	"ai-chat-be/internal/entity"
	"ai-chat-be/internal/model"

	"gorm.io/datatypes"
)

type CustomModelMapper struct{}

func NewCustomModelMapper() *CustomModelMapper {
	return &CustomModelMapper{}
}

func (m *CustomModelMapper) ToEntity(cm *model.CustomModel) *entity.CustomModel {
	if cm == nil {
		return nil
	}

	var cfg entity.CustomModelConfig
	if len(cm.Config) > 0 {
		// A malformed config column falls back to zero values rather than
		// failing the read.
		_ = json.Unmarshal(cm.Config, &cfg)
	}

	return &entity.CustomModel{
		Id:          cm.Id,
		UserId:      cm.UserId,
		Name:        cm.Name,
		Description: cm.Description,
		Type:        cm.Type,
		Config:      cfg,
		CreatedAt:   cm.CreatedAt,
		UpdatedAt:   cm.UpdatedAt,
	}
}

func (m *CustomModelMapper) ToModel(cm *entity.CustomModel) (*model.CustomModel, error) {
	if cm == nil {
		return nil, nil
	}

	raw, err := json.Marshal(cm.Config)
	if err != nil {
		return nil, err
	}

	return &model.CustomModel{
		Id:          cm.Id,
		UserId:      cm.UserId,
		Name:        cm.Name,
		Description: cm.Description,
		Type:        cm.Type,
		Config:      datatypes.JSON(raw),
		CreatedAt:   cm.CreatedAt,
		UpdatedAt:   cm.UpdatedAt,
	}, nil
}

func (m *CustomModelMapper) ToEntities(models []*model.CustomModel) []*entity.CustomModel {
	entities := make([]*entity.CustomModel, len(models))
	for i, cm := range models {
		entities[i] = m.ToEntity(cm)
	}
	return entities
}
