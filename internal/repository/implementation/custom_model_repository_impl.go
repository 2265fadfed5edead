package implementation

import (
	"context"
	"errors"

	"ai-chat-be/internal/entity"
	"ai-chat-be/internal/mapper"
	"ai-chat-be/internal/model"
	"ai-chat-be/internal/repository/contract"
	"ai-chat-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CustomModelRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.CustomModelMapper
}

func NewCustomModelRepository(db *gorm.DB) contract.CustomModelRepository {
	return &CustomModelRepositoryImpl{
		db:     db,
		mapper: mapper.NewCustomModelMapper(),
	}
}

func (r *CustomModelRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *CustomModelRepositoryImpl) Create(ctx context.Context, customModel *entity.CustomModel) error {
	m, err := r.mapper.ToModel(customModel)
	if err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*customModel = *r.mapper.ToEntity(m)
	return nil
}

func (r *CustomModelRepositoryImpl) Update(ctx context.Context, customModel *entity.CustomModel) error {
	m, err := r.mapper.ToModel(customModel)
	if err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Save(m).Error; err != nil {
		return err
	}
	*customModel = *r.mapper.ToEntity(m)
	return nil
}

func (r *CustomModelRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.CustomModel{}, id).Error
}

func (r *CustomModelRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.CustomModel, error) {
	var m model.CustomModel
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *CustomModelRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.CustomModel, error) {
	var models []*model.CustomModel
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}
