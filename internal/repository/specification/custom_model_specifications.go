package specification

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ByCustomModelID struct {
	CustomModelID uuid.UUID
}

func (s ByCustomModelID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("custom_model_id = ?", s.CustomModelID)
}

type ByModelType struct {
	Type string
}

func (s ByModelType) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("type = ?", s.Type)
}
