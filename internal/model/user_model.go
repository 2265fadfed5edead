package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type User struct {
	Id             uuid.UUID      `gorm:"type:uuid;primaryKey"`
	Username       string         `gorm:"type:varchar(20);uniqueIndex;not null"`
	Email          string         `gorm:"type:varchar(128)"`
	FullName       string         `gorm:"type:varchar(128)"`
	HashedPassword string         `gorm:"type:varchar(128);not null"`
	IsActive       bool           `gorm:"default:true"`
	CreatedAt      time.Time      `gorm:"autoCreateTime"`
	UpdatedAt      time.Time      `gorm:"autoUpdateTime"`
	DeletedAt      gorm.DeletedAt `gorm:"index"`
}

func (User) TableName() string {
	return "users"
}
