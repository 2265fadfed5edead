package entity

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	Id             uuid.UUID
	Username       string
	Email          string
	FullName       string
	HashedPassword string
	IsActive       bool
	CreatedAt      time.Time
}
