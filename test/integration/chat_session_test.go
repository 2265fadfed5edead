package integration

import (
	"context"
	"os"
	"testing"
	"time"

	"ai-chat-be/internal/entity"
	"ai-chat-be/internal/repository/specification"
	"ai-chat-be/internal/repository/unitofwork"
	"ai-chat-be/pkg/database"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Exercises the session upsert against a real database: the second Touch
// with the same id must not insert a second row and must not overwrite
// the stored title.
func TestChatSessionTouchUpsert(t *testing.T) {
	_ = godotenv.Load("../../.env")

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		t.Skip("Skipping integration test: DB_CONNECTION_STRING not set")
	}

	gormDB, err := database.NewGormDBFromDSN(dsn)
	require.NoError(t, err)

	ctx := context.Background()
	uow := unitofwork.NewRepositoryFactory(gormDB).NewUnitOfWork(ctx)
	require.NoError(t, uow.Begin(ctx))
	defer uow.Rollback()

	sessions := uow.ChatSessionRepository()
	sessionId := uuid.New()
	userId := uuid.New()

	first := &entity.ChatSession{
		Id:     sessionId,
		UserId: userId,
		Title:  "First Title",
	}
	require.NoError(t, sessions.Touch(ctx, first, time.Now()))

	later := time.Now().Add(time.Second)
	second := &entity.ChatSession{
		Id:     sessionId,
		UserId: userId,
		Title:  "Should Not Overwrite",
	}
	require.NoError(t, sessions.Touch(ctx, second, later))

	count, err := sessions.Count(ctx, specification.ByID{ID: sessionId})
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	stored, err := sessions.FindOne(ctx, specification.ByID{ID: sessionId})
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, "First Title", stored.Title)
	assert.WithinDuration(t, later, stored.UpdatedAt, 2*time.Second)
}
