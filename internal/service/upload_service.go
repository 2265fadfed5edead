package service

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"

	"ai-chat-be/internal/dto"
	"ai-chat-be/internal/entity"
	"ai-chat-be/internal/pkg/apperror"
	"ai-chat-be/internal/pkg/logger"
	"ai-chat-be/internal/repository/specification"
	"ai-chat-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

type IUploadService interface {
	// Upload stages a file under a fresh temporary id. The file is not
	// tied to any message until a later save links it.
	Upload(ctx context.Context, userId uuid.UUID, fileHeader *multipart.FileHeader) (*dto.UploadResponse, error)

	// Download returns the attachment metadata for streaming. Only the
	// author of the owning message may download.
	Download(ctx context.Context, userId uuid.UUID, attachmentId uuid.UUID) (*entity.Attachment, error)
}

type uploadService struct {
	uowFactory   unitofwork.RepositoryFactory
	uploadDir    string
	maxSizeBytes int64
	log          logger.ILogger
}

func NewUploadService(uowFactory unitofwork.RepositoryFactory, uploadDir string, maxSizeBytes int64, log logger.ILogger) IUploadService {
	return &uploadService{
		uowFactory:   uowFactory,
		uploadDir:    uploadDir,
		maxSizeBytes: maxSizeBytes,
		log:          log,
	}
}

func (us *uploadService) Upload(ctx context.Context, userId uuid.UUID, fileHeader *multipart.FileHeader) (*dto.UploadResponse, error) {
	if fileHeader.Size > us.maxSizeBytes {
		return nil, apperror.InvalidArgument(fmt.Sprintf("file exceeds the %d byte upload limit", us.maxSizeBytes))
	}

	if err := os.MkdirAll(us.uploadDir, 0o755); err != nil {
		return nil, apperror.Persistence("failed to prepare upload directory", err)
	}

	tempId := uuid.New().String()
	storedName := tempId + "_" + filepath.Base(fileHeader.Filename)
	destination := filepath.Join(us.uploadDir, storedName)

	src, err := fileHeader.Open()
	if err != nil {
		return nil, apperror.InvalidArgument("failed to open uploaded file")
	}
	defer src.Close()

	dst, err := os.Create(destination)
	if err != nil {
		return nil, apperror.Persistence("failed to create upload file", err)
	}
	defer dst.Close()

	written, err := io.Copy(dst, src)
	if err != nil {
		os.Remove(destination)
		return nil, apperror.Persistence("failed to write upload file", err)
	}

	us.log.Info("UploadService", "file staged", map[string]interface{}{
		"temp_id":  tempId,
		"user_id":  userId.String(),
		"filename": fileHeader.Filename,
		"size":     written,
	})

	return &dto.UploadResponse{
		TempId:           tempId,
		OriginalFilename: fileHeader.Filename,
		SizeBytes:        written,
	}, nil
}

func (us *uploadService) Download(ctx context.Context, userId uuid.UUID, attachmentId uuid.UUID) (*entity.Attachment, error) {
	uow := us.uowFactory.NewUnitOfWork(ctx)
	att, err := uow.AttachmentRepository().FindOne(ctx, specification.ByID{ID: attachmentId})
	if err != nil {
		return nil, apperror.Persistence("failed to load attachment", err)
	}
	if att == nil {
		return nil, apperror.NotFound("attachment not found")
	}
	if att.AuthorId != userId {
		return nil, apperror.Forbidden("attachment belongs to another user")
	}
	return att, nil
}
