package attachment

import (
	"context"
	"mime"
	"os"
	"path/filepath"
	"strings"
	"time"

	"ai-chat-be/internal/entity"
	"ai-chat-be/internal/pkg/apperror"
	"ai-chat-be/internal/pkg/logger"
	"ai-chat-be/internal/repository/contract"

	"github.com/google/uuid"
)

// Linker associates previously-uploaded temporary files with a message at
// save time. Uploads are written as "<tempID>_<original name>" in the
// upload directory, so resolution is a prefix scan.
type Linker struct {
	uploadDir string
	log       logger.ILogger
}

func NewLinker(uploadDir string, log logger.ILogger) *Linker {
	return &Linker{
		uploadDir: uploadDir,
		log:       log,
	}
}

// LinkPending resolves each temporary id against the upload directory and
// inserts an attachment row per resolved file. A missing file is logged
// and skipped; an unreadable upload directory fails the whole save. The
// repository comes from the caller so inserts join its transaction.
func (l *Linker) LinkPending(ctx context.Context, repo contract.AttachmentRepository, messageId, authorId uuid.UUID, tempIds []string) error {
	if len(tempIds) == 0 {
		return nil
	}

	entries, err := os.ReadDir(l.uploadDir)
	if err != nil {
		return apperror.Persistence("failed to read upload directory", err)
	}

	for _, tempId := range tempIds {
		resolved := resolveByPrefix(entries, tempId)
		if resolved == "" {
			l.log.Warn("AttachmentLinker", "uploaded file not found for temporary id, skipping", map[string]interface{}{
				"temp_id":    tempId,
				"message_id": messageId.String(),
			})
			continue
		}

		fullPath := filepath.Join(l.uploadDir, resolved)
		info, err := os.Stat(fullPath)
		if err != nil {
			l.log.Warn("AttachmentLinker", "uploaded file vanished before stat, skipping", map[string]interface{}{
				"temp_id": tempId,
				"path":    fullPath,
			})
			continue
		}

		att := &entity.Attachment{
			Id:               uuid.New(),
			ChatMessageId:    messageId,
			AuthorId:         authorId,
			OriginalFilename: originalName(resolved, tempId),
			StoragePath:      fullPath,
			SizeBytes:        info.Size(),
			MimeType:         mimeTypeFor(resolved),
			UploadedAt:       time.Now(),
		}
		if err := repo.Create(ctx, att); err != nil {
			return apperror.Persistence("failed to link attachment", err)
		}
	}

	return nil
}

func resolveByPrefix(entries []os.DirEntry, tempId string) string {
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasPrefix(entry.Name(), tempId) {
			return entry.Name()
		}
	}
	return ""
}

func originalName(storedName, tempId string) string {
	name := strings.TrimPrefix(storedName, tempId)
	name = strings.TrimPrefix(name, "_")
	if name == "" {
		return storedName
	}
	return name
}

func mimeTypeFor(name string) string {
	mimeType := mime.TypeByExtension(filepath.Ext(name))
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}
	return mimeType
}
