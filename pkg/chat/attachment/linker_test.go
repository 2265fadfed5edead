package attachment

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"ai-chat-be/internal/entity"
	"ai-chat-be/internal/pkg/apperror"
	"ai-chat-be/internal/repository/specification"

	"github.com/google/uuid"
)

type nopLogger struct{}

func (nopLogger) Debug(module, message string, details map[string]interface{}) {}
func (nopLogger) Info(module, message string, details map[string]interface{})  {}
func (nopLogger) Warn(module, message string, details map[string]interface{})  {}
func (nopLogger) Error(module, message string, details map[string]interface{}) {}
func (nopLogger) Sync() error                                                  { return nil }

type fakeAttachmentRepo struct {
	created []*entity.Attachment
}

func (r *fakeAttachmentRepo) Create(ctx context.Context, attachment *entity.Attachment) error {
	r.created = append(r.created, attachment)
	return nil
}

func (r *fakeAttachmentRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Attachment, error) {
	return nil, nil
}

func (r *fakeAttachmentRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Attachment, error) {
	return nil, nil
}

func (r *fakeAttachmentRepo) FindAllByMessageIds(ctx context.Context, messageIds []uuid.UUID) ([]*entity.Attachment, error) {
	return nil, nil
}

func writeUpload(t *testing.T, dir, name string, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestLinkPendingResolvesAndSkips(t *testing.T) {
	dir := t.TempDir()
	tempA := uuid.New().String()
	tempMissing := uuid.New().String()
	writeUpload(t, dir, tempA+"_report.pdf", "pdf bytes")

	linker := NewLinker(dir, nopLogger{})
	repo := &fakeAttachmentRepo{}
	messageId := uuid.New()
	authorId := uuid.New()

	err := linker.LinkPending(context.Background(), repo, messageId, authorId, []string{tempA, tempMissing})
	if err != nil {
		t.Fatalf("LinkPending() error = %v, want nil (missing file is skipped)", err)
	}

	if len(repo.created) != 1 {
		t.Fatalf("created = %d attachments, want 1", len(repo.created))
	}

	att := repo.created[0]
	if att.OriginalFilename != "report.pdf" {
		t.Errorf("OriginalFilename = %q, want %q", att.OriginalFilename, "report.pdf")
	}
	if att.ChatMessageId != messageId {
		t.Error("attachment not linked to the message")
	}
	if att.AuthorId != authorId {
		t.Error("attachment not attributed to the author")
	}
	if att.SizeBytes != int64(len("pdf bytes")) {
		t.Errorf("SizeBytes = %d, want %d", att.SizeBytes, len("pdf bytes"))
	}
	if att.MimeType != "application/pdf" {
		t.Errorf("MimeType = %q, want application/pdf", att.MimeType)
	}
}

func TestLinkPendingUnreadableDirectory(t *testing.T) {
	linker := NewLinker(filepath.Join(t.TempDir(), "does-not-exist"), nopLogger{})
	repo := &fakeAttachmentRepo{}

	err := linker.LinkPending(context.Background(), repo, uuid.New(), uuid.New(), []string{"some-temp-id"})
	if err == nil {
		t.Fatal("LinkPending() error = nil, want persistence failure")
	}
	if apperror.KindOf(err) != apperror.KindPersistenceFailure {
		t.Errorf("error kind = %v, want KindPersistenceFailure", apperror.KindOf(err))
	}
	if len(repo.created) != 0 {
		t.Errorf("created = %d attachments, want 0", len(repo.created))
	}
}

func TestLinkPendingNoTempIds(t *testing.T) {
	// No ids means no directory access at all, so even a bad path is fine.
	linker := NewLinker("/nonexistent", nopLogger{})
	repo := &fakeAttachmentRepo{}

	if err := linker.LinkPending(context.Background(), repo, uuid.New(), uuid.New(), nil); err != nil {
		t.Fatalf("LinkPending() error = %v, want nil", err)
	}
}

func TestOriginalName(t *testing.T) {
	tests := []struct {
		stored string
		tempId string
		want   string
	}{
		{"abc_report.pdf", "abc", "report.pdf"},
		{"abc_my_notes.txt", "abc", "my_notes.txt"},
		{"abc", "abc", "abc"}, // no original name encoded, keep stored
	}

	for _, tt := range tests {
		if got := originalName(tt.stored, tt.tempId); got != tt.want {
			t.Errorf("originalName(%q, %q) = %q, want %q", tt.stored, tt.tempId, got, tt.want)
		}
	}
}
