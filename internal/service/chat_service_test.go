package service

import (
	"context"
	"sort"
	"strings"
	"testing"
	"time"

	"ai-chat-be/internal/dto"
	"ai-chat-be/internal/entity"
	"ai-chat-be/internal/pkg/apperror"
	"ai-chat-be/internal/repository/contract"
	"ai-chat-be/internal/repository/memory"
	"ai-chat-be/internal/repository/specification"
	"ai-chat-be/internal/repository/unitofwork"
	"ai-chat-be/pkg/chat/access"
	"ai-chat-be/pkg/chat/attachment"
	"ai-chat-be/pkg/chat/message"
	"ai-chat-be/pkg/chat/stream"

	"github.com/google/uuid"
)

type nopLogger struct{}

func (nopLogger) Debug(module, message string, details map[string]interface{}) {}
func (nopLogger) Info(module, message string, details map[string]interface{})  {}
func (nopLogger) Warn(module, message string, details map[string]interface{})  {}
func (nopLogger) Error(module, message string, details map[string]interface{}) {}
func (nopLogger) Sync() error                                                  { return nil }

// fakeSessionRepo keeps sessions in memory and honors the specifications
// the service actually applies.
type fakeSessionRepo struct {
	sessions map[uuid.UUID]*entity.ChatSession
	touches  int
	deletes  int
}

func (r *fakeSessionRepo) Touch(ctx context.Context, s *entity.ChatSession, now time.Time) error {
	r.touches++
	if existing, ok := r.sessions[s.Id]; ok {
		existing.UpdatedAt = now
		return nil
	}
	copied := *s
	r.sessions[s.Id] = &copied
	return nil
}

func (r *fakeSessionRepo) Update(ctx context.Context, s *entity.ChatSession) error {
	copied := *s
	r.sessions[s.Id] = &copied
	return nil
}

func (r *fakeSessionRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.deletes++
	delete(r.sessions, id)
	return nil
}

func (r *fakeSessionRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.ChatSession, error) {
	for _, s := range r.sessions {
		if sessionMatches(s, specs) {
			copied := *s
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *fakeSessionRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ChatSession, error) {
	var out []*entity.ChatSession
	for _, s := range r.sessions {
		if sessionMatches(s, specs) {
			copied := *s
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *fakeSessionRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	found, _ := r.FindAll(ctx, specs...)
	return int64(len(found)), nil
}

func sessionMatches(s *entity.ChatSession, specs []specification.Specification) bool {
	for _, spec := range specs {
		switch v := spec.(type) {
		case specification.ByID:
			if s.Id != v.ID {
				return false
			}
		case specification.UserOwnedBy:
			if s.UserId != v.UserID {
				return false
			}
		}
	}
	return true
}

type fakeMessageRepo struct {
	rows    []*entity.ChatMessage
	creates int
}

func (r *fakeMessageRepo) Create(ctx context.Context, m *entity.ChatMessage) error {
	r.creates++
	copied := *m
	r.rows = append(r.rows, &copied)
	return nil
}

func (r *fakeMessageRepo) Update(ctx context.Context, m *entity.ChatMessage) error {
	for i, row := range r.rows {
		if row.Id == m.Id {
			copied := *m
			r.rows[i] = &copied
		}
	}
	return nil
}

func (r *fakeMessageRepo) MarkDeleted(ctx context.Context, id uuid.UUID) error {
	for _, row := range r.rows {
		if row.Id == id {
			row.IsDeleted = true
		}
	}
	return nil
}

func (r *fakeMessageRepo) MarkDeletedBySessionId(ctx context.Context, sessionId uuid.UUID) error {
	for _, row := range r.rows {
		if row.ChatSessionId == sessionId {
			row.IsDeleted = true
		}
	}
	return nil
}

func (r *fakeMessageRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.ChatMessage, error) {
	matches, _ := r.FindAll(ctx, specs...)
	if len(matches) == 0 {
		return nil, nil
	}
	return matches[0], nil
}

func (r *fakeMessageRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ChatMessage, error) {
	var out []*entity.ChatMessage
	for _, row := range r.rows {
		if messageMatches(row, specs) {
			copied := *row
			out = append(out, &copied)
		}
	}
	for _, spec := range specs {
		if order, ok := spec.(specification.OrderBy); ok && order.Field == "created_at" {
			sort.Slice(out, func(i, j int) bool {
				if order.Desc {
					return out[i].CreatedAt.After(out[j].CreatedAt)
				}
				return out[i].CreatedAt.Before(out[j].CreatedAt)
			})
		}
	}
	return out, nil
}

func (r *fakeMessageRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	found, _ := r.FindAll(ctx, specs...)
	return int64(len(found)), nil
}

func messageMatches(m *entity.ChatMessage, specs []specification.Specification) bool {
	for _, spec := range specs {
		switch v := spec.(type) {
		case specification.ByID:
			if m.Id != v.ID {
				return false
			}
		case specification.ByChatSessionID:
			if m.ChatSessionId != v.ChatSessionID {
				return false
			}
		case specification.ByAuthorID:
			if m.AuthorId != v.AuthorID {
				return false
			}
		case specification.ByRole:
			if m.Role != v.Role {
				return false
			}
		case specification.NotDeleted:
			if m.IsDeleted {
				return false
			}
		case specification.ContentContains:
			if !strings.Contains(strings.ToLower(m.Content), strings.ToLower(v.Query)) {
				return false
			}
		}
	}
	return true
}

type noAttachmentRepo struct{}

func (noAttachmentRepo) Create(ctx context.Context, attachment *entity.Attachment) error {
	return nil
}

func (noAttachmentRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Attachment, error) {
	return nil, nil
}

func (noAttachmentRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Attachment, error) {
	return nil, nil
}

func (noAttachmentRepo) FindAllByMessageIds(ctx context.Context, messageIds []uuid.UUID) ([]*entity.Attachment, error) {
	return nil, nil
}

// fakeUnitOfWork backs every transaction with the same in-memory repos.
type fakeUnitOfWork struct {
	sessions   *fakeSessionRepo
	messages   *fakeMessageRepo
	models     contract.CustomModelRepository
	embeddings contract.ReferenceEmbeddingRepository
}

func newFakeUnitOfWork() *fakeUnitOfWork {
	return &fakeUnitOfWork{
		sessions: &fakeSessionRepo{sessions: make(map[uuid.UUID]*entity.ChatSession)},
		messages: &fakeMessageRepo{},
	}
}

func (u *fakeUnitOfWork) Begin(ctx context.Context) error { return nil }
func (u *fakeUnitOfWork) Commit() error                   { return nil }
func (u *fakeUnitOfWork) Rollback() error                 { return nil }

func (u *fakeUnitOfWork) UserRepository() contract.UserRepository               { return nil }
func (u *fakeUnitOfWork) ChatSessionRepository() contract.ChatSessionRepository { return u.sessions }
func (u *fakeUnitOfWork) ChatMessageRepository() contract.ChatMessageRepository { return u.messages }
func (u *fakeUnitOfWork) AttachmentRepository() contract.AttachmentRepository {
	return noAttachmentRepo{}
}
func (u *fakeUnitOfWork) CustomModelRepository() contract.CustomModelRepository { return u.models }
func (u *fakeUnitOfWork) ReferenceEmbeddingRepository() contract.ReferenceEmbeddingRepository {
	return u.embeddings
}
func (u *fakeUnitOfWork) FeedbackRepository() contract.FeedbackRepository { return nil }

type fakeUowFactory struct {
	uow *fakeUnitOfWork
}

func (f *fakeUowFactory) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork { return f.uow }

type recordingEmitter struct {
	chunks []string
	errors []string
	dones  []string
}

func (e *recordingEmitter) EmitChunk(text string) error { e.chunks = append(e.chunks, text); return nil }
func (e *recordingEmitter) EmitError(message string) error {
	e.errors = append(e.errors, message)
	return nil
}
func (e *recordingEmitter) EmitDone(sessionID string) error {
	e.dones = append(e.dones, sessionID)
	return nil
}

func newTestChatService(t *testing.T, uow *fakeUnitOfWork) IChatService {
	t.Helper()
	log := nopLogger{}
	return NewChatService(
		&fakeUowFactory{uow: uow},
		nil,
		stream.NewReconciler(log),
		attachment.NewLinker(t.TempDir(), log),
		access.NewVerifier(nil, 0),
		memory.NewStreamRepository(),
		nil,
		log,
	)
}

func seedSession(uow *fakeUnitOfWork, owner uuid.UUID) *entity.ChatSession {
	s := &entity.ChatSession{
		Id:        uuid.New(),
		UserId:    owner,
		CreatedAt: time.Now().Add(-time.Hour),
		UpdatedAt: time.Now().Add(-time.Hour),
	}
	uow.sessions.sessions[s.Id] = s
	return s
}

func seedMessage(uow *fakeUnitOfWork, sessionId, author uuid.UUID, role, content string, at time.Time) *entity.ChatMessage {
	m := &entity.ChatMessage{
		Id:            uuid.New(),
		ChatSessionId: sessionId,
		AuthorId:      author,
		Role:          role,
		Content:       content,
		CreatedAt:     at,
	}
	uow.messages.rows = append(uow.messages.rows, m)
	return m
}

func TestSendChatRejectsForeignSession(t *testing.T) {
	uow := newFakeUnitOfWork()
	owner := uuid.New()
	intruder := uuid.New()
	victim := seedSession(uow, owner)
	before := victim.UpdatedAt

	svc := newTestChatService(t, uow)

	_, err := svc.SendChat(context.Background(), intruder, &dto.SendChatRequest{
		Messages:      []dto.TurnMessageDTO{{Role: message.RoleUser, Content: "hello"}},
		ChatSessionId: &victim.Id,
	})
	if apperror.KindOf(err) != apperror.KindNotFound {
		t.Fatalf("KindOf(err) = %v, want KindNotFound (err = %v)", apperror.KindOf(err), err)
	}
	if uow.messages.creates != 0 {
		t.Fatalf("messages created = %d, want 0", uow.messages.creates)
	}
	if uow.sessions.touches != 0 {
		t.Fatalf("session touches = %d, want 0", uow.sessions.touches)
	}
	if !uow.sessions.sessions[victim.Id].UpdatedAt.Equal(before) {
		t.Fatal("foreign session activity was bumped")
	}
}

func TestStreamChatRejectsForeignSession(t *testing.T) {
	uow := newFakeUnitOfWork()
	victim := seedSession(uow, uuid.New())
	intruder := uuid.New()

	svc := newTestChatService(t, uow)
	emitter := &recordingEmitter{}

	err := svc.StreamChat(context.Background(), intruder, &dto.StreamChatRequest{
		Message:       "hello",
		ChatSessionId: &victim.Id,
	}, emitter)
	if apperror.KindOf(err) != apperror.KindNotFound {
		t.Fatalf("KindOf(err) = %v, want KindNotFound (err = %v)", apperror.KindOf(err), err)
	}
	if uow.messages.creates != 0 {
		t.Fatalf("messages created = %d, want 0", uow.messages.creates)
	}
	if len(emitter.errors) != 1 || len(emitter.dones) != 1 {
		t.Fatalf("emitted %d errors and %d dones, want 1 and 1", len(emitter.errors), len(emitter.dones))
	}
}

func TestDeleteMessageHidesFromHistoryButKeepsRow(t *testing.T) {
	uow := newFakeUnitOfWork()
	owner := uuid.New()
	s := seedSession(uow, owner)
	first := seedMessage(uow, s.Id, owner, message.RoleUser, "first", time.Now().Add(-2*time.Minute))
	seedMessage(uow, s.Id, owner, message.RoleUser, "second", time.Now().Add(-time.Minute))

	svc := newTestChatService(t, uow)

	if err := svc.DeleteMessage(context.Background(), owner, first.Id); err != nil {
		t.Fatalf("DeleteMessage() error = %v", err)
	}

	history, err := svc.GetChatHistory(context.Background(), owner, s.Id)
	if err != nil {
		t.Fatalf("GetChatHistory() error = %v", err)
	}
	if len(history) != 1 || history[0].Content != "second" {
		t.Fatalf("history = %+v, want only the second message", history)
	}

	if len(uow.messages.rows) != 2 {
		t.Fatalf("stored rows = %d, want 2 (soft delete must keep the row)", len(uow.messages.rows))
	}
	if !uow.messages.rows[0].IsDeleted {
		t.Fatal("deleted message row lost its deletion mark")
	}
}

func TestEditMessageGates(t *testing.T) {
	owner := uuid.New()
	stranger := uuid.New()

	tests := []struct {
		name     string
		role     string
		author   uuid.UUID
		deleted  bool
		caller   uuid.UUID
		wantKind apperror.Kind
	}{
		{"wrong author", message.RoleUser, owner, false, stranger, apperror.KindForbidden},
		{"assistant message", message.RoleAssistant, owner, false, owner, apperror.KindForbidden},
		{"already deleted", message.RoleUser, owner, true, owner, apperror.KindNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uow := newFakeUnitOfWork()
			s := seedSession(uow, owner)
			target := seedMessage(uow, s.Id, tt.author, tt.role, "content", time.Now())
			target.IsDeleted = tt.deleted

			svc := newTestChatService(t, uow)
			err := svc.EditMessage(context.Background(), tt.caller, target.Id, &dto.EditMessageRequest{Content: "edited"})
			if apperror.KindOf(err) != tt.wantKind {
				t.Fatalf("KindOf(err) = %v, want %v (err = %v)", apperror.KindOf(err), tt.wantKind, err)
			}
		})
	}

	t.Run("unknown message", func(t *testing.T) {
		uow := newFakeUnitOfWork()
		svc := newTestChatService(t, uow)
		err := svc.EditMessage(context.Background(), owner, uuid.New(), &dto.EditMessageRequest{Content: "edited"})
		if apperror.KindOf(err) != apperror.KindNotFound {
			t.Fatalf("KindOf(err) = %v, want KindNotFound", apperror.KindOf(err))
		}
	})

	t.Run("owner edits own user message", func(t *testing.T) {
		uow := newFakeUnitOfWork()
		s := seedSession(uow, owner)
		target := seedMessage(uow, s.Id, owner, message.RoleUser, "before", time.Now())

		svc := newTestChatService(t, uow)
		if err := svc.EditMessage(context.Background(), owner, target.Id, &dto.EditMessageRequest{Content: "after"}); err != nil {
			t.Fatalf("EditMessage() error = %v", err)
		}
		stored := uow.messages.rows[0]
		if stored.Content != "after" {
			t.Fatalf("Content = %q, want %q", stored.Content, "after")
		}
		if stored.EditedAt == nil {
			t.Fatal("EditedAt not set")
		}
	})
}

func TestDeleteSessionIsIdempotent(t *testing.T) {
	uow := newFakeUnitOfWork()
	owner := uuid.New()
	s := seedSession(uow, owner)
	seedMessage(uow, s.Id, owner, message.RoleUser, "hello", time.Now())

	svc := newTestChatService(t, uow)

	if err := svc.DeleteSession(context.Background(), owner, s.Id); err != nil {
		t.Fatalf("first DeleteSession() error = %v", err)
	}
	if _, ok := uow.sessions.sessions[s.Id]; ok {
		t.Fatal("session row survived the delete")
	}
	if !uow.messages.rows[0].IsDeleted {
		t.Fatal("member message was not soft-deleted")
	}

	if err := svc.DeleteSession(context.Background(), owner, s.Id); err != nil {
		t.Fatalf("second DeleteSession() error = %v, want nil", err)
	}
	if uow.sessions.deletes != 1 {
		t.Fatalf("session deletes = %d, want 1 (second call must be a no-op)", uow.sessions.deletes)
	}
}

func TestDeleteSessionIgnoresForeignSession(t *testing.T) {
	uow := newFakeUnitOfWork()
	s := seedSession(uow, uuid.New())

	svc := newTestChatService(t, uow)
	if err := svc.DeleteSession(context.Background(), uuid.New(), s.Id); err != nil {
		t.Fatalf("DeleteSession() error = %v, want nil", err)
	}
	if _, ok := uow.sessions.sessions[s.Id]; !ok {
		t.Fatal("foreign session was deleted")
	}
}

func TestSearchMessages(t *testing.T) {
	uow := newFakeUnitOfWork()
	owner := uuid.New()
	s := seedSession(uow, owner)
	seedMessage(uow, s.Id, owner, message.RoleUser, "older deploy notes", time.Now().Add(-2*time.Minute))
	seedMessage(uow, s.Id, owner, message.RoleUser, "newer deploy plan", time.Now().Add(-time.Minute))
	hidden := seedMessage(uow, s.Id, owner, message.RoleUser, "deleted deploy log", time.Now())
	hidden.IsDeleted = true

	svc := newTestChatService(t, uow)

	t.Run("whitespace query rejected", func(t *testing.T) {
		_, err := svc.SearchMessages(context.Background(), owner, "   ")
		if apperror.KindOf(err) != apperror.KindInvalidArgument {
			t.Fatalf("KindOf(err) = %v, want KindInvalidArgument", apperror.KindOf(err))
		}
	})

	t.Run("matches exclude deleted, newest first", func(t *testing.T) {
		results, err := svc.SearchMessages(context.Background(), owner, "deploy")
		if err != nil {
			t.Fatalf("SearchMessages() error = %v", err)
		}
		if len(results) != 2 {
			t.Fatalf("results = %d, want 2", len(results))
		}
		if results[0].Content != "newer deploy plan" {
			t.Fatalf("first result = %q, want the newest match", results[0].Content)
		}
	})
}
