package service

import (
	"context"
	"strings"
	"time"

	"ai-chat-be/internal/dto"
	"ai-chat-be/internal/entity"
	"ai-chat-be/internal/pkg/apperror"
	"ai-chat-be/internal/pkg/logger"
	"ai-chat-be/internal/repository/memory"
	"ai-chat-be/internal/repository/specification"
	"ai-chat-be/internal/repository/unitofwork"
	"ai-chat-be/pkg/chat/access"
	"ai-chat-be/pkg/chat/attachment"
	"ai-chat-be/pkg/chat/history"
	"ai-chat-be/pkg/chat/message"
	"ai-chat-be/pkg/chat/router"
	"ai-chat-be/pkg/chat/session"
	"ai-chat-be/pkg/chat/stream"
	"ai-chat-be/pkg/events"
	"ai-chat-be/pkg/llm"
	"ai-chat-be/pkg/store"

	"github.com/google/uuid"
)

// IChatService defines the chat service interface
type IChatService interface {
	SendChat(ctx context.Context, userId uuid.UUID, request *dto.SendChatRequest) (*dto.SendChatResponse, error)
	StreamChat(ctx context.Context, userId uuid.UUID, request *dto.StreamChatRequest, emitter stream.Emitter) error
	GetAllSessions(ctx context.Context, userId uuid.UUID) ([]*dto.GetAllSessionsResponse, error)
	GetChatHistory(ctx context.Context, userId uuid.UUID, sessionId uuid.UUID) ([]*dto.GetChatHistoryResponse, error)
	RenameSession(ctx context.Context, userId uuid.UUID, sessionId uuid.UUID, request *dto.RenameSessionRequest) error
	SetSystemPrompt(ctx context.Context, userId uuid.UUID, sessionId uuid.UUID, request *dto.SetSystemPromptRequest) error
	DeleteSession(ctx context.Context, userId uuid.UUID, sessionId uuid.UUID) error
	EditMessage(ctx context.Context, userId uuid.UUID, messageId uuid.UUID, request *dto.EditMessageRequest) error
	DeleteMessage(ctx context.Context, userId uuid.UUID, messageId uuid.UUID) error
	SearchMessages(ctx context.Context, userId uuid.UUID, query string) ([]*dto.SearchMessagesResponse, error)
}

// chatService coordinates the chat domain components
type chatService struct {
	uowFactory     unitofwork.RepositoryFactory
	completionRtr  *router.Router
	reconciler     *stream.Reconciler
	historyLoader  *history.Loader
	linker         *attachment.Linker
	accessVerifier *access.Verifier
	streamRepo     *memory.StreamRepository
	publisher      IPublisherService
	log            logger.ILogger
}

func NewChatService(
	uowFactory unitofwork.RepositoryFactory,
	completionRtr *router.Router,
	reconciler *stream.Reconciler,
	linker *attachment.Linker,
	accessVerifier *access.Verifier,
	streamRepo *memory.StreamRepository,
	publisher IPublisherService,
	log logger.ILogger,
) IChatService {
	return &chatService{
		uowFactory:     uowFactory,
		completionRtr:  completionRtr,
		reconciler:     reconciler,
		historyLoader:  history.NewLoader(),
		linker:         linker,
		accessVerifier: accessVerifier,
		streamRepo:     streamRepo,
		publisher:      publisher,
		log:            log,
	}
}

// SendChat serves one blocking turn: persist the user message, route the
// completion, persist the assistant reply.
func (cs *chatService) SendChat(ctx context.Context, userId uuid.UUID, request *dto.SendChatRequest) (*dto.SendChatResponse, error) {
	turn := make([]llm.Message, len(request.Messages))
	for i, m := range request.Messages {
		turn[i] = llm.Message{Role: m.Role, Content: m.Content}
	}
	if err := router.ValidateTurn(turn); err != nil {
		return nil, err
	}

	if err := cs.accessVerifier.ConsumeTurn(ctx, userId.String()); err != nil {
		return nil, err
	}

	sessionId := uuid.New()
	if request.ChatSessionId != nil {
		sessionId = *request.ChatSessionId
	}

	// Ownership is settled before anything is written, so a foreign
	// session id can neither be bumped nor written into.
	chatSession, err := cs.claimSession(ctx, userId, sessionId)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	userContent := turn[len(turn)-1].Content

	if _, err := cs.persistUserMessage(ctx, userId, sessionId, request.Purpose, userContent, request.AttachmentIds, now); err != nil {
		return nil, err
	}

	input := router.TurnInput{
		History:       turn,
		SessionPrompt: cs.effectivePrompt(chatSession, request.Purpose),
		CustomModelId: request.CustomModelId,
		UserId:        userId,
	}

	completion, err := cs.completionRtr.Route(ctx, input)
	if err != nil {
		// Keep the conversation record consistent: the failed turn still
		// gets its assistant message, tagged as an error.
		cs.persistAssistantMessage(ctx, message.NewErrorMessage(sessionId, userId, err, "", time.Now()))
		return nil, err
	}

	assistantMessage := message.NewAssistantMessage(sessionId, userId, completion.Reply, completion.ModelUsed, time.Now())
	cs.persistAssistantMessage(ctx, assistantMessage)

	cs.publishTurnEvent(ctx, events.TypeChatTurnCompleted, userId, sessionId, completion.ModelUsed)

	return &dto.SendChatResponse{
		ChatSessionId: sessionId,
		Reply:         assistantMessage.Content,
		ModelUsed:     completion.ModelUsed,
	}, nil
}

// StreamChat serves one streaming turn over the emitter's chunk/error/
// done event protocol. All failures become events; the done event always
// fires.
func (cs *chatService) StreamChat(ctx context.Context, userId uuid.UUID, request *dto.StreamChatRequest, emitter stream.Emitter) error {
	sessionId := uuid.New()
	if request.ChatSessionId != nil {
		sessionId = *request.ChatSessionId
	}

	emitFailure := func(err error) error {
		if emitErr := emitter.EmitError(err.Error()); emitErr != nil {
			cs.log.Warn("ChatService", "failed to emit stream error event", map[string]interface{}{
				"session_id": sessionId.String(),
			})
		}
		if doneErr := emitter.EmitDone(sessionId.String()); doneErr != nil {
			cs.log.Warn("ChatService", "failed to emit stream done event", map[string]interface{}{
				"session_id": sessionId.String(),
			})
		}
		return err
	}

	if strings.TrimSpace(request.Message) == "" {
		return emitFailure(apperror.InvalidArgument("message must not be empty"))
	}

	if err := cs.accessVerifier.ConsumeTurn(ctx, userId.String()); err != nil {
		return emitFailure(err)
	}

	if !cs.streamRepo.Claim(&store.StreamState{
		SessionID: sessionId.String(),
		UserID:    userId.String(),
		Status:    store.StreamStatusStarted,
		StartedAt: time.Now(),
	}) {
		return emitFailure(apperror.InvalidArgument("a stream is already active for this session"))
	}
	defer cs.streamRepo.Delete(sessionId.String())

	// Ownership is settled before anything is written, so a foreign
	// session id can neither be bumped nor written into.
	chatSession, err := cs.claimSession(ctx, userId, sessionId)
	if err != nil {
		return emitFailure(err)
	}

	now := time.Now()

	// The user-message save fails the turn before any upstream call.
	if _, err := cs.persistUserMessage(ctx, userId, sessionId, request.Purpose, request.Message, request.AttachmentIds, now); err != nil {
		return emitFailure(err)
	}

	uow := cs.uowFactory.NewUnitOfWork(ctx)
	stored, err := cs.historyLoader.Load(ctx, uow, sessionId)
	if err != nil {
		return emitFailure(err)
	}

	input := router.TurnInput{
		History:       history.ToLLMMessages(stored),
		SessionPrompt: cs.effectivePrompt(chatSession, request.Purpose),
		CustomModelId: request.CustomModelId,
		UserId:        userId,
	}

	chunks, modelUsed, err := cs.completionRtr.RouteStream(ctx, input)
	if err != nil {
		cs.persistAssistantMessage(ctx, message.NewErrorMessage(sessionId, userId, err, modelUsed, time.Now()))
		return emitFailure(err)
	}

	cs.streamRepo.Save(&store.StreamState{
		SessionID: sessionId.String(),
		UserID:    userId.String(),
		Status:    store.StreamStatusStreaming,
		StartedAt: now,
	})

	saver := &turnSaver{service: cs, sessionId: sessionId, userId: userId}
	runErr := cs.reconciler.Run(ctx, sessionId.String(), chunks, modelUsed, emitter, saver)

	eventType := events.TypeChatTurnCompleted
	if runErr != nil {
		eventType = events.TypeChatTurnFailed
	}
	cs.publishTurnEvent(ctx, eventType, userId, sessionId, modelUsed)

	return runErr
}

// persistUserMessage writes the user message, bumps the session activity
// row, and links pending attachments, all in one transaction.
func (cs *chatService) persistUserMessage(ctx context.Context, userId, sessionId uuid.UUID, purpose, content string, attachmentIds []string, now time.Time) (*entity.ChatMessage, error) {
	uow := cs.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, apperror.Persistence("failed to open transaction", err)
	}
	defer uow.Rollback()

	chatSession := &entity.ChatSession{
		Id:        sessionId,
		UserId:    userId,
		Purpose:   purpose,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := uow.ChatSessionRepository().Touch(ctx, chatSession, now); err != nil {
		return nil, apperror.Persistence("failed to upsert session", err)
	}

	userMessage := message.NewUserMessage(sessionId, userId, content, now)
	if err := uow.ChatMessageRepository().Create(ctx, userMessage); err != nil {
		return nil, apperror.Persistence("failed to save user message", err)
	}

	if err := cs.linker.LinkPending(ctx, uow.AttachmentRepository(), userMessage.Id, userId, attachmentIds); err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, apperror.Persistence("failed to commit turn", err)
	}
	return userMessage, nil
}

// persistAssistantMessage saves the terminal message of a turn. A failure
// here never invalidates a reply already delivered to the client.
func (cs *chatService) persistAssistantMessage(ctx context.Context, assistantMessage *entity.ChatMessage) {
	uow := cs.uowFactory.NewUnitOfWork(ctx)
	if err := uow.ChatMessageRepository().Create(ctx, assistantMessage); err != nil {
		cs.log.Error("ChatService", "failed to persist assistant message", map[string]interface{}{
			"session_id": assistantMessage.ChatSessionId.String(),
			"error":      err.Error(),
		})
		return
	}

	sessionRow := &entity.ChatSession{
		Id:        assistantMessage.ChatSessionId,
		UserId:    assistantMessage.AuthorId,
		CreatedAt: assistantMessage.CreatedAt,
		UpdatedAt: assistantMessage.CreatedAt,
	}
	if err := uow.ChatSessionRepository().Touch(ctx, sessionRow, assistantMessage.CreatedAt); err != nil {
		cs.log.Warn("ChatService", "failed to bump session activity", map[string]interface{}{
			"session_id": assistantMessage.ChatSessionId.String(),
		})
	}
}

// effectivePrompt resolves the system prompt of a turn: an explicit
// per-session override wins, otherwise the purpose derives a default.
func (cs *chatService) effectivePrompt(chatSession *entity.ChatSession, requestPurpose string) *string {
	if chatSession != nil && chatSession.SystemPrompt != nil && strings.TrimSpace(*chatSession.SystemPrompt) != "" {
		return chatSession.SystemPrompt
	}

	purpose := requestPurpose
	if chatSession != nil && chatSession.Purpose != "" {
		purpose = chatSession.Purpose
	}
	if derived := session.PurposePrompt(purpose); derived != "" {
		return &derived
	}
	return nil
}

// claimSession resolves the target session of a turn before anything is
// written. A session held by another user reports as missing so session
// ids cannot be enumerated.
func (cs *chatService) claimSession(ctx context.Context, userId, sessionId uuid.UUID) (*entity.ChatSession, error) {
	uow := cs.uowFactory.NewUnitOfWork(ctx)
	chatSession, err := uow.ChatSessionRepository().FindOne(ctx,
		specification.ByID{ID: sessionId},
	)
	if err != nil {
		return nil, apperror.Persistence("failed to load session", err)
	}
	if chatSession != nil && chatSession.UserId != userId {
		return nil, apperror.NotFound("session not found")
	}
	return chatSession, nil
}

func (cs *chatService) findSession(ctx context.Context, userId, sessionId uuid.UUID) (*entity.ChatSession, error) {
	uow := cs.uowFactory.NewUnitOfWork(ctx)
	chatSession, err := uow.ChatSessionRepository().FindOne(ctx,
		specification.ByID{ID: sessionId},
		specification.UserOwnedBy{UserID: userId},
	)
	if err != nil {
		return nil, apperror.Persistence("failed to load session", err)
	}
	return chatSession, nil
}

// GetAllSessions lists the caller's sessions by recent activity. A
// session without an explicit title shows its first user message.
func (cs *chatService) GetAllSessions(ctx context.Context, userId uuid.UUID) ([]*dto.GetAllSessionsResponse, error) {
	uow := cs.uowFactory.NewUnitOfWork(ctx)

	chatSessions, err := uow.ChatSessionRepository().FindAll(ctx,
		specification.UserOwnedBy{UserID: userId},
		specification.OrderBy{Field: "updated_at", Desc: true},
	)
	if err != nil {
		return nil, apperror.Persistence("failed to list sessions", err)
	}

	response := make([]*dto.GetAllSessionsResponse, 0, len(chatSessions))
	for _, s := range chatSessions {
		title := s.Title
		if strings.TrimSpace(title) == "" {
			first, err := uow.ChatMessageRepository().FindOne(ctx,
				specification.ByChatSessionID{ChatSessionID: s.Id},
				specification.ByRole{Role: message.RoleUser},
				specification.NotDeleted{},
				specification.OrderBy{Field: "created_at"},
			)
			if err != nil {
				return nil, apperror.Persistence("failed to resolve session title", err)
			}
			firstContent := ""
			if first != nil {
				firstContent = first.Content
			}
			title = session.DeriveTitle("", firstContent)
		}

		response = append(response, &dto.GetAllSessionsResponse{
			Id:        s.Id,
			Title:     title,
			Purpose:   s.Purpose,
			CreatedAt: s.CreatedAt,
			UpdatedAt: s.UpdatedAt,
		})
	}

	return response, nil
}

// GetChatHistory returns the visible messages of a session. A session
// that is unknown or foreign yields an empty list, not an error.
func (cs *chatService) GetChatHistory(ctx context.Context, userId uuid.UUID, sessionId uuid.UUID) ([]*dto.GetChatHistoryResponse, error) {
	chatSession, err := cs.findSession(ctx, userId, sessionId)
	if err != nil {
		return nil, err
	}
	if chatSession == nil {
		return []*dto.GetChatHistoryResponse{}, nil
	}

	uow := cs.uowFactory.NewUnitOfWork(ctx)
	messages, err := cs.historyLoader.Load(ctx, uow, sessionId)
	if err != nil {
		return nil, err
	}

	response := make([]*dto.GetChatHistoryResponse, 0, len(messages))
	for _, msg := range messages {
		attachments := make([]dto.AttachmentDTO, 0, len(msg.Attachments))
		for _, att := range msg.Attachments {
			attachments = append(attachments, dto.AttachmentDTO{
				Id:               att.Id,
				OriginalFilename: att.OriginalFilename,
				SizeBytes:        att.SizeBytes,
				MimeType:         att.MimeType,
			})
		}
		response = append(response, &dto.GetChatHistoryResponse{
			Id:          msg.Id,
			Role:        msg.Role,
			Content:     msg.Content,
			ModelUsed:   msg.ModelUsed,
			CreatedAt:   msg.CreatedAt,
			EditedAt:    msg.EditedAt,
			Attachments: attachments,
		})
	}

	return response, nil
}

func (cs *chatService) RenameSession(ctx context.Context, userId uuid.UUID, sessionId uuid.UUID, request *dto.RenameSessionRequest) error {
	title := strings.TrimSpace(request.Title)
	if title == "" {
		return apperror.InvalidArgument("title must not be empty")
	}

	chatSession, err := cs.findSession(ctx, userId, sessionId)
	if err != nil {
		return err
	}
	if chatSession == nil {
		return apperror.NotFound("session not found")
	}

	chatSession.Title = title
	uow := cs.uowFactory.NewUnitOfWork(ctx)
	if err := uow.ChatSessionRepository().Update(ctx, chatSession); err != nil {
		return apperror.Persistence("failed to rename session", err)
	}
	return nil
}

// SetSystemPrompt updates the per-session instruction override. A nil
// prompt means "no change"; an empty string clears the override.
func (cs *chatService) SetSystemPrompt(ctx context.Context, userId uuid.UUID, sessionId uuid.UUID, request *dto.SetSystemPromptRequest) error {
	if request.SystemPrompt == nil {
		return nil
	}

	chatSession, err := cs.findSession(ctx, userId, sessionId)
	if err != nil {
		return err
	}
	if chatSession == nil {
		return apperror.NotFound("session not found")
	}

	chatSession.SystemPrompt = request.SystemPrompt
	uow := cs.uowFactory.NewUnitOfWork(ctx)
	if err := uow.ChatSessionRepository().Update(ctx, chatSession); err != nil {
		return apperror.Persistence("failed to update system prompt", err)
	}
	return nil
}

// DeleteSession soft-deletes the member messages and removes the session
// metadata row. Deleting an unknown or foreign session is a silent no-op
// so clients can retry safely.
func (cs *chatService) DeleteSession(ctx context.Context, userId uuid.UUID, sessionId uuid.UUID) error {
	chatSession, err := cs.findSession(ctx, userId, sessionId)
	if err != nil {
		return err
	}
	if chatSession == nil {
		return nil
	}

	uow := cs.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return apperror.Persistence("failed to open transaction", err)
	}
	defer uow.Rollback()

	if err := uow.ChatMessageRepository().MarkDeletedBySessionId(ctx, sessionId); err != nil {
		return apperror.Persistence("failed to delete session messages", err)
	}
	if err := uow.ChatSessionRepository().Delete(ctx, sessionId); err != nil {
		return apperror.Persistence("failed to delete session", err)
	}

	if err := uow.Commit(); err != nil {
		return apperror.Persistence("failed to commit session delete", err)
	}

	cs.publishTurnEvent(ctx, events.TypeSessionDeleted, userId, sessionId, "")
	return nil
}

func (cs *chatService) EditMessage(ctx context.Context, userId uuid.UUID, messageId uuid.UUID, request *dto.EditMessageRequest) error {
	target, err := cs.mutableMessage(ctx, userId, messageId)
	if err != nil {
		return err
	}

	now := time.Now()
	target.Content = request.Content
	target.EditedAt = &now

	uow := cs.uowFactory.NewUnitOfWork(ctx)
	if err := uow.ChatMessageRepository().Update(ctx, target); err != nil {
		return apperror.Persistence("failed to edit message", err)
	}
	return nil
}

func (cs *chatService) DeleteMessage(ctx context.Context, userId uuid.UUID, messageId uuid.UUID) error {
	target, err := cs.mutableMessage(ctx, userId, messageId)
	if err != nil {
		return err
	}

	uow := cs.uowFactory.NewUnitOfWork(ctx)
	if err := uow.ChatMessageRepository().MarkDeleted(ctx, target.Id); err != nil {
		return apperror.Persistence("failed to delete message", err)
	}
	return nil
}

// mutableMessage enforces the mutation gate: the message must exist, not
// be deleted, carry role user, and belong to the caller.
func (cs *chatService) mutableMessage(ctx context.Context, userId, messageId uuid.UUID) (*entity.ChatMessage, error) {
	uow := cs.uowFactory.NewUnitOfWork(ctx)
	target, err := uow.ChatMessageRepository().FindOne(ctx,
		specification.ByID{ID: messageId},
	)
	if err != nil {
		return nil, apperror.Persistence("failed to load message", err)
	}
	if target == nil || target.IsDeleted {
		return nil, apperror.NotFound("message not found")
	}
	if target.Role != message.RoleUser {
		return nil, apperror.Forbidden("only user messages can be modified")
	}
	if target.AuthorId != userId {
		return nil, apperror.Forbidden("message belongs to another user")
	}
	return target, nil
}

func (cs *chatService) SearchMessages(ctx context.Context, userId uuid.UUID, query string) ([]*dto.SearchMessagesResponse, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, apperror.InvalidArgument("search query must not be empty")
	}

	uow := cs.uowFactory.NewUnitOfWork(ctx)
	messages, err := uow.ChatMessageRepository().FindAll(ctx,
		specification.ByAuthorID{AuthorID: userId},
		specification.NotDeleted{},
		specification.ContentContains{Query: query},
		specification.OrderBy{Field: "created_at", Desc: true},
	)
	if err != nil {
		return nil, apperror.Persistence("failed to search messages", err)
	}

	response := make([]*dto.SearchMessagesResponse, 0, len(messages))
	for _, msg := range messages {
		response = append(response, &dto.SearchMessagesResponse{
			Id:            msg.Id,
			ChatSessionId: msg.ChatSessionId,
			Role:          msg.Role,
			Content:       msg.Content,
			CreatedAt:     msg.CreatedAt,
		})
	}
	return response, nil
}

func (cs *chatService) publishTurnEvent(ctx context.Context, eventType string, userId, sessionId uuid.UUID, modelUsed string) {
	if cs.publisher == nil {
		return
	}
	cs.publisher.PublishEvent(ctx, events.New(eventType, map[string]interface{}{
		"user_id":    userId.String(),
		"session_id": sessionId.String(),
		"model_used": modelUsed,
	}))
}

// turnSaver is the reconciler's persistence hook for one streaming turn.
type turnSaver struct {
	service   *chatService
	sessionId uuid.UUID
	userId    uuid.UUID
}

func (s *turnSaver) SaveSuccess(ctx context.Context, content, modelUsed string) error {
	s.service.persistAssistantMessage(ctx, message.NewAssistantMessage(s.sessionId, s.userId, content, modelUsed, time.Now()))
	return nil
}

func (s *turnSaver) SaveError(ctx context.Context, cause error, partial, modelUsed string) error {
	s.service.persistAssistantMessage(ctx, message.NewErrorMessage(s.sessionId, s.userId, cause, modelUsed, time.Now()))
	return nil
}
