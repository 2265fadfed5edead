package router

import (
	"context"
	"strings"

	"ai-chat-be/internal/entity"
	"ai-chat-be/internal/pkg/apperror"
	"ai-chat-be/internal/pkg/logger"
	"ai-chat-be/internal/repository/contract"
	"ai-chat-be/internal/repository/specification"
	"ai-chat-be/pkg/chat/message"
	"ai-chat-be/pkg/embedding"
	"ai-chat-be/pkg/llm"

	"github.com/google/uuid"
)

// TurnInput is the routing input for one turn, computed fresh per call.
type TurnInput struct {
	// History is the full visible conversation including the new user
	// message as the last element.
	History []llm.Message

	// SessionPrompt is the per-session system prompt override, nil when
	// the session has none.
	SessionPrompt *string

	// CustomModelId selects a custom model configuration; nil routes to
	// the default model.
	CustomModelId *uuid.UUID

	UserId uuid.UUID
}

// Completion is the routed result of a blocking turn.
type Completion struct {
	Reply     string
	ModelUsed string
}

// referenceChunkLimit caps how many stored reference chunks are folded
// into the prompt of a single turn.
const referenceChunkLimit = 4

// Router decides which backend serves a turn and builds the effective
// prompt for it.
type Router struct {
	provider            llm.LLMProvider
	assistant           llm.AssistantProvider
	embedder            embedding.EmbeddingProvider
	modelRepository     contract.CustomModelRepository
	embeddingRepository contract.ReferenceEmbeddingRepository
	log                 logger.ILogger
}

func NewRouter(
	provider llm.LLMProvider,
	assistant llm.AssistantProvider,
	embedder embedding.EmbeddingProvider,
	modelRepository contract.CustomModelRepository,
	embeddingRepository contract.ReferenceEmbeddingRepository,
	log logger.ILogger,
) *Router {
	return &Router{
		provider:            provider,
		assistant:           assistant,
		embedder:            embedder,
		modelRepository:     modelRepository,
		embeddingRepository: embeddingRepository,
		log:                 log,
	}
}

// ValidateTurn enforces the turn shape: history non-empty and ending on a
// user message.
func ValidateTurn(history []llm.Message) error {
	if len(history) == 0 {
		return apperror.InvalidArgument("message history must not be empty")
	}
	if history[len(history)-1].Role != message.RoleUser {
		return apperror.InvalidArgument("last message of a turn must have role user")
	}
	return nil
}

// Route serves a turn on the blocking path.
func (r *Router) Route(ctx context.Context, input TurnInput) (*Completion, error) {
	if err := ValidateTurn(input.History); err != nil {
		return nil, err
	}

	if input.CustomModelId == nil {
		return r.routeDefault(ctx, input)
	}

	customModel, err := r.loadModel(ctx, input)
	if err != nil {
		return nil, err
	}

	switch customModel.Type {
	case entity.ModelTypeAssistant:
		return r.routeAssistant(ctx, input, customModel)
	default:
		return r.routeConfigured(ctx, input, customModel)
	}
}

// RouteStream serves a turn on the streaming path. The assistant path has
// no upstream streaming support, so its reply arrives as a single chunk.
func (r *Router) RouteStream(ctx context.Context, input TurnInput) (<-chan llm.Chunk, string, error) {
	if err := ValidateTurn(input.History); err != nil {
		return nil, "", err
	}

	if input.CustomModelId == nil {
		history := withSystemPrompt(input.History, input.SessionPrompt)
		chunks, err := r.provider.ChatStream(ctx, history)
		if err != nil {
			return nil, "", apperror.Upstream("streaming completion failed to start", err)
		}
		return chunks, r.provider.DefaultModel(), nil
	}

	customModel, err := r.loadModel(ctx, input)
	if err != nil {
		return nil, "", err
	}

	if customModel.Type == entity.ModelTypeAssistant {
		completion, err := r.routeAssistant(ctx, input, customModel)
		if err != nil {
			return nil, customModel.Name, err
		}
		chunks := make(chan llm.Chunk, 1)
		chunks <- llm.Chunk{Content: completion.Reply}
		close(chunks)
		return chunks, completion.ModelUsed, nil
	}

	history, opts := r.configure(ctx, input, customModel)
	chunks, err := r.provider.ChatStream(ctx, history, opts...)
	if err != nil {
		return nil, customModel.Name, apperror.Upstream("streaming completion failed to start", err)
	}
	return chunks, resolveModelName(r.provider, customModel), nil
}

func (r *Router) loadModel(ctx context.Context, input TurnInput) (*entity.CustomModel, error) {
	customModel, err := r.modelRepository.FindOne(ctx,
		specification.ByID{ID: *input.CustomModelId},
		specification.UserOwnedBy{UserID: input.UserId},
	)
	if err != nil {
		return nil, apperror.Persistence("failed to load custom model", err)
	}
	if customModel == nil {
		return nil, apperror.NotFound("custom model not found")
	}
	return customModel, nil
}

// routeDefault serves the turn with the default model: the session system
// prompt (if any) prepended to the full history.
func (r *Router) routeDefault(ctx context.Context, input TurnInput) (*Completion, error) {
	history := withSystemPrompt(input.History, input.SessionPrompt)

	reply, err := r.provider.Chat(ctx, history)
	if err != nil {
		return nil, apperror.Upstream("completion call failed", err)
	}

	return &Completion{Reply: reply, ModelUsed: r.provider.DefaultModel()}, nil
}

// routeAssistant serves the turn through the upstream thread/run system.
// Only user-role messages are pushed to the thread; a fresh thread gets
// the whole user history, a reused one only the latest message.
func (r *Router) routeAssistant(ctx context.Context, input TurnInput, customModel *entity.CustomModel) (*Completion, error) {
	if r.assistant == nil {
		return nil, apperror.Upstream("assistant backend is not configured", nil)
	}
	if customModel.Config.AssistantId == "" {
		return nil, apperror.InvalidArgument("custom model has no upstream assistant")
	}

	threadId := customModel.Config.ThreadId
	freshThread := threadId == ""
	if freshThread {
		created, err := r.assistant.CreateThread(ctx)
		if err != nil {
			return nil, apperror.Upstream("failed to create assistant thread", err)
		}
		threadId = created

		customModel.Config.ThreadId = threadId
		if err := r.modelRepository.Update(ctx, customModel); err != nil {
			// The thread still works for this turn; the next turn will
			// create another one.
			r.log.Warn("CompletionRouter", "failed to persist assistant thread id", map[string]interface{}{
				"custom_model_id": customModel.Id.String(),
				"error":           err.Error(),
			})
		}
	}

	toPush := input.History
	if !freshThread {
		toPush = input.History[len(input.History)-1:]
	}
	for _, msg := range toPush {
		if msg.Role != message.RoleUser {
			continue
		}
		if err := r.assistant.AddMessage(ctx, threadId, msg.Content); err != nil {
			return nil, apperror.Upstream("failed to push message to assistant thread", err)
		}
	}

	reply, err := r.assistant.RunThread(ctx, threadId, customModel.Config.AssistantId)
	if err != nil {
		return nil, apperror.Upstream("assistant run failed", err)
	}

	return &Completion{Reply: reply, ModelUsed: customModel.Name}, nil
}

// routeConfigured serves the turn with stored instructions, reference
// text, and sampling overrides.
func (r *Router) routeConfigured(ctx context.Context, input TurnInput, customModel *entity.CustomModel) (*Completion, error) {
	history, opts := r.configure(ctx, input, customModel)

	reply, err := r.provider.Chat(ctx, history, opts...)
	if err != nil {
		return nil, apperror.Upstream("completion call failed", err)
	}

	return &Completion{Reply: reply, ModelUsed: resolveModelName(r.provider, customModel)}, nil
}

func (r *Router) configure(ctx context.Context, input TurnInput, customModel *entity.CustomModel) ([]llm.Message, []llm.Option) {
	// The session prompt overrides stored instructions when present.
	instructions := customModel.Config.Instructions
	if input.SessionPrompt != nil && strings.TrimSpace(*input.SessionPrompt) != "" {
		instructions = *input.SessionPrompt
	}
	if reference := r.referenceMaterial(ctx, input, customModel); reference != "" {
		if instructions != "" {
			instructions += "\n\n"
		}
		instructions += "Reference material:\n" + reference
	}

	history := input.History
	if instructions != "" {
		history = append([]llm.Message{{Role: message.RoleSystem, Content: instructions}}, history...)
	}

	var opts []llm.Option
	if customModel.Config.Temperature != nil {
		opts = append(opts, llm.WithTemperature(*customModel.Config.Temperature))
	}
	if customModel.Config.MaxTokens != nil {
		opts = append(opts, llm.WithMaxTokens(*customModel.Config.MaxTokens))
	}
	if customModel.Config.BaseModel != "" {
		opts = append(opts, llm.WithModel(customModel.Config.BaseModel))
	}

	return history, opts
}

// referenceMaterial resolves the reference text for a configured model:
// embedded chunks nearest to the latest user message when the model has
// any, otherwise the inline reference text. Retrieval failures degrade
// to the inline text rather than failing the turn.
func (r *Router) referenceMaterial(ctx context.Context, input TurnInput, customModel *entity.CustomModel) string {
	if r.embedder == nil || r.embeddingRepository == nil {
		return customModel.Config.ReferenceText
	}

	query := input.History[len(input.History)-1].Content
	vec, err := r.embedder.Generate(ctx, query)
	if err != nil {
		r.log.Warn("CompletionRouter", "failed to embed query for reference retrieval", map[string]interface{}{
			"custom_model_id": customModel.Id.String(),
			"error":           err.Error(),
		})
		return customModel.Config.ReferenceText
	}

	chunks, err := r.embeddingRepository.FindNearest(ctx, customModel.Id, vec, referenceChunkLimit)
	if err != nil {
		r.log.Warn("CompletionRouter", "reference chunk lookup failed", map[string]interface{}{
			"custom_model_id": customModel.Id.String(),
			"error":           err.Error(),
		})
		return customModel.Config.ReferenceText
	}
	if len(chunks) == 0 {
		return customModel.Config.ReferenceText
	}

	parts := make([]string, 0, len(chunks))
	for _, chunk := range chunks {
		parts = append(parts, chunk.Content)
	}
	return strings.Join(parts, "\n---\n")
}

func withSystemPrompt(history []llm.Message, prompt *string) []llm.Message {
	if prompt == nil || strings.TrimSpace(*prompt) == "" {
		return history
	}
	return append([]llm.Message{{Role: message.RoleSystem, Content: *prompt}}, history...)
}

func resolveModelName(provider llm.LLMProvider, customModel *entity.CustomModel) string {
	if customModel.Config.BaseModel != "" {
		return customModel.Config.BaseModel
	}
	return provider.DefaultModel()
}
