package controller

import (
	"context"

	"ai-chat-be/internal/dto"
	"ai-chat-be/internal/pkg/logger"
	"ai-chat-be/internal/pkg/serverutils"
	"ai-chat-be/internal/service"
	"ai-chat-be/pkg/chat/stream"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

type IChatController interface {
	RegisterRoutes(r fiber.Router)
	SendChat(ctx *fiber.Ctx) error
	GetAllSessions(ctx *fiber.Ctx) error
	GetChatHistory(ctx *fiber.Ctx) error
	UpdateSession(ctx *fiber.Ctx) error
	DeleteSession(ctx *fiber.Ctx) error
	EditMessage(ctx *fiber.Ctx) error
	DeleteMessage(ctx *fiber.Ctx) error
	SearchMessages(ctx *fiber.Ctx) error
}

type chatController struct {
	chatService service.IChatService
	jwt         fiber.Handler
	log         logger.ILogger
}

func NewChatController(chatService service.IChatService, jwt fiber.Handler, log logger.ILogger) IChatController {
	return &chatController{
		chatService: chatService,
		jwt:         jwt,
		log:         log,
	}
}

func (c *chatController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/chat/v1")
	h.Use(c.jwt)

	h.Post("send", c.SendChat)

	h.Use("stream", func(ctx *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(ctx) {
			return ctx.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	h.Get("stream", websocket.New(c.streamChat))

	h.Get("sessions", c.GetAllSessions)
	h.Get("sessions/:id/messages", c.GetChatHistory)
	h.Patch("sessions/:id", c.UpdateSession)
	h.Delete("sessions/:id", c.DeleteSession)

	h.Get("messages/search", c.SearchMessages)
	h.Patch("messages/:id", c.EditMessage)
	h.Delete("messages/:id", c.DeleteMessage)
}

func (c *chatController) SendChat(ctx *fiber.Ctx) error {
	userId := authenticatedUser(ctx)

	var req dto.SendChatRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.chatService.SendChat(ctx.Context(), userId, &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Chat completed", res))
}

// streamChat runs after the websocket upgrade. The turn inputs arrive
// query-encoded; the response is the chunk/error/done event protocol.
func (c *chatController) streamChat(conn *websocket.Conn) {
	defer conn.Close()

	userIdStr, _ := conn.Locals("user_id").(string)
	userId, err := uuid.Parse(userIdStr)
	if err != nil {
		conn.WriteJSON(dto.StreamEvent{Error: "invalid user identity"})
		conn.WriteJSON(dto.StreamEvent{Done: true})
		return
	}

	req := &dto.StreamChatRequest{
		Message: conn.Query("message"),
		Purpose: conn.Query("purpose"),
	}
	if raw := conn.Query("chat_session_id"); raw != "" {
		if id, err := uuid.Parse(raw); err == nil {
			req.ChatSessionId = &id
		}
	}
	if raw := conn.Query("custom_model_id"); raw != "" {
		if id, err := uuid.Parse(raw); err == nil {
			req.CustomModelId = &id
		}
	}
	if raw := conn.Query("attachment_ids"); raw != "" {
		req.AttachmentIds = splitCommaList(raw)
	}

	emitter := &websocketEmitter{conn: conn}
	if err := c.chatService.StreamChat(context.Background(), userId, req, emitter); err != nil {
		c.log.Warn("ChatController", "streaming turn ended with error", map[string]interface{}{
			"user_id": userId.String(),
			"error":   err.Error(),
		})
	}
}

func (c *chatController) GetAllSessions(ctx *fiber.Ctx) error {
	userId := authenticatedUser(ctx)

	res, err := c.chatService.GetAllSessions(ctx.Context(), userId)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Session list", res))
}

func (c *chatController) GetChatHistory(ctx *fiber.Ctx) error {
	userId := authenticatedUser(ctx)
	sessionId, _ := uuid.Parse(ctx.Params("id"))

	res, err := c.chatService.GetChatHistory(ctx.Context(), userId, sessionId)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Chat history", res))
}

func (c *chatController) UpdateSession(ctx *fiber.Ctx) error {
	userId := authenticatedUser(ctx)
	sessionId, _ := uuid.Parse(ctx.Params("id"))

	var req dto.UpdateSessionRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if req.Title != nil {
		if err := c.chatService.RenameSession(ctx.Context(), userId, sessionId, &dto.RenameSessionRequest{Title: *req.Title}); err != nil {
			return err
		}
	}
	if req.SystemPrompt != nil {
		if err := c.chatService.SetSystemPrompt(ctx.Context(), userId, sessionId, &dto.SetSystemPromptRequest{SystemPrompt: req.SystemPrompt}); err != nil {
			return err
		}
	}

	return ctx.JSON(serverutils.SuccessResponse[any]("Session updated", nil))
}

func (c *chatController) DeleteSession(ctx *fiber.Ctx) error {
	userId := authenticatedUser(ctx)
	sessionId, _ := uuid.Parse(ctx.Params("id"))

	if err := c.chatService.DeleteSession(ctx.Context(), userId, sessionId); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse[any]("Session deleted", nil))
}

func (c *chatController) EditMessage(ctx *fiber.Ctx) error {
	userId := authenticatedUser(ctx)
	messageId, _ := uuid.Parse(ctx.Params("id"))

	var req dto.EditMessageRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	if err := c.chatService.EditMessage(ctx.Context(), userId, messageId, &req); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse[any]("Message updated", nil))
}

func (c *chatController) DeleteMessage(ctx *fiber.Ctx) error {
	userId := authenticatedUser(ctx)
	messageId, _ := uuid.Parse(ctx.Params("id"))

	if err := c.chatService.DeleteMessage(ctx.Context(), userId, messageId); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse[any]("Message deleted", nil))
}

func (c *chatController) SearchMessages(ctx *fiber.Ctx) error {
	userId := authenticatedUser(ctx)

	res, err := c.chatService.SearchMessages(ctx.Context(), userId, ctx.Query("q"))
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Search results", res))
}

// websocketEmitter adapts a websocket connection to the stream emitter.
type websocketEmitter struct {
	conn *websocket.Conn
}

var _ stream.Emitter = &websocketEmitter{}

func (e *websocketEmitter) EmitChunk(text string) error {
	return e.conn.WriteJSON(dto.StreamEvent{Chunk: text})
}

func (e *websocketEmitter) EmitError(message string) error {
	return e.conn.WriteJSON(dto.StreamEvent{Error: message})
}

func (e *websocketEmitter) EmitDone(sessionID string) error {
	return e.conn.WriteJSON(dto.StreamEvent{Done: true, SessionId: sessionID})
}
