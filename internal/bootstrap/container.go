package bootstrap

import (
	"context"
	"log"

	"ai-chat-be/internal/config"
	"ai-chat-be/internal/controller"
	"ai-chat-be/internal/pkg/logger"
	"ai-chat-be/internal/pkg/serverutils"
	"ai-chat-be/internal/repository/implementation"
	"ai-chat-be/internal/repository/memory"
	"ai-chat-be/internal/repository/unitofwork"
	"ai-chat-be/internal/service"
	"ai-chat-be/pkg/chat/access"
	"ai-chat-be/pkg/chat/attachment"
	"ai-chat-be/pkg/chat/router"
	"ai-chat-be/pkg/chat/stream"
	"ai-chat-be/pkg/embedding"
	"ai-chat-be/pkg/llm"
	"ai-chat-be/pkg/llm/factory"
	"ai-chat-be/pkg/llm/openai"

	pktNats "ai-chat-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	AuthController     controller.IAuthController
	ChatController     controller.IChatController
	ModelController    controller.IModelController
	UploadController   controller.IUploadController
	FeedbackController controller.IFeedbackController

	// Background services (exposed for main.go to run)
	ConsumerService service.IConsumerService
	AuditService    *service.AuditService

	// Shared infrastructure
	Logger logger.ILogger
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// Core facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")
	auditLogger := logger.NewIsolatedLogger(cfg.App.AuditLogFilePath)

	// In-process job bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// LLM provider
	llmBaseURL := cfg.Ai.OpenAIBaseURL
	llmModel := cfg.Ai.Model
	if cfg.Ai.Provider == "ollama" {
		llmBaseURL = cfg.Ai.OllamaBaseURL
		llmModel = cfg.Ai.OllamaModel
	}
	llmProvider, err := factory.NewLLMProvider(cfg.Ai.Provider, llmModel, llmBaseURL, cfg.Ai.OpenAIAPIKey)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize LLM Provider: %v", err)
	}
	log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.Provider, llmModel)

	// The assistant backend only exists on the OpenAI side.
	var assistantProvider llm.AssistantProvider
	if cfg.Ai.OpenAIAPIKey != "" {
		baseURL := cfg.Ai.OpenAIBaseURL
		if baseURL == "" {
			baseURL = "https://api.openai.com/v1"
		}
		assistantProvider = openai.NewAssistantClient(baseURL, cfg.Ai.OpenAIAPIKey)
	}

	// Embedding provider
	embeddingBaseURL := cfg.Ai.OpenAIBaseURL
	if cfg.Ai.EmbeddingProvider == "ollama" {
		embeddingBaseURL = cfg.Ai.OllamaBaseURL
	}
	embeddingProvider, err := embedding.NewEmbeddingProvider(cfg.Ai.EmbeddingProvider, cfg.Ai.EmbeddingModel, embeddingBaseURL, cfg.Ai.OpenAIAPIKey, cfg.Ai.EmbeddingDims)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize Embedding Provider: %v", err)
	}

	// NATS event bus
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
		natsPub = nil
	}
	natsSub, err := pktNats.NewSubscriber(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Subscriber: %v", err)
		natsSub = nil
	}

	// Redis for quota counters
	opt, err := redis.ParseURL(cfg.App.RedisURL)
	if err != nil {
		log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{
			Addr: cfg.App.RedisURL,
		}
	}
	rdb := redis.NewClient(opt)
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Printf("[WARN] Failed to connect to Redis: %v (quota enforcement degraded)", err)
	}

	// Domain components
	streamRepo := memory.NewStreamRepository()
	completionRouter := router.NewRouter(
		llmProvider,
		assistantProvider,
		embeddingProvider,
		implementation.NewCustomModelRepository(db),
		implementation.NewReferenceEmbeddingRepository(db),
		sysLogger,
	)
	reconciler := stream.NewReconciler(sysLogger)
	linker := attachment.NewLinker(cfg.Uploads.Dir, sysLogger)
	accessVerifier := access.NewVerifier(rdb, cfg.App.DailyTurnLimit)

	// Services
	publisherService := service.NewPublisherService(pubSub, cfg.Ai.EmbedDocTopicName, natsPub, sysLogger)
	chatService := service.NewChatService(uowFactory, completionRouter, reconciler, linker, accessVerifier, streamRepo, publisherService, sysLogger)
	modelService := service.NewModelService(uowFactory, assistantProvider, llmProvider, publisherService, cfg.Uploads.Dir, sysLogger)
	uploadService := service.NewUploadService(uowFactory, cfg.Uploads.Dir, int64(cfg.Uploads.MaxSizeBytes), sysLogger)
	authService := service.NewAuthService(uowFactory, cfg.App.JwtSecret, publisherService)
	feedbackService := service.NewFeedbackService(uowFactory)
	consumerService := service.NewConsumerService(pubSub, cfg.Ai.EmbedDocTopicName, uowFactory, embeddingProvider, cfg.Ai.EmbeddingDims, sysLogger)
	auditService := service.NewAuditService(natsSub, auditLogger)

	// Controllers
	jwtGuard := serverutils.NewJwtMiddleware(cfg.App.JwtSecret)

	return &Container{
		AuthController:     controller.NewAuthController(authService, jwtGuard),
		ChatController:     controller.NewChatController(chatService, jwtGuard, sysLogger),
		ModelController:    controller.NewModelController(modelService, jwtGuard),
		UploadController:   controller.NewUploadController(uploadService, jwtGuard),
		FeedbackController: controller.NewFeedbackController(feedbackService, jwtGuard),

		ConsumerService: consumerService,
		AuditService:    auditService,

		Logger: sysLogger,
	}
}
