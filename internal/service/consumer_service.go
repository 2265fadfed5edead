package service

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"ai-chat-be/internal/dto"
	"ai-chat-be/internal/entity"
	"ai-chat-be/internal/pkg/logger"
	"ai-chat-be/internal/repository/specification"
	"ai-chat-be/internal/repository/unitofwork"
	"ai-chat-be/pkg/embedding"
	"ai-chat-be/pkg/utils"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
)

// Chunking bounds for reference documents. Character-based; roughly 375
// tokens per chunk with boundary overlap.
const (
	referenceChunkSize    = 1500
	referenceChunkOverlap = 200
)

// maxEmbedAttempts bounds redelivery of a failing embed job. The
// gochannel subscriber redelivers on Nack, so an unbounded retry would
// re-call the embedding API in a hot loop.
const maxEmbedAttempts = 5

type IConsumerService interface {
	Consume(ctx context.Context) error
}

// consumerService embeds custom-model reference documents off the request
// path. Each job replaces the model's stored chunks wholesale.
type consumerService struct {
	pubSub            *gochannel.GoChannel
	topicName         string
	uowFactory        unitofwork.RepositoryFactory
	embeddingProvider embedding.EmbeddingProvider
	embeddingDims     int
	log               logger.ILogger

	mu       sync.Mutex
	attempts map[string]int
}

func NewConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	uowFactory unitofwork.RepositoryFactory,
	embeddingProvider embedding.EmbeddingProvider,
	embeddingDims int,
	log logger.ILogger,
) IConsumerService {
	return &consumerService{
		pubSub:            pubSub,
		topicName:         topicName,
		uowFactory:        uowFactory,
		embeddingProvider: embeddingProvider,
		embeddingDims:     embeddingDims,
		log:               log,
		attempts:          make(map[string]int),
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.PublishEmbedDocMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		cs.log.Error("ConsumerService", "failed to unmarshal embed job", map[string]interface{}{
			"error": err.Error(),
		})
		msg.Ack() // Ack invalid messages to prevent infinite retry
		return
	}

	uow := cs.uowFactory.NewUnitOfWork(ctx)

	customModel, err := uow.CustomModelRepository().FindOne(ctx, specification.ByID{ID: payload.CustomModelId})
	if err != nil {
		cs.log.Error("ConsumerService", "failed to load custom model", map[string]interface{}{
			"custom_model_id": payload.CustomModelId.String(),
			"error":           err.Error(),
		})
		cs.retryOrDrop(msg)
		return
	}
	if customModel == nil || customModel.Config.ReferenceText == "" {
		// Model deleted or has nothing to embed.
		cs.ackDone(msg)
		return
	}

	chunks := utils.SplitText(customModel.Config.ReferenceText, referenceChunkSize, referenceChunkOverlap)

	newEmbeddings := make([]*entity.ReferenceEmbedding, 0, len(chunks))
	for i, chunk := range chunks {
		vector, err := cs.embeddingProvider.Generate(ctx, chunk)
		if err != nil {
			cs.log.Error("ConsumerService", "failed to embed reference chunk", map[string]interface{}{
				"custom_model_id": payload.CustomModelId.String(),
				"chunk_index":     i,
				"error":           err.Error(),
			})
			cs.retryOrDrop(msg)
			return
		}
		if cs.embeddingDims > 0 && len(vector) != cs.embeddingDims {
			// Provider misconfiguration; the store would reject every
			// insert, so retrying cannot succeed.
			cs.log.Error("ConsumerService", "embedding dimension mismatch, dropping job", map[string]interface{}{
				"custom_model_id": payload.CustomModelId.String(),
				"got":             len(vector),
				"want":            cs.embeddingDims,
			})
			cs.ackDone(msg)
			return
		}
		newEmbeddings = append(newEmbeddings, &entity.ReferenceEmbedding{
			Id:            uuid.New(),
			CustomModelId: customModel.Id,
			ChunkIndex:    i,
			Content:       chunk,
			Embedding:     vector,
			CreatedAt:     time.Now(),
		})
	}

	if err := uow.Begin(ctx); err != nil {
		cs.log.Error("ConsumerService", "failed to open transaction", map[string]interface{}{
			"error": err.Error(),
		})
		cs.retryOrDrop(msg)
		return
	}
	defer uow.Rollback()

	if err := uow.ReferenceEmbeddingRepository().DeleteByCustomModelId(ctx, customModel.Id); err != nil {
		cs.log.Error("ConsumerService", "failed to clear old embeddings", map[string]interface{}{
			"custom_model_id": customModel.Id.String(),
			"error":           err.Error(),
		})
		cs.retryOrDrop(msg)
		return
	}
	if err := uow.ReferenceEmbeddingRepository().CreateBulk(ctx, newEmbeddings); err != nil {
		cs.log.Error("ConsumerService", "failed to store embeddings", map[string]interface{}{
			"custom_model_id": customModel.Id.String(),
			"error":           err.Error(),
		})
		cs.retryOrDrop(msg)
		return
	}
	if err := uow.Commit(); err != nil {
		cs.log.Error("ConsumerService", "failed to commit embeddings", map[string]interface{}{
			"error": err.Error(),
		})
		cs.retryOrDrop(msg)
		return
	}

	cs.log.Info("ConsumerService", "reference document embedded", map[string]interface{}{
		"custom_model_id": customModel.Id.String(),
		"chunks":          len(newEmbeddings),
	})
	cs.ackDone(msg)
}

// retryOrDrop Nacks for redelivery until the attempt cap, then Acks so a
// permanently failing job stops circulating. Redeliveries keep the
// message UUID, which keys the attempt count.
func (cs *consumerService) retryOrDrop(msg *message.Message) {
	cs.mu.Lock()
	cs.attempts[msg.UUID]++
	attempt := cs.attempts[msg.UUID]
	cs.mu.Unlock()

	if attempt >= maxEmbedAttempts {
		cs.log.Error("ConsumerService", "dropping embed job after repeated failures", map[string]interface{}{
			"message_id": msg.UUID,
			"attempts":   attempt,
		})
		cs.ackDone(msg)
		return
	}
	msg.Nack()
}

// ackDone acknowledges the message and clears its attempt count.
func (cs *consumerService) ackDone(msg *message.Message) {
	cs.mu.Lock()
	delete(cs.attempts, msg.UUID)
	cs.mu.Unlock()
	msg.Ack()
}
