package service

import (
	"context"
	"encoding/json"
	"testing"

	"ai-chat-be/internal/dto"
	"ai-chat-be/internal/entity"
	"ai-chat-be/internal/repository/specification"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
)

type staticModelRepo struct {
	model *entity.CustomModel
}

func (r *staticModelRepo) Create(ctx context.Context, customModel *entity.CustomModel) error {
	return nil
}
func (r *staticModelRepo) Update(ctx context.Context, customModel *entity.CustomModel) error {
	return nil
}
func (r *staticModelRepo) Delete(ctx context.Context, id uuid.UUID) error { return nil }
func (r *staticModelRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.CustomModel, error) {
	return r.model, nil
}
func (r *staticModelRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.CustomModel, error) {
	return nil, nil
}

type recordingEmbedRepo struct {
	bulkCreates int
	stored      []*entity.ReferenceEmbedding
	clears      int
}

func (r *recordingEmbedRepo) CreateBulk(ctx context.Context, embeddings []*entity.ReferenceEmbedding) error {
	r.bulkCreates++
	r.stored = append(r.stored, embeddings...)
	return nil
}

func (r *recordingEmbedRepo) DeleteByCustomModelId(ctx context.Context, customModelId uuid.UUID) error {
	r.clears++
	return nil
}

func (r *recordingEmbedRepo) FindNearest(ctx context.Context, customModelId uuid.UUID, query []float32, limit int) ([]*entity.ReferenceEmbedding, error) {
	return nil, nil
}

type fixedEmbedder struct {
	dims int
}

func (e fixedEmbedder) Generate(ctx context.Context, text string) ([]float32, error) {
	return make([]float32, e.dims), nil
}

func embedJob(t *testing.T, customModelId uuid.UUID) *message.Message {
	t.Helper()
	payload, err := json.Marshal(dto.PublishEmbedDocMessage{CustomModelId: customModelId})
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	return message.NewMessage(uuid.NewString(), payload)
}

func assertAcked(t *testing.T, msg *message.Message) {
	t.Helper()
	select {
	case <-msg.Acked():
	default:
		t.Fatal("message was not acked")
	}
}

func assertNacked(t *testing.T, msg *message.Message) {
	t.Helper()
	select {
	case <-msg.Nacked():
	default:
		t.Fatal("message was not nacked")
	}
}

func newTestConsumer(uow *fakeUnitOfWork, dims int, embedder fixedEmbedder) *consumerService {
	return &consumerService{
		uowFactory:        &fakeUowFactory{uow: uow},
		embeddingProvider: embedder,
		embeddingDims:     dims,
		log:               nopLogger{},
		attempts:          make(map[string]int),
	}
}

func TestProcessMessageStoresChunks(t *testing.T) {
	modelId := uuid.New()
	embedRepo := &recordingEmbedRepo{}
	uow := newFakeUnitOfWork()
	uow.models = &staticModelRepo{model: &entity.CustomModel{
		Id:     modelId,
		Config: entity.CustomModelConfig{ReferenceText: "reference material"},
	}}
	uow.embeddings = embedRepo

	consumer := newTestConsumer(uow, 768, fixedEmbedder{dims: 768})

	msg := embedJob(t, modelId)
	consumer.processMessage(context.Background(), msg)

	assertAcked(t, msg)
	if embedRepo.clears != 1 {
		t.Fatalf("clears = %d, want 1", embedRepo.clears)
	}
	if embedRepo.bulkCreates != 1 || len(embedRepo.stored) == 0 {
		t.Fatalf("bulkCreates = %d with %d rows, want one bulk insert", embedRepo.bulkCreates, len(embedRepo.stored))
	}
}

// A provider whose output width cannot fit the vector column is a
// configuration problem, not a transient one; the job must be dropped
// instead of redelivered.
func TestProcessMessageDropsDimensionMismatch(t *testing.T) {
	modelId := uuid.New()
	embedRepo := &recordingEmbedRepo{}
	uow := newFakeUnitOfWork()
	uow.models = &staticModelRepo{model: &entity.CustomModel{
		Id:     modelId,
		Config: entity.CustomModelConfig{ReferenceText: "reference material"},
	}}
	uow.embeddings = embedRepo

	consumer := newTestConsumer(uow, 768, fixedEmbedder{dims: 1536})

	msg := embedJob(t, modelId)
	consumer.processMessage(context.Background(), msg)

	assertAcked(t, msg)
	if embedRepo.bulkCreates != 0 || embedRepo.clears != 0 {
		t.Fatal("mismatched embeddings must not touch the store")
	}
}

func TestRetryOrDropCapsRedelivery(t *testing.T) {
	consumer := newTestConsumer(newFakeUnitOfWork(), 768, fixedEmbedder{dims: 768})

	// Redeliveries of the same job keep the message UUID.
	jobId := uuid.NewString()
	for attempt := 1; attempt < maxEmbedAttempts; attempt++ {
		msg := message.NewMessage(jobId, nil)
		consumer.retryOrDrop(msg)
		assertNacked(t, msg)
	}

	last := message.NewMessage(jobId, nil)
	consumer.retryOrDrop(last)
	assertAcked(t, last)

	// The attempt count resets with the drop.
	fresh := message.NewMessage(jobId, nil)
	consumer.retryOrDrop(fresh)
	assertNacked(t, fresh)
}
