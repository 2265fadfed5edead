package service

import (
	"context"

	"ai-chat-be/internal/pkg/logger"
	"ai-chat-be/pkg/events"
	pktNats "ai-chat-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

type IPublisherService interface {
	// PublishEmbedJob hands an embedding job to the in-process worker.
	PublishEmbedJob(ctx context.Context, payload []byte) error

	// PublishEvent emits a domain event on the NATS bus. Failures are
	// logged, never surfaced; events are telemetry, not state.
	PublishEvent(ctx context.Context, event events.Event)
}

type publisherService struct {
	pubSub         *gochannel.GoChannel
	topicName      string
	eventPublisher *pktNats.Publisher
	log            logger.ILogger
}

func NewPublisherService(pubSub *gochannel.GoChannel, topicName string, eventPublisher *pktNats.Publisher, log logger.ILogger) IPublisherService {
	return &publisherService{
		pubSub:         pubSub,
		topicName:      topicName,
		eventPublisher: eventPublisher,
		log:            log,
	}
}

func (ps *publisherService) PublishEmbedJob(ctx context.Context, payload []byte) error {
	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.SetContext(ctx)
	return ps.pubSub.Publish(ps.topicName, msg)
}

func (ps *publisherService) PublishEvent(ctx context.Context, event events.Event) {
	if ps.eventPublisher == nil {
		return
	}
	if err := ps.eventPublisher.Publish(ctx, event); err != nil {
		ps.log.Warn("PublisherService", "failed to publish event", map[string]interface{}{
			"event_type": event.EventType(),
			"error":      err.Error(),
		})
	}
}
