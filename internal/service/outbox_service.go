package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/redis/rueidis"

	"github.com/Shivanand-hulikatti/photographer-assignment/internal/model"
	"github.com/Shivanand-hulikatti/photographer-assignment/internal/repository"
)

// StreamPublisher appends one outbox event to a message stream.
type StreamPublisher interface {
	Publish(ctx context.Context, event *model.OutboxEvent) error
}

// RedisStreamPublisher XADDs outbox events to a Redis stream.
type RedisStreamPublisher struct {
	client rueidis.Client
	stream string
}

// NewRedisStreamPublisher creates a publisher writing to stream.
func NewRedisStreamPublisher(client rueidis.Client, stream string) *RedisStreamPublisher {
	return &RedisStreamPublisher{client: client, stream: stream}
}

// Publish adds event to the stream with an auto-generated entry id.
func (p *RedisStreamPublisher) Publish(ctx context.Context, event *model.OutboxEvent) error {
	cmd := p.client.B().Xadd().Key(p.stream).Id("*").
		FieldValue().FieldValue("event_type", event.EventType).
		FieldValue("aggregate_id", event.AggregateID).
		FieldValue("payload", string(event.Payload)).
		Build()
	if err := p.client.Do(ctx, cmd).Error(); err != nil {
		return fmt.Errorf("xadd %s: %w", p.stream, err)
	}
	return nil
}

// OutboxService relays committed outbox rows to a stream.
type OutboxService struct {
	outboxRepo repository.OutboxRepository
	publisher  StreamPublisher
	log        *slog.Logger
}

// NewOutboxService creates an OutboxService.
func NewOutboxService(outboxRepo repository.OutboxRepository, publisher StreamPublisher, log *slog.Logger) *OutboxService {
	if log == nil {
		log = slog.Default()
	}
	return &OutboxService{outboxRepo: outboxRepo, publisher: publisher, log: log}
}

// ProcessUnpublishedEvents publishes up to limit pending rows, oldest first,
// and returns how many were published. A row that fails to publish stays
// pending for the next call; the rest of the batch still goes out.
func (s *OutboxService) ProcessUnpublishedEvents(ctx context.Context, limit int) (int, error) {
	events, err := s.outboxRepo.GetUnpublishedEvents(ctx, limit)
	if err != nil {
		return 0, fmt.Errorf("load unpublished events: %w", err)
	}

	published := 0
	for _, event := range events {
		if err := s.publisher.Publish(ctx, event); err != nil {
			s.log.WarnContext(ctx, "failed to publish outbox event", "id", event.ID, "error", err)
			continue
		}
		if err := s.outboxRepo.MarkAsPublished(ctx, event.ID); err != nil {
			s.log.WarnContext(ctx, "failed to mark outbox event published", "id", event.ID, "error", err)
			continue
		}
		published++
		s.log.DebugContext(ctx, "published outbox event", "id", event.ID, "type", event.EventType)
	}
	return published, nil
}
