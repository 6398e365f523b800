package kafka

import (
	"context"
	"fmt"
	"time"

	"github.com/mes-platform/production-service/internal/domain"
	"github.com/mes-platform/production-service/pkg/cloudevents"
	"github.com/mes-platform/production-service/pkg/kafka"
	"github.com/mes-platform/production-service/pkg/metrics"
)

// EventPublisher implements domain event publishing over Kafka. Events are
// wrapped as CloudEvents and routed to a topic by their type prefix; job
// events carry the job number as partition key so all events of one job
// stay ordered.
type EventPublisher struct {
	producer     *kafka.Producer
	eventFactory *cloudevents.EventFactory
	metrics      *metrics.Metrics
}

// NewEventPublisher creates a new Kafka-based event publisher
func NewEventPublisher(
	producer *kafka.Producer,
	eventFactory *cloudevents.EventFactory,
	m *metrics.Metrics,
) *EventPublisher {
	return &EventPublisher{
		producer:     producer,
		eventFactory: eventFactory,
		metrics:      m,
	}
}

// Publish publishes a single domain event
func (p *EventPublisher) Publish(ctx context.Context, event domain.DomainEvent) error {
	ce := p.toCloudEvent(ctx, event)
	topic := kafka.TopicForEventType(event.EventType())

	start := time.Now()
	err := p.producer.PublishEvent(ctx, topic, ce)
	p.metrics.RecordKafkaPublish(topic, event.EventType(), err == nil, time.Since(start))
	if err != nil {
		return fmt.Errorf("failed to publish %s: %w", event.EventType(), err)
	}
	return nil
}

// PublishAll publishes multiple domain events in order
func (p *EventPublisher) PublishAll(ctx context.Context, events []domain.DomainEvent) error {
	for _, event := range events {
		if err := p.Publish(ctx, event); err != nil {
			return err
		}
	}
	return nil
}

func (p *EventPublisher) toCloudEvent(ctx context.Context, event domain.DomainEvent) *cloudevents.MESCloudEvent {
	switch e := event.(type) {
	case *domain.JobCreatedEvent:
		return p.eventFactory.CreateJobEvent(ctx, e.EventType(), e.JobNumber, e.OrderNumber, e)
	case *domain.StepAssignedEvent:
		return p.eventFactory.CreateJobEvent(ctx, e.EventType(), e.JobNumber, "", e)
	case *domain.StepAcceptedEvent:
		return p.eventFactory.CreateJobEvent(ctx, e.EventType(), e.JobNumber, "", e)
	case *domain.StepStartedEvent:
		return p.eventFactory.CreateJobEvent(ctx, e.EventType(), e.JobNumber, "", e)
	case *domain.StepCompletedEvent:
		return p.eventFactory.CreateJobEvent(ctx, e.EventType(), e.JobNumber, "", e)
	case *domain.StageChangedEvent:
		return p.eventFactory.CreateJobEvent(ctx, e.EventType(), e.JobNumber, e.OrderNumber, e)
	case *domain.JobFinalizedEvent:
		return p.eventFactory.CreateJobEvent(ctx, e.EventType(), e.JobNumber, e.OrderNumber, e)
	case *domain.JobSplitEvent:
		return p.eventFactory.CreateJobEvent(ctx, e.EventType(), e.JobNumber, "", e)
	case *domain.StockSyncedEvent:
		return p.eventFactory.CreateEvent(ctx, e.EventType(), "stock/"+e.JobNumber, e)
	case *domain.MaterialsRecomputedEvent:
		return p.eventFactory.CreateEvent(ctx, e.EventType(), "materials", e)
	default:
		return p.eventFactory.CreateEvent(ctx, event.EventType(), "production", event)
	}
}
