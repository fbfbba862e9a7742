package shared

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// DomainEvent is implemented by all domain events
type DomainEvent interface {
	EventID() uuid.UUID
	EventType() string
	OccurredAt() time.Time
	AggregateID() uuid.UUID
	AggregateType() string
}

// BaseDomainEvent provides the common event envelope
type BaseDomainEvent struct {
	ID            uuid.UUID `json:"event_id"`
	Type          string    `json:"event_type"`
	Timestamp     time.Time `json:"occurred_at"`
	AggregateUUID uuid.UUID `json:"aggregate_id"`
	Aggregate     string    `json:"aggregate_type"`
}

// NewBaseDomainEvent creates an event envelope for an aggregate
func NewBaseDomainEvent(eventType string, aggregateID uuid.UUID, aggregateType string) BaseDomainEvent {
	return BaseDomainEvent{
		ID:            uuid.New(),
		Type:          eventType,
		Timestamp:     time.Now(),
		AggregateUUID: aggregateID,
		Aggregate:     aggregateType,
	}
}

func (e BaseDomainEvent) EventID() uuid.UUID     { return e.ID }
func (e BaseDomainEvent) EventType() string      { return e.Type }
func (e BaseDomainEvent) OccurredAt() time.Time  { return e.Timestamp }
func (e BaseDomainEvent) AggregateID() uuid.UUID { return e.AggregateUUID }
func (e BaseDomainEvent) AggregateType() string  { return e.Aggregate }

// EventHandler processes a published domain event
type EventHandler interface {
	Handle(ctx context.Context, event DomainEvent) error
	EventTypes() []string
}

// EventPublisher publishes domain events to interested handlers
type EventPublisher interface {
	Publish(ctx context.Context, events ...DomainEvent) error
}

// EventBus routes events from publishers to subscribed handlers
type EventBus interface {
	EventPublisher
	Subscribe(handler EventHandler)
}
