package event

import (
	"time"

	"github.com/google/uuid"

	"github.com/dshills/deckstorm/internal/event/topic"
)

// Event represents an event in the system.
// Events are immutable once created.
type Event[T any] struct {
	// Type is the hierarchical event type (e.g., "render.completed").
	Type topic.Topic

	// Payload contains the event-specific data.
	Payload T

	// Metadata contains standard event information.
	Metadata Metadata
}

// Metadata contains standard information attached to every event.
type Metadata struct {
	// ID is a unique identifier for this event instance.
	ID string

	// Timestamp is when the event was created.
	Timestamp time.Time

	// Source identifies the component that published the event.
	Source string

	// CorrelationID links related events, such as the events caused by
	// one inject request.
	CorrelationID string
}

// NewEvent creates a new event with the given type and payload.
func NewEvent[T any](eventType topic.Topic, payload T, source string) Event[T] {
	return Event[T]{
		Type:    eventType,
		Payload: payload,
		Metadata: Metadata{
			ID:        uuid.NewString(),
			Timestamp: time.Now(),
			Source:    source,
		},
	}
}

// WithCorrelation returns a copy of the event with a correlation ID set.
func (e Event[T]) WithCorrelation(correlationID string) Event[T] {
	e.Metadata.CorrelationID = correlationID
	return e
}

// EventTopic returns the event's topic for type-erased handling.
func (e Event[T]) EventTopic() topic.Topic {
	return e.Type
}

// Envelope wraps any event for type-erased handling.
type Envelope struct {
	// Topic is the event topic.
	Topic topic.Topic

	// Payload is the type-erased event payload.
	Payload any

	// Metadata is the event metadata.
	Metadata Metadata
}

// NewEnvelope creates a new envelope from a typed event.
func NewEnvelope[T any](e Event[T]) Envelope {
	return Envelope{
		Topic:    e.Type,
		Payload:  e.Payload,
		Metadata: e.Metadata,
	}
}

// envelopeProvider is implemented by Event[T] for every T.
type envelopeProvider interface {
	toEnvelope() Envelope
}

func (e Event[T]) toEnvelope() Envelope {
	return NewEnvelope(e)
}

// ToEnvelope converts an Event[T] or Envelope value. ok is false for
// anything else.
func ToEnvelope(ev any) (env Envelope, ok bool) {
	switch v := ev.(type) {
	case Envelope:
		return v, true
	case envelopeProvider:
		return v.toEnvelope(), true
	default:
		return Envelope{}, false
	}
}

// PayloadAs returns the envelope payload as T.
func PayloadAs[T any](env Envelope) (T, bool) {
	v, ok := env.Payload.(T)
	return v, ok
}
