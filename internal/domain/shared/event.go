package shared

import (
	"time"

	"github.com/google/uuid"
)

// Actor identifies the user performing an audited action. The identity is
// supplied by the caller (auth is an external capability) and recorded
// verbatim on events, overrides and snapshots.
type Actor struct {
	ID    uuid.UUID `json:"id"`
	Email string    `json:"email,omitempty"`
	Role  string    `json:"role,omitempty"`
}

// SystemActor is used for events produced by the system itself, such as
// derived task recomputation.
var SystemActor = Actor{ID: uuid.Nil, Role: "system"}

// DomainEvent represents an event that occurred in the domain
type DomainEvent interface {
	EventID() uuid.UUID
	EventType() string
	OccurredAt() time.Time
	AggregateID() uuid.UUID
	AggregateType() string
	EventActor() Actor
	// Details returns the audit payload for this event. The map is emitted
	// literally to the audit log collaborator.
	Details() map[string]any
}

// BaseDomainEvent provides common fields for all domain events
type BaseDomainEvent struct {
	ID        uuid.UUID `json:"id"`
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	AggID     uuid.UUID `json:"aggregate_id"`
	AggType   string    `json:"aggregate_type"`
	Actor     Actor     `json:"actor"`
}

// EventID returns the unique event identifier
func (e *BaseDomainEvent) EventID() uuid.UUID {
	return e.ID
}

// EventType returns the type of the event
func (e *BaseDomainEvent) EventType() string {
	return e.Type
}

// OccurredAt returns when the event occurred
func (e *BaseDomainEvent) OccurredAt() time.Time {
	return e.Timestamp
}

// AggregateID returns the ID of the aggregate that produced this event
func (e *BaseDomainEvent) AggregateID() uuid.UUID {
	return e.AggID
}

// AggregateType returns the type of the aggregate
func (e *BaseDomainEvent) AggregateType() string {
	return e.AggType
}

// EventActor returns the identity that triggered the event
func (e *BaseDomainEvent) EventActor() Actor {
	return e.Actor
}

// Details returns an empty payload; events with audit detail override this
func (e *BaseDomainEvent) Details() map[string]any {
	return map[string]any{}
}

// NewBaseDomainEvent creates a new base domain event
func NewBaseDomainEvent(eventType, aggType string, aggID uuid.UUID, actor Actor) BaseDomainEvent {
	return BaseDomainEvent{
		ID:        uuid.New(),
		Type:      eventType,
		Timestamp: time.Now(),
		AggID:     aggID,
		AggType:   aggType,
		Actor:     actor,
	}
}
