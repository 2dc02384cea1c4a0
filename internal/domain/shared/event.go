package shared

import (
	"time"

	"github.com/google/uuid"
)

// DomainEvent represents an event that occurred in the domain.
// The event ID doubles as the idempotency key: when an event originates
// from an external delivery (a storefront webhook), the delivery ID is
// used so that redeliveries collapse onto the same event.
type DomainEvent interface {
	EventID() string
	EventType() string
	OccurredAt() time.Time
	SubjectID() string
	SubjectType() string
}

// BaseDomainEvent provides common fields for all domain events
type BaseDomainEvent struct {
	ID          string    `json:"id"`
	Type        string    `json:"type"`
	Timestamp   time.Time `json:"timestamp"`
	Subject     string    `json:"subject_id"`
	SubjectKind string    `json:"subject_type"`
}

// EventID returns the unique event identifier
func (e *BaseDomainEvent) EventID() string {
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

// SubjectID returns the ID of the subject the event is about
func (e *BaseDomainEvent) SubjectID() string {
	return e.Subject
}

// SubjectType returns the kind of subject the event is about
func (e *BaseDomainEvent) SubjectType() string {
	return e.SubjectKind
}

// NewBaseDomainEvent creates a base event with a generated event ID
func NewBaseDomainEvent(eventType, subjectType, subjectID string) BaseDomainEvent {
	return NewDeliveredDomainEvent(eventType, subjectType, subjectID, "")
}

// NewDeliveredDomainEvent creates a base event carrying an externally
// supplied delivery ID. An empty deliveryID falls back to a new UUID.
func NewDeliveredDomainEvent(eventType, subjectType, subjectID, deliveryID string) BaseDomainEvent {
	if deliveryID == "" {
		deliveryID = uuid.New().String()
	}
	return BaseDomainEvent{
		ID:          deliveryID,
		Type:        eventType,
		Timestamp:   time.Now(),
		Subject:     subjectID,
		SubjectKind: subjectType,
	}
}
