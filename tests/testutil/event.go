// Package testutil provides shared helpers for the curator backend tests.
package testutil

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/curator/backend/internal/domain/shared"
)

// MockEventHandler records every event it receives. It satisfies
// shared.EventHandler so tests can stand in for the classification pipeline
// behind the event bus.
type MockEventHandler struct {
	eventTypes []string

	mu      sync.Mutex
	handled []shared.DomainEvent
	err     error
}

// NewMockEventHandler subscribes the mock to the given event types.
func NewMockEventHandler(eventTypes ...string) *MockEventHandler {
	return &MockEventHandler{eventTypes: eventTypes}
}

// EventTypes returns the subscribed event types.
func (h *MockEventHandler) EventTypes() []string {
	return h.eventTypes
}

// Handle records the event and returns the configured error, if any.
func (h *MockEventHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.handled = append(h.handled, event)
	return h.err
}

// Handled returns a copy of the recorded events in arrival order.
func (h *MockEventHandler) Handled() []shared.DomainEvent {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]shared.DomainEvent, len(h.handled))
	copy(out, h.handled)
	return out
}

// HandledCount returns how many events Handle has recorded.
func (h *MockEventHandler) HandledCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.handled)
}

// SetError makes subsequent Handle calls fail with err. Events are still
// recorded, matching a handler that fails after partial work.
func (h *MockEventHandler) SetError(err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.err = err
}

// TestEvent is a minimal domain event for exercising the bus and the
// idempotency wrapper.
type TestEvent struct {
	shared.BaseDomainEvent
	Data string
}

// NewTestEvent creates a test event with a generated event ID.
func NewTestEvent(eventType string) *TestEvent {
	return &TestEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(eventType, "TestSubject", "subject-1"),
		Data:            "test-data",
	}
}

// NewTestEventWithID creates a test event pinned to a specific event ID, the
// way a webhook delivery pins its delivery identifier. Two events built with
// the same ID count as the same delivery.
func NewTestEventWithID(eventID, eventType string) *TestEvent {
	return &TestEvent{
		BaseDomainEvent: shared.NewDeliveredDomainEvent(eventType, "TestSubject", "subject-1", eventID),
		Data:            "test-data",
	}
}

// WaitForCondition polls condition until it returns true or timeout elapses.
// Reports whether the condition was met.
func WaitForCondition(t *testing.T, condition func() bool, timeout, interval time.Duration) bool {
	t.Helper()

	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if condition() {
			return true
		}
		time.Sleep(interval)
	}
	return false
}
