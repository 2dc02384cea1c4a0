package testutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockEventHandlerRecordsEvents(t *testing.T) {
	handler := NewMockEventHandler("ProductUpserted", "ProductDeleted")

	assert.Equal(t, []string{"ProductUpserted", "ProductDeleted"}, handler.EventTypes())
	assert.Equal(t, 0, handler.HandledCount())

	event := NewTestEvent("ProductUpserted")
	require.NoError(t, handler.Handle(t.Context(), event))

	assert.Equal(t, 1, handler.HandledCount())
	assert.Equal(t, event, handler.Handled()[0])
}

func TestMockEventHandlerConfiguredError(t *testing.T) {
	handler := NewMockEventHandler("ProductUpserted")
	handler.SetError(assert.AnError)

	err := handler.Handle(t.Context(), NewTestEvent("ProductUpserted"))

	assert.Equal(t, assert.AnError, err)
	assert.Equal(t, 1, handler.HandledCount(), "failing handler still records the event")
}

func TestNewTestEvent(t *testing.T) {
	event := NewTestEvent("ProductUpserted")

	assert.NotEmpty(t, event.EventID())
	assert.Equal(t, "ProductUpserted", event.EventType())
	assert.Equal(t, "TestSubject", event.SubjectType())
	assert.Equal(t, "subject-1", event.SubjectID())
	assert.False(t, event.OccurredAt().IsZero())
	assert.Equal(t, "test-data", event.Data)

	other := NewTestEvent("ProductUpserted")
	assert.NotEqual(t, event.EventID(), other.EventID(), "generated IDs must be unique")
}

func TestNewTestEventWithID(t *testing.T) {
	event := NewTestEventWithID("delivery-42", "ProductDeleted")

	assert.Equal(t, "delivery-42", event.EventID())
	assert.Equal(t, "ProductDeleted", event.EventType())

	dup := NewTestEventWithID("delivery-42", "ProductDeleted")
	assert.Equal(t, event.EventID(), dup.EventID(), "same delivery ID means same event identity")
}

func TestWaitForCondition(t *testing.T) {
	t.Run("condition met", func(t *testing.T) {
		handler := NewMockEventHandler("ProductUpserted")
		go func() {
			time.Sleep(20 * time.Millisecond)
			_ = handler.Handle(t.Context(), NewTestEvent("ProductUpserted"))
		}()

		met := WaitForCondition(t, func() bool {
			return handler.HandledCount() > 0
		}, 200*time.Millisecond, 10*time.Millisecond)

		assert.True(t, met)
	})

	t.Run("times out when condition never holds", func(t *testing.T) {
		met := WaitForCondition(t, func() bool {
			return false
		}, 50*time.Millisecond, 10*time.Millisecond)

		assert.False(t, met)
	})
}
