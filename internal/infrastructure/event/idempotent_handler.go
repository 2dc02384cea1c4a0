package event

import (
	"context"
	"sync/atomic"

	"github.com/curator/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// IdempotencyMetrics tracks duplicate-suppression counters. Snapshots are
// surfaced by the system endpoints; OTLP counters are wired separately via
// DuplicateRecorder.
type IdempotencyMetrics struct {
	// EventsProcessed counts first-time deliveries handed to the handler
	EventsProcessed atomic.Int64

	// EventsDuplicate counts redeliveries dropped by the store
	EventsDuplicate atomic.Int64

	// EventsFailed counts deliveries whose handler returned an error
	EventsFailed atomic.Int64
}

// Stats returns a snapshot of the current counters
func (m *IdempotencyMetrics) Stats() IdempotencyStats {
	return IdempotencyStats{
		EventsProcessed: m.EventsProcessed.Load(),
		EventsDuplicate: m.EventsDuplicate.Load(),
		EventsFailed:    m.EventsFailed.Load(),
	}
}

// IdempotencyStats is a snapshot of idempotency counters
type IdempotencyStats struct {
	EventsProcessed int64 `json:"events_processed"`
	EventsDuplicate int64 `json:"events_duplicate"`
	EventsFailed    int64 `json:"events_failed"`
}

// DuplicateRecorder receives one signal per dropped duplicate delivery.
// telemetry.CurationMetrics satisfies it.
type DuplicateRecorder interface {
	RecordDuplicateEvent(ctx context.Context, eventType string)
}

// IdempotentHandler wraps an EventHandler with duplicate suppression keyed
// on the event ID. Webhook redeliveries reuse the storefront delivery ID as
// the event ID, so a redelivery within the TTL is dropped before the
// wrapped handler runs.
type IdempotentHandler struct {
	handler  shared.EventHandler
	store    shared.IdempotencyStore
	config   shared.IdempotencyConfig
	logger   *zap.Logger
	metrics  *IdempotencyMetrics
	recorder DuplicateRecorder
}

// IdempotentHandlerOption is a functional option for IdempotentHandler
type IdempotentHandlerOption func(*IdempotentHandler)

// WithIdempotencyConfig sets the idempotency configuration
func WithIdempotencyConfig(config shared.IdempotencyConfig) IdempotentHandlerOption {
	return func(h *IdempotentHandler) {
		h.config = config
	}
}

// WithIdempotencyMetrics sets the counter collector, shared across handlers
// when several are wrapped
func WithIdempotencyMetrics(metrics *IdempotencyMetrics) IdempotentHandlerOption {
	return func(h *IdempotentHandler) {
		if metrics != nil {
			h.metrics = metrics
		}
	}
}

// WithDuplicateRecorder adds an OTLP-side counter for dropped duplicates
func WithDuplicateRecorder(recorder DuplicateRecorder) IdempotentHandlerOption {
	return func(h *IdempotentHandler) {
		h.recorder = recorder
	}
}

// NewIdempotentHandler wraps handler with duplicate suppression
func NewIdempotentHandler(
	handler shared.EventHandler,
	store shared.IdempotencyStore,
	logger *zap.Logger,
	opts ...IdempotentHandlerOption,
) *IdempotentHandler {
	h := &IdempotentHandler{
		handler: handler,
		store:   store,
		config:  shared.DefaultIdempotencyConfig(),
		logger:  logger,
		metrics: &IdempotencyMetrics{},
	}

	for _, opt := range opts {
		opt(h)
	}

	return h
}

// EventTypes returns the event types the wrapped handler is interested in
func (h *IdempotentHandler) EventTypes() []string {
	return h.handler.EventTypes()
}

// Handle processes the event unless its ID was already marked within the
// TTL. A store failure is logged and the event is processed anyway;
// duplicate processing beats dropped webhooks.
func (h *IdempotentHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	if !h.config.Enabled {
		return h.handler.Handle(ctx, event)
	}

	eventID := event.EventID()

	isNew, err := h.store.MarkProcessed(ctx, eventID, h.config.TTL)
	if err != nil {
		h.logger.Warn("failed to check idempotency, processing anyway",
			zap.String("event_id", eventID),
			zap.String("event_type", event.EventType()),
			zap.Error(err),
		)
	} else if !isNew {
		h.metrics.EventsDuplicate.Add(1)
		if h.recorder != nil {
			h.recorder.RecordDuplicateEvent(ctx, event.EventType())
		}
		h.logger.Info("duplicate event dropped",
			zap.String("event_id", eventID),
			zap.String("event_type", event.EventType()),
		)
		return nil
	}

	if err := h.handler.Handle(ctx, event); err != nil {
		h.metrics.EventsFailed.Add(1)
		h.logger.Error("event handler failed",
			zap.String("event_id", eventID),
			zap.String("event_type", event.EventType()),
			zap.Error(err),
		)
		// The idempotency key stays set on failure; redeliveries inside the
		// TTL will not re-run the handler
		return err
	}

	h.metrics.EventsProcessed.Add(1)
	h.logger.Debug("event processed",
		zap.String("event_id", eventID),
		zap.String("event_type", event.EventType()),
	)

	return nil
}

// Metrics returns the counters for this handler.
func (h *IdempotentHandler) Metrics() *IdempotencyMetrics {
	return h.metrics
}

var _ shared.EventHandler = (*IdempotentHandler)(nil)
