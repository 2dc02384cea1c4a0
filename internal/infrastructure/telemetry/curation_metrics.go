// Package telemetry provides OpenTelemetry integration for metrics collection.
package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// CurationMetrics provides domain metrics for the collection curation pipeline.
// It tracks webhook intake, dedup hits, product processing, and storefront
// collection writes.
type CurationMetrics struct {
	meter  metric.Meter
	logger *zap.Logger

	// Counter metrics (monotonically increasing)
	webhooksReceivedTotal  *Counter
	webhooksRejectedTotal  *Counter
	duplicateEventsTotal   *Counter
	productsProcessedTotal *Counter
	collectionWritesTotal  *Counter
	writeRetriesTotal      *Counter

	// Duration distributions
	productProcessDuration  *Histogram
	collectionWriteDuration *Histogram

	// Gauge metrics (point-in-time values)
	jobQueueDepth *Gauge
}

// CurationMetricsConfig holds configuration for curation metrics.
type CurationMetricsConfig struct {
	Meter  metric.Meter
	Logger *zap.Logger
}

// NewCurationMetrics creates a new CurationMetrics instance.
func NewCurationMetrics(cfg CurationMetricsConfig) (*CurationMetrics, error) {
	if cfg.Meter == nil {
		return nil, ErrMeterNil
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	cm := &CurationMetrics{
		meter:  cfg.Meter,
		logger: logger,
	}

	var err error

	// Webhook intake metrics
	cm.webhooksReceivedTotal, err = NewCounter(
		cfg.Meter,
		"curator_webhooks_received_total",
		"Total number of webhook deliveries received",
		"{webhooks}",
	)
	if err != nil {
		return nil, err
	}

	cm.webhooksRejectedTotal, err = NewCounter(
		cfg.Meter,
		"curator_webhooks_rejected_total",
		"Total number of webhook deliveries rejected before processing",
		"{webhooks}",
	)
	if err != nil {
		return nil, err
	}

	cm.duplicateEventsTotal, err = NewCounter(
		cfg.Meter,
		"curator_duplicate_events_total",
		"Total number of webhook events skipped as duplicates",
		"{events}",
	)
	if err != nil {
		return nil, err
	}

	// Processing metrics
	cm.productsProcessedTotal, err = NewCounter(
		cfg.Meter,
		"curator_products_processed_total",
		"Total number of products classified and written",
		"{products}",
	)
	if err != nil {
		return nil, err
	}

	cm.collectionWritesTotal, err = NewCounter(
		cfg.Meter,
		"curator_collection_writes_total",
		"Total number of collection membership writes",
		"{writes}",
	)
	if err != nil {
		return nil, err
	}

	cm.writeRetriesTotal, err = NewCounter(
		cfg.Meter,
		"curator_write_retries_total",
		"Total number of retried collection writes",
		"{retries}",
	)
	if err != nil {
		return nil, err
	}

	cm.productProcessDuration, err = NewHistogram(cfg.Meter, HistogramOpts{
		Name:        "curator_product_process_duration_seconds",
		Description: "Time spent processing one product end to end",
		Unit:        "s",
		Boundaries:  ProcessDurationBuckets,
	})
	if err != nil {
		return nil, err
	}

	cm.collectionWriteDuration, err = NewHistogram(cfg.Meter, HistogramOpts{
		Name:        "curator_collection_write_duration_seconds",
		Description: "Time spent on one collection write including retries",
		Unit:        "s",
		Boundaries:  WriteDurationBuckets,
	})
	if err != nil {
		return nil, err
	}

	cm.jobQueueDepth, err = NewGauge(
		cfg.Meter,
		"curator_sync_job_queue_depth",
		"Number of sync jobs waiting to run",
		"{jobs}",
	)
	if err != nil {
		return nil, err
	}

	return cm, nil
}

// NewNopCurationMetrics creates a CurationMetrics backed by the global meter
// provider, which is a no-op unless telemetry has been initialized. Useful in
// tests and as a safe default.
func NewNopCurationMetrics() *CurationMetrics {
	cm, _ := NewCurationMetrics(CurationMetricsConfig{
		Meter: otel.GetMeterProvider().Meter(TracerName),
	})
	return cm
}

// =============================================================================
// Webhook Intake Metrics
// =============================================================================

// RecordWebhookReceived records an accepted webhook delivery.
func (cm *CurationMetrics) RecordWebhookReceived(ctx context.Context, topic string) {
	cm.webhooksReceivedTotal.Inc(ctx, AttrWebhookTopic.String(topic))
}

// RecordWebhookRejected records a webhook delivery rejected before processing
// (bad signature, oversized payload, malformed body).
func (cm *CurationMetrics) RecordWebhookRejected(ctx context.Context, topic, reason string) {
	cm.webhooksRejectedTotal.Inc(ctx,
		AttrWebhookTopic.String(topic),
		AttrRejectReason.String(reason),
	)
}

// RecordDuplicateEvent records an event skipped because its ID was already processed.
func (cm *CurationMetrics) RecordDuplicateEvent(ctx context.Context, eventType string) {
	cm.duplicateEventsTotal.Inc(ctx, AttrEventType.String(eventType))
}

// =============================================================================
// Processing Metrics
// =============================================================================

// WriteOutcome labels the result of one collection write for metrics.
type WriteOutcome string

const (
	WriteOutcomeSuccess WriteOutcome = "success"
	WriteOutcomeFailed  WriteOutcome = "failed"
)

// RecordProductProcessed records one completed product run with its final status.
func (cm *CurationMetrics) RecordProductProcessed(ctx context.Context, status string, d time.Duration) {
	cm.productsProcessedTotal.Inc(ctx, AttrJobStatus.String(status))
	cm.productProcessDuration.RecordDuration(ctx, d)
}

// RecordCollectionWrite records one collection write outcome and its duration
// including any retry waits.
func (cm *CurationMetrics) RecordCollectionWrite(ctx context.Context, outcome WriteOutcome, d time.Duration) {
	cm.collectionWritesTotal.Inc(ctx, AttrWriteOutcome.String(string(outcome)))
	cm.collectionWriteDuration.RecordDuration(ctx, d)
}

// RecordWriteRetry records one retried write attempt.
func (cm *CurationMetrics) RecordWriteRetry(ctx context.Context) {
	cm.writeRetriesTotal.Inc(ctx)
}

// RecordJobQueueDepth records the current number of queued sync jobs.
func (cm *CurationMetrics) RecordJobQueueDepth(ctx context.Context, depth int64) {
	cm.jobQueueDepth.Record(ctx, depth)
}

// =============================================================================
// Error Types
// =============================================================================

// ErrMeterNil is returned when meter is nil.
var ErrMeterNil = &MetricsError{Op: "NewCurationMetrics", Err: "meter cannot be nil"}

// MetricsError represents a metrics-related error.
type MetricsError struct {
	Op  string
	Err string
}

func (e *MetricsError) Error() string {
	return e.Op + ": " + e.Err
}
