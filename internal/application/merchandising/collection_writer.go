// Package merchandising orchestrates the curation pipeline: webhook intake,
// title classification, and collection membership writes against the
// storefront catalog.
package merchandising

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/curator/backend/internal/domain/merchandising"
	"github.com/curator/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

const (
	defaultRetryBudget = 3
	defaultRetryDelay  = 2 * time.Second
)

// CollectionWriterConfig holds the retry policy for membership writes
type CollectionWriterConfig struct {
	// RetryBudget is the number of additional attempts after the first
	RetryBudget int
	// RetryDelay is the fixed pause between attempts
	RetryDelay time.Duration
}

// CollectionWriter performs collection membership writes with a bounded
// retry loop. Rate-limit signals and other failures consume the same budget;
// only the log wording differs. Duplicate writes for the same pair are
// idempotent at the storefront, so retrying a write that actually landed is
// harmless.
type CollectionWriter struct {
	gateway merchandising.StorefrontGateway
	logger  *zap.Logger
	metrics *telemetry.CurationMetrics

	retryBudget int
	retryDelay  time.Duration
}

// NewCollectionWriter creates a writer over the given gateway
func NewCollectionWriter(gateway merchandising.StorefrontGateway, cfg CollectionWriterConfig, logger *zap.Logger, metrics *telemetry.CurationMetrics) *CollectionWriter {
	if logger == nil {
		logger = zap.NewNop()
	}
	if metrics == nil {
		metrics = telemetry.NewNopCurationMetrics()
	}

	budget := cfg.RetryBudget
	if budget <= 0 {
		budget = defaultRetryBudget
	}
	delay := cfg.RetryDelay
	if delay <= 0 {
		delay = defaultRetryDelay
	}

	return &CollectionWriter{
		gateway:     gateway,
		logger:      logger,
		metrics:     metrics,
		retryBudget: budget,
		retryDelay:  delay,
	}
}

// Write adds the product to the collection, retrying up to the budget. It
// returns nil once a write succeeds, ctx.Err() when cancelled mid-wait, and
// a terminal error wrapping merchandising.ErrCollectionWriteFailed once the
// budget is exhausted.
func (w *CollectionWriter) Write(ctx context.Context, productID int64, collectionID merchandising.CollectionID) error {
	ctx, span := telemetry.StartServiceSpan(ctx, "writer", "add_to_collection")
	defer span.End()
	telemetry.SetAttributes(span,
		telemetry.SpanAttrProductID, productID,
		telemetry.SpanAttrCollectionID, collectionID.String(),
		telemetry.SpanAttrBudget, w.retryBudget,
	)

	start := time.Now()
	var lastErr error

	for attempt := 1; attempt <= w.retryBudget+1; attempt++ {
		if attempt > 1 {
			if err := sleepCtx(ctx, w.retryDelay); err != nil {
				telemetry.RecordError(span, err)
				return err
			}
			w.metrics.RecordWriteRetry(ctx)
			telemetry.AddEvent(span, "write_retried", telemetry.SpanAttrAttempt, attempt)
		}

		err := w.gateway.AddProductToCollection(ctx, productID, collectionID)
		if err == nil {
			w.metrics.RecordCollectionWrite(ctx, telemetry.WriteOutcomeSuccess, time.Since(start))
			if attempt > 1 {
				w.logger.Info("Collection write succeeded after retry",
					zap.Int64("product_id", productID),
					zap.String("collection_id", collectionID.String()),
					zap.Int("attempt", attempt),
				)
			}
			return nil
		}

		lastErr = err
		if errors.Is(err, merchandising.ErrRateLimited) {
			w.logger.Warn("Collection write rate limited",
				zap.Int64("product_id", productID),
				zap.String("collection_id", collectionID.String()),
				zap.Int("attempt", attempt),
				zap.Error(err),
			)
		} else {
			w.logger.Warn("Collection write failed",
				zap.Int64("product_id", productID),
				zap.String("collection_id", collectionID.String()),
				zap.Int("attempt", attempt),
				zap.Error(err),
			)
		}
	}

	w.metrics.RecordCollectionWrite(ctx, telemetry.WriteOutcomeFailed, time.Since(start))
	err := fmt.Errorf("%w: product %d collection %s after %d attempts: %v",
		merchandising.ErrCollectionWriteFailed, productID, collectionID, w.retryBudget+1, lastErr)
	telemetry.RecordError(span, err)
	w.logger.Error("Collection write exhausted retries",
		zap.Int64("product_id", productID),
		zap.String("collection_id", collectionID.String()),
		zap.Int("attempts", w.retryBudget+1),
		zap.Error(lastErr),
	)
	return err
}
