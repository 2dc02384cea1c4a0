package merchandising

import (
	"context"
	"fmt"

	"github.com/curator/backend/internal/domain/merchandising"
	"github.com/curator/backend/internal/domain/shared"
	"github.com/curator/backend/internal/infrastructure/scheduler"
	"go.uber.org/zap"
)

// ProductJobSubmitter enqueues single-product curation jobs.
// scheduler.SyncScheduler satisfies it.
type ProductJobSubmitter interface {
	ScheduleProductSync(product merchandising.Product) (*scheduler.SyncJob, error)
}

// ProductUpsertedHandler turns verified product.upserted events into
// scheduler jobs. Routing through the scheduler keeps processing strictly
// sequential: concurrent webhook deliveries land on the same single worker.
type ProductUpsertedHandler struct {
	submitter ProductJobSubmitter
	logger    *zap.Logger
}

// NewProductUpsertedHandler creates the handler
func NewProductUpsertedHandler(submitter ProductJobSubmitter, logger *zap.Logger) *ProductUpsertedHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProductUpsertedHandler{
		submitter: submitter,
		logger:    logger,
	}
}

// EventTypes returns the event types this handler is interested in
func (h *ProductUpsertedHandler) EventTypes() []string {
	return []string{merchandising.EventTypeProductUpserted}
}

// Handle enqueues a product sync job for the upserted product
func (h *ProductUpsertedHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	upserted, ok := event.(*merchandising.ProductUpserted)
	if !ok {
		h.logger.Error("unexpected event type",
			zap.String("expected", merchandising.EventTypeProductUpserted),
			zap.String("actual", event.EventType()),
		)
		return fmt.Errorf("unexpected event type: expected %s, got %s",
			merchandising.EventTypeProductUpserted, event.EventType())
	}

	job, err := h.submitter.ScheduleProductSync(upserted.Product)
	if err != nil {
		// The webhook was already acked; a full queue surfaces through logs
		// and the job queue depth gauge.
		h.logger.Error("Failed to enqueue product sync",
			zap.String("event_id", event.EventID()),
			zap.Int64("product_id", upserted.Product.ID),
			zap.Error(err),
		)
		return fmt.Errorf("enqueue product sync: %w", err)
	}

	h.logger.Info("Product sync enqueued",
		zap.String("event_id", event.EventID()),
		zap.Int64("product_id", upserted.Product.ID),
		zap.String("job_id", job.ID.String()),
	)
	return nil
}

// Ensure ProductUpsertedHandler implements shared.EventHandler
var _ shared.EventHandler = (*ProductUpsertedHandler)(nil)
