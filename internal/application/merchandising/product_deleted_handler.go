package merchandising

import (
	"context"
	"fmt"

	"github.com/curator/backend/internal/domain/merchandising"
	"github.com/curator/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// ProductDeletedHandler acknowledges product.deleted events. The storefront
// has no membership-removal API, so collection memberships of a deleted
// product disappear with the product itself; all that is left to do here is
// record the deletion.
type ProductDeletedHandler struct {
	logger *zap.Logger
}

// NewProductDeletedHandler creates the handler
func NewProductDeletedHandler(logger *zap.Logger) *ProductDeletedHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProductDeletedHandler{logger: logger}
}

// EventTypes returns the event types this handler is interested in
func (h *ProductDeletedHandler) EventTypes() []string {
	return []string{merchandising.EventTypeProductDeleted}
}

// Handle logs the deletion
func (h *ProductDeletedHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	deleted, ok := event.(*merchandising.ProductDeleted)
	if !ok {
		h.logger.Error("unexpected event type",
			zap.String("expected", merchandising.EventTypeProductDeleted),
			zap.String("actual", event.EventType()),
		)
		return fmt.Errorf("unexpected event type: expected %s, got %s",
			merchandising.EventTypeProductDeleted, event.EventType())
	}

	h.logger.Info("Product deleted at storefront",
		zap.String("event_id", event.EventID()),
		zap.Int64("product_id", deleted.ProductID),
	)
	return nil
}

// Ensure ProductDeletedHandler implements shared.EventHandler
var _ shared.EventHandler = (*ProductDeletedHandler)(nil)
