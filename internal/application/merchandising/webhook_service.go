package merchandising

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/curator/backend/internal/domain/merchandising"
	"github.com/curator/backend/internal/domain/shared"
	"github.com/curator/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// SignatureVerifier authenticates a raw webhook body against its signature
// header. storefront.Verifier satisfies it.
type SignatureVerifier interface {
	Verify(body []byte, signature string) error
}

// WebhookDelivery is one inbound webhook: the raw body plus the headers the
// intake pipeline reads.
type WebhookDelivery struct {
	// Topic is the storefront topic, e.g. "products/update"
	Topic string
	// EventID is the storefront delivery identifier; empty when the header
	// was absent, in which case the domain event gets a generated ID
	EventID string
	// Signature is the base64 HMAC digest from the signature header
	Signature string
	// Body is the raw request body the signature covers
	Body []byte
}

// WebhookService runs the webhook intake pipeline: verify the signature
// over the raw body, decode the payload, build the domain event, and
// publish it. Duplicate suppression happens downstream in the idempotent
// handler, after the webhook has been acked.
type WebhookService struct {
	verifier  SignatureVerifier
	publisher shared.EventPublisher
	logger    *zap.Logger
	metrics   *telemetry.CurationMetrics
}

// NewWebhookService creates the intake service
func NewWebhookService(verifier SignatureVerifier, publisher shared.EventPublisher, logger *zap.Logger, metrics *telemetry.CurationMetrics) *WebhookService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if metrics == nil {
		metrics = telemetry.NewNopCurationMetrics()
	}
	return &WebhookService{
		verifier:  verifier,
		publisher: publisher,
		logger:    logger,
		metrics:   metrics,
	}
}

// HandleProductUpsert processes a product create or update delivery
func (s *WebhookService) HandleProductUpsert(ctx context.Context, delivery WebhookDelivery) (*merchandising.ProductUpserted, error) {
	product, err := s.verifyAndDecode(ctx, delivery)
	if err != nil {
		return nil, err
	}

	event := merchandising.NewProductUpserted(*product, delivery.EventID)
	if err := s.publisher.Publish(ctx, event); err != nil {
		return nil, fmt.Errorf("publish %s: %w", event.EventType(), err)
	}

	s.metrics.RecordWebhookReceived(ctx, delivery.Topic)
	s.logger.Info("Webhook accepted",
		zap.String("topic", delivery.Topic),
		zap.String("event_id", event.EventID()),
		zap.Int64("product_id", product.ID),
	)
	return event, nil
}

// HandleProductDelete processes a product deletion delivery. The caller owns
// the ack policy; this method reports failures like any other.
func (s *WebhookService) HandleProductDelete(ctx context.Context, delivery WebhookDelivery) (*merchandising.ProductDeleted, error) {
	product, err := s.verifyAndDecode(ctx, delivery)
	if err != nil {
		return nil, err
	}

	event := merchandising.NewProductDeleted(*product, delivery.EventID)
	if err := s.publisher.Publish(ctx, event); err != nil {
		return nil, fmt.Errorf("publish %s: %w", event.EventType(), err)
	}

	s.metrics.RecordWebhookReceived(ctx, delivery.Topic)
	s.logger.Info("Webhook accepted",
		zap.String("topic", delivery.Topic),
		zap.String("event_id", event.EventID()),
		zap.Int64("product_id", product.ID),
	)
	return event, nil
}

// verifyAndDecode authenticates the delivery and decodes its product payload
func (s *WebhookService) verifyAndDecode(ctx context.Context, delivery WebhookDelivery) (*merchandising.Product, error) {
	if err := s.verifier.Verify(delivery.Body, delivery.Signature); err != nil {
		s.metrics.RecordWebhookRejected(ctx, delivery.Topic, rejectReason(err))
		s.logger.Warn("Webhook rejected",
			zap.String("topic", delivery.Topic),
			zap.Error(err),
		)
		return nil, err
	}

	var product merchandising.Product
	if err := json.Unmarshal(delivery.Body, &product); err != nil {
		s.metrics.RecordWebhookRejected(ctx, delivery.Topic, "malformed_payload")
		return nil, fmt.Errorf("%w: %v", merchandising.ErrMalformedPayload, err)
	}
	if product.ID == 0 {
		s.metrics.RecordWebhookRejected(ctx, delivery.Topic, "malformed_payload")
		return nil, fmt.Errorf("%w: missing product id", merchandising.ErrMalformedPayload)
	}
	return &product, nil
}

func rejectReason(err error) string {
	switch {
	case errors.Is(err, merchandising.ErrMissingSignature):
		return "missing_signature"
	case errors.Is(err, merchandising.ErrInvalidSignature):
		return "invalid_signature"
	default:
		return "verification_failed"
	}
}
