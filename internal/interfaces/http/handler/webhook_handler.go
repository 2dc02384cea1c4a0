package handler

import (
	"errors"
	"io"
	"net/http"

	merchapp "github.com/curator/backend/internal/application/merchandising"
	"github.com/curator/backend/internal/domain/merchandising"
	"github.com/curator/backend/internal/infrastructure/storefront"
	"github.com/curator/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// defaultWebhookPayloadSize caps webhook bodies when the config leaves the
// limit unset. Product payloads with a full variant list stay well under 1MB.
const defaultWebhookPayloadSize = 1 << 20

// Topics the storefront subscription registers. Deliveries carry the topic
// header, but the route is authoritative when the header is absent.
const (
	topicProductCreate = "products/create"
	topicProductUpdate = "products/update"
	topicProductDelete = "products/delete"
)

// WebhookHandler handles storefront webhook endpoints.
// These endpoints are called by the storefront platform and authenticate via
// HMAC signature rather than JWT.
type WebhookHandler struct {
	BaseHandler
	webhookService *merchapp.WebhookService
	maxPayloadSize int64
	logger         *zap.Logger
}

// NewWebhookHandler creates a new WebhookHandler
func NewWebhookHandler(webhookService *merchapp.WebhookService, maxPayloadSize int64, logger *zap.Logger) *WebhookHandler {
	if maxPayloadSize <= 0 {
		maxPayloadSize = defaultWebhookPayloadSize
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WebhookHandler{
		webhookService: webhookService,
		maxPayloadSize: maxPayloadSize,
		logger:         logger,
	}
}

// WebhookAckResponse represents the acknowledgement for a webhook delivery
//
//	@Description	Webhook delivery acknowledgement
type WebhookAckResponse struct {
	Received bool   `json:"received" example:"true"`
	EventID  string `json:"event_id,omitempty" example:"d3f1a8e2-5b64-4c1a-9f3e-8a2b7c6d5e4f"`
	Topic    string `json:"topic,omitempty" example:"products/update"`
	Message  string `json:"message,omitempty" example:"Webhook accepted"`
}

// HandleProductCreate godoc
//
//	@ID				handleProductCreateWebhook
//	@Summary		Handle product create webhook
//	@Description	Receive a product creation delivery from the storefront, verify its HMAC signature, and enqueue classification
//	@Tags			webhooks
//	@Accept			json
//	@Produce		json
//	@Param			X-Storefront-Hmac-Sha256	header		string				true	"Base64 HMAC-SHA256 signature of the raw body"
//	@Param			X-Storefront-Event-ID		header		string				false	"Delivery identifier used for duplicate suppression"
//	@Success		200							{object}	WebhookAckResponse	"Delivery accepted"
//	@Failure		400							{object}	ErrorResponse		"Malformed payload"
//	@Failure		401							{object}	ErrorResponse		"Missing or invalid signature"
//	@Failure		413							{object}	ErrorResponse		"Payload too large"
//	@Router			/webhooks/products/create [post]
func (h *WebhookHandler) HandleProductCreate(c *gin.Context) {
	h.handleUpsert(c, topicProductCreate)
}

// HandleProductUpdate godoc
//
//	@ID				handleProductUpdateWebhook
//	@Summary		Handle product update webhook
//	@Description	Receive a product update delivery from the storefront, verify its HMAC signature, and enqueue classification
//	@Tags			webhooks
//	@Accept			json
//	@Produce		json
//	@Param			X-Storefront-Hmac-Sha256	header		string				true	"Base64 HMAC-SHA256 signature of the raw body"
//	@Param			X-Storefront-Event-ID		header		string				false	"Delivery identifier used for duplicate suppression"
//	@Success		200							{object}	WebhookAckResponse	"Delivery accepted"
//	@Failure		400							{object}	ErrorResponse		"Malformed payload"
//	@Failure		401							{object}	ErrorResponse		"Missing or invalid signature"
//	@Failure		413							{object}	ErrorResponse		"Payload too large"
//	@Router			/webhooks/products/update [post]
func (h *WebhookHandler) HandleProductUpdate(c *gin.Context) {
	h.handleUpsert(c, topicProductUpdate)
}

// HandleProductDelete godoc
//
//	@ID				handleProductDeleteWebhook
//	@Summary		Handle product delete webhook
//	@Description	Receive a product deletion delivery. Deletions are acknowledged even when the payload cannot be processed, so the storefront stops redelivering events for products that no longer exist.
//	@Tags			webhooks
//	@Accept			json
//	@Produce		json
//	@Param			X-Storefront-Hmac-Sha256	header		string				true	"Base64 HMAC-SHA256 signature of the raw body"
//	@Param			X-Storefront-Event-ID		header		string				false	"Delivery identifier used for duplicate suppression"
//	@Success		200							{object}	WebhookAckResponse	"Delivery acknowledged"
//	@Failure		401							{object}	ErrorResponse		"Missing or invalid signature"
//	@Failure		413							{object}	ErrorResponse		"Payload too large"
//	@Router			/webhooks/products/delete [post]
func (h *WebhookHandler) HandleProductDelete(c *gin.Context) {
	delivery, ok := h.readDelivery(c, topicProductDelete)
	if !ok {
		return
	}

	event, err := h.webhookService.HandleProductDelete(c.Request.Context(), delivery)
	if err != nil {
		if code, ok := signatureErrorCode(err); ok {
			h.Error(c, http.StatusUnauthorized, code, "Webhook signature verification failed")
			return
		}

		// The product is gone either way. Ack so the storefront stops
		// redelivering an event nobody can act on.
		h.logger.Warn("Delete webhook acked despite processing failure",
			zap.String("topic", delivery.Topic),
			zap.Error(err),
		)
		c.JSON(http.StatusOK, WebhookAckResponse{
			Received: true,
			Topic:    delivery.Topic,
			Message:  "Webhook received but payload could not be processed",
		})
		return
	}

	c.JSON(http.StatusOK, WebhookAckResponse{
		Received: true,
		EventID:  event.EventID(),
		Topic:    delivery.Topic,
		Message:  "Webhook accepted",
	})
}

// handleUpsert runs the shared create/update path. The two topics differ only
// in the route; the downstream pipeline treats both as an upsert.
func (h *WebhookHandler) handleUpsert(c *gin.Context, impliedTopic string) {
	delivery, ok := h.readDelivery(c, impliedTopic)
	if !ok {
		return
	}

	event, err := h.webhookService.HandleProductUpsert(c.Request.Context(), delivery)
	if err != nil {
		switch {
		case errors.Is(err, merchandising.ErrMalformedPayload):
			h.Error(c, http.StatusBadRequest, dto.ErrCodeInvalidJSON, "Webhook payload could not be decoded")
		default:
			if code, ok := signatureErrorCode(err); ok {
				h.Error(c, http.StatusUnauthorized, code, "Webhook signature verification failed")
				return
			}
			// Publish failed, so nothing was enqueued. A 5xx tells the
			// storefront to redeliver.
			h.InternalError(c, "Webhook could not be enqueued")
		}
		return
	}

	c.JSON(http.StatusOK, WebhookAckResponse{
		Received: true,
		EventID:  event.EventID(),
		Topic:    delivery.Topic,
		Message:  "Webhook accepted",
	})
}

// readDelivery reads the raw body under the payload cap and collects the
// delivery headers. Returns ok=false after writing the error response.
func (h *WebhookHandler) readDelivery(c *gin.Context, impliedTopic string) (merchapp.WebhookDelivery, bool) {
	// Signature verification needs the raw bytes, so the body is read here
	// rather than bound through gin.
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, h.maxPayloadSize+1))
	if err != nil {
		h.BadRequest(c, "Failed to read request body")
		return merchapp.WebhookDelivery{}, false
	}
	if int64(len(body)) > h.maxPayloadSize {
		h.Error(c, http.StatusRequestEntityTooLarge, dto.ErrCodePayloadTooLarge, "Webhook payload exceeds size limit")
		return merchapp.WebhookDelivery{}, false
	}

	topic := c.GetHeader(storefront.TopicHeader)
	if topic == "" {
		topic = impliedTopic
	}

	return merchapp.WebhookDelivery{
		Topic:     topic,
		EventID:   c.GetHeader(storefront.EventIDHeader),
		Signature: c.GetHeader(storefront.SignatureHeader),
		Body:      body,
	}, true
}

// signatureErrorCode maps verification failures to their transport code.
func signatureErrorCode(err error) (string, bool) {
	switch {
	case errors.Is(err, merchandising.ErrMissingSignature):
		return dto.ErrCodeSignatureMissing, true
	case errors.Is(err, merchandising.ErrInvalidSignature):
		return dto.ErrCodeSignatureInvalid, true
	default:
		return "", false
	}
}
