package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	merchapp "github.com/curator/backend/internal/application/merchandising"
	"github.com/curator/backend/internal/domain/merchandising"
	"github.com/curator/backend/internal/domain/shared"
	"github.com/curator/backend/internal/infrastructure/config"
	"github.com/curator/backend/internal/infrastructure/storefront"
	"github.com/curator/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// capturePublisher records published events; Publish fails when err is set.
type capturePublisher struct {
	events []shared.DomainEvent
	err    error
}

func (p *capturePublisher) Publish(_ context.Context, events ...shared.DomainEvent) error {
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, events...)
	return nil
}

const testWebhookSecret = "test-webhook-secret"

func newWebhookTestHandler(pub *capturePublisher) (*WebhookHandler, *storefront.Verifier) {
	verifier := storefront.NewVerifier(&config.WebhookConfig{Secret: testWebhookSecret}, zap.NewNop())
	svc := merchapp.NewWebhookService(verifier, pub, zap.NewNop(), nil)
	return NewWebhookHandler(svc, 4096, zap.NewNop()), verifier
}

func newWebhookRouter(h *WebhookHandler) *gin.Engine {
	r := gin.New()
	r.POST("/webhooks/products/create", h.HandleProductCreate)
	r.POST("/webhooks/products/update", h.HandleProductUpdate)
	r.POST("/webhooks/products/delete", h.HandleProductDelete)
	return r
}

func productPayload(t *testing.T, id int64, title string) []byte {
	t.Helper()
	body, err := json.Marshal(merchandising.Product{
		ID:    id,
		Title: title,
	})
	require.NoError(t, err)
	return body
}

func signedRequest(method, path string, body []byte, verifier *storefront.Verifier) *http.Request {
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	req.Header.Set(storefront.SignatureHeader, verifier.Sign(body))
	return req
}

func TestWebhookHandlerAcceptsSignedUpsert(t *testing.T) {
	for _, path := range []string{"/webhooks/products/create", "/webhooks/products/update"} {
		t.Run(path, func(t *testing.T) {
			pub := &capturePublisher{}
			h, verifier := newWebhookTestHandler(pub)
			router := newWebhookRouter(h)

			body := productPayload(t, 8821, "AMETHYST ROUND FACETED BEADS 8MM")
			req := signedRequest("POST", path, body, verifier)
			req.Header.Set(storefront.EventIDHeader, "delivery-42")

			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, http.StatusOK, w.Code)

			var resp WebhookAckResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.True(t, resp.Received)
			assert.Equal(t, "delivery-42", resp.EventID)

			require.Len(t, pub.events, 1)
			assert.Equal(t, merchandising.EventTypeProductUpserted, pub.events[0].EventType())
			assert.Equal(t, "8821", pub.events[0].SubjectID())
		})
	}
}

func TestWebhookHandlerGeneratesEventIDWhenHeaderAbsent(t *testing.T) {
	pub := &capturePublisher{}
	h, verifier := newWebhookTestHandler(pub)
	router := newWebhookRouter(h)

	body := productPayload(t, 55, "ROSE QUARTZ PENDANT")
	req := signedRequest("POST", "/webhooks/products/create", body, verifier)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp WebhookAckResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.EventID)
}

func TestWebhookHandlerRejectsMissingSignature(t *testing.T) {
	pub := &capturePublisher{}
	h, _ := newWebhookTestHandler(pub)
	router := newWebhookRouter(h)

	body := productPayload(t, 1, "GARNET BEADS")
	req := httptest.NewRequest("POST", "/webhooks/products/update", bytes.NewReader(body))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)

	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	assert.Equal(t, dto.ErrCodeSignatureMissing, resp.Error.Code)
	assert.Empty(t, pub.events)
}

func TestWebhookHandlerRejectsInvalidSignature(t *testing.T) {
	pub := &capturePublisher{}
	h, _ := newWebhookTestHandler(pub)
	router := newWebhookRouter(h)

	body := productPayload(t, 1, "GARNET BEADS")
	req := httptest.NewRequest("POST", "/webhooks/products/update", bytes.NewReader(body))
	req.Header.Set(storefront.SignatureHeader, "bm90LXRoZS1yaWdodC1zaWduYXR1cmU=")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)

	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, dto.ErrCodeSignatureInvalid, resp.Error.Code)
	assert.Empty(t, pub.events)
}

func TestWebhookHandlerRejectsMalformedPayload(t *testing.T) {
	tests := []struct {
		name string
		body []byte
	}{
		{name: "invalid json", body: []byte("{not json")},
		{name: "missing product id", body: []byte(`{"title":"NO ID HERE"}`)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pub := &capturePublisher{}
			h, verifier := newWebhookTestHandler(pub)
			router := newWebhookRouter(h)

			req := signedRequest("POST", "/webhooks/products/create", tt.body, verifier)

			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, http.StatusBadRequest, w.Code)

			var resp dto.Response
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, dto.ErrCodeInvalidJSON, resp.Error.Code)
			assert.Empty(t, pub.events)
		})
	}
}

func TestWebhookHandlerRejectsOversizedPayload(t *testing.T) {
	pub := &capturePublisher{}
	h, verifier := newWebhookTestHandler(pub)
	router := newWebhookRouter(h)

	// Handler was constructed with a 4096 byte cap
	big := []byte(`{"id":1,"title":"` + strings.Repeat("X", 5000) + `"}`)
	req := signedRequest("POST", "/webhooks/products/create", big, verifier)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)

	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, dto.ErrCodePayloadTooLarge, resp.Error.Code)
	assert.Empty(t, pub.events)
}

func TestWebhookHandlerReturns500WhenEnqueueFails(t *testing.T) {
	pub := &capturePublisher{err: errors.New("bus closed")}
	h, verifier := newWebhookTestHandler(pub)
	router := newWebhookRouter(h)

	body := productPayload(t, 7, "JADE SPHERE")
	req := signedRequest("POST", "/webhooks/products/create", body, verifier)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestWebhookHandlerDeleteAcksProcessingFailures(t *testing.T) {
	pub := &capturePublisher{}
	h, verifier := newWebhookTestHandler(pub)
	router := newWebhookRouter(h)

	req := signedRequest("POST", "/webhooks/products/delete", []byte("{broken"), verifier)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	// Deletions ack even when the payload is junk; the product is gone and
	// redelivery cannot help.
	assert.Equal(t, http.StatusOK, w.Code)

	var resp WebhookAckResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Received)
	assert.Contains(t, resp.Message, "could not be processed")
	assert.Empty(t, pub.events)
}

func TestWebhookHandlerDeleteStillRejectsBadSignature(t *testing.T) {
	pub := &capturePublisher{}
	h, _ := newWebhookTestHandler(pub)
	router := newWebhookRouter(h)

	body := productPayload(t, 3, "OBSIDIAN ARROWHEAD")
	req := httptest.NewRequest("POST", "/webhooks/products/delete", bytes.NewReader(body))
	req.Header.Set(storefront.SignatureHeader, "aW52YWxpZA==")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Empty(t, pub.events)
}

func TestWebhookHandlerDeletePublishesDeletionEvent(t *testing.T) {
	pub := &capturePublisher{}
	h, verifier := newWebhookTestHandler(pub)
	router := newWebhookRouter(h)

	body := productPayload(t, 991, "RETIRED PRODUCT")
	req := signedRequest("POST", "/webhooks/products/delete", body, verifier)
	req.Header.Set(storefront.EventIDHeader, "delete-delivery-9")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp WebhookAckResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Received)
	assert.Equal(t, "delete-delivery-9", resp.EventID)

	require.Len(t, pub.events, 1)
	assert.Equal(t, merchandising.EventTypeProductDeleted, pub.events[0].EventType())
}

func TestWebhookHandlerTopicHeaderOverridesRouteTopic(t *testing.T) {
	pub := &capturePublisher{}
	h, verifier := newWebhookTestHandler(pub)
	router := newWebhookRouter(h)

	body := productPayload(t, 12, "CITRINE CLUSTER")
	req := signedRequest("POST", "/webhooks/products/create", body, verifier)
	req.Header.Set(storefront.TopicHeader, "products/update")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp WebhookAckResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "products/update", resp.Topic)
}

func TestWebhookHandlerUnverifiedModeSkipsSignature(t *testing.T) {
	pub := &capturePublisher{}
	verifier := storefront.NewVerifier(&config.WebhookConfig{AllowUnverified: true}, zap.NewNop())
	svc := merchapp.NewWebhookService(verifier, pub, zap.NewNop(), nil)
	h := NewWebhookHandler(svc, 4096, zap.NewNop())
	router := newWebhookRouter(h)

	body := productPayload(t, 21, "UNSIGNED DELIVERY")
	req := httptest.NewRequest("POST", "/webhooks/products/create", bytes.NewReader(body))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	require.Len(t, pub.events, 1)
}
