package middleware

import (
	"net/http"
	"regexp"

	"github.com/curator/backend/internal/infrastructure/storefront"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Caps on unauthenticated header values copied into trace attributes.
const (
	maxRequestIDLength = 128
	maxTopicLength     = 64
)

// topicPattern matches storefront webhook topics like "products/update".
var topicPattern = regexp.MustCompile(`^[a-z0-9_]+(/[a-z0-9_]+)?$`)

// TracingConfig configures the request tracing middleware.
type TracingConfig struct {
	ServiceName string
	Enabled     bool
}

// TracingWithConfig wraps otelgin's server span creation and enriches each
// span with request_id, the validated webhook topic, and the JWT subject on
// admin requests. When disabled it degrades to a pass-through.
func TracingWithConfig(cfg TracingConfig) gin.HandlerFunc {
	if !cfg.Enabled {
		return func(c *gin.Context) { c.Next() }
	}

	otel := otelgin.Middleware(cfg.ServiceName)
	return func(c *gin.Context) {
		otel(c)

		span := trace.SpanFromContext(c.Request.Context())
		if span.IsRecording() {
			enrichSpanWithAttributes(c, span)
		}
	}
}

func enrichSpanWithAttributes(c *gin.Context, span trace.Span) {
	if id := requestIDForTrace(c); id != "" {
		span.SetAttributes(attribute.String("request_id", id))
	}
	if topic := webhookTopicForTrace(c); topic != "" {
		span.SetAttributes(attribute.String("webhook.topic", topic))
	}
	if subject := GetJWTSubject(c); subject != "" {
		span.SetAttributes(attribute.String("operator", subject))
	}
}

func requestIDForTrace(c *gin.Context) string {
	if id := c.GetString("request_id"); id != "" {
		return id
	}
	// Raw header fallback: truncate, the value is attacker controlled.
	id := c.GetHeader("X-Request-ID")
	if len(id) > maxRequestIDLength {
		id = id[:maxRequestIDLength]
	}
	return id
}

// webhookTopicForTrace validates the storefront topic header before it
// becomes a trace attribute; webhook headers arrive unauthenticated.
func webhookTopicForTrace(c *gin.Context) string {
	topic := c.GetHeader(storefront.TopicHeader)
	if topic == "" || len(topic) > maxTopicLength || !topicPattern.MatchString(topic) {
		return ""
	}
	return topic
}

// SpanErrorMarker flags 4xx/5xx responses as span errors. Place it after
// the tracing middleware so the span already exists.
func SpanErrorMarker() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		span := trace.SpanFromContext(c.Request.Context())
		if !span.IsRecording() {
			return
		}

		status := c.Writer.Status()
		if status < http.StatusBadRequest {
			return
		}

		msg := "Client Error"
		switch {
		case status >= http.StatusInternalServerError:
			msg = "Internal Server Error"
		case status == http.StatusUnauthorized:
			msg = "Unauthorized"
		case status == http.StatusForbidden:
			msg = "Forbidden"
		case status == http.StatusNotFound:
			msg = "Not Found"
		}
		span.SetStatus(codes.Error, msg)
		span.SetAttributes(attribute.Int("http.status_code", status))
	}
}
