// Package middleware provides HTTP middleware for the curation service.
package middleware

import (
	"context"
	"time"

	"github.com/curator/backend/internal/infrastructure/telemetry"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Body size histogram boundaries, in bytes. Webhook payloads cluster in
// the low kilobytes; the tail covers bulk sync responses.
var bodySizeBuckets = []float64{100, 500, 1_000, 5_000, 10_000, 50_000, 100_000, 500_000, 1_000_000}

// HTTPMetricsConfig configures the HTTP server metrics middleware.
type HTTPMetricsConfig struct {
	MeterProvider *telemetry.MeterProvider
	ServiceName   string
	Enabled       bool
}

// httpInstruments bundles the per-request instruments so the middleware
// closure captures a single pointer.
type httpInstruments struct {
	requests    *telemetry.Counter
	duration    *telemetry.Histogram
	requestSize *telemetry.Histogram
	replySize   *telemetry.Histogram
	inFlight    metric.Int64UpDownCounter
}

func newHTTPInstruments(meter metric.Meter) (*httpInstruments, error) {
	requests, err := telemetry.NewCounter(
		meter,
		"http_server_request_total",
		"Total number of HTTP requests",
		"{request}",
	)
	if err != nil {
		return nil, err
	}

	duration, err := telemetry.NewHistogram(meter, telemetry.HistogramOpts{
		Name:        "http_server_request_duration_seconds",
		Description: "HTTP request latency distribution in seconds",
		Unit:        "s",
		Boundaries:  telemetry.HTTPDurationBuckets,
	})
	if err != nil {
		return nil, err
	}

	requestSize, err := telemetry.NewHistogram(meter, telemetry.HistogramOpts{
		Name:        "http_server_request_size_bytes",
		Description: "HTTP request body size distribution in bytes",
		Unit:        "By",
		Boundaries:  bodySizeBuckets,
	})
	if err != nil {
		return nil, err
	}

	replySize, err := telemetry.NewHistogram(meter, telemetry.HistogramOpts{
		Name:        "http_server_response_size_bytes",
		Description: "HTTP response body size distribution in bytes",
		Unit:        "By",
		Boundaries:  bodySizeBuckets,
	})
	if err != nil {
		return nil, err
	}

	inFlight, err := meter.Int64UpDownCounter(
		"http_server_active_requests",
		metric.WithDescription("Number of in-flight HTTP requests"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, err
	}

	return &httpInstruments{
		requests:    requests,
		duration:    duration,
		requestSize: requestSize,
		replySize:   replySize,
		inFlight:    inFlight,
	}, nil
}

// HTTPMetrics records request count, latency, body sizes and in-flight
// requests per route. Routes are labelled by gin's matched pattern, never
// the raw path, to keep cardinality bounded. Disabled or misconfigured
// metrics degrade to a pass-through rather than failing startup.
func HTTPMetrics(cfg HTTPMetricsConfig) gin.HandlerFunc {
	if !cfg.Enabled || cfg.MeterProvider == nil || !cfg.MeterProvider.IsEnabled() {
		return func(c *gin.Context) { c.Next() }
	}

	scope := cfg.ServiceName
	if scope == "" {
		scope = "http.server"
	}
	return HTTPMetricsWithMeter(cfg.MeterProvider.Meter(scope), true)
}

// HTTPMetricsWithMeter builds the middleware on a caller-supplied meter.
func HTTPMetricsWithMeter(meter metric.Meter, enabled bool) gin.HandlerFunc {
	if !enabled {
		return func(c *gin.Context) { c.Next() }
	}

	inst, err := newHTTPInstruments(meter)
	if err != nil {
		return func(c *gin.Context) { c.Next() }
	}

	return func(c *gin.Context) {
		ctx := c.Request.Context()
		start := time.Now()
		requestSize := max(c.Request.ContentLength, 0)

		inst.inFlight.Add(ctx, 1)
		c.Next()
		inst.inFlight.Add(ctx, -1)

		recordRequest(ctx, inst, c, time.Since(start), requestSize)
	}
}

func recordRequest(ctx context.Context, inst *httpInstruments, c *gin.Context, elapsed time.Duration, requestSize int64) {
	route := c.FullPath()
	if route == "" {
		route = "unknown"
	}

	inst.requests.Inc(ctx,
		telemetry.AttrHTTPMethod.String(c.Request.Method),
		telemetry.AttrHTTPRoute.String(route),
		telemetry.AttrHTTPStatusCode.Int(c.Writer.Status()),
	)

	// Status code is deliberately left off the histograms.
	attrs := []attribute.KeyValue{
		telemetry.AttrHTTPMethod.String(c.Request.Method),
		telemetry.AttrHTTPRoute.String(route),
	}
	inst.duration.RecordDuration(ctx, elapsed, attrs...)
	if requestSize > 0 {
		inst.requestSize.Record(ctx, float64(requestSize), attrs...)
	}
	if size := c.Writer.Size(); size > 0 {
		inst.replySize.Record(ctx, float64(size), attrs...)
	}
}
