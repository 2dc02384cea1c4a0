// Package runner drives signed webhook traffic against a curator instance
// and reports delivery statistics.
package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"

	"github.com/curator/backend/tools/webhookgen/internal/payload"
)

// Webhook routes exposed by the curator service.
const (
	routeCreate = "/webhooks/products/create"
	routeUpdate = "/webhooks/products/update"
	routeDelete = "/webhooks/products/delete"
)

// Config holds the parameters of one load run.
type Config struct {
	// TargetURL is the base URL of the curator service, e.g. http://localhost:8080.
	TargetURL string

	// Secret is the shared webhook HMAC secret.
	Secret string

	// QPS caps the aggregate delivery rate across all workers.
	QPS float64

	// Concurrency is the number of delivery workers.
	Concurrency int

	// Count stops the run after this many deliveries. Zero means run until
	// the context is done.
	Count int64

	// DeletePercent of deliveries (0-100) go to the delete route.
	DeletePercent int

	// DuplicatePercent of deliveries (0-100) resend the previous body and
	// event ID, exercising the service's duplicate suppression.
	DuplicatePercent int

	// UnmatchedPercent of titles (0-100) classify into no collection.
	UnmatchedPercent int

	// Seed fixes the payload sequence. Zero picks a random seed.
	Seed uint64

	// Timeout bounds each HTTP request.
	Timeout time.Duration
}

func (c *Config) validate() error {
	if c.TargetURL == "" {
		return errors.New("target URL is required")
	}
	if c.Secret == "" {
		return errors.New("webhook secret is required")
	}
	if c.QPS <= 0 {
		return errors.New("qps must be positive")
	}
	if c.Concurrency <= 0 {
		return errors.New("concurrency must be positive")
	}
	return nil
}

// delivery is a prepared, signed webhook request.
type delivery struct {
	route     string
	topic     string
	eventID   string
	body      []byte
	signature string
}

// Runner posts generated product webhooks at a fixed rate.
type Runner struct {
	cfg       Config
	client    *http.Client
	limiter   *rate.Limiter
	generator *payload.Generator
	collector *Collector

	sent atomic.Int64

	mu   sync.Mutex
	last *delivery // previous delivery, replayed for duplicates
	seq  int64
}

// New creates a runner from config.
func New(cfg Config) (*Runner, error) {
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid runner config: %w", err)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}

	gen := payload.NewGenerator(cfg.Seed)
	gen.UnmatchedPercent = cfg.UnmatchedPercent

	burst := cfg.Concurrency
	if burst < 1 {
		burst = 1
	}

	return &Runner{
		cfg: cfg,
		client: &http.Client{
			Timeout: cfg.Timeout,
			Transport: &http.Transport{
				MaxIdleConns:        200,
				MaxIdleConnsPerHost: 50,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		limiter:   rate.NewLimiter(rate.Limit(cfg.QPS), burst),
		generator: gen,
		collector: NewCollector(),
	}, nil
}

// Collector exposes the run statistics.
func (r *Runner) Collector() *Collector { return r.collector }

// Run drives deliveries until the context is cancelled or the configured
// count is reached, then waits for in-flight requests to finish.
func (r *Runner) Run(ctx context.Context) Snapshot {
	r.collector.Start()

	var wg sync.WaitGroup
	for i := 0; i < r.cfg.Concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.work(ctx)
		}()
	}
	wg.Wait()

	r.collector.Stop()
	return r.collector.Snapshot()
}

func (r *Runner) work(ctx context.Context) {
	for {
		if r.cfg.Count > 0 && r.sent.Add(1) > r.cfg.Count {
			return
		}
		if err := r.limiter.Wait(ctx); err != nil {
			return
		}
		r.collector.Record(r.deliver(ctx, r.next()))
	}
}

// next prepares the following delivery, replaying the previous one for the
// configured duplicate share.
func (r *Runner) next() *delivery {
	r.mu.Lock()
	defer r.mu.Unlock()

	seq := r.seq
	r.seq++

	if r.last != nil && r.cfg.DuplicatePercent > 0 && int(seq%100) < r.cfg.DuplicatePercent {
		return r.last
	}

	product := r.generator.Product()
	body, err := payload.Encode(product)
	if err != nil {
		// Product marshalling cannot fail for generated payloads; keep the
		// worker alive with an empty body rather than panicking.
		body = []byte("{}")
	}

	// Deletes stripe on the half-offset so small duplicate and delete
	// percentages do not claim the same deliveries.
	route, topic := routeUpdate, "products/update"
	switch {
	case r.cfg.DeletePercent > 0 && int((seq+50)%100) < r.cfg.DeletePercent:
		route, topic = routeDelete, "products/delete"
	case product.ID%2 == 0:
		route, topic = routeCreate, "products/create"
	}

	d := &delivery{
		route:     route,
		topic:     topic,
		eventID:   fmt.Sprintf("loadgen-%d-%d", product.ID, time.Now().UnixNano()),
		body:      body,
		signature: payload.Sign(r.cfg.Secret, body),
	}
	r.last = d
	return d
}

func (r *Runner) deliver(ctx context.Context, d *delivery) Result {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.cfg.TargetURL+d.route, bytes.NewReader(d.body))
	if err != nil {
		return Result{Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(payload.SignatureHeader, d.signature)
	req.Header.Set(payload.EventIDHeader, d.eventID)
	req.Header.Set(payload.TopicHeader, d.topic)

	start := time.Now()
	resp, err := r.client.Do(req)
	latency := time.Since(start)
	if err != nil {
		return Result{Latency: latency, Err: err}
	}
	defer resp.Body.Close()

	return Result{StatusCode: resp.StatusCode, Latency: latency}
}
