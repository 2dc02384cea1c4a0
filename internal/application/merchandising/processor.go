package merchandising

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/curator/backend/internal/domain/merchandising"
	"github.com/curator/backend/internal/infrastructure/config"
	"github.com/curator/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

const (
	defaultReadinessInterval = 3 * time.Second
	defaultReadinessTimeout  = 45 * time.Second
	defaultRateLimitPause    = 2 * time.Second
)

// Processor runs the classify-and-assign sequence, either for one
// webhook-delivered product or for every product updated within a trailing
// window. Processing is strictly sequential: one product at a time, one
// collection write at a time, each completed before the next begins.
type Processor struct {
	gateway  merchandising.StorefrontGateway
	provider *merchandising.TaxonomyProvider
	writer   *CollectionWriter
	logger   *zap.Logger
	metrics  *telemetry.CurationMetrics
	config   config.ProcessorConfig

	// The classifier is built once from the memoized taxonomy; the word
	// patterns compile on first use and are reused for every product after.
	classifierOnce sync.Once
	classifier     *merchandising.Classifier
	classifierErr  error
}

// NewProcessor creates a processor over the given gateway and taxonomy
// provider. The collection writer is built internally from the same config.
func NewProcessor(gateway merchandising.StorefrontGateway, provider *merchandising.TaxonomyProvider, cfg config.ProcessorConfig, logger *zap.Logger, metrics *telemetry.CurationMetrics) *Processor {
	if logger == nil {
		logger = zap.NewNop()
	}
	if metrics == nil {
		metrics = telemetry.NewNopCurationMetrics()
	}

	writer := NewCollectionWriter(gateway, CollectionWriterConfig{
		RetryBudget: cfg.RetryBudget,
		RetryDelay:  cfg.RetryDelay,
	}, logger, metrics)

	return &Processor{
		gateway:  gateway,
		provider: provider,
		writer:   writer,
		logger:   logger,
		metrics:  metrics,
		config:   cfg,
	}
}

// ProcessProduct classifies one product and writes each matched collection
// membership sequentially. Writes that exhaust their retries are recorded in
// the result and skipped; remaining collections still get their writes. The
// error return is reserved for taxonomy failures and cancellation.
func (p *Processor) ProcessProduct(ctx context.Context, product merchandising.Product) (*merchandising.ProductResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "processor", "process_product")
	defer span.End()
	telemetry.SetAttributes(span,
		telemetry.SpanAttrProductID, product.ID,
		telemetry.SpanAttrProductTitle, product.Title,
	)

	var result *merchandising.ProductResult
	var runErr error
	telemetry.WithProfilingLabels(ctx, telemetry.CurationOperationLabels(telemetry.OperationProcessProduct, ""), func(c context.Context) {
		result, runErr = p.processOne(c, product, !p.config.SkipReadinessWait)
	})
	if runErr != nil {
		telemetry.RecordError(span, runErr)
		return result, runErr
	}

	telemetry.SetAttributes(span,
		telemetry.SpanAttrCollectionsTotal, len(result.Matched),
		telemetry.SpanAttrCollectionsFailed, len(result.Failures),
	)
	return result, nil
}

// ProcessWindow sweeps every product created or updated at or after the
// given instant. A rate-limited listing is restarted after a pause; any
// other listing failure aborts the batch. Listed products skip the
// readiness wait.
func (p *Processor) ProcessWindow(ctx context.Context, since time.Time) (*merchandising.WindowResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "processor", "process_window")
	defer span.End()
	telemetry.SetAttributes(span,
		telemetry.SpanAttrWindowStart, since.UTC().Format(time.RFC3339),
	)

	var result *merchandising.WindowResult
	var runErr error
	telemetry.WithProfilingLabels(ctx, telemetry.CurationOperationLabels(telemetry.OperationProcessWindow, ""), func(c context.Context) {
		result, runErr = p.processWindow(c, since)
	})
	if runErr != nil {
		telemetry.RecordError(span, runErr)
		return nil, runErr
	}

	telemetry.SetAttributes(span,
		"total_products", result.TotalProducts,
		"failed_products", result.FailedProducts,
	)
	return result, nil
}

func (p *Processor) processWindow(ctx context.Context, since time.Time) (*merchandising.WindowResult, error) {
	if _, err := p.ensureClassifier(ctx); err != nil {
		return nil, err
	}

	result := &merchandising.WindowResult{
		WindowStart: since,
		WindowEnd:   time.Now(),
	}

	products, err := p.listWithRateLimitRestart(ctx, since)
	if err != nil {
		return nil, err
	}

	if len(products) == 0 {
		p.logger.Info("No products updated in window", zap.Time("since", since))
		result.Finalize(time.Now())
		return result, nil
	}

	p.logger.Info("Sweeping window",
		zap.Time("since", since),
		zap.Int("products", len(products)),
	)

	for _, product := range products {
		pr, err := p.processOne(ctx, product, false)
		if err != nil {
			return nil, err
		}
		result.Products = append(result.Products, *pr)
	}

	result.Finalize(time.Now())
	return result, nil
}

// listWithRateLimitRestart queries the window, restarting the whole listing
// after a pause whenever the storefront rate-limits any page. The job
// timeout on ctx bounds the restarts.
func (p *Processor) listWithRateLimitRestart(ctx context.Context, since time.Time) ([]merchandising.Product, error) {
	pause := p.config.RateLimitPause
	if pause <= 0 {
		pause = defaultRateLimitPause
	}

	for {
		products, err := p.gateway.ListProductsUpdatedSince(ctx, since)
		if err == nil {
			return products, nil
		}
		if !errors.Is(err, merchandising.ErrRateLimited) {
			return nil, err
		}

		p.logger.Warn("Window listing rate limited, restarting query",
			zap.Time("since", since),
			zap.Duration("pause", pause),
		)
		if err := sleepCtx(ctx, pause); err != nil {
			return nil, err
		}
	}
}

// processOne runs the single-product sequence: optional readiness wait,
// classify, then one paced membership write per matched collection.
func (p *Processor) processOne(ctx context.Context, product merchandising.Product, waitReady bool) (*merchandising.ProductResult, error) {
	start := time.Now()

	classifier, err := p.ensureClassifier(ctx)
	if err != nil {
		return nil, err
	}

	if waitReady && !product.Ready() {
		product = p.awaitReadiness(ctx, product)
	}

	matched := classifier.Classify(product.Title)
	result := &merchandising.ProductResult{
		ProductID: product.ID,
		Matched:   matched,
	}

	if len(matched) == 0 {
		p.logger.Info("No collections matched",
			zap.Int64("product_id", product.ID),
			zap.String("title", product.Title),
		)
		p.metrics.RecordProductProcessed(ctx, result.Status().String(), time.Since(start))
		return result, nil
	}

	p.logger.Info("Classified product",
		zap.Int64("product_id", product.ID),
		zap.String("title", product.Title),
		zap.Int("collections", len(matched)),
	)

	for i, collectionID := range matched {
		// Pacing between consecutive writes doubles as informal rate limiting
		if i > 0 && p.config.WriteDelay > 0 {
			if err := sleepCtx(ctx, p.config.WriteDelay); err != nil {
				return result, err
			}
		}

		if err := p.writer.Write(ctx, product.ID, collectionID); err != nil {
			if ctx.Err() != nil {
				return result, ctx.Err()
			}
			// Exhausted retries: skip this collection, continue with the rest
			result.Failures = append(result.Failures, merchandising.WriteFailure{
				CollectionID: collectionID,
				Reason:       err.Error(),
			})
			continue
		}
		result.Written++
	}

	p.metrics.RecordProductProcessed(ctx, result.Status().String(), time.Since(start))
	return result, nil
}

// awaitReadiness polls the product until every variant carries a SKU, the
// timeout elapses, or the context is cancelled. SKU assignment lags product
// creation at the storefront, so webhook-delivered products may arrive with
// blank SKUs. The freshest fetched copy is returned; on timeout the product
// is processed as-is.
func (p *Processor) awaitReadiness(ctx context.Context, product merchandising.Product) merchandising.Product {
	interval := p.config.ReadinessInterval
	if interval <= 0 {
		interval = defaultReadinessInterval
	}
	timeout := p.config.ReadinessTimeout
	if timeout <= 0 {
		timeout = defaultReadinessTimeout
	}

	p.logger.Info("Waiting for variant SKUs",
		zap.Int64("product_id", product.ID),
		zap.Duration("interval", interval),
		zap.Duration("timeout", timeout),
	)

	deadline := time.Now().Add(timeout)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return product
		case <-ticker.C:
		}

		fresh, err := p.gateway.GetProduct(ctx, product.ID)
		switch {
		case err == nil:
			product = *fresh
			if product.Ready() {
				return product
			}
		case errors.Is(err, merchandising.ErrProductNotFound):
			// Deleted while we waited; classify what the webhook carried
			p.logger.Warn("Product vanished during readiness wait",
				zap.Int64("product_id", product.ID),
			)
			return product
		default:
			p.logger.Warn("Readiness poll failed",
				zap.Int64("product_id", product.ID),
				zap.Error(err),
			)
		}

		if !time.Now().Before(deadline) {
			p.logger.Warn("Readiness wait timed out, processing as-is",
				zap.Int64("product_id", product.ID),
				zap.Duration("timeout", timeout),
			)
			return product
		}
	}
}

// ensureClassifier builds the classifier from the memoized taxonomy on
// first use. A taxonomy load failure is returned to every caller.
func (p *Processor) ensureClassifier(ctx context.Context) (*merchandising.Classifier, error) {
	p.classifierOnce.Do(func() {
		taxonomy, err := p.provider.Taxonomy(ctx)
		if err != nil {
			p.classifierErr = err
			return
		}
		p.classifier = merchandising.NewClassifier(taxonomy)
		p.logger.Info("Classifier ready", zap.Int("taxonomy_size", taxonomy.Size()))
	})
	return p.classifier, p.classifierErr
}

// sleepCtx pauses for d or until the context is cancelled
func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
