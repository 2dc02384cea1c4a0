// Package scheduler runs catalog sync jobs on a single worker so jobs are
// processed strictly in submission order.
package scheduler

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/curator/backend/internal/domain/merchandising"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// maxRetryDelay caps the exponential backoff between job retries.
const maxRetryDelay = 10 * time.Minute

var (
	// ErrSchedulerNotRunning rejects submissions before Start or after Stop.
	ErrSchedulerNotRunning = errors.New("scheduler is not running")

	// ErrJobQueueFull rejects submissions when the queue is at capacity.
	ErrJobQueueFull = errors.New("job queue is full")

	// ErrInvalidConfig reports a scheduler configuration that cannot run.
	ErrInvalidConfig = errors.New("invalid scheduler configuration")
)

// SyncJobStatus represents the status of a sync job
type SyncJobStatus string

const (
	SyncJobStatusPending SyncJobStatus = "PENDING"
	SyncJobStatusRunning SyncJobStatus = "RUNNING"
	SyncJobStatusSuccess SyncJobStatus = "SUCCESS"
	SyncJobStatusFailed  SyncJobStatus = "FAILED"
)

// SyncJobKind distinguishes window sweeps from single-product jobs
type SyncJobKind string

const (
	// KindWindow sweeps every product updated within a trailing window
	KindWindow SyncJobKind = "window"
	// KindProduct curates one product delivered by a webhook
	KindProduct SyncJobKind = "product"
)

// SyncTrigger records what started a job
type SyncTrigger string

const (
	TriggerManual   SyncTrigger = "manual"
	TriggerInterval SyncTrigger = "interval"
	TriggerWebhook  SyncTrigger = "webhook"
)

// SyncOutcome carries the counts a completed sync job reports.
type SyncOutcome struct {
	Products int `json:"products"`
	Assigned int `json:"assigned"`
	Skipped  int `json:"skipped"`
}

// SyncJob represents one catalog sync: either a window sweep or a single
// product delivered by a webhook.
type SyncJob struct {
	ID      uuid.UUID
	Kind    SyncJobKind
	Trigger SyncTrigger
	// Since is the window floor; meaningful for window jobs only
	Since time.Time
	// Product is the payload of product jobs; nil for window jobs
	Product     *merchandising.Product
	Status      SyncJobStatus
	Outcome     SyncOutcome
	Error       string
	EnqueuedAt  time.Time
	StartedAt   *time.Time
	CompletedAt *time.Time
	RetryCount  int
	MaxRetries  int
	NextRetryAt *time.Time
}

// NewWindowSyncJob creates a pending job sweeping products updated at or
// after the given instant.
func NewWindowSyncJob(trigger SyncTrigger, since time.Time, maxRetries int) *SyncJob {
	return &SyncJob{
		ID:         uuid.New(),
		Kind:       KindWindow,
		Trigger:    trigger,
		Since:      since,
		Status:     SyncJobStatusPending,
		EnqueuedAt: time.Now(),
		MaxRetries: maxRetries,
	}
}

// NewProductSyncJob creates a pending job curating one webhook-delivered
// product.
func NewProductSyncJob(product merchandising.Product, maxRetries int) *SyncJob {
	return &SyncJob{
		ID:         uuid.New(),
		Kind:       KindProduct,
		Trigger:    TriggerWebhook,
		Product:    &product,
		Status:     SyncJobStatusPending,
		EnqueuedAt: time.Now(),
		MaxRetries: maxRetries,
	}
}

// Start marks the job as running
func (j *SyncJob) Start() {
	now := time.Now()
	j.Status = SyncJobStatusRunning
	j.StartedAt = &now
	j.Error = ""
}

// Complete marks the job as successful and records its counts
func (j *SyncJob) Complete(outcome SyncOutcome) {
	now := time.Now()
	j.Status = SyncJobStatusSuccess
	j.Outcome = outcome
	j.CompletedAt = &now
}

// Fail marks the job as failed
func (j *SyncJob) Fail(err string) {
	now := time.Now()
	j.Status = SyncJobStatusFailed
	j.CompletedAt = &now
	j.Error = err
}

// ShouldRetry returns true if the job should be retried
func (j *SyncJob) ShouldRetry() bool {
	return j.Status == SyncJobStatusFailed && j.RetryCount < j.MaxRetries
}

// ScheduleRetry requeues the job with exponential backoff
func (j *SyncJob) ScheduleRetry(baseDelay time.Duration) {
	j.RetryCount++
	j.Status = SyncJobStatusPending
	delay := baseDelay * time.Duration(1<<(j.RetryCount-1))
	if delay > maxRetryDelay {
		delay = maxRetryDelay
	}
	nextRetry := time.Now().Add(delay)
	j.NextRetryAt = &nextRetry
	j.Error = ""
}

// logFields returns the identifying fields for job log lines
func (j *SyncJob) logFields() []zap.Field {
	fields := []zap.Field{
		zap.String("job_id", j.ID.String()),
		zap.String("kind", string(j.Kind)),
		zap.String("trigger", string(j.Trigger)),
	}
	if j.Kind == KindProduct && j.Product != nil {
		return append(fields, zap.Int64("product_id", j.Product.ID))
	}
	return append(fields, zap.Time("since", j.Since))
}

// SyncExecutor executes sync jobs
type SyncExecutor interface {
	// Execute runs the job against the catalog and reports counts
	Execute(ctx context.Context, job *SyncJob) (SyncOutcome, error)
}

// QueueDepthRecorder receives queue depth samples after submits and
// completions. telemetry.CurationMetrics satisfies it.
type QueueDepthRecorder interface {
	RecordJobQueueDepth(ctx context.Context, depth int64)
}

// SyncSchedulerConfig holds configuration for the sync scheduler
type SyncSchedulerConfig struct {
	// Interval between automatic window syncs; 0 disables them
	Interval time.Duration
	// Lookback is the window width for interval-triggered jobs
	Lookback time.Duration
	// JobTimeout is the maximum time a job can run
	JobTimeout time.Duration
	// RetryAttempts is the number of retry attempts for failed jobs
	RetryAttempts int
	// RetryDelay is the base delay between retries, doubled per attempt
	RetryDelay time.Duration
	// QueueSize bounds the number of jobs waiting for the worker
	QueueSize int
	// HistorySize bounds the completed jobs kept for the admin API
	HistorySize int
}

// DefaultSyncSchedulerConfig returns default configuration
func DefaultSyncSchedulerConfig() SyncSchedulerConfig {
	return SyncSchedulerConfig{
		Interval:      0,
		Lookback:      time.Hour,
		JobTimeout:    10 * time.Minute,
		RetryAttempts: 3,
		RetryDelay:    30 * time.Second,
		QueueSize:     16,
		HistorySize:   100,
	}
}

// Validate validates the configuration
func (c *SyncSchedulerConfig) Validate() error {
	if c.JobTimeout <= 0 {
		return ErrInvalidConfig
	}
	if c.RetryAttempts < 0 {
		return ErrInvalidConfig
	}
	if c.Interval < 0 {
		return ErrInvalidConfig
	}
	if c.Interval > 0 && c.Lookback <= 0 {
		return ErrInvalidConfig
	}
	if c.QueueSize <= 0 {
		return ErrInvalidConfig
	}
	if c.HistorySize <= 0 {
		return ErrInvalidConfig
	}
	return nil
}

// SyncScheduler manages catalog sync jobs
type SyncScheduler struct {
	config   SyncSchedulerConfig
	executor SyncExecutor
	logger   *zap.Logger
	recorder QueueDepthRecorder

	jobs      chan *SyncJob
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool

	// Completed jobs for the admin API, newest first
	historyMu sync.RWMutex
	history   []*SyncJob
}

// SyncSchedulerOption is a functional option for configuring the scheduler
type SyncSchedulerOption func(*SyncScheduler)

// WithQueueDepthRecorder wires queue depth samples into metrics
func WithQueueDepthRecorder(r QueueDepthRecorder) SyncSchedulerOption {
	return func(s *SyncScheduler) {
		s.recorder = r
	}
}

// NewSyncScheduler creates a new sync scheduler
func NewSyncScheduler(config SyncSchedulerConfig, executor SyncExecutor, logger *zap.Logger, opts ...SyncSchedulerOption) (*SyncScheduler, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	s := &SyncScheduler{
		config:   config,
		executor: executor,
		logger:   logger,
		jobs:     make(chan *SyncJob, config.QueueSize),
		history:  make([]*SyncJob, 0, config.HistorySize),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s, nil
}

// Start starts the worker and, when an interval is configured, the ticker
// that submits automatic window syncs.
func (s *SyncScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = true
	s.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	// One worker keeps jobs strictly ordered
	s.wg.Add(1)
	go s.worker(ctx)

	if s.config.Interval > 0 {
		s.wg.Add(1)
		go s.intervalLoop(ctx)
	}

	s.logger.Info("Sync scheduler started",
		zap.Duration("interval", s.config.Interval),
		zap.Duration("job_timeout", s.config.JobTimeout),
		zap.Int("queue_size", s.config.QueueSize),
	)

	return nil
}

// Stop gracefully stops the scheduler. Queued jobs that have not started
// are abandoned.
func (s *SyncScheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = false
	s.mu.Unlock()

	// Cancellation alone stops the worker. The channel stays open because
	// the worker may be requeueing a retry while we shut down.
	if s.cancel != nil {
		s.cancel()
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("Sync scheduler stopped gracefully")
		return nil
	case <-ctx.Done():
		s.logger.Warn("Sync scheduler stop timed out")
		return ctx.Err()
	}
}

// SubmitJob submits a job for execution
func (s *SyncScheduler) SubmitJob(job *SyncJob) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return ErrSchedulerNotRunning
	}
	s.mu.Unlock()

	select {
	case s.jobs <- job:
		s.recordQueueDepth()
		s.logger.Debug("Sync job submitted", job.logFields()...)
		return nil
	default:
		return ErrJobQueueFull
	}
}

// ScheduleWindowSync creates and submits a job sweeping products updated
// since the given instant.
func (s *SyncScheduler) ScheduleWindowSync(trigger SyncTrigger, since time.Time) (*SyncJob, error) {
	job := NewWindowSyncJob(trigger, since, s.config.RetryAttempts)
	if err := s.SubmitJob(job); err != nil {
		return nil, err
	}
	return job, nil
}

// ScheduleProductSync creates and submits a job curating one product. The
// single worker guarantees webhook-delivered products cannot overtake a
// window sweep already in the queue.
func (s *SyncScheduler) ScheduleProductSync(product merchandising.Product) (*SyncJob, error) {
	job := NewProductSyncJob(product, s.config.RetryAttempts)
	if err := s.SubmitJob(job); err != nil {
		return nil, err
	}
	return job, nil
}

// QueueDepth returns the number of jobs waiting for the worker
func (s *SyncScheduler) QueueDepth() int {
	return len(s.jobs)
}

// Running reports whether the worker is accepting jobs
func (s *SyncScheduler) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isRunning
}

// GetJobHistory returns completed jobs, newest first
func (s *SyncScheduler) GetJobHistory(limit int) []*SyncJob {
	s.historyMu.RLock()
	defer s.historyMu.RUnlock()

	if limit <= 0 || limit > len(s.history) {
		limit = len(s.history)
	}

	result := make([]*SyncJob, limit)
	copy(result, s.history[:limit])
	return result
}

// GetJob returns one job by ID from the completed history, or nil
func (s *SyncScheduler) GetJob(id uuid.UUID) *SyncJob {
	s.historyMu.RLock()
	defer s.historyMu.RUnlock()

	for _, job := range s.history {
		if job.ID == id {
			return job
		}
	}
	return nil
}

// intervalLoop submits an automatic window sync every config.Interval
func (s *SyncScheduler) intervalLoop(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			job := NewWindowSyncJob(TriggerInterval, now.Add(-s.config.Lookback), s.config.RetryAttempts)
			if err := s.SubmitJob(job); err != nil {
				s.logger.Warn("Skipping automatic window sync",
					zap.Error(err),
				)
			}
		}
	}
}

// worker processes jobs from the queue one at a time
func (s *SyncScheduler) worker(ctx context.Context) {
	defer s.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case job := <-s.jobs:
			s.processJob(ctx, job)
			s.recordQueueDepth()
		}
	}
}

// processJob executes a single job
func (s *SyncScheduler) processJob(ctx context.Context, job *SyncJob) {
	// The single worker sleeps out retry delays so later jobs cannot
	// overtake a retrying one.
	if job.NextRetryAt != nil {
		if wait := time.Until(*job.NextRetryAt); wait > 0 {
			timer := time.NewTimer(wait)
			select {
			case <-ctx.Done():
				timer.Stop()
				return
			case <-timer.C:
			}
		}
	}

	job.Start()
	s.logger.Info("Processing sync job",
		append(job.logFields(), zap.Int("retry_count", job.RetryCount))...,
	)

	jobCtx, cancel := context.WithTimeout(ctx, s.config.JobTimeout)
	defer cancel()

	outcome, err := s.executor.Execute(jobCtx, job)
	if err != nil {
		job.Fail(err.Error())
		s.logger.Error("Sync job failed",
			append(job.logFields(), zap.Error(err))...,
		)

		if job.ShouldRetry() {
			job.ScheduleRetry(s.config.RetryDelay)
			s.logger.Info("Sync job scheduled for retry",
				zap.String("job_id", job.ID.String()),
				zap.Int("retry_count", job.RetryCount),
				zap.Int("max_retries", job.MaxRetries),
				zap.Time("next_retry_at", *job.NextRetryAt),
			)
			select {
			case s.jobs <- job:
				return
			default:
				// ScheduleRetry already marked the job pending and
				// cleared the error. The retry was dropped, so put
				// the failure back before the job is archived.
				job.Fail(err.Error())
				job.NextRetryAt = nil
				s.logger.Warn("Failed to re-queue sync job for retry",
					zap.String("job_id", job.ID.String()),
				)
			}
		}

		s.addToHistory(job)
		return
	}

	job.Complete(outcome)
	s.logger.Info("Sync job completed",
		append(job.logFields(),
			zap.Int("products", outcome.Products),
			zap.Int("assigned", outcome.Assigned),
			zap.Int("skipped", outcome.Skipped),
		)...,
	)

	s.addToHistory(job)
}

// addToHistory adds a completed job to history
func (s *SyncScheduler) addToHistory(job *SyncJob) {
	s.historyMu.Lock()
	defer s.historyMu.Unlock()

	s.history = append([]*SyncJob{job}, s.history...)

	if len(s.history) > s.config.HistorySize {
		s.history = s.history[:s.config.HistorySize]
	}
}

func (s *SyncScheduler) recordQueueDepth() {
	if s.recorder != nil {
		s.recorder.RecordJobQueueDepth(context.Background(), int64(len(s.jobs)))
	}
}
