package handler

import (
	"errors"
	"time"

	"github.com/curator/backend/internal/domain/shared"
	"github.com/curator/backend/internal/infrastructure/scheduler"
	"github.com/curator/backend/internal/interfaces/http/dto"
	"github.com/curator/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// defaultJobHistoryLimit bounds the history listing when no limit is given
const defaultJobHistoryLimit = 50

// SyncHandler handles the admin sync endpoints: manual triggers and the
// job history the scheduler keeps in memory.
type SyncHandler struct {
	BaseHandler
	scheduler       *scheduler.SyncScheduler
	defaultLookback time.Duration
	logger          *zap.Logger
}

// NewSyncHandler creates a new SyncHandler. defaultLookback is the trailing
// window applied when the trigger request does not override it.
func NewSyncHandler(sched *scheduler.SyncScheduler, defaultLookback time.Duration, logger *zap.Logger) *SyncHandler {
	if defaultLookback <= 0 {
		defaultLookback = time.Hour
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SyncHandler{
		scheduler:       sched,
		defaultLookback: defaultLookback,
		logger:          logger,
	}
}

// SyncTriggerResponse confirms an enqueued window sync
// @Description Confirmation of an enqueued catalog sync job
type SyncTriggerResponse struct {
	JobID           string    `json:"job_id" example:"d3f1a8e2-5b64-4c1a-9f3e-8a2b7c6d5e4f"`
	Since           time.Time `json:"since"`
	LookbackMinutes int       `json:"lookback_minutes" example:"60"`
	QueueDepth      int       `json:"queue_depth" example:"1"`
}

// SyncJobResponse represents one sync job in admin API responses
// @Description Sync job details including outcome counts and retry state
type SyncJobResponse struct {
	ID          string                `json:"id" example:"d3f1a8e2-5b64-4c1a-9f3e-8a2b7c6d5e4f"`
	Kind        string                `json:"kind" example:"window"`
	Trigger     string                `json:"trigger" example:"manual"`
	Status      string                `json:"status" example:"SUCCESS"`
	Since       *time.Time            `json:"since,omitempty"`
	ProductID   *int64                `json:"product_id,omitempty" example:"8821"`
	Outcome     scheduler.SyncOutcome `json:"outcome"`
	Error       string                `json:"error,omitempty"`
	EnqueuedAt  time.Time             `json:"enqueued_at"`
	StartedAt   *time.Time            `json:"started_at,omitempty"`
	CompletedAt *time.Time            `json:"completed_at,omitempty"`
	RetryCount  int                   `json:"retry_count" example:"0"`
	MaxRetries  int                   `json:"max_retries" example:"3"`
	NextRetryAt *time.Time            `json:"next_retry_at,omitempty"`
}

// newSyncJobResponse maps a scheduler job onto its API shape
func newSyncJobResponse(job *scheduler.SyncJob) SyncJobResponse {
	resp := SyncJobResponse{
		ID:          job.ID.String(),
		Kind:        string(job.Kind),
		Trigger:     string(job.Trigger),
		Status:      string(job.Status),
		Outcome:     job.Outcome,
		Error:       job.Error,
		EnqueuedAt:  job.EnqueuedAt,
		StartedAt:   job.StartedAt,
		CompletedAt: job.CompletedAt,
		RetryCount:  job.RetryCount,
		MaxRetries:  job.MaxRetries,
		NextRetryAt: job.NextRetryAt,
	}
	if job.Kind == scheduler.KindWindow {
		since := job.Since
		resp.Since = &since
	}
	if job.Product != nil {
		productID := job.Product.ID
		resp.ProductID = &productID
	}
	return resp
}

// TriggerSync godoc
// @Summary      Trigger a catalog sync
// @Description  Enqueue a window sync sweeping products updated within the lookback window. The body is optional; without it the configured lookback applies.
// @Tags         sync
// @Accept       json
// @Produce      json
// @Param        request body dto.SyncTriggerRequest false "Optional lookback override in minutes"
// @Success      202 {object} dto.Response{data=SyncTriggerResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      429 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      503 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /sync/trigger [post]
func (h *SyncHandler) TriggerSync(c *gin.Context) {
	var req dto.SyncTriggerRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			middleware.HandleValidationError(c, err)
			return
		}
	}

	lookback := h.defaultLookback
	if req.LookbackMinutes > 0 {
		lookback = time.Duration(req.LookbackMinutes) * time.Minute
	}
	since := time.Now().Add(-lookback)

	job, err := h.scheduler.ScheduleWindowSync(scheduler.TriggerManual, since)
	if err != nil {
		switch {
		case errors.Is(err, scheduler.ErrJobQueueFull):
			h.TooManyRequests(c, "Sync queue is full, try again later")
		case errors.Is(err, scheduler.ErrSchedulerNotRunning):
			h.ServiceUnavailable(c, "Sync scheduler is not running")
		default:
			h.HandleError(c, err)
		}
		return
	}

	h.logger.Info("Manual sync triggered",
		zap.String("job_id", job.ID.String()),
		zap.Time("since", since),
		zap.String("operator", getOperator(c)),
	)

	h.Accepted(c, SyncTriggerResponse{
		JobID:           job.ID.String(),
		Since:           since,
		LookbackMinutes: int(lookback / time.Minute),
		QueueDepth:      h.scheduler.QueueDepth(),
	})
}

// ListJobs godoc
// @Summary      List recent sync jobs
// @Description  Returns completed sync jobs, newest first, from the in-memory history ring
// @Tags         sync
// @Produce      json
// @Param        limit query int false "Maximum jobs to return (default 50, max 500)"
// @Success      200 {object} dto.Response{data=[]SyncJobResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /sync/jobs [get]
func (h *SyncHandler) ListJobs(c *gin.Context) {
	var req dto.JobHistoryRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	limit := req.Limit
	if limit <= 0 {
		limit = defaultJobHistoryLimit
	}

	// History is newest first, so the prefix is the most recent slice
	jobs := h.scheduler.GetJobHistory(0)
	total := int64(len(jobs))
	if limit < len(jobs) {
		jobs = jobs[:limit]
	}

	out := make([]SyncJobResponse, 0, len(jobs))
	for _, job := range jobs {
		out = append(out, newSyncJobResponse(job))
	}

	h.SuccessWithMeta(c, out, total, len(out))
}

// GetJob godoc
// @Summary      Get one sync job
// @Description  Returns a completed sync job by ID. Jobs still pending or running are not yet in the history.
// @Tags         sync
// @Produce      json
// @Param        id path string true "Job ID (UUID)"
// @Success      200 {object} dto.Response{data=SyncJobResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /sync/jobs/{id} [get]
func (h *SyncHandler) GetJob(c *gin.Context) {
	var req dto.IDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		h.BadRequest(c, "Invalid job ID")
		return
	}

	id, err := uuid.Parse(req.ID)
	if err != nil {
		h.BadRequest(c, "Invalid job ID")
		return
	}

	job := h.scheduler.GetJob(id)
	if job == nil {
		h.HandleError(c, shared.NewDomainError("NOT_FOUND", "Job not found"))
		return
	}

	h.Success(c, newSyncJobResponse(job))
}
