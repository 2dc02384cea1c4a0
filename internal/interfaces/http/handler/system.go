package handler

import (
	"net/http"
	"runtime"
	"strconv"
	"time"

	"github.com/curator/backend/internal/domain/merchandising"
	"github.com/curator/backend/internal/infrastructure/config"
	"github.com/curator/backend/internal/infrastructure/event"
	"github.com/curator/backend/internal/infrastructure/scheduler"
	"github.com/curator/backend/internal/infrastructure/storefront"
	"github.com/curator/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// SystemHandler handles the health and operational endpoints
type SystemHandler struct {
	BaseHandler
	cfg         *config.Config
	provider    *merchandising.TaxonomyProvider
	scheduler   *scheduler.SyncScheduler
	verifier    *storefront.Verifier
	idempotency *event.IdempotencyMetrics
	logger      *zap.Logger
	startTime   time.Time
}

// NewSystemHandler creates a new SystemHandler
func NewSystemHandler(
	cfg *config.Config,
	provider *merchandising.TaxonomyProvider,
	sched *scheduler.SyncScheduler,
	verifier *storefront.Verifier,
	idempotency *event.IdempotencyMetrics,
	logger *zap.Logger,
) *SystemHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SystemHandler{
		cfg:         cfg,
		provider:    provider,
		scheduler:   sched,
		verifier:    verifier,
		idempotency: idempotency,
		logger:      logger,
		startTime:   time.Now(),
	}
}

// HealthComponent reports one dependency's state
// @name HandlerHealthComponent
type HealthComponent struct {
	Status string `json:"status" example:"up"`
	Detail string `json:"detail,omitempty" example:"112 collections"`
}

// HealthResponse represents the liveness response
// @name HandlerHealthResponse
type HealthResponse struct {
	Status     string                     `json:"status" example:"ok"`
	Service    string                     `json:"service" example:"curator-backend"`
	GoVersion  string                     `json:"go_version" example:"go1.25.5"`
	Uptime     string                     `json:"uptime" example:"1h30m45s"`
	Components map[string]HealthComponent `json:"components"`
}

// Health godoc
// @ID           getHealth
// @Summary      Health check
// @Description  Returns liveness plus per-component status. Unauthenticated; details never include configuration values.
// @Tags         system
// @Produce      json
// @Success      200 {object} HealthResponse
// @Failure      503 {object} HealthResponse
// @Router       /health [get]
func (h *SystemHandler) Health(c *gin.Context) {
	components := make(map[string]HealthComponent, 5)
	healthy := true

	taxonomy, err := h.provider.Taxonomy(c.Request.Context())
	if err != nil {
		healthy = false
		h.logger.Error("Health check: taxonomy unavailable", zap.Error(err))
		components["taxonomy"] = HealthComponent{Status: "down", Detail: "snapshot load failed"}
	} else {
		components["taxonomy"] = HealthComponent{
			Status: "up",
			Detail: countDetail(taxonomy.Size(), "collections"),
		}
	}

	if h.scheduler.Running() {
		components["scheduler"] = HealthComponent{
			Status: "up",
			Detail: countDetail(h.scheduler.QueueDepth(), "queued jobs"),
		}
	} else {
		healthy = false
		components["scheduler"] = HealthComponent{Status: "down", Detail: "worker not running"}
	}

	if h.verifier.Enforced() {
		components["webhook_verification"] = HealthComponent{Status: "up", Detail: "enforced"}
	} else {
		components["webhook_verification"] = HealthComponent{Status: "up", Detail: "unverified mode"}
	}

	components["idempotency"] = HealthComponent{Status: "up", Detail: h.cfg.Idempotency.Store}

	if h.cfg.Storefront.BaseURL != "" && h.cfg.Storefront.AccessToken != "" {
		components["storefront"] = HealthComponent{Status: "up", Detail: "configured"}
	} else {
		components["storefront"] = HealthComponent{Status: "down", Detail: "missing credentials"}
		healthy = false
	}

	resp := HealthResponse{
		Status:     "ok",
		Service:    h.cfg.App.Name,
		GoVersion:  runtime.Version(),
		Uptime:     time.Since(h.startTime).Round(time.Second).String(),
		Components: components,
	}

	if !healthy {
		resp.Status = "degraded"
		c.JSON(http.StatusServiceUnavailable, resp)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// EnvCheckResponse lists required configuration keys and whether each has a
// value. Values themselves are never reported.
// @name HandlerEnvCheckResponse
type EnvCheckResponse struct {
	Ready   bool                 `json:"ready" example:"true"`
	Missing int                  `json:"missing" example:"0"`
	Keys    []config.RequiredKey `json:"keys"`
}

// EnvCheck godoc
// @ID           getSystemEnvCheck
// @Summary      Check required configuration
// @Description  Reports each required configuration key and whether it resolved from file or environment. Key names and env var names only, never values.
// @Tags         system
// @Produce      json
// @Success      200 {object} APIResponse[EnvCheckResponse]
// @Failure      401 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /system/env-check [get]
func (h *SystemHandler) EnvCheck(c *gin.Context) {
	keys := h.cfg.RequiredKeys()

	missing := 0
	for _, k := range keys {
		if k.Required && !k.Set {
			missing++
		}
	}

	h.Success(c, EnvCheckResponse{
		Ready:   missing == 0,
		Missing: missing,
		Keys:    keys,
	})
}

// EventStatsResponse is a snapshot of the webhook dedup counters
// @name HandlerEventStatsResponse
type EventStatsResponse struct {
	EventsProcessed int64 `json:"events_processed" example:"1042"`
	EventsDuplicate int64 `json:"events_duplicate" example:"17"`
	EventsFailed    int64 `json:"events_failed" example:"2"`
}

// EventStats godoc
// @ID           getSystemEventStats
// @Summary      Webhook processing counters
// @Description  Returns counts of processed, duplicate-suppressed, and failed webhook events since startup
// @Tags         system
// @Produce      json
// @Success      200 {object} APIResponse[EventStatsResponse]
// @Failure      401 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /system/event-stats [get]
func (h *SystemHandler) EventStats(c *gin.Context) {
	stats := h.idempotency.Stats()
	h.Success(c, EventStatsResponse{
		EventsProcessed: stats.EventsProcessed,
		EventsDuplicate: stats.EventsDuplicate,
		EventsFailed:    stats.EventsFailed,
	})
}

// PingResponse represents the ping response
// @name HandlerPingResponse
type PingResponse struct {
	Message   string `json:"message" example:"pong"`
	Timestamp string `json:"timestamp" example:"2026-01-23T12:00:00Z"`
}

// Ping godoc
// @ID           pingSystem
// @Summary      Ping the API
// @Description  Simple ping endpoint to check if the API is responsive
// @Tags         system
// @Produce      json
// @Success      200 {object} APIResponse[PingResponse]
// @Router       /system/ping [get]
func (h *SystemHandler) Ping(c *gin.Context) {
	response := PingResponse{
		Message:   "pong",
		Timestamp: time.Now().Format(time.RFC3339),
	}

	c.JSON(http.StatusOK, dto.NewSuccessResponse(response))
}

func countDetail(n int, noun string) string {
	return strconv.Itoa(n) + " " + noun
}
