package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/curator/backend/internal/domain/merchandising"
	"github.com/curator/backend/internal/infrastructure/config"
	"github.com/curator/backend/internal/infrastructure/event"
	"github.com/curator/backend/internal/infrastructure/scheduler"
	"github.com/curator/backend/internal/infrastructure/storefront"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
)

// staticSnapshotSource serves a fixed collection list, or fails.
type staticSnapshotSource struct {
	collections []merchandising.Collection
	err         error
}

func (s *staticSnapshotSource) Load(_ context.Context) ([]merchandising.Collection, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.collections, nil
}

func systemTestConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Name: "curator-backend", Env: "test", Port: "8080"},
		Storefront: config.StorefrontConfig{
			BaseURL:     "https://api.storefront.example",
			Store:       "gemstore",
			AccessToken: "shpat-test",
		},
		Webhook:     config.WebhookConfig{Secret: "whsec-test"},
		Auth:        config.AuthConfig{Secret: "0123456789abcdef0123456789abcdef"},
		Snapshot:    config.SnapshotConfig{Source: "file", Path: "collections.json"},
		Idempotency: config.IdempotencyConfig{Store: "memory", TTL: time.Hour},
	}
}

func beadCollections() []merchandising.Collection {
	return []merchandising.Collection{
		{ID: 101, Title: "Beads", Handle: "beads"},
		{ID: 102, Title: "Round Polished", Handle: "round-polished"},
		{ID: 103, Title: "Rose Quartz", Handle: "rose-quartz"},
	}
}

func newSystemTestHandler(t *testing.T, cfg *config.Config, source merchandising.SnapshotSource) *SystemHandler {
	t.Helper()

	provider := merchandising.NewTaxonomyProvider(source)
	sched := startedSyncScheduler(t, &stubExecutor{})
	verifier := storefront.NewVerifier(&cfg.Webhook, zap.NewNop())

	return NewSystemHandler(cfg, provider, sched, verifier, &event.IdempotencyMetrics{}, zaptest.NewLogger(t))
}

func newSystemRouter(h *SystemHandler) *gin.Engine {
	r := gin.New()
	r.GET("/health", h.Health)
	r.GET("/api/v1/system/env-check", h.EnvCheck)
	r.GET("/api/v1/system/event-stats", h.EventStats)
	r.GET("/api/v1/system/ping", h.Ping)
	return r
}

func TestSystemHandlerHealthOK(t *testing.T) {
	h := newSystemTestHandler(t, systemTestConfig(), &staticSnapshotSource{collections: beadCollections()})
	router := newSystemRouter(h)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/health", nil))

	require.Equal(t, http.StatusOK, w.Code)

	var resp HealthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "curator-backend", resp.Service)
	assert.NotEmpty(t, resp.GoVersion)
	assert.NotEmpty(t, resp.Uptime)

	assert.Equal(t, "up", resp.Components["taxonomy"].Status)
	assert.Equal(t, "3 collections", resp.Components["taxonomy"].Detail)
	assert.Equal(t, "up", resp.Components["scheduler"].Status)
	assert.Equal(t, "0 queued jobs", resp.Components["scheduler"].Detail)
	assert.Equal(t, "up", resp.Components["webhook_verification"].Status)
	assert.Equal(t, "enforced", resp.Components["webhook_verification"].Detail)
	assert.Equal(t, "memory", resp.Components["idempotency"].Detail)
	assert.Equal(t, "up", resp.Components["storefront"].Status)
}

func TestSystemHandlerHealthDegradedWhenSnapshotFails(t *testing.T) {
	source := &staticSnapshotSource{err: merchandising.ErrSnapshotUnavailable}
	h := newSystemTestHandler(t, systemTestConfig(), source)
	router := newSystemRouter(h)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/health", nil))

	require.Equal(t, http.StatusServiceUnavailable, w.Code)

	var resp HealthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "degraded", resp.Status)
	assert.Equal(t, "down", resp.Components["taxonomy"].Status)
	assert.Equal(t, "snapshot load failed", resp.Components["taxonomy"].Detail)
	// Failure reasons stay in the logs, never in the unauthenticated response
	assert.NotContains(t, w.Body.String(), "merchandising:")
}

func TestSystemHandlerHealthDegradedWhenSchedulerStopped(t *testing.T) {
	cfg := systemTestConfig()
	provider := merchandising.NewTaxonomyProvider(&staticSnapshotSource{collections: beadCollections()})
	sched, err := scheduler.NewSyncScheduler(fastSchedulerConfig(), &stubExecutor{}, zaptest.NewLogger(t))
	require.NoError(t, err)
	verifier := storefront.NewVerifier(&cfg.Webhook, zap.NewNop())
	h := NewSystemHandler(cfg, provider, sched, verifier, &event.IdempotencyMetrics{}, zaptest.NewLogger(t))
	router := newSystemRouter(h)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/health", nil))

	require.Equal(t, http.StatusServiceUnavailable, w.Code)

	var resp HealthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "degraded", resp.Status)
	assert.Equal(t, "down", resp.Components["scheduler"].Status)
	assert.Equal(t, "worker not running", resp.Components["scheduler"].Detail)
}

func TestSystemHandlerHealthDegradedWhenStorefrontUnconfigured(t *testing.T) {
	cfg := systemTestConfig()
	cfg.Storefront.AccessToken = ""
	h := newSystemTestHandler(t, cfg, &staticSnapshotSource{collections: beadCollections()})
	router := newSystemRouter(h)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/health", nil))

	require.Equal(t, http.StatusServiceUnavailable, w.Code)

	var resp HealthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "down", resp.Components["storefront"].Status)
	assert.Equal(t, "missing credentials", resp.Components["storefront"].Detail)
}

func TestSystemHandlerHealthReportsUnverifiedMode(t *testing.T) {
	cfg := systemTestConfig()
	cfg.Webhook.Secret = ""
	cfg.Webhook.AllowUnverified = true
	h := newSystemTestHandler(t, cfg, &staticSnapshotSource{collections: beadCollections()})
	router := newSystemRouter(h)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/health", nil))

	require.Equal(t, http.StatusOK, w.Code)

	var resp HealthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "up", resp.Components["webhook_verification"].Status)
	assert.Equal(t, "unverified mode", resp.Components["webhook_verification"].Detail)
}

func TestSystemHandlerEnvCheck(t *testing.T) {
	t.Run("all keys set", func(t *testing.T) {
		h := newSystemTestHandler(t, systemTestConfig(), &staticSnapshotSource{collections: beadCollections()})
		router := newSystemRouter(h)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest("GET", "/api/v1/system/env-check", nil))

		require.Equal(t, http.StatusOK, w.Code)

		var resp struct {
			Success bool             `json:"success"`
			Data    EnvCheckResponse `json:"data"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.True(t, resp.Success)
		assert.True(t, resp.Data.Ready)
		assert.Zero(t, resp.Data.Missing)
		require.NotEmpty(t, resp.Data.Keys)

		var sawToken bool
		for _, k := range resp.Data.Keys {
			if k.Key == "storefront.access_token" {
				sawToken = true
				assert.Equal(t, "CURATOR_STOREFRONT_ACCESS_TOKEN", k.EnvVar)
				assert.True(t, k.Set)
			}
		}
		assert.True(t, sawToken, "storefront.access_token missing from env check")

		// Key names only, never values
		assert.NotContains(t, w.Body.String(), "shpat-test")
		assert.NotContains(t, w.Body.String(), "whsec-test")
	})

	t.Run("missing key counts against readiness", func(t *testing.T) {
		cfg := systemTestConfig()
		cfg.Storefront.AccessToken = ""
		h := newSystemTestHandler(t, cfg, &staticSnapshotSource{collections: beadCollections()})
		router := newSystemRouter(h)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest("GET", "/api/v1/system/env-check", nil))

		require.Equal(t, http.StatusOK, w.Code)

		var resp struct {
			Data EnvCheckResponse `json:"data"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.False(t, resp.Data.Ready)
		assert.Equal(t, 1, resp.Data.Missing)
	})

	t.Run("unverified mode drops webhook secret requirement", func(t *testing.T) {
		cfg := systemTestConfig()
		cfg.Webhook.Secret = ""
		cfg.Webhook.AllowUnverified = true
		h := newSystemTestHandler(t, cfg, &staticSnapshotSource{collections: beadCollections()})
		router := newSystemRouter(h)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest("GET", "/api/v1/system/env-check", nil))

		require.Equal(t, http.StatusOK, w.Code)

		var resp struct {
			Data EnvCheckResponse `json:"data"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.True(t, resp.Data.Ready)
	})
}

func TestSystemHandlerEventStats(t *testing.T) {
	cfg := systemTestConfig()
	metrics := &event.IdempotencyMetrics{}
	metrics.EventsProcessed.Add(5)
	metrics.EventsDuplicate.Add(2)

	provider := merchandising.NewTaxonomyProvider(&staticSnapshotSource{collections: beadCollections()})
	sched := startedSyncScheduler(t, &stubExecutor{})
	verifier := storefront.NewVerifier(&cfg.Webhook, zap.NewNop())
	h := NewSystemHandler(cfg, provider, sched, verifier, metrics, zaptest.NewLogger(t))
	router := newSystemRouter(h)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/api/v1/system/event-stats", nil))

	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data EventStatsResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, int64(5), resp.Data.EventsProcessed)
	assert.Equal(t, int64(2), resp.Data.EventsDuplicate)
	assert.Zero(t, resp.Data.EventsFailed)
}

func TestSystemHandlerPing(t *testing.T) {
	h := newSystemTestHandler(t, systemTestConfig(), &staticSnapshotSource{collections: beadCollections()})
	router := newSystemRouter(h)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/api/v1/system/ping", nil))

	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Success bool         `json:"success"`
		Data    PingResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "pong", resp.Data.Message)

	_, err := time.Parse(time.RFC3339, resp.Data.Timestamp)
	assert.NoError(t, err)
}
