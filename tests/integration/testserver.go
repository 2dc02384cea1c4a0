// Package integration provides integration testing for the curator backend
// API. This file contains the shared harness: a fake storefront catalog API
// and a test server wired with the real application stack.
package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	merchapp "github.com/curator/backend/internal/application/merchandising"
	"github.com/curator/backend/internal/domain/merchandising"
	"github.com/curator/backend/internal/domain/shared"
	"github.com/curator/backend/internal/infrastructure/auth"
	"github.com/curator/backend/internal/infrastructure/cache"
	"github.com/curator/backend/internal/infrastructure/config"
	"github.com/curator/backend/internal/infrastructure/event"
	"github.com/curator/backend/internal/infrastructure/scheduler"
	"github.com/curator/backend/internal/infrastructure/snapshot"
	"github.com/curator/backend/internal/infrastructure/storefront"
	"github.com/curator/backend/internal/infrastructure/telemetry"
	"github.com/curator/backend/internal/interfaces/http/handler"
	"github.com/curator/backend/internal/interfaces/http/middleware"
	"github.com/curator/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// testCollectionsSnapshot is the collections fixture the taxonomy loads.
// Titles match the display form of the category keys the classifier emits.
const testCollectionsSnapshot = `{
  "collections": [
    {"id": 11, "title": "Beads", "handle": "beads"},
    {"id": 12, "title": "Round Faceted", "handle": "round-faceted"},
    {"id": 13, "title": "Rose Quartz", "handle": "rose-quartz"},
    {"id": 14, "title": "Amethyst", "handle": "amethyst"},
    {"id": 15, "title": "Teardrop", "handle": "teardrop"}
  ]
}`

// assignment is one recorded collection membership write
type assignment struct {
	ProductID    int64
	CollectionID int64
}

// fakeStorefront simulates the storefront catalog API: paged product
// listings, single-product fetches and collection membership writes. Rate
// limits and write failures can be injected per request.
type fakeStorefront struct {
	server *httptest.Server
	token  string

	mu             sync.Mutex
	products       map[int64]merchandising.Product
	assignments    []assignment
	listRateLimits int
	writeFailures  int
	listCalls      int
	lastListSince  time.Time
}

func newFakeStorefront(t *testing.T) *fakeStorefront {
	t.Helper()

	f := &fakeStorefront{
		token:    "test-token",
		products: make(map[int64]merchandising.Product),
	}
	f.server = httptest.NewServer(http.HandlerFunc(f.handle))
	t.Cleanup(f.server.Close)
	return f
}

func (f *fakeStorefront) handle(w http.ResponseWriter, r *http.Request) {
	if r.Header.Get("X-Storefront-Access-Token") != f.token {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	switch {
	case r.Method == http.MethodGet && len(parts) == 3 && parts[0] == "stores" && parts[2] == "products":
		f.handleList(w, r)
	case r.Method == http.MethodGet && len(parts) == 4 && parts[0] == "stores" && parts[2] == "products":
		f.handleGet(w, parts[3])
	case r.Method == http.MethodPost && len(parts) == 5 && parts[0] == "stores" && parts[2] == "collections" && parts[4] == "products":
		f.handleAssign(w, r, parts[3])
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (f *fakeStorefront) handleList(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.listCalls++
	if f.listRateLimits > 0 {
		f.listRateLimits--
		w.WriteHeader(http.StatusTooManyRequests)
		return
	}

	if since, err := time.Parse(time.RFC3339, r.URL.Query().Get("updated_at_min")); err == nil {
		f.lastListSince = since
	}
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit < 1 {
		limit = 50
	}

	ids := make([]int64, 0, len(f.products))
	for id := range f.products {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	start := (page - 1) * limit
	if start > len(ids) {
		start = len(ids)
	}
	end := start + limit
	if end > len(ids) {
		end = len(ids)
	}

	products := make([]merchandising.Product, 0, end-start)
	for _, id := range ids[start:end] {
		products = append(products, f.products[id])
	}
	writeJSON(w, map[string]interface{}{"products": products})
}

func (f *fakeStorefront) handleGet(w http.ResponseWriter, rawID string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	id, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	product, ok := f.products[id]
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	writeJSON(w, map[string]interface{}{"product": product})
}

func (f *fakeStorefront) handleAssign(w http.ResponseWriter, r *http.Request, rawCollectionID string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.writeFailures > 0 {
		f.writeFailures--
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	collectionID, err := strconv.ParseInt(rawCollectionID, 10, 64)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	var req struct {
		ProductID int64 `json:"product_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ProductID == 0 {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	f.assignments = append(f.assignments, assignment{ProductID: req.ProductID, CollectionID: collectionID})
	writeJSON(w, map[string]interface{}{"collect": req})
}

// putProduct makes a product visible to listings and single fetches
func (f *fakeStorefront) putProduct(p merchandising.Product) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.products[p.ID] = p
}

// assignmentLog returns the ordered collection writes recorded so far
func (f *fakeStorefront) assignmentLog() []assignment {
	f.mu.Lock()
	defer f.mu.Unlock()
	log := make([]assignment, len(f.assignments))
	copy(log, f.assignments)
	return log
}

func (f *fakeStorefront) assignmentCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.assignments)
}

// rateLimitListings makes the next n listing requests answer 429
func (f *fakeStorefront) rateLimitListings(n int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listRateLimits = n
}

// failNextWrites makes the next n collection writes answer 500
func (f *fakeStorefront) failNextWrites(n int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.writeFailures = n
}

func (f *fakeStorefront) listCallCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.listCalls
}

func (f *fakeStorefront) listedSince() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastListSince
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

// TestServer wraps the fake storefront and HTTP server for API testing
type TestServer struct {
	t          *testing.T
	Engine     *gin.Engine
	Router     *router.Router
	Storefront *fakeStorefront
	Verifier   *storefront.Verifier
	Scheduler  *scheduler.SyncScheduler
	JWT        *auth.JWTService
	Config     *config.Config
}

// NewTestServer creates a test server with the real application stack wired
// against a fake storefront. Timings are shrunk so retries and restarts
// complete within test timeouts.
func NewTestServer(t *testing.T) *TestServer {
	t.Helper()

	gin.SetMode(gin.TestMode)
	log := zap.NewNop()

	fake := newFakeStorefront(t)

	snapshotPath := filepath.Join(t.TempDir(), "collections.json")
	require.NoError(t, os.WriteFile(snapshotPath, []byte(testCollectionsSnapshot), 0o600))

	cfg := &config.Config{
		App: config.AppConfig{
			Name: "curator-backend",
			Env:  "test",
			Port: "8080",
		},
		Storefront: config.StorefrontConfig{
			BaseURL:     fake.server.URL,
			Store:       "curator-test",
			AccessToken: "test-token",
			Timeout:     5 * time.Second,
		},
		Webhook: config.WebhookConfig{
			Secret:      "integration-webhook-secret",
			MaxBodySize: 64 * 1024,
		},
		Auth: config.AuthConfig{
			Secret:          "integration-jwt-secret-0123456789abcdef",
			TokenExpiration: time.Hour,
			Issuer:          "curator-backend",
			Audience:        "curator-admin",
		},
		Snapshot: config.SnapshotConfig{
			Source: "file",
			Path:   snapshotPath,
		},
		Idempotency: config.IdempotencyConfig{
			Store: "memory",
			TTL:   time.Hour,
		},
		Processor: config.ProcessorConfig{
			RetryBudget:       2,
			RetryDelay:        5 * time.Millisecond,
			WindowLookback:    time.Hour,
			RateLimitPause:    10 * time.Millisecond,
			SkipReadinessWait: true,
		},
		Scheduler: config.SchedulerConfig{
			JobTimeout:    5 * time.Second,
			RetryAttempts: 1,
			RetryDelay:    5 * time.Millisecond,
			HistorySize:   50,
		},
	}

	// Taxonomy from the snapshot fixture
	source, err := snapshot.NewSource(&cfg.Snapshot, log)
	require.NoError(t, err)
	provider := merchandising.NewTaxonomyProvider(source)
	_, err = provider.Taxonomy(context.Background())
	require.NoError(t, err)

	// Storefront client and webhook verifier against the fake
	client, err := storefront.NewClient(&cfg.Storefront, storefront.WithLogger(log))
	require.NoError(t, err)
	verifier := storefront.NewVerifier(&cfg.Webhook, log)

	// Dedup store, event bus, processor, scheduler
	store := cache.NewInMemoryIdempotencyStore()
	t.Cleanup(func() { _ = store.Close() })

	eventBus := event.NewInMemoryEventBus(log)
	metrics := telemetry.NewNopCurationMetrics()
	processor := merchapp.NewProcessor(client, provider, cfg.Processor, log, metrics)

	schedulerConfig := scheduler.DefaultSyncSchedulerConfig()
	schedulerConfig.Interval = 0
	schedulerConfig.Lookback = cfg.Processor.WindowLookback
	schedulerConfig.JobTimeout = cfg.Scheduler.JobTimeout
	schedulerConfig.RetryAttempts = cfg.Scheduler.RetryAttempts
	schedulerConfig.RetryDelay = cfg.Scheduler.RetryDelay
	schedulerConfig.HistorySize = cfg.Scheduler.HistorySize
	sched, err := scheduler.NewSyncScheduler(
		schedulerConfig,
		merchapp.NewCurationExecutor(processor, log),
		log,
		scheduler.WithQueueDepthRecorder(metrics),
	)
	require.NoError(t, err)

	// Event handlers, webhook upserts deduplicated by delivery ID
	idempotencyMetrics := &event.IdempotencyMetrics{}
	productUpsertedHandler := event.NewIdempotentHandler(
		merchapp.NewProductUpsertedHandler(sched, log),
		store,
		log,
		event.WithIdempotencyConfig(shared.IdempotencyConfig{
			TTL:     cfg.Idempotency.TTL,
			Enabled: true,
		}),
		event.WithIdempotencyMetrics(idempotencyMetrics),
	)
	eventBus.Subscribe(productUpsertedHandler)
	eventBus.Subscribe(merchapp.NewProductDeletedHandler(log))

	require.NoError(t, eventBus.Start(context.Background()))
	t.Cleanup(func() { _ = eventBus.Stop(context.Background()) })

	require.NoError(t, sched.Start(context.Background()))
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = sched.Stop(ctx)
	})

	// Services and handlers
	webhookService := merchapp.NewWebhookService(verifier, eventBus, log, metrics)
	jwtService := auth.NewJWTService(cfg.Auth)

	webhookHandler := handler.NewWebhookHandler(webhookService, cfg.Webhook.MaxBodySize, log)
	syncHandler := handler.NewSyncHandler(sched, cfg.Processor.WindowLookback, log)
	systemHandler := handler.NewSystemHandler(cfg, provider, sched, verifier, idempotencyMetrics, log)

	middleware.SetupValidator()

	// Setup engine and routes the way main wires them
	engine := gin.New()
	engine.GET("/health", systemHandler.Health)

	webhookGroup := engine.Group("/webhooks")
	webhookGroup.POST("/products/create", webhookHandler.HandleProductCreate)
	webhookGroup.POST("/products/update", webhookHandler.HandleProductUpdate)
	webhookGroup.POST("/products/delete", webhookHandler.HandleProductDelete)

	r := router.NewRouter(engine, router.WithAPIVersion("v1"))
	r.Use(middleware.JWTAuthMiddlewareWithConfig(middleware.JWTMiddlewareConfig{
		JWTService: jwtService,
		SkipPaths:  []string{"/api/v1/system/ping"},
		Logger:     log,
	}))

	syncRoutes := router.NewDomainGroup("/sync")
	syncRoutes.POST("/trigger", middleware.RequireScope(auth.ScopeSyncTrigger), syncHandler.TriggerSync)
	syncRoutes.GET("/jobs", middleware.RequireScope(auth.ScopeSystemRead), syncHandler.ListJobs)
	syncRoutes.GET("/jobs/:id", middleware.RequireScope(auth.ScopeSystemRead), syncHandler.GetJob)

	systemRoutes := router.NewDomainGroup("/system")
	systemRoutes.GET("/env-check", middleware.RequireScope(auth.ScopeSystemRead), systemHandler.EnvCheck)
	systemRoutes.GET("/event-stats", middleware.RequireScope(auth.ScopeSystemRead), systemHandler.EventStats)
	systemRoutes.GET("/ping", systemHandler.Ping)

	r.Register(syncRoutes).
		Register(systemRoutes)
	r.Setup()

	return &TestServer{
		t:          t,
		Engine:     engine,
		Router:     r,
		Storefront: fake,
		Verifier:   verifier,
		Scheduler:  sched,
		JWT:        jwtService,
		Config:     cfg,
	}
}

// BearerToken mints a service token carrying the given scopes
func (ts *TestServer) BearerToken(scopes ...string) string {
	ts.t.Helper()

	token, err := ts.JWT.GenerateServiceToken("integration-test", scopes...)
	require.NoError(ts.t, err)
	return token.Token
}

// Request makes an HTTP request to the test server without credentials
func (ts *TestServer) Request(method, path string, body interface{}) *httptest.ResponseRecorder {
	return ts.doJSON(method, path, body, nil)
}

// AuthRequest makes an HTTP request carrying a Bearer token with the given scopes
func (ts *TestServer) AuthRequest(method, path string, body interface{}, scopes ...string) *httptest.ResponseRecorder {
	return ts.doJSON(method, path, body, map[string]string{
		"Authorization": "Bearer " + ts.BearerToken(scopes...),
	})
}

// WebhookRequest posts a raw payload to a webhook endpoint signed with the
// configured secret. A non-empty eventID is sent as the delivery identifier.
func (ts *TestServer) WebhookRequest(path string, payload []byte, eventID string) *httptest.ResponseRecorder {
	headers := map[string]string{
		"Content-Type":             "application/json",
		storefront.SignatureHeader: ts.Verifier.Sign(payload),
	}
	if eventID != "" {
		headers[storefront.EventIDHeader] = eventID
	}
	return ts.doRaw(http.MethodPost, path, payload, headers)
}

func (ts *TestServer) doJSON(method, path string, body interface{}, headers map[string]string) *httptest.ResponseRecorder {
	var payload []byte
	if body != nil {
		payload, _ = json.Marshal(body)
	}
	if headers == nil {
		headers = make(map[string]string)
	}
	headers["Content-Type"] = "application/json"
	return ts.doRaw(method, path, payload, headers)
}

func (ts *TestServer) doRaw(method, path string, body []byte, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	w := httptest.NewRecorder()
	ts.Engine.ServeHTTP(w, req)
	return w
}

// APIResponse represents the standard API response structure
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
	Meta *struct {
		Total    int64 `json:"total"`
		Returned int   `json:"returned"`
	} `json:"meta,omitempty"`
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) APIResponse {
	t.Helper()

	var resp APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), "body: %s", w.Body.String())
	return resp
}
