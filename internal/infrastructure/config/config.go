package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	App         AppConfig
	Storefront  StorefrontConfig
	Webhook     WebhookConfig
	Auth        AuthConfig
	Snapshot    SnapshotConfig
	Redis       RedisConfig
	Idempotency IdempotencyConfig
	Processor   ProcessorConfig
	Scheduler   SchedulerConfig
	Log         LogConfig
	HTTP        HTTPConfig
	Swagger     SwaggerConfig
	Telemetry   TelemetryConfig
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Name string
	Env  string
	Port string
}

// StorefrontConfig holds the remote catalog API connection settings
type StorefrontConfig struct {
	BaseURL     string        // API root, e.g. "https://api.storefront.example"
	Store       string        // store identifier used in resource paths
	AccessToken string        // sent as X-Storefront-Access-Token
	Timeout     time.Duration // per-request HTTP client timeout
	PageSize    int           // products per page when listing
}

// WebhookConfig holds inbound webhook verification settings
type WebhookConfig struct {
	Secret          string // shared HMAC secret issued by the storefront
	AllowUnverified bool   // skip verification when no secret is set (development only)
	MaxBodySize     int64  // per-webhook payload cap in bytes
}

// AuthConfig holds admin API token settings
type AuthConfig struct {
	Secret          string
	TokenExpiration time.Duration
	Issuer          string
	Audience        string
}

// SnapshotConfig holds the collections snapshot source settings
type SnapshotConfig struct {
	Source string // file, s3
	Path   string // local path when source is "file"
	// S3 settings, used when source is "s3"
	S3Bucket       string
	S3Key          string
	S3Region       string
	S3Endpoint     string // custom endpoint for S3-compatible stores (empty = AWS)
	S3AccessKeyID  string
	S3SecretKey    string
	S3UsePathStyle bool // required by MinIO and most self-hosted stores
	S3UseSSL       bool // scheme used when the endpoint is given without one
}

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// IdempotencyConfig holds webhook dedup store settings
type IdempotencyConfig struct {
	Store               string        // memory, redis
	TTL                 time.Duration // how long processed event IDs are remembered
	AllowMemoryFallback bool          // fall back to the in-memory store when Redis is unreachable
}

// ProcessorConfig holds product processing settings
type ProcessorConfig struct {
	RetryBudget       int           // additional write attempts after the first
	RetryDelay        time.Duration // fixed pause between write attempts
	WriteDelay        time.Duration // pacing between consecutive collection writes
	WindowLookback    time.Duration // batch mode trailing window
	RateLimitPause    time.Duration // pause before restarting a rate-limited listing query
	SkipReadinessWait bool          // process upserts immediately instead of polling for SKUs
	ReadinessInterval time.Duration // poll interval while waiting for variant SKUs
	ReadinessTimeout  time.Duration // give up waiting and process as-is after this long
}

// SchedulerConfig holds sync job scheduler configuration
type SchedulerConfig struct {
	Interval      time.Duration // periodic window sync; 0 disables it
	JobTimeout    time.Duration
	RetryAttempts int
	RetryDelay    time.Duration // base delay, doubled per retry
	HistorySize   int           // completed jobs kept for the admin API
}

// HTTPConfig holds HTTP server configuration
type HTTPConfig struct {
	ReadTimeout       time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
	MaxHeaderBytes    int
	MaxBodySize       int64
	RateLimitEnabled  bool
	RateLimitRequests int
	RateLimitWindow   time.Duration
	CORSAllowOrigins  []string
	CORSAllowMethods  []string
	CORSAllowHeaders  []string
	TrustedProxies    []string
}

// SwaggerConfig holds Swagger documentation endpoint configuration
type SwaggerConfig struct {
	Enabled     bool     // Whether to enable Swagger endpoint
	RequireAuth bool     // Require authentication to access Swagger
	AllowedIPs  []string // IP whitelist (empty = allow all)
}

// TelemetryConfig holds OpenTelemetry configuration
type TelemetryConfig struct {
	Enabled           bool    // Whether to enable OpenTelemetry
	CollectorEndpoint string  // OTEL Collector endpoint (e.g., "localhost:4317")
	SamplingRatio     float64 // Sampling ratio (0.0-1.0, 1.0 = 100%)
	ServiceName       string  // Service name for traces
	Insecure          bool    // Use insecure (non-TLS) connection (development only)
	// Continuous profiling options
	ProfilingEnabled       bool   // Enable Pyroscope continuous profiling
	ProfilingServerAddress string // Pyroscope server address (e.g., "http://localhost:4040")
	ProfilingBasicAuthUser string
	ProfilingBasicAuthPass string
}

// Load loads configuration from TOML file and environment variables
// Priority (highest to lowest):
// 1. Environment variables with CURATOR_ prefix (e.g., CURATOR_STOREFRONT_ACCESS_TOKEN)
// 2. config.toml
// 3. Built-in defaults
func Load() (*Config, error) {
	v := viper.New()

	// Set config file settings
	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")
	v.AddConfigPath("/app")

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, we'll use defaults and env vars
	}

	// Enable environment variable override
	v.SetEnvPrefix("CURATOR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Build config struct
	cfg := &Config{
		App: AppConfig{
			Name: v.GetString("app.name"),
			Env:  v.GetString("app.env"),
			Port: v.GetString("app.port"),
		},
		Storefront: StorefrontConfig{
			BaseURL:     v.GetString("storefront.base_url"),
			Store:       v.GetString("storefront.store"),
			AccessToken: v.GetString("storefront.access_token"),
			Timeout:     v.GetDuration("storefront.timeout"),
			PageSize:    v.GetInt("storefront.page_size"),
		},
		Webhook: WebhookConfig{
			Secret:          v.GetString("webhook.secret"),
			AllowUnverified: v.GetBool("webhook.allow_unverified"),
			MaxBodySize:     v.GetInt64("webhook.max_body_size"),
		},
		Auth: AuthConfig{
			Secret:          v.GetString("auth.secret"),
			TokenExpiration: v.GetDuration("auth.token_expiration"),
			Issuer:          v.GetString("auth.issuer"),
			Audience:        v.GetString("auth.audience"),
		},
		Snapshot: SnapshotConfig{
			Source:         v.GetString("snapshot.source"),
			Path:           v.GetString("snapshot.path"),
			S3Bucket:       v.GetString("snapshot.s3_bucket"),
			S3Key:          v.GetString("snapshot.s3_key"),
			S3Region:       v.GetString("snapshot.s3_region"),
			S3Endpoint:     v.GetString("snapshot.s3_endpoint"),
			S3AccessKeyID:  v.GetString("snapshot.s3_access_key_id"),
			S3SecretKey:    v.GetString("snapshot.s3_secret_key"),
			S3UsePathStyle: v.GetBool("snapshot.s3_use_path_style"),
			S3UseSSL:       v.GetBool("snapshot.s3_use_ssl"),
		},
		Redis: RedisConfig{
			Host:     v.GetString("redis.host"),
			Port:     v.GetInt("redis.port"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		Idempotency: IdempotencyConfig{
			Store:               v.GetString("idempotency.store"),
			TTL:                 v.GetDuration("idempotency.ttl"),
			AllowMemoryFallback: v.GetBool("idempotency.allow_memory_fallback"),
		},
		Processor: ProcessorConfig{
			RetryBudget:       v.GetInt("processor.retry_budget"),
			RetryDelay:        v.GetDuration("processor.retry_delay"),
			WriteDelay:        v.GetDuration("processor.write_delay"),
			WindowLookback:    v.GetDuration("processor.window_lookback"),
			RateLimitPause:    v.GetDuration("processor.rate_limit_pause"),
			SkipReadinessWait: v.GetBool("processor.skip_readiness_wait"),
			ReadinessInterval: v.GetDuration("processor.readiness_interval"),
			ReadinessTimeout:  v.GetDuration("processor.readiness_timeout"),
		},
		Scheduler: SchedulerConfig{
			Interval:      v.GetDuration("scheduler.interval"),
			JobTimeout:    v.GetDuration("scheduler.job_timeout"),
			RetryAttempts: v.GetInt("scheduler.retry_attempts"),
			RetryDelay:    v.GetDuration("scheduler.retry_delay"),
			HistorySize:   v.GetInt("scheduler.history_size"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		HTTP: HTTPConfig{
			ReadTimeout:       v.GetDuration("http.read_timeout"),
			WriteTimeout:      v.GetDuration("http.write_timeout"),
			IdleTimeout:       v.GetDuration("http.idle_timeout"),
			MaxHeaderBytes:    v.GetInt("http.max_header_bytes"),
			MaxBodySize:       v.GetInt64("http.max_body_size"),
			RateLimitEnabled:  v.GetBool("http.rate_limit_enabled"),
			RateLimitRequests: v.GetInt("http.rate_limit_requests"),
			RateLimitWindow:   v.GetDuration("http.rate_limit_window"),
			CORSAllowOrigins:  v.GetStringSlice("http.cors_allow_origins"),
			CORSAllowMethods:  v.GetStringSlice("http.cors_allow_methods"),
			CORSAllowHeaders:  v.GetStringSlice("http.cors_allow_headers"),
			TrustedProxies:    v.GetStringSlice("http.trusted_proxies"),
		},
		Swagger: SwaggerConfig{
			Enabled:     v.GetBool("swagger.enabled"),
			RequireAuth: v.GetBool("swagger.require_auth"),
			AllowedIPs:  v.GetStringSlice("swagger.allowed_ips"),
		},
		Telemetry: TelemetryConfig{
			Enabled:                v.GetBool("telemetry.enabled"),
			CollectorEndpoint:      v.GetString("telemetry.collector_endpoint"),
			SamplingRatio:          v.GetFloat64("telemetry.sampling_ratio"),
			ServiceName:            v.GetString("telemetry.service_name"),
			Insecure:               v.GetBool("telemetry.insecure"),
			ProfilingEnabled:       v.GetBool("telemetry.profiling_enabled"),
			ProfilingServerAddress: v.GetString("telemetry.profiling_server_address"),
			ProfilingBasicAuthUser: v.GetString("telemetry.profiling_basic_auth_user"),
			ProfilingBasicAuthPass: v.GetString("telemetry.profiling_basic_auth_pass"),
		},
	}

	// Apply defaults for empty values
	applyDefaults(cfg)

	// Validate configuration
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyDefaults sets default values for any empty config fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "curator-backend"
	}
	if cfg.App.Env == "" {
		cfg.App.Env = "development"
	}
	if cfg.App.Port == "" {
		cfg.App.Port = "8080"
	}
	if cfg.Storefront.Timeout == 0 {
		cfg.Storefront.Timeout = 30 * time.Second
	}
	if cfg.Storefront.PageSize == 0 {
		cfg.Storefront.PageSize = 50
	}
	if cfg.Webhook.MaxBodySize == 0 {
		cfg.Webhook.MaxBodySize = 1 << 20 // 1MB
	}
	if cfg.Auth.TokenExpiration == 0 {
		cfg.Auth.TokenExpiration = 24 * time.Hour
	}
	if cfg.Auth.Issuer == "" {
		cfg.Auth.Issuer = "curator-backend"
	}
	if cfg.Auth.Audience == "" {
		cfg.Auth.Audience = "curator-backend"
	}
	if cfg.Snapshot.Source == "" {
		cfg.Snapshot.Source = "file"
	}
	if cfg.Snapshot.Path == "" {
		cfg.Snapshot.Path = "configs/collections.json"
	}
	if cfg.Snapshot.S3Region == "" {
		cfg.Snapshot.S3Region = "us-east-1"
	}
	if cfg.Redis.Host == "" {
		cfg.Redis.Host = "localhost"
	}
	if cfg.Redis.Port == 0 {
		cfg.Redis.Port = 6379
	}
	if cfg.Idempotency.Store == "" {
		cfg.Idempotency.Store = "memory"
	}
	if cfg.Idempotency.TTL == 0 {
		cfg.Idempotency.TTL = 24 * time.Hour
	}
	if cfg.Processor.RetryBudget == 0 {
		cfg.Processor.RetryBudget = 3
	}
	if cfg.Processor.RetryDelay == 0 {
		cfg.Processor.RetryDelay = 2 * time.Second
	}
	if cfg.Processor.WriteDelay == 0 {
		cfg.Processor.WriteDelay = time.Second
	}
	if cfg.Processor.WindowLookback == 0 {
		cfg.Processor.WindowLookback = time.Hour
	}
	if cfg.Processor.RateLimitPause == 0 {
		cfg.Processor.RateLimitPause = 2 * time.Second
	}
	if cfg.Processor.ReadinessInterval == 0 {
		cfg.Processor.ReadinessInterval = 3 * time.Second
	}
	if cfg.Processor.ReadinessTimeout == 0 {
		cfg.Processor.ReadinessTimeout = 45 * time.Second
	}
	if cfg.Scheduler.JobTimeout == 0 {
		cfg.Scheduler.JobTimeout = 10 * time.Minute
	}
	if cfg.Scheduler.RetryAttempts == 0 {
		cfg.Scheduler.RetryAttempts = 3
	}
	if cfg.Scheduler.RetryDelay == 0 {
		cfg.Scheduler.RetryDelay = 30 * time.Second
	}
	if cfg.Scheduler.HistorySize == 0 {
		cfg.Scheduler.HistorySize = 100
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}
	if cfg.Log.Output == "" {
		cfg.Log.Output = "stdout"
	}
	if cfg.HTTP.ReadTimeout == 0 {
		cfg.HTTP.ReadTimeout = 15 * time.Second
	}
	if cfg.HTTP.WriteTimeout == 0 {
		cfg.HTTP.WriteTimeout = 15 * time.Second
	}
	if cfg.HTTP.IdleTimeout == 0 {
		cfg.HTTP.IdleTimeout = 60 * time.Second
	}
	if cfg.HTTP.MaxHeaderBytes == 0 {
		cfg.HTTP.MaxHeaderBytes = 1 << 20 // 1MB
	}
	if cfg.HTTP.MaxBodySize == 0 {
		cfg.HTTP.MaxBodySize = 10 << 20 // 10MB
	}
	if cfg.HTTP.RateLimitRequests == 0 {
		cfg.HTTP.RateLimitRequests = 100
	}
	if cfg.HTTP.RateLimitWindow == 0 {
		cfg.HTTP.RateLimitWindow = time.Minute
	}
	// NOTE: CORS origins are intentionally not given a default fallback to "*".
	// An empty list means no cross-origin requests are allowed until explicitly configured.
	if len(cfg.HTTP.CORSAllowMethods) == 0 {
		cfg.HTTP.CORSAllowMethods = []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"}
	}
	if len(cfg.HTTP.CORSAllowHeaders) == 0 {
		cfg.HTTP.CORSAllowHeaders = []string{"Content-Type", "Authorization", "X-Request-ID"}
	}
	// Telemetry defaults
	if cfg.Telemetry.CollectorEndpoint == "" {
		cfg.Telemetry.CollectorEndpoint = "localhost:4317" // Default gRPC endpoint
	}
	if cfg.Telemetry.SamplingRatio == 0 {
		cfg.Telemetry.SamplingRatio = 1.0 // 100% in development
	}
	if cfg.Telemetry.ServiceName == "" {
		cfg.Telemetry.ServiceName = "curator-backend"
	}
	// Note: Insecure defaults to false for safety (TLS enabled by default)
}

// validate performs validation on the configuration
func (c *Config) validate() error {
	if c.Storefront.BaseURL != "" {
		u, err := url.Parse(c.Storefront.BaseURL)
		if err != nil || !u.IsAbs() {
			return fmt.Errorf("storefront.base_url must be an absolute URL, got %q", c.Storefront.BaseURL)
		}
	}
	switch c.Snapshot.Source {
	case "file":
		// Path always has a default
	case "s3":
		if c.Snapshot.S3Bucket == "" || c.Snapshot.S3Key == "" {
			return fmt.Errorf("snapshot.s3_bucket and snapshot.s3_key are required when snapshot.source is 's3'")
		}
	default:
		return fmt.Errorf("snapshot.source must be 'file' or 's3', got %q", c.Snapshot.Source)
	}
	switch c.Idempotency.Store {
	case "memory", "redis":
	default:
		return fmt.Errorf("idempotency.store must be 'memory' or 'redis', got %q", c.Idempotency.Store)
	}
	if c.Processor.RetryBudget < 0 {
		return fmt.Errorf("processor.retry_budget cannot be negative")
	}
	if c.Scheduler.RetryAttempts < 0 {
		return fmt.Errorf("scheduler.retry_attempts cannot be negative")
	}

	// Production-specific validations
	if c.App.Env == "production" {
		if c.Storefront.BaseURL == "" {
			return fmt.Errorf("storefront.base_url is required in production")
		}
		if c.Storefront.Store == "" {
			return fmt.Errorf("storefront.store is required in production")
		}
		if c.Storefront.AccessToken == "" {
			return fmt.Errorf("storefront.access_token is required in production")
		}
		if c.Webhook.AllowUnverified {
			return fmt.Errorf("webhook.allow_unverified must be false in production (webhooks must be verified)")
		}
		if c.Webhook.Secret == "" {
			return fmt.Errorf("webhook.secret is required in production")
		}
		if c.Auth.Secret == "" {
			return fmt.Errorf("auth.secret is required in production")
		}
		if len(c.Auth.Secret) < 32 {
			return fmt.Errorf("auth.secret must be at least 32 characters in production")
		}
		// CORS must not use wildcard with credentials
		for _, origin := range c.HTTP.CORSAllowOrigins {
			if origin == "*" {
				return fmt.Errorf("cors_allow_origins cannot be '*' in production (use specific origins)")
			}
		}
		// Swagger must be disabled OR protected in production
		if c.Swagger.Enabled {
			if !c.Swagger.RequireAuth && len(c.Swagger.AllowedIPs) == 0 {
				return fmt.Errorf("swagger endpoint must be disabled, require authentication, or have IP restriction in production")
			}
		}
	}

	// Validate telemetry configuration (all environments)
	if c.Telemetry.SamplingRatio < 0.0 || c.Telemetry.SamplingRatio > 1.0 {
		return fmt.Errorf("telemetry.sampling_ratio must be between 0.0 and 1.0, got %f", c.Telemetry.SamplingRatio)
	}

	return nil
}

// EnvVar returns the environment variable that overrides the given config key,
// e.g. "storefront.access_token" -> "CURATOR_STOREFRONT_ACCESS_TOKEN".
func EnvVar(key string) string {
	return "CURATOR_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
}

// RequiredKey reports whether one configuration key has a resolved value.
// Values themselves are never exposed; the environment check endpoint only
// tells operators which knobs still need to be set.
type RequiredKey struct {
	Key      string `json:"key"`
	EnvVar   string `json:"env_var"`
	Required bool   `json:"required"`
	Set      bool   `json:"set"`
}

// RequiredKeys lists the keys the environment check endpoint reports on,
// with Set derived from the loaded configuration (file or environment).
func (c *Config) RequiredKeys() []RequiredKey {
	keys := []RequiredKey{
		{Key: "app.port", Required: true, Set: c.App.Port != ""},
		{Key: "storefront.base_url", Required: true, Set: c.Storefront.BaseURL != ""},
		{Key: "storefront.store", Required: true, Set: c.Storefront.Store != ""},
		{Key: "storefront.access_token", Required: true, Set: c.Storefront.AccessToken != ""},
		{Key: "webhook.secret", Required: !c.Webhook.AllowUnverified, Set: c.Webhook.Secret != ""},
		{Key: "auth.secret", Required: true, Set: c.Auth.Secret != ""},
	}
	switch c.Snapshot.Source {
	case "s3":
		keys = append(keys,
			RequiredKey{Key: "snapshot.s3_bucket", Required: true, Set: c.Snapshot.S3Bucket != ""},
			RequiredKey{Key: "snapshot.s3_key", Required: true, Set: c.Snapshot.S3Key != ""},
		)
	default:
		keys = append(keys, RequiredKey{Key: "snapshot.path", Required: true, Set: c.Snapshot.Path != ""})
	}
	if c.Idempotency.Store == "redis" {
		keys = append(keys, RequiredKey{Key: "redis.host", Required: true, Set: c.Redis.Host != ""})
	}
	for i := range keys {
		keys[i].EnvVar = EnvVar(keys[i].Key)
	}
	return keys
}
