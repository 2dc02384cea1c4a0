package cache

import (
	"fmt"

	"github.com/curator/backend/internal/domain/shared"
	"github.com/curator/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// Idempotency store kinds accepted in configuration.
const (
	StoreMemory = "memory"
	StoreRedis  = "redis"
)

// IdempotencyStoreFactory creates idempotency stores based on configuration
type IdempotencyStoreFactory struct {
	storeKind             string
	redisConfig           config.RedisConfig
	logger                *zap.Logger
	allowInMemoryFallback bool
}

// IdempotencyStoreFactoryOption is a functional option for configuring the factory
type IdempotencyStoreFactoryOption func(*IdempotencyStoreFactory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) IdempotencyStoreFactoryOption {
	return func(f *IdempotencyStoreFactory) {
		f.logger = logger
	}
}

// NewIdempotencyStoreFactory creates a new factory
func NewIdempotencyStoreFactory(cfg config.IdempotencyConfig, redisCfg config.RedisConfig, opts ...IdempotencyStoreFactoryOption) *IdempotencyStoreFactory {
	f := &IdempotencyStoreFactory{
		storeKind:             cfg.Store,
		redisConfig:           redisCfg,
		logger:                zap.NewNop(),
		allowInMemoryFallback: cfg.AllowMemoryFallback,
	}

	for _, opt := range opts {
		opt(f)
	}

	return f
}

// CreateRedisStore creates a Redis-based idempotency store
func (f *IdempotencyStoreFactory) CreateRedisStore() (shared.IdempotencyStore, error) {
	redisCfg := RedisConfig{
		Host:     f.redisConfig.Host,
		Port:     f.redisConfig.Port,
		Password: f.redisConfig.Password,
		DB:       f.redisConfig.DB,
	}

	store, err := NewRedisIdempotencyStore(redisCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create Redis idempotency store: %w", err)
	}

	return store, nil
}

// CreateInMemoryStore creates an in-memory idempotency store.
// In-memory stores do not share state across process instances, so
// redeliveries can be reprocessed when several replicas receive webhooks.
func (f *IdempotencyStoreFactory) CreateInMemoryStore() shared.IdempotencyStore {
	return NewInMemoryIdempotencyStore()
}

// CreateStore creates the idempotency store selected by idempotency.store.
// When Redis is selected but unreachable, the factory falls back to the
// in-memory store unless idempotency.allow_memory_fallback is false.
func (f *IdempotencyStoreFactory) CreateStore() (shared.IdempotencyStore, error) {
	switch f.storeKind {
	case StoreMemory, "":
		f.logger.Info("Using in-memory idempotency store")
		return f.CreateInMemoryStore(), nil

	case StoreRedis:
		store, err := f.CreateRedisStore()
		if err == nil {
			f.logger.Info("Using Redis idempotency store",
				zap.String("host", f.redisConfig.Host),
				zap.Int("port", f.redisConfig.Port),
			)
			return store, nil
		}

		if !f.allowInMemoryFallback {
			return nil, fmt.Errorf("redis required for idempotency but unavailable: %w", err)
		}

		f.logger.Warn("Redis unavailable, falling back to in-memory idempotency store",
			zap.Error(err),
		)
		return f.CreateInMemoryStore(), nil

	default:
		return nil, fmt.Errorf("unknown idempotency store %q", f.storeKind)
	}
}
