package cache

import (
	"testing"

	"github.com/curator/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// unreachableRedis points at a local port nothing listens on, so
// connection attempts fail immediately with a refused error.
func unreachableRedis() config.RedisConfig {
	return config.RedisConfig{Host: "127.0.0.1", Port: 1}
}

func TestIdempotencyStoreFactory_CreateStore(t *testing.T) {
	t.Run("memory store", func(t *testing.T) {
		factory := NewIdempotencyStoreFactory(
			config.IdempotencyConfig{Store: StoreMemory},
			config.RedisConfig{},
		)

		store, err := factory.CreateStore()
		require.NoError(t, err)
		defer store.Close()

		assert.IsType(t, &InMemoryIdempotencyStore{}, store)
	})

	t.Run("empty store kind selects memory", func(t *testing.T) {
		factory := NewIdempotencyStoreFactory(
			config.IdempotencyConfig{},
			config.RedisConfig{},
		)

		store, err := factory.CreateStore()
		require.NoError(t, err)
		defer store.Close()

		assert.IsType(t, &InMemoryIdempotencyStore{}, store)
	})

	t.Run("unknown store kind", func(t *testing.T) {
		factory := NewIdempotencyStoreFactory(
			config.IdempotencyConfig{Store: "memcached"},
			config.RedisConfig{},
		)

		store, err := factory.CreateStore()
		require.Error(t, err)
		assert.Nil(t, store)
		assert.Contains(t, err.Error(), "unknown idempotency store")
	})

	t.Run("redis unreachable with fallback", func(t *testing.T) {
		factory := NewIdempotencyStoreFactory(
			config.IdempotencyConfig{Store: StoreRedis, AllowMemoryFallback: true},
			unreachableRedis(),
			WithLogger(zap.NewNop()),
		)

		store, err := factory.CreateStore()
		require.NoError(t, err)
		defer store.Close()

		assert.IsType(t, &InMemoryIdempotencyStore{}, store)
	})

	t.Run("redis unreachable without fallback", func(t *testing.T) {
		factory := NewIdempotencyStoreFactory(
			config.IdempotencyConfig{Store: StoreRedis, AllowMemoryFallback: false},
			unreachableRedis(),
		)

		store, err := factory.CreateStore()
		require.Error(t, err)
		assert.Nil(t, store)
		assert.Contains(t, err.Error(), "redis required for idempotency")
	})
}

func TestIdempotencyStoreFactory_CreateInMemoryStore(t *testing.T) {
	factory := NewIdempotencyStoreFactory(config.IdempotencyConfig{}, config.RedisConfig{})

	store := factory.CreateInMemoryStore()
	require.NotNil(t, store)
	defer store.Close()
}
