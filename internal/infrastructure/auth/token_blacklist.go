package auth

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// blacklistKeyPrefix namespaces revocation keys alongside the other
	// curator keys in a shared Redis database.
	blacklistKeyPrefix = "curator:token:"

	blacklistConnectTimeout = 5 * time.Second
)

// TokenBlacklist revokes service tokens before they expire. Revocation is
// by JTI for a single token, or by subject to cut off every token an
// operator holds.
type TokenBlacklist interface {
	// AddToBlacklist revokes a single token by its JTI. ttl should be the
	// remaining time until the token expires.
	AddToBlacklist(ctx context.Context, jti string, ttl time.Duration) error

	// IsBlacklisted checks if a token's JTI has been revoked
	IsBlacklisted(ctx context.Context, jti string) (bool, error)

	// InvalidateSubjectTokens revokes every token minted for a subject.
	// Tokens issued before the invalidation instant are rejected.
	InvalidateSubjectTokens(ctx context.Context, subject string, ttl time.Duration) error

	// IsSubjectInvalidated checks if a token issued at the given time
	// falls before the subject's invalidation instant
	IsSubjectInvalidated(ctx context.Context, subject string, tokenIssuedAt time.Time) (bool, error)
}

// RedisTokenBlacklist implements TokenBlacklist using Redis
type RedisTokenBlacklist struct {
	client    *redis.Client
	keyPrefix string
}

// RedisTokenBlacklistConfig holds configuration for Redis token blacklist
type RedisTokenBlacklistConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// NewRedisTokenBlacklist creates a new Redis-based token blacklist
func NewRedisTokenBlacklist(cfg RedisTokenBlacklistConfig) (*RedisTokenBlacklist, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     10,
		MinIdleConns: 3,
		MaxRetries:   3,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), blacklistConnectTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("token blacklist redis ping %s:%d: %w", cfg.Host, cfg.Port, err)
	}

	return &RedisTokenBlacklist{
		client:    client,
		keyPrefix: blacklistKeyPrefix,
	}, nil
}

// NewRedisTokenBlacklistWithClient wraps an existing Redis client, for
// sharing the idempotency store's connection.
func NewRedisTokenBlacklistWithClient(client *redis.Client) *RedisTokenBlacklist {
	return &RedisTokenBlacklist{
		client:    client,
		keyPrefix: blacklistKeyPrefix,
	}
}

func (b *RedisTokenBlacklist) jtiKey(jti string) string {
	return b.keyPrefix + "jti:" + jti
}

func (b *RedisTokenBlacklist) subjectKey(subject string) string {
	return b.keyPrefix + "subject:" + subject
}

// AddToBlacklist revokes a single token by its JTI
func (b *RedisTokenBlacklist) AddToBlacklist(ctx context.Context, jti string, ttl time.Duration) error {
	if err := b.client.Set(ctx, b.jtiKey(jti), "1", ttl).Err(); err != nil {
		return fmt.Errorf("revoke token %q: %w", jti, err)
	}
	return nil
}

// IsBlacklisted checks if a token's JTI has been revoked
func (b *RedisTokenBlacklist) IsBlacklisted(ctx context.Context, jti string) (bool, error) {
	n, err := b.client.Exists(ctx, b.jtiKey(jti)).Result()
	if err != nil {
		return false, fmt.Errorf("check token %q: %w", jti, err)
	}
	return n > 0, nil
}

// InvalidateSubjectTokens stores the current instant as the subject's
// invalidation time. Tokens issued at or before it are rejected.
func (b *RedisTokenBlacklist) InvalidateSubjectTokens(ctx context.Context, subject string, ttl time.Duration) error {
	cutoff := time.Now().Unix()
	if err := b.client.Set(ctx, b.subjectKey(subject), cutoff, ttl).Err(); err != nil {
		return fmt.Errorf("invalidate tokens for %q: %w", subject, err)
	}
	return nil
}

// IsSubjectInvalidated checks if a token was issued before the subject's
// invalidation instant
func (b *RedisTokenBlacklist) IsSubjectInvalidated(ctx context.Context, subject string, tokenIssuedAt time.Time) (bool, error) {
	raw, err := b.client.Get(ctx, b.subjectKey(subject)).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check invalidation for %q: %w", subject, err)
	}

	cutoff, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return false, fmt.Errorf("parse invalidation cutoff for %q: %w", subject, err)
	}

	return tokenIssuedAt.Unix() <= cutoff, nil
}

// Close closes the Redis client
func (b *RedisTokenBlacklist) Close() error {
	return b.client.Close()
}

var _ TokenBlacklist = (*RedisTokenBlacklist)(nil)

// InMemoryTokenBlacklist is a process-local blacklist for single-instance
// deployments and tests.
type InMemoryTokenBlacklist struct {
	mu                 sync.RWMutex
	jtiBlacklist       map[string]time.Time // JTI -> expiration time
	subjectInvalidated map[string]time.Time // subject -> invalidation time
}

// NewInMemoryTokenBlacklist creates a new in-memory token blacklist
func NewInMemoryTokenBlacklist() *InMemoryTokenBlacklist {
	return &InMemoryTokenBlacklist{
		jtiBlacklist:       make(map[string]time.Time),
		subjectInvalidated: make(map[string]time.Time),
	}
}

// AddToBlacklist revokes a single token by its JTI
func (b *InMemoryTokenBlacklist) AddToBlacklist(_ context.Context, jti string, ttl time.Duration) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.jtiBlacklist[jti] = time.Now().Add(ttl)
	return nil
}

// IsBlacklisted checks if a token's JTI is revoked and the entry has not
// lapsed
func (b *InMemoryTokenBlacklist) IsBlacklisted(_ context.Context, jti string) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	expiration, exists := b.jtiBlacklist[jti]
	if !exists {
		return false, nil
	}

	if time.Now().After(expiration) {
		delete(b.jtiBlacklist, jti)
		return false, nil
	}

	return true, nil
}

// InvalidateSubjectTokens revokes every token minted for a subject
func (b *InMemoryTokenBlacklist) InvalidateSubjectTokens(_ context.Context, subject string, _ time.Duration) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subjectInvalidated[subject] = time.Now()
	return nil
}

// IsSubjectInvalidated checks if a token was issued before the subject's
// invalidation instant. Sub-second precision keeps freshly minted tokens
// distinguishable in tests.
func (b *InMemoryTokenBlacklist) IsSubjectInvalidated(_ context.Context, subject string, tokenIssuedAt time.Time) (bool, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	invalidationTime, exists := b.subjectInvalidated[subject]
	if !exists {
		return false, nil
	}

	return tokenIssuedAt.UnixNano() <= invalidationTime.UnixNano(), nil
}

var _ TokenBlacklist = (*InMemoryTokenBlacklist)(nil)
