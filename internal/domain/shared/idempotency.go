package shared

import (
	"context"
	"time"
)

// IdempotencyStore remembers processed event IDs so redelivered webhook
// events are dropped instead of classified twice. Entries expire after a
// TTL; a redelivery later than that reprocesses, which is safe because
// collection writes are idempotent.
type IdempotencyStore interface {
	// MarkProcessed records eventID, returning true when it was new and
	// false when the ID was already marked within the TTL.
	MarkProcessed(ctx context.Context, eventID string, ttl time.Duration) (bool, error)

	// IsProcessed reports whether eventID is currently marked.
	IsProcessed(ctx context.Context, eventID string) (bool, error)

	Close() error
}

// IdempotencyConfig controls duplicate suppression.
type IdempotencyConfig struct {
	// TTL bounds how long processed event IDs are remembered.
	TTL time.Duration

	// Enabled turns suppression off entirely when false.
	Enabled bool
}

// DefaultIdempotencyConfig remembers deliveries for a day, which outlasts
// the storefront platform's redelivery backoff schedule.
func DefaultIdempotencyConfig() IdempotencyConfig {
	return IdempotencyConfig{
		TTL:     24 * time.Hour,
		Enabled: true,
	}
}
