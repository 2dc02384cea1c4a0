package merchandising

import (
	"context"
	"time"
)

// StorefrontGateway is the outbound port to the remote catalog service.
// Implementations return ErrRateLimited when the storefront signals the
// caller to slow down, ErrProductNotFound for missing products, and wrap
// other failures in ErrRequestFailed or ErrInvalidResponse.
type StorefrontGateway interface {
	// ListProductsUpdatedSince returns every product created or updated at
	// or after the given floor
	ListProductsUpdatedSince(ctx context.Context, since time.Time) ([]Product, error)

	// GetProduct fetches one product by ID
	GetProduct(ctx context.Context, id int64) (*Product, error)

	// AddProductToCollection writes one collection membership. The write is
	// a single attempt; retrying is the caller's concern. Duplicate writes
	// for the same pair are tolerated by the storefront as idempotent
	// membership.
	AddProductToCollection(ctx context.Context, productID int64, collectionID CollectionID) error
}

// SnapshotSource loads the collections snapshot the taxonomy is derived
// from. Implementations wrap read failures in ErrSnapshotUnavailable and
// parse failures in ErrSnapshotMalformed.
type SnapshotSource interface {
	Load(ctx context.Context) ([]Collection, error)
}
