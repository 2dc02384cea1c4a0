// Package snapshot provides the collections snapshot sources the taxonomy
// is built from. A snapshot is a read-only JSON document of collection
// records refreshed out-of-band; loading it is a startup precondition and
// load failures are never retried.
package snapshot

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/curator/backend/internal/domain/merchandising"
	"github.com/curator/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// Source names accepted by NewSource
const (
	SourceFile = "file"
	SourceS3   = "s3"
)

// NewSource creates the snapshot source named by the configuration.
// An empty source name selects the file source.
func NewSource(cfg *config.SnapshotConfig, logger *zap.Logger) (merchandising.SnapshotSource, error) {
	if cfg == nil {
		return nil, errors.New("snapshot configuration is required")
	}

	switch cfg.Source {
	case SourceFile, "":
		return NewFileSource(cfg.Path, logger)
	case SourceS3:
		return NewS3Source(cfg, WithLogger(logger))
	default:
		return nil, fmt.Errorf("unknown snapshot source %q", cfg.Source)
	}
}

// decodeCollections parses a snapshot document. Both a bare JSON array and
// the {"collections": [...]} form a storefront API dump produces are
// accepted. Parse failures wrap merchandising.ErrSnapshotMalformed.
func decodeCollections(data []byte) ([]merchandising.Collection, error) {
	var collections []merchandising.Collection
	if err := json.Unmarshal(data, &collections); err == nil {
		return collections, nil
	}

	var doc struct {
		Collections []merchandising.Collection `json:"collections"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", merchandising.ErrSnapshotMalformed, err)
	}
	if doc.Collections == nil {
		return nil, fmt.Errorf("%w: document has no collections field", merchandising.ErrSnapshotMalformed)
	}
	return doc.Collections, nil
}
