package snapshot

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/curator/backend/internal/domain/merchandising"
	"go.uber.org/zap"
)

// Ensure FileSource implements SnapshotSource
var _ merchandising.SnapshotSource = (*FileSource)(nil)

// FileSource loads the collections snapshot from a local JSON file.
type FileSource struct {
	path   string
	logger *zap.Logger
}

// NewFileSource creates a FileSource for the given path
func NewFileSource(path string, logger *zap.Logger) (*FileSource, error) {
	if path == "" {
		return nil, errors.New("snapshot file path is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FileSource{path: path, logger: logger}, nil
}

// Load reads and parses the snapshot file. Read failures wrap
// merchandising.ErrSnapshotUnavailable, parse failures
// merchandising.ErrSnapshotMalformed.
func (s *FileSource) Load(ctx context.Context) ([]merchandising.Collection, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", merchandising.ErrSnapshotUnavailable, s.path, err)
	}

	collections, err := decodeCollections(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", s.path, err)
	}

	s.logger.Info("Loaded collections snapshot",
		zap.String("source", SourceFile),
		zap.String("path", s.path),
		zap.Int("collections", len(collections)))
	return collections, nil
}
