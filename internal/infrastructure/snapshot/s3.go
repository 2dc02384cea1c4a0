package snapshot

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/curator/backend/internal/domain/merchandising"
	"github.com/curator/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// Ensure S3Source implements SnapshotSource
var _ merchandising.SnapshotSource = (*S3Source)(nil)

// S3Source loads the collections snapshot from an object in S3-compatible
// storage (AWS S3, RustFS, MinIO, etc.)
type S3Source struct {
	client *s3.Client
	bucket string
	key    string
	logger *zap.Logger
}

// S3SourceOption is a functional option for configuring S3Source
type S3SourceOption func(*S3Source)

// WithLogger sets a custom logger for S3Source
func WithLogger(logger *zap.Logger) S3SourceOption {
	return func(s *S3Source) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewS3Source creates an S3Source from configuration. It supports any
// S3-compatible storage backend via a custom endpoint with path-style
// addressing; an empty endpoint means AWS itself.
func NewS3Source(cfg *config.SnapshotConfig, opts ...S3SourceOption) (*S3Source, error) {
	if cfg == nil {
		return nil, errors.New("snapshot configuration is required")
	}
	if cfg.S3Bucket == "" {
		return nil, errors.New("snapshot bucket is required")
	}
	if cfg.S3Key == "" {
		return nil, errors.New("snapshot object key is required")
	}
	if cfg.S3AccessKeyID == "" {
		return nil, errors.New("snapshot access key is required")
	}
	if cfg.S3SecretKey == "" {
		return nil, errors.New("snapshot secret key is required")
	}

	region := cfg.S3Region
	if region == "" {
		region = "us-east-1"
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithRegion(region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.S3AccessKeyID,
			cfg.S3SecretKey,
			"", // session token (not used for static credentials)
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS config: %w", err)
	}

	// Resolve custom endpoint for self-hosted stores
	endpoint := cfg.S3Endpoint
	if endpoint != "" {
		if !strings.HasPrefix(endpoint, "http://") && !strings.HasPrefix(endpoint, "https://") {
			if cfg.S3UseSSL {
				endpoint = "https://" + endpoint
			} else {
				endpoint = "http://" + endpoint
			}
		}
		if _, err := url.Parse(endpoint); err != nil {
			return nil, fmt.Errorf("invalid snapshot endpoint: %w", err)
		}
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.S3UsePathStyle
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
	})

	source := &S3Source{
		client: client,
		bucket: cfg.S3Bucket,
		key:    cfg.S3Key,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(source)
	}
	return source, nil
}

// Load fetches and parses the snapshot object. Fetch failures wrap
// merchandising.ErrSnapshotUnavailable, parse failures
// merchandising.ErrSnapshotMalformed.
func (s *S3Source) Load(ctx context.Context) ([]merchandising.Collection, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: get s3://%s/%s: %v", merchandising.ErrSnapshotUnavailable, s.bucket, s.key, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read s3://%s/%s: %v", merchandising.ErrSnapshotUnavailable, s.bucket, s.key, err)
	}

	collections, err := decodeCollections(data)
	if err != nil {
		return nil, fmt.Errorf("s3://%s/%s: %w", s.bucket, s.key, err)
	}

	s.logger.Info("Loaded collections snapshot",
		zap.String("source", SourceS3),
		zap.String("bucket", s.bucket),
		zap.String("key", s.key),
		zap.Int("collections", len(collections)))
	return collections, nil
}
