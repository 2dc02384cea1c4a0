package telemetry_test

import (
	"context"
	"testing"

	"github.com/curator/backend/internal/infrastructure/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestNewTracerProviderDisabled(t *testing.T) {
	tp, err := telemetry.NewTracerProvider(context.Background(), telemetry.Config{
		Enabled:           false,
		CollectorEndpoint: "localhost:14317",
		SamplingRatio:     1.0,
		ServiceName:       "curator-test",
	}, zaptest.NewLogger(t))

	require.NoError(t, err)
	require.NotNil(t, tp)
	assert.False(t, tp.IsEnabled())

	// All lifecycle methods are no-ops on a disabled provider.
	assert.NoError(t, tp.EnableSpanProfiles())
	assert.NoError(t, tp.Shutdown(context.Background()))
}

func TestNewTracerProviderEnabled(t *testing.T) {
	// The OTLP gRPC exporter dials lazily, so construction succeeds without
	// a collector listening.
	tp, err := telemetry.NewTracerProvider(context.Background(), telemetry.Config{
		Enabled:           true,
		CollectorEndpoint: "localhost:4317",
		SamplingRatio:     0.5,
		ServiceName:       "curator-test",
		Insecure:          true,
	}, zaptest.NewLogger(t))

	require.NoError(t, err)
	assert.True(t, tp.IsEnabled())
	assert.NoError(t, tp.Shutdown(context.Background()))
}

func TestEnableSpanProfilesIdempotent(t *testing.T) {
	tp, err := telemetry.NewTracerProvider(context.Background(), telemetry.Config{
		Enabled:           true,
		CollectorEndpoint: "localhost:4317",
		SamplingRatio:     1.0,
		ServiceName:       "curator-test",
		Insecure:          true,
	}, zaptest.NewLogger(t))
	require.NoError(t, err)
	defer func() { _ = tp.Shutdown(context.Background()) }()

	require.NoError(t, tp.EnableSpanProfiles())
	require.NoError(t, tp.EnableSpanProfiles())
}

func TestTracerProviderShutdownTwice(t *testing.T) {
	tp, err := telemetry.NewTracerProvider(context.Background(), telemetry.Config{
		Enabled:           true,
		CollectorEndpoint: "localhost:4317",
		SamplingRatio:     0.0,
		ServiceName:       "curator-test",
		Insecure:          true,
	}, zaptest.NewLogger(t))
	require.NoError(t, err)

	assert.NoError(t, tp.Shutdown(context.Background()))
	// Second shutdown reports the SDK's already-shutdown error; we only
	// require it not to panic.
	_ = tp.Shutdown(context.Background())
}
