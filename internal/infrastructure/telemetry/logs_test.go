package telemetry_test

import (
	"context"
	"testing"

	"github.com/curator/backend/internal/infrastructure/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewLoggerProviderDisabled(t *testing.T) {
	lp, err := telemetry.NewLoggerProvider(context.Background(), telemetry.LogsConfig{
		Enabled:     false,
		ServiceName: "curator-test",
	}, zaptest.NewLogger(t))

	require.NoError(t, err)
	assert.False(t, lp.IsEnabled())
	assert.NoError(t, lp.Shutdown(context.Background()))
}

func TestNewLoggerProviderEnabled(t *testing.T) {
	lp, err := telemetry.NewLoggerProvider(context.Background(), telemetry.LogsConfig{
		Enabled:           true,
		CollectorEndpoint: "localhost:4317",
		ServiceName:       "curator-test",
		Insecure:          true,
	}, zaptest.NewLogger(t))

	require.NoError(t, err)
	assert.True(t, lp.IsEnabled())
	assert.NoError(t, lp.Shutdown(context.Background()))
}

func TestNewZapOTELCoreDisabledProviderIsNop(t *testing.T) {
	lp, err := telemetry.NewLoggerProvider(context.Background(), telemetry.LogsConfig{
		Enabled: false,
	}, zaptest.NewLogger(t))
	require.NoError(t, err)

	core := telemetry.NewZapOTELCore(telemetry.ZapBridgeConfig{
		ServiceName:    "curator-test",
		LoggerProvider: lp,
		Level:          zapcore.InfoLevel,
	})
	require.NotNil(t, core)
	assert.False(t, core.Enabled(zapcore.ErrorLevel))
}

func TestNewZapOTELCoreNilProviderIsNop(t *testing.T) {
	core := telemetry.NewZapOTELCore(telemetry.ZapBridgeConfig{
		ServiceName: "curator-test",
		Level:       zapcore.InfoLevel,
	})
	require.NotNil(t, core)
	assert.False(t, core.Enabled(zapcore.ErrorLevel))
}

func TestNewZapOTELCoreLevelFilter(t *testing.T) {
	lp, err := telemetry.NewLoggerProvider(context.Background(), telemetry.LogsConfig{
		Enabled:           true,
		CollectorEndpoint: "localhost:4317",
		ServiceName:       "curator-test",
		Insecure:          true,
	}, zaptest.NewLogger(t))
	require.NoError(t, err)
	defer func() { _ = lp.Shutdown(context.Background()) }()

	core := telemetry.NewZapOTELCore(telemetry.ZapBridgeConfig{
		ServiceName:    "curator-test",
		LoggerProvider: lp,
		Level:          zapcore.WarnLevel,
	})

	assert.False(t, core.Enabled(zapcore.InfoLevel))
	assert.True(t, core.Enabled(zapcore.WarnLevel))
	assert.True(t, core.Enabled(zapcore.ErrorLevel))

	// With must preserve the filter.
	child := core.With([]zapcore.Field{zap.String("component", "test")})
	assert.False(t, child.Enabled(zapcore.InfoLevel))
}

func TestNewBridgedLoggerWritesBothCores(t *testing.T) {
	baseCore, baseLogs := observer.New(zapcore.InfoLevel)
	otelCore, otelLogs := observer.New(zapcore.InfoLevel)

	log := telemetry.NewBridgedLogger(baseCore, otelCore)
	log.Info("bridged entry")

	assert.Equal(t, 1, baseLogs.Len())
	assert.Equal(t, 1, otelLogs.Len())
}
