package telemetry

import (
	"context"
	"runtime/pprof"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeLabels(t *testing.T) {
	pairs := sanitizeLabels(map[string]string{
		"operation":      "process_product",
		"topic":          "products/update",
		"product_id":     "123456", // high cardinality, dropped
		"":               "empty-key",
		"empty":          "",
		"Mixed-Case Key": "kept",
	})

	// Deterministic order: sorted by original key.
	assert.Equal(t, []string{
		"mixed_case_key", "kept",
		"operation", "process_product",
		"topic", "products/update",
	}, pairs)
}

func TestSanitizeLabelsTruncatesLongValues(t *testing.T) {
	long := strings.Repeat("x", maxLabelValueLength+50)
	pairs := sanitizeLabels(map[string]string{"operation": long})

	require.Len(t, pairs, 2)
	assert.Len(t, pairs[1], maxLabelValueLength)
}

func TestSanitizeLabelKey(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"operation", "operation"},
		{"Job Kind", "job_kind"},
		{"http-route", "http_route"},
		{"weird!chars#", "weirdchars"},
		{"___", "___"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, sanitizeLabelKey(tt.in), "key %q", tt.in)
	}
}

func TestWithProfilingLabelsAttachesPprofLabels(t *testing.T) {
	var seen string
	WithProfilingLabels(context.Background(), map[string]string{
		ProfilingLabelOperation: OperationProcessProduct,
	}, func(ctx context.Context) {
		seen, _ = pprof.Label(ctx, ProfilingLabelOperation)
	})

	assert.Equal(t, OperationProcessProduct, seen)
}

func TestWithProfilingLabelsEmptyMapRunsUnlabeled(t *testing.T) {
	ran := false
	WithProfilingLabels(context.Background(), nil, func(ctx context.Context) {
		ran = true
		_, ok := pprof.Label(ctx, ProfilingLabelOperation)
		assert.False(t, ok)
	})
	assert.True(t, ran)
}

func TestWithProfilingLabelsAllFilteredRunsUnlabeled(t *testing.T) {
	ran := false
	WithProfilingLabels(context.Background(), map[string]string{
		"product_id": "123",
		"event_id":   "abc",
	}, func(ctx context.Context) {
		ran = true
		_, ok := pprof.Label(ctx, "product_id")
		assert.False(t, ok)
	})
	assert.True(t, ran)
}

func TestCurationOperationLabels(t *testing.T) {
	labels := CurationOperationLabels(OperationProcessWindow, "")
	assert.Equal(t, map[string]string{ProfilingLabelOperation: OperationProcessWindow}, labels)

	labels = CurationOperationLabels(OperationProcessProduct, "products/create")
	assert.Equal(t, map[string]string{
		ProfilingLabelOperation: OperationProcessProduct,
		ProfilingLabelTopic:     "products/create",
	}, labels)
}
