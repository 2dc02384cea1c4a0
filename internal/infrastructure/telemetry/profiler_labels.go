package telemetry

import (
	"context"
	"sort"
	"strings"

	"github.com/grafana/pyroscope-go"
)

// Label keys used to slice profiles in the Pyroscope UI.
const (
	ProfilingLabelController = "controller"
	ProfilingLabelRoute      = "route"
	ProfilingLabelMethod     = "method"
	ProfilingLabelTopic      = "topic"
	ProfilingLabelJobKind    = "job_kind"
	ProfilingLabelOperation  = "operation"
)

// Operation label values for the curation pipeline.
const (
	OperationProcessProduct = "process_product"
	OperationProcessWindow  = "process_window"
	OperationLoadTaxonomy   = "load_taxonomy"
)

// maxLabelValueLength bounds label values so a runaway title or route
// cannot blow up Pyroscope's label index.
const maxLabelValueLength = 128

// highCardinalityLabels are unbounded identifiers that must never become
// profile labels. Topic and job_kind stay allowed: both are small fixed
// sets.
var highCardinalityLabels = map[string]bool{
	"product_id": true,
	"event_id":   true,
	"job_id":     true,
	"request_id": true,
	"trace_id":   true,
	"span_id":    true,
}

// WithProfilingLabels runs fn with the given pprof labels attached, after
// dropping high-cardinality keys and truncating oversized values. The map
// is copied, so the caller may reuse it.
func WithProfilingLabels(ctx context.Context, labels map[string]string, fn func(context.Context)) {
	pairs := sanitizeLabels(labels)
	if len(pairs) == 0 {
		fn(ctx)
		return
	}
	pyroscope.TagWrapper(ctx, pyroscope.Labels(pairs...), fn)
}

// CurationOperationLabels builds the label set for a pipeline operation.
// Topic is only added when non-empty.
func CurationOperationLabels(operation, topic string) map[string]string {
	labels := map[string]string{ProfilingLabelOperation: operation}
	if topic != "" {
		labels[ProfilingLabelTopic] = topic
	}
	return labels
}

// sanitizeLabels flattens the map into deterministic key/value pairs,
// skipping empty and high-cardinality entries.
func sanitizeLabels(labels map[string]string) []string {
	if len(labels) == 0 {
		return nil
	}

	keys := make([]string, 0, len(labels))
	for k := range labels {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(labels)*2)
	for _, key := range keys {
		value := labels[key]
		if key == "" || value == "" || highCardinalityLabels[key] {
			continue
		}
		if len(value) > maxLabelValueLength {
			value = value[:maxLabelValueLength]
		}
		if k := sanitizeLabelKey(key); k != "" {
			pairs = append(pairs, k, value)
		}
	}
	return pairs
}

// sanitizeLabelKey normalizes keys to snake_case [a-z0-9_].
func sanitizeLabelKey(key string) string {
	key = strings.ToLower(key)
	key = strings.ReplaceAll(key, " ", "_")
	key = strings.ReplaceAll(key, "-", "_")

	out := make([]byte, 0, len(key))
	for i := 0; i < len(key); i++ {
		c := key[i]
		if (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9') || c == '_' {
			out = append(out, c)
		}
	}
	return string(out)
}
