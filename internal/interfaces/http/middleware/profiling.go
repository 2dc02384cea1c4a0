package middleware

import (
	"context"
	"strings"

	"github.com/curator/backend/internal/infrastructure/telemetry"
	"github.com/gin-gonic/gin"
)

// ProfilingConfig configures the pyroscope label middleware.
type ProfilingConfig struct {
	Enabled bool
	// SkipPaths and SkipPathPrefixes exclude noise like health probes and
	// the swagger UI from profile label sets.
	SkipPaths        []string
	SkipPathPrefixes []string
}

// ProfilingWithConfig tags the request goroutine with controller, route,
// method and webhook topic labels so profiles can be sliced per endpoint.
// All label values are bounded: routes come from gin's matched pattern and
// topics pass the same validation as the tracing middleware.
func ProfilingWithConfig(cfg ProfilingConfig) gin.HandlerFunc {
	if !cfg.Enabled {
		return func(c *gin.Context) { c.Next() }
	}

	return func(c *gin.Context) {
		if skipProfiling(cfg, c.Request.URL.Path) {
			c.Next()
			return
		}

		telemetry.WithProfilingLabels(c.Request.Context(), requestProfileLabels(c), func(ctx context.Context) {
			c.Request = c.Request.WithContext(ctx)
			c.Next()
		})
	}
}

func skipProfiling(cfg ProfilingConfig, path string) bool {
	for _, p := range cfg.SkipPaths {
		if path == p {
			return true
		}
	}
	for _, prefix := range cfg.SkipPathPrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

func requestProfileLabels(c *gin.Context) map[string]string {
	labels := make(map[string]string, 4)

	labels[telemetry.ProfilingLabelMethod] = c.Request.Method
	if route := c.FullPath(); route != "" {
		labels[telemetry.ProfilingLabelRoute] = route
		if controller := controllerFromRoute(route); controller != "" {
			labels[telemetry.ProfilingLabelController] = controller
		}
	}
	if topic := webhookTopicForTrace(c); topic != "" {
		labels[telemetry.ProfilingLabelTopic] = topic
	}

	return labels
}

// controllerFromRoute picks the resource segment out of a route pattern,
// so "/api/v1/sync/jobs/:id" profiles under controller=sync and
// "/webhooks/products/update" under controller=webhooks.
func controllerFromRoute(route string) string {
	for _, part := range strings.Split(route, "/") {
		switch {
		case part == "", part == "api", isVersionSegment(part):
			continue
		case strings.HasPrefix(part, ":"), strings.HasPrefix(part, "*"):
			continue
		}
		return part
	}
	return ""
}

func isVersionSegment(segment string) bool {
	if len(segment) < 2 || (segment[0] != 'v' && segment[0] != 'V') {
		return false
	}
	for _, r := range segment[1:] {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
