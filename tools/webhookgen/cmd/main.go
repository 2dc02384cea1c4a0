// Package main provides the CLI entry point for the webhook load generator.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"time"

	"github.com/curator/backend/tools/webhookgen/internal/runner"
)

// Version information (populated at build time)
var (
	version   = "dev"
	gitCommit = "unknown"
)

// CLI flags
var (
	targetURL        string
	secret           string
	qps              float64
	concurrency      int
	count            int64
	duration         time.Duration
	deletePercent    int
	duplicatePercent int
	unmatchedPercent int
	seed             uint64
	timeout          time.Duration
	showVersion      bool
)

func init() {
	flag.StringVar(&targetURL, "url", "http://localhost:8080", "Base URL of the curator service")
	flag.StringVar(&secret, "secret", "", "Webhook HMAC secret (or WEBHOOKGEN_SECRET)")

	flag.Float64Var(&qps, "qps", 10, "Deliveries per second across all workers")
	flag.IntVar(&concurrency, "concurrency", 4, "Number of delivery workers")
	flag.Int64Var(&count, "count", 0, "Stop after this many deliveries (0 = run for -duration)")
	flag.DurationVar(&duration, "duration", time.Minute, "Run duration when -count is 0 (e.g. 5m)")
	flag.DurationVar(&timeout, "timeout", 10*time.Second, "Per-request timeout")

	flag.IntVar(&deletePercent, "deletes", 0, "Percent of deliveries sent to the delete route (0-100)")
	flag.IntVar(&duplicatePercent, "duplicates", 0, "Percent of deliveries replaying the previous event ID (0-100)")
	flag.IntVar(&unmatchedPercent, "unmatched", 10, "Percent of titles matching no collection (0-100)")
	flag.Uint64Var(&seed, "seed", 0, "Payload generator seed (0 = random)")

	flag.BoolVar(&showVersion, "version", false, "Show version information")
	flag.Usage = printUsage
}

func printUsage() {
	fmt.Fprintf(os.Stderr, `Webhook Generator - Curator Load Testing Tool

USAGE:
    webhookgen -url <base-url> -secret <secret> [options]

DESCRIPTION:
    Posts signed storefront product webhooks to a running curator instance.
    Payloads carry generated gemstone titles aligned with the curation
    taxonomy, so deliveries flow through classification and collection
    assignment like real storefront traffic.

TARGET:
    -url <url>            Base URL of the curator service (default: http://localhost:8080)
    -secret <s>           Webhook HMAC secret; falls back to WEBHOOKGEN_SECRET

LOAD SHAPE:
    -qps <n>              Deliveries per second (default: 10)
    -concurrency <n>      Delivery workers (default: 4)
    -count <n>            Stop after n deliveries (default: 0, run for -duration)
    -duration <dur>       Run duration when -count is 0 (default: 1m)
    -timeout <dur>        Per-request timeout (default: 10s)

TRAFFIC MIX:
    -deletes <pct>        Percent of delete deliveries (default: 0)
    -duplicates <pct>     Percent of replayed deliveries (default: 0)
    -unmatched <pct>      Percent of titles with no taxonomy words (default: 10)
    -seed <n>             Fixed generator seed for reproducible payloads

EXAMPLES:
    # One minute of mixed traffic at 25 QPS
    webhookgen -url http://localhost:8080 -secret $WEBHOOK_SECRET -qps 25

    # Exactly 1000 deliveries with 5%% duplicates and 10%% deletes
    webhookgen -secret $WEBHOOK_SECRET -count 1000 -duplicates 5 -deletes 10

`)
}

func main() {
	flag.Parse()

	if showVersion {
		fmt.Printf("webhookgen %s (%s)\n", version, gitCommit)
		return
	}

	if secret == "" {
		secret = os.Getenv("WEBHOOKGEN_SECRET")
	}

	r, err := runner.New(runner.Config{
		TargetURL:        targetURL,
		Secret:           secret,
		QPS:              qps,
		Concurrency:      concurrency,
		Count:            count,
		DeletePercent:    deletePercent,
		DuplicatePercent: duplicatePercent,
		UnmatchedPercent: unmatchedPercent,
		Seed:             seed,
		Timeout:          timeout,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "webhookgen: %v\n", err)
		flag.Usage()
		os.Exit(2)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	if count == 0 {
		ctx, cancel = context.WithTimeout(ctx, duration)
		defer cancel()
	}

	fmt.Printf("Delivering to %s at %.1f QPS with %d workers...\n", targetURL, qps, concurrency)
	snapshot := r.Run(ctx)
	printReport(snapshot)

	if snapshot.Failures > 0 {
		os.Exit(1)
	}
}

func printReport(s runner.Snapshot) {
	fmt.Println()
	fmt.Println("=== Delivery Report ===")
	fmt.Printf("Duration:      %v\n", s.Duration.Round(time.Millisecond))
	fmt.Printf("Deliveries:    %d (%.1f/s)\n", s.Total, s.QPS)
	fmt.Printf("Acknowledged:  %d (%.1f%%)\n", s.Successes, s.SuccessRate)
	fmt.Printf("Failed:        %d\n", s.Failures)

	if s.Total > 0 {
		fmt.Println()
		fmt.Println("Latency:")
		fmt.Printf("  min  %v\n", s.MinLatency.Round(time.Microsecond))
		fmt.Printf("  avg  %v\n", s.AvgLatency.Round(time.Microsecond))
		fmt.Printf("  p50  %v\n", s.P50Latency.Round(time.Microsecond))
		fmt.Printf("  p95  %v\n", s.P95Latency.Round(time.Microsecond))
		fmt.Printf("  p99  %v\n", s.P99Latency.Round(time.Microsecond))
		fmt.Printf("  max  %v\n", s.MaxLatency.Round(time.Microsecond))
	}

	if len(s.StatusCodes) > 0 {
		fmt.Println()
		fmt.Println("Status codes:")
		codes := make([]int, 0, len(s.StatusCodes))
		for code := range s.StatusCodes {
			codes = append(codes, code)
		}
		sort.Ints(codes)
		for _, code := range codes {
			fmt.Printf("  %d  %d\n", code, s.StatusCodes[code])
		}
	}
}
