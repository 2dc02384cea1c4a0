package runner

import (
	"maps"
	"slices"
	"sync"
	"sync/atomic"
	"time"
)

// Collector aggregates per-request results into run statistics: counts,
// latency percentiles, status code distribution and throughput.
//
// Thread Safety: safe for concurrent use by the worker goroutines.
type Collector struct {
	total     atomic.Int64
	successes atomic.Int64
	failures  atomic.Int64

	latencyMu sync.Mutex
	latencies []int64 // nanoseconds

	statusMu    sync.Mutex
	statusCodes map[int]int64

	startTime time.Time
	endTime   time.Time
}

// Result is the outcome of one webhook delivery attempt.
type Result struct {
	StatusCode int
	Latency    time.Duration
	Err        error
}

// Snapshot is a point-in-time view of the collected statistics.
type Snapshot struct {
	Duration time.Duration

	Total     int64
	Successes int64
	Failures  int64

	MinLatency time.Duration
	AvgLatency time.Duration
	P50Latency time.Duration
	P95Latency time.Duration
	P99Latency time.Duration
	MaxLatency time.Duration

	QPS         float64
	SuccessRate float64 // 0-100

	StatusCodes map[int]int64
}

// NewCollector creates an empty collector.
func NewCollector() *Collector {
	return &Collector{statusCodes: make(map[int]int64)}
}

// Start marks the beginning of the run.
func (c *Collector) Start() { c.startTime = time.Now() }

// Stop marks the end of the run.
func (c *Collector) Stop() { c.endTime = time.Now() }

// Record adds one result. A delivery counts as a success when the service
// acknowledged it with a 2xx.
func (c *Collector) Record(r Result) {
	c.total.Add(1)
	if r.Err == nil && r.StatusCode >= 200 && r.StatusCode < 300 {
		c.successes.Add(1)
	} else {
		c.failures.Add(1)
	}

	c.latencyMu.Lock()
	c.latencies = append(c.latencies, int64(r.Latency))
	c.latencyMu.Unlock()

	if r.StatusCode != 0 {
		c.statusMu.Lock()
		c.statusCodes[r.StatusCode]++
		c.statusMu.Unlock()
	}
}

// Snapshot computes the current statistics.
func (c *Collector) Snapshot() Snapshot {
	end := c.endTime
	if end.IsZero() {
		end = time.Now()
	}
	duration := end.Sub(c.startTime)

	s := Snapshot{
		Duration:  duration,
		Total:     c.total.Load(),
		Successes: c.successes.Load(),
		Failures:  c.failures.Load(),
	}

	if s.Total > 0 {
		s.SuccessRate = float64(s.Successes) / float64(s.Total) * 100
	}
	if duration > 0 {
		s.QPS = float64(s.Total) / duration.Seconds()
	}

	c.statusMu.Lock()
	s.StatusCodes = maps.Clone(c.statusCodes)
	c.statusMu.Unlock()

	c.latencyMu.Lock()
	sorted := slices.Clone(c.latencies)
	c.latencyMu.Unlock()

	if len(sorted) == 0 {
		return s
	}
	slices.Sort(sorted)

	var sum int64
	for _, l := range sorted {
		sum += l
	}
	s.MinLatency = time.Duration(sorted[0])
	s.MaxLatency = time.Duration(sorted[len(sorted)-1])
	s.AvgLatency = time.Duration(sum / int64(len(sorted)))
	s.P50Latency = percentile(sorted, 50)
	s.P95Latency = percentile(sorted, 95)
	s.P99Latency = percentile(sorted, 99)
	return s
}

// percentile picks from a sorted nanosecond slice using nearest-rank.
func percentile(sorted []int64, p int) time.Duration {
	if len(sorted) == 0 {
		return 0
	}
	rank := (p*len(sorted) + 99) / 100
	if rank < 1 {
		rank = 1
	}
	if rank > len(sorted) {
		rank = len(sorted)
	}
	return time.Duration(sorted[rank-1])
}
