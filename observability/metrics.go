// Package observability provides the worker's metrics registry and NATS
// trace-context propagation. The registry is a small Prometheus-compatible
// implementation built on the standard library only — the pipeline never
// calls out to a vendor metrics backend, so there is nothing here for a
// client library to wrap.
package observability

import (
	"fmt"
	"net/http"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
)

// DefaultStageBuckets are histogram buckets (seconds) sized for the
// pipeline's stage timeouts, which range from 30s (Structure, Chunk) to
// 180s (Enrich).
var DefaultStageBuckets = []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120, 180, 300}

// Counter is a monotonically increasing count.
type Counter struct{ val atomic.Int64 }

func (c *Counter) Inc()          { c.val.Add(1) }
func (c *Counter) Add(n int64)   { c.val.Add(n) }
func (c *Counter) Value() int64  { return c.val.Load() }

// Gauge can move up and down, used here for queue depth and in-flight job
// counts.
type Gauge struct{ val atomic.Int64 }

func (g *Gauge) Set(n int64)  { g.val.Store(n) }
func (g *Gauge) Inc()         { g.val.Add(1) }
func (g *Gauge) Dec()         { g.val.Add(-1) }
func (g *Gauge) Value() int64 { return g.val.Load() }

// Histogram tracks the distribution of observed values over fixed buckets.
type Histogram struct {
	mu      sync.Mutex
	buckets []float64
	counts  []uint64
	sum     float64
	count   uint64
}

func newHistogram(buckets []float64) *Histogram {
	b := make([]float64, len(buckets))
	copy(b, buckets)
	sort.Float64s(b)
	return &Histogram{buckets: b, counts: make([]uint64, len(b))}
}

// Observe records v against the histogram's buckets.
func (h *Histogram) Observe(v float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.sum += v
	h.count++
	for i, b := range h.buckets {
		if v <= b {
			h.counts[i]++
			break
		}
	}
}

func (h *Histogram) snapshot() ([]float64, []uint64, float64, uint64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	c := make([]uint64, len(h.counts))
	copy(c, h.counts)
	return h.buckets, c, h.sum, h.count
}

// Registry holds named counters, gauges, and histograms and renders them
// in the Prometheus text exposition format.
type Registry struct {
	mu         sync.RWMutex
	counters   map[string]*Counter
	gauges     map[string]*Gauge
	histograms map[string]*Histogram
	help       map[string]string
	kind       map[string]string
	order      []string
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		counters:   make(map[string]*Counter),
		gauges:     make(map[string]*Gauge),
		histograms: make(map[string]*Histogram),
		help:       make(map[string]string),
		kind:       make(map[string]string),
	}
}

func (r *Registry) track(name, kind, help string) {
	if _, ok := r.kind[name]; !ok {
		r.order = append(r.order, name)
	}
	r.kind[name] = kind
	if help != "" {
		r.help[name] = help
	}
}

// Counter returns (or lazily creates) a named counter.
func (r *Registry) Counter(name, help string) *Counter {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.counters[name]; ok {
		return c
	}
	c := &Counter{}
	r.counters[name] = c
	r.track(name, "counter", help)
	return c
}

// Gauge returns (or lazily creates) a named gauge.
func (r *Registry) Gauge(name, help string) *Gauge {
	r.mu.Lock()
	defer r.mu.Unlock()
	if g, ok := r.gauges[name]; ok {
		return g
	}
	g := &Gauge{}
	r.gauges[name] = g
	r.track(name, "gauge", help)
	return g
}

// Histogram returns (or lazily creates) a named histogram. A nil buckets
// slice falls back to DefaultStageBuckets.
func (r *Registry) Histogram(name, help string, buckets []float64) *Histogram {
	if buckets == nil {
		buckets = DefaultStageBuckets
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if h, ok := r.histograms[name]; ok {
		return h
	}
	h := newHistogram(buckets)
	r.histograms[name] = h
	r.track(name, "histogram", help)
	return h
}

// Render returns the registry's current state in Prometheus text format.
func (r *Registry) Render() string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var b strings.Builder
	for _, name := range r.order {
		kind := r.kind[name]
		if h, ok := r.help[name]; ok {
			fmt.Fprintf(&b, "# HELP %s %s\n", name, h)
		}
		fmt.Fprintf(&b, "# TYPE %s %s\n", name, kind)

		switch kind {
		case "counter":
			fmt.Fprintf(&b, "%s %d\n", name, r.counters[name].Value())
		case "gauge":
			fmt.Fprintf(&b, "%s %d\n", name, r.gauges[name].Value())
		case "histogram":
			buckets, counts, sum, count := r.histograms[name].snapshot()
			cumulative := uint64(0)
			for i, bk := range buckets {
				cumulative += counts[i]
				fmt.Fprintf(&b, "%s_bucket{le=\"%g\"} %d\n", name, bk, cumulative)
			}
			fmt.Fprintf(&b, "%s_bucket{le=\"+Inf\"} %d\n", name, count)
			fmt.Fprintf(&b, "%s_sum %g\n", name, sum)
			fmt.Fprintf(&b, "%s_count %d\n", name, count)
		}
	}
	return b.String()
}

// Handler serves the registry's current state over HTTP.
func (r *Registry) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; version=0.0.4; charset=utf-8")
		w.Write([]byte(r.Render()))
	})
}

// StageMetrics are the worker's fixed set of pipeline-specific
// instruments, built on a Registry.
type StageMetrics struct {
	StageDuration *Histogram // labeled by convention in stage name, e.g. call per-stage with distinct names
	JobsProcessed *Counter
	JobsFailed    *Counter
	JobsRetried   *Counter
	QueueDepth    *Gauge
	InFlightJobs  *Gauge

	registry *Registry
}

// NewStageMetrics registers the worker's standard instruments on a fresh
// Registry.
func NewStageMetrics() *StageMetrics {
	reg := NewRegistry()
	return &StageMetrics{
		StageDuration: reg.Histogram("docpipeline_stage_duration_seconds", "duration of a single pipeline stage", nil),
		JobsProcessed: reg.Counter("docpipeline_jobs_processed_total", "jobs that completed successfully"),
		JobsFailed:    reg.Counter("docpipeline_jobs_failed_total", "jobs that failed terminally"),
		JobsRetried:   reg.Counter("docpipeline_jobs_retried_total", "job attempts retried after a transient failure"),
		QueueDepth:    reg.Gauge("docpipeline_queue_depth", "jobs waiting in the queue, as last observed"),
		InFlightJobs:  reg.Gauge("docpipeline_jobs_in_flight", "jobs currently being processed by a worker"),
		registry:      reg,
	}
}

// Handler exposes the underlying registry over HTTP.
func (m *StageMetrics) Handler() http.Handler { return m.registry.Handler() }
