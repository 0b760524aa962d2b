package observability

import (
	"strings"
	"testing"
)

func TestCounterIncAndAdd(t *testing.T) {
	c := &Counter{}
	c.Inc()
	c.Add(4)
	if got := c.Value(); got != 5 {
		t.Fatalf("got %d, want 5", got)
	}
}

func TestGaugeSetIncDec(t *testing.T) {
	g := &Gauge{}
	g.Set(10)
	g.Inc()
	g.Dec()
	g.Dec()
	if got := g.Value(); got != 9 {
		t.Fatalf("got %d, want 9", got)
	}
}

func TestHistogramObserveCountsPerBucket(t *testing.T) {
	h := newHistogram([]float64{1, 5, 10})
	h.Observe(0.5)
	h.Observe(3)
	h.Observe(8)

	buckets, counts, sum, count := h.snapshot()
	if len(buckets) != 3 || len(counts) != 3 {
		t.Fatalf("unexpected bucket shape: %v %v", buckets, counts)
	}
	if count != 3 {
		t.Fatalf("got count %d, want 3", count)
	}
	if sum != 11.5 {
		t.Fatalf("got sum %v, want 11.5", sum)
	}
	if counts[0] != 1 || counts[1] != 1 || counts[2] != 1 {
		t.Fatalf("unexpected per-bucket counts: %v", counts)
	}
}

func TestRegistryRenderIncludesHelpAndType(t *testing.T) {
	reg := NewRegistry()
	c := reg.Counter("docpipeline_test_total", "a test counter")
	c.Inc()

	out := reg.Render()
	if out == "" {
		t.Fatal("expected non-empty render output")
	}
	if want := "# HELP docpipeline_test_total a test counter\n"; !strings.Contains(out, want) {
		t.Fatalf("render missing HELP line: %s", out)
	}
	if want := "docpipeline_test_total 1\n"; !strings.Contains(out, want) {
		t.Fatalf("render missing value line: %s", out)
	}
}

func TestNewStageMetricsRegistersAllInstruments(t *testing.T) {
	m := NewStageMetrics()
	m.JobsProcessed.Inc()
	m.QueueDepth.Set(3)
	m.StageDuration.Observe(1.2)

	out := m.registry.Render()
	for _, want := range []string{"docpipeline_jobs_processed_total", "docpipeline_queue_depth", "docpipeline_stage_duration_seconds"} {
		if !strings.Contains(out, want) {
			t.Errorf("render missing metric %q", want)
		}
	}
}
