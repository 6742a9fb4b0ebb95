package main

import (
	"testing"
	"time"
)

func TestPercentile(t *testing.T) {
	samples := []time.Duration{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}

	if got := percentile(samples, 0); got != 1 {
		t.Fatalf("p0 = %v, want 1", got)
	}
	if got := percentile(samples, 50); got != 5 {
		t.Fatalf("p50 = %v, want 5", got)
	}
	if got := percentile(samples, 100); got != 10 {
		t.Fatalf("p100 = %v, want 10", got)
	}
	if got := percentile(nil, 50); got != 0 {
		t.Fatalf("empty = %v, want 0", got)
	}
}

func TestComputeStats(t *testing.T) {
	stats := computeStats(time.Second, []time.Duration{3, 1, 2}, 1)

	if stats.ops != 3 || stats.failures != 1 {
		t.Fatalf("ops=%d failures=%d", stats.ops, stats.failures)
	}
	if stats.p50 != 2 {
		t.Fatalf("p50 = %v, want 2", stats.p50)
	}
	if stats.opsPerS != 3 {
		t.Fatalf("ops/sec = %v, want 3", stats.opsPerS)
	}
}
