package internaldefs

import (
	"strings"
	"testing"
)

func TestCumulativeBuckets(t *testing.T) {
	got := CumulativeBuckets(NormalizeBuckets([]uint64{1, 2, 3}))
	want := [8]uint64{1, 3, 6, 6, 6, 6, 6, 6}
	if got != want {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestHistogramSeries(t *testing.T) {
	cumulative, count := HistogramSeries([]uint64{2, 0, 1})
	if count != 3 {
		t.Fatalf("expected count 3, got %d", count)
	}
	if cumulative[1] != 2 || cumulative[2] != 3 {
		t.Fatalf("unexpected running totals %v", cumulative)
	}

	if _, count := HistogramSeries(nil); count != 0 {
		t.Fatalf("expected empty histogram to count 0, got %d", count)
	}
}

func TestNormalizeBucketsTruncates(t *testing.T) {
	got := NormalizeBuckets([]uint64{1, 1, 1, 1, 1, 1, 1, 1, 9})
	if got[7] != 1 {
		t.Fatalf("expected extra buckets to be ignored, got %v", got)
	}
}

func TestDefinitionsAreUnique(t *testing.T) {
	seen := map[string]bool{}
	for _, def := range append(append([]CounterDef(nil), CounterDefs...), OutboxDroppedDef) {
		if seen[def.Name] {
			t.Fatalf("duplicate metric name %s", def.Name)
		}
		if !strings.HasPrefix(def.Name, "q63_") || !strings.HasSuffix(def.Name, "_total") {
			t.Fatalf("counter %s does not follow q63_*_total", def.Name)
		}
		seen[def.Name] = true
	}
	if len(HistogramBoundSuffix) != len(HistogramUpperBounds)+1 {
		t.Fatalf("bucket suffixes and bounds disagree")
	}
}
