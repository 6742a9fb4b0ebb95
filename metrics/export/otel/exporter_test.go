package otel

import (
	"context"
	"sync"
	"testing"

	q63 "github.com/uglydojo/q63"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

type fakeSource struct {
	mu       sync.RWMutex
	snapshot q63.MetricsSnapshot
}

func (f *fakeSource) MetricsSnapshot() q63.MetricsSnapshot {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := q63.MetricsSnapshot{
		Counters:   make(map[q63.MetricID]uint64, len(f.snapshot.Counters)),
		Histograms: make(map[q63.MetricID][]uint64, len(f.snapshot.Histograms)),
	}
	for k, v := range f.snapshot.Counters {
		out.Counters[k] = v
	}
	for k, buckets := range f.snapshot.Histograms {
		next := make([]uint64, len(buckets))
		copy(next, buckets)
		out.Histograms[k] = next
	}
	return out
}

type fakeMailSource struct {
	fakeSource
	enabled bool
	dropped uint64
}

func (f *fakeMailSource) MailEnabled() bool   { return f.enabled }
func (f *fakeMailSource) MailDropped() uint64 { return f.dropped }

func newTestMeter() (*sdkmetric.ManualReader, *sdkmetric.MeterProvider) {
	reader := sdkmetric.NewManualReader()
	return reader, sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
}

func findSum(rm metricdata.ResourceMetrics, name string) (int64, bool) {
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != name {
				continue
			}
			switch data := m.Data.(type) {
			case metricdata.Sum[int64]:
				if len(data.DataPoints) > 0 {
					return data.DataPoints[0].Value, true
				}
			case metricdata.Gauge[int64]:
				if len(data.DataPoints) > 0 {
					return data.DataPoints[0].Value, true
				}
			}
		}
	}
	return 0, false
}

func TestExporterRegistersAndCollects(t *testing.T) {
	reader, provider := newTestMeter()
	meter := provider.Meter("q63-test")

	src := &fakeSource{
		snapshot: q63.MetricsSnapshot{
			Counters: map[q63.MetricID]uint64{
				q63.MetricLoginSuccess: 3,
			},
			Histograms: map[q63.MetricID][]uint64{
				q63.MetricValidateLatency: {1, 1, 1, 1, 1, 1, 1, 1},
			},
		},
	}

	exp, err := NewOTelExporterFromSource(meter, src)
	if err != nil {
		t.Fatalf("NewOTelExporterFromSource failed: %v", err)
	}
	defer func() {
		if err := exp.Close(); err != nil {
			t.Fatalf("Close failed: %v", err)
		}
	}()

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("Collect failed: %v", err)
	}

	if v, ok := findSum(rm, "q63_login_success_total"); !ok || v != 3 {
		t.Fatalf("expected login success 3, got %d (found=%v)", v, ok)
	}
	if v, ok := findSum(rm, "q63_validate_latency_seconds_count"); !ok || v != 8 {
		t.Fatalf("expected histogram count 8, got %d (found=%v)", v, ok)
	}
	if v, ok := findSum(rm, "q63_validate_latency_seconds_bucket_le_0_025"); !ok || v != 3 {
		t.Fatalf("expected cumulative bucket 3, got %d (found=%v)", v, ok)
	}
}

func TestExporterReportsOutboxWhileMetricsDisabled(t *testing.T) {
	reader, provider := newTestMeter()
	meter := provider.Meter("q63-test")

	src := &fakeMailSource{enabled: true, dropped: 4}

	exp, err := NewOTelExporterFromSource(meter, src)
	if err != nil {
		t.Fatalf("NewOTelExporterFromSource failed: %v", err)
	}
	defer exp.Close()

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("Collect failed: %v", err)
	}

	if v, ok := findSum(rm, "q63_mail_outbox_dropped_total"); !ok || v != 4 {
		t.Fatalf("expected outbox dropped 4, got %d (found=%v)", v, ok)
	}
	if v, ok := findSum(rm, "q63_mail_enabled"); !ok || v != 1 {
		t.Fatalf("expected mail enabled 1, got %d (found=%v)", v, ok)
	}
	if _, ok := findSum(rm, "q63_login_success_total"); ok {
		t.Fatal("expected engine counters to be skipped with an empty snapshot")
	}
}

func TestExporterWithoutMailSourceHasNoOutbox(t *testing.T) {
	reader, provider := newTestMeter()
	meter := provider.Meter("q63-test")

	src := &fakeSource{snapshot: q63.MetricsSnapshot{
		Counters: map[q63.MetricID]uint64{q63.MetricMailDropped: 2},
	}}
	exp, err := NewOTelExporterFromSource(meter, src)
	if err != nil {
		t.Fatalf("NewOTelExporterFromSource failed: %v", err)
	}
	defer exp.Close()

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("Collect failed: %v", err)
	}
	if _, ok := findSum(rm, "q63_mail_outbox_dropped_total"); ok {
		t.Fatal("unexpected outbox instrument for a plain snapshot source")
	}
	if v, ok := findSum(rm, "q63_mail_dropped_total"); !ok || v != 2 {
		t.Fatalf("expected engine mail dropped 2, got %d (found=%v)", v, ok)
	}
}

func TestExporterRejectsNilInputs(t *testing.T) {
	_, provider := newTestMeter()
	meter := provider.Meter("q63-test")

	if _, err := NewOTelExporterFromSource(meter, nil); err != ErrNilSource {
		t.Fatalf("expected ErrNilSource, got %v", err)
	}
	if _, err := NewOTelExporterFromSource(nil, &fakeSource{}); err != ErrNilMeter {
		t.Fatalf("expected ErrNilMeter, got %v", err)
	}
	if _, err := NewOTelExporter(meter, nil); err != ErrNilSource {
		t.Fatalf("expected ErrNilSource for a nil engine, got %v", err)
	}
}

func TestExporterConcurrentCollectNoPanic(t *testing.T) {
	reader, provider := newTestMeter()
	meter := provider.Meter("q63-test")

	src := &fakeSource{
		snapshot: q63.MetricsSnapshot{
			Counters: map[q63.MetricID]uint64{
				q63.MetricSessionValidated: 1,
			},
			Histograms: map[q63.MetricID][]uint64{
				q63.MetricValidateLatency: {1, 0, 0, 0, 0, 0, 0, 0},
			},
		},
	}

	exp, err := NewOTelExporterFromSource(meter, src)
	if err != nil {
		t.Fatalf("NewOTelExporterFromSource failed: %v", err)
	}
	defer func() {
		if err := exp.Close(); err != nil {
			t.Fatalf("Close failed: %v", err)
		}
	}()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(v uint64) {
			defer wg.Done()
			src.mu.Lock()
			src.snapshot.Counters[q63.MetricSessionValidated] = v
			src.mu.Unlock()

			var rm metricdata.ResourceMetrics
			_ = reader.Collect(context.Background(), &rm)
		}(uint64(i + 1))
	}
	wg.Wait()
}
