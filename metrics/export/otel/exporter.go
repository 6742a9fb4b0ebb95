package otel

import (
	"context"
	"errors"
	"fmt"

	q63 "github.com/uglydojo/q63"
	"github.com/uglydojo/q63/metrics/export/internaldefs"
	"go.opentelemetry.io/otel/metric"
)

var (
	ErrNilMeter  = errors.New("nil meter")
	ErrNilSource = errors.New("nil metrics source")
)

type metricsSource interface {
	MetricsSnapshot() q63.MetricsSnapshot
}

// mailSource is implemented by *q63.Engine. Sources without it get no
// outbox instruments.
type mailSource interface {
	MailEnabled() bool
	MailDropped() uint64
}

type observedCounter struct {
	id         q63.MetricID
	instrument metric.Int64ObservableCounter
}

// observedHistogram flattens one engine histogram into a gauge per
// cumulative bucket plus a sample count.
type observedHistogram struct {
	id      q63.MetricID
	buckets [8]metric.Int64ObservableGauge
	count   metric.Int64ObservableGauge
}

type observedOutbox struct {
	source  mailSource
	dropped metric.Int64ObservableCounter
	enabled metric.Int64ObservableGauge
}

// OTelExporter publishes engine metrics as observable instruments on a
// caller-supplied meter. Engine counters and histograms are skipped while
// engine metrics are disabled; outbox instruments are always reported.
// Close unregisters the collection callback.
type OTelExporter struct {
	source       metricsSource
	registration metric.Registration
	counters     []observedCounter
	histograms   []observedHistogram
	outbox       *observedOutbox
}

// NewOTelExporter registers instruments for engine, including its mail outbox.
func NewOTelExporter(meter metric.Meter, engine *q63.Engine) (*OTelExporter, error) {
	if engine == nil {
		return nil, ErrNilSource
	}
	return NewOTelExporterFromSource(meter, engine)
}

// NewOTelExporterFromSource registers instruments for any snapshot source.
// Outbox instruments are added when source also reports mail state.
func NewOTelExporterFromSource(meter metric.Meter, source metricsSource) (*OTelExporter, error) {
	if meter == nil {
		return nil, ErrNilMeter
	}
	if source == nil {
		return nil, ErrNilSource
	}

	e := &OTelExporter{
		source:     source,
		counters:   make([]observedCounter, 0, len(internaldefs.CounterDefs)),
		histograms: make([]observedHistogram, 0, len(internaldefs.HistogramDefs)),
	}

	var observables []metric.Observable
	for _, def := range internaldefs.CounterDefs {
		ins, err := meter.Int64ObservableCounter(def.Name, metric.WithDescription(def.Help))
		if err != nil {
			return nil, fmt.Errorf("create observable counter %s: %w", def.Name, err)
		}
		e.counters = append(e.counters, observedCounter{id: def.ID, instrument: ins})
		observables = append(observables, ins)
	}

	for _, def := range internaldefs.HistogramDefs {
		h, err := newObservedHistogram(meter, def)
		if err != nil {
			return nil, err
		}
		e.histograms = append(e.histograms, h)
		observables = append(observables, h.count)
		for _, b := range h.buckets {
			observables = append(observables, b)
		}
	}

	if ms, ok := source.(mailSource); ok {
		outbox, err := newObservedOutbox(meter, ms)
		if err != nil {
			return nil, err
		}
		e.outbox = outbox
		observables = append(observables, outbox.dropped, outbox.enabled)
	}

	registration, err := meter.RegisterCallback(e.observe, observables...)
	if err != nil {
		return nil, fmt.Errorf("register callback: %w", err)
	}
	e.registration = registration
	return e, nil
}

func newObservedHistogram(meter metric.Meter, def internaldefs.HistogramDef) (observedHistogram, error) {
	h := observedHistogram{id: def.ID}
	for i, suffix := range internaldefs.HistogramBoundSuffix {
		name := def.Name + "_bucket_le_" + suffix
		ins, err := meter.Int64ObservableGauge(name, metric.WithDescription(def.Help+" Cumulative bucket count."))
		if err != nil {
			return h, fmt.Errorf("create histogram bucket gauge %s: %w", name, err)
		}
		h.buckets[i] = ins
	}

	countName := def.Name + "_count"
	count, err := meter.Int64ObservableGauge(countName, metric.WithDescription(def.Help+" Sample count."))
	if err != nil {
		return h, fmt.Errorf("create histogram count gauge %s: %w", countName, err)
	}
	h.count = count
	return h, nil
}

func newObservedOutbox(meter metric.Meter, source mailSource) (*observedOutbox, error) {
	def := internaldefs.OutboxDroppedDef
	dropped, err := meter.Int64ObservableCounter(def.Name, metric.WithDescription(def.Help))
	if err != nil {
		return nil, fmt.Errorf("create observable counter %s: %w", def.Name, err)
	}
	enabled, err := meter.Int64ObservableGauge("q63_mail_enabled", metric.WithDescription("1 when reset emails are delivered, 0 otherwise."))
	if err != nil {
		return nil, fmt.Errorf("create mail enabled gauge: %w", err)
	}
	return &observedOutbox{source: source, dropped: dropped, enabled: enabled}, nil
}

func (e *OTelExporter) observe(_ context.Context, observer metric.Observer) error {
	if o := e.outbox; o != nil {
		observer.ObserveInt64(o.dropped, int64(o.source.MailDropped()))
		var enabled int64
		if o.source.MailEnabled() {
			enabled = 1
		}
		observer.ObserveInt64(o.enabled, enabled)
	}

	snapshot := e.source.MetricsSnapshot()
	if len(snapshot.Counters) == 0 && len(snapshot.Histograms) == 0 {
		return nil
	}

	for _, c := range e.counters {
		observer.ObserveInt64(c.instrument, int64(snapshot.Counters[c.id]))
	}
	for _, h := range e.histograms {
		cumulative, count := internaldefs.HistogramSeries(snapshot.Histograms[h.id])
		for i, b := range h.buckets {
			observer.ObserveInt64(b, int64(cumulative[i]))
		}
		observer.ObserveInt64(h.count, int64(count))
	}
	return nil
}

// Close unregisters the callback. It is safe on a nil exporter.
func (e *OTelExporter) Close() error {
	if e == nil || e.registration == nil {
		return nil
	}
	return e.registration.Unregister()
}
