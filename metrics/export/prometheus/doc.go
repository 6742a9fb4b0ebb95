// Package prometheus exposes engine metrics as a prometheus.Collector.
//
// [NewCollector] accepts a [q63.Engine]. Register the collector with a
// process registry, or mount [Collector.Handler] to serve it alone. Counter
// names are q63_*_total; the single histogram is q63_validate_latency_seconds.
//
// # What this package must NOT do
//
//   - Register with the global Prometheus registry. Callers choose the registry.
//   - Mutate engine state.
package prometheus
