// Package prometheus provides Prometheus collectors for authsync metrics.
//
// [NewPrometheusExporter] accepts an [authsync.Synchronizer] and exposes an [http.Handler]
// that renders all authsync counters and histograms in Prometheus text exposition format.
// Counter names are prefixed authsync_*_total; the single histogram is
// authsync_reconcile_latency_milliseconds.
//
// # What this package must NOT do
//
//   - Register metrics in a global Prometheus registry — callers mount the Handler.
//   - Mutate synchronizer state.
package prometheus
