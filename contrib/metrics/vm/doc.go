// Package vm provides a VictoriaMetrics-based implementation of the MetricsCollector interface.
//
// This package uses github.com/VictoriaMetrics/metrics for lightweight,
// Prometheus-compatible metrics collection.
//
// # Basic Usage
//
// Create a collector with default prefix "wukong":
//
//	collector := vm.New()
//	cities, _ := wukong.Open("cities", addrs, wukong.WithMetrics(collector))
//
// Use WithPrefix to customize the metric name prefix, or WithMetricsSet to
// register the metrics with a set managed by the caller.
//
// # Exposing Metrics
//
//	http.HandleFunc("/metrics", collector.Handler)
//	http.ListenAndServe(":8080", nil)
//
// # Metrics Provided
//
// Node requests:
//   - {prefix}_requests_total{node} - Counter of request attempts
//   - {prefix}_request_errors_total{node} - Counter of failed attempts
//   - {prefix}_request_duration_seconds{node} - Histogram of attempt latencies
//
// Failover:
//   - {prefix}_failover_total{from,to} - Counter of moves to the next node
//   - {prefix}_retry_cycles_total - Counter of refresh-and-retry cycles
//   - {prefix}_pool_exhausted_total - Counter of requests that failed on every node
//
// Membership:
//   - {prefix}_membership_refresh_total - Counter of membership refreshes
//   - {prefix}_membership_refresh_errors_total - Counter of failed or empty refreshes
//   - {prefix}_pool_size - Gauge of the current node pool size
//
// Node-scoped metrics are created on first use; a pool churning through
// many addresses creates one series per address.
package vm
