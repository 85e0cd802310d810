package vm

import (
	"fmt"
	"io"
	"net/http"
	"strconv"
	"sync/atomic"

	"github.com/VictoriaMetrics/metrics"

	"github.com/arloliu/wukong/types"
)

// Option configures a Collector.
type Option func(*Collector)

// WithPrefix sets the metric name prefix.
//
// Default: "wukong"
//
// Parameters:
//   - prefix: The prefix to use for all metric names
//
// Returns:
//   - Option: A configuration option
func WithPrefix(prefix string) Option {
	return func(c *Collector) {
		c.prefix = prefix
	}
}

// WithMetricsSet sets the metrics set to use.
//
// If provided, the collector will register metrics with this set instead of
// creating a new one. The caller is responsible for exposing this set
// (e.g., via metrics.WritePrometheus or a custom handler).
//
// Parameters:
//   - set: The metrics set to use
//
// Returns:
//   - Option: A configuration option
func WithMetricsSet(set *metrics.Set) Option {
	return func(c *Collector) {
		c.set = set
	}
}

// Collector implements types.MetricsCollector using VictoriaMetrics.
//
// Router-wide metrics are pre-created at initialization time. Node-scoped
// metrics are labeled with the node address and created on first use.
// Thread-safe for concurrent use.
type Collector struct {
	set    *metrics.Set
	prefix string

	// Failover metrics
	retryCycles   *metrics.Counter
	poolExhausted *metrics.Counter

	// Membership metrics
	refreshTotal  *metrics.Counter
	refreshErrors *metrics.Counter
	poolSize      atomic.Int64
}

var _ types.MetricsCollector = (*Collector)(nil)

// New creates a new VictoriaMetrics-based metrics collector.
//
// The collector creates its own metrics.Set and registers it globally.
//
// Parameters:
//   - opts: Configuration options (e.g., WithPrefix)
//
// Returns:
//   - *Collector: A new metrics collector ready for use
//
// Example:
//
//	collector := vm.New(vm.WithPrefix("search"))
//	router, _ := wukong.NewRouter(addrs, wukong.WithMetrics(collector))
func New(opts ...Option) *Collector {
	c := &Collector{prefix: "wukong"}

	for _, opt := range opts {
		opt(c)
	}

	// If no set is provided, create a new one and register it globally.
	// If a set is provided, we assume the caller manages it.
	if c.set == nil {
		c.set = metrics.NewSet()
		metrics.RegisterSet(c.set)
	}

	c.initMetrics()

	return c
}

// initMetrics pre-creates the router-wide metrics with the configured prefix.
func (c *Collector) initMetrics() {
	p := c.prefix

	c.retryCycles = c.set.NewCounter(p + "_retry_cycles_total")
	c.poolExhausted = c.set.NewCounter(p + "_pool_exhausted_total")

	c.refreshTotal = c.set.NewCounter(p + "_membership_refresh_total")
	c.refreshErrors = c.set.NewCounter(p + "_membership_refresh_errors_total")
	c.set.NewGauge(p+"_pool_size", func() float64 {
		return float64(c.poolSize.Load())
	})
}

// Set returns the underlying metrics set.
func (c *Collector) Set() *metrics.Set {
	return c.set
}

// Handler returns an HTTP handler that exposes metrics in Prometheus format.
//
// Example:
//
//	http.HandleFunc("/metrics", collector.Handler)
func (c *Collector) Handler(w http.ResponseWriter, _ *http.Request) {
	c.set.WritePrometheus(w)
}

// WritePrometheus writes all metrics in Prometheus format to the given writer.
//
// Parameters:
//   - w: The writer to write metrics to
func (c *Collector) WritePrometheus(w io.Writer) {
	c.set.WritePrometheus(w)
}

// nodeMetric returns the name of a node-scoped metric.
func (c *Collector) nodeMetric(name, node string) string {
	return fmt.Sprintf(`%s_%s{node=%s}`, c.prefix, name, strconv.Quote(node))
}

// ----------------------
// Node Requests
// ----------------------

// IncRequestTotal increments the request attempt counter of a node.
func (c *Collector) IncRequestTotal(node string) {
	c.set.GetOrCreateCounter(c.nodeMetric("requests_total", node)).Inc()
}

// IncRequestError increments the failed attempt counter of a node.
func (c *Collector) IncRequestError(node string) {
	c.set.GetOrCreateCounter(c.nodeMetric("request_errors_total", node)).Inc()
}

// ObserveRequestDuration records an attempt duration of a node.
func (c *Collector) ObserveRequestDuration(node string, seconds float64) {
	c.set.GetOrCreateHistogram(c.nodeMetric("request_duration_seconds", node)).Update(seconds)
}

// ----------------------
// Failover
// ----------------------

// IncFailoverTotal increments the failover counter between two nodes.
func (c *Collector) IncFailoverTotal(fromNode, toNode string) {
	name := fmt.Sprintf(`%s_failover_total{from=%s,to=%s}`, c.prefix, strconv.Quote(fromNode), strconv.Quote(toNode))
	c.set.GetOrCreateCounter(name).Inc()
}

// IncRetryCycle increments the refresh-and-retry cycle counter.
func (c *Collector) IncRetryCycle() {
	c.retryCycles.Inc()
}

// IncPoolExhausted increments the counter of requests that failed on every node.
func (c *Collector) IncPoolExhausted() {
	c.poolExhausted.Inc()
}

// ----------------------
// Membership
// ----------------------

// IncRefreshTotal increments the membership refresh counter.
func (c *Collector) IncRefreshTotal() {
	c.refreshTotal.Inc()
}

// IncRefreshError increments the failed membership refresh counter.
func (c *Collector) IncRefreshError() {
	c.refreshErrors.Inc()
}

// SetPoolSize sets the node pool size gauge.
func (c *Collector) SetPoolSize(size int) {
	c.poolSize.Store(int64(size))
}
