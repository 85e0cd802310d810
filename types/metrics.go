package types

// MetricsCollector defines methods for collecting operational metrics.
//
// Node-scoped methods receive the node address used for the attempt.
// Implementations should be thread-safe as separate routers may share
// a collector.
//
// Example usage with VictoriaMetrics (via contrib/metrics/vm):
//
//	import vmmetrics "github.com/arloliu/wukong/contrib/metrics/vm"
//
//	collector := vmmetrics.New(vmmetrics.WithPrefix("myapp"))
//	router, _ := wukong.NewRouter(addrs, wukong.WithMetrics(collector))
//
//	// Expose metrics via HTTP
//	http.HandleFunc("/metrics", collector.Handler)
type MetricsCollector interface {
	// ----------------------
	// Node Requests
	// ----------------------

	// IncRequestTotal increments the request attempt counter for a node.
	IncRequestTotal(node string)

	// IncRequestError increments the failed attempt counter for a node.
	IncRequestError(node string)

	// ObserveRequestDuration records an attempt duration in seconds.
	ObserveRequestDuration(node string, seconds float64)

	// ----------------------
	// Failover
	// ----------------------

	// IncFailoverTotal increments the counter when an attempt moves from one node to the next.
	IncFailoverTotal(fromNode, toNode string)

	// IncRetryCycle increments the counter when a full-pool failure triggers the
	// refresh-and-retry cycle.
	IncRetryCycle()

	// IncPoolExhausted increments the counter when a request fails on every node.
	IncPoolExhausted()

	// ----------------------
	// Membership
	// ----------------------

	// IncRefreshTotal increments the membership refresh counter.
	IncRefreshTotal()

	// IncRefreshError increments the failed or empty membership refresh counter.
	IncRefreshError()

	// SetPoolSize sets the current number of addresses in the node pool.
	SetPoolSize(size int)
}
