package testutil

import (
	"sync"
	"sync/atomic"

	"github.com/arloliu/wukong/types"
)

// TestMetricsCollector is a test implementation of types.MetricsCollector
// that tracks method calls for assertion in tests.
type TestMetricsCollector struct {
	mu sync.RWMutex

	// Node requests
	RequestTotal    map[string]int64
	RequestErrors   map[string]int64
	RequestDuration map[string][]float64

	// Failover
	FailoverTotal map[string]int64 // key: "from->to"

	// Membership
	PoolSizes []int

	// Atomic counters for quick access
	retryCycles   atomic.Int64
	poolExhausted atomic.Int64
	refreshTotal  atomic.Int64
	refreshErrors atomic.Int64
}

// Compile-time assertion that TestMetricsCollector implements types.MetricsCollector.
var _ types.MetricsCollector = (*TestMetricsCollector)(nil)

// NewTestMetricsCollector creates a new test metrics collector.
func NewTestMetricsCollector() *TestMetricsCollector {
	return &TestMetricsCollector{
		RequestTotal:    make(map[string]int64),
		RequestErrors:   make(map[string]int64),
		RequestDuration: make(map[string][]float64),
		FailoverTotal:   make(map[string]int64),
	}
}

func (m *TestMetricsCollector) IncRequestTotal(node string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RequestTotal[node]++
}

func (m *TestMetricsCollector) IncRequestError(node string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RequestErrors[node]++
}

func (m *TestMetricsCollector) ObserveRequestDuration(node string, seconds float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RequestDuration[node] = append(m.RequestDuration[node], seconds)
}

func (m *TestMetricsCollector) IncFailoverTotal(fromNode, toNode string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.FailoverTotal[fromNode+"->"+toNode]++
}

func (m *TestMetricsCollector) IncRetryCycle() {
	m.retryCycles.Add(1)
}

func (m *TestMetricsCollector) IncPoolExhausted() {
	m.poolExhausted.Add(1)
}

func (m *TestMetricsCollector) IncRefreshTotal() {
	m.refreshTotal.Add(1)
}

func (m *TestMetricsCollector) IncRefreshError() {
	m.refreshErrors.Add(1)
}

func (m *TestMetricsCollector) SetPoolSize(size int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.PoolSizes = append(m.PoolSizes, size)
}

// ----------------------
// Accessors
// ----------------------

// GetRequestTotal returns the number of attempts sent to node.
func (m *TestMetricsCollector) GetRequestTotal(node string) int64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.RequestTotal[node]
}

// GetRequestErrors returns the number of failed attempts of node.
func (m *TestMetricsCollector) GetRequestErrors(node string) int64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.RequestErrors[node]
}

// GetTotalFailovers returns the number of node-to-node failovers.
func (m *TestMetricsCollector) GetTotalFailovers() int64 {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var total int64
	for _, n := range m.FailoverTotal {
		total += n
	}

	return total
}

// GetRetryCycles returns the number of refresh-and-retry cycles.
func (m *TestMetricsCollector) GetRetryCycles() int64 {
	return m.retryCycles.Load()
}

// GetPoolExhausted returns the number of requests that failed on every node.
func (m *TestMetricsCollector) GetPoolExhausted() int64 {
	return m.poolExhausted.Load()
}

// GetRefreshTotal returns the number of membership refreshes.
func (m *TestMetricsCollector) GetRefreshTotal() int64 {
	return m.refreshTotal.Load()
}

// GetRefreshErrors returns the number of failed or empty refreshes.
func (m *TestMetricsCollector) GetRefreshErrors() int64 {
	return m.refreshErrors.Load()
}

// LastPoolSize returns the last reported pool size, or -1.
func (m *TestMetricsCollector) LastPoolSize() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if len(m.PoolSizes) == 0 {
		return -1
	}

	return m.PoolSizes[len(m.PoolSizes)-1]
}

// Reset clears all recorded metrics.
func (m *TestMetricsCollector) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.RequestTotal = make(map[string]int64)
	m.RequestErrors = make(map[string]int64)
	m.RequestDuration = make(map[string][]float64)
	m.FailoverTotal = make(map[string]int64)
	m.PoolSizes = nil

	m.retryCycles.Store(0)
	m.poolExhausted.Store(0)
	m.refreshTotal.Store(0)
	m.refreshErrors.Store(0)
}
