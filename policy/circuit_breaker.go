package policy

import (
	"sync"
	"time"

	"github.com/arloliu/wukong/internal/logging"
	"github.com/arloliu/wukong/types"
)

// NodeOrder has the method set of wukong.NodeOrder.
type NodeOrder interface {
	Order(addresses []string) []string
}

// nodeObserver has the method set of wukong.NodeObserver.
type nodeObserver interface {
	OnSuccess(node string)
	OnFailure(node string, err error)
}

type nodeState struct {
	failures    int
	lastFailure time.Time
}

// CircuitBreaker demotes failing nodes to the end of the attempt order.
//
// It tracks consecutive failures per node. Once a node reaches the threshold
// its circuit is open and it is attempted only after every healthy node,
// until it answers successfully again or the reset timeout passes without
// further failures. Open nodes are demoted, never removed, so a request can
// still reach them when every other node is down.
type CircuitBreaker struct {
	threshold    int
	resetTimeout time.Duration
	inner        NodeOrder
	logger       types.Logger
	now          func() time.Time

	mu    sync.Mutex
	nodes map[string]*nodeState
}

// CircuitBreakerOption configures a CircuitBreaker.
type CircuitBreakerOption func(*CircuitBreaker)

// WithThreshold sets the number of consecutive failures that opens a circuit.
//
// Parameters:
//   - n: Number of failures required
//
// Returns:
//   - CircuitBreakerOption: Configuration option
func WithThreshold(n int) CircuitBreakerOption {
	return func(c *CircuitBreaker) {
		c.threshold = n
	}
}

// WithResetTimeout sets the duration after which the failure count resets.
//
// Parameters:
//   - d: Reset timeout duration
//
// Returns:
//   - CircuitBreakerOption: Configuration option
func WithResetTimeout(d time.Duration) CircuitBreakerOption {
	return func(c *CircuitBreaker) {
		c.resetTimeout = d
	}
}

// WithInnerOrder sets the order applied before failing nodes are demoted.
//
// Parameters:
//   - order: Any node order, e.g. NewRoundRobinOrder()
//
// Returns:
//   - CircuitBreakerOption: Configuration option
func WithInnerOrder(order NodeOrder) CircuitBreakerOption {
	return func(c *CircuitBreaker) {
		c.inner = order
	}
}

// WithCircuitBreakerLogger sets the logger for the circuit breaker.
//
// Parameters:
//   - l: The logger
//
// Returns:
//   - CircuitBreakerOption: Configuration option
func WithCircuitBreakerLogger(l types.Logger) CircuitBreakerOption {
	return func(c *CircuitBreaker) {
		c.logger = l
	}
}

// withClock overrides the time source in tests.
func withClock(now func() time.Time) CircuitBreakerOption {
	return func(c *CircuitBreaker) {
		c.now = now
	}
}

// NewCircuitBreaker creates a CircuitBreaker.
//
// Defaults: threshold=3, resetTimeout=30s, inner order RandomOrder.
//
// Parameters:
//   - opts: Optional configuration options
//
// Returns:
//   - *CircuitBreaker: A new circuit breaker
func NewCircuitBreaker(opts ...CircuitBreakerOption) *CircuitBreaker {
	c := &CircuitBreaker{
		threshold:    3,
		resetTimeout: 30 * time.Second,
		now:          time.Now,
		nodes:        make(map[string]*nodeState),
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.inner == nil {
		c.inner = NewRandomOrder()
	}

	c.logger = logging.OrNop(c.logger)

	return c
}

// Order applies the inner order, then moves nodes with an open circuit to
// the end, keeping the relative order of both groups.
func (c *CircuitBreaker) Order(addresses []string) []string {
	ordered := c.inner.Order(addresses)

	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	healthy := make([]string, 0, len(ordered))
	var open []string
	for _, addr := range ordered {
		if c.isOpen(addr, now) {
			open = append(open, addr)
		} else {
			healthy = append(healthy, addr)
		}
	}

	return append(healthy, open...)
}

// isOpen must be called with c.mu held.
func (c *CircuitBreaker) isOpen(node string, now time.Time) bool {
	st, ok := c.nodes[node]
	if !ok || st.failures < c.threshold {
		return false
	}

	return now.Sub(st.lastFailure) <= c.resetTimeout
}

// OnFailure increments the failure counter of a node.
//
// If the reset timeout has passed since the node's last failure, the
// counter restarts at 1. The failure is passed on to the inner order when it
// observes outcomes too.
func (c *CircuitBreaker) OnFailure(node string, err error) {
	c.recordFailure(node)

	if obs, ok := c.inner.(nodeObserver); ok {
		obs.OnFailure(node, err)
	}
}

func (c *CircuitBreaker) recordFailure(node string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	st, ok := c.nodes[node]
	if !ok {
		st = &nodeState{}
		c.nodes[node] = st
	}

	if !st.lastFailure.IsZero() && now.Sub(st.lastFailure) > c.resetTimeout {
		st.failures = 0
	}
	st.failures++
	st.lastFailure = now

	if st.failures == c.threshold {
		c.logger.Warn("circuit breaker tripped",
			"node", node,
			"threshold", c.threshold,
		)
	}
}

// OnSuccess resets the failure counter of a node and notifies the inner
// order when it observes outcomes.
func (c *CircuitBreaker) OnSuccess(node string) {
	c.recordSuccess(node)

	if obs, ok := c.inner.(nodeObserver); ok {
		obs.OnSuccess(node)
	}
}

func (c *CircuitBreaker) recordSuccess(node string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	st, ok := c.nodes[node]
	if !ok {
		return
	}

	if st.failures >= c.threshold {
		c.logger.Info("circuit breaker closed", "node", node)
	}

	delete(c.nodes, node)
}

// Failures returns the consecutive failure count of a node.
func (c *CircuitBreaker) Failures(node string) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	if st, ok := c.nodes[node]; ok {
		return st.failures
	}

	return 0
}

// IsOpen reports whether the node's circuit is open.
func (c *CircuitBreaker) IsOpen(node string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.isOpen(node, c.now())
}
