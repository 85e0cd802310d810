package wukong

import (
	"time"

	httpadapter "github.com/arloliu/wukong/adapter/http"
	"github.com/arloliu/wukong/internal/logging"
	"github.com/arloliu/wukong/internal/metrics"
	"github.com/arloliu/wukong/policy"
	"github.com/arloliu/wukong/types"
)

// Default configuration values.
const (
	DefaultTimeout          = 15 * time.Second
	DefaultRefreshInterval  = time.Minute
	DefaultErrorResetPeriod = 5 * time.Minute
)

// Clock returns the current time.
type Clock func() time.Time

// ClientConfig holds configuration for routers and collections.
type ClientConfig struct {
	// Timeout bounds each single-node attempt. Default: 15s.
	Timeout time.Duration

	// RefreshInterval is the minimum time between two requests after which
	// the membership source is consulted again before the next request.
	// Default: 1 minute.
	RefreshInterval time.Duration

	// ErrorResetPeriod is the quiet period after a full-pool failure after
	// which the pool reverts to the configured addresses. Default: 5 minutes.
	ErrorResetPeriod time.Duration

	// Membership is the optional source of active node addresses.
	Membership MembershipSource

	// Resource is the collection or alias passed to the membership source.
	// "" asks for every active node.
	Resource string

	Transport Transport
	NodeOrder NodeOrder
	Logger    types.Logger
	Metrics   MetricsCollector
	Clock     Clock
}

// DefaultConfig returns a ClientConfig with sensible defaults.
//
// Defaults:
//   - Transport: adapter/http.Transport over net/http
//   - NodeOrder: policy.RandomOrder (uniform shuffle)
//   - Logger and Metrics: no-op implementations
//
// Returns:
//   - *ClientConfig: Configuration with default settings
func DefaultConfig() *ClientConfig {
	return &ClientConfig{
		Timeout:          DefaultTimeout,
		RefreshInterval:  DefaultRefreshInterval,
		ErrorResetPeriod: DefaultErrorResetPeriod,
		Transport:        httpadapter.New(),
		NodeOrder:        policy.NewRandomOrder(),
		Logger:           logging.Nop{},
		Metrics:          metrics.Nop{},
		Clock:            time.Now,
	}
}

// Option configures a ClientConfig.
type Option func(*ClientConfig)

// WithTimeout sets the per-attempt timeout.
//
// Parameters:
//   - d: Timeout of one node attempt
//
// Returns:
//   - Option: Configuration option
func WithTimeout(d time.Duration) Option {
	return func(c *ClientConfig) {
		c.Timeout = d
	}
}

// WithRefreshInterval sets the idle time after which the membership source
// is consulted before the next request.
//
// Parameters:
//   - d: Refresh interval
//
// Returns:
//   - Option: Configuration option
func WithRefreshInterval(d time.Duration) Option {
	return func(c *ClientConfig) {
		c.RefreshInterval = d
	}
}

// WithErrorResetPeriod sets the quiet period after which a router reverts
// to its configured addresses following a full-pool failure.
//
// Parameters:
//   - d: Quiet period
//
// Returns:
//   - Option: Configuration option
func WithErrorResetPeriod(d time.Duration) Option {
	return func(c *ClientConfig) {
		c.ErrorResetPeriod = d
	}
}

// WithMembershipSource sets the source of active node addresses.
//
// Parameters:
//   - source: The membership source (e.g., membership.ZooKeeper)
//
// Returns:
//   - Option: Configuration option
//
// Example:
//
//	zk, _ := membership.NewZooKeeper([]string{"zk1:2181", "zk2:2181"})
//	router, _ := wukong.NewRouter(nil,
//	    wukong.WithMembershipSource(zk),
//	    wukong.WithResource("cities"),
//	)
func WithMembershipSource(source MembershipSource) Option {
	return func(c *ClientConfig) {
		c.Membership = source
	}
}

// WithResource sets the collection or alias passed to the membership source.
func WithResource(resource string) Option {
	return func(c *ClientConfig) {
		c.Resource = resource
	}
}

// WithTransport sets the transport used for node attempts.
func WithTransport(t Transport) Option {
	return func(c *ClientConfig) {
		c.Transport = t
	}
}

// WithNodeOrder sets the node ordering strategy.
//
// Parameters:
//   - order: The ordering (e.g., policy.NewFixedOrder() for deterministic tests)
//
// Returns:
//   - Option: Configuration option
func WithNodeOrder(order NodeOrder) Option {
	return func(c *ClientConfig) {
		c.NodeOrder = order
	}
}

// WithLogger sets the structured logger.
//
// If not set, a no-op logger is used that discards all messages.
// *slog.Logger satisfies the interface; contrib/logging/logrus adapts logrus.
//
// Example:
//
//	router, _ := wukong.NewRouter(addrs,
//	    wukong.WithLogger(slog.Default()),
//	)
func WithLogger(logger Logger) Option {
	return func(c *ClientConfig) {
		c.Logger = logger
	}
}

// WithMetrics sets the metrics collector.
//
// If not set, a no-op collector is used that discards all metrics.
// Use contrib/metrics/vm.New() for VictoriaMetrics integration.
//
// Example:
//
//	import vmmetrics "github.com/arloliu/wukong/contrib/metrics/vm"
//
//	collector := vmmetrics.New(vmmetrics.WithPrefix("search"))
//	router, _ := wukong.NewRouter(addrs, wukong.WithMetrics(collector))
func WithMetrics(collector MetricsCollector) Option {
	return func(c *ClientConfig) {
		c.Metrics = collector
	}
}

// WithClock sets the time source used for refresh and reset decisions.
func WithClock(clock Clock) Option {
	return func(c *ClientConfig) {
		c.Clock = clock
	}
}

// validate fills nil collaborators with defaults and rejects invalid values.
func (c *ClientConfig) validate() error {
	if c.Timeout < 0 {
		return types.NewError(types.KindConfiguration, "timeout must not be negative")
	}

	if c.RefreshInterval < 0 || c.ErrorResetPeriod < 0 {
		return types.NewError(types.KindConfiguration, "refresh interval and error reset period must not be negative")
	}

	if c.Timeout == 0 {
		c.Timeout = DefaultTimeout
	}

	if c.Transport == nil {
		c.Transport = httpadapter.New()
	}

	if c.NodeOrder == nil {
		c.NodeOrder = policy.NewRandomOrder()
	}

	c.Logger = logging.OrNop(c.Logger)

	c.Metrics = metrics.OrNop(c.Metrics)

	if c.Clock == nil {
		c.Clock = time.Now
	}

	return nil
}
