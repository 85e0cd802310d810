package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"gopkg.in/yaml.v3"

	"github.com/arloliu/wukong"
	"github.com/arloliu/wukong/membership"
	"github.com/arloliu/wukong/policy"
)

// Node order names accepted in the configuration file.
const (
	OrderRandom     = "random"
	OrderRoundRobin = "round_robin"
	OrderSticky     = "sticky"
	OrderFixed      = "fixed"
)

// Config represents the CLI configuration file.
type Config struct {
	Collection       string               `yaml:"collection"`
	Nodes            []string             `yaml:"nodes"`
	Timeout          time.Duration        `yaml:"timeout"`
	RefreshInterval  time.Duration        `yaml:"refresh_interval"`
	ErrorResetPeriod time.Duration        `yaml:"error_reset_period"`
	Order            string               `yaml:"order"` // random | round_robin | sticky | fixed
	CircuitBreaker   CircuitBreakerConfig `yaml:"circuit_breaker"`
	ZooKeeper        ZooKeeperConfig      `yaml:"zookeeper"`
	NATS             NATSConfig           `yaml:"nats"`
	LogLevel         string               `yaml:"log_level"`
}

type CircuitBreakerConfig struct {
	Enabled      bool          `yaml:"enabled"`
	Threshold    int           `yaml:"threshold"`
	ResetTimeout time.Duration `yaml:"reset_timeout"`
}

type ZooKeeperConfig struct {
	// Connect is a connect string such as "zk1:2181,zk2:2181/solr".
	Connect string        `yaml:"connect"`
	Timeout time.Duration `yaml:"timeout"`
}

type NATSConfig struct {
	URL       string        `yaml:"url"`
	Bucket    string        `yaml:"bucket"`
	KeyPrefix string        `yaml:"key_prefix"`
	Timeout   time.Duration `yaml:"timeout"`
}

// DefaultConfig returns the configuration used without a configuration file.
func DefaultConfig() *Config {
	return &Config{
		Timeout:          wukong.DefaultTimeout,
		RefreshInterval:  wukong.DefaultRefreshInterval,
		ErrorResetPeriod: wukong.DefaultErrorResetPeriod,
		Order:            OrderRandom,
		CircuitBreaker: CircuitBreakerConfig{
			Threshold:    3,
			ResetTimeout: 30 * time.Second,
		},
		NATS: NATSConfig{
			Bucket:    "wukong",
			KeyPrefix: membership.DefaultConfig().KeyPrefix,
		},
		LogLevel: "warn",
	}
}

// LoadConfig reads configuration from a YAML file on top of the defaults.
//
// An empty path returns the defaults.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks option combinations the router cannot detect itself.
func (c *Config) Validate() error {
	switch c.Order {
	case "", OrderRandom, OrderRoundRobin, OrderSticky, OrderFixed:
	default:
		return fmt.Errorf("unknown node order %q", c.Order)
	}

	if c.ZooKeeper.Connect != "" && c.NATS.URL != "" {
		return fmt.Errorf("zookeeper and nats membership are mutually exclusive")
	}

	if c.NATS.URL != "" && c.NATS.Bucket == "" {
		return fmt.Errorf("nats bucket is required")
	}

	return nil
}

// nodeOrder builds the configured node order, wrapped in a circuit breaker
// when enabled.
func (c *Config) nodeOrder(logger wukong.Logger) wukong.NodeOrder {
	var order wukong.NodeOrder
	switch c.Order {
	case OrderRoundRobin:
		order = policy.NewRoundRobinOrder()
	case OrderSticky:
		order = policy.NewStickyOrder()
	case OrderFixed:
		order = policy.NewFixedOrder()
	default:
		order = policy.NewRandomOrder()
	}

	if !c.CircuitBreaker.Enabled {
		return order
	}

	return policy.NewCircuitBreaker(
		policy.WithInnerOrder(order),
		policy.WithThreshold(c.CircuitBreaker.Threshold),
		policy.WithResetTimeout(c.CircuitBreaker.ResetTimeout),
		policy.WithCircuitBreakerLogger(logger),
	)
}

// source is a membership source with the resources it holds open.
type source struct {
	wukong.MembershipSource
	nats  *membership.NATS
	close func()
}

// membershipSource connects the configured membership source. It returns
// nil when neither ZooKeeper nor NATS is configured.
func (c *Config) membershipSource(ctx context.Context, logger wukong.Logger) (*source, error) {
	switch {
	case c.ZooKeeper.Connect != "":
		servers, chroot := membership.ParseConnectString(c.ZooKeeper.Connect)
		opts := []membership.Option{
			membership.WithChroot(chroot),
			membership.WithLogger(logger),
		}
		if c.ZooKeeper.Timeout > 0 {
			opts = append(opts, membership.WithTimeout(c.ZooKeeper.Timeout))
		}

		zk, err := membership.NewZooKeeper(servers, opts...)
		if err != nil {
			return nil, err
		}

		return &source{MembershipSource: zk, close: func() {}}, nil

	case c.NATS.URL != "":
		nc, err := nats.Connect(c.NATS.URL)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to NATS: %w", err)
		}

		js, err := jetstream.New(nc)
		if err != nil {
			nc.Close()

			return nil, fmt.Errorf("failed to create JetStream context: %w", err)
		}

		kv, err := js.KeyValue(ctx, c.NATS.Bucket)
		if err != nil {
			nc.Close()

			return nil, fmt.Errorf("failed to open KV bucket %q: %w", c.NATS.Bucket, err)
		}

		opts := []membership.Option{
			membership.WithKeyPrefix(c.NATS.KeyPrefix),
			membership.WithLogger(logger),
		}
		if c.NATS.Timeout > 0 {
			opts = append(opts, membership.WithTimeout(c.NATS.Timeout))
		}

		src, err := membership.NewNATS(kv, opts...)
		if err != nil {
			nc.Close()

			return nil, err
		}

		return &source{MembershipSource: src, nats: src, close: nc.Close}, nil
	}

	return nil, nil //nolint:nilnil // no membership source configured
}

// options converts the configuration into router options.
func (c *Config) options(src wukong.MembershipSource, logger wukong.Logger) []wukong.Option {
	opts := []wukong.Option{
		wukong.WithTimeout(c.Timeout),
		wukong.WithRefreshInterval(c.RefreshInterval),
		wukong.WithErrorResetPeriod(c.ErrorResetPeriod),
		wukong.WithNodeOrder(c.nodeOrder(logger)),
		wukong.WithLogger(logger),
	}

	if src != nil {
		opts = append(opts, wukong.WithMembershipSource(src))
	}

	return opts
}
