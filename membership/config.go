package membership

import (
	"time"

	"github.com/arloliu/wukong/types"
)

// Config holds configuration for membership sources.
type Config struct {
	// Timeout bounds one membership lookup, connection included.
	// Default: 5 seconds
	Timeout time.Duration

	// KeyPrefix prefixes resource names in the NATS KV bucket.
	// Default: "wukong.members."
	KeyPrefix string

	// Chroot is prepended to every ZooKeeper path, e.g. "/solr".
	// Default: "" (SolrCloud state at the ZooKeeper root)
	Chroot string

	// Logger receives lookup diagnostics. Default: no-op.
	Logger types.Logger
}

// DefaultConfig returns a Config with sensible defaults.
//
// Returns:
//   - Config: Default configuration
func DefaultConfig() Config {
	return Config{
		Timeout:   5 * time.Second,
		KeyPrefix: "wukong.members.",
	}
}

// Option configures a membership source.
type Option func(*Config)

// WithTimeout sets the lookup timeout.
//
// Parameters:
//   - d: Timeout duration
//
// Returns:
//   - Option: Configuration option
func WithTimeout(d time.Duration) Option {
	return func(c *Config) {
		c.Timeout = d
	}
}

// WithKeyPrefix sets the NATS KV key prefix.
//
// Parameters:
//   - prefix: The prefix (e.g., "search.solr.members.")
//
// Returns:
//   - Option: Configuration option
func WithKeyPrefix(prefix string) Option {
	return func(c *Config) {
		c.KeyPrefix = prefix
	}
}

// WithChroot sets the ZooKeeper chroot of the SolrCloud cluster.
//
// Parameters:
//   - chroot: Path such as "/solr"; a missing leading slash is added
//
// Returns:
//   - Option: Configuration option
func WithChroot(chroot string) Option {
	return func(c *Config) {
		c.Chroot = chroot
	}
}

// WithLogger sets the logger.
//
// Parameters:
//   - l: The logger
//
// Returns:
//   - Option: Configuration option
func WithLogger(l types.Logger) Option {
	return func(c *Config) {
		c.Logger = l
	}
}
