package membership

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/go-zookeeper/zk"

	"github.com/arloliu/wukong"
	"github.com/arloliu/wukong/internal/logging"
	"github.com/arloliu/wukong/types"
)

// zkConn is the subset of *zk.Conn used to read the SolrCloud state.
type zkConn interface {
	Children(path string) ([]string, *zk.Stat, error)
	Get(path string) ([]byte, *zk.Stat, error)
	Close()
}

type dialFunc func(servers []string, sessionTimeout time.Duration, logger types.Logger) (zkConn, error)

// ZooKeeper reads the active nodes of a SolrCloud cluster from ZooKeeper.
//
// Every lookup opens a short-lived session, reads the cluster state and
// closes the session, so a ZooKeeper source holds no connection between
// refreshes. Both state formats are supported: per-collection
// /collections/<name>/state.json and the legacy /clusterstate.json.
// Aliases from /aliases.json resolve to the nodes of their first member.
// Only replicas in state "active" are reported.
type ZooKeeper struct {
	servers []string
	config  Config
	dial    dialFunc
}

var _ wukong.MembershipSource = (*ZooKeeper)(nil)

// NewZooKeeper creates a ZooKeeper membership source.
//
// Parameters:
//   - servers: ZooKeeper servers as "host:port"
//   - opts: Optional configuration options
//
// Returns:
//   - *ZooKeeper: A new membership source
//   - error: KindConfiguration error if servers is empty
//
// Example:
//
//	servers, chroot := membership.ParseConnectString("zk1:2181,zk2:2181/solr")
//	zk, err := membership.NewZooKeeper(servers, membership.WithChroot(chroot))
//	if err != nil {
//	    return err
//	}
//	cities, err := wukong.Open("cities", nil, wukong.WithMembershipSource(zk))
func NewZooKeeper(servers []string, opts ...Option) (*ZooKeeper, error) {
	if len(servers) == 0 {
		return nil, types.NewError(types.KindConfiguration, "no ZooKeeper servers configured")
	}

	config := DefaultConfig()
	for _, opt := range opts {
		opt(&config)
	}
	config.Logger = logging.With(config.Logger, "source", "zookeeper")

	if config.Chroot != "" && !strings.HasPrefix(config.Chroot, "/") {
		config.Chroot = "/" + config.Chroot
	}

	return &ZooKeeper{
		servers: servers,
		config:  config,
		dial:    dialZooKeeper,
	}, nil
}

// ParseConnectString splits a ZooKeeper connect string such as
// "zk1:2181,zk2:2181/solr" into servers and chroot.
//
// Parameters:
//   - connect: Comma separated servers, optionally followed by a chroot
//
// Returns:
//   - []string: The servers
//   - string: The chroot, "" when absent
func ParseConnectString(connect string) ([]string, string) {
	var chroot string
	if idx := strings.Index(connect, "/"); idx >= 0 {
		connect, chroot = connect[:idx], connect[idx:]
		if chroot == "/" {
			chroot = ""
		}
	}

	var servers []string
	for _, s := range strings.Split(connect, ",") {
		if s = strings.TrimSpace(s); s != "" {
			servers = append(servers, s)
		}
	}

	return servers, chroot
}

// Servers returns the configured ZooKeeper servers.
func (z *ZooKeeper) Servers() []string {
	return z.servers
}

// Config returns the source configuration.
func (z *ZooKeeper) Config() Config {
	return z.config
}

// ActiveAddresses returns the active nodes of resource.
//
// Parameters:
//   - ctx: Context for cancellation
//   - resource: Collection or alias name; "" returns every active node
//
// Returns:
//   - []string: Sorted node addresses such as "solr1:8983"
//   - error: KindMembership error when ZooKeeper cannot be read in time
func (z *ZooKeeper) ActiveAddresses(ctx context.Context, resource string) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, z.config.Timeout)
	defer cancel()

	conn, err := z.dial(z.servers, z.config.Timeout, z.config.Logger)
	if err != nil {
		return nil, types.WrapError(types.KindMembership, "unable to connect to ZooKeeper", err)
	}

	type result struct {
		hosts hostSet
		err   error
	}
	done := make(chan result, 1)

	go func() {
		hosts, err := z.readHosts(conn)
		done <- result{hosts: hosts, err: err}
	}()

	select {
	case <-ctx.Done():
		// Closing flushes pending requests, which ends the reader.
		conn.Close()

		return nil, types.WrapError(types.KindMembership, "ZooKeeper lookup timed out", ctx.Err())
	case res := <-done:
		conn.Close()
		if res.err != nil {
			return nil, res.err
		}

		return res.hosts.lookup(resource), nil
	}
}

// readHosts reads the active hosts of every collection and alias.
func (z *ZooKeeper) readHosts(conn zkConn) (hostSet, error) {
	hosts := make(hostSet)

	collections, _, err := conn.Children(z.path("/collections"))
	if err != nil && !errors.Is(err, zk.ErrNoNode) {
		return nil, types.WrapError(types.KindMembership, "unable to list collections", err)
	}

	for _, name := range collections {
		data, _, err := conn.Get(z.path("/collections", name, "state.json"))
		if errors.Is(err, zk.ErrNoNode) {
			z.config.Logger.Debug("no state.json for collection", "collection", name)
			continue
		}
		if err != nil {
			return nil, types.WrapError(types.KindMembership, "unable to read state of collection "+name, err)
		}

		states, err := parseStates(data)
		if err != nil {
			return nil, types.WrapError(types.KindMembership, "invalid state of collection "+name, err)
		}
		hosts.add(name, activeHosts(states[name]))
	}

	// Legacy layout; absent on recent clusters.
	if data, _, err := conn.Get(z.path("/clusterstate.json")); err == nil {
		states, err := parseStates(data)
		if err != nil {
			return nil, types.WrapError(types.KindMembership, "invalid /clusterstate.json", err)
		}

		for name, state := range states {
			hosts.add(name, activeHosts(state))
		}
	}

	data, _, err := conn.Get(z.path("/aliases.json"))
	if err != nil {
		z.config.Logger.Debug("no aliases found", "error", err)
		return hosts, nil
	}

	aliases, err := parseAliases(data)
	if err != nil {
		z.config.Logger.Warn("ignoring invalid /aliases.json", "error", err)
		return hosts, nil
	}
	hosts.resolveAliases(aliases)

	return hosts, nil
}

func (z *ZooKeeper) path(elems ...string) string {
	return path.Join(append([]string{"/", z.config.Chroot}, elems...)...)
}

func dialZooKeeper(servers []string, sessionTimeout time.Duration, logger types.Logger) (zkConn, error) {
	conn, events, err := zk.Connect(servers, sessionTimeout, zk.WithLogger(zkLogger{logger}))
	if err != nil {
		return nil, err
	}

	// The event channel must be consumed; it is closed with the connection.
	go func() {
		for range events {}
	}()

	return conn, nil
}

// zkLogger routes the ZooKeeper client's logs to a types.Logger at debug level.
type zkLogger struct {
	logger types.Logger
}

func (l zkLogger) Printf(format string, args ...any) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}
