package testutil

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/go-zookeeper/zk"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// ZooKeeperContainer wraps a ZooKeeper test container.
type ZooKeeperContainer struct {
	Container testcontainers.Container
	// Address is the "host:port" clients connect to.
	Address string
}

// ZooKeeperOptions configures the ZooKeeper container.
type ZooKeeperOptions struct {
	// Image is the ZooKeeper image to use. Defaults to "zookeeper:3.9".
	Image string
}

// DefaultZooKeeperOptions returns default options for the ZooKeeper container.
func DefaultZooKeeperOptions() ZooKeeperOptions {
	return ZooKeeperOptions{Image: "zookeeper:3.9"}
}

// StartZooKeeper starts a ZooKeeper container for testing.
//
// The container is automatically terminated when the test completes.
//
// Parameters:
//   - ctx: Context for container operations
//   - t: Testing context for cleanup registration
//   - opts: Optional configuration (nil uses defaults)
//
// Returns:
//   - *ZooKeeperContainer: Container with its client address
//   - error: Error if container fails to start
func StartZooKeeper(ctx context.Context, t *testing.T, opts *ZooKeeperOptions) (*ZooKeeperContainer, error) {
	t.Helper()

	if opts == nil {
		defaultOpts := DefaultZooKeeperOptions()
		opts = &defaultOpts
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        opts.Image,
			ExposedPorts: []string{"2181/tcp"},
			WaitingFor:   wait.ForListeningPort("2181/tcp").WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to start ZooKeeper container: %w", err)
	}

	// Register cleanup
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("failed to terminate ZooKeeper container: %v", err)
		}
	})

	host, err := container.Host(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get container host: %w", err)
	}

	port, err := container.MappedPort(ctx, "2181/tcp")
	if err != nil {
		return nil, fmt.Errorf("failed to get mapped port: %w", err)
	}

	return &ZooKeeperContainer{
		Container: container,
		Address:   fmt.Sprintf("%s:%s", host, port.Port()),
	}, nil
}

// Connect opens a ZooKeeper session to the container, closed when the
// test completes.
func (c *ZooKeeperContainer) Connect(t *testing.T) (*zk.Conn, error) {
	t.Helper()

	conn, events, err := zk.Connect([]string{c.Address}, 10*time.Second)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to ZooKeeper: %w", err)
	}

	// Drain session events until the connection is closed.
	go func() {
		for range events {}
	}()

	t.Cleanup(conn.Close)

	return conn, nil
}

// CreatePath creates a znode with data, creating missing parents.
func CreatePath(conn *zk.Conn, path string, data []byte) error {
	parts := strings.Split(strings.Trim(path, "/"), "/")

	parent := ""
	for _, part := range parts[:len(parts)-1] {
		parent += "/" + part
		if _, err := conn.Create(parent, nil, 0, zk.WorldACL(zk.PermAll)); err != nil && !errors.Is(err, zk.ErrNodeExists) {
			return fmt.Errorf("failed to create %s: %w", parent, err)
		}
	}

	if _, err := conn.Create(path, data, 0, zk.WorldACL(zk.PermAll)); err != nil {
		if !errors.Is(err, zk.ErrNodeExists) {
			return fmt.Errorf("failed to create %s: %w", path, err)
		}

		if _, err := conn.Set(path, data, -1); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}

	return nil
}
