package membership

import (
	"context"
	"maps"
	"slices"
	"sync"

	"github.com/arloliu/wukong"
)

// Local is an in-memory membership source for tests and demos.
//
// Unlike ZooKeeper and NATS, nodes are set programmatically per resource.
type Local struct {
	mu        sync.RWMutex
	resources map[string][]string
}

var _ wukong.MembershipSource = (*Local)(nil)

// NewLocal creates an empty in-memory membership source.
//
// Returns:
//   - *Local: A new local membership source
func NewLocal() *Local {
	return &Local{resources: make(map[string][]string)}
}

// Set replaces the active nodes of a resource.
//
// Parameters:
//   - resource: Collection or alias name
//   - addresses: Active node addresses
func (l *Local) Set(resource string, addresses ...string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.resources[resource] = slices.Clone(addresses)
}

// Remove forgets a resource.
func (l *Local) Remove(resource string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	delete(l.resources, resource)
}

// ActiveAddresses returns the nodes set for resource, or the sorted union
// of every resource when resource is "".
func (l *Local) ActiveAddresses(_ context.Context, resource string) ([]string, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if resource != "" {
		return slices.Clone(l.resources[resource]), nil
	}

	union := make(map[string]struct{})
	for _, addrs := range l.resources {
		for _, a := range addrs {
			union[a] = struct{}{}
		}
	}

	return slices.Sorted(maps.Keys(union)), nil
}
