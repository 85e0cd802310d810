package wukong

import (
	"context"
)

// Transport performs a single request attempt against one node.
//
// A returned error means the node could not be reached (connection refused,
// timeout, reset). Any HTTP answer, including non-200 statuses, is returned
// as a response with a nil error.
//
// Implementations MUST be safe for concurrent use from multiple goroutines.
// The default implementation is adapter/http.Transport.
type Transport interface {
	// Send executes the attempt.
	//
	// Parameters:
	//   - ctx: Context for cancellation
	//   - req: The attempt to perform
	//
	// Returns:
	//   - *TransportResponse: The node's answer
	//   - error: Connection-level failure
	Send(ctx context.Context, req *TransportRequest) (*TransportResponse, error)
}

// MembershipSource reports the nodes currently serving a resource.
//
// Implementations include membership.ZooKeeper (SolrCloud cluster state),
// membership.NATS (NATS KV backed) and membership.Local (in-memory).
type MembershipSource interface {
	// ActiveAddresses returns the addresses of the active nodes.
	//
	// Parameters:
	//   - ctx: Context for cancellation
	//   - resource: Collection or alias name; "" returns every active node
	//
	// Returns:
	//   - []string: Node addresses such as "10.0.0.1:8983"
	//   - error: Membership failure
	ActiveAddresses(ctx context.Context, resource string) ([]string, error)
}

// NodeOrder decides the order in which nodes are attempted.
//
// Order is called once per attempt cycle with a copy of the current pool.
// Implementations MUST be safe for concurrent use from multiple goroutines.
//
// Implementations include policy.RandomOrder (the default uniform shuffle),
// policy.FixedOrder, policy.RoundRobinOrder and policy.CircuitBreaker.
type NodeOrder interface {
	// Order returns the addresses in attempt order. It may reorder the
	// given slice in place and return it.
	Order(addresses []string) []string
}

// NodeObserver is an optional interface for node orders that track outcomes.
//
// Orders implementing this interface are notified by the router after every
// attempt, which enables demoting failing nodes.
type NodeObserver interface {
	// OnSuccess is called when a node answered with status 200.
	OnSuccess(node string)

	// OnFailure is called when a node could not be reached or answered
	// with another status.
	OnFailure(node string, err error)
}
