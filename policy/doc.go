// Package policy provides node ordering strategies for wukong routers.
//
// A router asks its order for the sequence in which the nodes of its pool
// are attempted. All strategies implement wukong.NodeOrder:
//
//	type NodeOrder interface {
//	    Order(addresses []string) []string
//	}
//
// Available strategies:
//
//   - [RandomOrder]: Uniform shuffle per request (default); WithSeed makes it deterministic
//   - [FixedOrder]: Keeps the pool order
//   - [RoundRobinOrder]: Rotates the pool by one node per request
//   - [StickyOrder]: Prefers one node for cache affinity, fails over to another
//   - [CircuitBreaker]: Demotes nodes with consecutive failures behind healthy ones
//
// StickyOrder and CircuitBreaker also implement wukong.NodeObserver and are
// notified by the router of every attempt outcome.
//
// Example:
//
//	router, _ := wukong.NewRouter(addrs,
//	    wukong.WithNodeOrder(policy.NewCircuitBreaker(
//	        policy.WithThreshold(3),
//	        policy.WithResetTimeout(time.Minute),
//	    )),
//	)
package policy
