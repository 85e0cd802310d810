// Package wukong is a Solr client: document mapping, a query DSL and
// resilient request routing across SolrCloud nodes.
//
// # Key Features
//
//   - Query DSL: keyword filters ("name__eq") composed with And/Or/Not (package query)
//   - Immutable query builder compiling to Solr request parameters
//   - Document mapping validated against the collection schema (package document)
//   - Failover across a pool of nodes with a one-shot membership refresh and retry
//   - Membership from ZooKeeper cluster state or a NATS KV bucket (package membership)
//
// # Basic Usage
//
//	cities, err := wukong.Open("cities", []string{"solr1:8983", "solr2:8983"})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	m, err := cities.Documents().Filter(
//	    query.K("country__eq", "TW"),
//	    query.K("population__ge", 1000000),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	docs, err := m.SortBy("-population").Limit(10).All(ctx)
//
// # Routing
//
// A Router attempts the nodes of its pool in the order chosen by its NodeOrder
// (a uniform shuffle by default) and returns the first response with status
// 200. Connection failures and other statuses move on to the next node. When
// every node failed and a MembershipSource is configured, the pool is
// refreshed and the request retried once against the refreshed pool.
//
// When a membership source is configured and the router was idle for longer
// than the refresh interval, the pool is refreshed before the next request.
// After a full-pool failure, the pool reverts to the configured addresses
// once no further failure happened for the error reset period.
//
// # Error Handling
//
// Every failure is a *types.Error carrying a kind and a human-readable message:
//
//	docs, err := m.All(ctx)
//	if errors.Is(err, types.ErrTransport) {
//	    // no node answered
//	}
//
// Per-node failures of a failed request are aggregated in the cause; a node
// that answered with a non-200 status is reachable through errors.As:
//
//	var statusErr *types.StatusError
//	if errors.As(err, &statusErr) {
//	    log.Printf("%s answered %d %s", statusErr.Node, statusErr.StatusCode, statusErr.Reason)
//	}
//
// # Concurrency
//
// Routers and collections may be shared between goroutines. Query managers are
// immutable values and can be shared freely.
package wukong
