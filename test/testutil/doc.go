// Package testutil provides test utilities and mock implementations for wukong testing.
//
// # Mock Implementations
//
//   - [MockTransport]: Mock implementation of wukong.Transport with per-node handlers
//   - [MockMembership]: Mock implementation of wukong.MembershipSource with queued results
//   - [TestMetricsCollector]: Records every types.MetricsCollector call
//
// # Usage
//
//	transport := testutil.NewMockTransport().
//	    On("http://solr1:8983/solr/", testutil.Respond(503, "")).
//	    On("http://solr2:8983/solr/", testutil.RespondJSON(`{"response":{"docs":[]}}`))
//
//	router, _ := wukong.NewRouter([]string{"solr1:8983", "solr2:8983"},
//	    wukong.WithTransport(transport),
//	    wukong.WithNodeOrder(policy.NewFixedOrder()),
//	)
//
// # Integration Test Helpers
//
//   - StartEmbeddedNATS: Starts an embedded NATS server; MembershipBucket creates a KV bucket on it
//   - StartZooKeeper: Starts a ZooKeeper test container (requires Docker)
package testutil
