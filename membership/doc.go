// Package membership provides sources of active Solr nodes for routers.
//
// A router configured with a [wukong.MembershipSource] replaces its node pool
// with the source's active addresses periodically and after every node of
// the pool failed. All sources implement that interface:
//   - [ZooKeeper]: reads the SolrCloud cluster state from ZooKeeper
//   - [NATS]: reads node announcements from a NATS KV bucket
//   - [Local]: in-memory, set programmatically
//
// # ZooKeeper
//
// [ZooKeeper] opens a short-lived session per lookup and reads:
//   - /collections/<name>/state.json for every collection
//   - /clusterstate.json, the legacy single-file state, when present
//   - /aliases.json; an alias resolves to the nodes of its first member
//
// Only replicas whose state is "active" are reported, as "host:port":
//
//	servers, chroot := membership.ParseConnectString("zk1:2181,zk2:2181/solr")
//	source, _ := membership.NewZooKeeper(servers,
//	    membership.WithChroot(chroot),
//	    membership.WithTimeout(3*time.Second),
//	)
//
//	cities, err := wukong.Open("cities", nil, wukong.WithMembershipSource(source))
//
// # NATS
//
// [NATS] reads a JSON document per resource from a NATS KV bucket:
//
//	{"addresses": ["solr1:8983", "solr2:8983"]}
//
// The key is the configured prefix followed by the collection name, e.g.
// "wukong.members.cities". [NATS.Publish] and [NATS.Remove] maintain it:
//
//	kv, _ := js.KeyValue(ctx, "wukong")
//	source, _ := membership.NewNATS(kv)
//	_ = source.Publish(ctx, "cities", "solr1:8983", "solr2:8983")
//
// # Lookup Semantics
//
// Looking up the resource "" returns every active node of the cluster.
// Failures are returned as errors of kind [types.KindMembership]; routers
// treat them as soft and keep their current pool.
package membership
