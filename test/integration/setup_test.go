package integration_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync/atomic"
	"testing"
)

// requireIntegration skips the test in short mode or when integration tests
// are disabled.
func requireIntegration(t *testing.T) {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	if os.Getenv("SKIP_INTEGRATION_TESTS") == "1" {
		t.Skip("skipping integration test (SKIP_INTEGRATION_TESTS=1)")
	}
}

// solrNode is a fake Solr node answering select requests of one collection.
type solrNode struct {
	server *httptest.Server
	name   string
	hits   atomic.Int64
}

func startSolrNode(t *testing.T, name, collection string, docs ...map[string]any) *solrNode {
	t.Helper()

	node := &solrNode{name: name}
	node.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		node.hits.Add(1)

		if r.URL.Path != "/solr/"+collection+"/select" {
			http.NotFound(w, r)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"response": map[string]any{
				"numFound": len(docs),
				"start":    0,
				"docs":     docs,
			},
			"node": name,
		})
	}))
	t.Cleanup(node.server.Close)

	return node
}

// host returns the node address as "host:port".
func (n *solrNode) host() string {
	return strings.TrimPrefix(n.server.URL, "http://")
}

// baseURL returns the base URL SolrCloud publishes for the node.
func (n *solrNode) baseURL() string {
	return n.server.URL + "/solr"
}

// collectionState renders a state.json with one replica per node.
func collectionState(collection string, active []*solrNode, down ...*solrNode) []byte {
	replicas := make(map[string]any)
	i := 0
	add := func(n *solrNode, state string) {
		i++
		replicas[fmt.Sprintf("core_node%d", i)] = map[string]any{
			"state":    state,
			"base_url": n.baseURL(),
		}
	}

	for _, n := range active {
		add(n, "active")
	}
	for _, n := range down {
		add(n, "down")
	}

	data, _ := json.Marshal(map[string]any{
		collection: map[string]any{
			"shards": map[string]any{
				"shard1": map[string]any{"replicas": replicas},
			},
		},
	})

	return data
}
