package testutil

import (
	"testing"
	"time"

	"github.com/nats-io/nats-server/v2/server"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/stretchr/testify/require"
)

// EmbeddedNATS is an in-process NATS server with JetStream enabled.
type EmbeddedNATS struct {
	// URL is the client URL of the server, e.g. "nats://127.0.0.1:40211".
	URL string

	// JetStream is a JetStream context on a connection owned by the test.
	JetStream jetstream.JetStream
}

// StartEmbeddedNATS starts an embedded NATS server for membership tests.
//
// The server listens on a random port on 127.0.0.1 and keeps JetStream
// storage under t.TempDir(). Server and connection are shut down when the
// test completes.
//
// Parameters:
//   - t: The testing context
//
// Returns:
//   - *EmbeddedNATS: The running server
func StartEmbeddedNATS(t *testing.T) *EmbeddedNATS {
	t.Helper()

	ns, err := server.NewServer(&server.Options{
		Host:      "127.0.0.1",
		Port:      -1,
		JetStream: true,
		StoreDir:  t.TempDir(),
	})
	require.NoError(t, err, "failed to create NATS server")

	ns.Start()
	t.Cleanup(ns.Shutdown)

	if !ns.ReadyForConnections(5 * time.Second) {
		t.Fatal("NATS server not ready for connections")
	}

	nc, err := nats.Connect(ns.ClientURL())
	require.NoError(t, err, "failed to connect to NATS server")
	t.Cleanup(nc.Close)

	js, err := jetstream.New(nc)
	require.NoError(t, err, "failed to create JetStream context")

	return &EmbeddedNATS{URL: ns.ClientURL(), JetStream: js}
}

// MembershipBucket creates a KV bucket holding node announcements.
//
// Only the latest revision of a key matters for membership, so the bucket
// keeps a history of one.
//
// Parameters:
//   - t: The testing context
//   - bucket: The name of the KV bucket
//
// Returns:
//   - jetstream.KeyValue: The created bucket
func (n *EmbeddedNATS) MembershipBucket(t *testing.T, bucket string) jetstream.KeyValue {
	t.Helper()

	kv, err := n.JetStream.CreateKeyValue(t.Context(), jetstream.KeyValueConfig{
		Bucket:      bucket,
		Description: "wukong node membership",
		History:     1,
	})
	require.NoError(t, err, "failed to create KV bucket %s", bucket)

	return kv
}
