// Package integration_test provides end-to-end integration tests for the wukong library.
//
// These tests run routers and collections against fake Solr nodes served by
// httptest, with membership read from real coordination services.
//
// # Running Integration Tests
//
// Integration tests are skipped by default when using -short flag:
//
//	go test -short ./...           # Skips integration tests
//	go test ./test/integration/... # Runs integration tests
//
// # ZooKeeper Tests
//
// ZooKeeper tests require Docker and use testcontainers to start a
// ZooKeeper server. Set SKIP_INTEGRATION_TESTS=1 to skip them on machines
// without Docker.
//
// # NATS Tests
//
// NATS tests use an embedded NATS server with JetStream.
package integration_test
