package testutil

import (
	"context"
	"errors"
	"net/http"
	"slices"
	"strings"
	"sync"

	"github.com/arloliu/wukong"
	"github.com/arloliu/wukong/types"
)

// ErrConnectionRefused is returned by MockTransport for nodes without a handler.
var ErrConnectionRefused = errors.New("testutil: connection refused")

// NodeHandler answers the attempts sent to one node.
type NodeHandler func(req *types.TransportRequest) (*types.TransportResponse, error)

// Respond returns a handler answering with a fixed status and body.
func Respond(status int, body string) NodeHandler {
	return func(*types.TransportRequest) (*types.TransportResponse, error) {
		return &types.TransportResponse{
			StatusCode: status,
			Reason:     http.StatusText(status),
			Body:       []byte(body),
		}, nil
	}
}

// RespondJSON returns a handler answering 200 with body.
func RespondJSON(body string) NodeHandler {
	return Respond(http.StatusOK, body)
}

// Fail returns a handler failing every attempt with err.
func Fail(err error) NodeHandler {
	return func(*types.TransportRequest) (*types.TransportResponse, error) {
		return nil, err
	}
}

// MockTransport is a mock implementation of wukong.Transport for testing.
//
// Handlers are registered per node base URL (e.g. "http://solr1:8983/solr/")
// and selected by prefix of the attempted URL. Attempts to nodes without
// a handler fail with ErrConnectionRefused.
type MockTransport struct {
	mu       sync.Mutex
	handlers map[string]NodeHandler
	requests []*types.TransportRequest
	nodes    []string
}

// Compile-time assertion that MockTransport implements wukong.Transport.
var _ wukong.Transport = (*MockTransport)(nil)

// NewMockTransport creates a new mock transport.
func NewMockTransport() *MockTransport {
	return &MockTransport{handlers: make(map[string]NodeHandler)}
}

// On registers the handler of a node, replacing any previous one.
func (m *MockTransport) On(node string, h NodeHandler) *MockTransport {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.handlers[node] = h

	return m
}

// Send records the attempt and dispatches it to the node's handler.
func (m *MockTransport) Send(ctx context.Context, req *types.TransportRequest) (*types.TransportResponse, error) {
	m.mu.Lock()
	node, h := m.match(req.URL)
	m.requests = append(m.requests, req)
	m.nodes = append(m.nodes, node)
	m.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if h == nil {
		return nil, ErrConnectionRefused
	}

	return h(req)
}

// match must be called with m.mu held.
func (m *MockTransport) match(url string) (string, NodeHandler) {
	var best string
	for node := range m.handlers {
		if strings.HasPrefix(url, node) && len(node) > len(best) {
			best = node
		}
	}

	if best == "" {
		return url, nil
	}

	return best, m.handlers[best]
}

// Requests returns the recorded attempts in order.
func (m *MockTransport) Requests() []*types.TransportRequest {
	m.mu.Lock()
	defer m.mu.Unlock()

	return slices.Clone(m.requests)
}

// Nodes returns the attempted nodes in order. Attempts to unknown nodes are
// reported by URL.
func (m *MockTransport) Nodes() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	return slices.Clone(m.nodes)
}

// LastRequest returns the last recorded attempt, or nil.
func (m *MockTransport) LastRequest() *types.TransportRequest {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.requests) == 0 {
		return nil
	}

	return m.requests[len(m.requests)-1]
}

// Reset forgets recorded attempts but keeps handlers.
func (m *MockTransport) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.requests = nil
	m.nodes = nil
}

// MockMembership is a mock implementation of wukong.MembershipSource.
//
// Queued results are returned first, one per call; afterwards every call
// returns the current addresses and error.
type MockMembership struct {
	mu        sync.Mutex
	queue     []membershipResult
	addresses []string
	err       error
	resources []string
}

type membershipResult struct {
	addresses []string
	err       error
}

// Compile-time assertion that MockMembership implements wukong.MembershipSource.
var _ wukong.MembershipSource = (*MockMembership)(nil)

// NewMockMembership creates a mock membership source reporting addresses.
func NewMockMembership(addresses ...string) *MockMembership {
	return &MockMembership{addresses: addresses}
}

// SetAddresses sets the addresses returned once the queue is empty.
func (m *MockMembership) SetAddresses(addresses ...string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.addresses = addresses
	m.err = nil
}

// SetError makes calls fail once the queue is empty.
func (m *MockMembership) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.err = err
}

// Enqueue queues the result of one upcoming call.
func (m *MockMembership) Enqueue(addresses []string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.queue = append(m.queue, membershipResult{addresses: addresses, err: err})
}

// ActiveAddresses records the call and returns the next result.
func (m *MockMembership) ActiveAddresses(_ context.Context, resource string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.resources = append(m.resources, resource)

	if len(m.queue) > 0 {
		res := m.queue[0]
		m.queue = m.queue[1:]

		return slices.Clone(res.addresses), res.err
	}

	if m.err != nil {
		return nil, m.err
	}

	return slices.Clone(m.addresses), nil
}

// Calls returns the number of lookups.
func (m *MockMembership) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return len(m.resources)
}

// Resources returns the looked up resources in order.
func (m *MockMembership) Resources() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	return slices.Clone(m.resources)
}
