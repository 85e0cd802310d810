package wukong

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"

	"github.com/arloliu/wukong/types"
)

// requestParams are added to every request.
var requestParams = map[string]string{
	"wt":         "json",
	"omitHeader": "true",
	"json.nl":    "map",
}

// NodePool holds the addresses a router sends requests to.
//
// The static addresses are the ones the router was configured with; the
// current addresses are replaced by membership refreshes and revert to the
// static ones after a quiet period following a full-pool failure.
type NodePool struct {
	mu          sync.Mutex
	static      []string
	current     []string
	lastRefresh time.Time
	lastError   time.Time
	lastRequest time.Time
}

func newNodePool(addresses []string, now time.Time) *NodePool {
	static := normalizeAddresses(addresses)

	return &NodePool{
		static:      static,
		current:     slices.Clone(static),
		lastRequest: now,
	}
}

// Addresses returns a copy of the current addresses.
func (p *NodePool) Addresses() []string {
	p.mu.Lock()
	defer p.mu.Unlock()

	return slices.Clone(p.current)
}

// Static returns a copy of the configured addresses.
func (p *NodePool) Static() []string {
	p.mu.Lock()
	defer p.mu.Unlock()

	return slices.Clone(p.static)
}

// LastRefresh returns the time of the last membership refresh attempt.
func (p *NodePool) LastRefresh() time.Time {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.lastRefresh
}

// LastError returns the time of the last full-pool failure, or the zero time.
func (p *NodePool) LastError() time.Time {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.lastError
}

func (p *NodePool) replace(addresses []string) int {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.current = addresses

	return len(p.current)
}

// touch records a new request and reports whether the refresh interval
// elapsed since the previous one.
func (p *NodePool) touch(now time.Time, interval time.Duration) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	due := now.Sub(p.lastRequest) > interval
	p.lastRequest = now

	return due
}

// resetIfQuiet reverts to the static addresses once the last failure is
// older than period.
func (p *NodePool) resetIfQuiet(now time.Time, period time.Duration) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.lastError.IsZero() || now.Sub(p.lastError) <= period {
		return false
	}

	p.lastError = time.Time{}
	if len(p.static) > 0 {
		p.current = slices.Clone(p.static)
	}

	return true
}

func (p *NodePool) markError(now time.Time) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.lastError = now
}

func (p *NodePool) markRefresh(now time.Time) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.lastRefresh = now
}

// Request is a request against the collection API, relative to a node address.
type Request struct {
	// Method is "GET" or "POST".
	Method string

	// Path is relative to the node address, e.g. "cities/select".
	Path string

	// Params are sent as the query string.
	Params url.Values

	// Body is the JSON request body of POST requests.
	Body []byte
}

// Router sends requests to a pool of nodes with failover.
//
// Each request is tried against every address of the pool in the order
// given by the configured NodeOrder until one answers with status 200.
// When the whole pool fails and a membership source is configured, the pool
// is refreshed and the request is retried exactly once.
//
// A Router may be shared by goroutines; its pool is guarded by a mutex but
// refresh decisions are taken per call, so concurrent requests may refresh
// more often than the refresh interval.
type Router struct {
	config *ClientConfig
	pool   *NodePool
}

// NewRouter creates a router over static addresses.
//
// Addresses without a scheme are normalized to "http://<host>/solr/". When a
// membership source is configured, it is consulted once, best effort.
//
// Parameters:
//   - addresses: Configured node addresses (may be empty with a membership source)
//   - opts: Optional configuration options
//
// Returns:
//   - *Router: The router
//   - error: KindConfiguration error for invalid options or no address source
//
// Example:
//
//	router, err := wukong.NewRouter([]string{"http://solr1:8983/solr/", "solr2:8983"},
//	    wukong.WithTimeout(5*time.Second),
//	)
func NewRouter(addresses []string, opts ...Option) (*Router, error) {
	config := DefaultConfig()
	for _, opt := range opts {
		opt(config)
	}

	if err := config.validate(); err != nil {
		return nil, err
	}

	if len(addresses) == 0 && config.Membership == nil {
		return nil, types.NewError(types.KindConfiguration, "no node addresses and no membership source configured")
	}

	r := &Router{
		config: config,
		pool:   newNodePool(addresses, config.Clock()),
	}
	config.Metrics.SetPoolSize(len(r.pool.current))

	if config.Membership != nil {
		ctx, cancel := context.WithTimeout(context.Background(), config.Timeout)
		r.Refresh(ctx)
		cancel()
	}

	return r, nil
}

// Pool returns the router's node pool.
func (r *Router) Pool() *NodePool {
	return r.pool
}

// Config returns the router configuration.
func (r *Router) Config() *ClientConfig {
	return r.config
}

// Refresh replaces the current pool with the membership source's active
// addresses.
//
// Failures are soft: they are logged and the current pool is kept.
//
// Returns:
//   - bool: true when the source returned a non-empty address list
func (r *Router) Refresh(ctx context.Context) bool {
	if r.config.Membership == nil {
		return false
	}

	r.config.Metrics.IncRefreshTotal()
	r.pool.markRefresh(r.config.Clock())

	addrs, err := r.config.Membership.ActiveAddresses(ctx, r.config.Resource)
	if err != nil {
		r.config.Metrics.IncRefreshError()
		r.config.Logger.Warn("membership refresh failed",
			"resource", r.config.Resource,
			"error", err,
		)

		return false
	}

	if len(addrs) == 0 {
		r.config.Metrics.IncRefreshError()
		r.config.Logger.Warn("membership source reported no active nodes",
			"resource", r.config.Resource,
		)

		return false
	}

	size := r.pool.replace(normalizeAddresses(addrs))
	r.config.Metrics.SetPoolSize(size)
	r.config.Logger.Debug("node pool refreshed",
		"resource", r.config.Resource,
		"nodes", size,
	)

	return true
}

// Get sends a GET request.
//
// Parameters:
//   - ctx: Context for cancellation
//   - path: Path relative to the node address
//   - params: Query parameters
//
// Returns:
//   - map[string]any: The decoded JSON response
//   - error: KindTransport or KindParse error
func (r *Router) Get(ctx context.Context, path string, params url.Values) (map[string]any, error) {
	return r.Request(ctx, &Request{Method: http.MethodGet, Path: path, Params: params})
}

// Post sends a POST request with a JSON body.
func (r *Router) Post(ctx context.Context, path string, params url.Values, body []byte) (map[string]any, error) {
	return r.Request(ctx, &Request{Method: http.MethodPost, Path: path, Params: params, Body: body})
}

// Request sends a request with failover and returns the decoded JSON object.
//
// Parameters:
//   - ctx: Context for cancellation
//   - req: The request
//
// Returns:
//   - map[string]any: The decoded response; numbers are json.Number
//   - error: KindTransport error when no node succeeded, KindParse error when
//     a node answered 200 with a body that is not a JSON object
func (r *Router) Request(ctx context.Context, req *Request) (map[string]any, error) {
	if req == nil {
		return nil, types.NewError(types.KindConfiguration, "request is nil")
	}

	return r.request(ctx, req, uuid.NewString(), false)
}

func (r *Router) request(ctx context.Context, req *Request, requestID string, retry bool) (map[string]any, error) {
	cfg := r.config

	if !retry {
		now := cfg.Clock()
		if r.pool.resetIfQuiet(now, cfg.ErrorResetPeriod) {
			cfg.Logger.Info("reverting to configured nodes after quiet period",
				"request_id", requestID,
			)
			cfg.Metrics.SetPoolSize(len(r.pool.Addresses()))
		}

		if r.pool.touch(now, cfg.RefreshInterval) && cfg.Membership != nil {
			r.Refresh(ctx)
		}
	}

	addrs := cfg.NodeOrder.Order(r.pool.Addresses())
	params := withRequestParams(req.Params)
	observer, _ := cfg.NodeOrder.(NodeObserver)

	var errs *multierror.Error
	for i, addr := range addrs {
		if err := ctx.Err(); err != nil {
			return nil, types.WrapError(types.KindTransport, "request cancelled", err)
		}

		resp, err := r.attempt(ctx, addr, req, params)
		if err == nil && resp.StatusCode == http.StatusOK {
			if observer != nil {
				observer.OnSuccess(addr)
			}

			return decodeResponse(resp.Body)
		}

		var nodeErr error
		if err != nil {
			nodeErr = &types.NodeError{Node: addr, Cause: err}
		} else {
			nodeErr = &types.StatusError{Node: addr, StatusCode: resp.StatusCode, Reason: resp.Reason}
		}
		errs = multierror.Append(errs, nodeErr)

		cfg.Metrics.IncRequestError(addr)
		if observer != nil {
			observer.OnFailure(addr, nodeErr)
		}

		cfg.Logger.Debug("node attempt failed",
			"request_id", requestID,
			"node", addr,
			"path", req.Path,
			"error", nodeErr,
		)

		if i+1 < len(addrs) {
			cfg.Metrics.IncFailoverTotal(addr, addrs[i+1])
		}
	}

	r.pool.markError(cfg.Clock())
	cfg.Metrics.IncPoolExhausted()

	if !retry && cfg.Membership != nil && r.Refresh(ctx) {
		cfg.Metrics.IncRetryCycle()
		cfg.Logger.Info("all nodes failed, retrying with refreshed pool",
			"request_id", requestID,
			"path", req.Path,
		)

		return r.request(ctx, req, requestID, true)
	}

	cfg.Logger.Error("unable to fetch from any node",
		"request_id", requestID,
		"path", req.Path,
		"nodes", len(addrs),
	)

	return nil, types.WrapError(types.KindTransport, "Unable to fetch from any SOLR nodes", errs.ErrorOrNil())
}

func (r *Router) attempt(ctx context.Context, addr string, req *Request, params url.Values) (*types.TransportResponse, error) {
	cfg := r.config

	header := map[string]string{"Content-Type": "application/json"}
	treq := &types.TransportRequest{
		Method:  req.Method,
		URL:     joinURL(addr, req.Path),
		Params:  params,
		Header:  header,
		Body:    req.Body,
		Timeout: cfg.Timeout,
	}

	cfg.Metrics.IncRequestTotal(addr)
	start := time.Now()
	resp, err := cfg.Transport.Send(ctx, treq)
	cfg.Metrics.ObserveRequestDuration(addr, time.Since(start).Seconds())

	return resp, err
}

func withRequestParams(params url.Values) url.Values {
	out := make(url.Values, len(params)+len(requestParams))
	for k, v := range params {
		out[k] = slices.Clone(v)
	}

	for k, v := range requestParams {
		out.Set(k, v)
	}

	return out
}

// decodeResponse decodes a 200 body holding exactly one JSON object.
// Numbers are kept as json.Number so large identifiers survive.
func decodeResponse(body []byte) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var out map[string]any
	if err := dec.Decode(&out); err != nil || out == nil {
		return nil, types.NewError(types.KindParse, "Parsing Error: "+string(body))
	}

	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return nil, types.NewError(types.KindParse, "Parsing Error: "+string(body))
	}

	return out, nil
}

// normalizeAddresses normalizes addresses and drops empty entries and duplicates.
func normalizeAddresses(addresses []string) []string {
	out := make([]string, 0, len(addresses))
	for _, a := range addresses {
		n := NormalizeAddress(a)
		if n == "" || slices.Contains(out, n) {
			continue
		}
		out = append(out, n)
	}

	return out
}

// NormalizeAddress turns a node address into a base URL with a trailing slash.
//
// Bare "host:port" addresses, as reported by membership sources, become
// "http://host:port/solr/"; addresses with a scheme only gain the slash.
func NormalizeAddress(addr string) string {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return ""
	}

	if strings.Contains(addr, "://") {
		return strings.TrimSuffix(addr, "/") + "/"
	}

	addr = strings.TrimSuffix(addr, "/")
	if !strings.HasSuffix(addr, "/solr") {
		addr += "/solr"
	}

	return "http://" + addr + "/"
}

func joinURL(base, path string) string {
	return strings.TrimSuffix(base, "/") + "/" + strings.TrimPrefix(path, "/")
}
