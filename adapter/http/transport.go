package http

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/arloliu/wukong/types"
)

// defaultMaxIdleConnsPerHost keeps connections to every node of a small
// cluster warm.
const defaultMaxIdleConnsPerHost = 16

// Transport sends node attempts with a *http.Client.
//
// Transport is safe for concurrent use.
type Transport struct {
	client *http.Client
}

// Option configures a Transport.
type Option func(*Transport)

// WithClient sets the HTTP client.
//
// Parameters:
//   - client: The client used for every attempt
//
// Returns:
//   - Option: Configuration option
func WithClient(client *http.Client) Option {
	return func(t *Transport) {
		if client != nil {
			t.client = client
		}
	}
}

// New creates a Transport.
//
// By default a dedicated client is created whose connection pool keeps
// several idle connections per node. Timeouts are applied per attempt from
// the request, not on the client.
//
// Parameters:
//   - opts: Optional configuration options
//
// Returns:
//   - *Transport: A new transport
func New(opts ...Option) *Transport {
	base, ok := http.DefaultTransport.(*http.Transport)
	var rt http.RoundTripper = http.DefaultTransport
	if ok {
		cloned := base.Clone()
		cloned.MaxIdleConnsPerHost = defaultMaxIdleConnsPerHost
		rt = cloned
	}

	t := &Transport{client: &http.Client{Transport: rt}}
	for _, opt := range opts {
		opt(t)
	}

	return t
}

// Send performs one attempt.
//
// Parameters:
//   - ctx: Context for cancellation
//   - req: The attempt; Params become the query string and Timeout bounds it
//
// Returns:
//   - *types.TransportResponse: Status, reason and body of the answer
//   - error: Connection failure, timeout or body read failure
func (t *Transport) Send(ctx context.Context, req *types.TransportRequest) (*types.TransportResponse, error) {
	if req == nil {
		return nil, errors.New("wukong/http: request is nil")
	}

	if req.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, req.Timeout)
		defer cancel()
	}

	target := req.URL
	if len(req.Params) > 0 {
		sep := "?"
		if strings.Contains(target, "?") {
			sep = "&"
		}
		target += sep + req.Params.Encode()
	}

	var body io.Reader
	if req.Body != nil {
		body = bytes.NewReader(req.Body)
	}

	method := req.Method
	if method == "" {
		method = http.MethodGet
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, err
	}

	for k, v := range req.Header {
		httpReq.Header.Set(k, v)
	}

	resp, err := t.client.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	return &types.TransportResponse{
		StatusCode: resp.StatusCode,
		Reason:     reason(resp),
		Body:       data,
	}, nil
}

// reason extracts the reason phrase from the status line ("404 Not Found").
func reason(resp *http.Response) string {
	if r, ok := strings.CutPrefix(resp.Status, strconv.Itoa(resp.StatusCode)+" "); ok && r != "" {
		return r
	}

	return http.StatusText(resp.StatusCode)
}
