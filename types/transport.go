package types

import (
	"net/url"
	"time"
)

// TransportRequest is a single HTTP attempt against one node.
type TransportRequest struct {
	// Method is the HTTP method ("GET" or "POST").
	Method string

	// URL is the absolute URL of the attempt, without query string.
	URL string

	// Params are encoded as the query string.
	Params url.Values

	// Header holds request headers.
	Header map[string]string

	// Body is sent as-is; nil for GET requests.
	Body []byte

	// Timeout bounds the attempt. Zero means no per-attempt limit beyond ctx.
	Timeout time.Duration
}

// TransportResponse is the raw answer of a node.
type TransportResponse struct {
	// StatusCode is the HTTP status code.
	StatusCode int

	// Reason is the status reason phrase, e.g. "Not Found".
	Reason string

	// Body is the response body.
	Body []byte
}
