// Package http provides the net/http transport used by wukong routers.
//
// A [Transport] performs one attempt against one node: it encodes the request
// parameters as the query string, applies the attempt timeout and returns the
// status code, reason phrase and body of the answer. Non-200 answers are not
// errors at this level; the router decides whether to fail over.
//
// # Usage
//
//	transport := httpadapter.New(
//	    httpadapter.WithClient(&http.Client{Transport: customRoundTripper}),
//	)
//
//	router, _ := wukong.NewRouter(addrs, wukong.WithTransport(transport))
//
// Any type implementing wukong.Transport can replace it, e.g. for tests.
package http
