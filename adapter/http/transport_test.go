package http_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	httpadapter "github.com/arloliu/wukong/adapter/http"
	"github.com/arloliu/wukong/types"
)

func TestSendGet(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/solr/cities/select", r.URL.Path)
		assert.Equal(t, "name:x", r.URL.Query().Get("q"))
		assert.Equal(t, []string{"a", "b"}, r.URL.Query()["fl"])
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	resp, err := httpadapter.New().Send(t.Context(), &types.TransportRequest{
		Method: http.MethodGet,
		URL:    srv.URL + "/solr/cities/select",
		Params: url.Values{"q": {"name:x"}, "fl": {"a", "b"}},
		Header: map[string]string{"Content-Type": "application/json"},
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "OK", resp.Reason)
	assert.JSONEq(t, `{"ok":true}`, string(resp.Body))
}

func TestSendPostBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "true", r.URL.Query().Get("commit"))

		body, err := io.ReadAll(r.Body)
		assert.NoError(t, err)
		assert.JSONEq(t, `[{"id":"1"}]`, string(body))

		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	resp, err := httpadapter.New().Send(t.Context(), &types.TransportRequest{
		Method: http.MethodPost,
		URL:    srv.URL + "/solr/cities/update/json",
		Params: url.Values{"commit": {"true"}},
		Body:   []byte(`[{"id":"1"}]`),
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestSendNonOKIsNotAnError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("down"))
	}))
	defer srv.Close()

	resp, err := httpadapter.New().Send(t.Context(), &types.TransportRequest{URL: srv.URL})
	require.NoError(t, err)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Equal(t, "Service Unavailable", resp.Reason)
	assert.Equal(t, "down", string(resp.Body))
}

func TestSendTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	_, err := httpadapter.New().Send(t.Context(), &types.TransportRequest{
		URL:     srv.URL,
		Timeout: 50 * time.Millisecond,
	})
	require.Error(t, err)
}

func TestSendConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	addr := srv.URL
	srv.Close()

	_, err := httpadapter.New().Send(t.Context(), &types.TransportRequest{URL: addr})
	require.Error(t, err)
}

func TestWithClient(t *testing.T) {
	var used bool
	client := &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
		used = true

		return &http.Response{
			StatusCode: http.StatusTeapot,
			Status:     "418 I'm a teapot",
			Body:       io.NopCloser(http.NoBody),
			Request:    r,
		}, nil
	})}

	resp, err := httpadapter.New(httpadapter.WithClient(client)).Send(t.Context(), &types.TransportRequest{
		URL: "http://solr.invalid/solr/",
	})
	require.NoError(t, err)
	assert.True(t, used)
	assert.Equal(t, "I'm a teapot", resp.Reason)
}

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r)
}
