package proxy_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/getmockd/mockd/pkg/mockendpoint"
	"github.com/getmockd/mockd/pkg/proxy"
)

func TestForwardRewritesPathAndParsesJSON(t *testing.T) {
	var gotPath string
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer upstream.Close()

	cfg := &mockendpoint.ProxyConfig{
		Enabled:   true,
		TargetURL: upstream.URL,
		PathRewrite: []mockendpoint.PathRewriteRule{
			{Pattern: "^/mock/api/(.*)$", Replacement: "/upstream/$1"},
		},
	}

	f := proxy.New()
	res, err := f.Forward(cfg, http.MethodGet, "/mock/api/users", "", http.Header{}, nil)
	require.NoError(t, err)
	assert.Equal(t, "/upstream/users", gotPath)
	assert.Equal(t, 200, res.Status)
	m, ok := res.Body.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, true, m["ok"])
}

func TestForwardStripsHopByHopHeaders(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Connection", "keep-alive")
		w.Header().Set("X-Upstream", "yes")
		w.WriteHeader(200)
	}))
	defer upstream.Close()

	cfg := &mockendpoint.ProxyConfig{Enabled: true, TargetURL: upstream.URL}
	f := proxy.New()
	res, err := f.Forward(cfg, http.MethodGet, "/x", "", http.Header{}, nil)
	require.NoError(t, err)
	assert.Empty(t, res.Headers.Get("Connection"))
	assert.Equal(t, "yes", res.Headers.Get("X-Upstream"))
}

func TestForwardCachesSuccessfulResponse(t *testing.T) {
	calls := 0
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"n":1}`))
	}))
	defer upstream.Close()

	cfg := &mockendpoint.ProxyConfig{Enabled: true, TargetURL: upstream.URL, CacheResponse: true, CacheTTL: 60}
	f := proxy.New()

	_, err := f.Forward(cfg, http.MethodGet, "/x", "", http.Header{}, nil)
	require.NoError(t, err)
	_, err = f.Forward(cfg, http.MethodGet, "/x", "", http.Header{}, nil)
	require.NoError(t, err)

	assert.Equal(t, 1, calls)
}

func TestForwardAppendsQueryString(t *testing.T) {
	var gotQuery string
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		w.WriteHeader(200)
	}))
	defer upstream.Close()

	cfg := &mockendpoint.ProxyConfig{Enabled: true, TargetURL: upstream.URL}
	f := proxy.New()
	_, err := f.Forward(cfg, http.MethodGet, "/x", "page=2", http.Header{}, nil)
	require.NoError(t, err)
	assert.Equal(t, "page=2", gotQuery)
}
