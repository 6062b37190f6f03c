package ratelimit_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/getmockd/mockd/pkg/mockendpoint"
	"github.com/getmockd/mockd/pkg/ratelimit"
)

func nowPlus(seconds int) time.Time {
	return time.Now().Add(time.Duration(seconds) * time.Second)
}

func TestAllowEnforcesWindowAndBurst(t *testing.T) {
	l := ratelimit.New()
	cfg := &mockendpoint.RateLimitConfig{RequestsPerWindow: 2, WindowSeconds: 60, BurstLimit: 1}

	d1 := l.Allow("ep1", "k", cfg)
	d2 := l.Allow("ep1", "k", cfg)
	d3 := l.Allow("ep1", "k", cfg)
	d4 := l.Allow("ep1", "k", cfg)

	assert.True(t, d1.Allowed)
	assert.True(t, d2.Allowed)
	assert.True(t, d3.Allowed) // burst
	assert.False(t, d4.Allowed)
}

func TestAllowKeysAreIndependent(t *testing.T) {
	l := ratelimit.New()
	cfg := &mockendpoint.RateLimitConfig{RequestsPerWindow: 1, WindowSeconds: 60}

	assert.True(t, l.Allow("ep1", "a", cfg).Allowed)
	assert.True(t, l.Allow("ep1", "b", cfg).Allowed)
	assert.False(t, l.Allow("ep1", "a", cfg).Allowed)
}

func TestKeyByHeaderMissingIsUnknown(t *testing.T) {
	cfg := &mockendpoint.RateLimitConfig{KeyBy: mockendpoint.KeyByHeader, KeyName: "X-Client"}
	r := httptest.NewRequest(http.MethodGet, "/x", nil)
	assert.Equal(t, "unknown", ratelimit.Key(cfg, r))
}

func TestKeyByQueryPresent(t *testing.T) {
	cfg := &mockendpoint.RateLimitConfig{KeyBy: mockendpoint.KeyByQuery, KeyName: "tenant"}
	r := httptest.NewRequest(http.MethodGet, "/x?tenant=acme", nil)
	assert.Equal(t, "acme", ratelimit.Key(cfg, r))
}

func TestKeyByIPUsesRemoteAddr(t *testing.T) {
	cfg := &mockendpoint.RateLimitConfig{KeyBy: mockendpoint.KeyByIP}
	r := httptest.NewRequest(http.MethodGet, "/x", nil)
	r.RemoteAddr = "203.0.113.5:54321"
	assert.Equal(t, "203.0.113.5", ratelimit.Key(cfg, r))
}

func TestApplyHeadersSetsRetryAfterOnDeny(t *testing.T) {
	d := ratelimit.Decision{Allowed: false, Limit: 5, Remaining: 0, ResetAt: nowPlus(10)}
	h := http.Header{}
	ratelimit.ApplyHeaders(h, d)
	assert.Equal(t, "5", h.Get("X-RateLimit-Limit"))
	assert.Equal(t, "0", h.Get("X-RateLimit-Remaining"))
	assert.NotEmpty(t, h.Get("Retry-After"))
}

func TestResetClearsOnlyOneEndpoint(t *testing.T) {
	l := ratelimit.New()
	cfg := &mockendpoint.RateLimitConfig{RequestsPerWindow: 1, WindowSeconds: 60}
	l.Allow("ep1", "a", cfg)
	l.Allow("ep2", "a", cfg)

	l.Reset("ep1")

	stats := l.Stats()
	assert.Len(t, stats, 1)
	assert.Equal(t, "ep2", stats[0].EndpointID)
}

func TestResetAllClearsEverything(t *testing.T) {
	l := ratelimit.New()
	cfg := &mockendpoint.RateLimitConfig{RequestsPerWindow: 1, WindowSeconds: 60}
	l.Allow("ep1", "a", cfg)
	l.Allow("ep2", "a", cfg)

	l.ResetAll()

	assert.Empty(t, l.Stats())
}

func TestStatsReportsCounts(t *testing.T) {
	l := ratelimit.New()
	cfg := &mockendpoint.RateLimitConfig{RequestsPerWindow: 5, WindowSeconds: 60}
	l.Allow("ep1", "a", cfg)
	l.Allow("ep1", "a", cfg)

	stats := l.Stats()
	assert.Len(t, stats, 1)
	assert.Equal(t, 2, stats[0].Count)
}
