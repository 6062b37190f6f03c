// Package ratelimit implements the fixed-window request limiter used by
// the HTTP dispatcher's rate-limit step. See spec.md §4.3 step 3.
package ratelimit

import (
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/getmockd/mockd/pkg/mockendpoint"
)

// window is one (endpointID, key) counter.
type window struct {
	count       int
	windowStart time.Time
}

// Limiter tracks fixed-window counters keyed by (endpointID, key). Safe
// for concurrent use.
type Limiter struct {
	mu       sync.Mutex
	counters map[string]*window
}

// New creates an empty Limiter.
func New() *Limiter {
	return &Limiter{counters: make(map[string]*window)}
}

// Decision is the outcome of a rate-limit check.
type Decision struct {
	Allowed   bool
	Limit     int
	Remaining int
	ResetAt   time.Time
}

// Key computes the rate-limit key for r per cfg.KeyBy: client IP, a named
// header, or a named query parameter. "no-key" covers an unspecified
// KeyBy; "unknown" covers a missing/unparseable client IP.
func Key(cfg *mockendpoint.RateLimitConfig, r *http.Request) string {
	switch cfg.KeyBy {
	case mockendpoint.KeyByHeader:
		if cfg.KeyName == "" {
			return "no-key"
		}
		if v := r.Header.Get(cfg.KeyName); v != "" {
			return v
		}
		return "unknown"
	case mockendpoint.KeyByQuery:
		if cfg.KeyName == "" {
			return "no-key"
		}
		if v := r.URL.Query().Get(cfg.KeyName); v != "" {
			return v
		}
		return "unknown"
	case mockendpoint.KeyByIP:
		if ip := clientIP(r); ip != "" {
			return ip
		}
		return "unknown"
	default:
		return "no-key"
	}
}

func clientIP(r *http.Request) string {
	if host, _, err := splitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

func splitHostPort(hostport string) (string, string, error) {
	i := strings.LastIndex(hostport, ":")
	if i < 0 {
		return hostport, "", nil
	}
	return hostport[:i], hostport[i+1:], nil
}

// Allow checks and updates the counter for (endpointID, key) against cfg.
func (l *Limiter) Allow(endpointID, key string, cfg *mockendpoint.RateLimitConfig) Decision {
	l.mu.Lock()
	defer l.mu.Unlock()

	windowDur := time.Duration(cfg.WindowSeconds) * time.Second
	limit := cfg.RequestsPerWindow + cfg.BurstLimit

	ck := endpointID + "|" + key
	w, ok := l.counters[ck]
	now := time.Now()
	if !ok || now.Sub(w.windowStart) >= windowDur {
		w = &window{windowStart: now}
		l.counters[ck] = w
	}

	resetAt := w.windowStart.Add(windowDur)
	if w.count >= limit {
		return Decision{Allowed: false, Limit: limit, Remaining: 0, ResetAt: resetAt}
	}

	w.count++
	remaining := limit - w.count
	if remaining < 0 {
		remaining = 0
	}
	return Decision{Allowed: true, Limit: limit, Remaining: remaining, ResetAt: resetAt}
}

// CounterSnapshot reports one (endpointID, key) window's current state,
// for the admin /ratelimit/stats surface.
type CounterSnapshot struct {
	EndpointID  string    `json:"endpointId"`
	Key         string    `json:"key"`
	Count       int       `json:"count"`
	WindowStart time.Time `json:"windowStart"`
}

// Reset clears every counter belonging to endpointID.
func (l *Limiter) Reset(endpointID string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	prefix := endpointID + "|"
	for ck := range l.counters {
		if strings.HasPrefix(ck, prefix) {
			delete(l.counters, ck)
		}
	}
}

// ResetAll clears every counter.
func (l *Limiter) ResetAll() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.counters = make(map[string]*window)
}

// Stats returns a snapshot of every tracked counter.
func (l *Limiter) Stats() []CounterSnapshot {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]CounterSnapshot, 0, len(l.counters))
	for ck, w := range l.counters {
		endpointID, key, _ := strings.Cut(ck, "|")
		out = append(out, CounterSnapshot{EndpointID: endpointID, Key: key, Count: w.count, WindowStart: w.windowStart})
	}
	return out
}

// ApplyHeaders writes the X-RateLimit-* / Retry-After headers per
// spec.md §4.3 step 3. resetSeconds is the whole number of seconds until
// ResetAt, rounded down.
func ApplyHeaders(h http.Header, d Decision) {
	h.Set("X-RateLimit-Limit", strconv.Itoa(d.Limit))
	h.Set("X-RateLimit-Remaining", strconv.Itoa(d.Remaining))
	resetSeconds := int(time.Until(d.ResetAt).Seconds())
	if resetSeconds < 0 {
		resetSeconds = 0
	}
	h.Set("X-RateLimit-Reset", strconv.Itoa(resetSeconds))
	if !d.Allowed {
		h.Set("Retry-After", strconv.Itoa(resetSeconds))
	}
}
