// Package proxy forwards a mock request to a real upstream, rewriting its
// path and optionally caching the response. See spec.md §4.6.
package proxy

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	mathrand "math/rand/v2"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/getmockd/mockd/pkg/mockendpoint"
)

// defaultTimeout is used when ProxyConfig.TimeoutMs is unset.
const defaultTimeout = 30 * time.Second

// defaultCacheTTL is used when ProxyConfig.CacheTTL is unset (seconds).
const defaultCacheTTL = 300

// forwardedHeaders are copied from the incoming request in addition to
// the endpoint's static header map.
var forwardedHeaders = []string{"Authorization", "X-Api-Key", "Accept", "Accept-Language"}

// hopByHopHeaders are stripped from the upstream response before it is
// relayed to the caller.
var hopByHopHeaders = []string{"Content-Encoding", "Transfer-Encoding", "Connection"}

// Result is what the forwarder hands back to the dispatcher.
type Result struct {
	Status  int
	Body    interface{} // parsed JSON, or a string for non-JSON content
	Headers http.Header
}

// cacheEntry is one cached upstream response.
type cacheEntry struct {
	result    Result
	expiresAt time.Time
}

// Forwarder proxies requests and caches successful responses by
// (method, absolute URL, body) key. The engine uses one Forwarder for
// every endpoint, so the key has no endpoint component and endpoints
// proxying the same request share a cache entry.
type Forwarder struct {
	client *http.Client

	mu    sync.Mutex
	cache map[string]cacheEntry
}

// New creates a Forwarder with a pooled client matching the rest of the
// server's outbound HTTP usage.
func New() *Forwarder {
	return &Forwarder{
		client: &http.Client{
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		cache: make(map[string]cacheEntry),
	}
}

// Forward rewrites path per cfg.PathRewrite, resolves the target URL,
// consults the cache, and otherwise performs the upstream call.
func (f *Forwarder) Forward(cfg *mockendpoint.ProxyConfig, method, path, rawQuery string, headers http.Header, body []byte) (Result, error) {
	rewritten := rewritePath(cfg.PathRewrite, path)

	target, err := joinTargetURL(cfg.TargetURL, rewritten, rawQuery)
	if err != nil {
		return Result{}, fmt.Errorf("resolve target URL: %w", err)
	}

	key := cacheKey(method, target, body)
	if cfg.CacheResponse {
		if entry, ok := f.cacheGet(key); ok {
			return entry, nil
		}
		f.maybeEvict()
	}

	req, err := http.NewRequest(method, target, nil)
	if err != nil {
		return Result{}, fmt.Errorf("build request: %w", err)
	}
	applyRequestHeaders(req, cfg.Headers, headers)

	if method != http.MethodGet && method != http.MethodHead && len(body) > 0 {
		req.Body = newBodyReader(body)
		req.ContentLength = int64(len(body))
	}

	timeout := defaultTimeout
	if cfg.TimeoutMs > 0 {
		timeout = time.Duration(cfg.TimeoutMs) * time.Millisecond
	}
	client := f.client
	ctxClient := *client
	ctxClient.Timeout = timeout

	resp, err := ctxClient.Do(req)
	if err != nil {
		return Result{}, err
	}
	defer func() { _ = resp.Body.Close() }()

	result, err := parseResponse(resp)
	if err != nil {
		return Result{}, err
	}

	if cfg.CacheResponse && result.Status >= 200 && result.Status < 300 {
		ttl := cfg.CacheTTL
		if ttl <= 0 {
			ttl = defaultCacheTTL
		}
		f.cacheSet(key, result, time.Duration(ttl)*time.Second)
	}

	return result, nil
}

func rewritePath(rules []mockendpoint.PathRewriteRule, path string) string {
	for _, rule := range rules {
		re, err := regexp.Compile(rule.Pattern)
		if err != nil {
			continue
		}
		if re.MatchString(path) {
			return re.ReplaceAllString(path, rule.Replacement)
		}
	}
	return path
}

func joinTargetURL(targetURL, path, rawQuery string) (string, error) {
	base, err := url.Parse(targetURL)
	if err != nil {
		return "", err
	}
	base.Path = singleJoiningSlash(base.Path, path)
	base.RawQuery = rawQuery
	return base.String(), nil
}

func singleJoiningSlash(a, b string) string {
	aSlash := strings.HasSuffix(a, "/")
	bSlash := strings.HasPrefix(b, "/")
	switch {
	case aSlash && bSlash:
		return a + b[1:]
	case !aSlash && !bSlash:
		return a + "/" + b
	default:
		return a + b
	}
}

func applyRequestHeaders(req *http.Request, static map[string]string, incoming http.Header) {
	for k, v := range static {
		req.Header.Set(k, v)
	}
	for _, name := range forwardedHeaders {
		if v := incoming.Get(name); v != "" {
			req.Header.Set(name, v)
		}
	}
	req.Header.Set("Content-Type", "application/json")
}

func parseResponse(resp *http.Response) (Result, error) {
	buf := new(bytes.Buffer)
	if _, err := buf.ReadFrom(resp.Body); err != nil {
		return Result{}, err
	}

	headers := resp.Header.Clone()
	for _, h := range hopByHopHeaders {
		headers.Del(h)
	}

	var body interface{}
	ct := resp.Header.Get("Content-Type")
	if strings.Contains(ct, "application/json") {
		if err := json.Unmarshal(buf.Bytes(), &body); err != nil {
			body = buf.String()
		}
	} else {
		body = buf.String()
	}

	return Result{Status: resp.StatusCode, Body: body, Headers: headers}, nil
}

func cacheKey(method, target string, body []byte) string {
	h := sha256.Sum256(body)
	return method + "|" + target + "|" + hex.EncodeToString(h[:])
}

func (f *Forwarder) cacheGet(key string) (Result, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	entry, ok := f.cache[key]
	if !ok || time.Now().After(entry.expiresAt) {
		return Result{}, false
	}
	return entry.result, true
}

func (f *Forwarder) cacheSet(key string, result Result, ttl time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cache[key] = cacheEntry{result: result, expiresAt: time.Now().Add(ttl)}
}

// maybeEvict sweeps expired cache entries with 10% probability per call,
// per spec.md §4.6's opportunistic eviction rule.
func (f *Forwarder) maybeEvict() {
	if mathrand.Float64() >= 0.1 {
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	now := time.Now()
	for k, entry := range f.cache {
		if now.After(entry.expiresAt) {
			delete(f.cache, k)
		}
	}
}

func newBodyReader(body []byte) *bodyReadCloser {
	return &bodyReadCloser{Reader: bytes.NewReader(body)}
}

type bodyReadCloser struct{ *bytes.Reader }

func (b *bodyReadCloser) Close() error { return nil }
